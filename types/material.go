package types

import "time"

// Material is a document shared with a lead. Placeholders carry no file yet.
type Material struct {
	ID            string     `json:"id,omitempty"`
	CompanyID     string     `json:"company_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Type          string     `json:"type"`
	TagID         *string    `json:"tag_id"`
	IsPlaceholder bool       `json:"is_placeholder"`
	FileName      string     `json:"file_name"`
	FilePath      string     `json:"file_path"`
	FileSize      int64      `json:"file_size"`
	MimeType      string     `json:"mime_type"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

type GetMaterialsResponse struct {
	Success   bool       `json:"success"`
	Materials []Material `json:"materials"`
}

type MaterialResponse struct {
	Success  bool     `json:"success"`
	Material Material `json:"material"`
}
