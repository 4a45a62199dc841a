package types

import "time"

// AttachmentDefinition is an attachment declared in a template.
type AttachmentDefinition struct {
	Label string `json:"label" validate:"required"`
	URL   string `json:"url" validate:"required"`
	Type  string `json:"type" validate:"required,oneof=link material"`
}

type SubtaskDefinition struct {
	Title              string                 `json:"title" validate:"required"`
	DeadlineOffsetDays *int                   `json:"deadlineOffsetDays,omitempty" validate:"omitempty,gte=0"`
	Attachments        []AttachmentDefinition `json:"attachments" validate:"dive"`
}

// TaskDefinition is one entry of a template's ordered task list. Its index in
// the list becomes the created task's position.
type TaskDefinition struct {
	Title              string                 `json:"title" validate:"required"`
	Description        string                 `json:"description,omitempty"`
	Status             string                 `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress done"`
	TagID              *string                `json:"tagId,omitempty"`
	DeadlineOffsetDays *int                   `json:"deadlineOffsetDays,omitempty" validate:"omitempty,gte=0"`
	Subtasks           []SubtaskDefinition    `json:"subtasks" validate:"dive"`
	Attachments        []AttachmentDefinition `json:"attachments" validate:"dive"`
}

type SessionDefinition struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description,omitempty"`
	CalendlyURL     string `json:"calendlyUrl,omitempty" validate:"omitempty,url"`
	ShowOnDashboard bool   `json:"showOnDashboard,omitempty"`
}

type MaterialDefinition struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type" validate:"required"`
}

// ProductTemplatePayload is the bundle a product template expands into.
type ProductTemplatePayload struct {
	Tasks     []TaskDefinition     `json:"tasks" validate:"dive"`
	Sessions  []SessionDefinition  `json:"sessions" validate:"dive"`
	Materials []MaterialDefinition `json:"materials" validate:"dive"`
}

type TaskTemplate struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Tasks       []TaskDefinition `json:"tasks"`
	LastUsedAt  *time.Time       `json:"last_used_at"`
	CreatedAt   *time.Time       `json:"created_at,omitempty"`
}

type ProductTemplate struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	TagID       *string `json:"tag_id"`
	ProductTemplatePayload
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type TaskTemplateResponse struct {
	Success  bool         `json:"success"`
	Template TaskTemplate `json:"template"`
}

type ProductTemplateResponse struct {
	Success  bool            `json:"success"`
	Template ProductTemplate `json:"template"`
}
