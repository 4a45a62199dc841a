package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/metrics"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	downloadURLTTL = time.Hour
	// Form fields beside the file are small; they get this much headroom on
	// top of the file limit.
	formOverhead = 1 << 20
	formMemory   = 8 << 20
)

// materialExtensions pairs each accepted extension with the MIME type it must
// carry.
var materialExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// sniffedAs lists what content detection may report for each accepted type.
// Office files without their container metadata only sniff as the container.
var sniffedAs = map[string][]string{
	"application/pdf":    {"application/pdf"},
	"application/msword": {"application/msword", "application/x-ole-storage"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/zip",
	},
}

type DownloadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

func (h *Handler) GetMaterials(w http.ResponseWriter, r *http.Request) {
	repo, id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	companyID, err := companyScope(r, id, false)
	if err != nil {
		fail(w, r, err)
		return
	}

	materials, err := repo.ListMaterials(r.Context(), companyID)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.GetMaterialsResponse{Success: true, Materials: materials})
}

// UploadMaterial stores a document and records it, either as a new material
// or by filling a placeholder named by material_id. The file is checked
// before anything is written, and a stored file whose row cannot be written
// is removed again.
func (h *Handler) UploadMaterial(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.settings.MaxUploadBytes+formOverhead)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.rejectUpload(w, r, "File exceeds the upload limit", http.StatusRequestEntityTooLarge)
			return
		}
		h.rejectUpload(w, r, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.rejectUpload(w, r, "Missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > h.settings.MaxUploadBytes {
		h.rejectUpload(w, r, "File exceeds the upload limit", http.StatusRequestEntityTooLarge)
		return
	}

	contentType, err := materialType(header)
	if err != nil {
		h.rejectUpload(w, r, apperr.Message(err), http.StatusBadRequest)
		return
	}

	if err := checkContent(file, contentType); err != nil {
		h.rejectUpload(w, r, apperr.Message(err), http.StatusBadRequest)
		return
	}

	companyID := r.FormValue("company_id")
	if _, err := uuid.Parse(companyID); err != nil {
		h.rejectUpload(w, r, "Missing or invalid company_id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	var placeholder *types.Material
	if materialID := r.FormValue("material_id"); materialID != "" {
		m, err := repo.GetMaterial(ctx, materialID)
		if err != nil {
			metrics.MaterialUploads.WithLabelValues("rejected").Inc()
			fail(w, r, err)
			return
		}
		if m.CompanyID != companyID || !m.IsPlaceholder {
			h.rejectUpload(w, r, "Material is not an open placeholder for this company", http.StatusBadRequest)
			return
		}
		placeholder = &m
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	path := fmt.Sprintf("%s/%s%s", companyID, uuid.NewString(), ext)

	if err := repo.UploadBlob(ctx, path, contentType, file); err != nil {
		metrics.MaterialUploads.WithLabelValues("failed").Inc()
		fail(w, r, apperr.Storage("storage.upload", err))
		return
	}

	saved, status, err := h.recordMaterial(r, repo, placeholder, companyID, path, contentType, header)
	if err != nil {
		if rmErr := repo.RemoveBlob(ctx, path); rmErr != nil {
			config.Logger.WithFields(logrus.Fields{"path": path}).Error("Failed to remove orphaned upload:", rmErr)
		}
		metrics.MaterialUploads.WithLabelValues("failed").Inc()
		fail(w, r, err)
		return
	}

	metrics.MaterialUploads.WithLabelValues("stored").Inc()
	writeJSON(w, status, types.MaterialResponse{Success: true, Material: saved})
}

func (h *Handler) recordMaterial(r *http.Request, repo repository.Repository, placeholder *types.Material, companyID, path, contentType string, header *multipart.FileHeader) (types.Material, int, error) {
	ctx := r.Context()

	if placeholder != nil {
		cols := repository.Columns{
			"is_placeholder": false,
			"file_name":      header.Filename,
			"file_path":      path,
			"file_size":      header.Size,
			"mime_type":      contentType,
		}
		if title := r.FormValue("title"); title != "" {
			cols["title"] = title
		}
		if desc := r.FormValue("description"); desc != "" {
			cols["description"] = desc
		}
		m, err := repo.UpdateMaterial(ctx, placeholder.ID, cols)
		return m, http.StatusOK, err
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	kind := r.FormValue("type")
	if kind == "" {
		kind = "document"
	}
	var tagID *string
	if t := r.FormValue("tag_id"); t != "" {
		tagID = &t
	}

	m, err := repo.InsertMaterial(ctx, types.Material{
		CompanyID:   companyID,
		Title:       title,
		Description: r.FormValue("description"),
		Type:        kind,
		TagID:       tagID,
		FileName:    header.Filename,
		FilePath:    path,
		FileSize:    header.Size,
		MimeType:    contentType,
	})
	return m, http.StatusCreated, err
}

func (h *Handler) rejectUpload(w http.ResponseWriter, r *http.Request, message string, status int) {
	metrics.MaterialUploads.WithLabelValues("rejected").Inc()
	config.Logger.WithField("path", r.URL.Path).Warn("Upload rejected: ", message)
	writeError(w, message, status)
}

// materialType returns the file's MIME type when both its declared type and
// its extension are on the allow-list and agree with each other.
func materialType(header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	expected, ok := materialExtensions[ext]
	if !ok {
		return "", apperr.Validation(fmt.Sprintf("Unsupported file type %q: only PDF and Word documents are accepted", ext))
	}

	declared := header.Header.Get("Content-Type")
	if declared == "" || declared == "application/octet-stream" {
		return expected, nil
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !config.AllowedMaterialTypes[mediaType] {
		return "", apperr.Validation(fmt.Sprintf("Unsupported file type %q: only PDF and Word documents are accepted", declared))
	}
	if mediaType != expected {
		return "", apperr.Validation(fmt.Sprintf("File extension %s does not match type %s", ext, mediaType))
	}
	return mediaType, nil
}

// checkContent sniffs the file's leading bytes and rewinds it.
func checkContent(file multipart.File, contentType string) error {
	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return apperr.Validation("Unreadable file")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return apperr.Validation("Unreadable file")
	}
	for _, accepted := range sniffedAs[contentType] {
		if detected.Is(accepted) {
			return nil
		}
	}
	return apperr.Validation(fmt.Sprintf("File content (%s) does not match type %s", detected.String(), contentType))
}

// DownloadMaterial answers with a short-lived signed URL for the file.
func (h *Handler) DownloadMaterial(w http.ResponseWriter, r *http.Request) {
	repo, id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	materialID, err := pathID(r, "materialId", "material")
	if err != nil {
		fail(w, r, err)
		return
	}

	m, err := repo.GetMaterial(r.Context(), materialID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !id.CanAccessCompany(m.CompanyID) {
		fail(w, r, apperr.NotFound("material"))
		return
	}
	if m.IsPlaceholder || m.FilePath == "" {
		fail(w, r, apperr.Validation("Material has no file yet"))
		return
	}

	url, err := repo.SignedBlobURL(r.Context(), m.FilePath, downloadURLTTL)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DownloadResponse{Success: true, URL: url})
}

// DeleteMaterial removes the row first and then its file. A file that cannot
// be removed is only logged.
func (h *Handler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	materialID, err := pathID(r, "materialId", "material")
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx := r.Context()
	m, err := repo.GetMaterial(ctx, materialID)
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := repo.DeleteMaterial(ctx, materialID); err != nil {
		fail(w, r, err)
		return
	}

	if m.FilePath != "" {
		if err := repo.RemoveBlob(ctx, m.FilePath); err != nil {
			config.Logger.WithFields(logrus.Fields{
				"material_id": materialID,
				"path":        m.FilePath,
			}).Error("Failed to remove material file:", err)
		}
	}

	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true, Message: "Material deleted successfully"})
}
