package handlers

import (
	"context"
	"net/http"

	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/types"

	"github.com/sirupsen/logrus"
)

type CreateTaskTemplateRequest struct {
	Name        string                 `json:"name" validate:"required"`
	Description string                 `json:"description"`
	Tasks       []types.TaskDefinition `json:"tasks" validate:"dive"`
}

type GetTaskTemplatesResponse struct {
	Success   bool                 `json:"success"`
	Templates []types.TaskTemplate `json:"templates"`
}

type GetProductTemplatesResponse struct {
	Success   bool                    `json:"success"`
	Templates []types.ProductTemplate `json:"templates"`
}

type ApplyTemplateRequest struct {
	CompanyID string `json:"companyId" validate:"required,uuid"`
}

// Task templates

func (h *Handler) ListTaskTemplates(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}

	templates, err := repo.ListTaskTemplates(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GetTaskTemplatesResponse{Success: true, Templates: templates})
}

func (h *Handler) GetTaskTemplate(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	templateID, err := pathID(r, "templateId", "template")
	if err != nil {
		fail(w, r, err)
		return
	}

	tmpl, err := repo.GetTaskTemplate(r.Context(), templateID)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.TaskTemplateResponse{Success: true, Template: tmpl})
}

func (h *Handler) CreateTaskTemplate(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}

	var req CreateTaskTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Tasks == nil {
		req.Tasks = []types.TaskDefinition{}
	}

	saved, err := repo.InsertTaskTemplate(r.Context(), types.TaskTemplate{
		Name:        req.Name,
		Description: req.Description,
		Tasks:       req.Tasks,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, types.TaskTemplateResponse{Success: true, Template: saved})
}

func (h *Handler) UpdateTaskTemplate(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	templateID, err := pathID(r, "templateId", "template")
	if err != nil {
		fail(w, r, err)
		return
	}

	cols, err := decodeUpdate(r, &TaskTemplateUpdate{})
	if err != nil {
		fail(w, r, err)
		return
	}

	updated, err := repo.UpdateTaskTemplate(r.Context(), templateID, cols)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.TaskTemplateResponse{Success: true, Template: updated})
}

func (h *Handler) DeleteTaskTemplate(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	templateID, err := pathID(r, "templateId", "template")
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := repo.DeleteTaskTemplate(r.Context(), templateID); err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true, Message: "Template deleted successfully"})
}

// ApplyTaskTemplate expands a task template onto a company's board.
func (h *Handler) ApplyTaskTemplate(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	templateID, err := pathID(r, "templateId", "template")
	if err != nil {
		fail(w, r, err)
		return
	}

	var req ApplyTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	// A client that disconnects mid-expansion must not leave half a board
	// behind, so the expansion and its rollback outlive the request.
	ctx := context.WithoutCancel(r.Context())

	if _, err := repo.GetLead(ctx, req.CompanyID); err != nil {
		fail(w, r, err)
		return
	}

	result, err := h.engine(repo).ApplyTaskTemplate(ctx, templateID, req.CompanyID, h.today())
	if err != nil {
		fail(w, r, err)
		return
	}

	config.Logger.WithFields(logrus.Fields{
		"template_id": templateID,
		"company_id":  req.CompanyID,
		"created":     result.Created,
	}).Info("Task template applied")

	writeJSON(w, http.StatusCreated, types.ApplyTemplateResponse{
		Success: true,
		Created: result.Created,
		Tasks:   result.Tasks,
	})
}

// Product templates

type CreateProductTemplateRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	TagID       *string `json:"tagId"`
	types.ProductTemplatePayload
}

func (h *Handler) ListProductTemplates(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}

	templates, err := repo.ListProductTemplates(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GetProductTemplatesResponse{Success: true, Templates: templates})
}

func (h *Handler) GetProductTemplate(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	templateID, err := pathID(r, "templateId", "template")
	if err != nil {
		fail(w, r, err)
		return
	}

	tmpl, err := repo.GetProductTemplate(r.Context(), templateID)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.ProductTemplateResponse{Success: true, Template: tmpl})
}

func (h *Handler) CreateProductTemplate(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}

	var req CreateProductTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	payload := req.ProductTemplatePayload
	if payload.Tasks == nil {
		payload.Tasks = []types.TaskDefinition{}
	}
	if payload.Sessions == nil {
		payload.Sessions = []types.SessionDefinition{}
	}
	if payload.Materials == nil {
		payload.Materials = []types.MaterialDefinition{}
	}

	saved, err := repo.InsertProductTemplate(r.Context(), types.ProductTemplate{
		Name:                   req.Name,
		Description:            req.Description,
		TagID:                  req.TagID,
		ProductTemplatePayload: payload,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, types.ProductTemplateResponse{Success: true, Template: saved})
}

func (h *Handler) UpdateProductTemplate(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	templateID, err := pathID(r, "templateId", "template")
	if err != nil {
		fail(w, r, err)
		return
	}

	cols, err := decodeUpdate(r, &ProductTemplateUpdate{})
	if err != nil {
		fail(w, r, err)
		return
	}

	updated, err := repo.UpdateProductTemplate(r.Context(), templateID, cols)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.ProductTemplateResponse{Success: true, Template: updated})
}

func (h *Handler) DeleteProductTemplate(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	templateID, err := pathID(r, "templateId", "template")
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := repo.DeleteProductTemplate(r.Context(), templateID); err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true, Message: "Product template deleted successfully"})
}
