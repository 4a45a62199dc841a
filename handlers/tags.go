package handlers

import (
	"net/http"

	"clementus360/coaching-portal/types"
)

type CreateTagRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
}

type TagResponse struct {
	Success bool          `json:"success"`
	Tag     types.TaskTag `json:"tag"`
}

type GetTagsResponse struct {
	Success bool            `json:"success"`
	Tags    []types.TaskTag `json:"tags"`
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}

	tags, err := repo.ListTags(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GetTagsResponse{Success: true, Tags: tags})
}

func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}

	var req CreateTagRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	saved, err := repo.InsertTag(r.Context(), types.TaskTag{Name: req.Name, Color: req.Color})
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, TagResponse{Success: true, Tag: saved})
}

func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	tagID, err := pathID(r, "tagId", "tag")
	if err != nil {
		fail(w, r, err)
		return
	}

	cols, err := decodeUpdate(r, &TagUpdate{})
	if err != nil {
		fail(w, r, err)
		return
	}

	updated, err := repo.UpdateTag(r.Context(), tagID, cols)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TagResponse{Success: true, Tag: updated})
}

func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	tagID, err := pathID(r, "tagId", "tag")
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := repo.DeleteTag(r.Context(), tagID); err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true, Message: "Tag deleted successfully"})
}
