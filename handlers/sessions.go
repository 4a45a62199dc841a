package handlers

import (
	"net/http"

	"clementus360/coaching-portal/types"
)

type CreateSessionRequest struct {
	CompanyID       string `json:"companyId" validate:"required,uuid"`
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	CalendlyURL     string `json:"calendlyUrl" validate:"omitempty,url"`
	ShowOnDashboard bool   `json:"showOnDashboard"`
	Position        *int   `json:"position" validate:"omitempty,gte=0"`
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	repo, id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	companyID, err := companyScope(r, id, false)
	if err != nil {
		fail(w, r, err)
		return
	}

	sessions, err := repo.ListSessions(r.Context(), companyID)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.GetSessionsResponse{Success: true, Sessions: sessions})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx := r.Context()
	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		existing, err := repo.ListSessions(ctx, req.CompanyID)
		if err != nil {
			fail(w, r, err)
			return
		}
		position = len(existing)
	}

	saved, err := repo.InsertSession(ctx, types.Session{
		CompanyID:       req.CompanyID,
		Title:           req.Title,
		Description:     req.Description,
		CalendlyURL:     req.CalendlyURL,
		ShowOnDashboard: req.ShowOnDashboard,
		Status:          types.SessionBookingOpen,
		Position:        position,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, types.SessionResponse{Success: true, Session: saved})
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	sessionID, err := pathID(r, "sessionId", "session")
	if err != nil {
		fail(w, r, err)
		return
	}

	cols, err := decodeUpdate(r, &SessionUpdate{})
	if err != nil {
		fail(w, r, err)
		return
	}

	updated, err := repo.UpdateSession(r.Context(), sessionID, cols)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.SessionResponse{Success: true, Session: updated})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	sessionID, err := pathID(r, "sessionId", "session")
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := repo.DeleteSession(r.Context(), sessionID); err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true, Message: "Session deleted successfully"})
}
