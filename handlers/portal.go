package handlers

import (
	"net/http"

	"cloud.google.com/go/civil"

	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/scorecard"
)

type ScorecardResponse struct {
	Success   bool                `json:"success"`
	Scorecard scorecard.Scorecard `json:"scorecard"`
}

// GetScorecard summarises a company's progress for the portal dashboard.
func (h *Handler) GetScorecard(w http.ResponseWriter, r *http.Request) {
	repo, id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	companyID, err := companyScope(r, id, true)
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx := r.Context()
	tasks, err := repo.ListTasks(ctx, repository.TaskFilter{CompanyID: companyID})
	if err != nil {
		fail(w, r, err)
		return
	}
	sessions, err := repo.ListSessions(ctx, companyID)
	if err != nil {
		fail(w, r, err)
		return
	}
	materials, err := repo.ListMaterials(ctx, companyID)
	if err != nil {
		fail(w, r, err)
		return
	}
	tags, err := repo.ListTags(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}

	sc := scorecard.Compute(companyID, tasks, sessions, materials, tags, civil.DateOf(h.today()))
	writeJSON(w, http.StatusOK, ScorecardResponse{Success: true, Scorecard: sc})
}
