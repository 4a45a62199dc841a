package handlers

import (
	"context"
	"net/http"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/assessment"
	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/types"

	"github.com/sirupsen/logrus"
)

// LeadCaptureRequest is submitted by the public assessment funnel.
type LeadCaptureRequest struct {
	CompanyName string              `json:"companyName" validate:"required"`
	ContactName string              `json:"contactName" validate:"required"`
	Email       string              `json:"email" validate:"required,email"`
	Phone       string              `json:"phone"`
	Answers     []assessment.Answer `json:"answers" validate:"dive"`
}

type LeadCaptureResponse struct {
	Success    bool              `json:"success"`
	Lead       types.Lead        `json:"lead"`
	Assessment assessment.Result `json:"assessment"`
}

type AnnounceProductRequest struct {
	ProductTemplateID string `json:"productTemplateId" validate:"required,uuid"`
}

type GetLeadProductsResponse struct {
	Success      bool                `json:"success"`
	LeadProducts []types.LeadProduct `json:"lead_products"`
}

type LeadProductResponse struct {
	Success     bool              `json:"success"`
	LeadProduct types.LeadProduct `json:"lead_product"`
}

// CaptureLead records a funnel submission. It is unauthenticated and writes
// through the service repository.
func (h *Handler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	var req LeadCaptureRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	result := assessment.Score(req.Answers)
	score := result.Total

	saved, err := h.backend.Service().InsertLead(r.Context(), types.Lead{
		CompanyName:     req.CompanyName,
		ContactName:     req.ContactName,
		Email:           req.Email,
		Phone:           req.Phone,
		Status:          types.LeadNew,
		Source:          "assessment",
		AssessmentScore: &score,
		AssessmentTier:  result.Tier,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	config.Logger.WithFields(logrus.Fields{
		"lead_id": saved.ID,
		"tier":    result.Tier,
	}).Info("Lead captured")

	writeJSON(w, http.StatusCreated, LeadCaptureResponse{Success: true, Lead: saved, Assessment: result})
}

func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}

	leads, err := repo.ListLeads(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.GetLeadsResponse{Success: true, Leads: leads})
}

func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	leadID, err := pathID(r, "leadId", "lead")
	if err != nil {
		fail(w, r, err)
		return
	}

	lead, err := repo.GetLead(r.Context(), leadID)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.LeadResponse{Success: true, Lead: lead})
}

func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	leadID, err := pathID(r, "leadId", "lead")
	if err != nil {
		fail(w, r, err)
		return
	}

	cols, err := decodeUpdate(r, &LeadUpdate{})
	if err != nil {
		fail(w, r, err)
		return
	}

	lead, err := repo.UpdateLead(r.Context(), leadID, cols)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.LeadResponse{Success: true, Lead: lead})
}

// DeleteLead removes the lead and, by cascade, everything provisioned for it.
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	leadID, err := pathID(r, "leadId", "lead")
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := repo.DeleteLead(r.Context(), leadID); err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true, Message: "Lead deleted successfully"})
}

// Lead products

func (h *Handler) ListLeadProducts(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	leadID, err := pathID(r, "leadId", "lead")
	if err != nil {
		fail(w, r, err)
		return
	}

	products, err := repo.ListLeadProducts(r.Context(), leadID)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GetLeadProductsResponse{Success: true, LeadProducts: products})
}

// AnnounceProduct offers a product template to a lead without provisioning
// anything yet.
func (h *Handler) AnnounceProduct(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	leadID, err := pathID(r, "leadId", "lead")
	if err != nil {
		fail(w, r, err)
		return
	}

	var req AnnounceProductRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx := r.Context()
	if _, err := repo.GetLead(ctx, leadID); err != nil {
		fail(w, r, err)
		return
	}
	if _, err := repo.GetProductTemplate(ctx, req.ProductTemplateID); err != nil {
		fail(w, r, err)
		return
	}

	saved, err := repo.InsertLeadProduct(ctx, types.LeadProduct{
		LeadID:            leadID,
		ProductTemplateID: req.ProductTemplateID,
		Status:            types.LeadProductAnnounced,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, LeadProductResponse{Success: true, LeadProduct: saved})
}

// ActivateLeadProduct provisions the product's tasks, sessions and material
// placeholders for the lead. The response body is the activated lead product.
func (h *Handler) ActivateLeadProduct(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	leadID, err := pathID(r, "leadId", "lead")
	if err != nil {
		fail(w, r, err)
		return
	}
	leadProductID, err := pathID(r, "leadProductId", "lead product")
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx := context.WithoutCancel(r.Context())

	lp, err := repo.GetLeadProduct(ctx, leadProductID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if lp.LeadID != leadID {
		fail(w, r, apperr.NotFound("lead product"))
		return
	}

	activated, err := h.engine(repo).ActivateLeadProduct(ctx, leadProductID, h.today())
	if err != nil {
		fail(w, r, err)
		return
	}

	config.Logger.WithFields(logrus.Fields{
		"lead_id":         leadID,
		"lead_product_id": leadProductID,
	}).Info("Lead product activated")

	writeJSON(w, http.StatusOK, activated)
}

func (h *Handler) DeleteLeadProduct(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	leadID, err := pathID(r, "leadId", "lead")
	if err != nil {
		fail(w, r, err)
		return
	}
	leadProductID, err := pathID(r, "leadProductId", "lead product")
	if err != nil {
		fail(w, r, err)
		return
	}

	lp, err := repo.GetLeadProduct(r.Context(), leadProductID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if lp.LeadID != leadID {
		fail(w, r, apperr.NotFound("lead product"))
		return
	}

	if err := repo.DeleteLeadProduct(r.Context(), leadProductID); err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true, Message: "Lead product removed"})
}
