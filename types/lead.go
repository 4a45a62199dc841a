package types

import "time"

// Lead statuses
const (
	LeadNew       = "new"
	LeadContacted = "contacted"
	LeadQualified = "qualified"
	LeadCustomer  = "customer"
	LeadLost      = "lost"
)

// Lead is a prospective or onboarded customer. Its id is the company id that
// tasks, sessions and materials hang off.
type Lead struct {
	ID              string     `json:"id,omitempty"`
	CompanyName     string     `json:"company_name"`
	ContactName     string     `json:"contact_name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Status          string     `json:"status"`
	Source          string     `json:"source"`
	AssessmentScore *int       `json:"assessment_score"`
	AssessmentTier  string     `json:"assessment_tier"`
	Notes           string     `json:"notes"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

// Lead product states
const (
	LeadProductAnnounced = "announced"
	LeadProductActivated = "activated"
)

// LeadProduct associates a product template with a lead.
type LeadProduct struct {
	ID                string           `json:"id,omitempty"`
	LeadID            string           `json:"lead_id"`
	ProductTemplateID string           `json:"product_template_id"`
	Status            string           `json:"status"`
	ActivatedAt       *time.Time       `json:"activated_at"`
	CreatedAt         *time.Time       `json:"created_at,omitempty"`
	ProductTemplate   *ProductTemplate `json:"product_templates,omitempty"`
}

type LeadResponse struct {
	Success bool `json:"success"`
	Lead    Lead `json:"lead"`
}

type GetLeadsResponse struct {
	Success bool   `json:"success"`
	Leads   []Lead `json:"leads"`
}
