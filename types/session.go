package types

import "time"

// Session statuses
const (
	SessionBookingOpen = "booking_open"
	SessionBooked      = "booked"
	SessionCanceled    = "canceled"
	SessionCompleted   = "completed"
)

// ValidSessionStatus reports whether s is a known session status.
func ValidSessionStatus(s string) bool {
	switch s {
	case SessionBookingOpen, SessionBooked, SessionCanceled, SessionCompleted:
		return true
	}
	return false
}

// Session is a coaching session offered to a lead, booked through Calendly.
type Session struct {
	ID              string     `json:"id,omitempty"` // <-- omitempty is critical
	CompanyID       string     `json:"company_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CalendlyURL     string     `json:"calendly_url"`
	ShowOnDashboard bool       `json:"show_on_dashboard"`
	Status          string     `json:"status"`
	Position        int        `json:"position"`
	BookedStartAt   *time.Time `json:"booked_start_at"`
	BookedEndAt     *time.Time `json:"booked_end_at"`
	Location        string     `json:"location"`
	JoinURL         string     `json:"join_url"`
	CancelReason    string     `json:"cancel_reason"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

type GetSessionsResponse struct {
	Success  bool      `json:"success"`
	Sessions []Session `json:"sessions"`
}

type SessionResponse struct {
	Success bool    `json:"success"`
	Session Session `json:"session"`
}
