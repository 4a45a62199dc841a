package types

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Profile is the application-side record for an authenticated user.
type Profile struct {
	ID        string  `json:"id"`
	Role      Role    `json:"role"`
	CompanyID *string `json:"company_id"` // set for customers
	FullName  string  `json:"full_name"`
}

// Identity is the resolved caller of a request.
type Identity struct {
	UserID    string
	Role      Role
	CompanyID string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// CanAccessCompany reports whether the caller may see rows of companyID.
func (i Identity) CanAccessCompany(companyID string) bool {
	return i.IsAdmin() || (companyID != "" && i.CompanyID == companyID)
}
