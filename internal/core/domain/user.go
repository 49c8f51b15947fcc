package domain

// Role is the company-level role of a user.
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleCompanyAdmin Role = "company_admin"
	RoleClerk        Role = "clerk"
	RoleFieldAgent   Role = "field_agent"
	// RoleSystem is never issued to a user; the escalation scheduler acts with it.
	RoleSystem Role = "system"
)

// Valid reports whether r is a role the identity service may issue.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleClerk, RoleFieldAgent:
		return true
	}
	return false
}

// CanReview reports whether a user holding r may be assigned as reviewer.
func (r Role) CanReview() bool {
	return r == RoleClerk || r == RoleCompanyAdmin || r == RoleSuperAdmin
}

// SystemActorID identifies scheduler-initiated decisions in the audit trail.
const SystemActorID = "system"

// User represents a user of a company.
type User struct {
	UserID        string `json:"userID"`    // Primary Key
	CompanyID     string `json:"companyID"` // FK -> companies.company_id
	Name          string `json:"name"`
	Role          Role   `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	AuditFields
}

// Actor is the already-authenticated identity behind a call.
type Actor struct {
	ActorID       string
	CompanyID     string
	Role          Role
	EmailVerified bool
}

// SystemActor returns the actor used by the escalation scheduler inside companyID.
func SystemActor(companyID string) Actor {
	return Actor{ActorID: SystemActorID, CompanyID: companyID, Role: RoleSystem, EmailVerified: true}
}

// IsSystem reports whether the actor is the scheduler.
func (a Actor) IsSystem() bool { return a.Role == RoleSystem }

// BelongsTo reports whether the actor is a member of companyID.
func (a Actor) BelongsTo(companyID string) bool { return a.CompanyID != "" && a.CompanyID == companyID }
