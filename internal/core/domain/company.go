package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanyStatus is the lifecycle status of a tenant.
type CompanyStatus string

const (
	CompanyActive    CompanyStatus = "active"
	CompanyInactive  CompanyStatus = "inactive"
	CompanySuspended CompanyStatus = "suspended"
)

// Company is the tenant root. Every other entity carries its CompanyID.
type Company struct {
	CompanyID          string           `json:"companyID"` // Primary Key
	Name               string           `json:"name"`
	Status             CompanyStatus    `json:"status"`
	EscalationPolicy   EscalationPolicy `json:"escalationPolicy"`             // Zero durations fall back to service defaults
	HighValueThreshold *decimal.Decimal `json:"highValueThreshold,omitempty"` // Nil falls back to service default
	AuditFields
}

// IsActive reports whether the company may accept submissions and decisions.
func (c Company) IsActive() bool { return c.Status == CompanyActive }

// EscalationPolicy holds per-stage deadlines. A zero duration means "use the default".
type EscalationPolicy struct {
	PendingReview        time.Duration `json:"pendingReview"`
	UnderReview          time.Duration `json:"underReview"`
	PendingAuthorization time.Duration `json:"pendingAuthorization"`
}

// WithDefaults fills zero deadlines from defaults.
func (p EscalationPolicy) WithDefaults(defaults EscalationPolicy) EscalationPolicy {
	if p.PendingReview <= 0 {
		p.PendingReview = defaults.PendingReview
	}
	if p.UnderReview <= 0 {
		p.UnderReview = defaults.UnderReview
	}
	if p.PendingAuthorization <= 0 {
		p.PendingAuthorization = defaults.PendingAuthorization
	}
	return p
}

// DeadlineFor returns the deadline for a stage; ok is false for stages without one.
func (p EscalationPolicy) DeadlineFor(state WorkflowState) (time.Duration, bool) {
	var d time.Duration
	switch state {
	case StatePendingReview:
		d = p.PendingReview
	case StateUnderReview:
		d = p.UnderReview
	case StatePendingAuthorization:
		d = p.PendingAuthorization
	default:
		return 0, false
	}
	return d, d > 0
}
