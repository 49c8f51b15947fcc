// Package authz holds the authorization gate: a pure (role x stage x action)
// lookup that decides whether an actor may act on a workflow.
package authz

import "github.com/SscSPs/withdrawal_approvals/internal/core/domain"

// Reason explains a gate decision. Values are stable and returned to callers.
type Reason string

const (
	ReasonAllowed             Reason = "allowed"
	ReasonUnknownRole         Reason = "unknown_role"
	ReasonCrossTenant         Reason = "cross_tenant"
	ReasonEmailUnverified     Reason = "email_unverified"
	ReasonRoleLacksCapability Reason = "role_lacks_capability"
	ReasonEscalationCeiling   Reason = "escalation_ceiling_exceeded"
)

// Request is one question put to the gate. State is empty for ActionSubmit,
// which happens before a workflow exists.
type Request struct {
	Role            domain.Role
	Action          domain.Action
	State           domain.WorkflowState
	EscalationLevel int
	OwnCompany      bool
	EmailVerified   bool
}

// Decision is the gate's answer. A denial is a normal value, not an error.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Gate is the function signature services depend on; Permit is the production gate.
type Gate func(Request) Decision

type capability struct {
	state  domain.WorkflowState
	action domain.Action
}

const unlimited = -1

type rolePolicy struct {
	capabilities       map[capability]struct{}
	maxEscalationLevel int
	crossTenant        bool
	needsVerifiedEmail bool
}

func caps(list ...capability) map[capability]struct{} {
	m := make(map[capability]struct{}, len(list))
	for _, c := range list {
		m[c] = struct{}{}
	}
	return m
}

var (
	submit         = capability{"", domain.ActionSubmit}
	assignReviewer = capability{domain.StatePendingReview, domain.ActionAssignReviewer}
	reviewApprove  = capability{domain.StateUnderReview, domain.ActionApprove}
	reviewReject   = capability{domain.StateUnderReview, domain.ActionReject}
	reviewEscalate = capability{domain.StateUnderReview, domain.ActionEscalate}
	reviewInfo     = capability{domain.StateUnderReview, domain.ActionRequestInfo}
	authConfirm    = capability{domain.StatePendingAuthorization, domain.ActionConfirm}
	authCancel     = capability{domain.StatePendingAuthorization, domain.ActionCancel}
	authEscalate   = capability{domain.StatePendingAuthorization, domain.ActionEscalate}
)

var matrix = map[domain.Role]rolePolicy{
	domain.RoleFieldAgent: {
		capabilities:       caps(submit),
		maxEscalationLevel: unlimited,
		needsVerifiedEmail: true,
	},
	domain.RoleClerk: {
		capabilities:       caps(assignReviewer, reviewApprove, reviewReject, reviewEscalate, reviewInfo),
		maxEscalationLevel: 1,
		needsVerifiedEmail: true,
	},
	domain.RoleCompanyAdmin: {
		capabilities: caps(submit, assignReviewer, reviewApprove, reviewReject, reviewEscalate, reviewInfo,
			authConfirm, authCancel, authEscalate),
		maxEscalationLevel: 3,
		needsVerifiedEmail: true,
	},
	domain.RoleSuperAdmin: {
		capabilities: caps(submit, assignReviewer, reviewApprove, reviewReject, reviewEscalate, reviewInfo,
			authConfirm, authCancel, authEscalate),
		maxEscalationLevel: unlimited,
		crossTenant:        true,
		needsVerifiedEmail: true,
	},
	domain.RoleSystem: {
		capabilities:       caps(reviewEscalate, authEscalate),
		maxEscalationLevel: unlimited,
	},
}

// Permit evaluates req against the role matrix.
func Permit(req Request) Decision {
	policy, ok := matrix[req.Role]
	if !ok {
		return deny(ReasonUnknownRole)
	}
	if !req.OwnCompany && !policy.crossTenant {
		return deny(ReasonCrossTenant)
	}
	if policy.needsVerifiedEmail && !req.EmailVerified {
		return deny(ReasonEmailUnverified)
	}
	if _, ok := policy.capabilities[capability{req.State, req.Action}]; !ok {
		return deny(ReasonRoleLacksCapability)
	}
	if req.Action != domain.ActionSubmit && policy.maxEscalationLevel != unlimited && req.EscalationLevel > policy.maxEscalationLevel {
		return deny(ReasonEscalationCeiling)
	}
	return Decision{Allowed: true, Reason: ReasonAllowed}
}

func deny(r Reason) Decision {
	return Decision{Allowed: false, Reason: r}
}
