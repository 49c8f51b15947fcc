package domain

import "time"

// ReasonCode explains why an audit entry was written.
type ReasonCode string

const (
	ReasonReviewerAssigned       ReasonCode = "reviewer_assigned"
	ReasonRecommendedApproval    ReasonCode = "recommended_for_approval"
	ReasonRejected               ReasonCode = "rejected"
	ReasonEscalatedManually      ReasonCode = "escalated_manually"
	ReasonEscalatedOnTimeout     ReasonCode = "escalated_on_timeout"
	ReasonConfirmed              ReasonCode = "confirmed"
	ReasonAuthorizationCancelled ReasonCode = "authorization_cancelled"
)

// ReasonFor maps an action to the reason recorded in the audit trail.
func ReasonFor(action Action, actor Actor) ReasonCode {
	switch action {
	case ActionAssignReviewer:
		return ReasonReviewerAssigned
	case ActionApprove:
		return ReasonRecommendedApproval
	case ActionReject:
		return ReasonRejected
	case ActionEscalate:
		if actor.IsSystem() {
			return ReasonEscalatedOnTimeout
		}
		return ReasonEscalatedManually
	case ActionConfirm:
		return ReasonConfirmed
	case ActionCancel:
		return ReasonAuthorizationCancelled
	}
	return ReasonCode(action)
}

// AuditEntry is an immutable record of one state transition.
// WorkflowVersion is the workflow version the transition produced and orders
// entries that share a timestamp.
type AuditEntry struct {
	EntryID         string        `json:"entryID"`
	CompanyID       string        `json:"companyID"`
	WorkflowID      string        `json:"workflowID"`
	FromState       WorkflowState `json:"fromState"`
	ToState         WorkflowState `json:"toState"`
	ActorID         string        `json:"actorID"`
	ActorRole       Role          `json:"actorRole"`
	Action          Action        `json:"action"`
	EscalationLevel int           `json:"escalationLevel"`
	WorkflowVersion int64         `json:"workflowVersion"`
	ReasonCode      ReasonCode    `json:"reasonCode"`
	Timestamp       time.Time     `json:"timestamp"`
}
