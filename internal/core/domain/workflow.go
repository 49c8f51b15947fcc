package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkflowState is one stage of the approval state machine.
type WorkflowState string

const (
	StatePendingReview        WorkflowState = "pending_review"
	StateUnderReview          WorkflowState = "under_review"
	StatePendingAuthorization WorkflowState = "pending_authorization"
	StateEscalated            WorkflowState = "escalated"
	StateApproved             WorkflowState = "approved"
	StateRejected             WorkflowState = "rejected"
)

// IsTerminal reports whether no further decision is admitted.
func (s WorkflowState) IsTerminal() bool {
	return s == StateApproved || s == StateRejected
}

// Valid reports whether s is a known state.
func (s WorkflowState) Valid() bool {
	switch s {
	case StatePendingReview, StateUnderReview, StatePendingAuthorization, StateEscalated, StateApproved, StateRejected:
		return true
	}
	return false
}

// Action is something an actor asks the workflow to do.
type Action string

const (
	ActionSubmit         Action = "submit"
	ActionAssignReviewer Action = "assign_reviewer"
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionEscalate       Action = "escalate"
	ActionRequestInfo    Action = "request_info"
	ActionConfirm        Action = "confirm"
	ActionCancel         Action = "cancel"
)

// DecisionActions are the actions accepted by RecordDecision.
var DecisionActions = []Action{ActionApprove, ActionReject, ActionEscalate, ActionRequestInfo, ActionConfirm, ActionCancel}

// IsDecision reports whether a is accepted by RecordDecision.
func (a Action) IsDecision() bool {
	for _, d := range DecisionActions {
		if a == d {
			return true
		}
	}
	return false
}

// RiskTier is fixed when a workflow is first approved.
type RiskTier string

const (
	RiskUnclassified RiskTier = ""
	RiskStandard     RiskTier = "standard"
	RiskHigh         RiskTier = "high"
)

// ClassifyRisk compares the amount captured at submission with the threshold.
// A nil threshold classifies everything as standard.
func ClassifyRisk(amount decimal.Decimal, threshold *decimal.Decimal) RiskTier {
	if threshold != nil && amount.GreaterThanOrEqual(*threshold) {
		return RiskHigh
	}
	return RiskStandard
}

// ApprovalWorkflow tracks one withdrawal request through review.
type ApprovalWorkflow struct {
	WorkflowID          string             `json:"workflowID"`          // Primary Key
	CompanyID           string             `json:"companyID"`           // FK -> companies.company_id
	WithdrawalRequestID string             `json:"withdrawalRequestID"` // 1:1 FK -> withdrawal_requests.request_id
	State               WorkflowState      `json:"state"`
	AssignedReviewerID  *string            `json:"assignedReviewerID,omitempty"`
	StageEnteredAt      time.Time          `json:"stageEnteredAt"`
	EscalationLevel     int                `json:"escalationLevel"`
	Version             int64              `json:"version"`       // Optimistic lock
	RequestAmount       decimal.Decimal    `json:"requestAmount"` // Captured at submission, never re-read
	Currency            string             `json:"currency"`
	RiskTier            RiskTier           `json:"riskTier,omitempty"`
	ApprovedBy          *string            `json:"approvedBy,omitempty"` // Actor whose approve moved it to pending_authorization
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
	DecisionHistory     []ApprovalDecision `json:"decisionHistory,omitempty"`
	Request             *WithdrawalRequest `json:"request,omitempty"` // Loaded by GetWorkflow only
}

// ApprovalDecision is one recorded action on a workflow. The raw confirmation
// token is never stored; only its fingerprint.
type ApprovalDecision struct {
	DecisionID       string    `json:"decisionID"`
	CompanyID        string    `json:"companyID"`
	WorkflowID       string    `json:"workflowID"`
	ActorID          string    `json:"actorID"`
	ActorRole        Role      `json:"actorRole"`
	Action           Action    `json:"action"`
	Timestamp        time.Time `json:"timestamp"`
	TokenFingerprint *string   `json:"tokenFingerprint,omitempty"`
	Comment          string    `json:"comment,omitempty"`
}

// WorkflowCursor marks a position in a company listing ordered by CreatedAt desc, WorkflowID desc.
type WorkflowCursor struct {
	CreatedAt  time.Time
	WorkflowID string
}

// WorkflowFilter narrows a company listing.
type WorkflowFilter struct {
	State *WorkflowState
	Limit int
	After *WorkflowCursor
}

// StalledQuery selects workflows that have sat in State since before EnteredBefore.
// Results are ordered by (StageEnteredAt, WorkflowID) ascending; After resumes past a
// previously returned row.
type StalledQuery struct {
	State         WorkflowState
	EnteredBefore time.Time
	Limit         int
	After         *StalledCursor
}

// StalledCursor is the keyset position of the last row of a stalled page.
type StalledCursor struct {
	StageEnteredAt time.Time
	WorkflowID     string
}

// Precedes reports whether c sorts strictly before wf in stalled order.
func (c StalledCursor) Precedes(wf ApprovalWorkflow) bool {
	if wf.StageEnteredAt.Equal(c.StageEnteredAt) {
		return wf.WorkflowID > c.WorkflowID
	}
	return wf.StageEnteredAt.After(c.StageEnteredAt)
}
