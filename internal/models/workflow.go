package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalRequest is the withdrawal_requests row.
type WithdrawalRequest struct {
	RequestID  string          `db:"request_id"`
	CompanyID  string          `db:"company_id"`
	CustomerID string          `db:"customer_id"`
	AgentID    string          `db:"agent_id"`
	Amount     decimal.Decimal `db:"amount"`
	Currency   string          `db:"currency"`
	CreatedAt  time.Time       `db:"created_at"`
}

// ApprovalWorkflow is the approval_workflows row.
type ApprovalWorkflow struct {
	WorkflowID          string          `db:"workflow_id"`
	CompanyID           string          `db:"company_id"`
	WithdrawalRequestID string          `db:"withdrawal_request_id"`
	State               string          `db:"state"`
	AssignedReviewerID  sql.NullString  `db:"assigned_reviewer_id"`
	StageEnteredAt      time.Time       `db:"stage_entered_at"`
	EscalationLevel     int             `db:"escalation_level"`
	Version             int64           `db:"version"`
	RequestAmount       decimal.Decimal `db:"request_amount"`
	Currency            string          `db:"currency"`
	RiskTier            sql.NullString  `db:"risk_tier"`
	ApprovedBy          sql.NullString  `db:"approved_by"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

// ApprovalDecision is the approval_decisions row.
type ApprovalDecision struct {
	DecisionID       string         `db:"decision_id"`
	CompanyID        string         `db:"company_id"`
	WorkflowID       string         `db:"workflow_id"`
	ActorID          string         `db:"actor_id"`
	ActorRole        string         `db:"actor_role"`
	Action           string         `db:"action"`
	TokenFingerprint sql.NullString `db:"token_fingerprint"`
	Comment          string         `db:"comment"`
	DecidedAt        time.Time      `db:"decided_at"`
}

// AuditEntry is the audit_entries row. The table rejects UPDATE and DELETE.
type AuditEntry struct {
	EntryID         string    `db:"entry_id"`
	CompanyID       string    `db:"company_id"`
	WorkflowID      string    `db:"workflow_id"`
	FromState       string    `db:"from_state"`
	ToState         string    `db:"to_state"`
	ActorID         string    `db:"actor_id"`
	ActorRole       string    `db:"actor_role"`
	Action          string    `db:"action"`
	EscalationLevel int       `db:"escalation_level"`
	WorkflowVersion int64     `db:"workflow_version"`
	ReasonCode      string    `db:"reason_code"`
	RecordedAt      time.Time `db:"recorded_at"`
}

// ConfirmationTokenUse is the confirmation_token_uses row, keyed by fingerprint.
type ConfirmationTokenUse struct {
	Fingerprint string    `db:"fingerprint"`
	CompanyID   string    `db:"company_id"`
	WorkflowID  string    `db:"workflow_id"`
	ActorID     string    `db:"actor_id"`
	UsedAt      time.Time `db:"used_at"`
}
