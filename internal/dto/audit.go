package dto

import (
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
)

// CompanyAuditParams defines the time window for a company audit query.
// Both bounds are optional; the window is half-open [from, to).
type CompanyAuditParams struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ToTimeRange converts the params to a domain.TimeRange.
func (p CompanyAuditParams) ToTimeRange() domain.TimeRange {
	var r domain.TimeRange
	if p.From != nil {
		r.From = *p.From
	}
	if p.To != nil {
		r.To = *p.To
	}
	return r
}

// AuditEntryResponse mirrors domain.AuditEntry.
type AuditEntryResponse struct {
	EntryID         string               `json:"entryID"`
	WorkflowID      string               `json:"workflowID"`
	FromState       domain.WorkflowState `json:"fromState"`
	ToState         domain.WorkflowState `json:"toState"`
	ActorID         string               `json:"actorID"`
	ActorRole       domain.Role          `json:"actorRole"`
	Action          domain.Action        `json:"action"`
	EscalationLevel int                  `json:"escalationLevel"`
	WorkflowVersion int64                `json:"workflowVersion"`
	ReasonCode      domain.ReasonCode    `json:"reasonCode"`
	Timestamp       time.Time            `json:"timestamp"`
}

// ListAuditResponse wraps audit entries.
type ListAuditResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
}

// ToListAuditResponse converts audit entries to their DTO
func ToListAuditResponse(entries []domain.AuditEntry) ListAuditResponse {
	res := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = AuditEntryResponse{
			EntryID:         e.EntryID,
			WorkflowID:      e.WorkflowID,
			FromState:       e.FromState,
			ToState:         e.ToState,
			ActorID:         e.ActorID,
			ActorRole:       e.ActorRole,
			Action:          e.Action,
			EscalationLevel: e.EscalationLevel,
			WorkflowVersion: e.WorkflowVersion,
			ReasonCode:      e.ReasonCode,
			Timestamp:       e.Timestamp,
		}
	}
	return ListAuditResponse{Entries: res}
}
