package services

import (
	"context"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
)

// AuditSvc exposes the audit trail to company members.
type AuditSvc interface {
	// ListWorkflowAudit returns a workflow's transitions in order.
	ListWorkflowAudit(ctx context.Context, actor domain.Actor, companyID, workflowID string) ([]domain.AuditEntry, error)

	// ListCompanyAudit returns the company's transitions inside window.
	ListCompanyAudit(ctx context.Context, actor domain.Actor, companyID string, window domain.TimeRange) ([]domain.AuditEntry, error)
}

// EscalationSvc is the background scanner for stalled workflows.
type EscalationSvc interface {
	// RunCycle performs one scan of every active company.
	RunCycle(ctx context.Context) (domain.EscalationCycleReport, error)

	// Run calls RunCycle on a fixed interval until ctx is cancelled.
	Run(ctx context.Context) error
}
