package repositories

import (
	"context"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
)

// AuditReader queries the append-only audit trail. Entries are written only by
// WorkflowWriter.ApplyTransition. Results are ordered by timestamp, then workflow version.
type AuditReader interface {
	ListAuditByWorkflow(ctx context.Context, scope domain.CompanyScope, workflowID string) ([]domain.AuditEntry, error)
	ListAuditByCompany(ctx context.Context, scope domain.CompanyScope, window domain.TimeRange) ([]domain.AuditEntry, error)
}

// TokenLedgerReader answers whether a confirmation token fingerprint was already consumed.
type TokenLedgerReader interface {
	IsTokenUsed(ctx context.Context, scope domain.CompanyScope, fingerprint string) (bool, error)
}
