package pgsql

import (
	"context"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portsrepo "github.com/SscSPs/withdrawal_approvals/internal/core/ports/repositories"
	"github.com/SscSPs/withdrawal_approvals/internal/models"
	"github.com/jackc/pgx/v5"
)

// PgxAuditRepository reads the append-only audit trail and the confirmation token ledger.
type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(base BaseRepository) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository: base}
}

var _ portsrepo.AuditReader = (*PgxAuditRepository)(nil)
var _ portsrepo.TokenLedgerReader = (*PgxAuditRepository)(nil)

const auditColumns = `entry_id, company_id, workflow_id, from_state, to_state, actor_id, actor_role, action,
	escalation_level, workflow_version, reason_code, recorded_at`

func collectAudit(rows pgx.Rows) ([]domain.AuditEntry, error) {
	defer rows.Close()
	entries := []domain.AuditEntry{}
	for rows.Next() {
		var m models.AuditEntry
		if err := rows.Scan(
			&m.EntryID,
			&m.CompanyID,
			&m.WorkflowID,
			&m.FromState,
			&m.ToState,
			&m.ActorID,
			&m.ActorRole,
			&m.Action,
			&m.EscalationLevel,
			&m.WorkflowVersion,
			&m.ReasonCode,
			&m.RecordedAt,
		); err != nil {
			return nil, mapError(err, "failed to scan audit row")
		}
		entries = append(entries, domain.AuditEntry{
			EntryID:         m.EntryID,
			CompanyID:       m.CompanyID,
			WorkflowID:      m.WorkflowID,
			FromState:       domain.WorkflowState(m.FromState),
			ToState:         domain.WorkflowState(m.ToState),
			ActorID:         m.ActorID,
			ActorRole:       domain.Role(m.ActorRole),
			Action:          domain.Action(m.Action),
			EscalationLevel: m.EscalationLevel,
			WorkflowVersion: m.WorkflowVersion,
			ReasonCode:      domain.ReasonCode(m.ReasonCode),
			Timestamp:       m.RecordedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating audit rows")
	}
	return entries, nil
}

func (r *PgxAuditRepository) ListAuditByWorkflow(ctx context.Context, scope domain.CompanyScope, workflowID string) ([]domain.AuditEntry, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM approval_workflows WHERE company_id = $1 AND workflow_id = $2);`,
		scope.CompanyID(), workflowID).Scan(&exists)
	if err != nil {
		return nil, mapError(err, "failed to check workflow")
	}
	if !exists {
		return nil, apperrors.NewNotFoundError("workflow not found")
	}

	rows, err := r.Pool.Query(ctx, `SELECT `+auditColumns+`
		FROM audit_entries
		WHERE company_id = $1 AND workflow_id = $2
		ORDER BY recorded_at, workflow_version;`, scope.CompanyID(), workflowID)
	if err != nil {
		return nil, mapError(err, "failed to query audit entries")
	}
	return collectAudit(rows)
}

func (r *PgxAuditRepository) ListAuditByCompany(ctx context.Context, scope domain.CompanyScope, window domain.TimeRange) ([]domain.AuditEntry, error) {
	var from, to interface{}
	if !window.From.IsZero() {
		from = window.From
	}
	if !window.To.IsZero() {
		to = window.To
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+auditColumns+`
		FROM audit_entries
		WHERE company_id = $1
		  AND ($2::timestamptz IS NULL OR recorded_at >= $2)
		  AND ($3::timestamptz IS NULL OR recorded_at < $3)
		ORDER BY recorded_at, workflow_id, workflow_version;`, scope.CompanyID(), from, to)
	if err != nil {
		return nil, mapError(err, "failed to query company audit")
	}
	return collectAudit(rows)
}

func (r *PgxAuditRepository) IsTokenUsed(ctx context.Context, scope domain.CompanyScope, fingerprint string) (bool, error) {
	var used bool
	err := r.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM confirmation_token_uses WHERE company_id = $1 AND fingerprint = $2);`,
		scope.CompanyID(), fingerprint).Scan(&used)
	if err != nil {
		return false, mapError(err, "failed to check token ledger")
	}
	return used, nil
}
