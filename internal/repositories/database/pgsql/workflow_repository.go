package pgsql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portsrepo "github.com/SscSPs/withdrawal_approvals/internal/core/ports/repositories"
	"github.com/SscSPs/withdrawal_approvals/internal/models"
	"github.com/jackc/pgx/v5"
)

const tokenUsesPkey = "confirmation_token_uses_pkey"

type PgxWorkflowRepository struct {
	BaseRepository
}

func newPgxWorkflowRepository(base BaseRepository) portsrepo.WorkflowRepositoryFacade {
	return &PgxWorkflowRepository{BaseRepository: base}
}

var _ portsrepo.WorkflowRepositoryFacade = (*PgxWorkflowRepository)(nil)

const workflowColumns = `workflow_id, company_id, withdrawal_request_id, state, assigned_reviewer_id, stage_entered_at,
	escalation_level, version, request_amount, currency, risk_tier, approved_by, created_at, updated_at`

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

func toModelWorkflow(d domain.ApprovalWorkflow) models.ApprovalWorkflow {
	m := models.ApprovalWorkflow{
		WorkflowID:          d.WorkflowID,
		CompanyID:           d.CompanyID,
		WithdrawalRequestID: d.WithdrawalRequestID,
		State:               string(d.State),
		AssignedReviewerID:  nullString(d.AssignedReviewerID),
		StageEnteredAt:      d.StageEnteredAt,
		EscalationLevel:     d.EscalationLevel,
		Version:             d.Version,
		RequestAmount:       d.RequestAmount,
		Currency:            d.Currency,
		ApprovedBy:          nullString(d.ApprovedBy),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
	if d.RiskTier != domain.RiskUnclassified {
		m.RiskTier = sql.NullString{String: string(d.RiskTier), Valid: true}
	}
	return m
}

func toDomainWorkflow(m models.ApprovalWorkflow) domain.ApprovalWorkflow {
	return domain.ApprovalWorkflow{
		WorkflowID:          m.WorkflowID,
		CompanyID:           m.CompanyID,
		WithdrawalRequestID: m.WithdrawalRequestID,
		State:               domain.WorkflowState(m.State),
		AssignedReviewerID:  stringPtr(m.AssignedReviewerID),
		StageEnteredAt:      m.StageEnteredAt,
		EscalationLevel:     m.EscalationLevel,
		Version:             m.Version,
		RequestAmount:       m.RequestAmount,
		Currency:            m.Currency,
		RiskTier:            domain.RiskTier(m.RiskTier.String),
		ApprovedBy:          stringPtr(m.ApprovedBy),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func scanWorkflow(row pgx.Row) (models.ApprovalWorkflow, error) {
	var m models.ApprovalWorkflow
	err := row.Scan(
		&m.WorkflowID,
		&m.CompanyID,
		&m.WithdrawalRequestID,
		&m.State,
		&m.AssignedReviewerID,
		&m.StageEnteredAt,
		&m.EscalationLevel,
		&m.Version,
		&m.RequestAmount,
		&m.Currency,
		&m.RiskTier,
		&m.ApprovedBy,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func collectWorkflows(rows pgx.Rows) ([]domain.ApprovalWorkflow, error) {
	defer rows.Close()
	workflows := []domain.ApprovalWorkflow{}
	for rows.Next() {
		m, err := scanWorkflow(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan workflow row")
		}
		workflows = append(workflows, toDomainWorkflow(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating workflow rows")
	}
	return workflows, nil
}

func (r *PgxWorkflowRepository) FindWorkflowByID(ctx context.Context, scope domain.CompanyScope, workflowID string) (*domain.ApprovalWorkflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM approval_workflows WHERE company_id = $1 AND workflow_id = $2;`
	m, err := scanWorkflow(r.Pool.QueryRow(ctx, query, scope.CompanyID(), workflowID))
	if err != nil {
		return nil, mapError(err, "failed to find workflow "+workflowID)
	}
	wf := toDomainWorkflow(m)
	return &wf, nil
}

func (r *PgxWorkflowRepository) FindWithdrawalRequestByID(ctx context.Context, scope domain.CompanyScope, requestID string) (*domain.WithdrawalRequest, error) {
	query := `
		SELECT request_id, company_id, customer_id, agent_id, amount, currency, created_at
		FROM withdrawal_requests
		WHERE company_id = $1 AND request_id = $2;
	`
	var m models.WithdrawalRequest
	err := r.Pool.QueryRow(ctx, query, scope.CompanyID(), requestID).Scan(
		&m.RequestID,
		&m.CompanyID,
		&m.CustomerID,
		&m.AgentID,
		&m.Amount,
		&m.Currency,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err, "failed to find withdrawal request "+requestID)
	}
	return &domain.WithdrawalRequest{
		RequestID:  m.RequestID,
		CompanyID:  m.CompanyID,
		CustomerID: m.CustomerID,
		AgentID:    m.AgentID,
		Amount:     m.Amount,
		Currency:   m.Currency,
		CreatedAt:  m.CreatedAt,
	}, nil
}

func (r *PgxWorkflowRepository) ListWorkflowsByCompany(ctx context.Context, scope domain.CompanyScope, filter domain.WorkflowFilter) ([]domain.ApprovalWorkflow, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + workflowColumns + ` FROM approval_workflows WHERE company_id = $1`
	args := []interface{}{scope.CompanyID()}
	if filter.State != nil {
		args = append(args, string(*filter.State))
		query += ` AND state = $` + strconv.Itoa(len(args))
	}
	if filter.After != nil {
		// Tuple comparison matches the ORDER BY below.
		args = append(args, filter.After.CreatedAt, filter.After.WorkflowID)
		query += fmt.Sprintf(` AND (created_at, workflow_id) < ($%d, $%d)`, len(args)-1, len(args))
	}
	args = append(args, limit)
	query += ` ORDER BY created_at DESC, workflow_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to query workflows for company "+scope.CompanyID())
	}
	return collectWorkflows(rows)
}

func (r *PgxWorkflowRepository) ListStalledWorkflows(ctx context.Context, scope domain.CompanyScope, q domain.StalledQuery) ([]domain.ApprovalWorkflow, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 200
	}
	args := []interface{}{scope.CompanyID(), string(q.State), q.EnteredBefore, limit}
	keyset := ""
	if q.After != nil {
		keyset = " AND (stage_entered_at, workflow_id) > ($5, $6)"
		args = append(args, q.After.StageEnteredAt, q.After.WorkflowID)
	}
	query := `SELECT ` + workflowColumns + `
		FROM approval_workflows
		WHERE company_id = $1 AND state = $2 AND stage_entered_at < $3` + keyset + `
		ORDER BY stage_entered_at ASC, workflow_id ASC
		LIMIT $4;`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to query stalled workflows")
	}
	return collectWorkflows(rows)
}

func (r *PgxWorkflowRepository) ListDecisions(ctx context.Context, scope domain.CompanyScope, workflowID string) ([]domain.ApprovalDecision, error) {
	query := `
		SELECT decision_id, company_id, workflow_id, actor_id, actor_role, action, token_fingerprint, comment, decided_at
		FROM approval_decisions
		WHERE company_id = $1 AND workflow_id = $2
		ORDER BY seq;
	`
	rows, err := r.Pool.Query(ctx, query, scope.CompanyID(), workflowID)
	if err != nil {
		return nil, mapError(err, "failed to query decisions")
	}
	defer rows.Close()

	decisions := []domain.ApprovalDecision{}
	for rows.Next() {
		var m models.ApprovalDecision
		if err := rows.Scan(
			&m.DecisionID,
			&m.CompanyID,
			&m.WorkflowID,
			&m.ActorID,
			&m.ActorRole,
			&m.Action,
			&m.TokenFingerprint,
			&m.Comment,
			&m.DecidedAt,
		); err != nil {
			return nil, mapError(err, "failed to scan decision row")
		}
		decisions = append(decisions, domain.ApprovalDecision{
			DecisionID:       m.DecisionID,
			CompanyID:        m.CompanyID,
			WorkflowID:       m.WorkflowID,
			ActorID:          m.ActorID,
			ActorRole:        domain.Role(m.ActorRole),
			Action:           domain.Action(m.Action),
			Timestamp:        m.DecidedAt,
			TokenFingerprint: stringPtr(m.TokenFingerprint),
			Comment:          m.Comment,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating decision rows")
	}
	return decisions, nil
}

func (r *PgxWorkflowRepository) CreateWithdrawalWithWorkflow(ctx context.Context, scope domain.CompanyScope, request domain.WithdrawalRequest, workflow domain.ApprovalWorkflow) error {
	if !scope.Owns(request.CompanyID) || !scope.Owns(workflow.CompanyID) {
		return scopeMismatch("row")
	}
	if workflow.WithdrawalRequestID != request.RequestID {
		return apperrors.NewValidationFailedError("workflow does not reference the request")
	}
	wf := toModelWorkflow(workflow)

	return r.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO withdrawal_requests (request_id, company_id, customer_id, agent_id, amount, currency, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			request.RequestID, request.CompanyID, request.CustomerID, request.AgentID,
			request.Amount, request.Currency, request.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err, "") {
				return apperrors.NewConflictError("withdrawal request already exists")
			}
			return mapError(err, "failed to insert withdrawal request")
		}

		_, err = tx.Exec(ctx, `INSERT INTO approval_workflows (`+workflowColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`,
			wf.WorkflowID, wf.CompanyID, wf.WithdrawalRequestID, wf.State, wf.AssignedReviewerID, wf.StageEnteredAt,
			wf.EscalationLevel, wf.Version, wf.RequestAmount, wf.Currency, wf.RiskTier, wf.ApprovedBy,
			wf.CreatedAt, wf.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err, "") {
				return apperrors.NewConflictError("workflow already exists")
			}
			return mapError(err, "failed to insert workflow")
		}
		return nil
	})
}

func (r *PgxWorkflowRepository) ApplyTransition(ctx context.Context, scope domain.CompanyScope, t domain.Transition) error {
	if !scope.Owns(t.Workflow.CompanyID) || !scope.Owns(t.Decision.CompanyID) ||
		(t.Audit != nil && !scope.Owns(t.Audit.CompanyID)) || (t.TokenUse != nil && !scope.Owns(t.TokenUse.CompanyID)) {
		return scopeMismatch("row")
	}
	wf := toModelWorkflow(t.Workflow)

	return r.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE approval_workflows
			SET state = $1, assigned_reviewer_id = $2, stage_entered_at = $3, escalation_level = $4,
			    version = $5, risk_tier = $6, approved_by = $7, updated_at = $8
			WHERE workflow_id = $9 AND company_id = $10 AND version = $11;`,
			wf.State, wf.AssignedReviewerID, wf.StageEnteredAt, wf.EscalationLevel,
			wf.Version, wf.RiskTier, wf.ApprovedBy, wf.UpdatedAt,
			wf.WorkflowID, scope.CompanyID(), t.ExpectedVersion,
		)
		if err != nil {
			return mapError(err, "failed to update workflow")
		}
		if tag.RowsAffected() == 0 {
			return r.missedUpdate(ctx, tx, scope, t)
		}

		if t.TokenUse != nil {
			_, err = tx.Exec(ctx, `
				INSERT INTO confirmation_token_uses (fingerprint, company_id, workflow_id, actor_id, used_at)
				VALUES ($1, $2, $3, $4, $5);`,
				t.TokenUse.Fingerprint, t.TokenUse.CompanyID, t.TokenUse.WorkflowID, t.TokenUse.ActorID, t.TokenUse.UsedAt,
			)
			if err != nil {
				if isUniqueViolation(err, tokenUsesPkey) {
					return apperrors.NewTokenReplayError()
				}
				return mapError(err, "failed to record token use")
			}
		}

		d := t.Decision
		_, err = tx.Exec(ctx, `
			INSERT INTO approval_decisions (decision_id, company_id, workflow_id, actor_id, actor_role, action, token_fingerprint, comment, decided_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
			d.DecisionID, d.CompanyID, d.WorkflowID, d.ActorID, string(d.ActorRole), string(d.Action),
			nullString(d.TokenFingerprint), d.Comment, d.Timestamp,
		)
		if err != nil {
			return mapError(err, "failed to insert decision")
		}

		if t.Audit != nil {
			a := t.Audit
			_, err = tx.Exec(ctx, `
				INSERT INTO audit_entries (entry_id, company_id, workflow_id, from_state, to_state, actor_id, actor_role,
				                           action, escalation_level, workflow_version, reason_code, recorded_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
				a.EntryID, a.CompanyID, a.WorkflowID, string(a.FromState), string(a.ToState), a.ActorID, string(a.ActorRole),
				string(a.Action), a.EscalationLevel, a.WorkflowVersion, string(a.ReasonCode), a.Timestamp,
			)
			if err != nil {
				return mapError(err, "failed to insert audit entry")
			}
		}
		return nil
	})
}

// missedUpdate tells a lost version check apart from a workflow that is not visible in scope.
func (r *PgxWorkflowRepository) missedUpdate(ctx context.Context, tx pgx.Tx, scope domain.CompanyScope, t domain.Transition) error {
	var current int64
	err := tx.QueryRow(ctx, `SELECT version FROM approval_workflows WHERE workflow_id = $1 AND company_id = $2;`,
		t.Workflow.WorkflowID, scope.CompanyID()).Scan(&current)
	if err != nil {
		return mapError(err, "failed to read workflow version")
	}
	return apperrors.NewConflictError(fmt.Sprintf("workflow version is %d, expected %d", current, t.ExpectedVersion))
}
