package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, apperrors.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperrors.ErrNotFound},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, apperrors.ErrStorageUnavailable},
		{"connection exception", &pgconn.PgError{Code: "08006"}, apperrors.ErrStorageUnavailable},
		{"deadline", context.DeadlineExceeded, apperrors.ErrStorageUnavailable},
		{"check violation", &pgconn.PgError{Code: "23514"}, apperrors.ErrInternal},
		{"app error passes through", apperrors.NewConflictError("lost"), apperrors.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err, "op"), tt.want)
		})
	}
	assert.NoError(t, mapError(nil, "op"))
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: tokenUsesPkey}
	assert.True(t, isUniqueViolation(err, ""))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", err), tokenUsesPkey))
	assert.False(t, isUniqueViolation(err, "audit_entries_pkey"))
	assert.False(t, isUniqueViolation(errors.New("boom"), ""))
}

func TestWorkflowModelRoundTrip(t *testing.T) {
	reviewer := "clerk-a"
	wf := domain.ApprovalWorkflow{
		WorkflowID:         "wf-1",
		CompanyID:          "company-a",
		State:              domain.StateUnderReview,
		AssignedReviewerID: &reviewer,
		Version:            3,
	}
	m := toModelWorkflow(wf)
	assert.Equal(t, sql.NullString{String: "clerk-a", Valid: true}, m.AssignedReviewerID)
	assert.False(t, m.RiskTier.Valid, "unclassified risk is stored as NULL")
	assert.False(t, m.ApprovedBy.Valid)

	back := toDomainWorkflow(m)
	assert.Equal(t, wf.State, back.State)
	assert.Equal(t, domain.RiskUnclassified, back.RiskTier)
	assert.Equal(t, &reviewer, back.AssignedReviewerID)
	assert.Nil(t, back.ApprovedBy)
}

func TestScopeMismatchRejectsWrites(t *testing.T) {
	repo := &PgxWorkflowRepository{}
	err := repo.ApplyTransition(context.Background(), domain.MustScope("company-a"), domain.Transition{
		Workflow: domain.ApprovalWorkflow{WorkflowID: "wf-1", CompanyID: "company-b"},
		Decision: domain.ApprovalDecision{CompanyID: "company-b"},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
