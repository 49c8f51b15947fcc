package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	"github.com/SscSPs/withdrawal_approvals/internal/core/services"
	"github.com/SscSPs/withdrawal_approvals/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuditService_ReadsOwnCompanyOnly(t *testing.T) {
	ctx := context.Background()
	store := seedStore()
	clock := newFakeClock()
	workflows := newWorkflowService(store, clock, &recordingEmitter{})
	audit := services.NewAuditService(store)

	_, wf, err := workflows.SubmitWithdrawalRequest(ctx, agentA, "company-a", dto.SubmitWithdrawalRequest{
		CustomerID: "cust-1", Amount: decimal.NewFromInt(300), Currency: "KES",
	})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = workflows.AssignReviewer(ctx, clerkA, "company-a", wf.WorkflowID, dto.AssignReviewerRequest{ReviewerID: clerkA.ActorID})
	require.NoError(t, err)

	entries, err := audit.ListWorkflowAudit(ctx, agentA, "company-a", wf.WorkflowID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatePendingReview, entries[0].FromState)
	assert.Equal(t, domain.StateUnderReview, entries[0].ToState)
	assert.Equal(t, int64(2), entries[0].WorkflowVersion)

	_, err = audit.ListWorkflowAudit(ctx, clerkB, "company-a", wf.WorkflowID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = audit.ListWorkflowAudit(ctx, clerkB, "company-b", wf.WorkflowID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	window := domain.TimeRange{From: t0, To: t0.Add(time.Hour)}
	all, err := audit.ListCompanyAudit(ctx, superU, "company-a", window)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := audit.ListCompanyAudit(ctx, adminA, "company-a", domain.TimeRange{From: t0.Add(time.Hour), To: t0.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAuditService_RejectsInvertedWindow(t *testing.T) {
	repo := new(MockAuditReader)
	audit := services.NewAuditService(repo)

	_, err := audit.ListCompanyAudit(context.Background(), adminA, "company-a", domain.TimeRange{From: t0, To: t0})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertNotCalled(t, "ListAuditByCompany", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuditService_PassesScopeToRepository(t *testing.T) {
	repo := new(MockAuditReader)
	window := domain.TimeRange{From: t0}
	repo.On("ListAuditByCompany", mock.Anything, domain.MustScope("company-a"), window).
		Return([]domain.AuditEntry{{EntryID: "e-1", CompanyID: "company-a"}}, nil).Once()

	entries, err := services.NewAuditService(repo).ListCompanyAudit(context.Background(), clerkA, "company-a", window)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	repo.AssertExpectations(t)
}
