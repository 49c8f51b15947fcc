package repositories

import (
	"context"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
)

// WorkflowReader defines read operations for withdrawal requests and their workflows.
// A row owned by another company is reported as apperrors.ErrNotFound.
type WorkflowReader interface {
	// FindWorkflowByID retrieves a workflow without its decision history.
	FindWorkflowByID(ctx context.Context, scope domain.CompanyScope, workflowID string) (*domain.ApprovalWorkflow, error)

	// FindWithdrawalRequestByID retrieves the request a workflow was created for.
	FindWithdrawalRequestByID(ctx context.Context, scope domain.CompanyScope, requestID string) (*domain.WithdrawalRequest, error)

	// ListWorkflowsByCompany pages through a company's workflows, newest first.
	ListWorkflowsByCompany(ctx context.Context, scope domain.CompanyScope, filter domain.WorkflowFilter) ([]domain.ApprovalWorkflow, error)

	// ListDecisions returns a workflow's decision history in the order it was recorded.
	ListDecisions(ctx context.Context, scope domain.CompanyScope, workflowID string) ([]domain.ApprovalDecision, error)

	// ListStalledWorkflows returns workflows in query.State whose stage began before query.EnteredBefore.
	ListStalledWorkflows(ctx context.Context, scope domain.CompanyScope, query domain.StalledQuery) ([]domain.ApprovalWorkflow, error)
}

// WorkflowWriter defines the two atomic writes of the engine.
type WorkflowWriter interface {
	// CreateWithdrawalWithWorkflow inserts the request and its workflow in one transaction.
	CreateWithdrawalWithWorkflow(ctx context.Context, scope domain.CompanyScope, request domain.WithdrawalRequest, workflow domain.ApprovalWorkflow) error

	// ApplyTransition writes the workflow row, decision, audit entry and consumed token
	// in one transaction, conditional on t.ExpectedVersion. A lost version check
	// yields apperrors.ErrConflict and a consumed token apperrors.ErrTokenReplay.
	ApplyTransition(ctx context.Context, scope domain.CompanyScope, t domain.Transition) error
}

// WorkflowRepositoryFacade combines all workflow-related repository interfaces
type WorkflowRepositoryFacade interface {
	WorkflowReader
	WorkflowWriter
}
