package services

import (
	"context"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	"github.com/SscSPs/withdrawal_approvals/internal/dto"
)

// WorkflowReaderSvc defines read operations for approval workflows.
// A workflow outside the actor's company is reported as not found.
type WorkflowReaderSvc interface {
	// GetWorkflow retrieves a workflow together with its withdrawal request and decision history.
	GetWorkflow(ctx context.Context, actor domain.Actor, companyID, workflowID string) (*domain.ApprovalWorkflow, error)

	// ListWorkflows pages through a company's workflows, newest first.
	ListWorkflows(ctx context.Context, actor domain.Actor, companyID string, params dto.ListWorkflowsParams) ([]domain.ApprovalWorkflow, *string, error)

	// ListDecisions returns a workflow's decision history.
	ListDecisions(ctx context.Context, actor domain.Actor, companyID, workflowID string) ([]domain.ApprovalDecision, error)
}

// WorkflowWriterSvc defines the state-changing operations of the engine.
type WorkflowWriterSvc interface {
	// SubmitWithdrawalRequest creates a request and its pending_review workflow atomically.
	SubmitWithdrawalRequest(ctx context.Context, actor domain.Actor, companyID string, req dto.SubmitWithdrawalRequest) (*domain.WithdrawalRequest, *domain.ApprovalWorkflow, error)

	// AssignReviewer moves a pending_review workflow to under_review.
	AssignReviewer(ctx context.Context, actor domain.Actor, companyID, workflowID string, req dto.AssignReviewerRequest) (*domain.ApprovalWorkflow, error)

	// RecordDecision applies a review decision.
	RecordDecision(ctx context.Context, actor domain.Actor, companyID, workflowID string, req dto.RecordDecisionRequest) (*domain.ApprovalWorkflow, error)
}

// WorkflowSvcFacade combines all workflow-related service interfaces
type WorkflowSvcFacade interface {
	WorkflowReaderSvc
	WorkflowWriterSvc
}

// ConfirmationVerifier checks step-up confirmation tokens issued outside the engine.
type ConfirmationVerifier interface {
	// Verify checks signature and freshness and returns the token's claims.
	Verify(ctx context.Context, rawToken string) (*domain.ConfirmationClaims, error)

	// Fingerprint checks the signature and returns the value stored in place of
	// the raw token. It identifies the signed claims, not the encoding.
	Fingerprint(ctx context.Context, rawToken string) (string, error)
}

// EventEmitter receives events after their write has committed. Emit must not block.
type EventEmitter interface {
	Emit(ctx context.Context, event domain.WorkflowEvent)
}
