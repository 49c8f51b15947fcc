package services_test

import (
	"context"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	"github.com/SscSPs/withdrawal_approvals/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock CompanyReader ---
type MockCompanyReader struct {
	mock.Mock
}

func (m *MockCompanyReader) FindCompany(ctx context.Context, scope domain.CompanyScope) (*domain.Company, error) {
	args := m.Called(ctx, scope)
	var company *domain.Company
	if args.Get(0) != nil {
		company = args.Get(0).(*domain.Company)
	}
	return company, args.Error(1)
}

func (m *MockCompanyReader) ListCompaniesByStatus(ctx context.Context, status domain.CompanyStatus) ([]domain.Company, error) {
	args := m.Called(ctx, status)
	var companies []domain.Company
	if args.Get(0) != nil {
		companies = args.Get(0).([]domain.Company)
	}
	return companies, args.Error(1)
}

// --- Mock WorkflowReader ---
type MockWorkflowReader struct {
	mock.Mock
}

func (m *MockWorkflowReader) FindWorkflowByID(ctx context.Context, scope domain.CompanyScope, workflowID string) (*domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, scope, workflowID)
	var wf *domain.ApprovalWorkflow
	if args.Get(0) != nil {
		wf = args.Get(0).(*domain.ApprovalWorkflow)
	}
	return wf, args.Error(1)
}

func (m *MockWorkflowReader) FindWithdrawalRequestByID(ctx context.Context, scope domain.CompanyScope, requestID string) (*domain.WithdrawalRequest, error) {
	args := m.Called(ctx, scope, requestID)
	var req *domain.WithdrawalRequest
	if args.Get(0) != nil {
		req = args.Get(0).(*domain.WithdrawalRequest)
	}
	return req, args.Error(1)
}

func (m *MockWorkflowReader) ListWorkflowsByCompany(ctx context.Context, scope domain.CompanyScope, filter domain.WorkflowFilter) ([]domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, scope, filter)
	var wfs []domain.ApprovalWorkflow
	if args.Get(0) != nil {
		wfs = args.Get(0).([]domain.ApprovalWorkflow)
	}
	return wfs, args.Error(1)
}

func (m *MockWorkflowReader) ListDecisions(ctx context.Context, scope domain.CompanyScope, workflowID string) ([]domain.ApprovalDecision, error) {
	args := m.Called(ctx, scope, workflowID)
	var decisions []domain.ApprovalDecision
	if args.Get(0) != nil {
		decisions = args.Get(0).([]domain.ApprovalDecision)
	}
	return decisions, args.Error(1)
}

func (m *MockWorkflowReader) ListStalledWorkflows(ctx context.Context, scope domain.CompanyScope, query domain.StalledQuery) ([]domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, scope, query)
	var wfs []domain.ApprovalWorkflow
	if args.Get(0) != nil {
		wfs = args.Get(0).([]domain.ApprovalWorkflow)
	}
	return wfs, args.Error(1)
}

// --- Mock WorkflowWriterSvc ---
type MockWorkflowWriter struct {
	mock.Mock
}

func (m *MockWorkflowWriter) SubmitWithdrawalRequest(ctx context.Context, actor domain.Actor, companyID string, req dto.SubmitWithdrawalRequest) (*domain.WithdrawalRequest, *domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, actor, companyID, req)
	var request *domain.WithdrawalRequest
	if args.Get(0) != nil {
		request = args.Get(0).(*domain.WithdrawalRequest)
	}
	var wf *domain.ApprovalWorkflow
	if args.Get(1) != nil {
		wf = args.Get(1).(*domain.ApprovalWorkflow)
	}
	return request, wf, args.Error(2)
}

func (m *MockWorkflowWriter) AssignReviewer(ctx context.Context, actor domain.Actor, companyID, workflowID string, req dto.AssignReviewerRequest) (*domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, actor, companyID, workflowID, req)
	var wf *domain.ApprovalWorkflow
	if args.Get(0) != nil {
		wf = args.Get(0).(*domain.ApprovalWorkflow)
	}
	return wf, args.Error(1)
}

func (m *MockWorkflowWriter) RecordDecision(ctx context.Context, actor domain.Actor, companyID, workflowID string, req dto.RecordDecisionRequest) (*domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, actor, companyID, workflowID, req)
	var wf *domain.ApprovalWorkflow
	if args.Get(0) != nil {
		wf = args.Get(0).(*domain.ApprovalWorkflow)
	}
	return wf, args.Error(1)
}

// --- Mock AuditReader ---
type MockAuditReader struct {
	mock.Mock
}

func (m *MockAuditReader) ListAuditByWorkflow(ctx context.Context, scope domain.CompanyScope, workflowID string) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, scope, workflowID)
	var entries []domain.AuditEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.AuditEntry)
	}
	return entries, args.Error(1)
}

func (m *MockAuditReader) ListAuditByCompany(ctx context.Context, scope domain.CompanyScope, window domain.TimeRange) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, scope, window)
	var entries []domain.AuditEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.AuditEntry)
	}
	return entries, args.Error(1)
}
