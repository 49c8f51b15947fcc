package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portsrepo "github.com/SscSPs/withdrawal_approvals/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/withdrawal_approvals/internal/core/ports/services"
)

type auditService struct {
	BaseService
	auditRepo portsrepo.AuditReader
}

// NewAuditService creates the read side of the audit trail.
func NewAuditService(auditRepo portsrepo.AuditReader) portssvc.AuditSvc {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvc = (*auditService)(nil)

func (s *auditService) ListWorkflowAudit(ctx context.Context, actor domain.Actor, companyID, workflowID string) ([]domain.AuditEntry, error) {
	scope, err := s.resolveScope(ctx, actor, companyID)
	if err != nil {
		return nil, err
	}
	entries, err := s.auditRepo.ListAuditByWorkflow(ctx, scope, workflowID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *auditService) ListCompanyAudit(ctx context.Context, actor domain.Actor, companyID string, window domain.TimeRange) ([]domain.AuditEntry, error) {
	scope, err := s.resolveScope(ctx, actor, companyID)
	if err != nil {
		return nil, err
	}
	if !window.From.IsZero() && !window.To.IsZero() && !window.From.Before(window.To) {
		return nil, apperrors.NewValidationFailedError("from must be before to")
	}
	entries, err := s.auditRepo.ListAuditByCompany(ctx, scope, window)
	if err != nil {
		s.LogError(ctx, err, "Failed to list company audit", slog.String("company_id", scope.CompanyID()))
		return nil, err
	}
	return entries, nil
}
