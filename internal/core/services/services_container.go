package services

import (
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portsrepo "github.com/SscSPs/withdrawal_approvals/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/withdrawal_approvals/internal/core/ports/services"
	"github.com/SscSPs/withdrawal_approvals/internal/platform/config"
	"github.com/SscSPs/withdrawal_approvals/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// emitter and recorder may be nil.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, emitter portssvc.EventEmitter, recorder *metrics.Recorder) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	options := []WorkflowOption{
		WithUserDirectory(repos.UserRepo),
		WithTokenLedger(repos.TokenLedger),
		WithConfirmationVerifier(NewJWTConfirmationVerifier(cfg.ConfirmationTokenSecret, cfg.ConfirmationTokenMaxAge, time.Now)),
		WithHighValueThreshold(cfg.HighValueThreshold),
		WithStoreRetries(cfg.StoreMaxRetries, 100*time.Millisecond),
		WithMetrics(recorder),
	}
	if emitter != nil {
		options = append(options, WithEventEmitter(emitter))
	}
	container.Workflow = NewWorkflowService(repos.WorkflowRepo, repos.CompanyRepo, options...)

	container.Audit = NewAuditService(repos.AuditRepo)

	schedulerOptions := []EscalationOption{
		WithScanInterval(cfg.EscalationScanInterval),
		WithMaxEscalationLevel(cfg.MaxEscalationLevel),
		WithSchedulerMetrics(recorder),
	}
	if emitter != nil {
		schedulerOptions = append(schedulerOptions, WithStalledEmitter(emitter))
	}
	container.Escalation = NewEscalationScheduler(
		repos.CompanyRepo,
		repos.WorkflowRepo,
		container.Workflow,
		domain.EscalationPolicy{
			PendingReview:        cfg.DeadlinePendingReview,
			UnderReview:          cfg.DeadlineUnderReview,
			PendingAuthorization: cfg.DeadlinePendingAuthorization,
		},
		schedulerOptions...,
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.WorkflowSvcFacade = (*workflowService)(nil)
	_ portssvc.AuditSvc          = (*auditService)(nil)
	_ portssvc.EscalationSvc     = (*escalationScheduler)(nil)
)
