package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portsrepo "github.com/SscSPs/withdrawal_approvals/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/withdrawal_approvals/internal/core/ports/services"
	"github.com/SscSPs/withdrawal_approvals/internal/dto"
	"github.com/SscSPs/withdrawal_approvals/internal/platform/metrics"
	"github.com/google/uuid"
)

var scannedStates = []domain.WorkflowState{
	domain.StatePendingReview,
	domain.StateUnderReview,
	domain.StatePendingAuthorization,
}

type escalationScheduler struct {
	BaseService
	companyRepo  portsrepo.CompanyReader
	workflowRepo portsrepo.WorkflowReader
	workflows    portssvc.WorkflowWriterSvc
	emitter      portssvc.EventEmitter

	defaults  domain.EscalationPolicy
	interval  time.Duration
	maxLevel  int
	batchSize int
	now       func() time.Time

	mu      sync.Mutex
	flagged map[string]time.Time // workflow id -> stage entry already reported as stalled
}

// EscalationOption is a functional option for configuring the escalation scheduler
type EscalationOption func(*escalationScheduler)

// WithScanInterval sets the delay between cycles in Run.
func WithScanInterval(d time.Duration) EscalationOption {
	return func(s *escalationScheduler) {
		s.interval = d
	}
}

// WithMaxEscalationLevel stops automatic escalation at level; beyond it workflows are only flagged.
func WithMaxEscalationLevel(level int) EscalationOption {
	return func(s *escalationScheduler) {
		s.maxLevel = level
	}
}

// WithScanBatchSize sets how many overdue workflows are listed per page.
func WithScanBatchSize(n int) EscalationOption {
	return func(s *escalationScheduler) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithSchedulerClock replaces time.Now.
func WithSchedulerClock(now func() time.Time) EscalationOption {
	return func(s *escalationScheduler) {
		s.now = now
	}
}

// WithStalledEmitter sends workflow.stalled events to e.
func WithStalledEmitter(e portssvc.EventEmitter) EscalationOption {
	return func(s *escalationScheduler) {
		s.emitter = e
	}
}

// WithSchedulerMetrics adds the metrics recorder.
func WithSchedulerMetrics(m *metrics.Recorder) EscalationOption {
	return func(s *escalationScheduler) {
		s.Metrics = m
	}
}

// NewEscalationScheduler creates the background scanner. Escalations go through
// workflows.RecordDecision as the system actor so they pass the same gate,
// version check and audit path as human decisions.
func NewEscalationScheduler(companyRepo portsrepo.CompanyReader, workflowRepo portsrepo.WorkflowReader, workflows portssvc.WorkflowWriterSvc, defaults domain.EscalationPolicy, options ...EscalationOption) portssvc.EscalationSvc {
	s := &escalationScheduler{
		companyRepo:  companyRepo,
		workflowRepo: workflowRepo,
		workflows:    workflows,
		defaults:     defaults,
		interval:     time.Minute,
		maxLevel:     5,
		batchSize:    200,
		now:          time.Now,
		flagged:      make(map[string]time.Time),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.EscalationSvc = (*escalationScheduler)(nil)

func (s *escalationScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.LogInfo(ctx, "Escalation scheduler started", slog.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.LogInfo(ctx, "Escalation scheduler stopped")
			return nil
		case <-ticker.C:
			if _, err := s.RunCycle(ctx); err != nil && ctx.Err() == nil {
				s.LogError(ctx, err, "Escalation cycle failed")
			}
		}
	}
}

func (s *escalationScheduler) RunCycle(ctx context.Context) (domain.EscalationCycleReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	report := domain.EscalationCycleReport{StartedAt: start.UTC()}

	companies, err := s.companyRepo.ListCompaniesByStatus(ctx, domain.CompanyActive)
	if err != nil {
		report.Failures++
		s.finish(&report, start)
		return report, err
	}
	report.Companies = len(companies)

	stillStalled := make(map[string]time.Time)
scan:
	for _, company := range companies {
		scope, err := domain.ScopeFor(company.CompanyID)
		if err != nil {
			continue
		}
		policy := company.EscalationPolicy.WithDefaults(s.defaults)

		for _, state := range scannedStates {
			if ctx.Err() != nil {
				report.Cancelled = true
				break scan
			}
			deadline, ok := policy.DeadlineFor(state)
			if !ok {
				continue
			}
			if s.scanState(ctx, scope, state, start.Add(-deadline), &report, stillStalled) {
				break scan
			}
		}
	}

	if !report.Cancelled {
		s.flagged = stillStalled
	} else {
		for id, at := range stillStalled {
			s.flagged[id] = at
		}
	}

	s.finish(&report, start)
	s.LogInfo(ctx, "Escalation cycle finished",
		slog.Int("companies", report.Companies),
		slog.Int("scanned", report.Scanned),
		slog.Int("escalated", report.Escalated),
		slog.Int("flagged", report.Flagged),
		slog.Int("conflicts", report.Conflicts),
		slog.Int("failures", report.Failures),
		slog.Bool("cancelled", report.Cancelled))
	return report, nil
}

// scanState pages through every overdue workflow of one state so flagged rows at
// the head of the list cannot hide escalatable ones behind them. It reports
// whether the scan stopped on cancellation.
func (s *escalationScheduler) scanState(ctx context.Context, scope domain.CompanyScope, state domain.WorkflowState, enteredBefore time.Time, report *domain.EscalationCycleReport, stillStalled map[string]time.Time) bool {
	var after *domain.StalledCursor
	for {
		candidates, err := s.workflowRepo.ListStalledWorkflows(ctx, scope, domain.StalledQuery{
			State:         state,
			EnteredBefore: enteredBefore,
			Limit:         s.batchSize,
			After:         after,
		})
		if err != nil {
			report.Failures++
			s.LogError(ctx, err, "Failed to list stalled workflows",
				slog.String("company_id", scope.CompanyID()),
				slog.String("state", string(state)))
			return false
		}

		for i := range candidates {
			// Cancellation is honoured between workflows, never inside one.
			if ctx.Err() != nil {
				report.Cancelled = true
				return true
			}
			report.Scanned++
			s.handle(ctx, &candidates[i], report, stillStalled)
		}

		if len(candidates) < s.batchSize {
			return false
		}
		last := candidates[len(candidates)-1]
		after = &domain.StalledCursor{StageEnteredAt: last.StageEnteredAt, WorkflowID: last.WorkflowID}
	}
}

func (s *escalationScheduler) finish(report *domain.EscalationCycleReport, start time.Time) {
	report.Duration = s.now().Sub(start)
	s.Metrics.EscalationCycle(report.Duration, report.Escalated, report.Flagged, report.Conflicts, report.Failures)
}

func (s *escalationScheduler) handle(ctx context.Context, wf *domain.ApprovalWorkflow, report *domain.EscalationCycleReport, stillStalled map[string]time.Time) {
	if wf.State == domain.StatePendingReview || wf.EscalationLevel >= s.maxLevel {
		stillStalled[wf.WorkflowID] = wf.StageEnteredAt
		if at, seen := s.flagged[wf.WorkflowID]; seen && at.Equal(wf.StageEnteredAt) {
			return
		}
		report.Flagged++
		s.flag(ctx, wf)
		return
	}

	version := wf.Version
	_, err := s.workflows.RecordDecision(ctx, domain.SystemActor(wf.CompanyID), wf.CompanyID, wf.WorkflowID, dto.RecordDecisionRequest{
		Action:          domain.ActionEscalate,
		Comment:         "stage deadline exceeded",
		ExpectedVersion: &version,
	})
	switch {
	case err == nil:
		report.Escalated++
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrInvalidTransition):
		// Someone acted on the workflow after it was listed.
		report.Conflicts++
	default:
		report.Failures++
		s.LogError(ctx, err, "Failed to escalate workflow",
			slog.String("company_id", wf.CompanyID),
			slog.String("workflow_id", wf.WorkflowID))
	}
}

func (s *escalationScheduler) flag(ctx context.Context, wf *domain.ApprovalWorkflow) {
	s.LogInfo(ctx, "Workflow stalled",
		slog.String("company_id", wf.CompanyID),
		slog.String("workflow_id", wf.WorkflowID),
		slog.String("state", string(wf.State)),
		slog.Int("escalation_level", wf.EscalationLevel))
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, domain.WorkflowEvent{
		EventID:         uuid.NewString(),
		Type:            domain.EventWorkflowStalled,
		CompanyID:       wf.CompanyID,
		WorkflowID:      wf.WorkflowID,
		RequestID:       wf.WithdrawalRequestID,
		ActorID:         domain.SystemActorID,
		FromState:       wf.State,
		ToState:         wf.State,
		EscalationLevel: wf.EscalationLevel,
		OccurredAt:      s.now().UTC(),
	})
}
