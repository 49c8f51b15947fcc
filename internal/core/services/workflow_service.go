package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/authz"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portsrepo "github.com/SscSPs/withdrawal_approvals/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/withdrawal_approvals/internal/core/ports/services"
	"github.com/SscSPs/withdrawal_approvals/internal/dto"
	"github.com/SscSPs/withdrawal_approvals/internal/platform/metrics"
	"github.com/SscSPs/withdrawal_approvals/internal/utils/pagination"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReasonFourEyes is returned when a high-value workflow is confirmed by the actor that approved it.
const ReasonFourEyes = "four_eyes_required"

// ReasonCompanyInactive is returned when an inactive or suspended company is asked to change state.
const ReasonCompanyInactive = "company_inactive"

// ReasonAgentMismatch is returned when a field agent submits on behalf of another agent.
const ReasonAgentMismatch = "agent_mismatch"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// workflowService implements the WorkflowSvcFacade interface
type workflowService struct {
	BaseService
	workflowRepo portsrepo.WorkflowRepositoryFacade
	companyRepo  portsrepo.CompanyReader
	userRepo     portsrepo.UserReader
	tokenLedger  portsrepo.TokenLedgerReader
	verifier     portssvc.ConfirmationVerifier
	emitter      portssvc.EventEmitter

	highValueThreshold *decimal.Decimal
	maxRetries         uint64
	retryInterval      time.Duration
	now                func() time.Time
	newID              func() string
}

// WorkflowOption is a functional option for configuring the workflow service
type WorkflowOption func(*workflowService)

// WithUserDirectory validates reviewers against the company's users.
func WithUserDirectory(repo portsrepo.UserReader) WorkflowOption {
	return func(s *workflowService) {
		s.userRepo = repo
	}
}

// WithTokenLedger adds the confirmation token ledger used for replay checks.
func WithTokenLedger(ledger portsrepo.TokenLedgerReader) WorkflowOption {
	return func(s *workflowService) {
		s.tokenLedger = ledger
	}
}

// WithConfirmationVerifier adds the confirmation token verifier.
func WithConfirmationVerifier(v portssvc.ConfirmationVerifier) WorkflowOption {
	return func(s *workflowService) {
		s.verifier = v
	}
}

// WithEventEmitter adds the post-commit notification sink.
func WithEventEmitter(e portssvc.EventEmitter) WorkflowOption {
	return func(s *workflowService) {
		s.emitter = e
	}
}

// WithGate replaces the authorization gate.
func WithGate(g authz.Gate) WorkflowOption {
	return func(s *workflowService) {
		s.Gate = g
	}
}

// WithMetrics adds the metrics recorder.
func WithMetrics(m *metrics.Recorder) WorkflowOption {
	return func(s *workflowService) {
		s.Metrics = m
	}
}

// WithHighValueThreshold sets the threshold used when a company has none of its own.
func WithHighValueThreshold(threshold *decimal.Decimal) WorkflowOption {
	return func(s *workflowService) {
		s.highValueThreshold = threshold
	}
}

// WithStoreRetries sets how often a StorageUnavailable write is retried and the first backoff interval.
func WithStoreRetries(maxRetries uint64, initialInterval time.Duration) WorkflowOption {
	return func(s *workflowService) {
		s.maxRetries = maxRetries
		s.retryInterval = initialInterval
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) WorkflowOption {
	return func(s *workflowService) {
		s.now = now
	}
}

// NewWorkflowService creates a new workflow service with the provided options
func NewWorkflowService(workflowRepo portsrepo.WorkflowRepositoryFacade, companyRepo portsrepo.CompanyReader, options ...WorkflowOption) portssvc.WorkflowSvcFacade {
	svc := &workflowService{
		BaseService:   BaseService{Gate: authz.Permit},
		workflowRepo:  workflowRepo,
		companyRepo:   companyRepo,
		maxRetries:    3,
		retryInterval: 100 * time.Millisecond,
		now:           time.Now,
		newID:         uuid.NewString,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure workflowService implements the WorkflowSvcFacade interface
var _ portssvc.WorkflowSvcFacade = (*workflowService)(nil)

func (s *workflowService) SubmitWithdrawalRequest(ctx context.Context, actor domain.Actor, companyID string, req dto.SubmitWithdrawalRequest) (*domain.WithdrawalRequest, *domain.ApprovalWorkflow, error) {
	scope, err := s.resolveScope(ctx, actor, companyID)
	if err != nil {
		return nil, nil, err
	}
	if err := validateSubmission(req); err != nil {
		return nil, nil, err
	}
	if _, err := s.loadCompany(ctx, scope, actor); err != nil {
		return nil, nil, err
	}
	if err := s.authorize(ctx, actor, scope, domain.ActionSubmit, "", 0); err != nil {
		return nil, nil, err
	}

	agentID := strings.TrimSpace(req.AgentID)
	if agentID == "" {
		agentID = actor.ActorID
	}
	if actor.Role == domain.RoleFieldAgent && agentID != actor.ActorID {
		return nil, nil, apperrors.NewUnauthorizedError(ReasonAgentMismatch, "field agents submit on their own behalf")
	}

	now := s.now().UTC()
	request := domain.WithdrawalRequest{
		RequestID:  s.newID(),
		CompanyID:  scope.CompanyID(),
		CustomerID: strings.TrimSpace(req.CustomerID),
		AgentID:    agentID,
		Amount:     req.Amount,
		Currency:   strings.ToUpper(req.Currency),
		CreatedAt:  now,
	}
	workflow := domain.ApprovalWorkflow{
		WorkflowID:          s.newID(),
		CompanyID:           scope.CompanyID(),
		WithdrawalRequestID: request.RequestID,
		State:               domain.StatePendingReview,
		StageEnteredAt:      now,
		Version:             1,
		RequestAmount:       request.Amount,
		Currency:            request.Currency,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = s.withRetry(ctx, func() error {
		return s.workflowRepo.CreateWithdrawalWithWorkflow(ctx, scope, request, workflow)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create withdrawal request",
			slog.String("company_id", scope.CompanyID()),
			slog.String("actor_id", actor.ActorID))
		return nil, nil, err
	}

	s.Metrics.Submitted()
	s.LogInfo(ctx, "Withdrawal request submitted",
		slog.String("company_id", scope.CompanyID()),
		slog.String("workflow_id", workflow.WorkflowID),
		slog.String("request_id", request.RequestID))
	s.emit(ctx, domain.WorkflowEvent{
		Type:       domain.EventWithdrawalSubmitted,
		CompanyID:  scope.CompanyID(),
		WorkflowID: workflow.WorkflowID,
		RequestID:  request.RequestID,
		ActorID:    actor.ActorID,
		Action:     domain.ActionSubmit,
		ToState:    workflow.State,
		OccurredAt: now,
	})
	return &request, &workflow, nil
}

func validateSubmission(req dto.SubmitWithdrawalRequest) error {
	if strings.TrimSpace(req.CustomerID) == "" {
		return apperrors.NewValidationFailedError("customerID is required")
	}
	if !req.Amount.IsPositive() {
		return apperrors.NewValidationFailedError("amount must be greater than zero")
	}
	if len(req.Currency) != 3 {
		return apperrors.NewValidationFailedError("currency must be an ISO 4217 code")
	}
	return nil
}

func (s *workflowService) AssignReviewer(ctx context.Context, actor domain.Actor, companyID, workflowID string, req dto.AssignReviewerRequest) (*domain.ApprovalWorkflow, error) {
	started := s.now()
	scope, err := s.resolveScope(ctx, actor, companyID)
	if err != nil {
		return nil, err
	}
	reviewerID := strings.TrimSpace(req.ReviewerID)
	if reviewerID == "" {
		return nil, apperrors.NewValidationFailedError("reviewerID is required")
	}
	company, err := s.loadCompany(ctx, scope, actor)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAnyStage(ctx, actor, scope, domain.ActionAssignReviewer); err != nil {
		return nil, err
	}
	wf, err := s.workflowRepo.FindWorkflowByID(ctx, scope, workflowID)
	if err != nil {
		return nil, err
	}

	if err := checkExpectedVersion(wf, req.ExpectedVersion); err != nil {
		return nil, err
	}

	plan, ok := domain.PlanTransition(wf.State, domain.ActionAssignReviewer)
	if !ok {
		return nil, rejectTransition(wf, domain.ActionAssignReviewer, req.ExpectedVersion, started)
	}
	if err := s.authorize(ctx, actor, scope, domain.ActionAssignReviewer, wf.State, wf.EscalationLevel); err != nil {
		return nil, err
	}
	if err := s.validateReviewer(ctx, scope, reviewerID); err != nil {
		return nil, err
	}

	t := s.buildTransition(wf, plan, domain.ActionAssignReviewer, actor, company, "", "")
	t.Workflow.AssignedReviewerID = &reviewerID
	if err := s.commit(ctx, scope, t); err != nil {
		return nil, err
	}
	return &t.Workflow, nil
}

func (s *workflowService) validateReviewer(ctx context.Context, scope domain.CompanyScope, reviewerID string) error {
	if s.userRepo == nil {
		return nil
	}
	user, err := s.userRepo.FindUserByID(ctx, scope, reviewerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationFailedError("reviewer is not a user of this company")
		}
		return err
	}
	if !user.Role.CanReview() {
		return apperrors.NewValidationFailedError("reviewer role cannot review withdrawals")
	}
	return nil
}

func (s *workflowService) RecordDecision(ctx context.Context, actor domain.Actor, companyID, workflowID string, req dto.RecordDecisionRequest) (*domain.ApprovalWorkflow, error) {
	started := s.now()
	if !req.Action.IsDecision() {
		return nil, apperrors.NewValidationFailedError("unknown decision action")
	}
	scope, err := s.resolveScope(ctx, actor, companyID)
	if err != nil {
		return nil, err
	}
	company, err := s.loadCompany(ctx, scope, actor)
	if err != nil {
		return nil, err
	}
	// A role that can never take this action learns nothing about the workflow or its token.
	if err := s.authorizeAnyStage(ctx, actor, scope, req.Action); err != nil {
		return nil, err
	}
	wf, err := s.workflowRepo.FindWorkflowByID(ctx, scope, workflowID)
	if err != nil {
		return nil, err
	}

	// Replays are reported before state checks so a used token never reads as InvalidTransition.
	var fingerprint string
	if req.Action == domain.ActionConfirm {
		if req.ConfirmationToken == "" {
			return nil, apperrors.NewTokenInvalidError(TokenReasonMissing, nil)
		}
		if s.verifier == nil {
			return nil, apperrors.NewTokenInvalidError(TokenReasonNoVerifier, nil)
		}
		fingerprint, err = s.verifier.Fingerprint(ctx, req.ConfirmationToken)
		if err != nil {
			return nil, err
		}
		if err := s.checkReplay(ctx, scope, fingerprint); err != nil {
			return nil, err
		}
	}

	if err := checkExpectedVersion(wf, req.ExpectedVersion); err != nil {
		return nil, err
	}

	plan, ok := domain.PlanTransition(wf.State, req.Action)
	if !ok {
		return nil, rejectTransition(wf, req.Action, req.ExpectedVersion, started)
	}
	if err := s.authorize(ctx, actor, scope, req.Action, wf.State, wf.EscalationLevel); err != nil {
		return nil, err
	}
	if req.Action == domain.ActionConfirm && wf.RiskTier == domain.RiskHigh && wf.ApprovedBy != nil && *wf.ApprovedBy == actor.ActorID {
		s.Metrics.GateDenied(string(req.Action), ReasonFourEyes)
		return nil, apperrors.NewUnauthorizedError(ReasonFourEyes, "high-value withdrawals need a second confirmer")
	}
	if plan.RequiresToken {
		if err := s.verifyToken(ctx, wf, actor, req.ConfirmationToken); err != nil {
			return nil, err
		}
	}

	t := s.buildTransition(wf, plan, req.Action, actor, company, req.Comment, fingerprint)
	if err := s.commit(ctx, scope, t); err != nil {
		return nil, err
	}
	return &t.Workflow, nil
}

func (s *workflowService) checkReplay(ctx context.Context, scope domain.CompanyScope, fingerprint string) error {
	if s.tokenLedger == nil {
		return nil
	}
	used, err := s.tokenLedger.IsTokenUsed(ctx, scope, fingerprint)
	if err != nil {
		return err
	}
	if used {
		return apperrors.NewTokenReplayError()
	}
	return nil
}

func (s *workflowService) verifyToken(ctx context.Context, wf *domain.ApprovalWorkflow, actor domain.Actor, raw string) error {
	claims, err := s.verifier.Verify(ctx, raw)
	if err != nil {
		s.LogInfo(ctx, "Confirmation token rejected",
			slog.String("workflow_id", wf.WorkflowID),
			slog.String("reason", apperrors.ReasonOf(err)))
		return err
	}
	if claims.WorkflowID != wf.WorkflowID {
		return apperrors.NewTokenInvalidError(TokenReasonWorkflowMismatch, nil)
	}
	if claims.ActorID != actor.ActorID {
		return apperrors.NewTokenInvalidError(TokenReasonActorMismatch, nil)
	}
	return nil
}

// buildTransition computes everything ApplyTransition writes for one decision.
func (s *workflowService) buildTransition(wf *domain.ApprovalWorkflow, plan domain.TransitionPlan, action domain.Action, actor domain.Actor, company *domain.Company, comment, fingerprint string) domain.Transition {
	now := s.now().UTC()

	next := *wf
	next.DecisionHistory = nil
	next.Request = nil
	next.Version = wf.Version + 1
	next.UpdatedAt = now
	if plan.ChangesState {
		next.State = plan.Rest
		next.StageEnteredAt = now
	}
	if plan.RaisesEscalation {
		next.EscalationLevel++
	}
	if plan.ClearsReviewer {
		next.AssignedReviewerID = nil
	}

	switch action {
	case domain.ActionApprove:
		approver := actor.ActorID
		next.ApprovedBy = &approver
		if next.RiskTier == domain.RiskUnclassified {
			next.RiskTier = domain.ClassifyRisk(wf.RequestAmount, s.thresholdFor(company))
		}
	case domain.ActionCancel, domain.ActionEscalate:
		next.ApprovedBy = nil
	}

	t := domain.Transition{
		ExpectedVersion: wf.Version,
		Workflow:        next,
		Decision: domain.ApprovalDecision{
			DecisionID: s.newID(),
			CompanyID:  wf.CompanyID,
			WorkflowID: wf.WorkflowID,
			ActorID:    actor.ActorID,
			ActorRole:  actor.Role,
			Action:     action,
			Timestamp:  now,
			Comment:    strings.TrimSpace(comment),
		},
	}
	if plan.ChangesState {
		t.Audit = &domain.AuditEntry{
			EntryID:         s.newID(),
			CompanyID:       wf.CompanyID,
			WorkflowID:      wf.WorkflowID,
			FromState:       wf.State,
			ToState:         plan.AuditTo,
			ActorID:         actor.ActorID,
			ActorRole:       actor.Role,
			Action:          action,
			EscalationLevel: next.EscalationLevel,
			WorkflowVersion: next.Version,
			ReasonCode:      domain.ReasonFor(action, actor),
			Timestamp:       now,
		}
	}
	if fingerprint != "" {
		fp := fingerprint
		t.Decision.TokenFingerprint = &fp
		t.TokenUse = &domain.ConfirmationTokenUse{
			Fingerprint: fingerprint,
			CompanyID:   wf.CompanyID,
			WorkflowID:  wf.WorkflowID,
			ActorID:     actor.ActorID,
			UsedAt:      now,
		}
	}
	return t
}

func (s *workflowService) thresholdFor(company *domain.Company) *decimal.Decimal {
	if company != nil && company.HighValueThreshold != nil {
		return company.HighValueThreshold
	}
	return s.highValueThreshold
}

// commit writes t, records metrics and emits the post-commit event.
func (s *workflowService) commit(ctx context.Context, scope domain.CompanyScope, t domain.Transition) error {
	err := s.withRetry(ctx, func() error {
		return s.workflowRepo.ApplyTransition(ctx, scope, t)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrTokenReplay) {
			s.LogInfo(ctx, "Transition lost",
				slog.String("workflow_id", t.Workflow.WorkflowID),
				slog.String("action", string(t.Decision.Action)),
				slog.String("error", err.Error()))
		} else {
			s.LogError(ctx, err, "Failed to apply transition",
				slog.String("workflow_id", t.Workflow.WorkflowID),
				slog.String("action", string(t.Decision.Action)))
		}
		return err
	}

	from := domain.WorkflowState("")
	to := t.Workflow.State
	if t.Audit != nil {
		from, to = t.Audit.FromState, t.Audit.ToState
	}
	s.Metrics.Transition(string(t.Decision.Action), string(from), string(to))
	s.LogInfo(ctx, "Workflow decision recorded",
		slog.String("company_id", scope.CompanyID()),
		slog.String("workflow_id", t.Workflow.WorkflowID),
		slog.String("actor_id", t.Decision.ActorID),
		slog.String("action", string(t.Decision.Action)),
		slog.String("state", string(t.Workflow.State)),
		slog.Int64("version", t.Workflow.Version))

	eventType := domain.EventWorkflowTransitioned
	if t.Decision.Action == domain.ActionAssignReviewer {
		eventType = domain.EventReviewerAssigned
	}
	s.emit(ctx, domain.WorkflowEvent{
		Type:            eventType,
		CompanyID:       scope.CompanyID(),
		WorkflowID:      t.Workflow.WorkflowID,
		RequestID:       t.Workflow.WithdrawalRequestID,
		ActorID:         t.Decision.ActorID,
		Action:          t.Decision.Action,
		FromState:       from,
		ToState:         to,
		EscalationLevel: t.Workflow.EscalationLevel,
		OccurredAt:      t.Decision.Timestamp,
	})
	return nil
}

// withRetry retries StorageUnavailable failures with exponential backoff.
// Every other error, Conflict included, is returned on first sight.
func (s *workflowService) withRetry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	b.MaxElapsedTime = 0

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !apperrors.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		if uint64(attempt) <= s.maxRetries {
			s.Metrics.StoreRetry()
			s.LogInfo(ctx, "Retrying after storage failure", slog.Int("attempt", attempt), slog.String("error", err.Error()))
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, s.maxRetries), ctx))
}

func (s *workflowService) emit(ctx context.Context, event domain.WorkflowEvent) {
	if s.emitter == nil {
		return
	}
	event.EventID = s.newID()
	s.emitter.Emit(ctx, event)
}

// loadCompany fetches the tenant and refuses changes for companies that are not active.
// Super admins may still act on them.
func (s *workflowService) loadCompany(ctx context.Context, scope domain.CompanyScope, actor domain.Actor) (*domain.Company, error) {
	company, err := s.companyRepo.FindCompany(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !company.IsActive() && actor.Role != domain.RoleSuperAdmin {
		s.Metrics.GateDenied("company_status", ReasonCompanyInactive)
		return nil, apperrors.NewUnauthorizedError(ReasonCompanyInactive, "company is not active")
	}
	return company, nil
}

func (s *workflowService) GetWorkflow(ctx context.Context, actor domain.Actor, companyID, workflowID string) (*domain.ApprovalWorkflow, error) {
	scope, err := s.resolveScope(ctx, actor, companyID)
	if err != nil {
		return nil, err
	}
	wf, err := s.workflowRepo.FindWorkflowByID(ctx, scope, workflowID)
	if err != nil {
		return nil, err
	}
	request, err := s.workflowRepo.FindWithdrawalRequestByID(ctx, scope, wf.WithdrawalRequestID)
	if err != nil {
		return nil, err
	}
	decisions, err := s.workflowRepo.ListDecisions(ctx, scope, workflowID)
	if err != nil {
		return nil, err
	}
	wf.Request = request
	wf.DecisionHistory = decisions
	return wf, nil
}

func (s *workflowService) ListDecisions(ctx context.Context, actor domain.Actor, companyID, workflowID string) ([]domain.ApprovalDecision, error) {
	scope, err := s.resolveScope(ctx, actor, companyID)
	if err != nil {
		return nil, err
	}
	return s.workflowRepo.ListDecisions(ctx, scope, workflowID)
}

func (s *workflowService) ListWorkflows(ctx context.Context, actor domain.Actor, companyID string, params dto.ListWorkflowsParams) ([]domain.ApprovalWorkflow, *string, error) {
	scope, err := s.resolveScope(ctx, actor, companyID)
	if err != nil {
		return nil, nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	filter := domain.WorkflowFilter{Limit: limit + 1}
	if params.State != "" {
		state := domain.WorkflowState(params.State)
		if !state.Valid() {
			return nil, nil, apperrors.NewValidationFailedError("unknown workflow state")
		}
		filter.State = &state
	}
	if params.NextToken != "" {
		createdAt, id, err := pagination.DecodeCursor(params.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationFailedError("invalid nextToken")
		}
		filter.After = &domain.WorkflowCursor{CreatedAt: createdAt, WorkflowID: id}
	}

	workflows, err := s.workflowRepo.ListWorkflowsByCompany(ctx, scope, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list workflows", slog.String("company_id", scope.CompanyID()))
		return nil, nil, err
	}

	var next *string
	if len(workflows) > limit {
		workflows = workflows[:limit]
		last := workflows[limit-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.WorkflowID)
		next = &token
	}
	return workflows, next, nil
}

func invalidTransition(state domain.WorkflowState, action domain.Action) error {
	return apperrors.NewInvalidTransitionError("action " + string(action) + " is not allowed from " + string(state))
}

// rejectTransition reports an action the current state does not admit. A caller
// that sent no version and was overtaken by a write committed after its own
// request began lost a race, and gets Conflict.
func rejectTransition(wf *domain.ApprovalWorkflow, action domain.Action, expected *int64, started time.Time) error {
	if expected == nil && !wf.UpdatedAt.Before(started) {
		return apperrors.NewConflictError("workflow changed while the request was in flight")
	}
	return invalidTransition(wf.State, action)
}

func checkExpectedVersion(wf *domain.ApprovalWorkflow, expected *int64) error {
	if expected != nil && *expected != wf.Version {
		return apperrors.NewConflictError("workflow has changed since it was read")
	}
	return nil
}
