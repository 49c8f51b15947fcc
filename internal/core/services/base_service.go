package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/authz"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	"github.com/SscSPs/withdrawal_approvals/internal/middleware"
	"github.com/SscSPs/withdrawal_approvals/internal/platform/metrics"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Gate    authz.Gate
	Metrics *metrics.Recorder
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// resolveScope turns the path company into a store scope. Callers outside the
// company are told the resource does not exist.
func (s *BaseService) resolveScope(ctx context.Context, actor domain.Actor, companyID string) (domain.CompanyScope, error) {
	scope, err := domain.ScopeFor(companyID)
	if err != nil {
		return domain.CompanyScope{}, apperrors.NewValidationFailedError("company id is required")
	}
	if actor.Role != domain.RoleSuperAdmin && !actor.BelongsTo(scope.CompanyID()) {
		s.LogDebug(ctx, "Cross-tenant access hidden as not found",
			slog.String("actor_id", actor.ActorID),
			slog.String("company_id", scope.CompanyID()))
		return domain.CompanyScope{}, apperrors.NewNotFoundError("resource not found")
	}
	return scope, nil
}

// authorize asks the gate and converts a denial to an Unauthorized error.
func (s *BaseService) authorize(ctx context.Context, actor domain.Actor, scope domain.CompanyScope, action domain.Action, state domain.WorkflowState, level int) error {
	decision := s.ask(actor, scope, action, state, level)
	if decision.Allowed {
		return nil
	}
	return s.denied(ctx, actor, scope, action, state, decision)
}

// authorizeAnyStage refuses action when the gate denies it in every state that
// admits it. It runs before the workflow or any token is examined.
func (s *BaseService) authorizeAnyStage(ctx context.Context, actor domain.Actor, scope domain.CompanyScope, action domain.Action) error {
	var first authz.Decision
	for i, state := range domain.StatesAdmitting(action) {
		decision := s.ask(actor, scope, action, state, 0)
		if decision.Allowed {
			return nil
		}
		if i == 0 {
			first = decision
		}
	}
	if first.Reason == "" {
		return nil
	}
	return s.denied(ctx, actor, scope, action, "", first)
}

func (s *BaseService) ask(actor domain.Actor, scope domain.CompanyScope, action domain.Action, state domain.WorkflowState, level int) authz.Decision {
	gate := s.Gate
	if gate == nil {
		gate = authz.Permit
	}
	return gate(authz.Request{
		Role:            actor.Role,
		Action:          action,
		State:           state,
		EscalationLevel: level,
		OwnCompany:      actor.BelongsTo(scope.CompanyID()),
		EmailVerified:   actor.EmailVerified,
	})
}

func (s *BaseService) denied(ctx context.Context, actor domain.Actor, scope domain.CompanyScope, action domain.Action, state domain.WorkflowState, decision authz.Decision) error {
	s.Metrics.GateDenied(string(action), string(decision.Reason))
	s.LogInfo(ctx, "Authorization gate denied action",
		slog.String("actor_id", actor.ActorID),
		slog.String("actor_role", string(actor.Role)),
		slog.String("company_id", scope.CompanyID()),
		slog.String("action", string(action)),
		slog.String("state", string(state)),
		slog.String("reason", string(decision.Reason)))
	return apperrors.NewUnauthorizedError(string(decision.Reason), "action not permitted")
}
