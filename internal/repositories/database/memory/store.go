// Package memory is an in-process TenantScopedStore. It enforces the same
// tenant filtering, version checks and single-use token ledger as the
// PostgreSQL store and backs tests and USE_MEMORY_STORE deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portsrepo "github.com/SscSPs/withdrawal_approvals/internal/core/ports/repositories"
)

// Store keeps every table in maps guarded by one mutex.
type Store struct {
	mu sync.RWMutex

	companies map[string]domain.Company
	users     map[string]domain.User
	requests  map[string]domain.WithdrawalRequest
	workflows map[string]domain.ApprovalWorkflow
	decisions map[string][]domain.ApprovalDecision
	audit     []domain.AuditEntry
	tokens    map[string]domain.ConfirmationTokenUse

	failWrites  int
	failPartial int
}

var (
	_ portsrepo.CompanyRepositoryFacade  = (*Store)(nil)
	_ portsrepo.UserRepositoryFacade     = (*Store)(nil)
	_ portsrepo.WorkflowRepositoryFacade = (*Store)(nil)
	_ portsrepo.AuditReader              = (*Store)(nil)
	_ portsrepo.TokenLedgerReader        = (*Store)(nil)
	_ portsrepo.HealthChecker            = (*Store)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		companies: make(map[string]domain.Company),
		users:     make(map[string]domain.User),
		requests:  make(map[string]domain.WithdrawalRequest),
		workflows: make(map[string]domain.ApprovalWorkflow),
		decisions: make(map[string][]domain.ApprovalDecision),
		tokens:    make(map[string]domain.ConfirmationTokenUse),
	}
}

// NewRepositoryProvider wires one store into every repository slot.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CompanyRepo:  s,
		UserRepo:     s,
		WorkflowRepo: s,
		AuditRepo:    s,
		TokenLedger:  s,
		Health:       s,
	}
}

// FailNextWrites makes the next n atomic writes fail with a StorageUnavailable error.
func (s *Store) FailNextWrites(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = n
}

// FailAfterPartialWrite makes the next n transitions fail with a StorageUnavailable
// error after the token and decision rows are written. Those rows are rolled back.
func (s *Store) FailAfterPartialWrite(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPartial = n
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// --- companies ---

func (s *Store) FindCompany(ctx context.Context, scope domain.CompanyScope) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[scope.CompanyID()]
	if !ok || !scope.Valid() {
		return nil, apperrors.NewNotFoundError("company not found")
	}
	return &c, nil
}

func (s *Store) ListCompaniesByStatus(ctx context.Context, status domain.CompanyStatus) ([]domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Company, 0)
	for _, c := range s.companies {
		if c.Status == status {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyID < out[j].CompanyID })
	return out, nil
}

func (s *Store) SaveCompany(ctx context.Context, company domain.Company) error {
	if _, err := domain.ScopeFor(company.CompanyID); err != nil {
		return apperrors.NewValidationFailedError(err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[company.CompanyID] = company
	return nil
}

// --- users ---

func (s *Store) FindUserByID(ctx context.Context, scope domain.CompanyScope, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok || !scope.Owns(u.CompanyID) {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return &u, nil
}

func (s *Store) SaveUser(ctx context.Context, scope domain.CompanyScope, user domain.User) error {
	if !scope.Owns(user.CompanyID) {
		return apperrors.NewValidationFailedError("user company does not match scope")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[user.UserID]; ok && existing.CompanyID != user.CompanyID {
		return apperrors.NewConflictError("user already exists")
	}
	s.users[user.UserID] = user
	return nil
}

// --- workflows ---

func (s *Store) FindWorkflowByID(ctx context.Context, scope domain.CompanyScope, workflowID string) (*domain.ApprovalWorkflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.workflows[workflowID]
	if !ok || !scope.Owns(wf.CompanyID) {
		return nil, apperrors.NewNotFoundError("workflow not found")
	}
	out := cloneWorkflow(wf)
	return &out, nil
}

func (s *Store) FindWithdrawalRequestByID(ctx context.Context, scope domain.CompanyScope, requestID string) (*domain.WithdrawalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok || !scope.Owns(req.CompanyID) {
		return nil, apperrors.NewNotFoundError("withdrawal request not found")
	}
	return &req, nil
}

func (s *Store) ListWorkflowsByCompany(ctx context.Context, scope domain.CompanyScope, filter domain.WorkflowFilter) ([]domain.ApprovalWorkflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ApprovalWorkflow, 0)
	for _, wf := range s.workflows {
		if !scope.Owns(wf.CompanyID) {
			continue
		}
		if filter.State != nil && wf.State != *filter.State {
			continue
		}
		if filter.After != nil && !olderThanCursor(wf, *filter.After) {
			continue
		}
		out = append(out, cloneWorkflow(wf))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].WorkflowID > out[j].WorkflowID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func olderThanCursor(wf domain.ApprovalWorkflow, c domain.WorkflowCursor) bool {
	if wf.CreatedAt.Equal(c.CreatedAt) {
		return wf.WorkflowID < c.WorkflowID
	}
	return wf.CreatedAt.Before(c.CreatedAt)
}

func (s *Store) ListDecisions(ctx context.Context, scope domain.CompanyScope, workflowID string) ([]domain.ApprovalDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.workflows[workflowID]
	if !ok || !scope.Owns(wf.CompanyID) {
		return nil, apperrors.NewNotFoundError("workflow not found")
	}
	return append([]domain.ApprovalDecision(nil), s.decisions[workflowID]...), nil
}

func (s *Store) ListStalledWorkflows(ctx context.Context, scope domain.CompanyScope, query domain.StalledQuery) ([]domain.ApprovalWorkflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ApprovalWorkflow, 0)
	for _, wf := range s.workflows {
		if !scope.Owns(wf.CompanyID) || wf.State != query.State || !wf.StageEnteredAt.Before(query.EnteredBefore) {
			continue
		}
		if query.After != nil && !query.After.Precedes(wf) {
			continue
		}
		out = append(out, cloneWorkflow(wf))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StageEnteredAt.Equal(out[j].StageEnteredAt) {
			return out[i].WorkflowID < out[j].WorkflowID
		}
		return out[i].StageEnteredAt.Before(out[j].StageEnteredAt)
	})
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (s *Store) CreateWithdrawalWithWorkflow(ctx context.Context, scope domain.CompanyScope, request domain.WithdrawalRequest, workflow domain.ApprovalWorkflow) error {
	if !scope.Owns(request.CompanyID) || !scope.Owns(workflow.CompanyID) {
		return apperrors.NewValidationFailedError("row company does not match scope")
	}
	if workflow.WithdrawalRequestID != request.RequestID {
		return apperrors.NewValidationFailedError("workflow does not reference the request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.consumeFailure(); err != nil {
		return err
	}
	if _, exists := s.requests[request.RequestID]; exists {
		return apperrors.NewConflictError("withdrawal request already exists")
	}
	for _, wf := range s.workflows {
		if wf.WithdrawalRequestID == request.RequestID {
			return apperrors.NewConflictError("withdrawal request already has a workflow")
		}
	}
	if _, exists := s.workflows[workflow.WorkflowID]; exists {
		return apperrors.NewConflictError("workflow already exists")
	}
	s.requests[request.RequestID] = request
	workflow.DecisionHistory = nil
	s.workflows[workflow.WorkflowID] = cloneWorkflow(workflow)
	return nil
}

func (s *Store) ApplyTransition(ctx context.Context, scope domain.CompanyScope, t domain.Transition) error {
	if !scope.Owns(t.Workflow.CompanyID) || !scope.Owns(t.Decision.CompanyID) ||
		(t.Audit != nil && !scope.Owns(t.Audit.CompanyID)) || (t.TokenUse != nil && !scope.Owns(t.TokenUse.CompanyID)) {
		return apperrors.NewValidationFailedError("row company does not match scope")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.consumeFailure(); err != nil {
		return err
	}

	current, ok := s.workflows[t.Workflow.WorkflowID]
	if !ok || !scope.Owns(current.CompanyID) {
		return apperrors.NewNotFoundError("workflow not found")
	}
	if current.Version != t.ExpectedVersion {
		return apperrors.NewConflictError(fmt.Sprintf("workflow version is %d, expected %d", current.Version, t.ExpectedVersion))
	}

	var undo []func()
	rollback := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}

	if t.TokenUse != nil {
		fp := t.TokenUse.Fingerprint
		if _, used := s.tokens[fp]; used {
			return apperrors.NewTokenReplayError()
		}
		s.tokens[fp] = *t.TokenUse
		undo = append(undo, func() { delete(s.tokens, fp) })
	}

	id := t.Workflow.WorkflowID
	prior := s.decisions[id]
	s.decisions[id] = append(prior[:len(prior):len(prior)], t.Decision)
	undo = append(undo, func() {
		if prior == nil {
			delete(s.decisions, id)
			return
		}
		s.decisions[id] = prior
	})

	if s.failPartial > 0 {
		s.failPartial--
		rollback()
		return apperrors.NewStorageUnavailableError("memory store write failed mid-transition", nil)
	}

	if t.Audit != nil {
		s.audit = append(s.audit, *t.Audit)
	}
	next := t.Workflow
	next.DecisionHistory = nil
	next.CompanyID = current.CompanyID
	next.WithdrawalRequestID = current.WithdrawalRequestID
	next.CreatedAt = current.CreatedAt
	s.workflows[id] = cloneWorkflow(next)
	return nil
}

func (s *Store) consumeFailure() error {
	if s.failWrites > 0 {
		s.failWrites--
		return apperrors.NewStorageUnavailableError("memory store write failed", nil)
	}
	return nil
}

// --- audit and ledger ---

func (s *Store) ListAuditByWorkflow(ctx context.Context, scope domain.CompanyScope, workflowID string) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.workflows[workflowID]
	if !ok || !scope.Owns(wf.CompanyID) {
		return nil, apperrors.NewNotFoundError("workflow not found")
	}
	out := make([]domain.AuditEntry, 0)
	for _, e := range s.audit {
		if e.WorkflowID == workflowID && scope.Owns(e.CompanyID) {
			out = append(out, e)
		}
	}
	sortAudit(out)
	return out, nil
}

func (s *Store) ListAuditByCompany(ctx context.Context, scope domain.CompanyScope, window domain.TimeRange) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AuditEntry, 0)
	for _, e := range s.audit {
		if scope.Owns(e.CompanyID) && window.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	sortAudit(out)
	return out, nil
}

func sortAudit(entries []domain.AuditEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		}
		if entries[i].WorkflowID != entries[j].WorkflowID {
			return entries[i].WorkflowID < entries[j].WorkflowID
		}
		return entries[i].WorkflowVersion < entries[j].WorkflowVersion
	})
}

func (s *Store) IsTokenUsed(ctx context.Context, scope domain.CompanyScope, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	use, ok := s.tokens[fingerprint]
	return ok && scope.Owns(use.CompanyID), nil
}

func cloneWorkflow(wf domain.ApprovalWorkflow) domain.ApprovalWorkflow {
	if wf.AssignedReviewerID != nil {
		id := *wf.AssignedReviewerID
		wf.AssignedReviewerID = &id
	}
	if wf.ApprovedBy != nil {
		id := *wf.ApprovedBy
		wf.ApprovedBy = &id
	}
	wf.DecisionHistory = nil
	return wf
}
