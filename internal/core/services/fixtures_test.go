package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portssvc "github.com/SscSPs/withdrawal_approvals/internal/core/ports/services"
	"github.com/SscSPs/withdrawal_approvals/internal/core/services"
	"github.com/SscSPs/withdrawal_approvals/internal/repositories/database/memory"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const confirmationSecret = "confirmation-test-secret"

var t0 = time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: t0} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []domain.WorkflowEvent
}

func (e *recordingEmitter) Emit(ctx context.Context, event domain.WorkflowEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *recordingEmitter) Types() []domain.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.EventType, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Type
	}
	return out
}

// Actors used across the service tests.
var (
	agentA  = domain.Actor{ActorID: "agent-a", CompanyID: "company-a", Role: domain.RoleFieldAgent, EmailVerified: true}
	clerkA  = domain.Actor{ActorID: "clerk-a", CompanyID: "company-a", Role: domain.RoleClerk, EmailVerified: true}
	adminA  = domain.Actor{ActorID: "admin-a", CompanyID: "company-a", Role: domain.RoleCompanyAdmin, EmailVerified: true}
	admin2A = domain.Actor{ActorID: "admin2-a", CompanyID: "company-a", Role: domain.RoleCompanyAdmin, EmailVerified: true}
	clerkB  = domain.Actor{ActorID: "clerk-b", CompanyID: "company-b", Role: domain.RoleClerk, EmailVerified: true}
	superU  = domain.Actor{ActorID: "root", CompanyID: "platform", Role: domain.RoleSuperAdmin, EmailVerified: true}
)

func seedStore() *memory.Store {
	ctx := context.Background()
	store := memory.NewStore()
	threshold := decimal.NewFromInt(10000)

	_ = store.SaveCompany(ctx, domain.Company{CompanyID: "company-a", Name: "Alpha Microfinance", Status: domain.CompanyActive, HighValueThreshold: &threshold})
	_ = store.SaveCompany(ctx, domain.Company{CompanyID: "company-b", Name: "Beta Savings", Status: domain.CompanyActive})
	_ = store.SaveCompany(ctx, domain.Company{CompanyID: "company-s", Name: "Suspended Co", Status: domain.CompanySuspended})

	for _, a := range []domain.Actor{agentA, clerkA, adminA, admin2A} {
		_ = store.SaveUser(ctx, domain.MustScope("company-a"), domain.User{UserID: a.ActorID, CompanyID: a.CompanyID, Role: a.Role, EmailVerified: true})
	}
	_ = store.SaveUser(ctx, domain.MustScope("company-b"), domain.User{UserID: clerkB.ActorID, CompanyID: "company-b", Role: domain.RoleClerk, EmailVerified: true})
	return store
}

func newWorkflowService(store *memory.Store, clock *fakeClock, emitter *recordingEmitter) portssvc.WorkflowSvcFacade {
	return services.NewWorkflowService(store, store,
		services.WithUserDirectory(store),
		services.WithTokenLedger(store),
		services.WithConfirmationVerifier(services.NewJWTConfirmationVerifier(confirmationSecret, 5*time.Minute, clock.Now)),
		services.WithEventEmitter(emitter),
		services.WithClock(clock.Now),
		services.WithStoreRetries(3, time.Millisecond),
	)
}

func issueToken(clock *fakeClock, workflowID, actorID string) string {
	now := clock.Now()
	token, err := services.IssueConfirmationToken(confirmationSecret, domain.ConfirmationClaims{
		TokenID:    uuid.NewString(),
		WorkflowID: workflowID,
		ActorID:    actorID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(10 * time.Minute),
	})
	if err != nil {
		panic(err)
	}
	return token
}

// tokenID reads the jti of a token issued by issueToken.
func tokenID(raw string) string {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		panic(err)
	}
	return claims.ID
}
