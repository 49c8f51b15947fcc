package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portssvc "github.com/SscSPs/withdrawal_approvals/internal/core/ports/services"
	"github.com/SscSPs/withdrawal_approvals/internal/dto"
	"github.com/SscSPs/withdrawal_approvals/internal/handlers"
	"github.com/SscSPs/withdrawal_approvals/internal/middleware"
	"github.com/SscSPs/withdrawal_approvals/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock WorkflowService ---
type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) GetWorkflow(ctx context.Context, actor domain.Actor, companyID, workflowID string) (*domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, actor, companyID, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalWorkflow), args.Error(1)
}

func (m *MockWorkflowService) ListWorkflows(ctx context.Context, actor domain.Actor, companyID string, params dto.ListWorkflowsParams) ([]domain.ApprovalWorkflow, *string, error) {
	args := m.Called(ctx, actor, companyID, params)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.ApprovalWorkflow), next, args.Error(2)
}

func (m *MockWorkflowService) ListDecisions(ctx context.Context, actor domain.Actor, companyID, workflowID string) ([]domain.ApprovalDecision, error) {
	args := m.Called(ctx, actor, companyID, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalDecision), args.Error(1)
}

func (m *MockWorkflowService) SubmitWithdrawalRequest(ctx context.Context, actor domain.Actor, companyID string, req dto.SubmitWithdrawalRequest) (*domain.WithdrawalRequest, *domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, actor, companyID, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.WithdrawalRequest), args.Get(1).(*domain.ApprovalWorkflow), args.Error(2)
}

func (m *MockWorkflowService) AssignReviewer(ctx context.Context, actor domain.Actor, companyID, workflowID string, req dto.AssignReviewerRequest) (*domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, actor, companyID, workflowID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalWorkflow), args.Error(1)
}

func (m *MockWorkflowService) RecordDecision(ctx context.Context, actor domain.Actor, companyID, workflowID string, req dto.RecordDecisionRequest) (*domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, actor, companyID, workflowID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalWorkflow), args.Error(1)
}

var _ portssvc.WorkflowSvcFacade = (*MockWorkflowService)(nil)

// --- Mock AuditService ---
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) ListWorkflowAudit(ctx context.Context, actor domain.Actor, companyID, workflowID string) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, actor, companyID, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

func (m *MockAuditService) ListCompanyAudit(ctx context.Context, actor domain.Actor, companyID string, window domain.TimeRange) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, actor, companyID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

var _ portssvc.AuditSvc = (*MockAuditService)(nil)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// --- Test Suite ---
type WorkflowHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockWorkflowService *MockWorkflowService
	mockAuditService    *MockAuditService
	jwtSecret           string
	issuer              string
	companyID           string
}

// generateTestToken creates an identity JWT for testing.
func (suite *WorkflowHandlerTestSuite) generateTestToken(userID string, role domain.Role) string {
	claims := middleware.IdentityClaims{
		CompanyID:     suite.companyID,
		Role:          role,
		EmailVerified: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    suite.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *WorkflowHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(dto.RegisterValidators())

	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.issuer = "approvals-test"
	suite.companyID = uuid.NewString()
	suite.mockWorkflowService = new(MockWorkflowService)
	suite.mockAuditService = new(MockAuditService)

	suite.router = gin.New()
	cfg := &config.Config{JWTSecret: suite.jwtSecret, JWTIssuer: suite.issuer, IsProduction: true}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Workflow: suite.mockWorkflowService,
		Audit:    suite.mockAuditService,
	}, handlers.RouteDeps{Gatherer: prometheus.NewRegistry()})
}

func (suite *WorkflowHandlerTestSuite) do(method, path, userID string, role domain.Role, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID, role))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *WorkflowHandlerTestSuite) workflowPath(workflowID, suffix string) string {
	return fmt.Sprintf("/api/v1/companies/%s/workflows/%s%s", suite.companyID, workflowID, suffix)
}

func (suite *WorkflowHandlerTestSuite) sampleWorkflow(state domain.WorkflowState) *domain.ApprovalWorkflow {
	now := time.Now().UTC()
	return &domain.ApprovalWorkflow{
		WorkflowID:          uuid.NewString(),
		CompanyID:           suite.companyID,
		WithdrawalRequestID: uuid.NewString(),
		State:               state,
		StageEnteredAt:      now,
		Version:             1,
		RequestAmount:       decimal.RequireFromString("1500.00"),
		Currency:            "KES",
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func actorWith(id string, role domain.Role) interface{} {
	return mock.MatchedBy(func(a domain.Actor) bool {
		return a.ActorID == id && a.Role == role && a.EmailVerified
	})
}

// --- Test Cases ---

func (suite *WorkflowHandlerTestSuite) TestSubmitWithdrawal_Success() {
	agentID := uuid.NewString()
	wf := suite.sampleWorkflow(domain.StatePendingReview)
	request := &domain.WithdrawalRequest{
		RequestID:  wf.WithdrawalRequestID,
		CompanyID:  suite.companyID,
		CustomerID: "cust-1",
		AgentID:    agentID,
		Amount:     wf.RequestAmount,
		Currency:   "KES",
		CreatedAt:  wf.CreatedAt,
	}

	suite.mockWorkflowService.On("SubmitWithdrawalRequest",
		mock.Anything,
		actorWith(agentID, domain.RoleFieldAgent),
		suite.companyID,
		mock.MatchedBy(func(r dto.SubmitWithdrawalRequest) bool {
			return r.CustomerID == "cust-1" && r.Amount.Equal(decimal.RequireFromString("1500")) && r.Currency == "KES"
		}),
	).Return(request, wf, nil).Once()

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/v1/companies/%s/withdrawals", suite.companyID), agentID, domain.RoleFieldAgent,
		map[string]any{"customerID": "cust-1", "amount": "1500.00", "currency": "KES"})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var body dto.SubmitWithdrawalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(wf.WorkflowID, body.Workflow.WorkflowID)
	suite.Equal(domain.StatePendingReview, body.Workflow.State)
	suite.Equal([]domain.Action{domain.ActionAssignReviewer}, body.Workflow.AllowedActions)
	suite.Equal(request.RequestID, body.Request.RequestID)
	suite.mockWorkflowService.AssertExpectations(suite.T())
}

func (suite *WorkflowHandlerTestSuite) TestSubmitWithdrawal_InvalidBody() {
	agentID := uuid.NewString()
	cases := map[string]map[string]any{
		"negative amount":  {"customerID": "cust-1", "amount": "-5", "currency": "KES"},
		"zero amount":      {"customerID": "cust-1", "amount": "0", "currency": "KES"},
		"unknown currency": {"customerID": "cust-1", "amount": "10", "currency": "KESX"},
		"missing customer": {"amount": "10", "currency": "KES"},
	}
	for name, body := range cases {
		suite.Run(name, func() {
			w := suite.do(http.MethodPost, fmt.Sprintf("/api/v1/companies/%s/withdrawals", suite.companyID), agentID, domain.RoleFieldAgent, body)
			suite.Equal(http.StatusBadRequest, w.Code)
			var resp handlers.ErrorResponse
			suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
			suite.Equal(apperrors.KindValidation, resp.Error)
		})
	}
	suite.mockWorkflowService.AssertNotCalled(suite.T(), "SubmitWithdrawalRequest")
}

func (suite *WorkflowHandlerTestSuite) TestRequiresAuthentication() {
	w := suite.do(http.MethodGet, suite.workflowPath(uuid.NewString(), ""), "", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockWorkflowService.AssertNotCalled(suite.T(), "GetWorkflow")
}

func (suite *WorkflowHandlerTestSuite) TestGetWorkflow_IncludesDecisions() {
	reviewer := uuid.NewString()
	wf := suite.sampleWorkflow(domain.StatePendingAuthorization)
	wf.AssignedReviewerID = &reviewer
	fp := "fingerprint-value-xyz"
	wf.DecisionHistory = []domain.ApprovalDecision{
		{DecisionID: "d1", ActorID: reviewer, ActorRole: domain.RoleClerk, Action: domain.ActionApprove, Timestamp: wf.CreatedAt},
		{DecisionID: "d2", ActorID: reviewer, ActorRole: domain.RoleCompanyAdmin, Action: domain.ActionConfirm, TokenFingerprint: &fp, Timestamp: wf.CreatedAt},
	}
	wf.Request = &domain.WithdrawalRequest{
		RequestID: wf.WithdrawalRequestID, CompanyID: suite.companyID, CustomerID: "cust-9", AgentID: "agent-9",
		Amount: wf.RequestAmount, Currency: wf.Currency, CreatedAt: wf.CreatedAt,
	}

	suite.mockWorkflowService.On("GetWorkflow", mock.Anything, actorWith(reviewer, domain.RoleClerk), suite.companyID, wf.WorkflowID).
		Return(wf, nil).Once()

	w := suite.do(http.MethodGet, suite.workflowPath(wf.WorkflowID, ""), reviewer, domain.RoleClerk, nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.WorkflowResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Require().Len(body.Decisions, 2)
	suite.False(body.Decisions[0].Confirmed)
	suite.True(body.Decisions[1].Confirmed)
	suite.NotContains(w.Body.String(), fp)
	suite.Require().NotNil(body.Request)
	suite.Equal("cust-9", body.Request.CustomerID)
	suite.Equal(wf.WithdrawalRequestID, body.Request.RequestID)
	suite.mockWorkflowService.AssertExpectations(suite.T())
}

func (suite *WorkflowHandlerTestSuite) TestListDecisions() {
	wfID := uuid.NewString()
	adminID := uuid.NewString()
	fp := "fingerprint-value-xyz"
	at := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	decisions := []domain.ApprovalDecision{
		{DecisionID: "d1", ActorID: adminID, ActorRole: domain.RoleCompanyAdmin, Action: domain.ActionApprove, Timestamp: at},
		{DecisionID: "d2", ActorID: adminID, ActorRole: domain.RoleCompanyAdmin, Action: domain.ActionConfirm, TokenFingerprint: &fp, Timestamp: at.Add(time.Minute)},
	}
	suite.mockWorkflowService.On("ListDecisions", mock.Anything, actorWith(adminID, domain.RoleCompanyAdmin), suite.companyID, wfID).
		Return(decisions, nil).Once()

	w := suite.do(http.MethodGet, suite.workflowPath(wfID, "/decisions"), adminID, domain.RoleCompanyAdmin, nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.ListDecisionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Require().Len(body.Decisions, 2)
	suite.Equal("d1", body.Decisions[0].DecisionID)
	suite.True(body.Decisions[1].Confirmed)
	suite.NotContains(w.Body.String(), fp)

	missing := uuid.NewString()
	suite.mockWorkflowService.On("ListDecisions", mock.Anything, mock.Anything, suite.companyID, missing).
		Return(nil, apperrors.NewNotFoundError("workflow not found")).Once()
	w = suite.do(http.MethodGet, suite.workflowPath(missing, "/decisions"), adminID, domain.RoleCompanyAdmin, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockWorkflowService.AssertExpectations(suite.T())
}

func (suite *WorkflowHandlerTestSuite) TestListWorkflows_PassesParams() {
	userID := uuid.NewString()
	next := "tok"
	page := []domain.ApprovalWorkflow{*suite.sampleWorkflow(domain.StateUnderReview)}

	suite.mockWorkflowService.On("ListWorkflows", mock.Anything, actorWith(userID, domain.RoleCompanyAdmin), suite.companyID,
		mock.MatchedBy(func(p dto.ListWorkflowsParams) bool {
			return p.Limit == 5 && p.State == "under_review" && p.NextToken == "abc"
		}),
	).Return(page, &next, nil).Once()

	w := suite.do(http.MethodGet,
		fmt.Sprintf("/api/v1/companies/%s/workflows?state=under_review&limit=5&nextToken=abc", suite.companyID),
		userID, domain.RoleCompanyAdmin, nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.ListWorkflowsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Workflows, 1)
	suite.Require().NotNil(body.NextToken)
	suite.Equal("tok", *body.NextToken)
	suite.mockWorkflowService.AssertExpectations(suite.T())
}

func (suite *WorkflowHandlerTestSuite) TestListWorkflows_DefaultsAndValidation() {
	userID := uuid.NewString()
	suite.mockWorkflowService.On("ListWorkflows", mock.Anything, mock.Anything, suite.companyID,
		mock.MatchedBy(func(p dto.ListWorkflowsParams) bool { return p.Limit == 20 && p.State == "" }),
	).Return([]domain.ApprovalWorkflow{}, nil, nil).Once()

	w := suite.do(http.MethodGet, fmt.Sprintf("/api/v1/companies/%s/workflows", suite.companyID), userID, domain.RoleClerk, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"workflows":[]}`, w.Body.String())

	for _, query := range []string{"state=done", "limit=0", "limit=101"} {
		w = suite.do(http.MethodGet, fmt.Sprintf("/api/v1/companies/%s/workflows?%s", suite.companyID, query), userID, domain.RoleClerk, nil)
		suite.Equal(http.StatusBadRequest, w.Code, query)
	}
	suite.mockWorkflowService.AssertNumberOfCalls(suite.T(), "ListWorkflows", 1)
}

func (suite *WorkflowHandlerTestSuite) TestAssignReviewer() {
	adminID := uuid.NewString()
	reviewer := uuid.NewString()
	wf := suite.sampleWorkflow(domain.StateUnderReview)
	wf.AssignedReviewerID = &reviewer
	wf.Version = 2

	suite.mockWorkflowService.On("AssignReviewer", mock.Anything, actorWith(adminID, domain.RoleCompanyAdmin), suite.companyID, wf.WorkflowID,
		mock.MatchedBy(func(r dto.AssignReviewerRequest) bool {
			return r.ReviewerID == reviewer && r.ExpectedVersion != nil && *r.ExpectedVersion == 1
		}),
	).Return(wf, nil).Once()

	w := suite.do(http.MethodPost, suite.workflowPath(wf.WorkflowID, "/reviewer"), adminID, domain.RoleCompanyAdmin,
		map[string]any{"reviewerID": reviewer, "expectedVersion": 1})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var body dto.WorkflowResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(int64(2), body.Version)
	suite.Require().NotNil(body.AssignedReviewerID)
	suite.Equal(reviewer, *body.AssignedReviewerID)
	suite.mockWorkflowService.AssertExpectations(suite.T())
}

func (suite *WorkflowHandlerTestSuite) TestRecordDecision_RejectsUnknownAction() {
	w := suite.do(http.MethodPost, suite.workflowPath(uuid.NewString(), "/decisions"), uuid.NewString(), domain.RoleClerk,
		map[string]any{"action": "submit"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockWorkflowService.AssertNotCalled(suite.T(), "RecordDecision")
}

func (suite *WorkflowHandlerTestSuite) TestRecordDecision_ForwardsConfirmationToken() {
	adminID := uuid.NewString()
	wf := suite.sampleWorkflow(domain.StateApproved)

	suite.mockWorkflowService.On("RecordDecision", mock.Anything, actorWith(adminID, domain.RoleCompanyAdmin), suite.companyID, wf.WorkflowID,
		dto.RecordDecisionRequest{Action: domain.ActionConfirm, ConfirmationToken: "signed.jwt.value", Comment: "ok"},
	).Return(wf, nil).Once()

	w := suite.do(http.MethodPost, suite.workflowPath(wf.WorkflowID, "/decisions"), adminID, domain.RoleCompanyAdmin,
		map[string]any{"action": "confirm", "confirmationToken": "signed.jwt.value", "comment": "ok"})

	suite.Equal(http.StatusOK, w.Code)
	var body dto.WorkflowResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(domain.StateApproved, body.State)
	suite.Empty(body.AllowedActions)
	suite.mockWorkflowService.AssertExpectations(suite.T())
}

func (suite *WorkflowHandlerTestSuite) TestRecordDecision_ErrorMapping() {
	cases := []struct {
		name   string
		err    error
		status int
		kind   apperrors.Kind
		reason string
	}{
		{"not found", apperrors.NewNotFoundError("workflow not found"), http.StatusNotFound, apperrors.KindNotFound, ""},
		{"unauthorized", apperrors.NewUnauthorizedError("role_lacks_capability", "clerk may not confirm"), http.StatusForbidden, apperrors.KindUnauthorized, "role_lacks_capability"},
		{"invalid transition", apperrors.NewInvalidTransitionError("cannot approve from approved"), http.StatusConflict, apperrors.KindInvalidTransition, ""},
		{"conflict", apperrors.NewConflictError("workflow was modified"), http.StatusConflict, apperrors.KindConflict, ""},
		{"replay", apperrors.NewTokenReplayError(), http.StatusConflict, apperrors.KindTokenReplay, ""},
		{"token invalid", apperrors.NewTokenInvalidError("expired", nil), http.StatusUnprocessableEntity, apperrors.KindTokenInvalid, "expired"},
		{"storage", apperrors.NewStorageUnavailableError("store unavailable", errors.New("dial tcp 10.0.0.3:5432")), http.StatusServiceUnavailable, apperrors.KindStorageUnavailable, ""},
		{"internal", errors.New("pq: password authentication failed"), http.StatusInternalServerError, apperrors.KindInternal, ""},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			workflowID := uuid.NewString()
			suite.mockWorkflowService.On("RecordDecision", mock.Anything, mock.Anything, suite.companyID, workflowID, mock.Anything).
				Return(nil, tc.err).Once()

			w := suite.do(http.MethodPost, suite.workflowPath(workflowID, "/decisions"), uuid.NewString(), domain.RoleCompanyAdmin,
				map[string]any{"action": "approve"})

			suite.Equal(tc.status, w.Code)
			var body handlers.ErrorResponse
			suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
			suite.Equal(tc.kind, body.Error)
			suite.Equal(tc.reason, body.Reason)
			suite.NotContains(body.Message, "10.0.0.3")
			suite.NotContains(body.Message, "password")
		})
	}
}

func (suite *WorkflowHandlerTestSuite) TestWorkflowAudit() {
	userID := uuid.NewString()
	workflowID := uuid.NewString()
	entries := []domain.AuditEntry{
		{EntryID: "e1", WorkflowID: workflowID, FromState: domain.StatePendingReview, ToState: domain.StateUnderReview, Action: domain.ActionAssignReviewer, WorkflowVersion: 2, ReasonCode: domain.ReasonReviewerAssigned},
	}
	suite.mockAuditService.On("ListWorkflowAudit", mock.Anything, actorWith(userID, domain.RoleClerk), suite.companyID, workflowID).
		Return(entries, nil).Once()

	w := suite.do(http.MethodGet, suite.workflowPath(workflowID, "/audit"), userID, domain.RoleClerk, nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.ListAuditResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Require().Len(body.Entries, 1)
	suite.Equal(domain.ReasonReviewerAssigned, body.Entries[0].ReasonCode)
	suite.mockAuditService.AssertExpectations(suite.T())
}

func (suite *WorkflowHandlerTestSuite) TestCompanyAudit_ParsesWindow() {
	userID := uuid.NewString()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	suite.mockAuditService.On("ListCompanyAudit", mock.Anything, mock.Anything, suite.companyID,
		mock.MatchedBy(func(r domain.TimeRange) bool { return r.From.Equal(from) && r.To.Equal(to) }),
	).Return([]domain.AuditEntry{}, nil).Once()
	suite.mockAuditService.On("ListCompanyAudit", mock.Anything, mock.Anything, suite.companyID,
		mock.MatchedBy(func(r domain.TimeRange) bool { return r.From.IsZero() && r.To.IsZero() }),
	).Return(nil, apperrors.NewNotFoundError("company not found")).Once()

	q := url.Values{}
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))
	w := suite.do(http.MethodGet, fmt.Sprintf("/api/v1/companies/%s/audit?%s", suite.companyID, q.Encode()), userID, domain.RoleCompanyAdmin, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"entries":[]}`, w.Body.String())

	w = suite.do(http.MethodGet, fmt.Sprintf("/api/v1/companies/%s/audit", suite.companyID), userID, domain.RoleCompanyAdmin, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodGet, fmt.Sprintf("/api/v1/companies/%s/audit?from=yesterday", suite.companyID), userID, domain.RoleCompanyAdmin, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.mockAuditService.AssertExpectations(suite.T())
}

func (suite *WorkflowHandlerTestSuite) TestMetricsEndpoint() {
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: "s", IsProduction: true}

	for name, tc := range map[string]struct {
		pinger stubPinger
		status int
	}{
		"store up":   {stubPinger{}, http.StatusOK},
		"store down": {stubPinger{err: errors.New("refused")}, http.StatusServiceUnavailable},
	} {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			handlers.RegisterRoutes(r, cfg, &portssvc.ServiceContainer{}, handlers.RouteDeps{Health: tc.pinger})
			req, _ := http.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
		})
	}
}

// --- Run Test Suite ---
func TestWorkflowHandler(t *testing.T) {
	suite.Run(t, new(WorkflowHandlerTestSuite))
}
