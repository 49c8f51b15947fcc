package dto

import (
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SubmitWithdrawalRequest defines the data needed to open a withdrawal request.
type SubmitWithdrawalRequest struct {
	CustomerID string          `json:"customerID" binding:"required"`
	AgentID    string          `json:"agentID"` // Optional, defaults to the caller
	Amount     decimal.Decimal `json:"amount" binding:"decimal_positive" swaggertype:"string" example:"1500.00"`
	Currency   string          `json:"currency" binding:"required,iso4217"`
}

// AssignReviewerRequest names the reviewer that takes a pending workflow.
type AssignReviewerRequest struct {
	ReviewerID      string `json:"reviewerID" binding:"required"`
	ExpectedVersion *int64 `json:"expectedVersion" binding:"omitempty,min=1"` // Optional optimistic check
}

// RecordDecisionRequest carries one review decision.
type RecordDecisionRequest struct {
	Action            domain.Action `json:"action" binding:"required,workflow_action" swaggertype:"string" enums:"approve,reject,escalate,request_info,confirm,cancel"`
	Comment           string        `json:"comment" binding:"max=1000"`
	ConfirmationToken string        `json:"confirmationToken"` // Required for confirm
	ExpectedVersion   *int64        `json:"expectedVersion" binding:"omitempty,min=1"`
}

// ListWorkflowsParams defines query parameters for listing a company's workflows.
type ListWorkflowsParams struct {
	State     string `form:"state" binding:"omitempty,workflow_state"`
	Limit     int    `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// WithdrawalRequestResponse mirrors domain.WithdrawalRequest.
type WithdrawalRequestResponse struct {
	RequestID  string          `json:"requestID"`
	CompanyID  string          `json:"companyID"`
	CustomerID string          `json:"customerID"`
	AgentID    string          `json:"agentID"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"string"`
	Currency   string          `json:"currency"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// DecisionResponse mirrors domain.ApprovalDecision. The token fingerprint is not exposed.
type DecisionResponse struct {
	DecisionID string        `json:"decisionID"`
	ActorID    string        `json:"actorID"`
	ActorRole  domain.Role   `json:"actorRole"`
	Action     domain.Action `json:"action"`
	Comment    string        `json:"comment,omitempty"`
	Confirmed  bool          `json:"confirmed"`
	Timestamp  time.Time     `json:"timestamp"`
}

// WorkflowResponse defines the data returned for a workflow.
type WorkflowResponse struct {
	WorkflowID          string                     `json:"workflowID"`
	CompanyID           string                     `json:"companyID"`
	WithdrawalRequestID string                     `json:"withdrawalRequestID"`
	State               domain.WorkflowState       `json:"state"`
	AssignedReviewerID  *string                    `json:"assignedReviewerID,omitempty"`
	StageEnteredAt      time.Time                  `json:"stageEnteredAt"`
	EscalationLevel     int                        `json:"escalationLevel"`
	Version             int64                      `json:"version"`
	RequestAmount       decimal.Decimal            `json:"requestAmount" swaggertype:"string"`
	Currency            string                     `json:"currency"`
	RiskTier            domain.RiskTier            `json:"riskTier,omitempty"`
	AllowedActions      []domain.Action            `json:"allowedActions"`
	CreatedAt           time.Time                  `json:"createdAt"`
	UpdatedAt           time.Time                  `json:"updatedAt"`
	Request             *WithdrawalRequestResponse `json:"request,omitempty"`
	Decisions           []DecisionResponse         `json:"decisions,omitempty"`
}

// SubmitWithdrawalResponse is returned when a request and its workflow are created.
type SubmitWithdrawalResponse struct {
	Request  WithdrawalRequestResponse `json:"request"`
	Workflow WorkflowResponse          `json:"workflow"`
}

// ListDecisionsResponse wraps a workflow's decision history, oldest first.
type ListDecisionsResponse struct {
	Decisions []DecisionResponse `json:"decisions"`
}

// ListWorkflowsResponse wraps one page of workflows.
type ListWorkflowsResponse struct {
	Workflows []WorkflowResponse `json:"workflows"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToWithdrawalRequestResponse converts a domain.WithdrawalRequest to its DTO
func ToWithdrawalRequestResponse(req *domain.WithdrawalRequest) WithdrawalRequestResponse {
	return WithdrawalRequestResponse{
		RequestID:  req.RequestID,
		CompanyID:  req.CompanyID,
		CustomerID: req.CustomerID,
		AgentID:    req.AgentID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		CreatedAt:  req.CreatedAt,
	}
}

// ToDecisionResponse converts a domain.ApprovalDecision to its DTO
func ToDecisionResponse(d domain.ApprovalDecision) DecisionResponse {
	return DecisionResponse{
		DecisionID: d.DecisionID,
		ActorID:    d.ActorID,
		ActorRole:  d.ActorRole,
		Action:     d.Action,
		Comment:    d.Comment,
		Confirmed:  d.TokenFingerprint != nil,
		Timestamp:  d.Timestamp,
	}
}

// ToWorkflowResponse converts a domain.ApprovalWorkflow to WorkflowResponse DTO
func ToWorkflowResponse(wf *domain.ApprovalWorkflow) WorkflowResponse {
	res := WorkflowResponse{
		WorkflowID:          wf.WorkflowID,
		CompanyID:           wf.CompanyID,
		WithdrawalRequestID: wf.WithdrawalRequestID,
		State:               wf.State,
		AssignedReviewerID:  wf.AssignedReviewerID,
		StageEnteredAt:      wf.StageEnteredAt,
		EscalationLevel:     wf.EscalationLevel,
		Version:             wf.Version,
		RequestAmount:       wf.RequestAmount,
		Currency:            wf.Currency,
		RiskTier:            wf.RiskTier,
		AllowedActions:      domain.AllowedActions(wf.State),
		CreatedAt:           wf.CreatedAt,
		UpdatedAt:           wf.UpdatedAt,
	}
	if res.AllowedActions == nil {
		res.AllowedActions = []domain.Action{}
	}
	if wf.Request != nil {
		req := ToWithdrawalRequestResponse(wf.Request)
		res.Request = &req
	}
	for _, d := range wf.DecisionHistory {
		res.Decisions = append(res.Decisions, ToDecisionResponse(d))
	}
	return res
}

// ToListWorkflowsResponse converts a page of workflows to its DTO
func ToListWorkflowsResponse(workflows []domain.ApprovalWorkflow, nextToken *string) ListWorkflowsResponse {
	res := make([]WorkflowResponse, len(workflows))
	for i := range workflows {
		res[i] = ToWorkflowResponse(&workflows[i])
	}
	return ListWorkflowsResponse{Workflows: res, NextToken: nextToken}
}

// ToListDecisionsResponse converts a decision history to its DTO
func ToListDecisionsResponse(decisions []domain.ApprovalDecision) ListDecisionsResponse {
	res := make([]DecisionResponse, len(decisions))
	for i, d := range decisions {
		res[i] = ToDecisionResponse(d)
	}
	return ListDecisionsResponse{Decisions: res}
}
