package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/withdrawal_approvals/internal/core/ports/services"
	"github.com/SscSPs/withdrawal_approvals/internal/dto"
	"github.com/SscSPs/withdrawal_approvals/internal/middleware"
	"github.com/gin-gonic/gin"
)

// workflowHandler handles HTTP requests for withdrawal requests and their approval workflows.
type workflowHandler struct {
	workflowService portssvc.WorkflowSvcFacade
}

func newWorkflowHandler(ws portssvc.WorkflowSvcFacade) *workflowHandler {
	return &workflowHandler{
		workflowService: ws,
	}
}

// RegisterWorkflowRoutes registers the workflow routes on a group scoped by :company_id.
func RegisterWorkflowRoutes(rg *gin.RouterGroup, workflowService portssvc.WorkflowSvcFacade) {
	h := newWorkflowHandler(workflowService)

	rg.POST("/withdrawals", h.submitWithdrawal)

	workflows := rg.Group("/workflows")
	{
		workflows.GET("", h.listWorkflows)
		workflows.GET("/:workflow_id", h.getWorkflow)
		workflows.GET("/:workflow_id/decisions", h.listDecisions)
		workflows.POST("/:workflow_id/reviewer", h.assignReviewer)
		workflows.POST("/:workflow_id/decisions", h.recordDecision)
	}
}

// submitWithdrawal godoc
// @Summary Submit a withdrawal request
// @Description Creates a withdrawal request and its approval workflow in pending_review
// @Tags workflows
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   request body dto.SubmitWithdrawalRequest true "Withdrawal details"
// @Success 201 {object} dto.SubmitWithdrawalResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Not permitted"
// @Failure 404 {object} handlers.ErrorResponse "Company not found"
// @Failure 503 {object} handlers.ErrorResponse "Storage unavailable"
// @Security BearerAuth
// @Router /companies/{company_id}/withdrawals [post]
func (h *workflowHandler) submitWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req dto.SubmitWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "SubmitWithdrawal", err)
		return
	}
	companyID := c.Param("company_id")

	request, workflow, err := h.workflowService.SubmitWithdrawalRequest(c.Request.Context(), actor, companyID, req)
	if err != nil {
		respondError(c, "SubmitWithdrawal", err)
		return
	}

	logger.Info("Withdrawal request submitted",
		slog.String("company_id", companyID),
		slog.String("request_id", request.RequestID),
		slog.String("workflow_id", workflow.WorkflowID))
	c.JSON(http.StatusCreated, dto.SubmitWithdrawalResponse{
		Request:  dto.ToWithdrawalRequestResponse(request),
		Workflow: dto.ToWorkflowResponse(workflow),
	})
}

// listWorkflows godoc
// @Summary List workflows
// @Description Lists a company's workflows newest first, optionally filtered by state
// @Tags workflows
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   state query string false "Workflow state"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListWorkflowsResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Company not found"
// @Security BearerAuth
// @Router /companies/{company_id}/workflows [get]
func (h *workflowHandler) listWorkflows(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var params dto.ListWorkflowsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, "ListWorkflows", err)
		return
	}

	workflows, nextToken, err := h.workflowService.ListWorkflows(c.Request.Context(), actor, c.Param("company_id"), params)
	if err != nil {
		respondError(c, "ListWorkflows", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListWorkflowsResponse(workflows, nextToken))
}

// getWorkflow godoc
// @Summary Get a workflow
// @Description Retrieves a workflow with its withdrawal request and decision history
// @Tags workflows
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   workflow_id path string true "Workflow ID"
// @Success 200 {object} dto.WorkflowResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Workflow not found"
// @Security BearerAuth
// @Router /companies/{company_id}/workflows/{workflow_id} [get]
func (h *workflowHandler) getWorkflow(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	workflow, err := h.workflowService.GetWorkflow(c.Request.Context(), actor, c.Param("company_id"), c.Param("workflow_id"))
	if err != nil {
		respondError(c, "GetWorkflow", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkflowResponse(workflow))
}

// listDecisions godoc
// @Summary List a workflow's decisions
// @Description Returns every decision recorded on the workflow, oldest first
// @Tags workflows
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   workflow_id path string true "Workflow ID"
// @Success 200 {object} dto.ListDecisionsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Workflow not found"
// @Security BearerAuth
// @Router /companies/{company_id}/workflows/{workflow_id}/decisions [get]
func (h *workflowHandler) listDecisions(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	decisions, err := h.workflowService.ListDecisions(c.Request.Context(), actor, c.Param("company_id"), c.Param("workflow_id"))
	if err != nil {
		respondError(c, "ListDecisions", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListDecisionsResponse(decisions))
}

// assignReviewer godoc
// @Summary Assign a reviewer
// @Description Moves a pending_review workflow to under_review with the given reviewer
// @Tags workflows
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   workflow_id path string true "Workflow ID"
// @Param   request body dto.AssignReviewerRequest true "Reviewer"
// @Success 200 {object} dto.WorkflowResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid input"
// @Failure 403 {object} handlers.ErrorResponse "Not permitted"
// @Failure 404 {object} handlers.ErrorResponse "Workflow not found"
// @Failure 409 {object} handlers.ErrorResponse "Invalid transition or concurrent modification"
// @Security BearerAuth
// @Router /companies/{company_id}/workflows/{workflow_id}/reviewer [post]
func (h *workflowHandler) assignReviewer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req dto.AssignReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "AssignReviewer", err)
		return
	}

	workflow, err := h.workflowService.AssignReviewer(c.Request.Context(), actor, c.Param("company_id"), c.Param("workflow_id"), req)
	if err != nil {
		respondError(c, "AssignReviewer", err)
		return
	}

	logger.Info("Reviewer assigned", slog.String("workflow_id", workflow.WorkflowID), slog.String("reviewer_id", req.ReviewerID))
	c.JSON(http.StatusOK, dto.ToWorkflowResponse(workflow))
}

// recordDecision godoc
// @Summary Record a decision
// @Description Applies approve, reject, escalate, request_info, confirm or cancel to a workflow.
// @Description confirm requires a step-up confirmation token.
// @Tags workflows
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   workflow_id path string true "Workflow ID"
// @Param   decision body dto.RecordDecisionRequest true "Decision"
// @Success 200 {object} dto.WorkflowResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid input"
// @Failure 403 {object} handlers.ErrorResponse "Not permitted"
// @Failure 404 {object} handlers.ErrorResponse "Workflow not found"
// @Failure 409 {object} handlers.ErrorResponse "Invalid transition, concurrent modification or token replay"
// @Failure 422 {object} handlers.ErrorResponse "Confirmation token invalid"
// @Failure 503 {object} handlers.ErrorResponse "Storage unavailable"
// @Security BearerAuth
// @Router /companies/{company_id}/workflows/{workflow_id}/decisions [post]
func (h *workflowHandler) recordDecision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req dto.RecordDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "RecordDecision", err)
		return
	}

	workflow, err := h.workflowService.RecordDecision(c.Request.Context(), actor, c.Param("company_id"), c.Param("workflow_id"), req)
	if err != nil {
		respondError(c, "RecordDecision", err)
		return
	}

	logger.Info("Decision recorded",
		slog.String("workflow_id", workflow.WorkflowID),
		slog.String("action", string(req.Action)),
		slog.String("state", string(workflow.State)))
	c.JSON(http.StatusOK, dto.ToWorkflowResponse(workflow))
}
