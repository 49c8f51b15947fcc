package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/withdrawal_approvals/internal/core/ports/services"
	"github.com/SscSPs/withdrawal_approvals/internal/dto"
	"github.com/gin-gonic/gin"
)

type auditHandler struct {
	auditService portssvc.AuditSvc
}

// RegisterAuditRoutes registers the audit routes on a group scoped by :company_id.
func RegisterAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvc) {
	h := &auditHandler{auditService: auditService}

	rg.GET("/audit", h.listCompanyAudit)
	rg.GET("/workflows/:workflow_id/audit", h.listWorkflowAudit)
}

// listWorkflowAudit godoc
// @Summary List a workflow's audit trail
// @Tags audit
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   workflow_id path string true "Workflow ID"
// @Success 200 {object} dto.ListAuditResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Not permitted"
// @Failure 404 {object} handlers.ErrorResponse "Workflow not found"
// @Security BearerAuth
// @Router /companies/{company_id}/workflows/{workflow_id}/audit [get]
func (h *auditHandler) listWorkflowAudit(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	entries, err := h.auditService.ListWorkflowAudit(c.Request.Context(), actor, c.Param("company_id"), c.Param("workflow_id"))
	if err != nil {
		respondError(c, "ListWorkflowAudit", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAuditResponse(entries))
}

// listCompanyAudit godoc
// @Summary List a company's audit entries
// @Description Returns the company's transitions in the half-open window [from, to). Both bounds are optional.
// @Tags audit
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   from query string false "Window start (RFC3339)"
// @Param   to query string false "Window end, exclusive (RFC3339)"
// @Success 200 {object} dto.ListAuditResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid window"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Company not found"
// @Security BearerAuth
// @Router /companies/{company_id}/audit [get]
func (h *auditHandler) listCompanyAudit(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var params dto.CompanyAuditParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, "ListCompanyAudit", err)
		return
	}

	entries, err := h.auditService.ListCompanyAudit(c.Request.Context(), actor, c.Param("company_id"), params.ToTimeRange())
	if err != nil {
		respondError(c, "ListCompanyAudit", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAuditResponse(entries))
}
