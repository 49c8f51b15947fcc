package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	"github.com/SscSPs/withdrawal_approvals/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   apperrors.Kind `json:"error" swaggertype:"string"`
	Message string         `json:"message"`
	Reason  string         `json:"reason,omitempty"`
}

// respondError writes err using its kind and status. Internal causes are logged, never returned.
func respondError(c *gin.Context, op string, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := apperrors.HTTPStatus(err)
	body := ErrorResponse{
		Error:   apperrors.KindOf(err),
		Message: apperrors.SafeMessage(err),
		Reason:  apperrors.ReasonOf(err),
	}

	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", slog.String("error", err.Error()), slog.String("kind", string(body.Error)))
	} else {
		logger.Warn(op+" rejected", slog.String("error", err.Error()), slog.String("kind", string(body.Error)), slog.String("reason", body.Reason))
	}
	c.JSON(status, body)
}

// respondBindError reports malformed input as a validation failure.
func respondBindError(c *gin.Context, op string, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request for "+op, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   apperrors.KindValidation,
		Message: "Invalid request format: " + err.Error(),
	})
}

// actorOrAbort fetches the authenticated actor or responds with 401.
func actorOrAbort(c *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return domain.Actor{}, false
	}
	return actor, true
}
