package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-agent/shared/models"
)

// handleServiceError maps core sentinels to a status and an ErrorResponse.
func (h *Handler) handleServiceError(c *gin.Context, err error) {
	var (
		status int
		resp   models.ErrorResponse
	)
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		status = http.StatusBadRequest
		resp = models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: err.Error()}
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
		resp = models.ErrorResponse{Code: models.ErrCodeForbidden, Message: "Access to this resource is forbidden"}
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
		resp = models.ErrorResponse{Code: models.ErrCodeNotFound, Message: "Resource not found"}
	case errors.Is(err, models.ErrConfig):
		status = http.StatusInternalServerError
		resp = models.ErrorResponse{Code: models.ErrCodeConfig, Message: "Service is not configured for this operation"}
	case errors.Is(err, models.ErrClock):
		status = http.StatusInternalServerError
		resp = models.ErrorResponse{Code: models.ErrCodeClock, Message: "System clock is unusable"}
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		resp = models.ErrorResponse{Code: models.ErrCodeTimeout, Message: "Upstream call timed out"}
	case errors.Is(err, models.ErrCompletion):
		status = http.StatusBadGateway
		resp = models.ErrorResponse{Code: models.ErrCodeCompletion, Message: "Completion engine failed"}
	case errors.Is(err, models.ErrHTTP):
		status = http.StatusBadGateway
		resp = models.ErrorResponse{Code: models.ErrCodeUpstream, Message: "Image service request failed"}
	default:
		status = http.StatusInternalServerError
		resp = models.ErrorResponse{Code: models.ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: message})
}
