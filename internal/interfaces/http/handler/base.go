package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/shared"
	"github.com/stocksync/backend/internal/interfaces/http/dto"
	"github.com/stocksync/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getTenantID extracts the authenticated tenant from the request context
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	return middleware.GetTenantUUID(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with an explicit status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, code, message string) {
	h.Error(c, http.StatusUnauthorized, code, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts domain and upstream errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	switch {
	case errors.Is(err, integration.ErrUnexpectedShape):
		// The wrapped message names the path that failed to resolve
		h.Error(c, http.StatusBadRequest, dto.ErrCodeShape, err.Error())
	case errors.Is(err, integration.ErrPlatformAuthFailed):
		h.Error(c, http.StatusBadGateway, dto.ErrCodeUpstreamAuth,
			"The platform rejected the stored credentials. Please reconnect your store.")
	case errors.Is(err, integration.ErrPlatformNotConfigured):
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeNotConnected,
			"This platform is not connected for your account.")
	case errors.Is(err, integration.ErrPlatformRateLimited),
		errors.Is(err, integration.ErrPlatformRequestFailed),
		errors.Is(err, integration.ErrPlatformInvalidResponse):
		h.Error(c, http.StatusBadGateway, dto.ErrCodeUpstreamUnavailable,
			"The upstream platform is unavailable. Please try again later.")
	case errors.Is(err, integration.ErrCredentialsMissing):
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeNotConnected,
			"No credentials are stored for this platform.")
	default:
		h.InternalError(c, "An unexpected error occurred")
	}
}
