package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	webhookapp "github.com/stocksync/backend/internal/application/webhook"
	"github.com/stocksync/backend/internal/interfaces/http/dto"
	"github.com/stocksync/backend/internal/interfaces/http/middleware"
)

// SubscriptionHandler manages webhook subscriptions on the provider side
type SubscriptionHandler struct {
	BaseHandler
	subscriptions *webhookapp.SubscriptionService
	logger        *zap.Logger
}

// NewSubscriptionHandler creates a subscription handler
func NewSubscriptionHandler(subscriptions *webhookapp.SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// RegisterRoutes registers subscription management routes
func (h *SubscriptionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	subs := rg.Group("/webhooks/subscriptions")
	{
		subs.GET("", h.List)
		subs.POST("", h.Register)
		subs.DELETE("", h.Delete)
	}
}

// List returns the tenant's current provider-side subscriptions
// GET /api/v1/webhooks/subscriptions
func (h *SubscriptionHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, dto.ErrCodeUnauthorized, "Tenant identification required")
		return
	}

	rows, err := h.subscriptions.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Register subscribes webhook scopes to a destination address
// POST /api/v1/webhooks/subscriptions
func (h *SubscriptionHandler) Register(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, dto.ErrCodeUnauthorized, "Tenant identification required")
		return
	}

	var req dto.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	rows, err := h.subscriptions.Register(c.Request.Context(), tenantID, req.Address, req.Scopes)
	if err != nil {
		h.logger.Warn("webhook subscription registration failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Delete removes one provider-side subscription
// DELETE /api/v1/webhooks/subscriptions
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, dto.ErrCodeUnauthorized, "Tenant identification required")
		return
	}

	var req dto.SubscriptionDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.subscriptions.Delete(c.Request.Context(), tenantID, req.ID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deleted": req.ID})
}
