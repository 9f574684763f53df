package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	webhookapp "github.com/stocksync/backend/internal/application/webhook"
	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/interfaces/http/dto"
)

// Shopify webhook headers
const (
	shopifyHmacHeader     = "X-Shopify-Hmac-Sha256"
	shopifyTopicHeader    = "X-Shopify-Topic"
	shopifyDeliveryHeader = "X-Shopify-Webhook-Id"
	shopifyShopHeader     = "X-Shopify-Shop-Domain"
)

// Square webhook headers
const squareSignatureHeader = "X-Square-Hmacsha256-Signature"

// WebhookHandler receives platform webhook deliveries. Signature
// verification runs over the raw body, so the body is read before any JSON
// binding.
type WebhookHandler struct {
	BaseHandler
	shopify     *webhookapp.ShopifyProcessor
	square      *webhookapp.SquareProcessor
	maxBodySize int64
	logger      *zap.Logger
}

// NewWebhookHandler creates a webhook receiver handler
func NewWebhookHandler(shopify *webhookapp.ShopifyProcessor, square *webhookapp.SquareProcessor, maxBodySize int64, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		shopify:     shopify,
		square:      square,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// RegisterRoutes registers the webhook receiver routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/shopify", h.ReceiveShopify)
	rg.POST("/square", h.ReceiveSquare)
}

// ReceiveShopify handles one Shopify webhook delivery
// POST /webhooks/shopify
func (h *WebhookHandler) ReceiveShopify(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	delivery := webhookapp.Delivery{
		Body:       body,
		Signature:  c.GetHeader(shopifyHmacHeader),
		Scope:      c.GetHeader(shopifyTopicHeader),
		DeliveryID: c.GetHeader(shopifyDeliveryHeader),
		ShopDomain: c.GetHeader(shopifyShopHeader),
	}

	outcome, err := h.shopify.Process(c.Request.Context(), delivery)
	h.respond(c, "shopify", delivery.Scope, outcome, err)
}

// ReceiveSquare handles one Square webhook delivery
// POST /webhooks/square
func (h *WebhookHandler) ReceiveSquare(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	// Square carries the event type and delivery id inside the payload
	delivery := webhookapp.Delivery{
		Body:      body,
		Signature: c.GetHeader(squareSignatureHeader),
	}

	outcome, err := h.square.Process(c.Request.Context(), delivery)
	h.respond(c, "square", "", outcome, err)
}

func (h *WebhookHandler) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBodySize))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return nil, false
	}
	return body, true
}

func (h *WebhookHandler) respond(c *gin.Context, platform, scope string, outcome *webhookapp.Outcome, err error) {
	if err != nil {
		switch {
		case errors.Is(err, integration.ErrInvalidSignature):
			h.logger.Warn("webhook signature verification failed",
				zap.String("platform", platform),
				zap.String("topic", scope),
			)
			h.Unauthorized(c, dto.ErrCodeInvalidSignature, "Webhook signature verification failed")
		case errors.Is(err, integration.ErrTenantUnresolved):
			h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeNotConnected,
				"Delivery could not be resolved to a tenant")
		default:
			h.logger.Error("webhook processing failed",
				zap.String("platform", platform),
				zap.String("topic", scope),
				zap.Error(err),
			)
			h.InternalError(c, "Webhook processing failed")
		}
		return
	}

	h.Success(c, outcome)
}
