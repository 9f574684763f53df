package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	syncapp "github.com/stocksync/backend/internal/application/sync"
	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/interfaces/http/dto"
	"github.com/stocksync/backend/internal/interfaces/http/middleware"
)

// SyncHandler serves the reconciliation endpoints
type SyncHandler struct {
	BaseHandler
	reconcile *syncapp.ReconcileService
	platform  *syncapp.PlatformSyncService
	importer  *syncapp.ImportService
	logger    *zap.Logger
}

// NewSyncHandler creates a sync handler
func NewSyncHandler(reconcile *syncapp.ReconcileService, platform *syncapp.PlatformSyncService, importer *syncapp.ImportService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		reconcile: reconcile,
		platform:  platform,
		importer:  importer,
		logger:    logger,
	}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.Sync)
	rg.POST("/sync/shopify", h.SyncShopify)
	rg.POST("/sync/square", h.SyncSquare)
	rg.POST("/import/api", h.ImportAPI)
}

// Sync reconciles a caller-supplied batch of items
// POST /api/v1/sync
func (h *SyncHandler) Sync(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, dto.ErrCodeUnauthorized, "Tenant identification required")
		return
	}

	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	source := req.Source
	if source == "" {
		source = "api"
	}

	items := make([]integration.ExternalItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, item.ToExternalItem())
	}

	result, err := h.reconcile.Reconcile(c.Request.Context(), tenantID, source, items, req.EnableLabeling)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.respondBatch(c, toSyncResponse(result), result.Created+result.Updated, result.Failed)
}

// SyncShopify pulls the tenant's Shopify catalog and reconciles it
// POST /api/v1/sync/shopify
func (h *SyncHandler) SyncShopify(c *gin.Context) {
	h.platformSync(c, integration.PlatformCodeShopify)
}

// SyncSquare pulls the tenant's Square catalog and reconciles it
// POST /api/v1/sync/square
func (h *SyncHandler) SyncSquare(c *gin.Context) {
	h.platformSync(c, integration.PlatformCodeSquare)
}

func (h *SyncHandler) platformSync(c *gin.Context, code integration.PlatformCode) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, dto.ErrCodeUnauthorized, "Tenant identification required")
		return
	}

	var req dto.PlatformSyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	result, err := h.platform.Sync(c.Request.Context(), tenantID, code, req.EnableLabeling)
	if err != nil {
		h.logger.Warn("platform sync failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("platform", code.String()),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}

	resp := dto.PlatformSyncResponse{
		SyncResponse: toSyncResponse(&result.ReconcileResult),
		Imported:     result.Imported,
	}
	h.respondBatch(c, resp, result.Created+result.Updated, result.Failed)
}

// ImportAPI pulls a catalog from an arbitrary JSON API and reconciles it
// POST /api/v1/import/api
func (h *SyncHandler) ImportAPI(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, dto.ErrCodeUnauthorized, "Tenant identification required")
		return
	}

	var req dto.ImportAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.importer.Import(c.Request.Context(), tenantID, syncapp.ImportRequest{
		Source:         req.Source,
		APIURL:         req.APIURL,
		APIKey:         req.APIKey,
		ItemsPath:      req.ItemsPath,
		FieldMapping:   req.FieldMapping,
		EnableLabeling: req.EnableLabeling,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := dto.PlatformSyncResponse{
		SyncResponse: toSyncResponse(&result.ReconcileResult),
		Imported:     result.Imported,
	}
	h.respondBatch(c, resp, result.Created+result.Updated, result.Failed)
}

// respondBatch applies the partial-failure contract: any success keeps the
// batch a 200; a batch where every item failed is an error response.
func (h *SyncHandler) respondBatch(c *gin.Context, data any, succeeded, failed int) {
	if failed > 0 && succeeded == 0 {
		c.JSON(http.StatusUnprocessableEntity, dto.Response{
			Success: false,
			Data:    data,
			Error: &dto.ErrorInfo{
				Code:    dto.ErrCodeValidation,
				Message: "No items could be reconciled",
			},
		})
		return
	}
	h.Success(c, data)
}

func toSyncResponse(result *syncapp.ReconcileResult) dto.SyncResponse {
	return dto.SyncResponse{
		Created: result.Created,
		Updated: result.Updated,
		Failed:  result.Failed,
		Errors:  result.Errors,
		Summary: result.Summary(),
	}
}
