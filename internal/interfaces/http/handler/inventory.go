package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinventory "github.com/stocksync/backend/internal/application/inventory"
	"github.com/stocksync/backend/internal/domain/shared"
	"github.com/stocksync/backend/internal/interfaces/http/dto"
	"github.com/stocksync/backend/internal/interfaces/http/middleware"
)

// InventoryHandler serves read access to the ledger and audit trail
type InventoryHandler struct {
	BaseHandler
	query *appinventory.QueryService
}

// NewInventoryHandler creates an inventory handler
func NewInventoryHandler(query *appinventory.QueryService) *InventoryHandler {
	return &InventoryHandler{query: query}
}

// RegisterRoutes registers inventory read routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/inventory", h.List)
	rg.GET("/inventory/:id", h.Get)
	rg.GET("/history", h.ListHistory)
}

// List returns the tenant's ledger rows
// GET /api/v1/inventory
func (h *InventoryHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, dto.ErrCodeUnauthorized, "Tenant identification required")
		return
	}

	req := dto.InventoryListRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := toFilter(req.ListRequest)
	if req.Category != "" {
		filter.Filters["category"] = req.Category
	}
	if req.Label != "" {
		filter.Filters["label"] = req.Label
	}
	if req.BelowThreshold {
		filter.Filters["below_threshold"] = true
	}

	records, err := h.query.ListRecords(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]dto.InventoryRecordResponse, 0, len(records))
	for i := range records {
		resp = append(resp, dto.NewInventoryRecordResponse(&records[i]))
	}
	h.Success(c, resp)
}

// Get returns one ledger row
// GET /api/v1/inventory/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, dto.ErrCodeUnauthorized, "Tenant identification required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record id")
		return
	}

	record, err := h.query.GetRecord(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewInventoryRecordResponse(record))
}

// ListHistory returns the tenant's audit entries
// GET /api/v1/history
func (h *InventoryHandler) ListHistory(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, dto.ErrCodeUnauthorized, "Tenant identification required")
		return
	}

	req := dto.HistoryListRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := toFilter(req.ListRequest)
	if req.ChangeType != "" {
		filter.Filters["change_type"] = req.ChangeType
	}
	if req.Source != "" {
		filter.Filters["source"] = req.Source
	}
	if req.ItemID != "" {
		filter.Filters["item_id"] = req.ItemID
	}

	entries, err := h.query.ListHistory(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]dto.HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, dto.NewHistoryEntryResponse(&entries[i]))
	}
	h.Success(c, resp)
}

func toFilter(req dto.ListRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	return filter
}
