package dto

import (
	"time"

	"github.com/stocksync/backend/internal/domain/inventory"
)

// InventoryRecordResponse is one ledger row on the wire
type InventoryRecordResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	SKU              string     `json:"sku,omitempty"`
	Quantity         int64      `json:"quantity"`
	ReorderThreshold int64      `json:"reorder_threshold,omitempty"`
	Category         string     `json:"category,omitempty"`
	Label            string     `json:"label,omitempty"`
	InvoiceNumber    string     `json:"invoice_number,omitempty"`
	ExpirationDate   *time.Time `json:"expiration_date,omitempty"`
	BelowThreshold   bool       `json:"below_threshold"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewInventoryRecordResponse converts a ledger row to its wire shape
func NewInventoryRecordResponse(r *inventory.InventoryRecord) InventoryRecordResponse {
	return InventoryRecordResponse{
		ID:               r.ID.String(),
		Name:             r.Name,
		SKU:              r.SKU,
		Quantity:         r.Quantity,
		ReorderThreshold: r.ReorderThreshold,
		Category:         r.Category,
		Label:            r.Label,
		InvoiceNumber:    r.InvoiceNumber,
		ExpirationDate:   r.ExpirationDate,
		BelowThreshold:   r.BelowThreshold(),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// HistoryEntryResponse is one audit row on the wire
type HistoryEntryResponse struct {
	ID               string    `json:"id"`
	ItemID           string    `json:"item_id"`
	ItemName         string    `json:"item_name"`
	SKU              string    `json:"sku,omitempty"`
	PreviousQuantity int64     `json:"previous_quantity"`
	NewQuantity      int64     `json:"new_quantity"`
	QuantityChange   int64     `json:"quantity_change"`
	ChangeType       string    `json:"change_type"`
	Source           string    `json:"source"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewHistoryEntryResponse converts an audit row to its wire shape
func NewHistoryEntryResponse(e *inventory.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:               e.ID.String(),
		ItemID:           e.ItemID.String(),
		ItemName:         e.ItemName,
		SKU:              e.SKU,
		PreviousQuantity: e.PreviousQuantity,
		NewQuantity:      e.NewQuantity,
		QuantityChange:   e.QuantityChange,
		ChangeType:       e.ChangeType.String(),
		Source:           e.Source,
		CreatedAt:        e.CreatedAt,
	}
}

// InventoryListRequest filters the inventory listing
type InventoryListRequest struct {
	ListRequest
	Category       string `form:"category"`
	Label          string `form:"label"`
	BelowThreshold bool   `form:"below_threshold"`
}

// HistoryListRequest filters the history listing
type HistoryListRequest struct {
	ListRequest
	ChangeType string `form:"change_type" binding:"omitempty,oneof=sync webhook manual"`
	Source     string `form:"source"`
	ItemID     string `form:"item_id" binding:"omitempty,uuid"`
}
