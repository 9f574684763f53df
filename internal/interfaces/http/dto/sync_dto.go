package dto

import (
	"time"

	"github.com/stocksync/backend/internal/domain/integration"
)

// SyncItemRequest is one inbound catalog item in a direct sync request
type SyncItemRequest struct {
	// Name is validated by the reconciliation engine so a bad item fails
	// individually instead of rejecting the whole batch
	Name              string     `json:"name"`
	SKU               string     `json:"sku"`
	Quantity          int64      `json:"quantity"`
	ReorderThreshold  int64      `json:"reorder_threshold"`
	InvoiceNumber     string     `json:"invoice_number"`
	ExpirationDate    *time.Time `json:"expiration_date"`
	Category          string     `json:"category"`
	Label             string     `json:"label"`
	ProviderProductID string     `json:"provider_product_id"`
	ProviderVariantID string     `json:"provider_variant_id"`
}

// ToExternalItem converts the request item to the canonical shape
func (r *SyncItemRequest) ToExternalItem() integration.ExternalItem {
	return integration.ExternalItem{
		Name:              r.Name,
		SKU:               r.SKU,
		Quantity:          r.Quantity,
		ReorderThreshold:  r.ReorderThreshold,
		InvoiceNumber:     r.InvoiceNumber,
		ExpirationDate:    r.ExpirationDate,
		Category:          r.Category,
		Label:             r.Label,
		ProviderProductID: r.ProviderProductID,
		ProviderVariantID: r.ProviderVariantID,
	}
}

// SyncRequest is a direct batch sync of caller-supplied items
type SyncRequest struct {
	Source         string            `json:"source"`
	Items          []SyncItemRequest `json:"items" binding:"required,dive"`
	EnableLabeling bool              `json:"enable_labeling"`
}

// PlatformSyncRequest is a credentialed pull sync against a connected platform
type PlatformSyncRequest struct {
	EnableLabeling bool `json:"enable_labeling"`
}

// ImportAPIRequest pulls a catalog from an arbitrary JSON API
type ImportAPIRequest struct {
	Source         string            `json:"source"`
	APIURL         string            `json:"api_url" binding:"required,url"`
	APIKey         string            `json:"api_key"`
	ItemsPath      string            `json:"items_path"`
	FieldMapping   map[string]string `json:"field_mapping"`
	EnableLabeling bool              `json:"enable_labeling"`
}

// SyncResponse reports the reconciliation outcome of a batch
type SyncResponse struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
	Summary string   `json:"summary"`
}

// PlatformSyncResponse adds the upstream item count to the sync outcome
type PlatformSyncResponse struct {
	SyncResponse
	Imported int `json:"imported"`
}

// SubscriptionRequest registers webhook scopes against a destination address
type SubscriptionRequest struct {
	Address string   `json:"address" binding:"required,url"`
	Scopes  []string `json:"scopes"`
}

// SubscriptionDeleteRequest removes one provider-side subscription
type SubscriptionDeleteRequest struct {
	ID int64 `json:"id" binding:"required"`
}
