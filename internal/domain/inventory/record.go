package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stocksync/backend/internal/domain/shared"
)

// InventoryRecord is one tracked stock-keeping entity within a tenant.
// It is the canonical ledger row that external catalog snapshots and webhook
// deliveries are reconciled against. Identity within a tenant is resolved
// first by SKU (when present and non-empty), then by exact name match. SKU is
// the preferred matching key but is not a hard unique constraint.
type InventoryRecord struct {
	shared.TenantEntity
	Name             string `gorm:"not null;index:idx_inventory_records_tenant_name"`
	SKU              string `gorm:"index:idx_inventory_records_tenant_sku"`
	Quantity         int64  `gorm:"not null;default:0"`
	ReorderThreshold int64  `gorm:"not null;default:0"`
	Category         string
	Label            string
	InvoiceNumber    string
	ExpirationDate   *time.Time

	// Provider linkage, set when the record was first sighted through a
	// platform adapter or webhook. Used by deletion-scoped webhooks.
	ProviderProductID string `gorm:"index:idx_inventory_records_provider,priority:2"`
	ProviderVariantID string `gorm:"index:idx_inventory_records_provider,priority:3"`
}

// TableName returns the table name for GORM
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// NewInventoryRecord creates a new ledger row for a first sighting
func NewInventoryRecord(tenantID uuid.UUID, name string) (*InventoryRecord, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Item name cannot be empty")
	}
	return &InventoryRecord{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         strings.TrimSpace(name),
	}, nil
}

// HasSKU reports whether the record carries a usable SKU
func (r *InventoryRecord) HasSKU() bool {
	return strings.TrimSpace(r.SKU) != ""
}

// ApplyQuantity sets a new quantity and returns the signed delta against the
// previous value. Quantities are integers by convention; negative values are
// not rejected at this layer.
func (r *InventoryRecord) ApplyQuantity(newQuantity int64) int64 {
	delta := newQuantity - r.Quantity
	r.Quantity = newQuantity
	r.UpdatedAt = time.Now()
	return delta
}

// BelowThreshold reports whether the record is at or under its reorder point
func (r *InventoryRecord) BelowThreshold() bool {
	return r.ReorderThreshold > 0 && r.Quantity <= r.ReorderThreshold
}
