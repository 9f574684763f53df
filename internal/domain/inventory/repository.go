package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stocksync/backend/internal/domain/shared"
)

// RecordRepository is the persistence port for the inventory ledger
type RecordRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*InventoryRecord, error)
	// FindBySKU finds a record by tenant and exact SKU.
	// Returns shared.ErrNotFound when no row matches.
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*InventoryRecord, error)
	// FindByName finds a record by tenant and exact display name
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*InventoryRecord, error)
	// FindByProviderProduct finds records linked to a platform product,
	// optionally narrowed to a single variant
	FindByProviderProduct(ctx context.Context, tenantID uuid.UUID, productID, variantID string) ([]InventoryRecord, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]InventoryRecord, error)
	Create(ctx context.Context, record *InventoryRecord) error
	Save(ctx context.Context, record *InventoryRecord) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// DeleteByProviderProduct removes rows linked to a platform product,
	// optionally narrowed to a single variant, and returns the removed count
	DeleteByProviderProduct(ctx context.Context, tenantID uuid.UUID, productID, variantID string) (int64, error)
}

// HistoryRepository is the persistence port for the append-only audit log
type HistoryRepository interface {
	Append(ctx context.Context, entry *HistoryEntry) error
	// RecentEquivalentExists reports whether an entry with the same tenant,
	// item, resulting quantity, and source was appended at or after since
	RecentEquivalentExists(ctx context.Context, tenantID, itemID uuid.UUID, newQuantity int64, source string, since time.Time) (bool, error)
	ListForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]HistoryEntry, error)
}
