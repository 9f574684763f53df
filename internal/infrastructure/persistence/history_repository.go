package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocksync/backend/internal/domain/inventory"
	"github.com/stocksync/backend/internal/domain/shared"
)

// GormHistoryRepository implements inventory.HistoryRepository using GORM
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append inserts a new history entry
func (r *GormHistoryRepository) Append(ctx context.Context, entry *inventory.HistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// RecentEquivalentExists reports whether an entry with the same tenant, item,
// resulting quantity, and source was appended at or after since. Rapid
// redeliveries land on the same resulting quantity, so an equivalent recent
// row means the change is already recorded.
func (r *GormHistoryRepository) RecentEquivalentExists(ctx context.Context, tenantID, itemID uuid.UUID, newQuantity int64, source string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&inventory.HistoryEntry{}).
		Where("tenant_id = ? AND item_id = ? AND new_quantity = ? AND source = ? AND created_at >= ?",
			tenantID, itemID, newQuantity, source, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListForTenant lists history entries for a tenant matching the filter
func (r *GormHistoryRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.HistoryEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&inventory.HistoryEntry{}).
		Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("item_name ILIKE ? OR sku ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "change_type":
			query = query.Where("change_type = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		case "item_id":
			query = query.Where("item_id = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, historySortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var entries []inventory.HistoryEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var _ inventory.HistoryRepository = (*GormHistoryRepository)(nil)
