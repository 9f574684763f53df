package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocksync/backend/internal/domain/inventory"
	"github.com/stocksync/backend/internal/domain/shared"
)

// GormRecordRepository implements inventory.RecordRepository using GORM
type GormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository creates a new GormRecordRepository
func NewGormRecordRepository(db *gorm.DB) *GormRecordRepository {
	return &GormRecordRepository{db: db}
}

// FindByID finds a record by ID within a tenant
func (r *GormRecordRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.InventoryRecord, error) {
	var record inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindBySKU finds a record by tenant and exact SKU
func (r *GormRecordRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*inventory.InventoryRecord, error) {
	if sku == "" {
		return nil, shared.ErrNotFound
	}
	var record inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByName finds a record by tenant and exact display name
func (r *GormRecordRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*inventory.InventoryRecord, error) {
	if name == "" {
		return nil, shared.ErrNotFound
	}
	var record inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByProviderProduct finds records linked to a platform product, optionally
// narrowed to one variant
func (r *GormRecordRepository) FindByProviderProduct(ctx context.Context, tenantID uuid.UUID, productID, variantID string) ([]inventory.InventoryRecord, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND provider_product_id = ?", tenantID, productID)
	if variantID != "" {
		query = query.Where("provider_variant_id = ?", variantID)
	}

	var records []inventory.InventoryRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindAllForTenant finds all records for a tenant matching the filter
func (r *GormRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	var records []inventory.InventoryRecord
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.InventoryRecord{}).Where("tenant_id = ?", tenantID), filter)

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Create inserts a new record
func (r *GormRecordRepository) Create(ctx context.Context, record *inventory.InventoryRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Save updates an existing record
func (r *GormRecordRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Delete removes a record by ID within a tenant
func (r *GormRecordRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&inventory.InventoryRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByProviderProduct removes rows linked to a platform product and
// returns the removed count. Zero rows is not an error: a delete webhook can
// reference a product that was never synced.
func (r *GormRecordRepository) DeleteByProviderProduct(ctx context.Context, tenantID uuid.UUID, productID, variantID string) (int64, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND provider_product_id = ?", tenantID, productID)
	if variantID != "" {
		query = query.Where("provider_variant_id = ?", variantID)
	}

	result := query.Delete(&inventory.InventoryRecord{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// applyFilter applies search, pagination, and ordering
func (r *GormRecordRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ? OR category ILIKE ?", pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "label":
			query = query.Where("label = ?", value)
		case "below_threshold":
			if value == true {
				query = query.Where("reorder_threshold > 0 AND quantity < reorder_threshold")
			}
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, recordSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

var _ inventory.RecordRepository = (*GormRecordRepository)(nil)
