// Package inventory exposes read access to the ledger and its audit trail.
// All mutation flows through the sync and webhook pipelines; this package is
// queries only.
package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/inventory"
	"github.com/stocksync/backend/internal/domain/shared"
)

// QueryService serves inventory and history listings for one tenant
type QueryService struct {
	records inventory.RecordRepository
	history inventory.HistoryRepository
	logger  *zap.Logger
}

// NewQueryService creates an inventory query service
func NewQueryService(records inventory.RecordRepository, history inventory.HistoryRepository, logger *zap.Logger) *QueryService {
	return &QueryService{
		records: records,
		history: history,
		logger:  logger,
	}
}

// ListRecords returns the tenant's ledger rows matching the filter
func (s *QueryService) ListRecords(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	return s.records.FindAllForTenant(ctx, tenantID, filter)
}

// GetRecord returns one ledger row by id
func (s *QueryService) GetRecord(ctx context.Context, tenantID, id uuid.UUID) (*inventory.InventoryRecord, error) {
	return s.records.FindByID(ctx, tenantID, id)
}

// ListHistory returns the tenant's audit entries matching the filter
func (s *QueryService) ListHistory(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.HistoryEntry, error) {
	return s.history.ListForTenant(ctx, tenantID, filter)
}
