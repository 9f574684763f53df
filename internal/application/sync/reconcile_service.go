// Package sync implements pull-based reconciliation of external catalog
// snapshots against the inventory ledger.
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/inventory"
)

// ReconcileResult aggregates the outcome of one reconciliation batch
type ReconcileResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Summary renders the human-readable one-liner for UI layers
func (r *ReconcileResult) Summary() string {
	return fmt.Sprintf("Created: %d, Updated: %d, Failed: %d", r.Created, r.Updated, r.Failed)
}

// ReconcileService reconciles external item snapshots against the ledger.
// Items are processed with per-item failure isolation: one malformed item
// never aborts the batch.
type ReconcileService struct {
	records  inventory.RecordRepository
	history  inventory.HistoryRepository
	resolver *inventory.Resolver
	labeler  integration.Labeler
	logger   *zap.Logger

	// dedupWindow suppresses equivalent history entries written within it
	dedupWindow time.Duration
	// workers bounds batch fan-out; 1 means sequential processing
	workers int
	// changeType stamps appended history entries; push-based callers use
	// the webhook type through their own service instance
	changeType inventory.ChangeType
}

// ReconcileOption configures a ReconcileService
type ReconcileOption func(*ReconcileService)

// WithDedupWindow overrides the history dedup window
func WithDedupWindow(window time.Duration) ReconcileOption {
	return func(s *ReconcileService) {
		if window > 0 {
			s.dedupWindow = window
		}
	}
}

// WithWorkers sets the batch fan-out. Per-item isolation and
// order-independent aggregation hold regardless of the value.
func WithWorkers(workers int) ReconcileOption {
	return func(s *ReconcileService) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// WithChangeType sets the change type stamped on history entries
func WithChangeType(changeType inventory.ChangeType) ReconcileOption {
	return func(s *ReconcileService) {
		if changeType.IsValid() {
			s.changeType = changeType
		}
	}
}

// NewReconcileService creates a reconciliation service
func NewReconcileService(
	records inventory.RecordRepository,
	history inventory.HistoryRepository,
	labeler integration.Labeler,
	logger *zap.Logger,
	opts ...ReconcileOption,
) *ReconcileService {
	s := &ReconcileService{
		records:     records,
		history:     history,
		resolver:    inventory.NewResolver(records),
		labeler:     labeler,
		logger:      logger,
		dedupWindow: 60 * time.Second,
		workers:     1,
		changeType:  inventory.ChangeTypeSync,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// itemOutcome is the per-item result folded into the batch aggregate
type itemOutcome struct {
	created bool
	updated bool
	errMsg  string
}

// Reconcile processes a batch of external items for a tenant. The returned
// error covers only wholesale failures; per-item failures are folded into the
// result counters and error strings.
func (s *ReconcileService) Reconcile(ctx context.Context, tenantID uuid.UUID, source string, items []integration.ExternalItem, enableLabeling bool) (*ReconcileResult, error) {
	result := &ReconcileResult{}
	if len(items) == 0 {
		return result, nil
	}

	outcomes := make([]itemOutcome, len(items))
	if s.workers <= 1 || len(items) == 1 {
		for i := range items {
			outcomes[i] = s.reconcileItem(ctx, tenantID, source, &items[i], enableLabeling)
		}
	} else {
		s.fanOut(ctx, tenantID, source, items, enableLabeling, outcomes)
	}

	for _, outcome := range outcomes {
		switch {
		case outcome.errMsg != "":
			result.Failed++
			result.Errors = append(result.Errors, outcome.errMsg)
		case outcome.created:
			result.Created++
		case outcome.updated:
			result.Updated++
		}
	}

	s.logger.Info("reconciliation finished",
		zap.String("tenant_id", tenantID.String()),
		zap.String("source", source),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

// fanOut processes items on a bounded worker pool. Outcomes land in their
// item's slot, so aggregation is independent of completion order.
func (s *ReconcileService) fanOut(ctx context.Context, tenantID uuid.UUID, source string, items []integration.ExternalItem, enableLabeling bool, outcomes []itemOutcome) {
	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := s.workers
	if workers > len(items) {
		workers = len(items)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = s.reconcileItem(ctx, tenantID, source, &items[i], enableLabeling)
			}
		}()
	}

	for i := range items {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
}

// reconcileItem runs the per-item algorithm: validate, enrich, resolve
// identity, then update or create with a history entry on quantity change.
func (s *ReconcileService) reconcileItem(ctx context.Context, tenantID uuid.UUID, source string, item *integration.ExternalItem, enableLabeling bool) itemOutcome {
	if !item.HasName() {
		return itemOutcome{errMsg: fmt.Sprintf("%s: item name is missing", item.DisplayName())}
	}

	if enableLabeling && item.Category == "" {
		s.enrich(ctx, item)
	}

	match, err := s.resolver.Resolve(ctx, tenantID, item.SKU, item.Name)
	if err != nil {
		return itemOutcome{errMsg: fmt.Sprintf("%s: %v", item.DisplayName(), err)}
	}

	if match.Kind == inventory.NotFound {
		if err := s.createRecord(ctx, tenantID, source, item); err != nil {
			return itemOutcome{errMsg: fmt.Sprintf("%s: %v", item.DisplayName(), err)}
		}
		return itemOutcome{created: true}
	}

	if err := s.updateRecord(ctx, match.Record, source, item); err != nil {
		return itemOutcome{errMsg: fmt.Sprintf("%s: %v", item.DisplayName(), err)}
	}
	return itemOutcome{updated: true}
}

// enrich merges labeling collaborator output into the item. Failures and
// insufficient-data responses leave the item untouched.
func (s *ReconcileService) enrich(ctx context.Context, item *integration.ExternalItem) {
	labeled, err := s.labeler.Label(ctx, item.Name)
	if err != nil {
		s.logger.Warn("labeling failed, continuing without enrichment",
			zap.String("item", item.DisplayName()),
			zap.Error(err),
		)
		return
	}
	if labeled.Status != integration.LabelStatusOK {
		return
	}
	item.Category = labeled.Category
	item.Label = labeled.Label
}

func (s *ReconcileService) createRecord(ctx context.Context, tenantID uuid.UUID, source string, item *integration.ExternalItem) error {
	record, err := inventory.NewInventoryRecord(tenantID, item.Name)
	if err != nil {
		return err
	}
	record.SKU = item.SKU
	record.Quantity = item.Quantity
	record.ReorderThreshold = item.ReorderThreshold
	record.Category = item.Category
	record.Label = item.Label
	record.InvoiceNumber = item.InvoiceNumber
	record.ExpirationDate = item.ExpirationDate
	record.ProviderProductID = item.ProviderProductID
	record.ProviderVariantID = item.ProviderVariantID

	if err := s.records.Create(ctx, record); err != nil {
		return err
	}

	// Initial stock is audited only when there is any
	if item.Quantity > 0 {
		s.appendHistory(ctx, record, 0, source)
	}
	return nil
}

func (s *ReconcileService) updateRecord(ctx context.Context, record *inventory.InventoryRecord, source string, item *integration.ExternalItem) error {
	previous := record.Quantity
	delta := record.ApplyQuantity(item.Quantity)

	record.Name = item.Name
	if item.SKU != "" {
		record.SKU = item.SKU
	}
	if item.Category != "" {
		record.Category = item.Category
	}
	if item.Label != "" {
		record.Label = item.Label
	}
	if item.InvoiceNumber != "" {
		record.InvoiceNumber = item.InvoiceNumber
	}
	if item.ExpirationDate != nil {
		record.ExpirationDate = item.ExpirationDate
	}
	if item.ReorderThreshold > 0 {
		record.ReorderThreshold = item.ReorderThreshold
	}
	if item.ProviderProductID != "" {
		record.ProviderProductID = item.ProviderProductID
	}
	if item.ProviderVariantID != "" {
		record.ProviderVariantID = item.ProviderVariantID
	}

	if err := s.records.Save(ctx, record); err != nil {
		return err
	}

	if delta != 0 {
		s.appendHistory(ctx, record, previous, source)
	}
	return nil
}

// appendHistory writes an audit entry unless an equivalent one landed within
// the dedup window. History failures are logged, never surfaced: the quantity
// mutation already happened and must not be reported as failed.
func (s *ReconcileService) appendHistory(ctx context.Context, record *inventory.InventoryRecord, previous int64, source string) {
	since := time.Now().Add(-s.dedupWindow)
	exists, err := s.history.RecentEquivalentExists(ctx, record.TenantID, record.ID, record.Quantity, source, since)
	if err != nil {
		s.logger.Warn("history dedup check failed, appending anyway",
			zap.String("item_id", record.ID.String()),
			zap.Error(err),
		)
	}
	if exists {
		return
	}

	entry := inventory.NewHistoryEntry(record, previous, s.changeType, source)
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append history entry",
			zap.String("item_id", record.ID.String()),
			zap.Error(err),
		)
	}
}
