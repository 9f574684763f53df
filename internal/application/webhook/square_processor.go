package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	syncapp "github.com/stocksync/backend/internal/application/sync"
	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/inventory"
	"github.com/stocksync/backend/internal/domain/shared"
	"github.com/stocksync/backend/internal/domain/tenant"
	"github.com/stocksync/backend/internal/infrastructure/config"
	"github.com/stocksync/backend/internal/infrastructure/vault"
)

// squareScopes is the allow-list of Square event types
var squareScopes = map[string]bool{
	"catalog.version.updated": true,
	"inventory.count.updated": true,
	"catalog.object.deleted":  true,
}

// squareDeleteScopes take the delete path
var squareDeleteScopes = map[string]bool{
	"catalog.object.deleted": true,
}

// squareEvent is the envelope Square posts to webhook destinations
type squareEvent struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Data    struct {
		ID     string `json:"id"`
		Object struct {
			CatalogObjectID string `json:"catalog_object_id"`
			InventoryCounts []struct {
				CatalogObjectID string `json:"catalog_object_id"`
			} `json:"inventory_counts"`
			DeletedObjectIDs []string `json:"deleted_object_ids"`
		} `json:"object"`
	} `json:"data"`
}

// SquareProcessor runs the delivery pipeline for Square webhooks. Square
// deliveries carry no store-domain equivalent, so tenant resolution relies on
// the operator-configured default tenant.
type SquareProcessor struct {
	secret          string
	defaultTenantID string
	dedupTTL        time.Duration

	tenants   tenant.Repository
	records   inventory.RecordRepository
	reconcile *syncapp.ReconcileService
	adapter   integration.ProviderAdapter
	vault     *vault.Vault
	dedup     shared.IdempotencyStore
	logger    *zap.Logger
}

// NewSquareProcessor creates the Square webhook processor
func NewSquareProcessor(
	cfg config.WebhookConfig,
	tenants tenant.Repository,
	records inventory.RecordRepository,
	reconcile *syncapp.ReconcileService,
	adapter integration.ProviderAdapter,
	v *vault.Vault,
	dedup shared.IdempotencyStore,
	logger *zap.Logger,
) *SquareProcessor {
	return &SquareProcessor{
		secret:          cfg.SquareSecret,
		defaultTenantID: cfg.DefaultTenantID,
		dedupTTL:        cfg.DedupTTL,
		tenants:         tenants,
		records:         records,
		reconcile:       reconcile,
		adapter:         adapter,
		vault:           v,
		dedup:           dedup,
		logger:          logger,
	}
}

// Process runs one Square delivery through the pipeline
func (p *SquareProcessor) Process(ctx context.Context, delivery Delivery) (*Outcome, error) {
	if err := p.verify(delivery); err != nil {
		return nil, err
	}

	var event squareEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		return nil, fmt.Errorf("%w: malformed event payload: %v", integration.ErrPlatformInvalidResponse, err)
	}

	scope := delivery.Scope
	if scope == "" {
		scope = event.Type
	}
	if !squareScopes[scope] {
		p.logger.Debug("square event outside allow-list, ignoring",
			zap.String("type", scope),
		)
		return &Outcome{Status: StatusIgnored, Message: "event type not handled"}, nil
	}

	t, err := p.resolveTenant(ctx)
	if err != nil {
		return nil, err
	}

	deliveryID := delivery.DeliveryID
	if deliveryID == "" {
		deliveryID = event.EventID
	}
	if duplicate := p.isDuplicate(ctx, deliveryID); duplicate {
		return &Outcome{Status: StatusDuplicate, Message: "delivery already processed"}, nil
	}

	if squareDeleteScopes[scope] {
		return p.deletePath(ctx, t, &event)
	}
	return p.upsertPath(ctx, t, scope, &event)
}

func (p *SquareProcessor) verify(delivery Delivery) error {
	if p.secret == "" {
		p.logger.Warn("square webhook secret not configured, skipping signature verification")
		return nil
	}
	if delivery.Signature == "" || !verifySignature(p.secret, delivery.Body, delivery.Signature) {
		return integration.ErrInvalidSignature
	}
	return nil
}

func (p *SquareProcessor) resolveTenant(ctx context.Context) (*tenant.Tenant, error) {
	if p.defaultTenantID == "" {
		return nil, integration.ErrTenantUnresolved
	}
	id, err := uuid.Parse(p.defaultTenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: default tenant id is malformed", integration.ErrTenantUnresolved)
	}
	t, err := p.tenants.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, integration.ErrTenantUnresolved
		}
		return nil, err
	}
	return t, nil
}

func (p *SquareProcessor) isDuplicate(ctx context.Context, deliveryID string) bool {
	if deliveryID == "" {
		return false
	}
	fresh, err := p.dedup.MarkProcessed(ctx, "square:"+deliveryID, p.dedupTTL)
	if err != nil {
		p.logger.Warn("dedup store failed, processing delivery anyway",
			zap.String("delivery_id", deliveryID),
			zap.Error(err),
		)
		return false
	}
	return !fresh
}

// deletePath removes ledger rows for every deleted catalog object id
func (p *SquareProcessor) deletePath(ctx context.Context, t *tenant.Tenant, event *squareEvent) (*Outcome, error) {
	objectIDs := event.Data.Object.DeletedObjectIDs
	if len(objectIDs) == 0 && event.Data.ID != "" {
		objectIDs = []string{event.Data.ID}
	}

	var removed int64
	for _, objectID := range objectIDs {
		count, err := p.records.DeleteByProviderProduct(ctx, t.ID, objectID, "")
		if err != nil {
			return nil, err
		}
		removed += count
	}

	p.logger.Info("square delete webhook processed",
		zap.String("tenant_id", t.ID.String()),
		zap.Int64("removed", removed),
	)

	return &Outcome{
		Status:  StatusDeleted,
		Removed: removed,
		Message: fmt.Sprintf("removed %d record(s)", removed),
	}, nil
}

// upsertPath fetches current state for the referenced catalog object and
// reconciles. Square events never carry full item state, so every upsert goes
// through FetchEntity.
func (p *SquareProcessor) upsertPath(ctx context.Context, t *tenant.Tenant, scope string, event *squareEvent) (*Outcome, error) {
	objectID := event.Data.Object.CatalogObjectID
	if objectID == "" && len(event.Data.Object.InventoryCounts) > 0 {
		objectID = event.Data.Object.InventoryCounts[0].CatalogObjectID
	}
	if objectID == "" {
		objectID = event.Data.ID
	}
	if objectID == "" {
		p.logger.Debug("square event without catalog object id, nothing to reconcile",
			zap.String("type", scope),
		)
		return &Outcome{Status: StatusProcessed, Message: "no catalog object referenced"}, nil
	}

	if !t.HasSquareCredentials() {
		return nil, fmt.Errorf("%w: square is not connected for this tenant", integration.ErrPlatformNotConfigured)
	}
	token, err := p.vault.DecryptToken(t.SquareAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt square credentials: %w", err)
	}

	creds := integration.Credentials{AccessToken: token, LocationID: t.SquareLocationID}
	items, err := p.adapter.FetchEntity(ctx, creds, objectID, "")
	if err != nil {
		return nil, err
	}

	result, err := p.reconcile.Reconcile(ctx, t.ID, integration.PlatformCodeSquare.SourceName(), items, false)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Status:  StatusProcessed,
		Result:  result,
		Summary: result.Summary(),
	}, nil
}
