package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	syncapp "github.com/stocksync/backend/internal/application/sync"
	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/inventory"
	"github.com/stocksync/backend/internal/domain/shared"
	"github.com/stocksync/backend/internal/domain/tenant"
	"github.com/stocksync/backend/internal/infrastructure/config"
	"github.com/stocksync/backend/internal/infrastructure/platform"
	"github.com/stocksync/backend/internal/infrastructure/vault"
)

// shopifyScopes is the allow-list of topics this pipeline processes. Topics
// outside it are acknowledged and ignored so unrelated platform events never
// trigger processing or redelivery storms.
var shopifyScopes = map[string]bool{
	"products/create":         true,
	"products/update":         true,
	"products/delete":         true,
	"inventory_levels/update": true,
	"product_variants/create": true,
	"product_variants/update": true,
	"product_variants/delete": true,
}

// shopifyDeleteScopes take the delete path instead of upserting
var shopifyDeleteScopes = map[string]bool{
	"products/delete":         true,
	"product_variants/delete": true,
}

// ShopifyProcessor runs the delivery pipeline for Shopify webhooks
type ShopifyProcessor struct {
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

// NewShopifyProcessor creates the Shopify webhook processor
func NewShopifyProcessor(
	cfg config.WebhookConfig,
	tenants tenant.Repository,
	records inventory.RecordRepository,
	reconcile *syncapp.ReconcileService,
	adapter integration.ProviderAdapter,
	v *vault.Vault,
	dedup shared.IdempotencyStore,
	logger *zap.Logger,
) *ShopifyProcessor {
	return &ShopifyProcessor{
		secret:          cfg.ShopifySecret,
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

// shopifyInventoryLevel is the identifier-only payload of an inventory event
type shopifyInventoryLevel struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int64 `json:"available"`
	ProductID       int64 `json:"product_id"`
	VariantID       int64 `json:"variant_id"`
}

// Process runs one Shopify delivery through the pipeline
func (p *ShopifyProcessor) Process(ctx context.Context, delivery Delivery) (*Outcome, error) {
	if err := p.verify(delivery); err != nil {
		return nil, err
	}

	if !shopifyScopes[delivery.Scope] {
		p.logger.Debug("shopify topic outside allow-list, ignoring",
			zap.String("topic", delivery.Scope),
		)
		return &Outcome{Status: StatusIgnored, Message: "topic not handled"}, nil
	}

	t, err := p.resolveTenant(ctx, delivery)
	if err != nil {
		return nil, err
	}

	if duplicate, err := p.isDuplicate(ctx, delivery); err == nil && duplicate {
		return &Outcome{Status: StatusDuplicate, Message: "delivery already processed"}, nil
	}

	if shopifyDeleteScopes[delivery.Scope] {
		return p.deletePath(ctx, t, delivery)
	}
	return p.upsertPath(ctx, t, delivery)
}

// verify checks the HMAC signature. A missing secret skips verification with
// a warning; this is an insecure fallback for local setups, not a deployment
// mode.
func (p *ShopifyProcessor) verify(delivery Delivery) error {
	if p.secret == "" {
		p.logger.Warn("shopify webhook secret not configured, skipping signature verification")
		return nil
	}
	if delivery.Signature == "" || !verifySignature(p.secret, delivery.Body, delivery.Signature) {
		return integration.ErrInvalidSignature
	}
	return nil
}

// resolveTenant finds the tenant for a delivery: shop-domain match first,
// then the operator-configured default.
func (p *ShopifyProcessor) resolveTenant(ctx context.Context, delivery Delivery) (*tenant.Tenant, error) {
	if delivery.ShopDomain != "" {
		t, err := p.tenants.FindByShopDomain(ctx, delivery.ShopDomain)
		if err == nil {
			return t, nil
		}
		if err != shared.ErrNotFound {
			return nil, err
		}
	}

	if p.defaultTenantID != "" {
		id, err := uuid.Parse(p.defaultTenantID)
		if err != nil {
			return nil, fmt.Errorf("%w: default tenant id is malformed", integration.ErrTenantUnresolved)
		}
		t, err := p.tenants.FindByID(ctx, id)
		if err == nil {
			return t, nil
		}
		if err != shared.ErrNotFound {
			return nil, err
		}
	}

	return nil, integration.ErrTenantUnresolved
}

// isDuplicate claims the delivery id in the dedup store. Store failures are
// logged and treated as first sight: processing twice beats dropping a
// delivery.
func (p *ShopifyProcessor) isDuplicate(ctx context.Context, delivery Delivery) (bool, error) {
	if delivery.DeliveryID == "" {
		return false, nil
	}
	fresh, err := p.dedup.MarkProcessed(ctx, "shopify:"+delivery.DeliveryID, p.dedupTTL)
	if err != nil {
		p.logger.Warn("dedup store failed, processing delivery anyway",
			zap.String("delivery_id", delivery.DeliveryID),
			zap.Error(err),
		)
		return false, nil
	}
	return !fresh, nil
}

// deletePath removes ledger rows linked to the deleted platform entity.
// No history entries are written for deletions.
func (p *ShopifyProcessor) deletePath(ctx context.Context, t *tenant.Tenant, delivery Delivery) (*Outcome, error) {
	var payload struct {
		ID        int64 `json:"id"`
		ProductID int64 `json:"product_id"`
	}
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed delete payload: %v", integration.ErrPlatformInvalidResponse, err)
	}

	productID := strconv.FormatInt(payload.ID, 10)
	variantID := ""
	if delivery.Scope == "product_variants/delete" {
		productID = strconv.FormatInt(payload.ProductID, 10)
		variantID = strconv.FormatInt(payload.ID, 10)
	}

	removed, err := p.records.DeleteByProviderProduct(ctx, t.ID, productID, variantID)
	if err != nil {
		return nil, err
	}

	p.logger.Info("shopify delete webhook processed",
		zap.String("tenant_id", t.ID.String()),
		zap.String("product_id", productID),
		zap.Int64("removed", removed),
	)

	return &Outcome{
		Status:  StatusDeleted,
		Removed: removed,
		Message: fmt.Sprintf("removed %d record(s)", removed),
	}, nil
}

// upsertPath normalizes the payload into canonical items and reconciles.
// Product payloads carry full state; inventory level events carry only an
// identifier and require a fetch first.
func (p *ShopifyProcessor) upsertPath(ctx context.Context, t *tenant.Tenant, delivery Delivery) (*Outcome, error) {
	var items []integration.ExternalItem

	if delivery.Scope == "inventory_levels/update" {
		fetched, err := p.fetchCurrentState(ctx, t, delivery)
		if err != nil {
			return nil, err
		}
		items = fetched
	} else {
		var product platform.ShopifyProduct
		if err := json.Unmarshal(delivery.Body, &product); err != nil {
			return nil, fmt.Errorf("%w: malformed product payload: %v", integration.ErrPlatformInvalidResponse, err)
		}
		items = platform.NormalizeShopifyProduct(&product)
	}

	result, err := p.reconcile.Reconcile(ctx, t.ID, integration.PlatformCodeShopify.SourceName(), items, false)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Status:  StatusProcessed,
		Result:  result,
		Summary: result.Summary(),
	}, nil
}

// fetchCurrentState pulls current product state when the payload alone cannot
// determine the new quantity reliably
func (p *ShopifyProcessor) fetchCurrentState(ctx context.Context, t *tenant.Tenant, delivery Delivery) ([]integration.ExternalItem, error) {
	var level shopifyInventoryLevel
	if err := json.Unmarshal(delivery.Body, &level); err != nil {
		return nil, fmt.Errorf("%w: malformed inventory payload: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if level.ProductID == 0 {
		// Inventory item ids do not map to products without an extra lookup;
		// acknowledge with nothing to do rather than guessing.
		p.logger.Debug("inventory level event without product linkage, skipping")
		return nil, nil
	}

	if !t.HasShopifyCredentials() {
		return nil, fmt.Errorf("%w: shopify is not connected for this tenant", integration.ErrPlatformNotConfigured)
	}
	token, err := p.vault.DecryptToken(t.ShopifyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt shopify credentials: %w", err)
	}

	creds := integration.Credentials{AccessToken: token, StoreDomain: t.ShopDomain}
	variantID := ""
	if level.VariantID != 0 {
		variantID = strconv.FormatInt(level.VariantID, 10)
	}
	return p.adapter.FetchEntity(ctx, creds, strconv.FormatInt(level.ProductID, 10), variantID)
}
