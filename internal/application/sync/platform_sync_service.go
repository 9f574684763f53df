package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/shared"
	"github.com/stocksync/backend/internal/domain/tenant"
	"github.com/stocksync/backend/internal/infrastructure/vault"
)

// PlatformSyncResult is a reconciliation result plus the pulled item count
type PlatformSyncResult struct {
	ReconcileResult
	Imported int `json:"imported"`
}

// PlatformSyncService runs credentialed catalog pulls: tenant credentials are
// decrypted server-side, the platform adapter fetches the catalog, and the
// snapshot is reconciled against the ledger.
type PlatformSyncService struct {
	tenants   tenant.Repository
	vault     *vault.Vault
	adapters  integration.AdapterRegistry
	reconcile *ReconcileService
	logger    *zap.Logger
}

// NewPlatformSyncService creates a platform sync service
func NewPlatformSyncService(
	tenants tenant.Repository,
	v *vault.Vault,
	adapters integration.AdapterRegistry,
	reconcile *ReconcileService,
	logger *zap.Logger,
) *PlatformSyncService {
	return &PlatformSyncService{
		tenants:   tenants,
		vault:     v,
		adapters:  adapters,
		reconcile: reconcile,
		logger:    logger,
	}
}

// Sync pulls the full catalog for one tenant-platform connection and
// reconciles it
func (s *PlatformSyncService) Sync(ctx context.Context, tenantID uuid.UUID, code integration.PlatformCode, enableLabeling bool) (*PlatformSyncResult, error) {
	t, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Tenant not found")
		}
		return nil, err
	}

	creds, err := s.credentialsFor(t, code)
	if err != nil {
		return nil, err
	}

	adapter, err := s.adapters.GetAdapter(code)
	if err != nil {
		return nil, err
	}

	items, err := adapter.FetchCatalog(ctx, creds)
	if err != nil {
		s.logger.Warn("catalog fetch failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("platform", code.String()),
			zap.Error(err),
		)
		return nil, err
	}

	result, err := s.reconcile.Reconcile(ctx, tenantID, code.SourceName(), items, enableLabeling)
	if err != nil {
		return nil, err
	}

	return &PlatformSyncResult{
		ReconcileResult: *result,
		Imported:        len(items),
	}, nil
}

// credentialsFor decrypts the tenant's secret material for one platform.
// A tenant without a configured connection gets a config error naming the
// platform, not a generic auth failure.
func (s *PlatformSyncService) credentialsFor(t *tenant.Tenant, code integration.PlatformCode) (integration.Credentials, error) {
	switch code {
	case integration.PlatformCodeShopify:
		if !t.HasShopifyCredentials() {
			return integration.Credentials{}, fmt.Errorf("%w: shopify is not connected for this tenant", integration.ErrPlatformNotConfigured)
		}
		token, err := s.vault.DecryptToken(t.ShopifyAccessToken)
		if err != nil {
			return integration.Credentials{}, fmt.Errorf("failed to decrypt shopify credentials: %w", err)
		}
		return integration.Credentials{
			AccessToken: token,
			StoreDomain: t.ShopDomain,
		}, nil

	case integration.PlatformCodeSquare:
		if !t.HasSquareCredentials() {
			return integration.Credentials{}, fmt.Errorf("%w: square is not connected for this tenant", integration.ErrPlatformNotConfigured)
		}
		token, err := s.vault.DecryptToken(t.SquareAccessToken)
		if err != nil {
			return integration.Credentials{}, fmt.Errorf("failed to decrypt square credentials: %w", err)
		}
		return integration.Credentials{
			AccessToken: token,
			LocationID:  t.SquareLocationID,
		}, nil

	default:
		return integration.Credentials{}, fmt.Errorf("%w: platform %s has no credentialed sync", integration.ErrPlatformNotConfigured, code)
	}
}
