package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/shared"
	"github.com/stocksync/backend/internal/domain/tenant"
	"github.com/stocksync/backend/internal/infrastructure/platform"
	"github.com/stocksync/backend/internal/infrastructure/vault"
)

// SubscriptionAPI is the provider-side webhook subscription surface.
// The Shopify adapter implements it today; a Square implementation can slot
// in without touching this service.
type SubscriptionAPI interface {
	RegisterWebhook(ctx context.Context, creds integration.Credentials, topic, address string) (*platform.ShopifyWebhookSubscription, error)
	ListWebhooks(ctx context.Context, creds integration.Credentials) ([]platform.ShopifyWebhookSubscription, error)
	DeleteWebhook(ctx context.Context, creds integration.Credentials, id int64) error
}

// SubscriptionRow is one scope registration result
type SubscriptionRow struct {
	Scope  string `json:"scope"`
	Status string `json:"status"`
	ID     int64  `json:"id,omitempty"`
}

// defaultSubscriptionScopes are the topics registered when the caller does
// not name any; they mirror the ingestion allow-list
var defaultSubscriptionScopes = []string{
	"products/create",
	"products/update",
	"products/delete",
	"inventory_levels/update",
}

// SubscriptionService manages webhook subscriptions on the provider side
type SubscriptionService struct {
	tenants tenant.Repository
	vault   *vault.Vault
	api     SubscriptionAPI
	logger  *zap.Logger
}

// NewSubscriptionService creates a subscription management service
func NewSubscriptionService(tenants tenant.Repository, v *vault.Vault, api SubscriptionAPI, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		tenants: tenants,
		vault:   v,
		api:     api,
		logger:  logger,
	}
}

// Register subscribes the destination address to the given scopes for one
// tenant. Per-scope failures are reported in the row status; one scope
// failing does not abort the rest.
func (s *SubscriptionService) Register(ctx context.Context, tenantID uuid.UUID, address string, scopes []string) ([]SubscriptionRow, error) {
	creds, err := s.credentials(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if address == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Destination address is required")
	}
	if len(scopes) == 0 {
		scopes = defaultSubscriptionScopes
	}

	rows := make([]SubscriptionRow, 0, len(scopes))
	for _, scope := range scopes {
		sub, err := s.api.RegisterWebhook(ctx, creds, scope, address)
		if err != nil {
			s.logger.Warn("webhook registration failed",
				zap.String("tenant_id", tenantID.String()),
				zap.String("scope", scope),
				zap.Error(err),
			)
			rows = append(rows, SubscriptionRow{Scope: scope, Status: "failed"})
			continue
		}
		rows = append(rows, SubscriptionRow{Scope: scope, Status: "registered", ID: sub.ID})
	}
	return rows, nil
}

// List returns the tenant's current subscriptions
func (s *SubscriptionService) List(ctx context.Context, tenantID uuid.UUID) ([]SubscriptionRow, error) {
	creds, err := s.credentials(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	subs, err := s.api.ListWebhooks(ctx, creds)
	if err != nil {
		return nil, err
	}

	rows := make([]SubscriptionRow, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, SubscriptionRow{Scope: sub.Topic, Status: "active", ID: sub.ID})
	}
	return rows, nil
}

// Delete removes one subscription by provider-side id
func (s *SubscriptionService) Delete(ctx context.Context, tenantID uuid.UUID, id int64) error {
	creds, err := s.credentials(ctx, tenantID)
	if err != nil {
		return err
	}
	return s.api.DeleteWebhook(ctx, creds, id)
}

func (s *SubscriptionService) credentials(ctx context.Context, tenantID uuid.UUID) (integration.Credentials, error) {
	t, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return integration.Credentials{}, shared.NewDomainError("NOT_FOUND", "Tenant not found")
		}
		return integration.Credentials{}, err
	}
	if !t.HasShopifyCredentials() {
		return integration.Credentials{}, fmt.Errorf("%w: shopify is not connected for this tenant", integration.ErrPlatformNotConfigured)
	}

	token, err := s.vault.DecryptToken(t.ShopifyAccessToken)
	if err != nil {
		return integration.Credentials{}, fmt.Errorf("failed to decrypt shopify credentials: %w", err)
	}
	return integration.Credentials{AccessToken: token, StoreDomain: t.ShopDomain}, nil
}
