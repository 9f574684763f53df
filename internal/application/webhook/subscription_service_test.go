package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/shared"
	"github.com/stocksync/backend/internal/domain/tenant"
	"github.com/stocksync/backend/internal/infrastructure/config"
	"github.com/stocksync/backend/internal/infrastructure/platform"
	"github.com/stocksync/backend/internal/infrastructure/vault"
)

// MockSubscriptionAPI is a mock implementation of SubscriptionAPI
type MockSubscriptionAPI struct {
	mock.Mock
}

func (m *MockSubscriptionAPI) RegisterWebhook(ctx context.Context, creds integration.Credentials, topic, address string) (*platform.ShopifyWebhookSubscription, error) {
	args := m.Called(ctx, creds, topic, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.ShopifyWebhookSubscription), args.Error(1)
}

func (m *MockSubscriptionAPI) ListWebhooks(ctx context.Context, creds integration.Credentials) ([]platform.ShopifyWebhookSubscription, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]platform.ShopifyWebhookSubscription), args.Error(1)
}

func (m *MockSubscriptionAPI) DeleteWebhook(ctx context.Context, creds integration.Credentials, id int64) error {
	args := m.Called(ctx, creds, id)
	return args.Error(0)
}

type subscriptionFixture struct {
	service *SubscriptionService
	tenants *MockTenantRepository
	api     *MockSubscriptionAPI
	tenant  *tenant.Tenant
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()

	tenants := new(MockTenantRepository)
	api := new(MockSubscriptionAPI)
	logger := zap.NewNop()
	v := vault.New(config.VaultConfig{}, logger)

	shopTenant := &tenant.Tenant{
		BaseEntity:         shared.NewBaseEntity(),
		Name:               "Acme",
		ShopDomain:         "acme.myshopify.com",
		ShopifyAccessToken: "shpat_plain",
	}

	return &subscriptionFixture{
		service: NewSubscriptionService(tenants, v, api, logger),
		tenants: tenants,
		api:     api,
		tenant:  shopTenant,
	}
}

func TestSubscriptionService_Register(t *testing.T) {
	t.Run("registers the default scopes", func(t *testing.T) {
		f := newSubscriptionFixture(t)

		f.tenants.On("FindByID", mock.Anything, f.tenant.ID).Return(f.tenant, nil)
		for i, scope := range defaultSubscriptionScopes {
			f.api.On("RegisterWebhook", mock.Anything, mock.Anything, scope, "https://app.example.com/webhooks/shopify").
				Return(&platform.ShopifyWebhookSubscription{ID: int64(i + 1), Topic: scope}, nil)
		}

		rows, err := f.service.Register(context.Background(), f.tenant.ID, "https://app.example.com/webhooks/shopify", nil)

		require.NoError(t, err)
		require.Len(t, rows, len(defaultSubscriptionScopes))
		for _, row := range rows {
			assert.Equal(t, "registered", row.Status)
			assert.NotZero(t, row.ID)
		}
	})

	t.Run("one scope failing does not abort the rest", func(t *testing.T) {
		f := newSubscriptionFixture(t)

		f.tenants.On("FindByID", mock.Anything, f.tenant.ID).Return(f.tenant, nil)
		f.api.On("RegisterWebhook", mock.Anything, mock.Anything, "products/create", mock.Anything).
			Return(nil, errors.New("platform: webhook request failed"))
		f.api.On("RegisterWebhook", mock.Anything, mock.Anything, "products/delete", mock.Anything).
			Return(&platform.ShopifyWebhookSubscription{ID: 7, Topic: "products/delete"}, nil)

		rows, err := f.service.Register(context.Background(), f.tenant.ID, "https://app.example.com/hook",
			[]string{"products/create", "products/delete"})

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "failed", rows[0].Status)
		assert.Equal(t, "registered", rows[1].Status)
		assert.Equal(t, int64(7), rows[1].ID)
	})

	t.Run("empty address is rejected", func(t *testing.T) {
		f := newSubscriptionFixture(t)

		f.tenants.On("FindByID", mock.Anything, f.tenant.ID).Return(f.tenant, nil)

		_, err := f.service.Register(context.Background(), f.tenant.ID, "", nil)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		f.api.AssertNotCalled(t, "RegisterWebhook", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not connected", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		f.tenant.ShopifyAccessToken = ""

		f.tenants.On("FindByID", mock.Anything, f.tenant.ID).Return(f.tenant, nil)

		_, err := f.service.Register(context.Background(), f.tenant.ID, "https://app.example.com/hook", nil)

		assert.ErrorIs(t, err, integration.ErrPlatformNotConfigured)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		f := newSubscriptionFixture(t)

		f.tenants.On("FindByID", mock.Anything, f.tenant.ID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Register(context.Background(), f.tenant.ID, "https://app.example.com/hook", nil)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestSubscriptionService_List(t *testing.T) {
	f := newSubscriptionFixture(t)

	f.tenants.On("FindByID", mock.Anything, f.tenant.ID).Return(f.tenant, nil)
	f.api.On("ListWebhooks", mock.Anything, mock.MatchedBy(func(c integration.Credentials) bool {
		return c.AccessToken == "shpat_plain" && c.StoreDomain == "acme.myshopify.com"
	})).Return([]platform.ShopifyWebhookSubscription{
		{ID: 1, Topic: "products/update"},
		{ID: 2, Topic: "inventory_levels/update"},
	}, nil)

	rows, err := f.service.List(context.Background(), f.tenant.ID)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "active", rows[0].Status)
	assert.Equal(t, "products/update", rows[0].Scope)
	assert.Equal(t, int64(2), rows[1].ID)
}

func TestSubscriptionService_Delete(t *testing.T) {
	f := newSubscriptionFixture(t)

	f.tenants.On("FindByID", mock.Anything, f.tenant.ID).Return(f.tenant, nil)
	f.api.On("DeleteWebhook", mock.Anything, mock.Anything, int64(42)).Return(nil)

	err := f.service.Delete(context.Background(), f.tenant.ID, 42)

	require.NoError(t, err)
	f.api.AssertExpectations(t)
}
