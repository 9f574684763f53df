package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncapp "github.com/stocksync/backend/internal/application/sync"
	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/inventory"
	"github.com/stocksync/backend/internal/domain/shared"
	"github.com/stocksync/backend/internal/domain/tenant"
	"github.com/stocksync/backend/internal/infrastructure/cache"
	"github.com/stocksync/backend/internal/infrastructure/config"
	"github.com/stocksync/backend/internal/infrastructure/vault"
)

// MockTenantRepository is a mock implementation of tenant.Repository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenant.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByShopDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenant.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, t *tenant.Tenant) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// MockRecordRepository is a mock implementation of inventory.RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockRecordRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockRecordRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockRecordRepository) FindByProviderProduct(ctx context.Context, tenantID uuid.UUID, productID, variantID string) ([]inventory.InventoryRecord, error) {
	args := m.Called(ctx, tenantID, productID, variantID)
	return args.Get(0).([]inventory.InventoryRecord), args.Error(1)
}

func (m *MockRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]inventory.InventoryRecord), args.Error(1)
}

func (m *MockRecordRepository) Create(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockRecordRepository) DeleteByProviderProduct(ctx context.Context, tenantID uuid.UUID, productID, variantID string) (int64, error) {
	args := m.Called(ctx, tenantID, productID, variantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockHistoryRepository is a mock implementation of inventory.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *inventory.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) RecentEquivalentExists(ctx context.Context, tenantID, itemID uuid.UUID, newQuantity int64, source string, since time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, itemID, newQuantity, source, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockHistoryRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.HistoryEntry, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]inventory.HistoryEntry), args.Error(1)
}

// MockAdapter is a mock implementation of integration.ProviderAdapter
type MockAdapter struct {
	mock.Mock
	code integration.PlatformCode
}

func (m *MockAdapter) PlatformCode() integration.PlatformCode {
	return m.code
}

func (m *MockAdapter) FetchCatalog(ctx context.Context, creds integration.Credentials) ([]integration.ExternalItem, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ExternalItem), args.Error(1)
}

func (m *MockAdapter) FetchEntity(ctx context.Context, creds integration.Credentials, productID, variantID string) ([]integration.ExternalItem, error) {
	args := m.Called(ctx, creds, productID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ExternalItem), args.Error(1)
}

const testSecret = "whsec_test"

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type shopifyFixture struct {
	processor *ShopifyProcessor
	tenants   *MockTenantRepository
	records   *MockRecordRepository
	history   *MockHistoryRepository
	adapter   *MockAdapter
	tenant    *tenant.Tenant
}

func newShopifyFixture(t *testing.T, cfg config.WebhookConfig) *shopifyFixture {
	t.Helper()

	tenants := new(MockTenantRepository)
	records := new(MockRecordRepository)
	history := new(MockHistoryRepository)
	adapter := &MockAdapter{code: integration.PlatformCodeShopify}

	logger := zap.NewNop()
	v := vault.New(config.VaultConfig{}, logger)
	reconcile := syncapp.NewReconcileService(records, history, nil, logger,
		syncapp.WithChangeType(inventory.ChangeTypeWebhook))
	dedup := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = dedup.Close() })

	if cfg.DedupTTL == 0 {
		cfg.DedupTTL = time.Hour
	}

	shopTenant := &tenant.Tenant{
		BaseEntity:         shared.NewBaseEntity(),
		Name:               "Acme",
		ShopDomain:         "acme.myshopify.com",
		ShopifyAccessToken: "shpat_plain",
	}

	return &shopifyFixture{
		processor: NewShopifyProcessor(cfg, tenants, records, reconcile, adapter, v, dedup, logger),
		tenants:   tenants,
		records:   records,
		history:   history,
		adapter:   adapter,
		tenant:    shopTenant,
	}
}

func TestShopifyProcessor_InvalidSignature(t *testing.T) {
	f := newShopifyFixture(t, config.WebhookConfig{ShopifySecret: testSecret})

	body := []byte(`{"id": 101, "title": "T-Shirt"}`)
	delivery := Delivery{
		Body:       body,
		Signature:  "bm90LXRoZS1yaWdodC1zaWduYXR1cmU=",
		Scope:      "products/update",
		DeliveryID: "d-1",
		ShopDomain: "acme.myshopify.com",
	}

	outcome, err := f.processor.Process(context.Background(), delivery)

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, integration.ErrInvalidSignature)
	// Zero persistence calls on rejected signatures
	f.records.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.records.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.records.AssertNotCalled(t, "DeleteByProviderProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.tenants.AssertNotCalled(t, "FindByShopDomain", mock.Anything, mock.Anything)
}

func TestShopifyProcessor_MissingSignatureHeader(t *testing.T) {
	f := newShopifyFixture(t, config.WebhookConfig{ShopifySecret: testSecret})

	_, err := f.processor.Process(context.Background(), Delivery{
		Body:  []byte(`{}`),
		Scope: "products/update",
	})

	assert.ErrorIs(t, err, integration.ErrInvalidSignature)
}

func TestShopifyProcessor_ScopeOutsideAllowList(t *testing.T) {
	f := newShopifyFixture(t, config.WebhookConfig{ShopifySecret: testSecret})

	body := []byte(`{"id": 5}`)
	outcome, err := f.processor.Process(context.Background(), Delivery{
		Body:       body,
		Signature:  signBody(testSecret, body),
		Scope:      "orders/create",
		DeliveryID: "d-2",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusIgnored, outcome.Status)
	f.records.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestShopifyProcessor_ProductDelete(t *testing.T) {
	t.Run("removes matching records and reports the count", func(t *testing.T) {
		f := newShopifyFixture(t, config.WebhookConfig{ShopifySecret: testSecret})

		f.tenants.On("FindByShopDomain", mock.Anything, "acme.myshopify.com").Return(f.tenant, nil)
		f.records.On("DeleteByProviderProduct", mock.Anything, f.tenant.ID, "101", "").Return(int64(2), nil)

		body := []byte(`{"id": 101}`)
		outcome, err := f.processor.Process(context.Background(), Delivery{
			Body:       body,
			Signature:  signBody(testSecret, body),
			Scope:      "products/delete",
			DeliveryID: "d-3",
			ShopDomain: "acme.myshopify.com",
		})

		require.NoError(t, err)
		assert.Equal(t, StatusDeleted, outcome.Status)
		assert.Equal(t, int64(2), outcome.Removed)
		f.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("non-matching id removes zero and still succeeds", func(t *testing.T) {
		f := newShopifyFixture(t, config.WebhookConfig{ShopifySecret: testSecret})

		f.tenants.On("FindByShopDomain", mock.Anything, "acme.myshopify.com").Return(f.tenant, nil)
		f.records.On("DeleteByProviderProduct", mock.Anything, f.tenant.ID, "999", "").Return(int64(0), nil)

		body := []byte(`{"id": 999}`)
		outcome, err := f.processor.Process(context.Background(), Delivery{
			Body:       body,
			Signature:  signBody(testSecret, body),
			Scope:      "products/delete",
			DeliveryID: "d-4",
			ShopDomain: "acme.myshopify.com",
		})

		require.NoError(t, err)
		assert.Equal(t, StatusDeleted, outcome.Status)
		assert.Equal(t, int64(0), outcome.Removed)
	})
}

func TestShopifyProcessor_VariantDeleteNarrowsToVariant(t *testing.T) {
	f := newShopifyFixture(t, config.WebhookConfig{ShopifySecret: testSecret})

	f.tenants.On("FindByShopDomain", mock.Anything, "acme.myshopify.com").Return(f.tenant, nil)
	f.records.On("DeleteByProviderProduct", mock.Anything, f.tenant.ID, "101", "1002").Return(int64(1), nil)

	body := []byte(`{"id": 1002, "product_id": 101}`)
	outcome, err := f.processor.Process(context.Background(), Delivery{
		Body:       body,
		Signature:  signBody(testSecret, body),
		Scope:      "product_variants/delete",
		DeliveryID: "d-5",
		ShopDomain: "acme.myshopify.com",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), outcome.Removed)
	f.records.AssertExpectations(t)
}

func TestShopifyProcessor_ProductUpsert(t *testing.T) {
	f := newShopifyFixture(t, config.WebhookConfig{ShopifySecret: testSecret})

	f.tenants.On("FindByShopDomain", mock.Anything, "acme.myshopify.com").Return(f.tenant, nil)
	f.records.On("FindBySKU", mock.Anything, f.tenant.ID, "TS-S").Return(nil, shared.ErrNotFound)
	f.records.On("FindByName", mock.Anything, f.tenant.ID, mock.Anything).Return(nil, shared.ErrNotFound)
	f.records.On("Create", mock.Anything, mock.AnythingOfType("*inventory.InventoryRecord")).Return(nil)
	f.history.On("RecentEquivalentExists", mock.Anything, f.tenant.ID, mock.Anything, int64(4), "shopify", mock.Anything).Return(false, nil)

	var appended *inventory.HistoryEntry
	f.history.On("Append", mock.Anything, mock.AnythingOfType("*inventory.HistoryEntry")).
		Run(func(args mock.Arguments) {
			appended = args.Get(1).(*inventory.HistoryEntry)
		}).
		Return(nil)

	body := []byte(`{
		"id": 101, "title": "T-Shirt",
		"options": [{"name": "Size", "position": 1}],
		"variants": [{"id": 1001, "title": "Small", "sku": "TS-S", "inventory_quantity": 4, "option1": "Small"}]
	}`)
	outcome, err := f.processor.Process(context.Background(), Delivery{
		Body:       body,
		Signature:  signBody(testSecret, body),
		Scope:      "products/update",
		DeliveryID: "d-6",
		ShopDomain: "acme.myshopify.com",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusProcessed, outcome.Status)
	require.NotNil(t, outcome.Result)
	assert.Equal(t, 1, outcome.Result.Created)
	assert.Equal(t, "Created: 1, Updated: 0, Failed: 0", outcome.Summary)
	require.NotNil(t, appended)
	assert.Equal(t, inventory.ChangeTypeWebhook, appended.ChangeType)
}

func TestShopifyProcessor_DuplicateDelivery(t *testing.T) {
	f := newShopifyFixture(t, config.WebhookConfig{ShopifySecret: testSecret})

	f.tenants.On("FindByShopDomain", mock.Anything, "acme.myshopify.com").Return(f.tenant, nil)
	f.records.On("DeleteByProviderProduct", mock.Anything, f.tenant.ID, "101", "").Return(int64(1), nil).Once()

	body := []byte(`{"id": 101}`)
	delivery := Delivery{
		Body:       body,
		Signature:  signBody(testSecret, body),
		Scope:      "products/delete",
		DeliveryID: "d-replay",
		ShopDomain: "acme.myshopify.com",
	}

	first, err := f.processor.Process(context.Background(), delivery)
	require.NoError(t, err)
	assert.Equal(t, StatusDeleted, first.Status)

	second, err := f.processor.Process(context.Background(), delivery)
	require.NoError(t, err)
	assert.Equal(t, StatusDuplicate, second.Status)
	f.records.AssertNumberOfCalls(t, "DeleteByProviderProduct", 1)
}

func TestShopifyProcessor_TenantUnresolved(t *testing.T) {
	f := newShopifyFixture(t, config.WebhookConfig{ShopifySecret: testSecret})

	f.tenants.On("FindByShopDomain", mock.Anything, "unknown.myshopify.com").Return(nil, shared.ErrNotFound)

	body := []byte(`{"id": 101}`)
	_, err := f.processor.Process(context.Background(), Delivery{
		Body:       body,
		Signature:  signBody(testSecret, body),
		Scope:      "products/delete",
		DeliveryID: "d-7",
		ShopDomain: "unknown.myshopify.com",
	})

	assert.ErrorIs(t, err, integration.ErrTenantUnresolved)
	f.records.AssertNotCalled(t, "DeleteByProviderProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestShopifyProcessor_DefaultTenantFallback(t *testing.T) {
	defaultID := uuid.New()
	f := newShopifyFixture(t, config.WebhookConfig{
		ShopifySecret:   testSecret,
		DefaultTenantID: defaultID.String(),
	})
	f.tenant.ID = defaultID

	f.tenants.On("FindByID", mock.Anything, defaultID).Return(f.tenant, nil)
	f.records.On("DeleteByProviderProduct", mock.Anything, defaultID, "101", "").Return(int64(1), nil)

	// No shop-domain header on the delivery
	body := []byte(`{"id": 101}`)
	outcome, err := f.processor.Process(context.Background(), Delivery{
		Body:       body,
		Signature:  signBody(testSecret, body),
		Scope:      "products/delete",
		DeliveryID: "d-8",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), outcome.Removed)
}

func TestShopifyProcessor_InventoryLevelFetchesEntity(t *testing.T) {
	f := newShopifyFixture(t, config.WebhookConfig{ShopifySecret: testSecret})

	f.tenants.On("FindByShopDomain", mock.Anything, "acme.myshopify.com").Return(f.tenant, nil)
	f.adapter.On("FetchEntity", mock.Anything, mock.MatchedBy(func(c integration.Credentials) bool {
		return c.AccessToken == "shpat_plain" && c.StoreDomain == "acme.myshopify.com"
	}), "101", "1001").Return([]integration.ExternalItem{
		{Name: "T-Shirt (Size: Small)", SKU: "TS-S", Quantity: 7, ProviderProductID: "101", ProviderVariantID: "1001"},
	}, nil)

	existing := &inventory.InventoryRecord{
		TenantEntity: shared.NewTenantEntity(f.tenant.ID),
		Name:         "T-Shirt (Size: Small)",
		SKU:          "TS-S",
		Quantity:     4,
	}
	f.records.On("FindBySKU", mock.Anything, f.tenant.ID, "TS-S").Return(existing, nil)
	f.records.On("Save", mock.Anything, existing).Return(nil)
	f.history.On("RecentEquivalentExists", mock.Anything, f.tenant.ID, existing.ID, int64(7), "shopify", mock.Anything).Return(false, nil)
	f.history.On("Append", mock.Anything, mock.AnythingOfType("*inventory.HistoryEntry")).Return(nil)

	body := []byte(`{"inventory_item_id": 555, "available": 7, "product_id": 101, "variant_id": 1001}`)
	outcome, err := f.processor.Process(context.Background(), Delivery{
		Body:       body,
		Signature:  signBody(testSecret, body),
		Scope:      "inventory_levels/update",
		DeliveryID: "d-9",
		ShopDomain: "acme.myshopify.com",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusProcessed, outcome.Status)
	assert.Equal(t, 1, outcome.Result.Updated)
	assert.Equal(t, int64(7), existing.Quantity)
	f.adapter.AssertExpectations(t)
}

func TestShopifyProcessor_NoSecretSkipsVerification(t *testing.T) {
	f := newShopifyFixture(t, config.WebhookConfig{})

	f.tenants.On("FindByShopDomain", mock.Anything, "acme.myshopify.com").Return(f.tenant, nil)
	f.records.On("DeleteByProviderProduct", mock.Anything, f.tenant.ID, "101", "").Return(int64(0), nil)

	outcome, err := f.processor.Process(context.Background(), Delivery{
		Body:       []byte(`{"id": 101}`),
		Scope:      "products/delete",
		DeliveryID: "d-10",
		ShopDomain: "acme.myshopify.com",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusDeleted, outcome.Status)
}
