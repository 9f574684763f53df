package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksync/backend/internal/domain/integration"
)

func testCreds() integration.Credentials {
	return integration.Credentials{
		AccessToken: "shpat_test_token",
		StoreDomain: "example.myshopify.com",
	}
}

func newTestShopifyAdapter(server *httptest.Server) *ShopifyAdapter {
	adapter := NewShopifyAdapter(5 * time.Second)
	adapter.baseURLOverride = server.URL
	return adapter
}

const shopifyProductsPage = `{
	"products": [
		{
			"id": 101,
			"title": "T-Shirt",
			"options": [{"name": "Size", "position": 1}],
			"variants": [
				{"id": 1001, "product_id": 101, "title": "Small", "sku": "TS-S", "inventory_quantity": 4, "option1": "Small"},
				{"id": 1002, "product_id": 101, "title": "Large", "sku": "TS-L", "inventory_quantity": 9, "option1": "Large"}
			]
		},
		{
			"id": 102,
			"title": "Plain Mug",
			"options": [{"name": "Title", "position": 1}],
			"variants": [
				{"id": 1003, "product_id": 102, "title": "Default Title", "sku": "MUG", "inventory_quantity": 30, "option1": "Default Title"}
			]
		}
	]
}`

func TestShopifyAdapter_FetchCatalog(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		assert.Equal(t, "/products.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(shopifyProductsPage))
	}))
	defer server.Close()

	adapter := newTestShopifyAdapter(server)
	items, err := adapter.FetchCatalog(context.Background(), testCreds())
	require.NoError(t, err)
	assert.Equal(t, "shpat_test_token", gotToken)

	require.Len(t, items, 3)
	assert.Equal(t, "T-Shirt (Size: Small)", items[0].Name)
	assert.Equal(t, "TS-S", items[0].SKU)
	assert.Equal(t, int64(4), items[0].Quantity)
	assert.Equal(t, "101", items[0].ProviderProductID)
	assert.Equal(t, "1001", items[0].ProviderVariantID)

	// Single default variant collapses to the bare product name
	assert.Equal(t, "Plain Mug", items[2].Name)
	assert.Equal(t, int64(30), items[2].Quantity)
}

func TestShopifyAdapter_FetchCatalog_Pagination(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", `<https://example.myshopify.com/admin/api/2024-10/products.json?page_info=cursor2&limit=250>; rel="next"`)
			_, _ = w.Write([]byte(`{"products": [{"id": 1, "title": "A", "variants": [{"id": 11, "title": "Default Title", "inventory_quantity": 1}]}]}`))
			return
		}
		assert.Equal(t, "cursor2", r.URL.Query().Get("page_info"))
		_, _ = w.Write([]byte(`{"products": [{"id": 2, "title": "B", "variants": [{"id": 21, "title": "Default Title", "inventory_quantity": 2}]}]}`))
	}))
	defer server.Close()

	adapter := newTestShopifyAdapter(server)
	items, err := adapter.FetchCatalog(context.Background(), testCreds())
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Name)
	assert.Equal(t, "B", items[1].Name)
}

func TestShopifyAdapter_FetchEntity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/101.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"product": {
			"id": 101, "title": "T-Shirt",
			"options": [{"name": "Size", "position": 1}],
			"variants": [
				{"id": 1001, "title": "Small", "sku": "TS-S", "inventory_quantity": 4, "option1": "Small"},
				{"id": 1002, "title": "Large", "sku": "TS-L", "inventory_quantity": 9, "option1": "Large"}
			]
		}}`))
	}))
	defer server.Close()

	adapter := newTestShopifyAdapter(server)

	t.Run("whole product", func(t *testing.T) {
		items, err := adapter.FetchEntity(context.Background(), testCreds(), "101", "")
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("narrowed to one variant", func(t *testing.T) {
		items, err := adapter.FetchEntity(context.Background(), testCreds(), "101", "1002")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "T-Shirt (Size: Large)", items[0].Name)
		assert.Equal(t, int64(9), items[0].Quantity)
	})
}

func TestShopifyAdapter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, integration.ErrPlatformAuthFailed},
		{"forbidden", http.StatusForbidden, integration.ErrPlatformAuthFailed},
		{"rate limited", http.StatusTooManyRequests, integration.ErrPlatformRateLimited},
		{"server error", http.StatusBadGateway, integration.ErrPlatformRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			adapter := newTestShopifyAdapter(server)
			_, err := adapter.FetchCatalog(context.Background(), testCreds())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestShopifyAdapter_MissingCredentials(t *testing.T) {
	adapter := NewShopifyAdapter(time.Second)

	_, err := adapter.FetchCatalog(context.Background(), integration.Credentials{})
	assert.ErrorIs(t, err, integration.ErrCredentialsMissing)

	_, err = adapter.FetchEntity(context.Background(), integration.Credentials{AccessToken: "t"}, "1", "")
	assert.ErrorIs(t, err, integration.ErrCredentialsMissing)
}

func TestNextPageInfo(t *testing.T) {
	assert.Equal(t, "", nextPageInfo(""))
	assert.Equal(t, "", nextPageInfo(`<https://x/products.json?page_info=abc>; rel="previous"`))
	assert.Equal(t, "abc", nextPageInfo(`<https://x/products.json?page_info=abc&limit=250>; rel="next"`))
	assert.Equal(t, "def", nextPageInfo(`<https://x/a?page_info=abc>; rel="previous", <https://x/a?page_info=def>; rel="next"`))
}
