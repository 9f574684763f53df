package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/tenant"
	"github.com/stocksync/backend/internal/infrastructure/logger"
)

// maxResponseSize is the maximum allowed response size from a platform API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// shopifyAPIVersion is the pinned Admin API version
const shopifyAPIVersion = "2024-10"

// shopifyPageSize is the per-page limit for catalog pulls
const shopifyPageSize = 250

// ShopifyAdapter implements the ProviderAdapter port for Shopify stores.
// It is pure fetch-and-normalize: pagination is flattened for the caller and
// nothing here touches the ledger.
type ShopifyAdapter struct {
	httpClient *http.Client
	// baseURLOverride replaces the store-derived base URL; used by tests
	baseURLOverride string
}

// NewShopifyAdapter creates a new Shopify adapter with a bounded client timeout
func NewShopifyAdapter(timeout time.Duration) *ShopifyAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ShopifyAdapter{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PlatformCode returns the platform code this adapter handles
func (a *ShopifyAdapter) PlatformCode() integration.PlatformCode {
	return integration.PlatformCodeShopify
}

// FetchCatalog pulls every product variant for the credentialed store,
// following cursor pagination until exhausted.
func (a *ShopifyAdapter) FetchCatalog(ctx context.Context, creds integration.Credentials) ([]integration.ExternalItem, error) {
	if err := a.validateCreds(creds); err != nil {
		return nil, err
	}

	items := make([]integration.ExternalItem, 0)
	pageInfo := ""
	for {
		query := url.Values{"limit": {strconv.Itoa(shopifyPageSize)}}
		if pageInfo != "" {
			query.Set("page_info", pageInfo)
		}

		body, header, err := a.doRequest(ctx, creds, http.MethodGet, "/products.json?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}

		var resp ShopifyProductsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: failed to parse products response: %v", integration.ErrPlatformInvalidResponse, err)
		}

		for i := range resp.Products {
			items = append(items, NormalizeShopifyProduct(&resp.Products[i])...)
		}

		pageInfo = nextPageInfo(header.Get("Link"))
		if pageInfo == "" {
			return items, nil
		}
	}
}

// FetchEntity pulls current state for one product, narrowed to a single
// variant when variantID is non-empty. Used by the webhook pipeline when a
// pushed payload carries only an identifier.
func (a *ShopifyAdapter) FetchEntity(ctx context.Context, creds integration.Credentials, productID, variantID string) ([]integration.ExternalItem, error) {
	if err := a.validateCreds(creds); err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", integration.ErrPlatformInvalidResponse)
	}

	body, _, err := a.doRequest(ctx, creds, http.MethodGet, "/products/"+url.PathEscape(productID)+".json", nil)
	if err != nil {
		return nil, err
	}

	var resp ShopifyProductResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse product response: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if resp.Product == nil {
		return nil, integration.ErrPlatformInvalidResponse
	}

	items := NormalizeShopifyProduct(resp.Product)
	if variantID == "" {
		return items, nil
	}

	filtered := make([]integration.ExternalItem, 0, 1)
	for _, item := range items {
		if item.ProviderVariantID == variantID {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// RegisterWebhook registers a webhook subscription for one topic
func (a *ShopifyAdapter) RegisterWebhook(ctx context.Context, creds integration.Credentials, topic, address string) (*ShopifyWebhookSubscription, error) {
	if err := a.validateCreds(creds); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(ShopifyWebhookResponse{
		Webhook: &ShopifyWebhookSubscription{Topic: topic, Address: address, Format: "json"},
	})
	if err != nil {
		return nil, err
	}

	body, _, err := a.doRequest(ctx, creds, http.MethodPost, "/webhooks.json", payload)
	if err != nil {
		return nil, err
	}

	var resp ShopifyWebhookResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Webhook == nil {
		return nil, fmt.Errorf("%w: failed to parse webhook response", integration.ErrPlatformInvalidResponse)
	}
	return resp.Webhook, nil
}

// ListWebhooks lists existing webhook subscriptions for the store
func (a *ShopifyAdapter) ListWebhooks(ctx context.Context, creds integration.Credentials) ([]ShopifyWebhookSubscription, error) {
	if err := a.validateCreds(creds); err != nil {
		return nil, err
	}

	body, _, err := a.doRequest(ctx, creds, http.MethodGet, "/webhooks.json", nil)
	if err != nil {
		return nil, err
	}

	var resp ShopifyWebhooksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse webhooks response: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return resp.Webhooks, nil
}

// DeleteWebhook removes a webhook subscription by id
func (a *ShopifyAdapter) DeleteWebhook(ctx context.Context, creds integration.Credentials, id int64) error {
	if err := a.validateCreds(creds); err != nil {
		return err
	}
	_, _, err := a.doRequest(ctx, creds, http.MethodDelete, "/webhooks/"+strconv.FormatInt(id, 10)+".json", nil)
	return err
}

func (a *ShopifyAdapter) validateCreds(creds integration.Credentials) error {
	if creds.AccessToken == "" || creds.StoreDomain == "" {
		return integration.ErrCredentialsMissing
	}
	return nil
}

// baseURL derives the Admin API root from the store domain
func (a *ShopifyAdapter) baseURL(creds integration.Credentials) string {
	if a.baseURLOverride != "" {
		return a.baseURLOverride
	}
	return "https://" + tenant.NormalizeShopDomain(creds.StoreDomain) + "/admin/api/" + shopifyAPIVersion
}

// doRequest performs one Admin API call and returns the body and headers
func (a *ShopifyAdapter) doRequest(ctx context.Context, creds integration.Credentials, method, path string, payload []byte) ([]byte, http.Header, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = strings.NewReader(string(payload))
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL(creds)+path, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", integration.ErrPlatformRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read response: %v", integration.ErrPlatformRequestFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, nil, fmt.Errorf("%w: status %d", integration.ErrPlatformAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, nil, integration.ErrPlatformRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		logger.FromContext(ctx).Warn("shopify request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, nil, fmt.Errorf("%w: status %d: %s", integration.ErrPlatformRequestFailed, resp.StatusCode, truncate(string(body), 200))
	}

	return body, resp.Header, nil
}

// NormalizeShopifyProduct flattens a product into canonical items, one per
// variant. Exported because webhook payloads carry the same product shape.
func NormalizeShopifyProduct(product *ShopifyProduct) []integration.ExternalItem {
	items := make([]integration.ExternalItem, 0, len(product.Variants))
	for _, variant := range product.Variants {
		items = append(items, integration.ExternalItem{
			Name:              ShopifyDisplayName(product.Title, variant, product.Options),
			SKU:               variant.SKU,
			Quantity:          variant.InventoryQuantity,
			ProviderProductID: strconv.FormatInt(product.ID, 10),
			ProviderVariantID: strconv.FormatInt(variant.ID, 10),
		})
	}
	return items
}

// nextPageInfo extracts the rel="next" page_info cursor from a Link header.
// Returns "" when there is no next page.
func nextPageInfo(link string) string {
	if link == "" {
		return ""
	}
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end <= start {
			continue
		}
		u, err := url.Parse(part[start+1 : end])
		if err != nil {
			continue
		}
		return u.Query().Get("page_info")
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Ensure ShopifyAdapter implements the ProviderAdapter port
var _ integration.ProviderAdapter = (*ShopifyAdapter)(nil)
