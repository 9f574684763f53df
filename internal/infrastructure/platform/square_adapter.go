package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/infrastructure/logger"
)

// squareProductionBaseURL is the production API endpoint
const squareProductionBaseURL = "https://connect.squareup.com"

// squareAPIVersion is the pinned Square-Version header value
const squareAPIVersion = "2024-10-17"

// inventoryCountBatchSize bounds how many variation ids are sent per counts
// request
const inventoryCountBatchSize = 100

// SquareAdapter implements the ProviderAdapter port for Square sellers.
// Catalog structure and stock levels live in separate APIs; FetchCatalog
// joins them so the caller sees one flattened item list.
type SquareAdapter struct {
	httpClient *http.Client
	baseURL    string
}

// NewSquareAdapter creates a new Square adapter with a bounded client timeout
func NewSquareAdapter(timeout time.Duration) *SquareAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SquareAdapter{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    squareProductionBaseURL,
	}
}

// PlatformCode returns the platform code this adapter handles
func (a *SquareAdapter) PlatformCode() integration.PlatformCode {
	return integration.PlatformCodeSquare
}

// FetchCatalog pulls all catalog items and their stock counts, following
// cursor pagination until exhausted.
func (a *SquareAdapter) FetchCatalog(ctx context.Context, creds integration.Credentials) ([]integration.ExternalItem, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	items := make([]integration.ExternalItem, 0)
	variationIDs := make([]string, 0)
	cursor := ""
	for {
		query := url.Values{"types": {"ITEM"}}
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		body, err := a.doRequest(ctx, creds, http.MethodGet, "/v2/catalog/list?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}

		var resp SquareCatalogListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: failed to parse catalog response: %v", integration.ErrPlatformInvalidResponse, err)
		}
		if err := squareRespError(resp.Errors); err != nil {
			return nil, err
		}

		for i := range resp.Objects {
			normalized := normalizeSquareItem(&resp.Objects[i])
			items = append(items, normalized...)
			for _, item := range normalized {
				variationIDs = append(variationIDs, item.ProviderVariantID)
			}
		}

		if resp.Cursor == "" {
			break
		}
		cursor = resp.Cursor
	}

	counts, err := a.fetchInventoryCounts(ctx, creds, variationIDs)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if qty, ok := counts[items[i].ProviderVariantID]; ok {
			items[i].Quantity = qty
		}
	}
	return items, nil
}

// FetchEntity pulls current state for one catalog object, narrowed to a
// single variation when variantID is non-empty. Inventory events identify the
// ITEM_VARIATION rather than the parent ITEM, so a variation id is resolved
// to its parent before normalizing and the result is narrowed to that
// variation.
func (a *SquareAdapter) FetchEntity(ctx context.Context, creds integration.Credentials, productID, variantID string) ([]integration.ExternalItem, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, fmt.Errorf("%w: catalog object id is required", integration.ErrPlatformInvalidResponse)
	}

	object, err := a.fetchCatalogObject(ctx, creds, productID)
	if err != nil {
		return nil, err
	}
	if object.Type == "ITEM_VARIATION" {
		if object.VariationData == nil || object.VariationData.ItemID == "" {
			return nil, fmt.Errorf("%w: variation %s carries no parent item id", integration.ErrPlatformInvalidResponse, object.ID)
		}
		if variantID == "" {
			variantID = object.ID
		}
		object, err = a.fetchCatalogObject(ctx, creds, object.VariationData.ItemID)
		if err != nil {
			return nil, err
		}
	}

	items := normalizeSquareItem(object)
	if variantID != "" {
		filtered := make([]integration.ExternalItem, 0, 1)
		for _, item := range items {
			if item.ProviderVariantID == variantID {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProviderVariantID)
	}
	counts, err := a.fetchInventoryCounts(ctx, creds, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if qty, ok := counts[items[i].ProviderVariantID]; ok {
			items[i].Quantity = qty
		}
	}
	return items, nil
}

// fetchCatalogObject retrieves one catalog object by id
func (a *SquareAdapter) fetchCatalogObject(ctx context.Context, creds integration.Credentials, objectID string) (*SquareCatalogObject, error) {
	body, err := a.doRequest(ctx, creds, http.MethodGet, "/v2/catalog/object/"+url.PathEscape(objectID), nil)
	if err != nil {
		return nil, err
	}

	var resp SquareCatalogObjectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse catalog object response: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if err := squareRespError(resp.Errors); err != nil {
		return nil, err
	}
	if resp.Object == nil {
		return nil, integration.ErrPlatformInvalidResponse
	}
	return resp.Object, nil
}

// fetchInventoryCounts retrieves IN_STOCK counts keyed by variation id
func (a *SquareAdapter) fetchInventoryCounts(ctx context.Context, creds integration.Credentials, variationIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(variationIDs))

	for start := 0; start < len(variationIDs); start += inventoryCountBatchSize {
		end := start + inventoryCountBatchSize
		if end > len(variationIDs) {
			end = len(variationIDs)
		}

		reqBody := SquareInventoryCountsRequest{CatalogObjectIDs: variationIDs[start:end]}
		if creds.LocationID != "" {
			reqBody.LocationIDs = []string{creds.LocationID}
		}

		cursor := ""
		for {
			reqBody.Cursor = cursor
			payload, err := json.Marshal(reqBody)
			if err != nil {
				return nil, err
			}

			body, err := a.doRequest(ctx, creds, http.MethodPost, "/v2/inventory/counts/batch-retrieve", payload)
			if err != nil {
				return nil, err
			}

			var resp SquareInventoryCountsResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return nil, fmt.Errorf("%w: failed to parse inventory counts: %v", integration.ErrPlatformInvalidResponse, err)
			}
			if err := squareRespError(resp.Errors); err != nil {
				return nil, err
			}

			for _, count := range resp.Counts {
				if count.State != "IN_STOCK" {
					continue
				}
				// Square reports quantities as decimal strings
				if qty, err := decimal.NewFromString(count.Quantity); err == nil {
					counts[count.CatalogObjectID] += qty.IntPart()
				}
			}

			if resp.Cursor == "" {
				break
			}
			cursor = resp.Cursor
		}
	}
	return counts, nil
}

// doRequest performs one Square API call
func (a *SquareAdapter) doRequest(ctx context.Context, creds integration.Credentials, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("square: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Square-Version", squareAPIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", integration.ErrPlatformRequestFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", integration.ErrPlatformAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, integration.ErrPlatformRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		logger.FromContext(ctx).Warn("square request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d: %s", integration.ErrPlatformRequestFailed, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

// normalizeSquareItem flattens an ITEM object into canonical items, one per
// variation. Quantities are filled in afterwards from the inventory API.
func normalizeSquareItem(object *SquareCatalogObject) []integration.ExternalItem {
	if object.Type != "ITEM" || object.ItemData == nil {
		return nil
	}

	items := make([]integration.ExternalItem, 0, len(object.ItemData.Variations))
	for _, variation := range object.ItemData.Variations {
		if variation.VariationData == nil {
			continue
		}
		items = append(items, integration.ExternalItem{
			Name:              SquareDisplayName(object.ItemData.Name, variation.VariationData.Name),
			SKU:               variation.VariationData.SKU,
			ProviderProductID: object.ID,
			ProviderVariantID: variation.ID,
		})
	}
	return items
}

func squareRespError(errs []SquareError) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s - %s", integration.ErrPlatformRequestFailed, errs[0].Code, errs[0].Detail)
}

// Ensure SquareAdapter implements the ProviderAdapter port
var _ integration.ProviderAdapter = (*SquareAdapter)(nil)
