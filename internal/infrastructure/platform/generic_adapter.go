package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stocksync/backend/internal/domain/integration"
)

// GenericAdapter pulls items from an arbitrary JSON API and maps them onto
// the canonical shape through the field mapping resolver. It serves tenants
// whose inventory source has no dedicated adapter.
type GenericAdapter struct {
	httpClient *http.Client

	// APIURL is the endpoint to GET; ItemsPath and FieldMapping drive the
	// resolver. These are per-import settings supplied by the caller.
	APIURL       string
	ItemsPath    string
	FieldMapping map[string]string
}

// NewGenericAdapter creates a generic adapter for one configured source
func NewGenericAdapter(apiURL, itemsPath string, fieldMapping map[string]string, timeout time.Duration) *GenericAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GenericAdapter{
		httpClient:   &http.Client{Timeout: timeout},
		APIURL:       apiURL,
		ItemsPath:    itemsPath,
		FieldMapping: fieldMapping,
	}
}

// PlatformCode returns the platform code this adapter handles
func (a *GenericAdapter) PlatformCode() integration.PlatformCode {
	return integration.PlatformCodeGeneric
}

// FetchCatalog GETs the configured URL and resolves the response into
// canonical items. Per-item mapping failures are dropped here; callers that
// need them use FetchCatalogWithErrors.
func (a *GenericAdapter) FetchCatalog(ctx context.Context, creds integration.Credentials) ([]integration.ExternalItem, error) {
	items, _, err := a.FetchCatalogWithErrors(ctx, creds)
	return items, err
}

// FetchCatalogWithErrors is FetchCatalog plus the per-item mapping errors
func (a *GenericAdapter) FetchCatalogWithErrors(ctx context.Context, creds integration.Credentials) ([]integration.ExternalItem, []error, error) {
	if a.APIURL == "" {
		return nil, nil, fmt.Errorf("%w: api url is required", integration.ErrPlatformNotConfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.APIURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("generic: failed to create request: %w", err)
	}
	if creds.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", integration.ErrPlatformRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read response: %v", integration.ErrPlatformRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("%w: status %d: %s", integration.ErrPlatformRequestFailed, resp.StatusCode, truncate(string(body), 200))
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("%w: response is not valid JSON: %v", integration.ErrPlatformInvalidResponse, err)
	}

	rawItems, err := ResolveItems(payload, a.ItemsPath)
	if err != nil {
		return nil, nil, err
	}

	items, itemErrs := MapFields(rawItems, a.FieldMapping)
	return items, itemErrs, nil
}

// FetchEntity is not supported by the generic adapter: arbitrary APIs expose
// no per-entity lookup contract.
func (a *GenericAdapter) FetchEntity(ctx context.Context, creds integration.Credentials, productID, variantID string) ([]integration.ExternalItem, error) {
	return nil, fmt.Errorf("%w: generic adapter has no per-entity lookup", integration.ErrPlatformNotConfigured)
}

// Ensure GenericAdapter implements the ProviderAdapter port
var _ integration.ProviderAdapter = (*GenericAdapter)(nil)
