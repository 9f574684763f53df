package integration

import (
	"context"
)

// PlatformCode identifies an external commerce platform
type PlatformCode string

const (
	// PlatformCodeShopify represents Shopify stores
	PlatformCodeShopify PlatformCode = "SHOPIFY"
	// PlatformCodeSquare represents Square sellers
	PlatformCodeSquare PlatformCode = "SQUARE"
	// PlatformCodeGeneric represents the configurable generic API adapter
	PlatformCodeGeneric PlatformCode = "GENERIC"
)

// IsValid returns true if the platform code is valid
func (c PlatformCode) IsValid() bool {
	switch c {
	case PlatformCodeShopify, PlatformCodeSquare, PlatformCodeGeneric:
		return true
	default:
		return false
	}
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}

// SourceName returns the lower-case source identifier recorded on history
// entries and sync results
func (c PlatformCode) SourceName() string {
	switch c {
	case PlatformCodeShopify:
		return "shopify"
	case PlatformCodeSquare:
		return "square"
	case PlatformCodeGeneric:
		return "api"
	default:
		return "unknown"
	}
}

// Credentials carries decrypted secret material for one tenant-platform
// connection. Values are decrypted at the point of use and must never be
// logged.
type Credentials struct {
	// AccessToken is the platform API token
	AccessToken string
	// StoreDomain is the platform store identifier (e.g. a myshopify domain)
	StoreDomain string
	// LocationID narrows inventory lookups for platforms that require one
	LocationID string
}

// Validate checks that the minimum secret material is present
func (c *Credentials) Validate() error {
	if c.AccessToken == "" {
		return ErrCredentialsMissing
	}
	return nil
}

// ProviderAdapter is the port every platform adapter implements. Adapters are
// pure fetch-and-normalize: pagination is handled internally and the caller
// always sees a flattened result.
type ProviderAdapter interface {
	// PlatformCode returns the platform this adapter talks to
	PlatformCode() PlatformCode

	// FetchCatalog pulls the full catalog snapshot for the credentialed store
	FetchCatalog(ctx context.Context, creds Credentials) ([]ExternalItem, error)

	// FetchEntity pulls current state for a single platform product, narrowed
	// to one variant when variantID is non-empty. Used when a webhook payload
	// carries only an identifier.
	FetchEntity(ctx context.Context, creds Credentials, productID, variantID string) ([]ExternalItem, error)
}

// AdapterRegistry provides access to configured provider adapters by code
type AdapterRegistry interface {
	// GetAdapter returns the adapter for the specified platform code
	GetAdapter(code PlatformCode) (ProviderAdapter, error)

	// ListAdapters returns all registered adapters
	ListAdapters() []ProviderAdapter
}
