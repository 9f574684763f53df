package tenant

import (
	"strings"

	"github.com/stocksync/backend/internal/domain/shared"
)

// Tenant is the isolation boundary for inventory, credentials, and history.
// Provider secret columns hold vault-encrypted blobs; they are decrypted only
// at the point of use by an adapter or webhook handler and never logged.
type Tenant struct {
	shared.BaseEntity
	Name string `gorm:"not null"`

	// ShopDomain is the normalized store domain used to resolve webhook
	// deliveries that cannot embed a tenant id
	ShopDomain string `gorm:"index"`

	// Encrypted provider credentials
	ShopifyAccessToken string
	SquareAccessToken  string
	SquareLocationID   string
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// HasShopifyCredentials reports whether a Shopify connection is configured
func (t *Tenant) HasShopifyCredentials() bool {
	return t.ShopifyAccessToken != "" && t.ShopDomain != ""
}

// HasSquareCredentials reports whether a Square connection is configured
func (t *Tenant) HasSquareCredentials() bool {
	return t.SquareAccessToken != ""
}

// NormalizeShopDomain canonicalizes a store domain for matching: scheme and
// trailing slashes stripped, lower-cased.
func NormalizeShopDomain(domain string) string {
	d := strings.TrimSpace(strings.ToLower(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimSuffix(d, "/")
	return d
}
