package integration

import (
	"strings"
	"time"
)

// ExternalItem is the canonical transfer object produced by every provider
// adapter and by the field mapping resolver. It is the only shape the
// reconciliation engine accepts: adapters own all platform-specific naming
// and parsing rules and never write to the ledger themselves.
type ExternalItem struct {
	// Name is required and non-empty; items without one fail reconciliation
	Name string
	// SKU is optional; empty means the item has no usable SKU
	SKU string
	// Quantity defaults to 0 on missing or unparseable input
	Quantity int64
	// ReorderThreshold follows the same default rule as Quantity
	ReorderThreshold int64
	// InvoiceNumber is an optional invoice/batch tag
	InvoiceNumber string
	// ExpirationDate is optional
	ExpirationDate *time.Time
	// Category and Label are optional enrichment, usually from the labeling
	// collaborator rather than the platform
	Category string
	Label    string
	// ProviderProductID / ProviderVariantID link the item back to the
	// platform entity it came from
	ProviderProductID string
	ProviderVariantID string
}

// HasName reports whether the required name field is usable
func (i *ExternalItem) HasName() bool {
	return strings.TrimSpace(i.Name) != ""
}

// DisplayName returns the item name or "Unknown" for error reporting
func (i *ExternalItem) DisplayName() string {
	if i.HasName() {
		return strings.TrimSpace(i.Name)
	}
	return "Unknown"
}
