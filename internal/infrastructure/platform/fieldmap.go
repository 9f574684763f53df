package platform

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocksync/backend/internal/domain/integration"
)

// defaultItemsPath is where item arrays are looked for when no path is given
const defaultItemsPath = "items"

// DefaultFieldMapping maps canonical field names to their conventional
// payload keys. Caller-supplied mappings override individual entries.
var DefaultFieldMapping = map[string]string{
	"name":              "name",
	"sku":               "sku",
	"quantity":          "quantity",
	"invoice_number":    "invoice_number",
	"reorder_threshold": "reorder_threshold",
	"expiration_date":   "expiration_date",
}

// ResolveItems extracts the item array from an arbitrary API payload. A
// payload that is already an array is used as-is; otherwise itemsPath (dot
// notation, default "items") is resolved into the payload and must yield an
// array.
func ResolveItems(payload any, itemsPath string) ([]map[string]any, error) {
	if items, ok := toItemMaps(payload); ok {
		return items, nil
	}

	if itemsPath == "" {
		itemsPath = defaultItemsPath
	}

	resolved := resolvePath(payload, itemsPath)
	if resolved == nil {
		return nil, fmt.Errorf("%w: path %q not found in payload", integration.ErrUnexpectedShape, itemsPath)
	}
	items, ok := toItemMaps(resolved)
	if !ok {
		return nil, fmt.Errorf("%w: path %q does not resolve to an array", integration.ErrUnexpectedShape, itemsPath)
	}
	return items, nil
}

// MapFields applies a field-name mapping to raw items, producing canonical
// items. Per-item failures (missing/empty mapped name) are returned alongside
// the successes so one malformed row never aborts an import.
func MapFields(rawItems []map[string]any, mapping map[string]string) ([]integration.ExternalItem, []error) {
	resolved := make(map[string]string, len(DefaultFieldMapping))
	for field, key := range DefaultFieldMapping {
		resolved[field] = key
	}
	for field, key := range mapping {
		if key != "" {
			resolved[field] = key
		}
	}

	items := make([]integration.ExternalItem, 0, len(rawItems))
	errs := make([]error, 0)
	for i, raw := range rawItems {
		name, _ := resolvePath(raw, resolved["name"]).(string)
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("%w: item %d has no %q field", integration.ErrFieldMissing, i, resolved["name"]))
			continue
		}

		item := integration.ExternalItem{
			Name:             strings.TrimSpace(name),
			Quantity:         parseQuantity(resolvePath(raw, resolved["quantity"])),
			ReorderThreshold: parseQuantity(resolvePath(raw, resolved["reorder_threshold"])),
		}
		if sku, ok := resolvePath(raw, resolved["sku"]).(string); ok {
			item.SKU = strings.TrimSpace(sku)
		}
		if invoice, ok := resolvePath(raw, resolved["invoice_number"]).(string); ok {
			item.InvoiceNumber = strings.TrimSpace(invoice)
		}
		if expiry := parseDate(resolvePath(raw, resolved["expiration_date"])); expiry != nil {
			item.ExpirationDate = expiry
		}
		items = append(items, item)
	}
	return items, errs
}

// resolvePath walks a dot-path through nested maps. Returns nil when any
// segment is absent or not a map.
func resolvePath(payload any, path string) any {
	if path == "" {
		return nil
	}
	current := payload
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[segment]
		if !ok {
			return nil
		}
	}
	return current
}

// toItemMaps converts a decoded JSON array into item maps. Non-object array
// entries are skipped.
func toItemMaps(value any) ([]map[string]any, bool) {
	arr, ok := value.([]any)
	if !ok {
		return nil, false
	}
	items := make([]map[string]any, 0, len(arr))
	for _, entry := range arr {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items, true
}

// parseQuantity parses a quantity that may arrive as a JSON number, a
// numeric string, or not at all. Missing or unparseable input defaults to 0.
func parseQuantity(value any) int64 {
	switch v := value.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d.IntPart()
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d.IntPart()
		}
	}
	return 0
}

// parseDate accepts RFC 3339 timestamps and bare dates
func parseDate(value any) *time.Time {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return &t
		}
	}
	return nil
}
