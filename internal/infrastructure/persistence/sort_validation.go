package persistence

import "strings"

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to
// DESC for anything unrecognized
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField whitelists a sort field, falling back to defaultField.
// Sort fields flow into ORDER BY unparameterized, so anything off-list is
// rejected.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// recordSortFields contains allowed sort fields for inventory records
var recordSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"sku":        true,
	"quantity":   true,
	"category":   true,
}

// historySortFields contains allowed sort fields for history entries
var historySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"item_name":  true,
	"sku":        true,
}
