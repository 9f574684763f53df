package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/stocksync/backend/internal/domain/shared"
)

// MatchKind tags how an incoming item resolved against the ledger.
// The two-stage lookup (SKU, then name) is deliberately loose: two records
// can share a name, and SKU carries no uniqueness constraint. The tag keeps
// that ambiguity visible to callers instead of hiding it in nested lookups.
type MatchKind string

const (
	// MatchedBySKU means the tenant+SKU lookup found an existing record
	MatchedBySKU MatchKind = "MATCHED_BY_SKU"
	// MatchedByName means the SKU lookup missed and tenant+name matched
	MatchedByName MatchKind = "MATCHED_BY_NAME"
	// NotFound means no existing record matched either key
	NotFound MatchKind = "NOT_FOUND"
)

// MatchResult is the outcome of identity resolution for one incoming item
type MatchResult struct {
	Kind   MatchKind
	Record *InventoryRecord
}

// Resolver performs identity resolution for incoming external items
type Resolver struct {
	records RecordRepository
}

// NewResolver creates a new identity resolver over the ledger repository
func NewResolver(records RecordRepository) *Resolver {
	return &Resolver{records: records}
}

// Resolve looks up an existing ledger row for (tenant, sku, name).
// SKU is the preferred key when non-empty; name is the fallback. A repository
// error other than not-found is returned as-is so callers can count the item
// as failed rather than creating a duplicate row.
func (r *Resolver) Resolve(ctx context.Context, tenantID uuid.UUID, sku, name string) (MatchResult, error) {
	if strings.TrimSpace(sku) != "" {
		record, err := r.records.FindBySKU(ctx, tenantID, strings.TrimSpace(sku))
		if err == nil {
			return MatchResult{Kind: MatchedBySKU, Record: record}, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return MatchResult{Kind: NotFound}, err
		}
	}

	record, err := r.records.FindByName(ctx, tenantID, strings.TrimSpace(name))
	if err == nil {
		return MatchResult{Kind: MatchedByName, Record: record}, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return MatchResult{Kind: NotFound}, err
	}

	return MatchResult{Kind: NotFound}, nil
}
