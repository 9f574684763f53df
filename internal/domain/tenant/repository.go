package tenant

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence port for tenants
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	// FindByShopDomain matches a normalized store domain against tenant rows.
	// Returns shared.ErrNotFound when no tenant owns the domain.
	FindByShopDomain(ctx context.Context, domain string) (*Tenant, error)
	Save(ctx context.Context, t *Tenant) error
}
