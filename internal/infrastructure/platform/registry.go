package platform

import (
	"sync"

	"github.com/stocksync/backend/internal/domain/integration"
)

// Registry is a static AdapterRegistry over the configured adapters
type Registry struct {
	mu       sync.RWMutex
	adapters map[integration.PlatformCode]integration.ProviderAdapter
}

// NewRegistry creates a registry from the given adapters
func NewRegistry(adapters ...integration.ProviderAdapter) *Registry {
	r := &Registry{
		adapters: make(map[integration.PlatformCode]integration.ProviderAdapter, len(adapters)),
	}
	for _, adapter := range adapters {
		r.adapters[adapter.PlatformCode()] = adapter
	}
	return r
}

// Register adds or replaces an adapter
func (r *Registry) Register(adapter integration.ProviderAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.PlatformCode()] = adapter
}

// GetAdapter returns the adapter for the specified platform code
func (r *Registry) GetAdapter(code integration.PlatformCode) (integration.ProviderAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[code]
	if !ok {
		return nil, integration.ErrPlatformNotConfigured
	}
	return adapter, nil
}

// ListAdapters returns all registered adapters
func (r *Registry) ListAdapters() []integration.ProviderAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapters := make([]integration.ProviderAdapter, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		adapters = append(adapters, adapter)
	}
	return adapters
}

// Ensure Registry implements the AdapterRegistry port
var _ integration.AdapterRegistry = (*Registry)(nil)
