package cache

import (
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/shared"
	"github.com/stocksync/backend/internal/infrastructure/config"
)

// NewIdempotencyStore picks the delivery dedup backend from configuration:
// Redis when enabled and reachable, the in-memory store otherwise. The
// fallback is logged because it weakens duplicate suppression in multi-node
// deployments.
func NewIdempotencyStore(cfg config.RedisConfig, logger *zap.Logger) shared.IdempotencyStore {
	if !cfg.Enabled {
		logger.Info("redis disabled, using in-memory webhook dedup store")
		return NewInMemoryIdempotencyStore()
	}

	store, err := NewRedisIdempotencyStore(cfg)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory webhook dedup store",
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore()
	}

	logger.Info("using redis webhook dedup store", zap.String("addr", cfg.Addr()))
	return store
}
