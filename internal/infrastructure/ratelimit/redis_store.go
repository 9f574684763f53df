package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitPrefix namespaces counter keys in redis
const rateLimitPrefix = "ratelimit:"

// RedisStore counts hits in Redis so limits hold across instances
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore wraps an existing Redis client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: rateLimitPrefix,
	}
}

// Incr increments the counter for key. The expiry is set only when the key is
// fresh, which pins the window to the first hit.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	redisKey := s.keyPrefix + key

	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	resetAt := time.Now().Add(window)
	if remaining := ttl.Val(); remaining > 0 {
		resetAt = time.Now().Add(remaining)
	}

	return incr.Val(), resetAt, nil
}

// Close is a no-op: the client is shared and closed by its owner
func (s *RedisStore) Close() error {
	return nil
}

var _ Store = (*RedisStore)(nil)
