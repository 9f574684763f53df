// Package ratelimit implements fixed-window request limiting with pluggable
// counter stores.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the current window ends and the counter resets
	ResetAt time.Time
}

// RetryAfterSeconds returns whole seconds until the window resets, never
// below 1, suitable for a Retry-After header
func (d Decision) RetryAfterSeconds() int64 {
	secs := int64(time.Until(d.ResetAt).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Store counts hits per key within fixed windows
type Store interface {
	// Incr increments the counter for key in its current window and returns
	// the post-increment count plus when the window resets
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)

	// Close releases store resources
	Close() error
}

// Limiter applies fixed-window limits using a Store
type Limiter struct {
	store Store
}

// NewLimiter creates a limiter over the given counter store
func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// Check records one hit for key and decides whether it fits within limit per
// window. The hit is counted even when rejected: the window is occupancy of
// requests made, not requests served.
func (l *Limiter) Check(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	count, resetAt, err := l.store.Incr(ctx, key, window)
	if err != nil {
		return Decision{}, err
	}

	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: int(remaining),
		ResetAt:   resetAt,
	}, nil
}

// Close releases the underlying store
func (l *Limiter) Close() error {
	return l.store.Close()
}
