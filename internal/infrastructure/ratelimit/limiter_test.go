package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Check(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	limiter := NewLimiter(store)

	ctx := context.Background()
	const limit = 3

	for i := 1; i <= limit; i++ {
		decision, err := limiter.Check(ctx, "client-a", limit, time.Minute)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "request %d within limit", i)
		assert.Equal(t, limit-i, decision.Remaining)
		assert.Equal(t, limit, decision.Limit)
	}

	decision, err := limiter.Check(ctx, "client-a", limit, time.Minute)
	require.NoError(t, err)
	assert.False(t, decision.Allowed, "request over limit is rejected")
	assert.Equal(t, 0, decision.Remaining)
	assert.False(t, decision.ResetAt.IsZero())
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	limiter := NewLimiter(store)

	ctx := context.Background()

	decision, err := limiter.Check(ctx, "client-a", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = limiter.Check(ctx, "client-a", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	decision, err = limiter.Check(ctx, "client-b", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "other keys keep their own window")
}

func TestLimiter_WindowReset(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	limiter := NewLimiter(store)

	ctx := context.Background()
	window := 20 * time.Millisecond

	decision, err := limiter.Check(ctx, "client-a", 1, window)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = limiter.Check(ctx, "client-a", 1, window)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	time.Sleep(30 * time.Millisecond)

	decision, err = limiter.Check(ctx, "client-a", 1, window)
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "counter resets after the window elapses")
	assert.Equal(t, 0, decision.Remaining)
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	defer store.Close()

	ctx := context.Background()
	_, _, err := store.Incr(ctx, "short", time.Millisecond)
	require.NoError(t, err)
	_, _, err = store.Incr(ctx, "long", time.Hour)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	store.sweep()

	assert.Equal(t, 1, store.Size())
}

func TestMemoryStore_ConcurrentIncr(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	ctx := context.Background()
	const hits = 50

	var wg sync.WaitGroup
	for i := 0; i < hits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := store.Incr(ctx, "contested", time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, _, err := store.Incr(ctx, "contested", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(hits+1), count)
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestLimiter_ManyKeys(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	limiter := NewLimiter(store)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		decision, err := limiter.Check(ctx, fmt.Sprintf("tenant-%d", i), 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 4, decision.Remaining)
	}
	assert.Equal(t, 10, store.Size())
}
