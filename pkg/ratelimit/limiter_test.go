package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/ratelimit"
)

func TestNewLimiter(t *testing.T) {
	t.Parallel()

	_, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 0, Window: time.Minute})
	assert.ErrorIs(t, err, ratelimit.ErrInvalidConfig)

	_, err = ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 5, Window: 0})
	assert.ErrorIs(t, err, ratelimit.ErrInvalidConfig)

	_, err = ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: ratelimit.Unlimited, Window: time.Minute})
	require.NoError(t, err)
}

func TestLimiterAllow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("counts to the limit", func(t *testing.T) {
		t.Parallel()

		lim, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 3, Window: time.Minute})
		require.NoError(t, err)

		for i := range 3 {
			res, err := lim.Allow(ctx, "user-1")
			require.NoError(t, err)
			assert.True(t, res.Allowed, "call %d", i+1)
		}

		res, err := lim.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)

		// Independent key is unaffected.
		res, err = lim.Allow(ctx, "user-2")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("reset clears the counter", func(t *testing.T) {
		t.Parallel()

		lim, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 1, Window: time.Minute})
		require.NoError(t, err)

		_, err = lim.Allow(ctx, "k")
		require.NoError(t, err)
		res, err := lim.Allow(ctx, "k")
		require.NoError(t, err)
		require.False(t, res.Allowed)

		require.NoError(t, lim.Reset(ctx, "k"))
		res, err = lim.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("window elapse restores allowance", func(t *testing.T) {
		t.Parallel()

		lim, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 1, Window: 30 * time.Millisecond})
		require.NoError(t, err)

		res, err := lim.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, res.Allowed)

		res, err = lim.Allow(ctx, "k")
		require.NoError(t, err)
		require.False(t, res.Allowed)

		time.Sleep(40 * time.Millisecond)
		res, err = lim.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		t.Parallel()

		lim, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 1, Window: time.Minute})
		require.NoError(t, err)

		_, err = lim.Allow(ctx, "")
		assert.ErrorIs(t, err, ratelimit.ErrEmptyKey)
	})
}

func TestMemoryStoreConcurrency(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			_, _, err := store.IncrementAndGet(ctx, "shared", time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, _, err := store.IncrementAndGet(ctx, "shared", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines+1), count)
}
