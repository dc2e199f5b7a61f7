package ratelimit

import (
	"context"
	"time"
)

// Store is the counter backend for keyed limiters.
type Store interface {
	// IncrementAndGet atomically increments the counter for the key within
	// the current fixed window, starting a fresh window when the previous
	// one has elapsed. Returns the counter value after the increment and
	// the time remaining until the window resets.
	IncrementAndGet(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)

	// Reset clears the counter for the given key.
	Reset(ctx context.Context, key string) error
}
