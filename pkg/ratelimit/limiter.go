package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Limiter applies a fixed-window limit to keyed counters held in a Store.
type Limiter struct {
	store  Store
	config Config
}

// NewLimiter creates a keyed fixed-window limiter.
func NewLimiter(store Store, config Config) (*Limiter, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, config: config}, nil
}

// Allow counts one request against the key's current window and reports
// whether it fits within the configured limit. The increment always happens;
// a denied request still occupies its slot in the window, which keeps the
// store interaction a single atomic operation.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	if l.config.Limit == Unlimited {
		return &Result{
			Allowed:   true,
			Limit:     Unlimited,
			Remaining: Unlimited,
			ResetAt:   time.Now().Add(l.config.Window),
		}, nil
	}

	count, ttl, err := l.store.IncrementAndGet(ctx, key, l.config.Window)
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	remaining := l.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= int64(l.config.Limit),
		Limit:     l.config.Limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}, nil
}

// Reset clears the counter for the given key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}

func (c Config) validate() error {
	if c.Limit <= 0 && c.Limit != Unlimited {
		return fmt.Errorf("%w: limit must be positive or Unlimited, got %d", ErrInvalidConfig, c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	return nil
}
