package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis, sharing counters across processes.
// The increment and window expiry are applied in a single pipeline so that
// concurrent callers never observe a counter without a deadline.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a Redis-backed counter store. The prefix namespaces
// counter keys; it defaults to "ratelimit:" when empty.
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) IncrementAndGet(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	redisKey := s.keyPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	// NX keeps the original window deadline; only the first increment of a
	// window sets the expiry.
	pipe.ExpireNX(ctx, redisKey, window)
	ttlCmd := pipe.PTTL(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, errors.Join(ErrStoreUnavailable, err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = window
	}
	return incr.Val(), ttl, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
