package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryCounter struct {
	count     int64
	windowEnd time.Time
}

// MemoryStore is an in-memory Store suitable for single-process deployments
// and tests. Counters for elapsed windows are dropped lazily on access.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]*memoryCounter)}
}

func (s *MemoryStore) IncrementAndGet(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.windowEnd) {
		c = &memoryCounter{windowEnd: now.Add(window)}
		s.counters[key] = c
	}

	c.count++
	return c.count, time.Until(c.windowEnd), nil
}

func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, key)
	return nil
}
