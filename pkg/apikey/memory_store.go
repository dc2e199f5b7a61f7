package apikey

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/credkit/pkg/ratelimit"
)

// MemoryStore is an in-memory Storage for tests and single-process use.
type MemoryStore struct {
	mu     sync.RWMutex
	keys   map[uuid.UUID]*Key
	byHash map[string]uuid.UUID
}

// NewMemoryStore creates an empty in-memory key store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		keys:   make(map[uuid.UUID]*Key),
		byHash: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) CreateKey(ctx context.Context, key *Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.ID] = cloneKey(key)
	s.byHash[key.KeyHash] = key.ID
	return nil
}

func (s *MemoryStore) GetKeyByID(ctx context.Context, id uuid.UUID) (*Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keys[id]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return cloneKey(key), nil
}

func (s *MemoryStore) GetKeyByHash(ctx context.Context, hash string) (*Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byHash[hash]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return cloneKey(s.keys[id]), nil
}

func (s *MemoryStore) ListKeysByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Key
	for _, key := range s.keys {
		if key.OwnerID == ownerID {
			out = append(out, cloneKey(key))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CountActiveKeys(ctx context.Context, ownerID uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, key := range s.keys {
		if key.OwnerID == ownerID && key.Status == StatusActive {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) UpdateKeyStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keys[id]
	if !ok {
		return ErrKeyNotFound
	}
	key.Status = status
	return nil
}

func (s *MemoryStore) ReplaceKeySecret(ctx context.Context, id uuid.UUID, hash, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keys[id]
	if !ok {
		return ErrKeyNotFound
	}

	delete(s.byHash, key.KeyHash)
	key.KeyHash = hash
	key.KeyPrefix = prefix
	key.Window = ratelimit.WindowState{Used: 0, StartedAt: time.Now()}
	s.byHash[hash] = id
	return nil
}

func (s *MemoryStore) ApplyUsage(ctx context.Context, id uuid.UUID, prev, next ratelimit.WindowState, lastUsedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keys[id]
	if !ok {
		return ErrKeyNotFound
	}
	if key.Window != prev {
		return ErrUsageConflict
	}
	key.Window = next
	key.LastUsedAt = &lastUsedAt
	return nil
}

func (s *MemoryStore) DeleteKey(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keys[id]
	if !ok {
		return ErrKeyNotFound
	}
	delete(s.byHash, key.KeyHash)
	delete(s.keys, id)
	return nil
}

func cloneKey(key *Key) *Key {
	out := *key
	out.Scopes = slices.Clone(key.Scopes)
	if key.LastUsedAt != nil {
		t := *key.LastUsedAt
		out.LastUsedAt = &t
	}
	if key.ExpiresAt != nil {
		t := *key.ExpiresAt
		out.ExpiresAt = &t
	}
	return &out
}
