package apikey

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/credkit/pkg/ratelimit"
	"github.com/dmitrymomot/credkit/pkg/scopes"
)

// Status is the lifecycle state of an API key.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Key is the persisted form of an API key. The raw token exists only in the
// creation/regeneration response; KeyHash is its sole stored derivative and
// KeyPrefix the only displayable part.
type Key struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	Name             string
	KeyHash          string
	KeyPrefix        string
	Scopes           []string
	Status           Status
	RateLimitPerHour int // ratelimit.Unlimited (-1) disables throttling
	Window           ratelimit.WindowState
	LastUsedAt       *time.Time
	CreatedAt        time.Time
	ExpiresAt        *time.Time
}

// IsExpired reports whether the key's expiry, if any, has passed.
func (k *Key) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}

// HasScopes reports whether the key's grant covers all required scopes.
func (k *Key) HasScopes(required ...string) bool {
	return scopes.HasAll(k.Scopes, required)
}

// CreateParams are the inputs to Service.Create.
type CreateParams struct {
	OwnerID uuid.UUID
	Name    string
	TierID  string
	Scopes  []string

	// RateLimitPerHour overrides the tier default when non-nil.
	RateLimitPerHour *int

	// ExpiresInDays sets an expiry relative to creation; 0 means no expiry.
	ExpiresInDays int
}

// CreateResult carries the persisted key plus the raw token, returned
// exactly once.
type CreateResult struct {
	Key    *Key
	RawKey string
}

// Storage is the persistence collaborator. ApplyUsage must be conditional
// on the previous window state so racing validations cannot double-count.
type Storage interface {
	// CreateKey persists a new key record.
	CreateKey(ctx context.Context, key *Key) error

	// GetKeyByID loads a key. Returns ErrKeyNotFound when absent.
	GetKeyByID(ctx context.Context, id uuid.UUID) (*Key, error)

	// GetKeyByHash looks a key up by its stored hash. Returns ErrKeyNotFound
	// when absent.
	GetKeyByHash(ctx context.Context, hash string) (*Key, error)

	// ListKeysByOwner returns all keys belonging to an owner, newest first.
	ListKeysByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Key, error)

	// CountActiveKeys counts the owner's keys with StatusActive.
	CountActiveKeys(ctx context.Context, ownerID uuid.UUID) (int, error)

	// UpdateKeyStatus transitions a key's status.
	UpdateKeyStatus(ctx context.Context, id uuid.UUID, status Status) error

	// ReplaceKeySecret swaps hash and prefix and resets the usage window,
	// keeping the same id.
	ReplaceKeySecret(ctx context.Context, id uuid.UUID, hash, prefix string) error

	// ApplyUsage persists a window transition. The write must only succeed
	// when the stored state still equals prev; otherwise ErrUsageConflict.
	ApplyUsage(ctx context.Context, id uuid.UUID, prev, next ratelimit.WindowState, lastUsedAt time.Time) error

	// DeleteKey removes the record. Returns ErrKeyNotFound when absent.
	DeleteKey(ctx context.Context, id uuid.UUID) error
}
