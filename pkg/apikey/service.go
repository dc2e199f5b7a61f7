package apikey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/credkit/pkg/keygen"
	"github.com/dmitrymomot/credkit/pkg/logger"
	"github.com/dmitrymomot/credkit/pkg/ratelimit"
	"github.com/dmitrymomot/credkit/pkg/scopes"
	"github.com/dmitrymomot/credkit/pkg/tier"
)

// Service manages the API key lifecycle: issuance, validation with
// fixed-window rate limiting, rotation, revocation, and deletion.
type Service struct {
	storage Storage
	tiers   *tier.Registry
	window  *ratelimit.Window
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.logger = log }
}

// WithTierRegistry sets the registry used to resolve tier quotas.
func WithTierRegistry(r *tier.Registry) Option {
	return func(s *Service) { s.tiers = r }
}

// WithWindowLength sets the rate-limit window; defaults to one hour.
func WithWindowLength(length time.Duration) Option {
	return func(s *Service) { s.window = ratelimit.NewWindow(length) }
}

// WithTimeSource overrides the clock, letting tests drive window resets and
// expiry deterministically.
func WithTimeSource(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an API key issuer over the given storage.
func NewService(storage Storage, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		tiers:   tier.NewRegistry(),
		window:  ratelimit.NewWindow(ratelimit.DefaultWindowLength),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create issues a new key for the owner, enforcing the tier's active-key
// quota. The raw token appears only in the returned result; the persisted
// record carries its hash and display prefix.
func (s *Service) Create(ctx context.Context, params CreateParams) (*CreateResult, error) {
	if params.OwnerID == uuid.Nil || strings.TrimSpace(params.Name) == "" {
		return nil, ErrInvalidParams
	}

	t, err := s.tiers.Get(params.TierID)
	if err != nil {
		return nil, err
	}

	active, err := s.storage.CountActiveKeys(ctx, params.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active keys: %w", err)
	}
	if !t.AllowsKeyCount(active) {
		return nil, ErrKeyLimitExceeded
	}

	raw, prefix, err := keygen.APIKey()
	if err != nil {
		return nil, err
	}

	rateLimit := t.RateLimitPerHour
	if params.RateLimitPerHour != nil {
		rateLimit = *params.RateLimitPerHour
	}

	now := s.now()
	key := &Key{
		ID:               uuid.New(),
		OwnerID:          params.OwnerID,
		Name:             strings.TrimSpace(params.Name),
		KeyHash:          keygen.HashAPIKey(raw),
		KeyPrefix:        prefix,
		Scopes:           scopes.Normalize(params.Scopes),
		Status:           StatusActive,
		RateLimitPerHour: rateLimit,
		Window:           ratelimit.WindowState{Used: 0, StartedAt: now},
		CreatedAt:        now,
	}
	if params.ExpiresInDays > 0 {
		expiresAt := now.AddDate(0, 0, params.ExpiresInDays)
		key.ExpiresAt = &expiresAt
	}

	if err := s.storage.CreateKey(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}

	s.logger.InfoContext(ctx, "API key created",
		logger.KeyID(key.ID.String()),
		logger.OwnerID(key.OwnerID.String()),
		logger.KeyPrefix(key.KeyPrefix),
		logger.Component("apikey"),
	)

	return &CreateResult{Key: key, RawKey: raw}, nil
}

// Validate authenticates a presented raw key. It rehashes the candidate,
// looks the record up by hash, enforces status and expiry, and delegates to
// the fixed-window rate limiter before recording the use.
//
// Expiry is lazy: the first validation past ExpiresAt revokes the key and
// returns ErrKeyExpired; later attempts see ErrInvalidKey like any other
// revoked key.
func (s *Service) Validate(ctx context.Context, rawKey string) (*Key, error) {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return nil, ErrInvalidKey
	}

	key, err := s.storage.GetKeyByHash(ctx, keygen.HashAPIKey(rawKey))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrInvalidKey
		}
		return nil, fmt.Errorf("failed to look up API key: %w", err)
	}
	if key.Status != StatusActive {
		return nil, ErrInvalidKey
	}

	now := s.now()
	if key.IsExpired(now) {
		if err := s.storage.UpdateKeyStatus(ctx, key.ID, StatusRevoked); err != nil {
			s.logger.ErrorContext(ctx, "failed to revoke expired API key",
				logger.KeyID(key.ID.String()),
				logger.Error(err),
				logger.Component("apikey"),
			)
		}
		return nil, ErrKeyExpired
	}

	prev := key.Window
	res := s.window.Check(&key.Window, key.RateLimitPerHour, now)
	if !res.Allowed {
		return nil, ratelimit.ErrRateLimitExceeded
	}

	if err := s.storage.ApplyUsage(ctx, key.ID, prev, key.Window, now); err != nil {
		// A lost conditional write means another request won the slot;
		// surface it instead of retrying, which could double-count.
		return nil, fmt.Errorf("failed to record API key use: %w", err)
	}

	key.LastUsedAt = &now
	return key, nil
}

// Regenerate rotates the key's secret in place: fresh token, fresh prefix,
// counters reset, same id. The previous raw token is immediately and
// permanently invalid.
func (s *Service) Regenerate(ctx context.Context, keyID, ownerID uuid.UUID) (*CreateResult, error) {
	key, err := s.ownedKey(ctx, keyID, ownerID)
	if err != nil {
		return nil, err
	}

	raw, prefix, err := keygen.APIKey()
	if err != nil {
		return nil, err
	}
	hash := keygen.HashAPIKey(raw)

	if err := s.storage.ReplaceKeySecret(ctx, key.ID, hash, prefix); err != nil {
		return nil, fmt.Errorf("failed to rotate API key: %w", err)
	}

	key.KeyHash = hash
	key.KeyPrefix = prefix
	key.Window = ratelimit.WindowState{Used: 0, StartedAt: s.now()}

	s.logger.InfoContext(ctx, "API key rotated",
		logger.KeyID(key.ID.String()),
		logger.OwnerID(ownerID.String()),
		logger.KeyPrefix(prefix),
		logger.Component("apikey"),
	)

	return &CreateResult{Key: key, RawKey: raw}, nil
}

// Deactivate soft-revokes the key. Idempotent: deactivating a revoked key
// succeeds without effect.
func (s *Service) Deactivate(ctx context.Context, keyID, ownerID uuid.UUID) error {
	key, err := s.ownedKey(ctx, keyID, ownerID)
	if err != nil {
		return err
	}
	if key.Status == StatusRevoked {
		return nil
	}

	if err := s.storage.UpdateKeyStatus(ctx, key.ID, StatusRevoked); err != nil {
		return fmt.Errorf("failed to deactivate API key: %w", err)
	}

	s.logger.InfoContext(ctx, "API key deactivated",
		logger.KeyID(key.ID.String()),
		logger.OwnerID(ownerID.String()),
		logger.Component("apikey"),
	)
	return nil
}

// Delete removes the key record permanently.
func (s *Service) Delete(ctx context.Context, keyID, ownerID uuid.UUID) error {
	key, err := s.ownedKey(ctx, keyID, ownerID)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteKey(ctx, key.ID); err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}

	s.logger.InfoContext(ctx, "API key deleted",
		logger.KeyID(key.ID.String()),
		logger.OwnerID(ownerID.String()),
		logger.Component("apikey"),
	)
	return nil
}

// List returns the owner's keys. Raw tokens are never part of the result;
// only prefixes identify them.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Key, error) {
	keys, err := s.storage.ListKeysByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	return keys, nil
}

func (s *Service) ownedKey(ctx context.Context, keyID, ownerID uuid.UUID) (*Key, error) {
	key, err := s.storage.GetKeyByID(ctx, keyID)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to load API key: %w", err)
	}
	if key.OwnerID != ownerID {
		return nil, ErrUnauthorized
	}
	return key, nil
}
