package apikey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/credkit/pkg/ratelimit"
)

// PostgresStore persists keys in the api_keys table (see the migrations
// directory). Usage updates are single conditional statements guarded by
// the previous window state.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a key store over a pgx connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const keyColumns = `id, owner_id, name, key_hash, key_prefix, scopes, status,
	rate_limit_per_hour, requests_used, window_started_at, last_used_at, created_at, expires_at`

func (s *PostgresStore) CreateKey(ctx context.Context, key *Key) error {
	const query = `
		INSERT INTO api_keys (` + keyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.pool.Exec(ctx, query,
		key.ID, key.OwnerID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes,
		string(key.Status), key.RateLimitPerHour, key.Window.Used, key.Window.StartedAt,
		key.LastUsedAt, key.CreatedAt, key.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetKeyByID(ctx context.Context, id uuid.UUID) (*Key, error) {
	return s.getKey(ctx, `SELECT `+keyColumns+` FROM api_keys WHERE id = $1`, id)
}

func (s *PostgresStore) GetKeyByHash(ctx context.Context, hash string) (*Key, error) {
	return s.getKey(ctx, `SELECT `+keyColumns+` FROM api_keys WHERE key_hash = $1`, hash)
}

func (s *PostgresStore) getKey(ctx context.Context, query string, arg any) (*Key, error) {
	key := &Key{}
	var status string
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&key.ID, &key.OwnerID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.Scopes, &status,
		&key.RateLimitPerHour, &key.Window.Used, &key.Window.StartedAt,
		&key.LastUsedAt, &key.CreatedAt, &key.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to load API key: %w", err)
	}
	key.Status = Status(status)
	return key, nil
}

func (s *PostgresStore) ListKeysByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Key, error) {
	const query = `SELECT ` + keyColumns + ` FROM api_keys WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	defer rows.Close()

	var out []*Key
	for rows.Next() {
		key := &Key{}
		var status string
		if err := rows.Scan(
			&key.ID, &key.OwnerID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.Scopes, &status,
			&key.RateLimitPerHour, &key.Window.Used, &key.Window.StartedAt,
			&key.LastUsedAt, &key.CreatedAt, &key.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan API key: %w", err)
		}
		key.Status = Status(status)
		out = append(out, key)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountActiveKeys(ctx context.Context, ownerID uuid.UUID) (int, error) {
	const query = `SELECT count(*) FROM api_keys WHERE owner_id = $1 AND status = 'active'`

	var count int
	if err := s.pool.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active API keys: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) UpdateKeyStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := s.pool.Exec(ctx, `UPDATE api_keys SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update API key status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (s *PostgresStore) ReplaceKeySecret(ctx context.Context, id uuid.UUID, hash, prefix string) error {
	const query = `
		UPDATE api_keys
		SET key_hash = $2, key_prefix = $3, requests_used = 0, window_started_at = now()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, hash, prefix)
	if err != nil {
		return fmt.Errorf("failed to rotate API key secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (s *PostgresStore) ApplyUsage(ctx context.Context, id uuid.UUID, prev, next ratelimit.WindowState, lastUsedAt time.Time) error {
	// Guarded by the previous counter state; a racing validation that
	// committed first leaves nothing for this update to match.
	const query = `
		UPDATE api_keys
		SET requests_used = $2, window_started_at = $3, last_used_at = $4
		WHERE id = $1 AND requests_used = $5 AND window_started_at = $6`

	tag, err := s.pool.Exec(ctx, query, id, next.Used, next.StartedAt, lastUsedAt, prev.Used, prev.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to record API key use: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUsageConflict
	}
	return nil
}

func (s *PostgresStore) DeleteKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}
	return nil
}
