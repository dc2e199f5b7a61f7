package mfa

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists credentials in the mfa_credentials table (see the
// migrations directory). Consume operations are single conditional UPDATEs,
// so concurrent requests racing on one credential cannot double-spend a
// backup code or replay a TOTP step.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a credential store over a pgx connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetCredential(ctx context.Context, userID uuid.UUID) (*Credential, error) {
	const query = `
		SELECT user_id, secret, enabled, backup_code_hashes, last_used_step, created_at, updated_at
		FROM mfa_credentials
		WHERE user_id = $1`

	cred := &Credential{}
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&cred.UserID,
		&cred.Secret,
		&cred.Enabled,
		&cred.BackupCodeHashes,
		&cred.LastUsedStep,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to load MFA credential: %w", err)
	}
	return cred, nil
}

func (s *PostgresStore) SaveCredential(ctx context.Context, cred *Credential) error {
	const query = `
		INSERT INTO mfa_credentials (user_id, secret, enabled, backup_code_hashes, last_used_step, created_at, updated_at)
		VALUES ($1, $2, false, $3, 0, now(), now())
		ON CONFLICT (user_id) DO UPDATE SET
			secret = EXCLUDED.secret,
			enabled = false,
			backup_code_hashes = EXCLUDED.backup_code_hashes,
			last_used_step = 0,
			updated_at = now()`

	if _, err := s.pool.Exec(ctx, query, cred.UserID, cred.Secret, cred.BackupCodeHashes); err != nil {
		return fmt.Errorf("failed to save MFA credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Enable(ctx context.Context, userID uuid.UUID, step int64) error {
	const query = `
		UPDATE mfa_credentials
		SET enabled = true, last_used_step = GREATEST(last_used_step, $2), updated_at = now()
		WHERE user_id = $1`

	tag, err := s.pool.Exec(ctx, query, userID, step)
	if err != nil {
		return fmt.Errorf("failed to enable MFA credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

func (s *PostgresStore) ConsumeTOTPStep(ctx context.Context, userID uuid.UUID, step int64) (bool, error) {
	// The last_used_step guard makes the advance atomic: of two racing
	// logins with the same code, exactly one update matches.
	const query = `
		UPDATE mfa_credentials
		SET last_used_step = $2, updated_at = now()
		WHERE user_id = $1 AND last_used_step < $2`

	tag, err := s.pool.Exec(ctx, query, userID, step)
	if err != nil {
		return false, fmt.Errorf("failed to consume TOTP step: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) ConsumeBackupCode(ctx context.Context, userID uuid.UUID, hash string) (bool, error) {
	// Membership check and removal in one statement; a concurrent consumer
	// of the same hash leaves nothing for this update to match.
	const query = `
		UPDATE mfa_credentials
		SET backup_code_hashes = array_remove(backup_code_hashes, $2), updated_at = now()
		WHERE user_id = $1 AND $2 = ANY(backup_code_hashes)`

	tag, err := s.pool.Exec(ctx, query, userID, hash)
	if err != nil {
		return false, fmt.Errorf("failed to consume backup code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) ReplaceBackupCodes(ctx context.Context, userID uuid.UUID, hashes []string) error {
	const query = `
		UPDATE mfa_credentials
		SET backup_code_hashes = $2, updated_at = now()
		WHERE user_id = $1`

	tag, err := s.pool.Exec(ctx, query, userID, hashes)
	if err != nil {
		return fmt.Errorf("failed to replace backup codes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteCredential(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM mfa_credentials WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete MFA credential: %w", err)
	}
	return nil
}
