package mfa

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Credential is the single MFA record a user may hold. The secret is stored
// in full (encrypted at rest when a cipher is configured) because TOTP codes
// must be recomputed from it; it can never be stored as a hash. Backup codes
// are stored only as slow hashes, each consumable exactly once.
type Credential struct {
	UserID           uuid.UUID
	Secret           string
	Enabled          bool
	BackupCodeHashes []string
	LastUsedStep     int64 // highest TOTP step already consumed; replay guard
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SetupResult carries everything the user needs to finish enrollment. The
// plain secret and backup codes appear here exactly once and are never
// retrievable afterward.
type SetupResult struct {
	Secret          string
	ProvisioningURI string
	QRCode          string // base64 data URI, PNG
	BackupCodes     []string
}

// Storage is the persistence collaborator. Implementations must make the
// consume operations per-record atomic: two concurrent logins racing on the
// same credential must not double-spend a backup code or replay a TOTP step.
type Storage interface {
	// GetCredential loads a user's credential. Returns ErrCredentialNotFound
	// when the user has none.
	GetCredential(ctx context.Context, userID uuid.UUID) (*Credential, error)

	// SaveCredential creates or fully replaces the user's credential.
	SaveCredential(ctx context.Context, cred *Credential) error

	// Enable flips the credential to enabled and records the TOTP step that
	// proved possession, so the same code cannot immediately log in.
	Enable(ctx context.Context, userID uuid.UUID, step int64) error

	// ConsumeTOTPStep advances the replay guard to step if it is newer than
	// the recorded one. Returns false when the step was already consumed.
	ConsumeTOTPStep(ctx context.Context, userID uuid.UUID, step int64) (bool, error)

	// ConsumeBackupCode removes a single stored hash. Returns false when the
	// hash is no longer present (already spent by a concurrent request).
	ConsumeBackupCode(ctx context.Context, userID uuid.UUID, hash string) (bool, error)

	// ReplaceBackupCodes swaps the stored hash list atomically.
	ReplaceBackupCodes(ctx context.Context, userID uuid.UUID, hashes []string) error

	// DeleteCredential removes the credential entirely.
	DeleteCredential(ctx context.Context, userID uuid.UUID) error
}

// PasswordVerifier is the external re-authentication capability required by
// destructive operations. Primary password authentication lives outside this
// package.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error
}

// SecretCipher protects stored secrets at rest. Optional; when absent,
// secrets are persisted as-is.
type SecretCipher interface {
	Encrypt(plainText string) (string, error)
	Decrypt(cipherText string) (string, error)
}
