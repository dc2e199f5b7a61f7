package mfa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/credkit/pkg/backupcode"
	"github.com/dmitrymomot/credkit/pkg/keygen"
	"github.com/dmitrymomot/credkit/pkg/logger"
	"github.com/dmitrymomot/credkit/pkg/qrcode"
	"github.com/dmitrymomot/credkit/pkg/ratelimit"
	"github.com/dmitrymomot/credkit/pkg/totp"
)

const (
	// DefaultIssuer appears in authenticator apps when none is configured.
	DefaultIssuer = "credkit"

	attemptKeyPrefix = "mfa:attempts:"
)

// Service orchestrates the MFA credential state machine:
// no credential -> pending verification -> enabled, and back via disable.
type Service struct {
	storage   Storage
	passwords PasswordVerifier
	vault     *backupcode.Vault
	cipher    SecretCipher
	attempts  *ratelimit.Limiter
	logger    *slog.Logger

	issuer          string
	backupCodeCount int
	tolerance       int
	qrSize          int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.logger = log }
}

// WithIssuer sets the issuer name shown in authenticator apps.
func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

// WithBackupCodeCount sets how many backup codes each setup issues.
func WithBackupCodeCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.backupCodeCount = n
		}
	}
}

// WithHasher sets the slow-hash capability used for backup codes.
func WithHasher(h backupcode.Hasher) Option {
	return func(s *Service) { s.vault = backupcode.NewVault(h) }
}

// WithSecretCipher enables at-rest encryption of stored TOTP secrets.
func WithSecretCipher(c SecretCipher) Option {
	return func(s *Service) { s.cipher = c }
}

// WithAttemptLimiter throttles login verification attempts per user.
func WithAttemptLimiter(l *ratelimit.Limiter) Option {
	return func(s *Service) { s.attempts = l }
}

// WithTolerance sets the accepted clock skew in 30-second steps.
func WithTolerance(tolerance int) Option {
	return func(s *Service) {
		if tolerance >= 0 {
			s.tolerance = tolerance
		}
	}
}

// NewService creates an MFA session manager over the given collaborators.
func NewService(storage Storage, passwords PasswordVerifier, opts ...Option) *Service {
	s := &Service{
		storage:         storage,
		passwords:       passwords,
		vault:           backupcode.NewVault(nil),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		issuer:          DefaultIssuer,
		backupCodeCount: keygen.DefaultBackupCodeCount,
		tolerance:       totp.DefaultTolerance,
		qrSize:          256,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Setup starts or restarts enrollment for a user. It generates a fresh
// secret and backup codes, persists them disabled, and returns the material
// the user needs: the secret, a provisioning URI, its QR rendering, and the
// plain backup codes. Re-running setup before verification replaces the
// pending credential; an enabled credential rejects with ErrAlreadyEnabled.
func (s *Service) Setup(ctx context.Context, userID uuid.UUID, email string) (*SetupResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errors.Join(ErrInvalidEmail, err)
	}

	current, err := s.storage.GetCredential(ctx, userID)
	if err != nil && !errors.Is(err, ErrCredentialNotFound) {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if current != nil && current.Enabled {
		return nil, ErrAlreadyEnabled
	}

	secret, err := keygen.TOTPSecret()
	if err != nil {
		return nil, err
	}

	codes, err := keygen.BackupCodes(s.backupCodeCount)
	if err != nil {
		return nil, err
	}
	hashes, err := s.vault.HashAll(codes)
	if err != nil {
		return nil, err
	}

	storedSecret := secret
	if s.cipher != nil {
		if storedSecret, err = s.cipher.Encrypt(secret); err != nil {
			return nil, fmt.Errorf("failed to protect secret: %w", err)
		}
	}

	now := time.Now()
	cred := &Credential{
		UserID:           userID,
		Secret:           storedSecret,
		Enabled:          false,
		BackupCodeHashes: hashes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.storage.SaveCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to save credential: %w", err)
	}

	uri, err := totp.URI(totp.URIParams{
		Secret:      secret,
		AccountName: email,
		Issuer:      s.issuer,
	})
	if err != nil {
		return nil, err
	}

	qr, err := qrcode.GenerateBase64Image(uri, s.qrSize)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "MFA setup initiated",
		logger.UserID(userID.String()),
		logger.Component("mfa"),
	)

	return &SetupResult{
		Secret:          secret,
		ProvisioningURI: uri,
		QRCode:          qr,
		BackupCodes:     codes,
	}, nil
}

// VerifyAndEnable confirms possession of the enrolled secret and flips the
// credential to enabled. The matching step is recorded so the same code
// cannot be replayed at login. A failed code leaves state unchanged and the
// caller may retry.
func (s *Service) VerifyAndEnable(ctx context.Context, userID uuid.UUID, code string) error {
	cred, err := s.storage.GetCredential(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return ErrSetupNotInitiated
		}
		return fmt.Errorf("failed to load credential: %w", err)
	}
	if cred.Enabled {
		return ErrAlreadyEnabled
	}

	secret, err := s.plainSecret(cred)
	if err != nil {
		return err
	}

	step, ok, err := totp.MatchingStep(secret, code, time.Now(), s.tolerance)
	if err != nil || !ok {
		return ErrInvalidCode
	}

	if err := s.storage.Enable(ctx, userID, step); err != nil {
		return fmt.Errorf("failed to enable MFA: %w", err)
	}

	s.logger.InfoContext(ctx, "MFA enabled",
		logger.UserID(userID.String()),
		logger.Component("mfa"),
	)
	return nil
}

// VerifyLogin checks a login-time code against an enabled credential. A TOTP
// code is tried first; on failure the code is treated as a backup code and
// consumed on match. Backup-code consumption mutates state even if the
// caller later discards the login.
func (s *Service) VerifyLogin(ctx context.Context, userID uuid.UUID, code string) error {
	if s.attempts != nil {
		res, err := s.attempts.Allow(ctx, attemptKeyPrefix+userID.String())
		if err != nil {
			return fmt.Errorf("attempt throttling failed: %w", err)
		}
		if !res.Allowed {
			return ErrTooManyAttempts
		}
	}

	cred, err := s.storage.GetCredential(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return ErrNotEnabled
		}
		return fmt.Errorf("failed to load credential: %w", err)
	}
	if !cred.Enabled {
		return ErrNotEnabled
	}

	secret, err := s.plainSecret(cred)
	if err != nil {
		return err
	}

	step, ok, err := totp.MatchingStep(secret, code, time.Now(), s.tolerance)
	if err == nil && ok {
		advanced, err := s.storage.ConsumeTOTPStep(ctx, userID, step)
		if err != nil {
			return fmt.Errorf("failed to record TOTP use: %w", err)
		}
		if !advanced {
			// Replay within the validity window.
			return ErrInvalidCode
		}
		return nil
	}

	// Fall back to backup codes for anything that is not a fresh TOTP match.
	hash, matched, err := s.vault.Match(code, cred.BackupCodeHashes)
	if err != nil || !matched {
		return ErrInvalidCode
	}

	consumed, err := s.storage.ConsumeBackupCode(ctx, userID, hash)
	if err != nil {
		return fmt.Errorf("failed to consume backup code: %w", err)
	}
	if !consumed {
		return ErrInvalidCode
	}

	s.logger.InfoContext(ctx, "backup code consumed",
		logger.UserID(userID.String()),
		logger.Component("mfa"),
	)
	return nil
}

// Disable clears the credential entirely after password re-authentication.
// On password mismatch nothing changes.
func (s *Service) Disable(ctx context.Context, userID uuid.UUID, password string) error {
	if err := s.passwords.VerifyPassword(ctx, userID, password); err != nil {
		return ErrInvalidCredential
	}

	if _, err := s.storage.GetCredential(ctx, userID); err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return ErrNotEnabled
		}
		return fmt.Errorf("failed to load credential: %w", err)
	}

	if err := s.storage.DeleteCredential(ctx, userID); err != nil {
		return fmt.Errorf("failed to disable MFA: %w", err)
	}

	s.logger.InfoContext(ctx, "MFA disabled",
		logger.UserID(userID.String()),
		logger.Component("mfa"),
	)
	return nil
}

// RegenerateBackupCodes replaces the backup code set atomically after
// password re-authentication. Previously issued codes become invalid all at
// once; the new plain codes are returned exactly once.
func (s *Service) RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, password string) ([]string, error) {
	cred, err := s.storage.GetCredential(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return nil, ErrNotEnabled
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if !cred.Enabled {
		return nil, ErrNotEnabled
	}

	if err := s.passwords.VerifyPassword(ctx, userID, password); err != nil {
		return nil, ErrInvalidCredential
	}

	codes, err := keygen.BackupCodes(s.backupCodeCount)
	if err != nil {
		return nil, err
	}
	hashes, err := s.vault.HashAll(codes)
	if err != nil {
		return nil, err
	}

	if err := s.storage.ReplaceBackupCodes(ctx, userID, hashes); err != nil {
		return nil, fmt.Errorf("failed to replace backup codes: %w", err)
	}

	s.logger.InfoContext(ctx, "backup codes regenerated",
		logger.UserID(userID.String()),
		logger.Component("mfa"),
	)
	return codes, nil
}

// IsEnabled reports whether the user has an enabled MFA credential.
func (s *Service) IsEnabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	cred, err := s.storage.GetCredential(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load credential: %w", err)
	}
	return cred.Enabled, nil
}

func (s *Service) plainSecret(cred *Credential) (string, error) {
	if s.cipher == nil {
		return cred.Secret, nil
	}
	secret, err := s.cipher.Decrypt(cred.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to unprotect secret: %w", err)
	}
	return secret, nil
}
