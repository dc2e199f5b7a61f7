package mfa_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/credkit/pkg/backupcode"
	"github.com/dmitrymomot/credkit/pkg/mfa"
	"github.com/dmitrymomot/credkit/pkg/ratelimit"
	"github.com/dmitrymomot/credkit/pkg/totp"
)

const testPassword = "correct horse battery staple"

func newTestService(store mfa.Storage, opts ...mfa.Option) *mfa.Service {
	opts = append([]mfa.Option{
		mfa.WithIssuer("Acme"),
		mfa.WithHasher(backupcode.NewBcryptHasher(bcrypt.MinCost)),
	}, opts...)
	return mfa.NewService(store, &stubPasswordVerifier{password: testPassword}, opts...)
}

// enroll runs setup and enable for a fresh user, returning the setup result.
func enroll(t *testing.T, svc *mfa.Service, userID uuid.UUID) *mfa.SetupResult {
	t.Helper()
	ctx := context.Background()

	setup, err := svc.Setup(ctx, userID, "alice@example.com")
	require.NoError(t, err)

	code, err := totp.Generate(setup.Secret)
	require.NoError(t, err)
	require.NoError(t, svc.VerifyAndEnable(ctx, userID, code))
	return setup
}

func TestSetup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()
		store := mfa.NewMemoryStore()
		svc := newTestService(store)
		userID := uuid.New()

		setup, err := svc.Setup(ctx, userID, "Alice@Example.com ")
		require.NoError(t, err)
		assert.Len(t, setup.Secret, 32)
		assert.Contains(t, setup.ProvisioningURI, "otpauth://totp/Acme:alice@example.com")
		assert.Contains(t, setup.ProvisioningURI, "secret="+setup.Secret)
		assert.True(t, strings.HasPrefix(setup.QRCode, "data:image/png;base64,"))
		assert.Len(t, setup.BackupCodes, 8)

		enabled, err := svc.IsEnabled(ctx, userID)
		require.NoError(t, err)
		assert.False(t, enabled, "setup must leave the credential disabled")
	})

	t.Run("re-setup while pending replaces the secret", func(t *testing.T) {
		t.Parallel()
		store := mfa.NewMemoryStore()
		svc := newTestService(store)
		userID := uuid.New()

		first, err := svc.Setup(ctx, userID, "alice@example.com")
		require.NoError(t, err)
		second, err := svc.Setup(ctx, userID, "alice@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, first.Secret, second.Secret)

		// The replaced secret can no longer enable.
		staleCode, err := totp.Generate(first.Secret)
		require.NoError(t, err)
		freshCode, err := totp.Generate(second.Secret)
		require.NoError(t, err)
		if staleCode != freshCode {
			assert.ErrorIs(t, svc.VerifyAndEnable(ctx, userID, staleCode), mfa.ErrInvalidCode)
		}
		assert.NoError(t, svc.VerifyAndEnable(ctx, userID, freshCode))
	})

	t.Run("rejected when already enabled", func(t *testing.T) {
		t.Parallel()
		store := mfa.NewMemoryStore()
		svc := newTestService(store)
		userID := uuid.New()
		enroll(t, svc, userID)

		_, err := svc.Setup(ctx, userID, "alice@example.com")
		assert.ErrorIs(t, err, mfa.ErrAlreadyEnabled)
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(mfa.NewMemoryStore())

		_, err := svc.Setup(ctx, uuid.New(), "")
		assert.ErrorIs(t, err, mfa.ErrInvalidEmail)
		_, err = svc.Setup(ctx, uuid.New(), "not-an-email")
		assert.ErrorIs(t, err, mfa.ErrInvalidEmail)
	})
}

func TestVerifyAndEnable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no setup", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(mfa.NewMemoryStore())
		err := svc.VerifyAndEnable(ctx, uuid.New(), "123456")
		assert.ErrorIs(t, err, mfa.ErrSetupNotInitiated)
	})

	t.Run("wrong code leaves state, retry succeeds", func(t *testing.T) {
		t.Parallel()
		store := mfa.NewMemoryStore()
		svc := newTestService(store)
		userID := uuid.New()

		setup, err := svc.Setup(ctx, userID, "alice@example.com")
		require.NoError(t, err)

		good, err := totp.Generate(setup.Secret)
		require.NoError(t, err)
		bad := "000000"
		if bad == good {
			bad = "000001"
		}

		assert.ErrorIs(t, svc.VerifyAndEnable(ctx, userID, bad), mfa.ErrInvalidCode)
		enabled, err := svc.IsEnabled(ctx, userID)
		require.NoError(t, err)
		assert.False(t, enabled)

		require.NoError(t, svc.VerifyAndEnable(ctx, userID, good))
		enabled, err = svc.IsEnabled(ctx, userID)
		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("already enabled", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(mfa.NewMemoryStore())
		userID := uuid.New()
		setup := enroll(t, svc, userID)

		code, err := totp.Generate(setup.Secret)
		require.NoError(t, err)
		assert.ErrorIs(t, svc.VerifyAndEnable(ctx, userID, code), mfa.ErrAlreadyEnabled)
	})
}

func TestVerifyLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("not enabled", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(mfa.NewMemoryStore())
		userID := uuid.New()

		assert.ErrorIs(t, svc.VerifyLogin(ctx, userID, "123456"), mfa.ErrNotEnabled)

		_, err := svc.Setup(ctx, userID, "alice@example.com")
		require.NoError(t, err)
		assert.ErrorIs(t, svc.VerifyLogin(ctx, userID, "123456"), mfa.ErrNotEnabled)
	})

	t.Run("TOTP accepted once, replay rejected", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(mfa.NewMemoryStore())
		userID := uuid.New()
		setup := enroll(t, svc, userID)

		// Enable consumed the current step; use the next window's code,
		// which the +/-1 tolerance already accepts.
		code, err := totp.GenerateAt(setup.Secret, time.Now().Add(totp.DefaultPeriod*time.Second))
		require.NoError(t, err)

		require.NoError(t, svc.VerifyLogin(ctx, userID, code))
		assert.ErrorIs(t, svc.VerifyLogin(ctx, userID, code), mfa.ErrInvalidCode)
	})

	t.Run("backup code consumed exactly once", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(mfa.NewMemoryStore())
		userID := uuid.New()
		setup := enroll(t, svc, userID)

		code := setup.BackupCodes[0]
		require.NoError(t, svc.VerifyLogin(ctx, userID, code))
		assert.ErrorIs(t, svc.VerifyLogin(ctx, userID, code), mfa.ErrInvalidCode)

		// A different backup code still works.
		assert.NoError(t, svc.VerifyLogin(ctx, userID, setup.BackupCodes[1]))
	})

	t.Run("garbage code rejected", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(mfa.NewMemoryStore())
		userID := uuid.New()
		enroll(t, svc, userID)

		assert.ErrorIs(t, svc.VerifyLogin(ctx, userID, "definitely-wrong"), mfa.ErrInvalidCode)
	})

	t.Run("attempt throttling", func(t *testing.T) {
		t.Parallel()
		lim, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 2, Window: time.Minute})
		require.NoError(t, err)

		svc := newTestService(mfa.NewMemoryStore(), mfa.WithAttemptLimiter(lim))
		userID := uuid.New()
		enroll(t, svc, userID)

		// enroll does not go through VerifyLogin, so two attempts remain.
		assert.ErrorIs(t, svc.VerifyLogin(ctx, userID, "000000"), mfa.ErrInvalidCode)
		assert.ErrorIs(t, svc.VerifyLogin(ctx, userID, "000000"), mfa.ErrInvalidCode)
		assert.ErrorIs(t, svc.VerifyLogin(ctx, userID, "000000"), mfa.ErrTooManyAttempts)
	})
}

func TestDisable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestService(mfa.NewMemoryStore())
	userID := uuid.New()
	enroll(t, svc, userID)

	// Wrong password: no side effects.
	assert.ErrorIs(t, svc.Disable(ctx, userID, "wrong"), mfa.ErrInvalidCredential)
	enabled, err := svc.IsEnabled(ctx, userID)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, svc.Disable(ctx, userID, testPassword))
	enabled, err = svc.IsEnabled(ctx, userID)
	require.NoError(t, err)
	assert.False(t, enabled)

	// The credential is gone entirely.
	assert.ErrorIs(t, svc.Disable(ctx, userID, testPassword), mfa.ErrNotEnabled)
	assert.ErrorIs(t, svc.VerifyAndEnable(ctx, userID, "123456"), mfa.ErrSetupNotInitiated)
}

func TestRegenerateBackupCodes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requires enabled credential", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(mfa.NewMemoryStore())
		userID := uuid.New()

		_, err := svc.RegenerateBackupCodes(ctx, userID, testPassword)
		assert.ErrorIs(t, err, mfa.ErrNotEnabled)

		_, err = svc.Setup(ctx, userID, "alice@example.com")
		require.NoError(t, err)
		_, err = svc.RegenerateBackupCodes(ctx, userID, testPassword)
		assert.ErrorIs(t, err, mfa.ErrNotEnabled)
	})

	t.Run("requires password", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(mfa.NewMemoryStore())
		userID := uuid.New()
		enroll(t, svc, userID)

		_, err := svc.RegenerateBackupCodes(ctx, userID, "wrong")
		assert.ErrorIs(t, err, mfa.ErrInvalidCredential)
	})

	t.Run("replaces the whole set", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(mfa.NewMemoryStore())
		userID := uuid.New()
		setup := enroll(t, svc, userID)

		fresh, err := svc.RegenerateBackupCodes(ctx, userID, testPassword)
		require.NoError(t, err)
		require.Len(t, fresh, 8)

		// Old codes are dead, new codes work.
		assert.ErrorIs(t, svc.VerifyLogin(ctx, userID, setup.BackupCodes[0]), mfa.ErrInvalidCode)
		assert.NoError(t, svc.VerifyLogin(ctx, userID, fresh[0]))
	})
}

func TestSecretCipher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	key, err := totp.GenerateEncryptionKey()
	require.NoError(t, err)
	cipher, err := mfa.NewAESSecretCipher(key)
	require.NoError(t, err)

	store := mfa.NewMemoryStore()
	svc := newTestService(store, mfa.WithSecretCipher(cipher))
	userID := uuid.New()

	setup, err := svc.Setup(ctx, userID, "alice@example.com")
	require.NoError(t, err)

	// The stored secret is ciphertext, not the enrollment secret.
	cred, err := store.GetCredential(ctx, userID)
	require.NoError(t, err)
	assert.NotEqual(t, setup.Secret, cred.Secret)

	code, err := totp.Generate(setup.Secret)
	require.NoError(t, err)
	assert.NoError(t, svc.VerifyAndEnable(ctx, userID, code))
}

func TestServiceStorageFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("setup surfaces save failure", func(t *testing.T) {
		t.Parallel()
		store := new(MockStorage)
		store.On("GetCredential", mock.Anything, mock.Anything).Return(nil, mfa.ErrCredentialNotFound)
		store.On("SaveCredential", mock.Anything, mock.Anything).Return(errors.New("db down"))

		svc := newTestService(store)
		_, err := svc.Setup(ctx, uuid.New(), "alice@example.com")
		require.Error(t, err)
		assert.NotErrorIs(t, err, mfa.ErrInvalidCode)
		store.AssertExpectations(t)
	})

	t.Run("login surfaces consume failure instead of retrying", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		secret := "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
		code, err := totp.Generate(secret)
		require.NoError(t, err)

		store := new(MockStorage)
		store.On("GetCredential", mock.Anything, userID).Return(&mfa.Credential{
			UserID:  userID,
			Secret:  secret,
			Enabled: true,
		}, nil)
		store.On("ConsumeTOTPStep", mock.Anything, userID, mock.Anything).Return(false, errors.New("db down"))

		svc := newTestService(store)
		err = svc.VerifyLogin(ctx, userID, code)
		require.Error(t, err)
		assert.NotErrorIs(t, err, mfa.ErrInvalidCode)
		store.AssertNumberOfCalls(t, "ConsumeTOTPStep", 1)
	})
}
