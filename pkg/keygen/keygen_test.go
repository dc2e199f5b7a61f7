package keygen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/keygen"
)

func TestTOTPSecret(t *testing.T) {
	t.Parallel()

	secret, err := keygen.TOTPSecret()
	require.NoError(t, err)
	assert.Len(t, secret, 32)
	assert.Regexp(t, "^[A-Z2-7]+$", secret)

	other, err := keygen.TOTPSecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestBackupCodes(t *testing.T) {
	t.Parallel()

	t.Run("default count and format", func(t *testing.T) {
		t.Parallel()
		codes, err := keygen.BackupCodes(keygen.DefaultBackupCodeCount)
		require.NoError(t, err)
		require.Len(t, codes, 8)

		seen := make(map[string]struct{}, len(codes))
		for _, code := range codes {
			assert.Regexp(t, `^[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`, code)
			seen[code] = struct{}{}
		}
		assert.Len(t, seen, len(codes), "codes must be unique")
	})

	t.Run("invalid count", func(t *testing.T) {
		t.Parallel()
		_, err := keygen.BackupCodes(0)
		assert.ErrorIs(t, err, keygen.ErrInvalidCodeCount)
	})
}

func TestAPIKey(t *testing.T) {
	t.Parallel()

	raw, prefix, err := keygen.APIKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "ck_"))
	assert.Len(t, raw, 3+64)
	assert.Len(t, prefix, keygen.DisplayPrefixLength)
	assert.Equal(t, raw[:keygen.DisplayPrefixLength], prefix)

	// 256-bit entropy makes collisions negligible; any repeat here is a bug.
	seen := make(map[string]struct{})
	for range 100 {
		k, _, err := keygen.APIKey()
		require.NoError(t, err)
		_, dup := seen[k]
		require.False(t, dup)
		seen[k] = struct{}{}
	}
}

func TestHashAPIKey(t *testing.T) {
	t.Parallel()

	raw, _, err := keygen.APIKey()
	require.NoError(t, err)

	hash := keygen.HashAPIKey(raw)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, keygen.HashAPIKey(raw), "hash must be deterministic")
	assert.NotEqual(t, hash, keygen.HashAPIKey(raw+"x"))
}
