package totp_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/totp"
)

func TestEncryptDecryptSecret(t *testing.T) {
	t.Parallel()

	key, err := totp.GenerateEncryptionKey()
	require.NoError(t, err)
	require.Len(t, key, totp.AESKeySize)

	const secret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

	cipherText, err := totp.EncryptSecret(secret, key)
	require.NoError(t, err)
	assert.NotEqual(t, secret, cipherText)

	// Nonce randomization: encrypting twice never repeats ciphertext.
	again, err := totp.EncryptSecret(secret, key)
	require.NoError(t, err)
	assert.NotEqual(t, cipherText, again)

	plainText, err := totp.DecryptSecret(cipherText, key)
	require.NoError(t, err)
	assert.Equal(t, secret, plainText)
}

func TestEncryptSecret_InvalidKey(t *testing.T) {
	t.Parallel()

	_, err := totp.EncryptSecret("secret", []byte("short"))
	assert.ErrorIs(t, err, totp.ErrInvalidEncryptionKeyLength)
}

func TestDecryptSecret_Tampered(t *testing.T) {
	t.Parallel()

	key, err := totp.GenerateEncryptionKey()
	require.NoError(t, err)

	cipherText, err := totp.EncryptSecret("secret", key)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(cipherText)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = totp.DecryptSecret(tampered, key)
	assert.ErrorIs(t, err, totp.ErrFailedToDecryptSecret)

	_, err = totp.DecryptSecret("AA", key)
	assert.ErrorIs(t, err, totp.ErrFailedToDecryptSecret)
}

func TestGenerateEncodedEncryptionKey(t *testing.T) {
	t.Parallel()

	encoded, err := totp.GenerateEncodedEncryptionKey()
	require.NoError(t, err)

	key, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Len(t, key, totp.AESKeySize)
}
