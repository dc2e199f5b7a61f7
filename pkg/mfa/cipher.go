package mfa

import "github.com/dmitrymomot/credkit/pkg/totp"

// AESSecretCipher protects stored TOTP secrets with AES-256-GCM.
type AESSecretCipher struct {
	key []byte
}

// NewAESSecretCipher creates a cipher over a 32-byte AES-256 key, typically
// obtained from totp.LoadEncryptionKey.
func NewAESSecretCipher(key []byte) (*AESSecretCipher, error) {
	if len(key) != totp.AESKeySize {
		return nil, totp.ErrInvalidEncryptionKeyLength
	}
	return &AESSecretCipher{key: key}, nil
}

func (c *AESSecretCipher) Encrypt(plainText string) (string, error) {
	return totp.EncryptSecret(plainText, c.key)
}

func (c *AESSecretCipher) Decrypt(cipherText string) (string, error) {
	return totp.DecryptSecret(cipherText, c.key)
}
