package keygen

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// APIKeyPrefix is the fixed scheme prefix of every raw API key.
	APIKeyPrefix = "ck"

	// DisplayPrefixLength is the number of leading characters of a raw API
	// key that are safe to show in dashboards and logs.
	DisplayPrefixLength = 12

	// DefaultBackupCodeCount matches the number of codes issued on MFA setup.
	DefaultBackupCodeCount = 8

	totpSecretBytes  = 20 // 160-bit secret (RFC 4226 recommendation)
	apiKeyEntropy    = 32 // 256-bit random part of an API key
	backupCodeLength = 8  // 64 bits per backup code
)

// TOTPSecret generates a new Base32-encoded secret key for TOTP enrollment.
// The result is always 32 characters of the RFC 4648 alphabet, no padding.
func TOTPSecret() (string, error) {
	secret := make([]byte, totpSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// BackupCodes generates n independently random single-use recovery codes.
// Each code is rendered as four uppercase hex groups of four separated by
// dashes, e.g. "A1B2-C3D4-E5F6-0718".
func BackupCodes(n int) ([]string, error) {
	if n < 1 {
		return nil, ErrInvalidCodeCount
	}

	codes := make([]string, n)
	for i := range n {
		buf := make([]byte, backupCodeLength)
		if _, err := rand.Read(buf); err != nil {
			return nil, errors.Join(ErrFailedToGenerateBackupCode, err)
		}
		raw := strings.ToUpper(hex.EncodeToString(buf))
		codes[i] = fmt.Sprintf("%s-%s-%s-%s", raw[0:4], raw[4:8], raw[8:12], raw[12:16])
	}
	return codes, nil
}

// APIKey generates a raw API key and its display prefix. The raw key is the
// secret in its entirety and is never stored; callers persist only
// HashAPIKey(raw) and the returned prefix.
func APIKey() (raw, prefix string, err error) {
	buf := make([]byte, apiKeyEntropy)
	if _, err := rand.Read(buf); err != nil {
		return "", "", errors.Join(ErrFailedToGenerateAPIKey, err)
	}
	raw = APIKeyPrefix + "_" + hex.EncodeToString(buf)
	return raw, raw[:DisplayPrefixLength], nil
}

// HashAPIKey returns the hex-encoded SHA-256 digest of a raw API key.
// Lookup hashing is deliberately a fast digest: the key itself carries
// 256 bits of entropy, so a slow password hash would add nothing but latency
// on every authenticated request.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
