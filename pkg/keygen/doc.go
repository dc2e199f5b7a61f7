// Package keygen generates the random credential material used across the
// toolkit: TOTP secret keys, single-use backup codes, and opaque API keys.
//
// All generators read from crypto/rand. Nothing in this package persists or
// hashes anything except HashAPIKey, which produces the SHA-256 digest that
// is the only stored form of a raw API key.
//
// # Usage
//
//	secret, err := keygen.TOTPSecret()
//	codes, err := keygen.BackupCodes(8)
//	raw, prefix, err := keygen.APIKey()
//	hash := keygen.HashAPIKey(raw)
//
// A raw API key has the form "ck_<64 hex chars>" carrying 256 bits of
// entropy. The prefix is the first 12 characters of the raw key and is safe
// to display; it identifies a key without exposing the secret.
package keygen
