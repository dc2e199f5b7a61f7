package mfa

import "errors"

var (
	// ErrCredentialNotFound is returned by storages when a user holds no
	// MFA credential. Services translate it into state errors below and it
	// never reaches API responses directly.
	ErrCredentialNotFound = errors.New("MFA credential not found")

	// ErrAlreadyEnabled rejects setup or enable on an already enabled credential.
	ErrAlreadyEnabled = errors.New("MFA is already enabled")

	// ErrSetupNotInitiated rejects enable before any setup produced a secret.
	ErrSetupNotInitiated = errors.New("MFA setup has not been initiated")

	// ErrNotEnabled rejects operations that require an enabled credential.
	ErrNotEnabled = errors.New("MFA is not enabled")

	// ErrInvalidCode is deliberately generic: it never distinguishes a wrong
	// code from a spent backup code or a replayed step, to avoid oracles.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrInvalidCredential covers failed password re-authentication with the
	// same generic wording for every cause.
	ErrInvalidCredential = errors.New("invalid credentials")

	// ErrInvalidEmail rejects setup with a missing or malformed email.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrTooManyAttempts surfaces attempt throttling on login verification.
	ErrTooManyAttempts = errors.New("too many verification attempts")
)
