package keygen

import "errors"

var (
	ErrFailedToGenerateSecret     = errors.New("failed to generate TOTP secret")
	ErrFailedToGenerateBackupCode = errors.New("failed to generate backup code")
	ErrFailedToGenerateAPIKey     = errors.New("failed to generate API key")
	ErrInvalidCodeCount           = errors.New("invalid backup code count, must be greater than 0")
)
