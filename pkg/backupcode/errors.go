package backupcode

import "errors"

var (
	ErrFailedToHashCode = errors.New("failed to hash backup code")
	ErrEmptyCode        = errors.New("empty backup code")
)
