package tier

import "errors"

var (
	ErrUnknownTier = errors.New("unknown tier")
	ErrInvalidTier = errors.New("invalid tier definition")
)
