package apikey

import "errors"

var (
	// ErrKeyNotFound is the storage sentinel for an absent key id.
	ErrKeyNotFound = errors.New("API key not found")

	// ErrInvalidKey covers every validation failure that must stay
	// indistinguishable to the caller: unknown hash, revoked status.
	ErrInvalidKey = errors.New("invalid API key")

	// ErrKeyExpired is returned once for a key whose expiry has passed;
	// the key is revoked as a side effect and subsequent validations see
	// ErrInvalidKey.
	ErrKeyExpired = errors.New("API key expired")

	// ErrKeyLimitExceeded rejects creation beyond the tier's key quota.
	ErrKeyLimitExceeded = errors.New("API key limit for tier exceeded")

	// ErrUnauthorized rejects operations on a key owned by someone else.
	ErrUnauthorized = errors.New("API key does not belong to caller")

	// ErrUsageConflict reports a lost conditional usage write; the caller
	// surfaces it rather than retrying, since a retry would double-count.
	ErrUsageConflict = errors.New("concurrent usage update conflict")

	// ErrInvalidParams rejects creation with missing owner or name.
	ErrInvalidParams = errors.New("invalid API key parameters")
)
