package backupcode

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// Hasher is the slow-hash capability used for backup codes. Implementations
// must produce salted hashes: hashing the same code twice yields different
// outputs, and only Compare can confirm a match.
type Hasher interface {
	Hash(code string) (string, error)
	Compare(code, hash string) bool
}

// BcryptHasher hashes codes with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt-backed Hasher. Costs outside the valid
// bcrypt range fall back to DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)
	if err != nil {
		return "", errors.Join(ErrFailedToHashCode, err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
