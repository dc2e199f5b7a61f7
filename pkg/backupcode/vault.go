package backupcode

import (
	"slices"
	"strings"
)

// Vault hashes backup codes at issuance and verifies candidates against the
// stored hash list, consuming the matching entry.
type Vault struct {
	hasher Hasher
}

// NewVault creates a vault over the given hashing capability. A nil hasher
// falls back to bcrypt at DefaultCost.
func NewVault(hasher Hasher) *Vault {
	if hasher == nil {
		hasher = NewBcryptHasher(DefaultCost)
	}
	return &Vault{hasher: hasher}
}

// HashAll hashes every code in order, returning the list to persist.
func (v *Vault) HashAll(codes []string) ([]string, error) {
	hashes := make([]string, len(codes))
	for i, code := range codes {
		hash, err := v.hasher.Hash(Normalize(code))
		if err != nil {
			return nil, err
		}
		hashes[i] = hash
	}
	return hashes, nil
}

// Match returns the stored hash the candidate verifies against, if any.
// Callers that need atomic consumption pass the returned hash to their
// store's conditional-remove operation instead of rewriting the whole list.
func (v *Vault) Match(candidate string, hashes []string) (hash string, ok bool, err error) {
	candidate = Normalize(candidate)
	if candidate == "" {
		return "", false, ErrEmptyCode
	}

	for _, h := range hashes {
		if v.hasher.Compare(candidate, h) {
			return h, true, nil
		}
	}
	return "", false, nil
}

// VerifyAndConsume checks the candidate against each stored hash. On the
// first match it returns the hash list with that entry removed and
// consumed=true; the caller persists the returned list. Without a match the
// original list is returned unchanged with consumed=false.
func (v *Vault) VerifyAndConsume(candidate string, hashes []string) (remaining []string, consumed bool, err error) {
	hash, ok, err := v.Match(candidate, hashes)
	if err != nil || !ok {
		return hashes, false, err
	}
	i := slices.Index(hashes, hash)
	return slices.Delete(slices.Clone(hashes), i, i+1), true, nil
}

// Normalize strips separators and whitespace and uppercases a candidate so
// that "a1b2-c3d4 e5f6 0718" and "A1B2C3D4E5F60718" hash identically.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '_':
			return -1
		}
		return r
	}, code)
}
