// Package backupcode hashes and verifies single-use MFA recovery codes.
//
// Codes are hashed with a slow, salted password-hashing primitive (bcrypt by
// default) so that a leaked credential store does not yield usable codes.
// The hashing capability is an interface configured once with its cost
// parameter, so callers never touch the hashing library directly.
//
// The vault is pure with respect to storage: VerifyAndConsume takes the
// stored hash list and returns the updated list, leaving persistence to the
// orchestrating service. Consumption is at-most-once per issuance cycle:
// a hash removed from the list can only come back via full regeneration.
//
// Verification cost scales with the number of stored hashes (each bcrypt
// comparison takes tens of milliseconds at the default cost), so callers
// must never invoke it while holding a lock shared across requests.
//
// # Usage
//
//	vault := backupcode.NewVault(backupcode.NewBcryptHasher(backupcode.DefaultCost))
//
//	hashes, err := vault.HashAll(codes)          // at issuance
//	rest, ok, err := vault.VerifyAndConsume(code, hashes) // at login
//	if ok {
//	    // persist rest as the new hash list
//	}
package backupcode
