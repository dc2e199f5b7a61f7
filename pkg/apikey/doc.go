// Package apikey manages the lifecycle of opaque API keys: issuance under
// tier quotas, hash-based validation, fixed-window rate limiting, in-place
// rotation, soft revocation, and deletion.
//
// A raw key ("ck_" plus 64 hex characters, 256 bits of entropy) is returned
// to the caller exactly once, at creation or rotation. The store holds only
// its SHA-256 hash and a 12-character display prefix; the raw key is never
// retrievable or re-derivable afterward.
//
// Validation rehashes the presented key, looks the record up by hash,
// enforces status and expiry, and counts the request against the key's
// hourly window before reporting success. Expiry is enforced lazily: the
// first validation past the deadline revokes the key. Rate-limit denials
// surface as ratelimit.ErrRateLimitExceeded, deliberately distinct from
// ErrInvalidKey so clients can tell throttling from a bad credential.
//
// # Usage
//
//	svc := apikey.NewService(store)
//
//	res, err := svc.Create(ctx, apikey.CreateParams{
//	    OwnerID: ownerID,
//	    Name:    "ci-deploy",
//	    TierID:  "pro",
//	    Scopes:  []string{"deploys.*"},
//	})
//	// res.RawKey is shown to the user once and never again
//
//	key, err := svc.Validate(ctx, presentedKey)
//	if err == nil && key.HasScopes("deploys.create") {
//	    // authenticated and authorized
//	}
//
// Storage is injected; the package ships an in-memory implementation plus
// PostgreSQL and MongoDB stores whose usage updates are conditional writes,
// keeping the rate-limit counter race-free across processes.
package apikey
