// Package totp implements the RFC 6238 time-based one-time password
// algorithm: code generation, time-window validation, provisioning URI
// construction, and AES-256-GCM helpers for persisting secrets at rest.
//
// The engine is stateless. Every operation takes the secret and, where
// relevant, an explicit time, so callers own all credential state and the
// package stays trivially testable.
//
// # Usage
//
// Enrolling a user:
//
//	secret, _ := keygen.TOTPSecret()
//
//	uri, _ := totp.URI(totp.URIParams{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	    Issuer:      "Acme",
//	})
//	// render uri as a QR code for the authenticator app
//
// Validating a code later:
//
//	ok, err := totp.Validate(secret, "123456")
//
// Validate accepts the previous, current, and next 30-second windows to
// tolerate clock drift. ValidateAt exposes the time and tolerance for tests
// and for callers with stricter requirements. MatchingStep additionally
// reports which window a valid code belongs to, which lets callers reject a
// replayed code before its window expires.
//
// # Error Handling
//
// Exported operations return errors wrapped with errors.Join; inspect them
// with errors.Is against the package sentinels such as ErrInvalidSecret and
// ErrInvalidOTP. A well-formed code that simply does not match yields
// (false, nil), not an error.
//
// # See Also
//
//   - RFC 4226 – HMAC-Based One-Time Password (HOTP) Algorithm
//   - RFC 6238 – Time-Based One-Time Password (TOTP) Algorithm
package totp
