package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultDigits    = 6      // Standard 6-digit TOTP codes
	DefaultPeriod    = 30     // 30-second validity window (RFC 6238 standard)
	DefaultTolerance = 1      // Accepted clock skew in 30-second steps
	DefaultAlgorithm = "SHA1" // HMAC-SHA1 algorithm (RFC 6238 standard)
)

var (
	// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
	ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	// validateCodeRegex enforces exactly six ASCII digits before any HMAC work
	validateCodeRegex = regexp.MustCompile(`^\d{6}$`)
)

// Step returns the RFC 6238 time step for the given moment: the number of
// whole 30-second intervals since the Unix epoch.
func Step(t time.Time) int64 {
	return t.Unix() / int64(DefaultPeriod)
}

// Generate produces the TOTP code for the current 30-second window.
// The secret must be a valid Base32-encoded string.
func Generate(secret string) (string, error) {
	return GenerateAt(secret, time.Now())
}

// GenerateAt produces the TOTP code for the 30-second window containing t.
// Useful for tests and for generating codes for specific moments.
func GenerateAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	code := GenerateHOTP(key, Step(t), DefaultDigits)
	return fmt.Sprintf("%0*d", DefaultDigits, code), nil
}

// Validate checks a user-supplied code against the current time window with
// the default +/-1 step tolerance.
func Validate(secret, code string) (bool, error) {
	return ValidateAt(secret, code, time.Now(), DefaultTolerance)
}

// ValidateAt checks a code against the window containing t, accepting steps
// in [-tolerance, +tolerance] to absorb clock drift (30 seconds per unit).
//
// Malformed candidates are rejected before any HMAC is computed. The final
// string comparison is constant-time; no broader timing guarantee is made.
func ValidateAt(secret, code string, t time.Time, tolerance int) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !validateCodeRegex.MatchString(code) {
		return false, ErrInvalidOTP
	}
	if tolerance < 0 {
		tolerance = 0
	}

	step := Step(t)
	for i := -tolerance; i <= tolerance; i++ {
		candidate := fmt.Sprintf("%0*d", DefaultDigits, GenerateHOTP(key, step+int64(i), DefaultDigits))
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(code)) == 1 {
			return true, nil
		}
	}
	return false, nil
}

// MatchingStep reports which time step around t a valid code belongs to.
// Returns the step and true on a match, or 0 and false when the code does
// not verify. Callers use the step to reject replays of an already consumed
// code within its validity window.
func MatchingStep(secret, code string, t time.Time, tolerance int) (int64, bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return 0, false, err
	}

	code = strings.TrimSpace(code)
	if !validateCodeRegex.MatchString(code) {
		return 0, false, ErrInvalidOTP
	}
	if tolerance < 0 {
		tolerance = 0
	}

	step := Step(t)
	for i := -tolerance; i <= tolerance; i++ {
		candidate := fmt.Sprintf("%0*d", DefaultDigits, GenerateHOTP(key, step+int64(i), DefaultDigits))
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(code)) == 1 {
			return step + int64(i), true, nil
		}
	}
	return 0, false, nil
}

// GenerateHOTP implements the RFC 4226 HMAC-based One-Time Password
// algorithm, converting a counter value into a numeric code with HMAC-SHA1.
func GenerateHOTP(key []byte, counter int64, digits int) int {
	// Counter is fed to the HMAC as a big-endian 8-byte value (RFC 4226)
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter = counter >> 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	hash := mac.Sum(nil)

	// Dynamic truncation: the low nibble of the final byte selects a 4-byte
	// window, whose high bit is masked off to keep the value positive.
	offset := hash[len(hash)-1] & 0x0f
	code := (int(hash[offset]&0x7f) << 24) |
		(int(hash[offset+1]&0xff) << 16) |
		(int(hash[offset+2]&0xff) << 8) |
		(int(hash[offset+3] & 0xff))

	return code % int(math.Pow10(digits))
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !ValidateSecretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}
