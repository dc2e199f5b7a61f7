// Package qrcode renders TOTP provisioning URIs as QR code images for
// authenticator-app enrollment.
//
// It wraps github.com/skip2/go-qrcode with the two output forms the MFA flow
// needs: raw PNG bytes and a base64 data URI for direct embedding in HTML.
package qrcode
