// Package mfa orchestrates the multi-factor authentication credential
// lifecycle: setup, verification, enablement, login-time checks, backup
// code regeneration, and disable.
//
// The state machine has three states. A user starts with no credential;
// Setup moves them to pending verification with a stored secret and hashed
// backup codes but enabled=false; VerifyAndEnable proves possession of the
// secret and flips the flag; Disable clears everything after password
// re-authentication. Setup may be re-run while pending (replacing the
// pending secret) but never over an enabled credential.
//
// Login-time verification tries a TOTP code first and falls back to backup
// codes, consuming the matching code so it can never succeed twice. A
// successfully used TOTP step is recorded per credential, so an intercepted
// code cannot be replayed inside its 30-second window.
//
// Persistence and password re-authentication are injected collaborators.
// Storage implementations must provide per-record atomic consumption; the
// package ships an in-memory store plus PostgreSQL and MongoDB stores whose
// consume operations are single conditional statements.
//
// # Usage
//
//	svc := mfa.NewService(store, passwords,
//	    mfa.WithIssuer("Acme"),
//	    mfa.WithSecretCipher(cipher),
//	)
//
//	setup, err := svc.Setup(ctx, userID, "alice@example.com")
//	// show setup.QRCode and setup.BackupCodes to the user, exactly once
//
//	err = svc.VerifyAndEnable(ctx, userID, "123456")
//	err = svc.VerifyLogin(ctx, userID, code) // TOTP or backup code
//
// Failures map to package sentinels (ErrAlreadyEnabled, ErrNotEnabled,
// ErrInvalidCode, ErrInvalidCredential); code and password failures are
// deliberately generic so responses never reveal which part was wrong.
package mfa
