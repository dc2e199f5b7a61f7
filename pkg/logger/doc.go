// Package logger provides slog attribute helpers with the canonical keys
// used across the toolkit, so the same identifier always logs under the
// same name regardless of which service emits it.
package logger
