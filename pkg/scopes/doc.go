// Package scopes handles the permission strings attached to API keys.
//
// A scope is a dot-delimited permission name ("keys.read"); a key carries a
// set of them. Matching supports a global wildcard ("*") and namespace
// wildcards ("keys.*"). Normalize puts a set into canonical form before
// persistence so equal sets always compare equal.
package scopes
