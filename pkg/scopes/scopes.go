package scopes

import (
	"slices"
	"strings"
)

const (
	// Separator splits multiple scopes in their string form.
	Separator = " "

	// Wildcard matches every scope.
	Wildcard = "*"

	// Delimiter separates hierarchical scope parts (e.g. "keys.read").
	Delimiter = "."
)

// Parse converts a space-separated scope string into a slice, trimming
// whitespace and dropping empty entries. Returns nil for empty input.
func Parse(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := strings.Split(s, Separator)
	out := make([]string, 0, len(parts))
	for i := range parts {
		if parts[i] = strings.TrimSpace(parts[i]); parts[i] != "" {
			out = append(out, parts[i])
		}
	}
	return out
}

// Join converts a scope slice back to its space-separated string form.
func Join(scopes []string) string {
	if len(scopes) == 0 {
		return ""
	}
	return strings.Join(scopes, Separator)
}

// Normalize lowercases, deduplicates, and sorts a scope set into canonical
// form so that equivalent sets compare equal after storage round trips.
func Normalize(scopes []string) []string {
	if len(scopes) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Matches checks a single scope against a granted pattern.
//
// Rules:
//   - direct match: "keys.read" matches "keys.read"
//   - global wildcard: "*" matches everything
//   - namespace wildcard: "keys.*" matches any scope under "keys."
func Matches(scope, pattern string) bool {
	if scope == pattern || pattern == Wildcard {
		return true
	}

	if strings.HasSuffix(pattern, Wildcard) {
		prefix := strings.TrimSuffix(pattern, Wildcard)
		prefix = strings.TrimSuffix(prefix, Delimiter)
		return strings.HasPrefix(scope, prefix+Delimiter)
	}

	return false
}

// Has reports whether the granted set covers the required scope.
func Has(granted []string, required string) bool {
	for _, g := range granted {
		if Matches(required, g) {
			return true
		}
	}
	return false
}

// HasAll reports whether the granted set covers every required scope.
// An empty required set is always covered.
func HasAll(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if slices.Contains(granted, Wildcard) {
		return true
	}
	for _, r := range required {
		if !Has(granted, r) {
			return false
		}
	}
	return true
}
