package scopes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/credkit/pkg/scopes"
)

func TestParseAndJoin(t *testing.T) {
	t.Parallel()

	assert.Nil(t, scopes.Parse(""))
	assert.Nil(t, scopes.Parse("   "))
	assert.Equal(t, []string{"keys.read", "keys.write"}, scopes.Parse(" keys.read  keys.write "))
	assert.Equal(t, "keys.read keys.write", scopes.Join([]string{"keys.read", "keys.write"}))
	assert.Equal(t, "", scopes.Join(nil))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"keys.read", "keys.write"},
		scopes.Normalize([]string{"Keys.Write", "keys.read", "keys.write", " "}),
	)
	assert.Nil(t, scopes.Normalize(nil))
}

func TestMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scope, pattern string
		want           bool
	}{
		{"keys.read", "keys.read", true},
		{"keys.read", "*", true},
		{"keys.read", "keys.*", true},
		{"billing.read", "keys.*", false},
		{"keys.read", "keys.write", false},
		{"keysx.read", "keys.*", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scopes.Matches(tt.scope, tt.pattern), "%s vs %s", tt.scope, tt.pattern)
	}
}

func TestHasAll(t *testing.T) {
	t.Parallel()

	granted := []string{"keys.*", "usage.read"}
	assert.True(t, scopes.HasAll(granted, nil))
	assert.True(t, scopes.HasAll(granted, []string{"keys.read", "usage.read"}))
	assert.False(t, scopes.HasAll(granted, []string{"billing.read"}))
	assert.True(t, scopes.HasAll([]string{"*"}, []string{"anything.at.all"}))
}
