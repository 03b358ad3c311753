package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/veilbreak/internal/filter"
)

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func TestCopyConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CopyConfig
		wantErr string
	}{
		{"defaults", CopyConfig{ModName: DefaultModName}, ""},
		{"rules", CopyConfig{ModName: "dev", Exclude: []string{"=scratch", "**/*.bak"}}, ""},
		{"bad glob", CopyConfig{ModName: "dev", Exclude: []string{"[abc"}}, "copy.exclude"},
		{"empty rule", CopyConfig{ModName: "dev", Exclude: []string{""}}, "copy.exclude"},
		{"empty mod name", CopyConfig{}, "copy.modName"},
		{"nested mod name", CopyConfig{ModName: "a/b"}, "copy.modName"},
		{"dot-dot mod name", CopyConfig{ModName: ".."}, "copy.modName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// Rules
// ---------------------------------------------------------------------------

func TestCopyConfig_Rules(t *testing.T) {
	cfg := &CopyConfig{Exclude: []string{"=scratch"}}

	rules, err := cfg.Rules([]string{"*.bak"})
	require.NoError(t, err)

	want := append(append([]string{}, filter.DefaultExcludes...), "=scratch", "*.bak")
	assert.Equal(t, want, rules.Strings())
	assert.True(t, rules.Match("scratch/notes.json"))
	assert.True(t, rules.Match("README.md"))
}

func TestCopyConfig_RulesWithoutDefaults(t *testing.T) {
	cfg := &CopyConfig{NoDefaultExcludes: true}

	rules, err := cfg.Rules(nil)
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.False(t, rules.Match("README.md"))
}

func TestCopyConfig_RulesBadFlag(t *testing.T) {
	_, err := (&CopyConfig{}).Rules([]string{"[oops"})
	assert.ErrorContains(t, err, "--exclude")
}
