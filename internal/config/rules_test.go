package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	assert.Contains(t, rules.SuspiciousTLDs, ".tk")
	assert.Contains(t, rules.SuspiciousTLDs, ".zip")
	assert.Contains(t, rules.LookalikePatterns, "paypa1")
	assert.Contains(t, rules.TrustedDomains, "paypal.com")
	assert.Contains(t, rules.DangerousExtensions, ".exe")
	assert.Contains(t, rules.MacroExtensions, ".docm")
	assert.Contains(t, rules.ArchiveExtensions, ".zip")
}

func TestLoadRulesEmptyPath(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRulesOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := []byte("suspicious_tlds:\n  - .evil\ntrusted_domains:\n  - mybank.com\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	// Overridden lists replace the defaults.
	assert.Equal(t, []string{".evil"}, rules.SuspiciousTLDs)
	assert.Equal(t, []string{"mybank.com"}, rules.TrustedDomains)

	// Absent lists keep the built-in values.
	assert.Equal(t, DefaultRules().DangerousExtensions, rules.DangerousExtensions)
	assert.Equal(t, DefaultRules().MacroExtensions, rules.MacroExtensions)
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules("/nonexistent/rules.yaml")
	assert.Error(t, err)
}

func TestLoadRulesBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("suspicious_tlds: {not: a list"), 0o644))

	_, err := LoadRules(path)
	assert.Error(t, err)
}
