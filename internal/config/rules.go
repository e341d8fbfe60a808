package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules are the detection tables the detectors consult. The zero value is
// unusable; call DefaultRules or LoadRules.
type Rules struct {
	SuspiciousTLDs      []string `yaml:"suspicious_tlds"`
	LookalikePatterns   []string `yaml:"lookalike_patterns"`
	TrustedDomains      []string `yaml:"trusted_domains"`
	DangerousExtensions []string `yaml:"dangerous_extensions"`
	MacroExtensions     []string `yaml:"macro_extensions"`
	ArchiveExtensions   []string `yaml:"archive_extensions"`
}

// DefaultRules returns the built-in tables.
func DefaultRules() *Rules {
	return &Rules{
		SuspiciousTLDs:      []string{".tk", ".xyz", ".top", ".ru", ".ml", ".gq", ".cf", ".zip"},
		LookalikePatterns:   []string{"micros0ft", "paypa1", "g00gle", "arnazon", "faceb00k"},
		TrustedDomains:      []string{"paypal.com", "microsoft.com", "amazon.com", "google.com"},
		DangerousExtensions: []string{".exe", ".bat", ".cmd", ".scr", ".js", ".vbs", ".ps1", ".jar"},
		MacroExtensions:     []string{".docm", ".xlsm", ".pptm"},
		ArchiveExtensions:   []string{".zip", ".rar", ".7z"},
	}
}

// LoadRules reads a YAML rules file and merges it over the defaults:
// a list present in the file replaces the built-in one, absent lists keep
// their defaults.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var overrides Rules
	if err := yaml.Unmarshal(b, &overrides); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	if len(overrides.SuspiciousTLDs) > 0 {
		rules.SuspiciousTLDs = overrides.SuspiciousTLDs
	}
	if len(overrides.LookalikePatterns) > 0 {
		rules.LookalikePatterns = overrides.LookalikePatterns
	}
	if len(overrides.TrustedDomains) > 0 {
		rules.TrustedDomains = overrides.TrustedDomains
	}
	if len(overrides.DangerousExtensions) > 0 {
		rules.DangerousExtensions = overrides.DangerousExtensions
	}
	if len(overrides.MacroExtensions) > 0 {
		rules.MacroExtensions = overrides.MacroExtensions
	}
	if len(overrides.ArchiveExtensions) > 0 {
		rules.ArchiveExtensions = overrides.ArchiveExtensions
	}

	return rules, nil
}
