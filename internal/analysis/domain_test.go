package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mail-cci/phishguard/internal/types"
)

func TestDomain(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name       string
		view       types.MetadataView
		suspicious bool
		flags      map[string]bool
	}{
		{
			name:       "clean domains",
			view:       types.MetadataView{FromDomain: "example.com", ReturnPathDomain: "example.com"},
			suspicious: false,
		},
		{
			name:       "deny-listed TLD",
			view:       types.MetadataView{FromDomain: "login.example.tk"},
			suspicious: true,
			flags:      map[string]bool{"suspicious_tld": true},
		},
		{
			name:       "lookalike pattern",
			view:       types.MetadataView{FromDomain: "paypa1-secure.com"},
			suspicious: true,
			flags:      map[string]bool{"spoofed_domain_pattern": true},
		},
		{
			name:       "return path mismatch",
			view:       types.MetadataView{FromDomain: "example.com", ReturnPathDomain: "other.com", ReturnPathMismatch: true},
			suspicious: true,
			flags:      map[string]bool{"return_path_mismatch": true},
		},
		{
			name:       "reply-to mismatch",
			view:       types.MetadataView{ReplyToMismatch: true},
			suspicious: true,
			flags:      map[string]bool{"reply_to_mismatch": true},
		},
		{
			name:       "spoofed return path",
			view:       types.MetadataView{ReturnPathDomain: "g00gle-mail.ru"},
			suspicious: true,
			flags:      map[string]bool{"suspicious_tld": true, "spoofed_domain_pattern": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := a.Domain(&tt.view)
			assert.Equal(t, tt.suspicious, signal.Suspicious)
			for flag, want := range tt.flags {
				assert.Equal(t, want, signal.Flag(flag), "flag %s", flag)
			}
			if !tt.suspicious {
				assert.Zero(t, signal.Score)
			} else {
				assert.Greater(t, signal.Score, 0.0)
			}
		})
	}
}

func TestDomainMismatchFlagsAreDirectionless(t *testing.T) {
	a := newTestAnalyzer()

	forward := a.Domain(&types.MetadataView{
		FromDomain: "a.com", ReturnPathDomain: "b.com", ReturnPathMismatch: true,
	})
	reverse := a.Domain(&types.MetadataView{
		FromDomain: "b.com", ReturnPathDomain: "a.com", ReturnPathMismatch: true,
	})

	assert.Equal(t, forward.Suspicious, reverse.Suspicious)
	assert.Equal(t, forward.Score, reverse.Score)
}
