package analysis

import (
	"strings"

	"github.com/mail-cci/phishguard/internal/types"
)

// hasSuspiciousTLD reports whether the domain ends in one of the
// deny-listed top-level domains.
func (a *Analyzer) hasSuspiciousTLD(domain string) bool {
	if domain == "" {
		return false
	}
	for _, tld := range a.rules.SuspiciousTLDs {
		if strings.HasSuffix(domain, tld) {
			return true
		}
	}
	return false
}

// looksSpoofed reports whether the domain contains one of the known
// visual-lookalike substrings.
func (a *Analyzer) looksSpoofed(domain string) bool {
	if domain == "" {
		return false
	}
	for _, pattern := range a.rules.LookalikePatterns {
		if strings.Contains(domain, pattern) {
			return true
		}
	}
	return false
}

// Domain checks the sender domains for deny-listed TLDs, lookalike
// substrings and the header mismatch flags carried by the view.
func (a *Analyzer) Domain(view *types.MetadataView) *types.Signal {
	fromTLD := a.hasSuspiciousTLD(view.FromDomain)
	fromSpoofed := a.looksSpoofed(view.FromDomain)
	returnPathTLD := a.hasSuspiciousTLD(view.ReturnPathDomain)
	returnPathSpoofed := a.looksSpoofed(view.ReturnPathDomain)

	score := 0.0
	if fromTLD {
		score += 2
	}
	if fromSpoofed {
		score += 2.5
	}
	if returnPathTLD {
		score += 1.5
	}
	if returnPathSpoofed {
		score += 2
	}
	if view.ReturnPathMismatch {
		score += 1.5
	}

	suspicious := view.ReplyToMismatch || view.ReturnPathMismatch ||
		view.MessageIDMismatch || fromTLD || fromSpoofed ||
		returnPathTLD || returnPathSpoofed

	return &types.Signal{
		Module:     ModuleDomain,
		Suspicious: suspicious,
		Score:      clamp10(score),
		Flags: map[string]bool{
			"reply_to_mismatch":      view.ReplyToMismatch,
			"return_path_mismatch":   view.ReturnPathMismatch,
			"message_id_mismatch":    view.MessageIDMismatch,
			"suspicious_tld":         fromTLD || returnPathTLD,
			"spoofed_domain_pattern": fromSpoofed || returnPathSpoofed,
		},
		Details: map[string]interface{}{
			"from_domain":        view.FromDomain,
			"return_path_domain": view.ReturnPathDomain,
		},
	}
}
