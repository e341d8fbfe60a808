package analysis

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/mail-cci/phishguard/internal/types"
)

const (
	longURLThreshold   = 75
	maxSubdomainDots   = 3
	lookalikeThreshold = 0.8
)

// registrableDomain reduces a host to its organizational domain, falling
// back to the last two labels when the public suffix list has no answer.
func registrableDomain(host string) string {
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

// isIPHost reports whether the host is a bare IPv4/IPv6 literal.
func isIPHost(host string) bool {
	h := strings.Trim(host, "[]")
	return net.ParseIP(h) != nil
}

// lookalikeReason compares the registrable suffix of the host against the
// trusted brand list. Exact matches and genuine subdomains of a trusted
// entry are never flagged.
func (a *Analyzer) lookalikeReason(domain string) string {
	if domain == "" {
		return ""
	}
	eff := registrableDomain(domain)
	for _, trusted := range a.rules.TrustedDomains {
		if eff == trusted || strings.HasSuffix(eff, "."+trusted) {
			return ""
		}
	}

	bestRatio := 0.0
	bestMatch := ""
	for _, trusted := range a.rules.TrustedDomains {
		if ratio := similarity(eff, trusted); ratio > bestRatio {
			bestRatio = ratio
			bestMatch = trusted
		}
	}
	if bestMatch != "" && bestRatio >= lookalikeThreshold {
		return fmt.Sprintf("domain %q looks similar to trusted domain %q (similarity %.2f)", domain, bestMatch, bestRatio)
	}
	return ""
}

// URL runs the per-URL rule battery and ORs the outcomes across all URLs.
// The continuous sub-score accumulates per-URL penalties, capped at 10.
func (a *Analyzer) URL(view *types.MetadataView) *types.Signal {
	var (
		ipBased       bool
		suspiciousTLD bool
		longURL       bool
		manySubs      bool
		insecure      bool
		lookalike     bool
	)
	var reasons []string
	score := 0.0

	for _, u := range view.URLs {
		if isIPHost(u.Domain) {
			ipBased = true
			score += 2
		}
		if a.hasSuspiciousTLD(u.Domain) {
			suspiciousTLD = true
			score += 1.5
		}
		if len(u.FullURL) > longURLThreshold {
			longURL = true
			score += 1
		}
		if strings.Count(u.Domain, ".") > maxSubdomainDots {
			manySubs = true
			score += 1
		}
		if strings.EqualFold(u.Scheme, "http") {
			insecure = true
			score += 1
		}
		if reason := a.lookalikeReason(u.Domain); reason != "" {
			lookalike = true
			reasons = append(reasons, reason)
		}
	}

	suspicious := ipBased || suspiciousTLD || longURL || manySubs || insecure || lookalike

	details := map[string]interface{}{
		"total_urls": len(view.URLs),
	}
	if len(reasons) > 0 {
		details["lookalike_reasons"] = reasons
	}

	return &types.Signal{
		Module:     ModuleURL,
		Suspicious: suspicious,
		Score:      clamp10(score),
		Flags: map[string]bool{
			"ip_based_url":        ipBased,
			"suspicious_tld_url":  suspiciousTLD,
			"long_url_detected":   longURL,
			"too_many_subdomains": manySubs,
			"insecure_http":       insecure,
			"lookalike_domain":    lookalike,
		},
		Details: details,
	}
}
