package analysis

import (
	"context"
	"net"
	"regexp"
	"strings"

	"github.com/mail-cci/phishguard/internal/types"
)

var (
	spfRe        = regexp.MustCompile(`(?i)spf=(\w+)`)
	dkimRe       = regexp.MustCompile(`(?i)dkim=(\w+)`)
	dmarcRe      = regexp.MustCompile(`(?i)dmarc=(\w+)`)
	arcRe        = regexp.MustCompile(`(?i)arc=(\w+)`)
	dkimDomainRe = regexp.MustCompile(`(?i)header\.d=([^\s;]+)`)
)

// ParseAuthenticationResults extracts the spf/dkim/dmarc/arc outcomes and
// the DKIM signing domain from a raw Authentication-Results header value.
// An empty header yields all-absent results.
func ParseAuthenticationResults(header string) types.AuthResults {
	var results types.AuthResults
	if header == "" {
		return results
	}

	if m := spfRe.FindStringSubmatch(header); m != nil {
		results.SPF = types.AuthState(strings.ToLower(m[1]))
	}
	if m := dkimRe.FindStringSubmatch(header); m != nil {
		results.DKIM = types.AuthState(strings.ToLower(m[1]))
	}
	if m := dmarcRe.FindStringSubmatch(header); m != nil {
		results.DMARC = types.AuthState(strings.ToLower(m[1]))
	}
	if m := arcRe.FindStringSubmatch(header); m != nil {
		results.ARC = types.AuthState(strings.ToLower(m[1]))
	}
	if m := dkimDomainRe.FindStringSubmatch(header); m != nil {
		results.DKIMDomain = strings.ToLower(m[1])
	}

	return results
}

// Authentication evaluates the parsed Authentication-Results. A missing
// header is itself a (softer) signal: the message could not be
// authenticated, which is not the same as passing.
func (a *Analyzer) Authentication(view *types.MetadataView) *types.Signal {
	auth := view.Authentication

	spfFail := auth.SPF == types.AuthFail
	dkimFail := auth.DKIM == types.AuthFail
	dmarcFail := auth.DMARC == types.AuthFail
	headerAbsent := !auth.Present()

	score := 0.0
	switch auth.SPF {
	case types.AuthFail:
		score += 2.5
	case types.AuthSoftfail:
		score += 1
	}
	switch auth.DKIM {
	case types.AuthFail:
		score += 2.5
	case types.AuthNeutral:
		score += 0.5
	}
	switch auth.DMARC {
	case types.AuthFail:
		score += 3
	case types.AuthState("quarantine"):
		score += 2
	}
	if headerAbsent {
		score += 2
	}

	details := map[string]interface{}{
		"spf":    string(auth.SPF),
		"dkim":   string(auth.DKIM),
		"dmarc":  string(auth.DMARC),
		"arc":    string(auth.ARC),
		"absent": headerAbsent,
	}
	if auth.DKIMDomain != "" {
		details["dkim_domain"] = auth.DKIMDomain
	}

	return &types.Signal{
		Module:     ModuleAuth,
		Suspicious: spfFail || dkimFail || dmarcFail,
		Score:      clamp10(score),
		Flags: map[string]bool{
			"spf_fail":      spfFail,
			"dkim_fail":     dkimFail,
			"dmarc_fail":    dmarcFail,
			"header_absent": headerAbsent,
		},
		Details: details,
	}
}

// annotateDeepSPF attaches the full SPF host verdict to the signal when
// deep evaluation is enabled. It reads the originating IP and sender
// domain from the view and never changes the score.
func (a *Analyzer) annotateDeepSPF(ctx context.Context, view *types.MetadataView, signal *types.Signal) {
	if a.deepSPF == nil || view.OriginatingIP == "" || view.FromDomain == "" {
		return
	}
	ip := net.ParseIP(view.OriginatingIP)
	if ip == nil {
		return
	}
	verdict := a.deepSPF.CheckSPFHost(ctx, ip, view.FromDomain, view.From)
	if verdict == "" {
		return
	}
	if signal.Details == nil {
		signal.Details = map[string]interface{}{}
	}
	signal.Details["deep_spf"] = verdict
}
