package analysis

import (
	"strings"

	"github.com/mail-cci/phishguard/internal/types"
)

// Metadata scores the softer header-consistency facts the other modules
// do not own: the reply-to mismatch, a missing Authentication-Results
// header, an anonymous mailer and from/return-path disagreement.
func (a *Analyzer) Metadata(view *types.MetadataView) *types.Signal {
	authAbsent := !view.Authentication.Present()
	unknownMailer := view.XMailer != "" &&
		strings.Contains(strings.ToLower(view.XMailer), "unknown")

	score := 0.0
	if view.ReplyToMismatch {
		score += 2.5
	}
	if authAbsent {
		score += 1.5
	}
	if unknownMailer {
		score += 1
	}
	if view.ReturnPathMismatch {
		score += 2
	}

	return &types.Signal{
		Module:     ModuleMetadata,
		Suspicious: view.ReplyToMismatch || view.ReturnPathMismatch || unknownMailer,
		Score:      clamp10(score),
		Flags: map[string]bool{
			"reply_to_mismatch":    view.ReplyToMismatch,
			"return_path_mismatch": view.ReturnPathMismatch,
			"auth_header_absent":   authAbsent,
			"unknown_mailer":       unknownMailer,
		},
	}
}

// IPAnalysis scores the routing IP census: unusually many distinct
// addresses and the absence of any public originating address.
func (a *Analyzer) IPAnalysis(view *types.MetadataView) *types.Signal {
	manyIPs := len(view.IPs) > 5
	noOrigin := view.OriginatingIP == ""

	score := 0.0
	if manyIPs {
		score += 1.5
	}
	if noOrigin {
		score += 2
	}

	return &types.Signal{
		Module:     ModuleIPAnalysis,
		Suspicious: manyIPs || noOrigin,
		Score:      clamp10(score),
		Flags: map[string]bool{
			"many_ips":          manyIPs,
			"no_originating_ip": noOrigin,
		},
		Details: map[string]interface{}{
			"total_ips":      len(view.IPs),
			"originating_ip": view.OriginatingIP,
		},
	}
}
