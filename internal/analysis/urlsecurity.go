package analysis

import (
	"context"
	"strings"
	"unicode"

	"github.com/mail-cci/phishguard/internal/types"
)

// Per-domain DNS-derived penalties. A domain with no SPF, no DMARC, a
// risky shape and no address resolution collects the full 6 points.
const (
	penaltyNoSPF        = 1.0
	penaltyNoDMARC      = 2.0
	penaltySuspicious   = 2.0
	penaltyUnresolvable = 1.0
	maxDomainPenalty    = penaltyNoSPF + penaltyNoDMARC + penaltySuspicious + penaltyUnresolvable
)

// riskyDomainShape flags domains that look machine-generated: very long,
// deny-listed TLD or digit-heavy.
func (a *Analyzer) riskyDomainShape(domain string) bool {
	if domain == "" {
		return false
	}
	if len(domain) > 30 {
		return true
	}
	if a.hasSuspiciousTLD(domain) {
		return true
	}
	digits := 0
	for _, r := range domain {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= 3
}

// URLSecurity resolves the authentication posture of every distinct URL
// domain through the bounded worker pool and converts it into a 0-10
// sub-score. With no pool or no URLs the component scores zero; a domain
// whose worker failed is charged conservatively instead of aborting the
// batch.
func (a *Analyzer) URLSecurity(ctx context.Context, view *types.MetadataView) *types.Signal {
	signal := &types.Signal{
		Module: ModuleURLSecurity,
		Flags: map[string]bool{
			"spf_present":   false,
			"dmarc_present": false,
			"dkim_present":  false,
		},
	}

	if a.pool == nil || len(view.URLs) == 0 {
		return signal
	}

	domains := make([]string, 0, len(view.URLs))
	for _, u := range view.URLs {
		d := strings.ToLower(strings.Split(u.Domain, ":")[0])
		if d != "" {
			domains = append(domains, d)
		}
	}
	if len(domains) == 0 {
		return signal
	}

	reports := a.pool.AnalyzeDomains(ctx, domains)

	total := 0.0
	counted := 0
	anySPF, anyDMARC, anyDKIM := false, false, false
	perDomain := make(map[string]float64, len(reports))

	for domain, report := range reports {
		penalty := 0.0
		if report.Unresolved {
			penalty = penaltyNoSPF + penaltyNoDMARC + penaltyUnresolvable
			if a.riskyDomainShape(domain) {
				penalty += penaltySuspicious
			}
		} else {
			if !report.SPF.Present() {
				penalty += penaltyNoSPF
			} else {
				anySPF = true
			}
			if !report.DMARC.Present() {
				penalty += penaltyNoDMARC
			} else {
				anyDMARC = true
			}
			if report.DKIM.Present() {
				anyDKIM = true
			}
			if a.riskyDomainShape(domain) {
				penalty += penaltySuspicious
			}
			if !report.Resolvable.Present() {
				penalty += penaltyUnresolvable
			}
		}
		perDomain[domain] = penalty
		total += penalty
		counted++
	}

	if counted == 0 {
		return signal
	}

	avg := total / float64(counted)
	signal.Score = clamp10(avg / maxDomainPenalty * 10)
	signal.Suspicious = signal.Score >= 5
	signal.Flags["spf_present"] = anySPF
	signal.Flags["dmarc_present"] = anyDMARC
	signal.Flags["dkim_present"] = anyDKIM
	signal.Details = map[string]interface{}{
		"domains_checked":  counted,
		"domain_penalties": perDomain,
	}

	return signal
}
