package scoring

import (
	"github.com/mail-cci/phishguard/internal/analysis"
	"github.com/mail-cci/phishguard/internal/types"
)

// trigger is one boolean rule of the 0-100 scheme: a fixed point value
// that either fires in full or not at all.
type trigger struct {
	reason string
	points float64
	fired  func(set *analysis.SignalSet) bool
}

// Trigger table in evaluation order. The order is part of the contract:
// triggered_reasons must come out the same way on every run.
var triggers = []trigger{
	{"spf_fail", 15, func(s *analysis.SignalSet) bool {
		return s.Get(analysis.ModuleAuth).Flag("spf_fail")
	}},
	{"dkim_fail", 15, func(s *analysis.SignalSet) bool {
		return s.Get(analysis.ModuleAuth).Flag("dkim_fail")
	}},
	{"dmarc_fail", 20, func(s *analysis.SignalSet) bool {
		return s.Get(analysis.ModuleAuth).Flag("dmarc_fail")
	}},
	{"suspicious_domain", 15, func(s *analysis.SignalSet) bool {
		return suspicious(s, analysis.ModuleDomain)
	}},
	{"suspicious_urls", 15, func(s *analysis.SignalSet) bool {
		return suspicious(s, analysis.ModuleURL)
	}},
	{"malicious_attachment", 20, func(s *analysis.SignalSet) bool {
		return suspicious(s, analysis.ModuleAttachment)
	}},
	{"infrastructure_anomaly", 10, func(s *analysis.SignalSet) bool {
		return suspicious(s, analysis.ModuleInfrastructure)
	}},
	{"header_anomaly", 10, func(s *analysis.SignalSet) bool {
		return suspicious(s, analysis.ModuleHeader)
	}},
	{"timing_anomaly", 10, func(s *analysis.SignalSet) bool {
		return suspicious(s, analysis.ModuleTiming)
	}},
	{"suspicious_encoding", 5, func(s *analysis.SignalSet) bool {
		return s.Get(analysis.ModuleMIME).Flag("suspicious_encoding")
	}},
}

func suspicious(set *analysis.SignalSet, module string) bool {
	signal := set.Get(module)
	return signal != nil && signal.Suspicious
}

// aggregateTrigger sums the fired trigger points, capped at 100, and maps
// the total onto the SAFE / SUSPICIOUS / PHISHING verdict bands. A failed
// module simply fires none of its triggers.
func (e *Engine) aggregateTrigger(set *analysis.SignalSet) *types.Assessment {
	total := 0.0
	reasons := []string{}
	contributions := make(map[string]float64, len(triggers))

	for _, t := range triggers {
		if !t.fired(set) {
			continue
		}
		total += t.points
		reasons = append(reasons, t.reason)
		contributions[t.reason] = t.points
	}
	if total > 100 {
		total = 100
	}

	level := "SAFE"
	switch {
	case total >= e.cfg.PhishingThreshold:
		level = "PHISHING"
	case total >= e.cfg.SuspiciousThreshold:
		level = "SUSPICIOUS"
	}

	return &types.Assessment{
		Scheme:           string(TriggerWeighted),
		OverallScore:     total,
		RiskLevel:        level,
		ComponentScores:  contributions,
		TriggeredReasons: reasons,
	}
}
