package analysis

import (
	"context"

	"go.uber.org/zap"

	"github.com/mail-cci/phishguard/internal/config"
	"github.com/mail-cci/phishguard/internal/resolver"
)

func newTestAnalyzer() *Analyzer {
	return New(config.DefaultRules(), config.TimingConfig{NewestFirst: true}, nil, zap.NewNop())
}

// fakePool answers domain authentication queries from a fixed table.
type fakePool struct {
	reports map[string]resolver.DomainAuth
}

func (f *fakePool) AnalyzeDomains(_ context.Context, domains []string) map[string]resolver.DomainAuth {
	out := make(map[string]resolver.DomainAuth, len(domains))
	for _, d := range domains {
		if report, ok := f.reports[d]; ok {
			out[d] = report
		} else {
			out[d] = resolver.DomainAuth{Domain: d, SPF: resolver.Absent, DMARC: resolver.Absent, DKIM: resolver.Absent, Resolvable: resolver.Absent}
		}
	}
	return out
}
