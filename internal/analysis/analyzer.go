// Package analysis contains the detector modules of the scoring pipeline.
// Every detector is a pure function of the read-only MetadataView; only
// the URL security analysis touches the network, through the resolver
// pool, which is also the only shared mutable state.
package analysis

import (
	"context"
	"net"

	"go.uber.org/zap"

	"github.com/mail-cci/phishguard/internal/config"
	"github.com/mail-cci/phishguard/internal/resolver"
)

// Module names as they appear in component score maps and logs.
const (
	ModuleAuth           = "authentication"
	ModuleDomain         = "domain"
	ModuleURL            = "url"
	ModuleAttachment     = "attachment"
	ModuleHeader         = "header"
	ModuleInfrastructure = "infrastructure"
	ModuleTiming         = "timing"
	ModuleMIME           = "mime"
	ModuleMetadata       = "metadata"
	ModuleIPAnalysis     = "ip_analysis"
	ModuleURLSecurity    = "url_security"
)

// DomainAnalyzer is the slice of the resolver pool the URL security
// detector consumes.
type DomainAnalyzer interface {
	AnalyzeDomains(ctx context.Context, domains []string) map[string]resolver.DomainAuth
}

// SPFHostChecker runs a full SPF host evaluation for a sender. The result
// is informational depth on the authentication signal, never a score
// input.
type SPFHostChecker interface {
	CheckSPFHost(ctx context.Context, ip net.IP, domain, sender string) string
}

// Analyzer bundles the rule tables and collaborators the detectors need.
type Analyzer struct {
	rules   *config.Rules
	timing  config.TimingConfig
	pool    DomainAnalyzer
	deepSPF SPFHostChecker
	logger  *zap.Logger
}

// New creates an Analyzer. pool may be nil, which disables the
// DNS-derived URL security component (its score then reads as zero).
func New(rules *config.Rules, timing config.TimingConfig, pool DomainAnalyzer, logger *zap.Logger) *Analyzer {
	if rules == nil {
		rules = config.DefaultRules()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{rules: rules, timing: timing, pool: pool, logger: logger}
}

// UseDeepSPF enables full SPF host evaluation on the authentication
// signal. Called once at wiring time when the deployment opts in.
func (a *Analyzer) UseDeepSPF(checker SPFHostChecker) {
	a.deepSPF = checker
}

func clamp10(v float64) float64 {
	if v > 10 {
		return 10
	}
	if v < 0 {
		return 0
	}
	return v
}
