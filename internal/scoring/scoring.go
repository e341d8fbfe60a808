// Package scoring combines detector signals into one auditable risk
// score. Two aggregation schemes coexist on purpose: the trigger-weighted
// 0-100 scheme fires fixed point values off boolean module flags, while
// the weighted-component 0-10 scheme blends continuous sub-scores with a
// convex weight table. Callers select the scheme per assessment.
package scoring

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/mail-cci/phishguard/internal/analysis"
	"github.com/mail-cci/phishguard/internal/config"
	"github.com/mail-cci/phishguard/internal/types"
)

// Scheme names the aggregation strategy.
type Scheme string

const (
	TriggerWeighted   Scheme = "trigger"
	WeightedComponent Scheme = "weighted"
)

// Provider is an external score source (ML body classifier, URL
// authenticity model, IP reputation). Providers return a value in [0,10];
// an erroring or missing provider contributes zero, never a failure.
type Provider func(ctx context.Context, view *types.MetadataView) (float64, error)

// Engine aggregates signals under both schemes.
type Engine struct {
	cfg       config.ScoringConfig
	providers map[string]Provider
	logger    *zap.Logger
}

// NewEngine builds an aggregation engine. providers may be nil.
func NewEngine(cfg config.ScoringConfig, providers map[string]Provider, logger *zap.Logger) *Engine {
	if cfg.PhishingThreshold <= 0 {
		cfg.PhishingThreshold = 70
	}
	if cfg.SuspiciousThreshold <= 0 {
		cfg.SuspiciousThreshold = 40
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, providers: providers, logger: logger}
}

// Aggregate runs the selected scheme over the signal set and assembles
// the final report. Identical signals and provider outputs always produce
// an identical assessment.
func (e *Engine) Aggregate(ctx context.Context, scheme Scheme, view *types.MetadataView, set *analysis.SignalSet) *types.Assessment {
	var assessment *types.Assessment
	switch scheme {
	case WeightedComponent:
		assessment = e.aggregateWeighted(ctx, view, set)
	default:
		assessment = e.aggregateTrigger(set)
	}

	urlSec := set.Get(analysis.ModuleURLSecurity)
	assessment.SPF = urlSec.Flag("spf_present")
	assessment.DMARC = urlSec.Flag("dmarc_present")
	assessment.DKIM = urlSec.Flag("dkim_present")
	assessment.OriginatingIP = view.OriginatingIP
	assessment.FailedModules = set.Failed
	assessment.Details = types.Details{
		HeaderMismatch: view.ReplyToMismatch,
		DomainMismatch: view.ReturnPathMismatch,
		OriginatingIP:  view.OriginatingIP,
		TotalIPsFound:  len(view.IPs),
		URLsFound:      len(view.URLs),
	}

	return assessment
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
