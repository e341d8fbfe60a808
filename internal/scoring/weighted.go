package scoring

import (
	"context"

	"go.uber.org/zap"

	"github.com/mail-cci/phishguard/internal/analysis"
	"github.com/mail-cci/phishguard/internal/types"
)

// externalComponent is the slot external providers feed into. With no
// providers registered it contributes zero and the slot still appears in
// component_scores, so the output shape never depends on deployment.
const externalComponent = "external"

// componentWeight pairs a component with its share of the 0-10 blend.
// The table is a slice, not a map, so component_scores and reasons come
// out in a stable order.
type componentWeight struct {
	component string
	weight    float64
}

var componentWeights = []componentWeight{
	{analysis.ModuleAuth, 0.12},
	{analysis.ModuleDomain, 0.10},
	{analysis.ModuleURLSecurity, 0.10},
	{analysis.ModuleAttachment, 0.08},
	{analysis.ModuleHeader, 0.08},
	{analysis.ModuleURL, 0.08},
	{analysis.ModuleInfrastructure, 0.08},
	{analysis.ModuleMetadata, 0.08},
	{analysis.ModuleIPAnalysis, 0.07},
	{analysis.ModuleMIME, 0.06},
	{analysis.ModuleTiming, 0.06},
	{externalComponent, 0.03},
}

// externalScore averages the registered providers. A provider error is
// logged and scored zero; the assessment itself never fails on it.
func (e *Engine) externalScore(ctx context.Context, view *types.MetadataView) float64 {
	if len(e.providers) == 0 {
		return 0
	}
	total := 0.0
	for name, provider := range e.providers {
		score, err := provider(ctx, view)
		if err != nil {
			e.logger.Warn("external provider failed",
				zap.String("provider", name),
				zap.Error(err))
			continue
		}
		if score < 0 {
			score = 0
		}
		if score > 10 {
			score = 10
		}
		total += score
	}
	return total / float64(len(e.providers))
}

// aggregateWeighted blends the continuous sub-scores into a 0-10 overall
// score and maps it onto the five-band risk ladder. A failed or absent
// module contributes zero, which biases the blend toward SAFE rather
// than failing the assessment.
func (e *Engine) aggregateWeighted(ctx context.Context, view *types.MetadataView, set *analysis.SignalSet) *types.Assessment {
	components := make(map[string]float64, len(componentWeights))
	reasons := []string{}
	total := 0.0

	for _, cw := range componentWeights {
		var score float64
		if cw.component == externalComponent {
			score = e.externalScore(ctx, view)
		} else if signal := set.Get(cw.component); signal != nil {
			score = signal.Score
			if signal.Suspicious {
				reasons = append(reasons, cw.component)
			}
		}
		components[cw.component] = round2(score)
		total += cw.weight * score
	}

	overall := round2(total)

	return &types.Assessment{
		Scheme:           string(WeightedComponent),
		OverallScore:     overall,
		RiskLevel:        weightedRiskLevel(overall),
		ComponentScores:  components,
		TriggeredReasons: reasons,
	}
}

// weightedRiskLevel maps a 0-10 score onto the five-band ladder.
func weightedRiskLevel(score float64) string {
	switch {
	case score >= 8:
		return "CRITICAL"
	case score >= 6:
		return "HIGH"
	case score >= 4:
		return "MEDIUM"
	case score >= 2:
		return "LOW"
	default:
		return "MINIMAL"
	}
}
