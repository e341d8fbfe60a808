package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mail-cci/phishguard/internal/analysis"
	"github.com/mail-cci/phishguard/internal/config"
	"github.com/mail-cci/phishguard/internal/types"
)

func fullCleanSet() *analysis.SignalSet {
	return signalSet(
		cleanSignal(analysis.ModuleAuth),
		cleanSignal(analysis.ModuleDomain),
		cleanSignal(analysis.ModuleURL),
		cleanSignal(analysis.ModuleAttachment),
		cleanSignal(analysis.ModuleHeader),
		cleanSignal(analysis.ModuleInfrastructure),
		cleanSignal(analysis.ModuleTiming),
		cleanSignal(analysis.ModuleMIME),
		cleanSignal(analysis.ModuleMetadata),
		cleanSignal(analysis.ModuleIPAnalysis),
		cleanSignal(analysis.ModuleURLSecurity),
	)
}

func TestAggregateWeightedCleanMessage(t *testing.T) {
	e := testEngine()

	a := e.aggregateWeighted(context.Background(), &types.MetadataView{}, fullCleanSet())
	assert.Zero(t, a.OverallScore)
	assert.Equal(t, "MINIMAL", a.RiskLevel)
	assert.Empty(t, a.TriggeredReasons)

	// Every component slot appears even when it scored zero.
	require.Len(t, a.ComponentScores, len(componentWeights))
	assert.Contains(t, a.ComponentScores, externalComponent)
}

func TestAggregateWeightedAppliesWeights(t *testing.T) {
	e := testEngine()

	set := fullCleanSet()
	set.Signals[analysis.ModuleAuth] = &types.Signal{
		Module: analysis.ModuleAuth, Suspicious: true, Score: 10,
	}

	a := e.aggregateWeighted(context.Background(), &types.MetadataView{}, set)
	assert.InDelta(t, 1.2, a.OverallScore, 0.001, "authentication carries a 12%% weight")
	assert.Equal(t, []string{analysis.ModuleAuth}, a.TriggeredReasons)
	assert.Equal(t, 10.0, a.ComponentScores[analysis.ModuleAuth])
}

func TestAggregateWeightedBands(t *testing.T) {
	e := testEngine()

	for _, score := range []float64{0, 2, 4, 6, 8, 10} {
		set := fullCleanSet()
		// Drive the overall score through every component at the same level.
		for module, signal := range set.Signals {
			set.Signals[module] = &types.Signal{Module: signal.Module, Score: score}
		}
		// The weights sum to 0.94 with the external slot empty at 0.03, so
		// a uniform component score of S yields 0.91*S overall.
		a := e.aggregateWeighted(context.Background(), &types.MetadataView{}, set)
		assert.InDelta(t, round2(score*0.91), a.OverallScore, 0.001)
		assert.Equal(t, weightedRiskLevel(a.OverallScore), a.RiskLevel)
	}

	// Band boundaries themselves.
	assert.Equal(t, "MINIMAL", weightedRiskLevel(1.99))
	assert.Equal(t, "LOW", weightedRiskLevel(2))
	assert.Equal(t, "MEDIUM", weightedRiskLevel(4))
	assert.Equal(t, "HIGH", weightedRiskLevel(6))
	assert.Equal(t, "CRITICAL", weightedRiskLevel(8))
}

func TestAggregateWeightedMonotonic(t *testing.T) {
	e := testEngine()

	previous := -1.0
	for score := 0.0; score <= 10; score += 2.5 {
		set := fullCleanSet()
		set.Signals[analysis.ModuleAuth] = &types.Signal{Module: analysis.ModuleAuth, Score: score}
		a := e.aggregateWeighted(context.Background(), &types.MetadataView{}, set)
		assert.Greater(t, a.OverallScore, previous, "raising one component must never lower the overall score")
		previous = a.OverallScore
	}
}

func TestAggregateWeightedFailedModuleScoresZero(t *testing.T) {
	e := testEngine()

	set := fullCleanSet()
	delete(set.Signals, analysis.ModuleURL)
	set.Failed = []string{analysis.ModuleURL}

	a := e.aggregateWeighted(context.Background(), &types.MetadataView{}, set)
	assert.Zero(t, a.OverallScore)
	assert.Zero(t, a.ComponentScores[analysis.ModuleURL])
}

func TestAggregateWeightedExternalProviders(t *testing.T) {
	providers := map[string]Provider{
		"body_classifier": func(context.Context, *types.MetadataView) (float64, error) {
			return 10, nil
		},
		"broken": func(context.Context, *types.MetadataView) (float64, error) {
			return 0, errors.New("model unavailable")
		},
	}
	e := NewEngine(config.ScoringConfig{PhishingThreshold: 70, SuspiciousThreshold: 40}, providers, zap.NewNop())

	a := e.aggregateWeighted(context.Background(), &types.MetadataView{}, fullCleanSet())

	// Two providers averaging (10 + 0) / 2 = 5, weighted at 3%.
	assert.Equal(t, 5.0, a.ComponentScores[externalComponent])
	assert.InDelta(t, 0.15, a.OverallScore, 0.001)
}

func TestAggregateWeightedProviderOutputClamped(t *testing.T) {
	providers := map[string]Provider{
		"wild": func(context.Context, *types.MetadataView) (float64, error) {
			return 500, nil
		},
	}
	e := NewEngine(config.ScoringConfig{PhishingThreshold: 70, SuspiciousThreshold: 40}, providers, zap.NewNop())

	a := e.aggregateWeighted(context.Background(), &types.MetadataView{}, fullCleanSet())
	assert.Equal(t, 10.0, a.ComponentScores[externalComponent])
}

func TestAggregateWeightedRounding(t *testing.T) {
	e := testEngine()

	set := fullCleanSet()
	set.Signals[analysis.ModuleAuth] = &types.Signal{Module: analysis.ModuleAuth, Score: 3.333}

	a := e.aggregateWeighted(context.Background(), &types.MetadataView{}, set)
	// 3.333 * 0.12 = 0.39996, rounded to two decimals.
	assert.Equal(t, 0.4, a.OverallScore)
	assert.Equal(t, 3.33, a.ComponentScores[analysis.ModuleAuth])
}
