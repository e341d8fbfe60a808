package analysis

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mail-cci/phishguard/internal/metrics"
	"github.com/mail-cci/phishguard/internal/types"
)

// SignalSet is the collected detector output for one assessment plus the
// names of modules that could not be evaluated.
type SignalSet struct {
	Signals map[string]*types.Signal
	Failed  []string
}

// Get returns the signal for a module, nil when the module failed.
func (s *SignalSet) Get(module string) *types.Signal {
	if s == nil {
		return nil
	}
	return s.Signals[module]
}

// Run evaluates every detector concurrently over the shared read-only
// view. Detectors share no mutable state, so the only coordination is the
// result collection. A panicking detector is recorded in Failed and its
// score treated as absent downstream; it never aborts the assessment.
func (a *Analyzer) Run(ctx context.Context, view *types.MetadataView) *SignalSet {
	type job struct {
		module string
		fn     func() *types.Signal
	}

	jobs := []job{
		{ModuleAuth, func() *types.Signal {
			signal := a.Authentication(view)
			a.annotateDeepSPF(ctx, view, signal)
			return signal
		}},
		{ModuleDomain, func() *types.Signal { return a.Domain(view) }},
		{ModuleURL, func() *types.Signal { return a.URL(view) }},
		{ModuleAttachment, func() *types.Signal { return a.Attachment(view) }},
		{ModuleHeader, func() *types.Signal { return a.Header(view) }},
		{ModuleInfrastructure, func() *types.Signal { return a.Infrastructure(view) }},
		{ModuleTiming, func() *types.Signal { return a.Timing(view) }},
		{ModuleMIME, func() *types.Signal { return a.MIMEStructure(view) }},
		{ModuleMetadata, func() *types.Signal { return a.Metadata(view) }},
		{ModuleIPAnalysis, func() *types.Signal { return a.IPAnalysis(view) }},
		{ModuleURLSecurity, func() *types.Signal { return a.URLSecurity(ctx, view) }},
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		signals = make(map[string]*types.Signal, len(jobs))
		failed  []string
	)

	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("detector panicked",
						zap.String("module", j.module),
						zap.Any("panic", r))
					metrics.DetectorFailures.WithLabelValues(j.module).Inc()
					mu.Lock()
					failed = append(failed, j.module)
					mu.Unlock()
				}
			}()
			signal := j.fn()
			mu.Lock()
			signals[j.module] = signal
			mu.Unlock()
		}(j)
	}

	wg.Wait()
	sort.Strings(failed)

	return &SignalSet{Signals: signals, Failed: failed}
}
