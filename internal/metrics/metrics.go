package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phishguard_assessments_total",
		Help: "Total number of completed assessments",
	}, []string{"scheme", "risk_level"})

	AssessmentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phishguard_assessment_duration_seconds",
		Help:    "Time taken to run the full detector pipeline",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
	}, []string{"scheme"})

	DetectorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phishguard_detector_failures_total",
		Help: "Detector modules that panicked and were scored as absent",
	}, []string{"module"})

	DNSLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phishguard_dns_lookups_total",
		Help: "DNS authentication-record lookups by kind and outcome",
	}, []string{"kind", "outcome"})

	DNSCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phishguard_dns_cache_hits_total",
		Help: "Resolver cache hits by tier",
	}, []string{"tier"})

	DNSLookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "phishguard_dns_lookup_duration_seconds",
		Help:    "Duration of individual DNS queries",
		Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 3, 5},
	})

	APIDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phishguard_api_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5},
	}, []string{"path", "method", "status"})
)
