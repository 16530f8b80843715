package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evaluation outcomes.
const (
	outcomeScored     = "scored"
	outcomeIneligible = "ineligible"
	outcomeInvalid    = "invalid"
)

var (
	evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compat_evaluations_total",
			Help: "Compatibility evaluations by outcome",
		},
		[]string{"outcome"},
	)

	overallScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "compat_overall_score",
			Help:    "Distribution of overall compatibility scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	memoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compat_memo_lookups_total",
			Help: "Memoized result lookups by result (hit, miss, stale)",
		},
		[]string{"result"},
	)

	rankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_rank_duration_seconds",
			Help:    "Time spent ranking one subject's candidate set",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)
)
