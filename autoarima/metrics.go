package autoarima

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// candidatesTotal counts evaluated candidates by fit status and
	// whether they passed the residual gate.
	candidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arimasearch_candidates_total",
		Help: "Total candidate orders evaluated by fit status and viability",
	}, []string{"status", "viable"})

	// fitDuration tracks wall time per candidate fit.
	fitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arimasearch_fit_duration_seconds",
		Help:    "Candidate fit duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"status"})

	// searchesTotal counts completed searches by outcome.
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arimasearch_searches_total",
		Help: "Total order searches by strategy and outcome",
	}, []string{"strategy", "outcome"})

	// searchCandidates tracks the number of candidates per search.
	searchCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arimasearch_search_candidates",
		Help:    "Number of candidate orders evaluated per search",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
	})
)

const (
	outcomeSelected  = "selected"
	outcomeNoViable  = "no_viable_model"
	outcomeCancelled = "cancelled"
	strategyGrid     = "grid"
	strategyStepwise = "stepwise"
)
