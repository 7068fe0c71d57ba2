package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Lifecycle metrics
	LifecycleOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftwatch_lifecycle_operations_total",
			Help: "Total number of rule lifecycle operations",
		},
		[]string{"action", "status"},
	)

	// Drift measurement metrics
	DriftEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftwatch_drift_events_total",
			Help: "Total number of drift events recorded",
		},
		[]string{"type"},
	)

	DriftScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftwatch_drift_score",
			Help:    "Distribution of recorded drift scores",
			Buckets: []float64{0.5, 1, 2, 3, 5, 8, 13},
		},
	)

	// Suggestion backend metrics
	SuggesterDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftwatch_suggester_duration_seconds",
			Help:    "Duration of suggestion backend calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SuggesterErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "driftwatch_suggester_errors_total",
			Help: "Total number of failed suggestion backend calls",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftwatch_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"path"},
	)
)
