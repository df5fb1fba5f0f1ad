// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// PreferenceUpdatesTotal counts preference writes by kind (reinforce, seed).
	PreferenceUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campify",
			Name:      "preference_updates_total",
			Help:      "Total number of preference updates",
		},
		[]string{"kind"},
	)

	// RecommendationsTotal counts ranking calls by mode (cold_start, personalized).
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campify",
			Name:      "recommendations_total",
			Help:      "Total number of recommendation requests served",
		},
		[]string{"mode"},
	)

	// RecommendationCandidates observes how many routes were ranked per call.
	RecommendationCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "campify",
			Name:      "recommendation_candidates",
			Help:      "Number of candidate routes scored per recommendation request",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// RoutesTaggedTotal counts routes passed through the auto-tagger by source
	// (create, retag).
	RoutesTaggedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campify",
			Name:      "routes_tagged_total",
			Help:      "Total number of routes tagged",
		},
		[]string{"source"},
	)

	// JobsProcessedTotal counts worker jobs by type and outcome.
	JobsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campify",
			Name:      "jobs_processed_total",
			Help:      "Total number of queue jobs processed",
		},
		[]string{"type", "outcome"},
	)

	// DeadJobsPurgedTotal counts dead-lettered retag jobs dropped by the sweeper.
	DeadJobsPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "campify",
			Name:      "dead_jobs_purged_total",
			Help:      "Total number of dead-lettered jobs purged after the retention period",
		},
	)
)

func init() {
	prometheus.MustRegister(
		PreferenceUpdatesTotal,
		RecommendationsTotal,
		RecommendationCandidates,
		RoutesTaggedTotal,
		JobsProcessedTotal,
		DeadJobsPurgedTotal,
		httpRequestDuration,
		httpRequestsTotal,
	)
}
