// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "screener_sessions_started_total",
			Help: "Total number of interview sessions that passed intake",
		},
	)

	SessionsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "screener_sessions_completed_total",
			Help: "Total number of interview sessions completed with a report",
		},
	)

	GenerationCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_generation_calls_total",
			Help: "Total number of generation backend calls by outcome",
		},
		[]string{"outcome"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "screener_generation_duration_seconds",
			Help: "Duration of generation backend calls in seconds",
		},
	)

	EvaluationVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_evaluation_verdicts_total",
			Help: "Total number of per-question verdicts by kind",
		},
		[]string{"verdict"},
	)

	PersistenceAppends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_persistence_appends_total",
			Help: "Total number of record appends by sink and status",
		},
		[]string{"sink", "status"},
	)
)
