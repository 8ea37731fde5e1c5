package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline outcomes recorded by QuizRequests.
const (
	OutcomeStored   = "stored"
	OutcomeExisting = "existing"
	OutcomeCached   = "cached"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

var (
	QuizRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikiquiz_generate_requests_total",
			Help: "Generate-or-fetch calls by outcome.",
		},
		[]string{"outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wikiquiz_stage_duration_seconds",
			Help:    "Duration of pipeline stages.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
		},
		[]string{"stage", "status"},
	)

	StageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikiquiz_stage_errors_total",
			Help: "Pipeline stage failures by error code.",
		},
		[]string{"stage", "code"},
	)

	GenerationAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wikiquiz_generation_attempts",
			Help:    "Generation attempts needed per pipeline run.",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikiquiz_http_requests_total",
			Help: "HTTP requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveStage records the duration of a stage that started at start.
func ObserveStage(stage string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StageDuration.WithLabelValues(stage, status).Observe(time.Since(start).Seconds())
}
