// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	FactorEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_factor_evaluations_total",
			Help: "Total factor evaluations by factor type and path (ai or heuristic)",
		},
		[]string{"factor_type", "path"},
	)

	ScoreCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_calculations_total",
			Help: "Total score calculations by outcome (computed, cached, conflict, failed)",
		},
		[]string{"outcome"},
	)

	ScoreCalculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "scoring_calculation_duration_seconds",
			Help: "End-to-end duration of a full score calculation",
		},
	)
)
