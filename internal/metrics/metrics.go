// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EvaluationsTotal counts Evaluate calls by result.
	EvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidegrid_evaluations_total",
		Help: "Total tide evaluation batches by result",
	}, []string{"result"})

	// EvaluationDuration tracks the latency of Evaluate calls.
	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tidegrid_evaluation_duration_seconds",
		Help:    "Tide evaluation batch duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	})

	// PointsTotal counts evaluated points by quality.
	PointsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidegrid_points_total",
		Help: "Total evaluated points by quality",
	}, []string{"quality"})

	// AcceleratorRefreshesTotal counts recomputations of the astronomical arguments.
	AcceleratorRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tidegrid_accelerator_refreshes_total",
		Help: "Total recomputations of astronomical arguments and nodal corrections",
	})

	// PointErrorsTotal counts points that could not be evaluated, by kind.
	PointErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidegrid_point_errors_total",
		Help: "Total points left undefined by an evaluation error",
	}, []string{"error_type"})

	// ModelLoadDuration tracks how long loading a model takes.
	ModelLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tidegrid_model_load_duration_seconds",
		Help:    "Tidal model load duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	// HTTPRequestsTotal counts API requests by route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidegrid_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "status"})
)
