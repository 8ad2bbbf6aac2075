// Package metrics exposes Prometheus instrumentation for the pipeline and
// worker pool. Collection is always on (it is cheap); the HTTP listener is
// opt-in via --metrics-addr for long batch runs that want live observation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TasksSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "upscayv_tasks_submitted_total",
			Help: "Total number of task attempts handed to the worker pool",
		},
	)

	TasksCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upscayv_tasks_completed_total",
			Help: "Total number of task attempts completed, by status",
		},
		[]string{"status"},
	)

	TaskFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upscayv_task_failures_total",
			Help: "Total number of task failures, by kind",
		},
		[]string{"kind"},
	)

	TasksRetriedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "upscayv_tasks_retried_total",
			Help: "Total number of task retries dispatched",
		},
	)

	TaskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upscayv_task_duration_seconds",
			Help:    "Per-attempt upscale duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	TasksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "upscayv_tasks_in_flight",
			Help: "Number of tasks currently being processed by workers",
		},
	)

	OutputBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "upscayv_output_bytes_total",
			Help: "Total bytes of upscaled output written",
		},
	)
)

// RecordCompleted records one finished attempt.
func RecordCompleted(status string, d time.Duration) {
	TasksCompletedTotal.WithLabelValues(status).Inc()
	if d > 0 {
		TaskDuration.Observe(d.Seconds())
	}
}

// RecordFailure records one failure by kind label.
func RecordFailure(kind string) {
	TaskFailuresTotal.WithLabelValues(kind).Inc()
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Serve blocks serving /metrics on addr. Intended to run in a goroutine;
// the process exits when the run finishes, so no graceful shutdown is needed.
func Serve(addr string) error {
	return http.ListenAndServe(addr, Handler())
}
