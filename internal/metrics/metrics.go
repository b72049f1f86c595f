// Package metrics exposes Prometheus collectors for the ingestion service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	webhookNotificationsTotal  *prometheus.CounterVec
	fanoutTasksTotal           *prometheus.CounterVec
	transformRowsTotal         *prometheus.CounterVec
	pipelineRunsTotal          *prometheus.CounterVec
	pipelineDurationSeconds    *prometheus.HistogramVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	apiQuotaUsed               prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		webhookNotificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "youpredict_webhook_notifications_total",
				Help: "Total webhook notifications received, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fanoutTasksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "youpredict_fanout_tasks_total",
				Help: "Total fan-out tasks submitted to the delayed queue, labeled by status.",
			},
			[]string{"status"},
		)

		transformRowsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "youpredict_transform_rows_total",
				Help: "Total rows upserted by the transform engines, labeled by table.",
			},
			[]string{"table"},
		)

		pipelineRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "youpredict_pipeline_runs_total",
				Help: "Total pipeline trigger executions, labeled by pipeline and status.",
			},
			[]string{"pipeline", "status"},
		)

		pipelineDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "youpredict_pipeline_duration_seconds",
				Help:    "Histogram of pipeline trigger wall times.",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"pipeline"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		apiQuotaUsed = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "youpredict_api_quota_used",
				Help: "Metered API quota units consumed since startup.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveWebhook increments the webhook notification counter.
func ObserveWebhook(outcome string) {
	Init()
	webhookNotificationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFanoutTask increments the fan-out task counter for the given status.
func ObserveFanoutTask(status string) {
	Init()
	fanoutTasksTotal.WithLabelValues(status).Inc()
}

// ObserveTransformRows records rows written to a warehouse table.
func ObserveTransformRows(table string, rows int64) {
	Init()
	if rows > 0 {
		transformRowsTotal.WithLabelValues(table).Add(float64(rows))
	}
}

// ObservePipelineRun records one pipeline execution.
func ObservePipelineRun(pipeline, status string, duration time.Duration) {
	Init()
	pipelineRunsTotal.WithLabelValues(pipeline, status).Inc()
	pipelineDurationSeconds.WithLabelValues(pipeline).Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SetAPIQuotaUsed publishes the current quota counter.
func SetAPIQuotaUsed(used int) {
	Init()
	apiQuotaUsed.Set(float64(used))
}
