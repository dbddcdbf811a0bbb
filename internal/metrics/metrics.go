// Package metrics exposes Prometheus gauges/histograms/counters for HTTP
// traffic, job throughput, solve duration, fleet/route size, and
// temperature-violation counts. The HTTP edge records request counts and
// durations; nothing in the orchestrator records the job, solve, fleet or
// violation collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the process-wide metrics container, created once at startup
// and passed to components that record against it.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	JobsTotal       *prometheus.CounterVec
	JobsActive      prometheus.Gauge
	JobDuration     *prometheus.HistogramVec
	JobProgress     *prometheus.GaugeVec

	SolveDuration     *prometheus.HistogramVec
	VehiclesUsed      prometheus.Histogram
	ShipmentsDropped  *prometheus.CounterVec
	TempViolations    prometheus.Counter

	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// Init registers all collectors under the given namespace/subsystem and
// sets the package-level default returned by Get.
func Init(namespace, subsystem string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "http_requests_total", Help: "Total HTTP requests handled.",
		}, []string{"route", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "http_request_duration_seconds", Help: "HTTP request duration.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"route"}),

		JobsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "jobs_total", Help: "Total plan jobs by terminal state.",
		}, []string{"state"}),

		JobsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "jobs_active", Help: "Jobs currently RUNNING.",
		}),

		JobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "job_duration_seconds", Help: "Wall-clock duration of completed jobs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 900},
		}, []string{"state"}),

		JobProgress: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "job_progress_percent", Help: "Last observed progress percentage per job.",
		}, []string{"job_id"}),

		SolveDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "solve_duration_seconds", Help: "Duration of the solver engine's search.",
			Buckets: []float64{.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"strategy"}),

		VehiclesUsed: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "vehicles_used", Help: "Number of vehicles used per completed plan.",
			Buckets: prometheus.LinearBuckets(1, 1, 20),
		}),

		ShipmentsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "shipments_dropped_total", Help: "Unassigned shipments by SLA tier.",
		}, []string{"sla_tier"}),

		TempViolations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "temperature_violations_total", Help: "Stops predicted to breach their temp ceiling.",
		}),

		ServiceInfo: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "service_info", Help: "Static build info, always 1.",
		}, []string{"version"}),
	}
	defaultMetrics = m
	return m
}

// Get returns the process-wide Metrics, or nil if Init was never called.
func Get() *Metrics { return defaultMetrics }

// RecordJobCompletion records the terminal state and wall-clock duration
// of one job.
func (m *Metrics) RecordJobCompletion(state string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.JobsTotal.WithLabelValues(state).Inc()
	m.JobDuration.WithLabelValues(state).Observe(elapsed.Seconds())
}

// Handler returns the promhttp exposition handler for mounting at
// MetricsConfig.Path.
func Handler() http.Handler {
	return promhttp.Handler()
}
