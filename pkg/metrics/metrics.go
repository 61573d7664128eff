// Package metrics exposes simulation progress as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/mattijsgietman/Virus-on-a-network/pkg/batch"
	"github.com/mattijsgietman/Virus-on-a-network/pkg/epidemic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// Model Metrics
	StepsTotal   prometheus.Counter
	StepDuration prometheus.Histogram
	Infected     prometheus.Gauge
	Susceptible  prometheus.Gauge
	Resistant    prometheus.Gauge
	Running      prometheus.Gauge

	// Batch Metrics
	RunsTotal *prometheus.CounterVec
	RunSteps  prometheus.Histogram

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.initModelMetrics()
	r.initBatchMetrics()
	r.initHTTPMetrics()

	return r
}

func (r *Registry) initModelMetrics() {
	r.StepsTotal = promauto.With(r.registry).NewCounter(prometheus.CounterOpts{
		Name: "virusnet_steps_total",
		Help: "Total number of model steps taken",
	})
	r.StepDuration = promauto.With(r.registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "virusnet_step_duration_seconds",
		Help:    "Wall clock time of one model step",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})
	r.Infected = promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{
		Name: "virusnet_infected_nodes",
		Help: "Number of INFECTED nodes in the current model",
	})
	r.Susceptible = promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{
		Name: "virusnet_susceptible_nodes",
		Help: "Number of SUSCEPTIBLE nodes in the current model",
	})
	r.Resistant = promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{
		Name: "virusnet_resistant_nodes",
		Help: "Number of RESISTANT nodes in the current model",
	})
	r.Running = promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{
		Name: "virusnet_model_running",
		Help: "1 while the current model has not hit its cutoff",
	})
}

func (r *Registry) initBatchMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "virusnet_runs_total",
			Help: "Finished simulation runs by how they ended",
		},
		[]string{"outcome"},
	)
	r.RunSteps = promauto.With(r.registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "virusnet_run_steps",
		Help:    "Steps taken by a finished run",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "virusnet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "virusnet_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveSnapshot sets the population gauges.
func (r *Registry) ObserveSnapshot(s epidemic.Snapshot) {
	r.Infected.Set(float64(s.TotalInfected))
	r.Susceptible.Set(float64(s.TotalSusceptible))
	r.Resistant.Set(float64(s.TotalResistant))
}

// RecordStep counts one step of m that took d.
func (r *Registry) RecordStep(m *epidemic.Model, d time.Duration) {
	r.StepsTotal.Inc()
	r.StepDuration.Observe(d.Seconds())
	r.ObserveSnapshot(m.Snapshot())
	r.SetRunning(m.Running())
}

func (r *Registry) SetRunning(running bool) {
	if running {
		r.Running.Set(1)
	} else {
		r.Running.Set(0)
	}
}

// RecordRun counts a finished batch run.
func (r *Registry) RecordRun(res batch.Result) {
	r.RunsTotal.WithLabelValues(Outcome(res)).Inc()
	r.RunSteps.Observe(float64(res.Steps))
}

// Outcome names how a run ended: error, cancelled, cutoff, extinct or budget.
func Outcome(res batch.Result) string {
	switch {
	case res.Err != nil:
		return "error"
	case res.Cancelled:
		return "cancelled"
	case res.StoppedByCutoff:
		return "cutoff"
	case res.Extinct:
		return "extinct"
	default:
		return "budget"
	}
}

// RecordHTTPRequest records one served request.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
