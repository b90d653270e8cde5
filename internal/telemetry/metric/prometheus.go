package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "stripedmap"

// Registry holds the workload metrics and the Prometheus registry they are
// exposed from.
type Registry struct {
	registry *prometheus.Registry

	Operations      *prometheus.CounterVec
	OperationErrors *prometheus.CounterVec
	OpDuration      *prometheus.HistogramVec
}

// NewRegistry creates a registry with the workload metrics and the Go
// runtime and process collectors registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "workload",
			Name:      "operations_total",
			Help:      "Map operations issued by the workload, by operation",
		}, []string{"op"}),
		OperationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "workload",
			Name:      "operation_errors_total",
			Help:      "Map operations that returned an error, by operation",
		}, []string{"op"}),
		OpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "workload",
			Name:      "operation_duration_seconds",
			Help:      "Latency of map operations, by operation",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
		}, []string{"op"}),
	}

	r.registry.MustRegister(
		r.Operations,
		r.OperationErrors,
		r.OpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveOp records one operation.
func (r *Registry) ObserveOp(op string, d time.Duration, err error) {
	r.Operations.WithLabelValues(op).Inc()
	r.OpDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		r.OperationErrors.WithLabelValues(op).Inc()
	}
}

// MustRegister adds collectors to the underlying registry.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Gatherer returns the underlying registry for scraping in tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry: r.registry,
	})
}
