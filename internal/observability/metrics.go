package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "weather_forecast"

// Metrics holds the Prometheus collectors for the forecast service.
type Metrics struct {
	// HTTP server metrics.
	HTTPRequestsTotal   *prometheus.CounterVec   // labels: method, route, status_class
	HTTPRequestDuration *prometheus.HistogramVec // labels: method, route

	// Aggregation metrics.
	ForecastsTotal   *prometheus.CounterVec   // labels: provider, outcome
	ForecastDuration *prometheus.HistogramVec // labels: provider
	BatchSize        prometheus.Histogram

	// Upstream metrics.
	UpstreamDuration *prometheus.HistogramVec // labels: provider, step
	UpstreamErrors   *prometheus.CounterVec   // labels: provider, step, reason

	// Probe metrics.
	ProbeHealthy *prometheus.GaugeVec // labels: location
}

// NewMetrics creates all collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests received.",
		}, []string{"method", "route", "status_class"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ForecastsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_forecasts_total",
			Help:      "Per-location forecasts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ForecastDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "location_forecast_duration_seconds",
			Help:      "Duration of one fetch and normalize pipeline.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of locations per batch request.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "step"}),
		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Failed upstream provider requests.",
		}, []string{"provider", "step", "reason"}),
		ProbeHealthy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_healthy",
			Help:      "1 when the last scheduled probe for a location succeeded, 0 otherwise.",
		}, []string{"location"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ForecastsTotal,
		m.ForecastDuration,
		m.BatchSize,
		m.UpstreamDuration,
		m.UpstreamErrors,
		m.ProbeHealthy,
	)

	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors attached.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewUnregistered creates Metrics on a private registry that is never
// exported. Components use it when no Metrics are wired in.
func NewUnregistered() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// NewMetricsForTesting creates Metrics on a throwaway registry.
func NewMetricsForTesting() *Metrics {
	return NewUnregistered()
}
