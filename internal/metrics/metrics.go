// Package metrics exposes Prometheus instrumentation for the widget pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GregMSThompson/widget-dashboard/internal/pipeline"
)

var _ pipeline.Recorder = (*Metrics)(nil)

// Metrics holds the pipeline collectors on a private registry.
type Metrics struct {
	fetchesTotal   *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	deferrals      *prometheus.CounterVec
	mountedWidgets prometheus.Gauge

	registry *prometheus.Registry
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "widget_fetches_total",
				Help: "Widget query executions by plugin and outcome",
			},
			[]string{"plugin", "outcome"},
		),

		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "widget_fetch_duration_seconds",
				Help:    "Plugin request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"plugin"},
		),

		deferrals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "widget_fetch_deferrals_total",
				Help: "Fetches deferred by the local rate limiter or an upstream rate limit",
			},
			[]string{"plugin", "reason"},
		),

		mountedWidgets: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "widget_instances_mounted",
				Help: "Number of currently mounted widget instances",
			},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.fetchesTotal,
		m.fetchDuration,
		m.deferrals,
		m.mountedWidgets,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveFetch records one executor outcome. Requests that never left the
// process (configuration errors, local throttling) carry no latency sample.
func (m *Metrics) ObserveFetch(plugin, outcome string, elapsed time.Duration) {
	m.fetchesTotal.WithLabelValues(plugin, outcome).Inc()

	switch outcome {
	case pipeline.OutcomeThrottled, pipeline.OutcomeRateLimited:
		m.deferrals.WithLabelValues(plugin, outcome).Inc()
	}
	if elapsed > 0 {
		m.fetchDuration.WithLabelValues(plugin).Observe(elapsed.Seconds())
	}
}

// Mounted is the gauge of mounted widget instances.
func (m *Metrics) Mounted() prometheus.Gauge {
	return m.mountedWidgets
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
