package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	toolCalls      *prometheus.CounterVec
	toolDuration   *prometheus.HistogramVec
	resourceReads  *prometheus.CounterVec
	bundleFallback prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "widgetd_tool_calls_total",
				Help: "Total number of tool invocations",
			},
			[]string{"tool", "status"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "widgetd_tool_call_duration_seconds",
				Help:    "Duration of tool invocations in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"tool"},
		),
		resourceReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "widgetd_resource_reads_total",
				Help: "Total number of widget resource reads",
			},
			[]string{"status"},
		),
		bundleFallback: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "widgetd_bundle_fallback_total",
				Help: "Number of sessions serving the fallback widget document",
			},
		),
	}
}

func (m *Metrics) ObserveToolCall(tool string, duration time.Duration, failed bool) {
	if m == nil {
		return
	}
	status := "success"
	if failed {
		status = "error"
	}
	m.toolCalls.WithLabelValues(tool, status).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

func (m *Metrics) ObserveResourceRead(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.resourceReads.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveBundleFallback() {
	if m == nil {
		return
	}
	m.bundleFallback.Inc()
}
