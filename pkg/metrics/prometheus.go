package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	chartsComputed  *prometheus.CounterVec
	computeDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a recorder whose collectors are registered with reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		chartsComputed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astro_charts_computed_total",
				Help: "Total number of natal charts computed",
			},
			[]string{"house_system"},
		),
		computeDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "astro_chart_compute_seconds",
				Help:    "Time spent computing one chart",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"house_system"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astro_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		eventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astro_events_published_total",
				Help: "Chart events handed to the broker",
			},
			[]string{"event"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "astro_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordChartComputed records one successful chart computation.
func (r *Recorder) RecordChartComputed(houseSystem string, seconds float64) {
	r.chartsComputed.WithLabelValues(houseSystem).Inc()
	r.computeDuration.WithLabelValues(houseSystem).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordEventPublished records a chart event sent to the broker.
func (r *Recorder) RecordEventPublished(eventType string) {
	r.eventsPublished.WithLabelValues(eventType).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
