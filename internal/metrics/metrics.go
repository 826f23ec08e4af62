// Package metrics exposes Prometheus instrumentation for the conversion
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the conversions counter. One per error class plus
// success, so dashboards can separate client mistakes from engine trouble.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid_input"
	OutcomeTooLarge    = "payload_too_large"
	OutcomeEngineError = "engine_error"
	OutcomeEmptyOutput = "empty_output"
	OutcomeTimeout     = "timeout"
	OutcomeUnavailable = "engine_unavailable"
)

// Metrics bundles the pipeline collectors. Register once at startup.
type Metrics struct {
	Conversions *prometheus.CounterVec
	Duration    prometheus.Histogram
	PayloadSize prometheus.Histogram
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "html2pdf",
			Name:      "conversions_total",
			Help:      "Conversion requests by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "html2pdf",
			Name:      "conversion_duration_seconds",
			Help:      "Wall-clock duration of conversion requests.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms .. ~100s
		}),
		PayloadSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "html2pdf",
			Name:      "payload_bytes",
			Help:      "Size of submitted HTML payloads.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB .. 16MiB
		}),
	}

	reg.MustRegister(m.Conversions, m.Duration, m.PayloadSize)
	return m
}
