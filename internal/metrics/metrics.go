// Package metrics exposes lease decisions and HTTP traffic to Prometheus.
package metrics

import (
	"context"
	"net/http"

	"github.com/Bunny099/reservation-api/internal/app"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reservations"

// Collector owns a private registry so tests and multiple instances do not
// collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	decisions *prometheus.CounterVec
	attempts  *prometheus.HistogramVec
	duration  *prometheus.HistogramVec
	requests  *prometheus.HistogramVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lease_decisions_total",
				Help:      "Admit, confirm and cancel decisions by outcome",
			},
			[]string{"operation", "outcome"},
		),
		attempts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "lease_decision_attempts",
				Help:      "Transaction attempts needed per decision",
				Buckets:   []float64{1, 2, 3, 5, 8},
			},
			[]string{"operation"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "lease_decision_duration_seconds",
				Help:      "Wall time per decision including retries",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"operation"},
		),
		requests: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"code", "method"},
		),
	}
}

func (c *Collector) RecordDecision(_ context.Context, d app.Decision) {
	c.decisions.WithLabelValues(d.Operation, d.Outcome).Inc()
	if d.Attempts > 0 {
		c.attempts.WithLabelValues(d.Operation).Observe(float64(d.Attempts))
	}
	c.duration.WithLabelValues(d.Operation).Observe(d.Duration.Seconds())
}

// Instrument records latency for every request passing through next.
func (c *Collector) Instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(c.requests, next)
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
