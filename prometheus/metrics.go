// Package prometheus exposes advisor metrics through the Prometheus client.
package prometheus

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fwojciec/advisor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "advisor"

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions    prometheus.Gauge
	Logins            *prometheus.CounterVec
	Turns             *prometheus.CounterVec
	GenerationLatency prometheus.Histogram
	RosterReloads     prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics registers the instruments with reg. A nil reg uses a fresh
// registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live advising sessions.",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		Turns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns by result.",
		}, []string{"result"}),
		GenerationLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_seconds",
			Help:      "Latency of retrieve-and-generate calls.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
		}),
		RosterReloads: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roster_reloads_total",
			Help:      "Roster cache invalidations triggered by file changes.",
		}),
		gatherer: reg,
	}
}

// ObserveLogin counts a login attempt by its outcome.
func (m *Metrics) ObserveLogin(rec advisor.StudentRecord, err error) {
	m.Logins.WithLabelValues(loginResult(rec, err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func loginResult(rec advisor.StudentRecord, err error) string {
	switch {
	case err == nil && rec.Guest:
		return "guest"
	case err == nil:
		return "ok"
	case errors.Is(err, advisor.ErrInvalidStudentID):
		return "invalid"
	case errors.Is(err, advisor.ErrStudentNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// Interface compliance check.
var _ advisor.Generator = (*Generator)(nil)

// Generator records latency and outcome of every call to the wrapped
// generator.
type Generator struct {
	next    advisor.Generator
	metrics *Metrics
}

// InstrumentGenerator wraps next with metrics.
func InstrumentGenerator(next advisor.Generator, m *Metrics) *Generator {
	return &Generator{next: next, metrics: m}
}

// Generate delegates to the wrapped generator.
func (g *Generator) Generate(ctx context.Context, req advisor.GenerationRequest) (advisor.Answer, error) {
	start := time.Now()
	ans, err := g.next.Generate(ctx, req)
	g.metrics.GenerationLatency.Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	g.metrics.Turns.WithLabelValues(result).Inc()
	return ans, err
}
