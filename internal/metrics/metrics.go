// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector the server registers. One instance is
// shared by the clock, the dispatcher, and the HTTP layer.
type Metrics struct {
	TicksTotal   prometheus.Counter
	TickSkips    prometheus.Counter
	TickFailures prometheus.Counter
	TickSeconds  prometheus.Histogram

	Actions *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
}

// New registers all collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TicksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "clawcity_ticks_total",
			Help: "Tick pipelines completed.",
		}),
		TickSkips: factory.NewCounter(prometheus.CounterOpts{
			Name: "clawcity_tick_skips_total",
			Help: "Clock fires skipped because the previous pipeline was still running.",
		}),
		TickFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "clawcity_tick_failures_total",
			Help: "Tick pipelines rolled back by an error.",
		}),
		TickSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "clawcity_tick_duration_seconds",
			Help:    "Wall time of one tick pipeline.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		Actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clawcity_actions_total",
			Help: "Dispatched actions by verb and outcome.",
		}, []string{"verb", "outcome"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clawcity_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "status"}),
	}
}

// ObserveAction satisfies the dispatcher's metrics hook.
func (m *Metrics) ObserveAction(verb, outcome string) {
	m.Actions.WithLabelValues(verb, outcome).Inc()
}

// ObserveTick records a completed pipeline run.
func (m *Metrics) ObserveTick(seconds float64) {
	m.TicksTotal.Inc()
	m.TickSeconds.Observe(seconds)
}

// ObserveTickSkip records a clock fire dropped due to overrun.
func (m *Metrics) ObserveTickSkip() { m.TickSkips.Inc() }

// ObserveTickFailure records a rolled-back pipeline.
func (m *Metrics) ObserveTickFailure() { m.TickFailures.Inc() }

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, status string) {
	m.HTTPRequests.WithLabelValues(route, status).Inc()
}
