// Package observability packages Prometheus collectors as engine lifecycle
// hooks: wire Metrics.Hooks() into the engine and mount promhttp.Handler()
// on the transport of your choice.
package observability

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine collectors.
type Metrics struct {
	invocations     *prometheus.CounterVec
	events          *prometheus.CounterVec
	renderDurations *prometheus.HistogramVec
}

// NewMetrics builds the collectors and registers them with the registerer.
// Pass prometheus.DefaultRegisterer for the process-global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_state_invocations_total",
				Help: "Total number of state handler invocations",
			},
			[]string{"kind", "state", "forced"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_events_resolved_total",
				Help: "Total number of event addresses resolved to a widget state",
			},
			[]string{"event_type", "state"},
		),
		renderDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "arbor_render_duration_seconds",
				Help: "Duration of render pipeline runs",
			},
			[]string{"kind", "result"},
		),
	}
	reg.MustRegister(m.invocations, m.events, m.renderDurations)
	return m
}

// Invocations exposes the invocation counter, mainly for tests.
func (m *Metrics) Invocations() *prometheus.CounterVec { return m.invocations }

// Events exposes the event resolution counter, mainly for tests.
func (m *Metrics) Events() *prometheus.CounterVec { return m.events }

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(ctx context.Context, e *domain.StateEvent) {
			forced := "false"
			if e.Forced {
				forced = "true"
			}
			m.invocations.WithLabelValues(e.Kind, e.State, forced).Inc()
		},
		OnRenderComplete: func(ctx context.Context, e *domain.RenderEvent) {
			m.renderDurations.WithLabelValues(e.Kind, string(e.Result)).Observe(e.Duration.Seconds())
		},
		OnEventResolved: func(ctx context.Context, e *domain.EventResolution) {
			m.events.WithLabelValues(e.EventType, e.State).Inc()
		},
	}
}
