package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by the lifecycle hooks.
type Metrics struct {
	Events         *prometheus.CounterVec
	Todos          *prometheus.GaugeVec
	RenderDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todomvc_events_total",
				Help: "Total number of dispatched events",
			},
			[]string{"type", "outcome"},
		),
		Todos: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "todomvc_todos",
				Help: "Number of todos after the last render",
			},
			[]string{"namespace", "state"},
		),
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todomvc_render_duration_seconds",
				Help:    "Duration of list renders",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"namespace"},
		),
	}
	reg.MustRegister(m.Events, m.Todos, m.RenderDuration)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			m.Events.WithLabelValues(string(e.Event.Type), OutcomeLabel(e)).Inc()
		},
		OnRender: func(ctx context.Context, e *domain.RenderEvent) {
			m.Todos.WithLabelValues(e.Namespace, "active").Set(float64(e.Active))
			m.Todos.WithLabelValues(e.Namespace, "completed").Set(float64(e.Total - e.Active))
			m.RenderDuration.WithLabelValues(e.Namespace).Observe(e.Duration.Seconds())
		},
	}
}

// OutcomeLabel classifies a dispatch: the edit outcome when there is one,
// otherwise miss, mutated or noop.
func OutcomeLabel(e *domain.DispatchEvent) string {
	switch {
	case e.Edit != domain.EditNone:
		return string(e.Edit)
	case e.Miss:
		return "miss"
	case e.Mutated:
		return "mutated"
	default:
		return "noop"
	}
}

// LoggingHooks logs every dispatch at Debug level and every miss at Info.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			level := slog.LevelDebug
			if e.Miss {
				level = slog.LevelInfo
			}
			logger.Log(ctx, level, "event",
				"type", e.Event.Type,
				"id", e.Event.ID,
				"outcome", OutcomeLabel(e),
			)
		},
		OnRender: func(ctx context.Context, e *domain.RenderEvent) {
			logger.Debug("render",
				"total", e.Total,
				"active", e.Active,
				"duration", e.Duration,
			)
		},
	}
}

// Combine fans every hook out to all of the given hook sets, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			for _, s := range sets {
				if s.OnDispatch != nil {
					s.OnDispatch(ctx, e)
				}
			}
		},
		OnRender: func(ctx context.Context, e *domain.RenderEvent) {
			for _, s := range sets {
				if s.OnRender != nil {
					s.OnRender(ctx, e)
				}
			}
		},
	}
}
