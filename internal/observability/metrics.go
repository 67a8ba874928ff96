// Package observability bridges engine lifecycle hooks to Prometheus.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aretw0/flume/pkg/domain"
)

// Metrics holds the Prometheus instruments fed by engine hooks.
type Metrics struct {
	runsTotal      prometheus.Counter
	runsEscalated  prometheus.Counter
	stagesTotal    *prometheus.CounterVec
	abilitiesTotal *prometheus.CounterVec
	eventsPerRun   prometheus.Histogram
}

// NewMetrics registers the pipeline instruments with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "flume_runs_total",
			Help: "Completed pipeline runs.",
		}),
		runsEscalated: factory.NewCounter(prometheus.CounterOpts{
			Name: "flume_runs_escalated_total",
			Help: "Runs that ended escalated to a human agent.",
		}),
		stagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flume_stages_total",
			Help: "Stage executions by outcome.",
		}, []string{"stage", "outcome"}),
		abilitiesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flume_abilities_total",
			Help: "Ability invocations by outcome.",
		}, []string{"namespace", "ability", "outcome"}),
		eventsPerRun: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "flume_run_events",
			Help:    "Events recorded per run.",
			Buckets: prometheus.LinearBuckets(5, 10, 8),
		}),
	}
}

// Hooks returns lifecycle hooks that feed the instruments.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnd: func(_ context.Context, ev *domain.StageEvent) {
			outcome := "completed"
			if ev.Skipped {
				outcome = "skipped"
			}
			m.stagesTotal.WithLabelValues(ev.Stage, outcome).Inc()
		},
		OnAbilityEnd: func(_ context.Context, ev *domain.AbilityEvent) {
			outcome := "ok"
			if ev.IsError {
				outcome = "error"
			}
			m.abilitiesTotal.WithLabelValues(string(ev.Namespace), ev.Ability, outcome).Inc()
		},
		OnRunCompleted: func(_ context.Context, state domain.State) {
			m.runsTotal.Inc()
			if state.GetString(domain.KeyTicketStatus) == domain.TicketStatusNeedsEscalation {
				m.runsEscalated.Inc()
			}
			m.eventsPerRun.Observe(float64(len(state.Events())))
		},
	}
}
