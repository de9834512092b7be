package observability

import (
	"context"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	Steps      *prometheus.CounterVec
	Outcomes   *prometheus.CounterVec
	RunLength  *prometheus.HistogramVec
	TapeLength *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_steps_total",
				Help: "Total number of committed transitions",
			},
			[]string{"machine"},
		),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_terminal_outcomes_total",
				Help: "Number of runs that ended halted or rejected",
			},
			[]string{"machine", "outcome"},
		),
		RunLength: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "turing_run_steps",
				Help:    "Step count at the end of a run",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"machine"},
		),
		TapeLength: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "turing_tape_cells",
				Help: "Tape length after the last observed step",
			},
			[]string{"machine"},
		),
	}

	for _, c := range []prometheus.Collector{m.Steps, m.Outcomes, m.RunLength, m.TapeLength} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	terminal := func(outcome domain.Outcome) func(context.Context, *domain.StepEvent) {
		return func(_ context.Context, e *domain.StepEvent) {
			m.Outcomes.WithLabelValues(e.Machine, string(outcome)).Inc()
			m.RunLength.WithLabelValues(e.Machine).Observe(float64(e.StepCount))
		}
	}

	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.Machine).Inc()
			m.TapeLength.WithLabelValues(e.Machine).Set(float64(e.TapeLen))
		},
		OnHalt:   terminal(domain.Halted),
		OnReject: terminal(domain.Rejected),
	}
}
