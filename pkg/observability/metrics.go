package observability

import (
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/world"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for a World.
type Metrics struct {
	Ticks   prometheus.Counter
	Stalls  prometheus.Counter
	Fired   *prometheus.CounterVec
	Done    prometheus.Counter
	Running prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "automata_ticks_total",
			Help: "Total number of machine steps taken by the world",
		}),
		Stalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "automata_stalls_total",
			Help: "Steps in which no outgoing transition matched",
		}),
		Fired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automata_transitions_fired_total",
				Help: "Fired transitions by target state",
			},
			[]string{"target"},
		),
		Done: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "automata_runs_done_total",
			Help: "Runs the domain reported as finished",
		}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "automata_world_running",
			Help: "1 while the world is ticking",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Ticks, m.Stalls, m.Fired, m.Done, m.Running)
	}
	return m
}

// Attach subscribes the collectors to w and returns a detach function.
func (m *Metrics) Attach(w *world.World) (detach func()) {
	if w.IsRunning() {
		m.Running.Set(1)
	}
	removers := []func(){
		w.AddListener(world.EventTick, func(e domain.Event) {
			tick := e.Payload.(world.Tick)
			m.Ticks.Inc()
			if tick.Stalled() {
				m.Stalls.Inc()
				return
			}
			m.Fired.WithLabelValues(tick.Fired.TargetState().Name()).Inc()
		}),
		w.AddListener(domain.EventStart, func(domain.Event) { m.Running.Set(1) }),
		w.AddListener(domain.EventPause, func(domain.Event) { m.Running.Set(0) }),
		w.AddListener(domain.EventStop, func(domain.Event) { m.Running.Set(0) }),
		w.AddListener(domain.EventDone, func(domain.Event) { m.Done.Inc() }),
	}
	return func() {
		for _, remove := range removers {
			remove()
		}
	}
}
