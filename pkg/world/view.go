package world

import "github.com/aretw0/automata/pkg/domain"

// View is a consistent snapshot of a world, taken under one lock.
type View struct {
	Running    bool       `json:"running"`
	TimeStepMS int64      `json:"time_step_ms"`
	State      *StateView `json:"state,omitempty"`
	Sensors    string     `json:"sensors"`
	Actuators  string     `json:"actuators"`
	// Fired is the id of the transition taken by the last tick, zero when it
	// stalled or before the first tick.
	Fired  uint64 `json:"fired,omitempty"`
	Status Status `json:"status"`
}

// StateView identifies the current state in a View.
type StateView struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Encoding string `json:"encoding,omitempty"`
}

// View returns the current run state.
func (w *World) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		Running:    w.running,
		TimeStepMS: w.timeStep.Milliseconds(),
		Sensors:    w.sensors.String(),
		Actuators:  w.actuators.String(),
		Status:     w.hooks.Status(),
	}
	if s := w.machine.CurrentState(); s != nil {
		v.State = &StateView{ID: s.ID(), Name: s.Name(), Encoding: s.Encoding().String()}
	}
	if t := w.lastTick.Fired; t != nil && w.machine.OwnsTransition(t) {
		v.Fired = t.ID()
	}
	return v
}

// CurrentState returns the machine's current state, or nil.
func (w *World) CurrentState() *domain.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.machine.CurrentState()
}
