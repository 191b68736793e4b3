package world

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/schema"
)

const (
	MinTimeStep     = time.Millisecond
	MaxTimeStep     = time.Second
	DefaultTimeStep = 20 * time.Millisecond
)

// EventTick fires once per machine step with a Tick payload, before any EventDone.
const EventTick domain.EventName = "tick"

// Tick describes one machine step taken by the world.
type Tick struct {
	State   *domain.State      // current state after the step, nil without one
	Fired   *domain.Transition // nil when the machine stalled
	Sensors domain.Bits        // the input the step consumed
	Outputs domain.Bits
}

// Stalled reports whether no transition fired.
func (t Tick) Stalled() bool {
	return t.Fired == nil
}

// World owns one StateMachine, its signal vectors, and the tick scheduler.
//
// Events from the world and its machine fire while the world's lock is held.
// A listener must not call World methods; doing so deadlocks. Listeners
// should record what they need or signal another goroutine.
type World struct {
	domain.Entity

	mu sync.Mutex

	machine   *domain.StateMachine
	layout    domain.Layout
	stateVars int
	sensors   domain.Bits
	actuators domain.Bits
	timeStep  time.Duration
	running   bool
	lastTick  Tick

	hooks  Domain
	clock  ports.Clock
	logger *slog.Logger

	// timer is the single pending tick. gen is bumped whenever it is replaced
	// or cancelled so a callback that already left the timer queue can tell
	// it is stale.
	timer ports.Timer
	gen   uint64
}

// New creates a world wired to layout and resets it.
func New(layout domain.Layout, opts ...Option) *World {
	w := &World{
		timeStep: DefaultTimeStep,
		hooks:    idle{},
		clock:    SystemClock(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.InitEntity()
	w.machine = domain.NewStateMachine(layout, w.stateVars)
	w.layout = w.machine.Layout()
	w.resetLocked()
	return w
}

// Machine returns the driven state machine. Mutate it through Edit while the
// world may be running.
func (w *World) Machine() *domain.StateMachine {
	return w.machine
}

// Edit runs fn with exclusive access to the machine.
func (w *World) Edit(fn func(m *domain.StateMachine)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.machine)
}

// Layout returns the sensors and actuators, fixed for the world's lifetime.
func (w *World) Layout() domain.Layout {
	return w.machine.Layout()
}

// IsRunning reports whether ticks are being scheduled.
func (w *World) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// TimeStep returns the tick period.
func (w *World) TimeStep() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timeStep
}

// SetTimeStep changes the tick period and fires EventChanged.
// A pending tick keeps its delay; the new period applies from the next one.
func (w *World) SetTimeStep(d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := checkTimeStep(d); err != nil {
		return err
	}
	w.timeStep = d
	w.Fire(w, domain.EventChanged, nil)
	return nil
}

// SensorValues returns a copy of the sensor vector.
func (w *World) SensorValues() domain.Bits {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sensors.Clone()
}

// ActuatorValues returns a copy of the actuator vector.
func (w *World) ActuatorValues() domain.Bits {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.actuators.Clone()
}

// SensorValue returns one sensor, or domain.ErrIndexOutOfRange.
func (w *World) SensorValue(index int) (domain.Bit, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := checkIndex("sensor", index, len(w.sensors)); err != nil {
		return domain.Zero, err
	}
	return w.sensors[index], nil
}

// SetSensorValue sets one sensor for the next tick and fires EventChanged.
func (w *World) SetSensorValue(index int, b domain.Bit) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := checkIndex("sensor", index, len(w.sensors)); err != nil {
		return err
	}
	w.sensors[index] = b
	w.Fire(w, domain.EventChanged, nil)
	return nil
}

// ActuatorValue returns one actuator, or domain.ErrIndexOutOfRange.
func (w *World) ActuatorValue(index int) (domain.Bit, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := checkIndex("actuator", index, len(w.actuators)); err != nil {
		return domain.Zero, err
	}
	return w.actuators[index], nil
}

// SetActuatorValue overrides one actuator until the next tick and fires EventChanged.
func (w *World) SetActuatorValue(index int, b domain.Bit) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := checkIndex("actuator", index, len(w.actuators)); err != nil {
		return err
	}
	w.actuators[index] = b
	w.Fire(w, domain.EventChanged, nil)
	return nil
}

// LastTick returns the most recent machine step, zero before the first one.
func (w *World) LastTick() Tick {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastTick
}

// Status returns the domain's current status.
func (w *World) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hooks.Status()
}

// Reset zeroes the signal vectors, resets the machine and the domain, and fires EventChanged.
func (w *World) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

func (w *World) resetLocked() {
	w.sensors = domain.ZeroBits(len(w.layout.Sensors))
	w.actuators = domain.ZeroBits(len(w.layout.Actuators))
	w.lastTick = Tick{}
	w.machine.Reset()
	w.hooks.OnReset(w.io())
	w.Fire(w, domain.EventChanged, nil)
}

// Start resets first when there is no current state or the domain is done,
// then runs one tick immediately and keeps ticking every time step.
// It does nothing when the machine has no states.
func (w *World) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.machine.CurrentState() == nil || w.hooks.Status().Done {
		w.resetLocked()
	}
	if w.machine.CurrentState() == nil {
		w.logger.Debug("world not started: machine has no states")
		return
	}
	w.running = true
	w.logger.Info("world started", "time_step", w.timeStep)
	w.Fire(w, domain.EventStart, nil)
	w.stepLocked(w.timeStep)
}

// Step consumes elapsed in whole time steps, one machine step each, while the
// world is running. EventChanged fires afterwards in every case. If the world
// is still running the next tick is scheduled and will be credited with the
// measured wall-clock delay plus the unconsumed remainder.
func (w *World) Step(elapsed time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stepLocked(elapsed)
}

func (w *World) stepLocked(elapsed time.Duration) {
	for elapsed >= w.timeStep && w.running {
		if w.tickLocked() {
			w.pauseLocked()
			status := w.hooks.Status()
			w.logger.Info("world done", "details", status.Details)
			w.Fire(w, domain.EventDone, status)
		}
		elapsed -= w.timeStep
	}

	w.Fire(w, domain.EventChanged, nil)

	if w.running {
		w.scheduleLocked(elapsed)
	}
}

// StepOnce performs exactly one machine step whether or not the world is
// running, then fires EventChanged. A running world that finishes is paused.
func (w *World) StepOnce() Tick {
	w.mu.Lock()
	defer w.mu.Unlock()

	done := w.tickLocked()
	tick := w.lastTick
	if done {
		if w.running {
			w.pauseLocked()
		}
		w.Fire(w, domain.EventDone, w.hooks.Status())
	}
	w.Fire(w, domain.EventChanged, nil)
	return tick
}

// tickLocked runs one machine step and the domain hooks. It reports whether
// the domain is done.
func (w *World) tickLocked() bool {
	sensors := w.sensors.Clone()
	res := w.machine.Advance(sensors)
	w.actuators = res.Outputs
	w.hooks.OnStep(w.io())

	tick := Tick{State: w.machine.CurrentState(), Fired: res.Fired, Sensors: sensors, Outputs: res.Outputs.Clone()}
	w.lastTick = tick
	w.logger.Debug("tick", "state", stateName(tick.State), "stalled", tick.Stalled(), "actuators", res.Outputs.String())
	w.Fire(w, EventTick, tick)

	return w.hooks.Status().Done
}

func (w *World) scheduleLocked(remainder time.Duration) {
	w.cancelLocked()
	gen := w.gen
	ref := w.clock.Now()
	w.timer = w.clock.AfterFunc(w.timeStep, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if gen != w.gen || !w.running {
			return
		}
		w.timer = nil
		w.stepLocked(w.clock.Now().Sub(ref) + remainder)
	})
}

func (w *World) cancelLocked() {
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Pause stops running, cancels the pending tick and fires EventPause.
func (w *World) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pauseLocked()
}

func (w *World) pauseLocked() {
	w.running = false
	w.cancelLocked()
	w.logger.Info("world paused")
	w.Fire(w, domain.EventPause, nil)
}

// Stop stops running, cancels the pending tick, resets and fires EventStop.
func (w *World) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
	w.cancelLocked()
	w.resetLocked()
	w.logger.Info("world stopped")
	w.Fire(w, domain.EventStop, nil)
}

// Snapshot captures the machine and the world parameters.
func (w *World) Snapshot() *schema.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return schema.FromMachine(w.machine, schema.WorldParams{TimeStep: w.timeStep})
}

// Load replaces the graph and parameters with the document's, pausing a
// running world first. The world is reset afterwards. The document must
// declare the world's sensors and actuators (schema.ErrLayoutMismatch
// otherwise). On error nothing changes and no event fires.
func (w *World) Load(doc *schema.Document) (schema.Mapping, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	params, err := doc.Params()
	if err != nil {
		return schema.Mapping{}, err
	}
	if params.TimeStep != 0 {
		if err := checkTimeStep(params.TimeStep); err != nil {
			return schema.Mapping{}, err
		}
	}
	if err := schema.Validate(doc); err != nil {
		return schema.Mapping{}, err
	}
	if err := schema.CheckLayout(doc, w.layout); err != nil {
		return schema.Mapping{}, err
	}

	if w.running {
		w.pauseLocked()
	}
	mapping, err := schema.Restore(doc, w.machine)
	if err != nil {
		return schema.Mapping{}, err
	}
	if params.TimeStep != 0 {
		w.timeStep = params.TimeStep
	}
	w.resetLocked()
	return mapping, nil
}

func (w *World) io() *IO {
	return &IO{Layout: w.layout, Sensors: w.sensors, Actuators: w.actuators}
}

func checkTimeStep(d time.Duration) error {
	if d < MinTimeStep || d > MaxTimeStep {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrTimeStepRange, d, MinTimeStep, MaxTimeStep)
	}
	return nil
}

func clampTimeStep(d time.Duration) time.Duration {
	return min(max(d, MinTimeStep), MaxTimeStep)
}

func checkIndex(kind string, index, n int) error {
	if index < 0 || index >= n {
		return fmt.Errorf("%w: %s index %d of %d", domain.ErrIndexOutOfRange, kind, index, n)
	}
	return nil
}

func stateName(s *domain.State) string {
	if s == nil {
		return ""
	}
	return s.Name()
}
