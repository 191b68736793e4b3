package domain

// StateMachine owns the State/Transition graph and the current-state pointer.
// It is the sole mutation authority for the graph: every structural change
// goes through CreateState, RemoveState, CreateTransition or RemoveTransition.
//
// A StateMachine is not safe for concurrent use.
type StateMachine struct {
	Entity

	layout    Layout
	stateVars int

	states      []*State
	transitions []*Transition
	stateByID   map[uint64]*State
	transByID   map[uint64]*Transition

	current *State
}

// StepResult describes one step of the machine.
type StepResult struct {
	// Fired is the selected transition, or nil when the machine stalled.
	Fired *Transition
	// Outputs is the full actuator vector produced by the step.
	Outputs Bits
}

// Stalled reports whether no outgoing transition matched.
func (r StepResult) Stalled() bool {
	return r.Fired == nil
}

// NewStateMachine creates an empty machine wired to the given sensors and actuators,
// with stateVars bits of state encoding.
func NewStateMachine(layout Layout, stateVars int) *StateMachine {
	if stateVars < 0 {
		fault(ErrVectorLength, "negative state variable count %d", stateVars)
	}
	m := &StateMachine{
		layout: Layout{
			Sensors:   append([]Signal(nil), layout.Sensors...),
			Actuators: append([]Signal(nil), layout.Actuators...),
		},
		stateVars: stateVars,
		stateByID: make(map[uint64]*State),
		transByID: make(map[uint64]*Transition),
	}
	m.initEntity()
	return m
}

// Layout returns the sensors and actuators the machine is wired to.
func (m *StateMachine) Layout() Layout {
	return Layout{
		Sensors:   append([]Signal(nil), m.layout.Sensors...),
		Actuators: append([]Signal(nil), m.layout.Actuators...),
	}
}

// StateVarCount returns the width of every state encoding.
func (m *StateMachine) StateVarCount() int {
	return m.stateVars
}

// SetStateVarCount resizes every encoding to n bits, zero-filling new bits.
// Each state fires EventChanged.
func (m *StateMachine) SetStateVarCount(n int) {
	if n < 0 {
		fault(ErrVectorLength, "negative state variable count %d", n)
	}
	m.stateVars = n
	for _, s := range m.states {
		s.resizeEncoding(n)
		s.Fire(s, EventChanged, nil)
	}
}

// States returns the owned states in creation order.
func (m *StateMachine) States() []*State {
	return append([]*State(nil), m.states...)
}

// Transitions returns the owned transitions in creation order.
func (m *StateMachine) Transitions() []*Transition {
	return append([]*Transition(nil), m.transitions...)
}

// StateByID returns the owned state with the given id, or nil.
func (m *StateMachine) StateByID(id uint64) *State {
	return m.stateByID[id]
}

// TransitionByID returns the owned transition with the given id, or nil.
func (m *StateMachine) TransitionByID(id uint64) *Transition {
	return m.transByID[id]
}

// Owns reports whether s belongs to this machine's current graph.
func (m *StateMachine) Owns(s *State) bool {
	return s != nil && m.stateByID[s.id] == s
}

// OwnsTransition reports whether t belongs to this machine's current graph.
func (m *StateMachine) OwnsTransition(t *Transition) bool {
	return t != nil && m.transByID[t.id] == t
}

func (m *StateMachine) mustOwnState(s *State) {
	if !m.Owns(s) {
		if s == nil {
			fault(ErrForeignState, "nil state")
		}
		fault(ErrForeignState, "state %d", s.id)
	}
}

func (m *StateMachine) mustOwnTransition(t *Transition) {
	if !m.OwnsTransition(t) {
		if t == nil {
			fault(ErrForeignTransition, "nil transition")
		}
		fault(ErrForeignTransition, "transition %d", t.id)
	}
}

// InitialState returns the state Reset moves to: the first created state, or nil.
func (m *StateMachine) InitialState() *State {
	if len(m.states) == 0 {
		return nil
	}
	return m.states[0]
}

// CurrentState returns the current state, or nil.
func (m *StateMachine) CurrentState() *State {
	return m.current
}

// CreateState adds a state with a zero encoding and fires EventCreateState.
func (m *StateMachine) CreateState() *State {
	s := newState(m)
	m.states = append(m.states, s)
	m.stateByID[s.id] = s
	m.Fire(m, EventCreateState, s)
	return s
}

// RemoveState removes every transition incident to s, then s itself.
// If s was the current state, the current state is cleared and
// EventCurrentStateChanged fires with a nil state before EventAfterRemoveState.
func (m *StateMachine) RemoveState(s *State) {
	m.mustOwnState(s)

	for len(s.outgoing) > 0 {
		m.RemoveTransition(s.outgoing[0])
	}
	for len(s.incoming) > 0 {
		m.RemoveTransition(s.incoming[0])
	}

	for i, x := range m.states {
		if x == s {
			m.states = append(m.states[:i:i], m.states[i+1:]...)
			break
		}
	}
	delete(m.stateByID, s.id)

	if m.current == s {
		m.current = nil
		m.Fire(m, EventCurrentStateChanged, (*State)(nil))
	}
	m.Fire(m, EventAfterRemoveState, s)
}

// CreateTransition adds a transition from source to target, both owned by m,
// and fires EventCreateTransition. The new transition has the lowest priority
// among source's outgoing transitions.
func (m *StateMachine) CreateTransition(source, target *State) *Transition {
	m.mustOwnState(source)
	m.mustOwnState(target)

	t := newTransition(m, source, target)
	m.transitions = append(m.transitions, t)
	m.transByID[t.id] = t
	m.Fire(m, EventCreateTransition, t)
	return t
}

// RemoveTransition detaches t from its endpoints and fires EventAfterRemoveTransition.
func (m *StateMachine) RemoveTransition(t *Transition) {
	m.mustOwnTransition(t)

	t.detach()
	for i, x := range m.transitions {
		if x == t {
			m.transitions = append(m.transitions[:i:i], m.transitions[i+1:]...)
			break
		}
	}
	delete(m.transByID, t.id)
	m.Fire(m, EventAfterRemoveTransition, t)
}

// Clear removes every state (and so every transition), newest first.
func (m *StateMachine) Clear() {
	for len(m.states) > 0 {
		m.RemoveState(m.states[len(m.states)-1])
	}
}

// Reset moves to the initial state (nil for an empty graph) and fires EventCurrentStateChanged.
func (m *StateMachine) Reset() {
	m.current = m.InitialState()
	m.Fire(m, EventCurrentStateChanged, m.current)
}

// Select returns the first outgoing transition of the current state whose
// guards accept sensors, or nil. It does not change the machine.
func (m *StateMachine) Select(sensors Bits) *Transition {
	if len(sensors) != len(m.layout.Sensors) {
		fault(ErrVectorLength, "%d sensor values for %d sensors", len(sensors), len(m.layout.Sensors))
	}
	if m.current == nil {
		return nil
	}
	for _, t := range m.current.outgoing {
		if t.Matches(sensors) {
			return t
		}
	}
	return nil
}

// Step advances the machine by one tick and returns the actuator vector.
func (m *StateMachine) Step(sensors Bits) Bits {
	return m.Advance(sensors).Outputs
}

// Advance performs one step:
//   - the first outgoing transition (in creation order) whose guards accept
//     sensors fires; the current state becomes its target and the outputs are
//     the transition's outputs OR the new state's Moore vector;
//   - if none matches the machine stalls: the current state is kept, no event
//     fires, and the outputs are the current state's Moore vector.
//
// Without a current state the outputs are all zero.
func (m *StateMachine) Advance(sensors Bits) StepResult {
	t := m.Select(sensors)
	if t == nil {
		if m.current == nil {
			return StepResult{Outputs: ZeroBits(len(m.layout.Actuators))}
		}
		return StepResult{Outputs: m.current.MooreVector()}
	}

	m.current = t.target
	m.Fire(m, EventCurrentStateChanged, m.current)

	return StepResult{
		Fired:   t,
		Outputs: t.outputs.Or(m.current.MooreVector()),
	}
}
