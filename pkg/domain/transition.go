package domain

// Transition is a directed, guarded edge between two states of the same machine.
// The transition references its endpoints; it never owns them.
type Transition struct {
	Entity

	machine *StateMachine
	source  *State
	target  *State

	inputs  Guards // one per sensor
	outputs Bits   // one per actuator
}

// newTransition registers the transition in both endpoints' adjacency lists.
// New transitions accept any input and drive no output.
func newTransition(m *StateMachine, source, target *State) *Transition {
	t := &Transition{
		machine: m,
		source:  source,
		target:  target,
		inputs:  AnyGuards(len(m.layout.Sensors)),
		outputs: ZeroBits(len(m.layout.Actuators)),
	}
	t.initEntity()
	source.addOutgoingTransition(t)
	target.addIncomingTransition(t)
	return t
}

// detach removes the transition from both endpoints' adjacency lists.
func (t *Transition) detach() {
	t.source.removeOutgoingTransition(t)
	t.target.removeIncomingTransition(t)
}

// Machine returns the owning state machine.
func (t *Transition) Machine() *StateMachine {
	return t.machine
}

// SourceState returns the state the transition leaves.
func (t *Transition) SourceState() *State {
	return t.source
}

// TargetState returns the state the transition enters.
func (t *Transition) TargetState() *State {
	return t.target
}

// SetTargetState moves the transition onto a new target owned by the same machine.
// Its priority among the source's outgoing transitions is unchanged.
func (t *Transition) SetTargetState(target *State) *Transition {
	t.machine.mustOwnState(target)
	if target == t.target {
		return t
	}
	t.target.removeIncomingTransition(t)
	t.target = target
	target.addIncomingTransition(t)
	t.Fire(t, EventChanged, nil)
	return t
}

// Inputs returns a copy of the input guard vector.
func (t *Transition) Inputs() Guards {
	return t.inputs.Clone()
}

// Outputs returns a copy of the output vector.
func (t *Transition) Outputs() Bits {
	return t.outputs.Clone()
}

// SetInput sets the guard for one sensor and fires EventChanged.
func (t *Transition) SetInput(index int, g Guard) *Transition {
	if index < 0 || index >= len(t.inputs) {
		fault(ErrIndexOutOfRange, "input index %d of %d sensors", index, len(t.inputs))
	}
	t.inputs[index] = g
	t.Fire(t, EventChanged, nil)
	return t
}

// SetInputs replaces the whole guard vector and fires EventChanged.
func (t *Transition) SetInputs(inputs Guards) *Transition {
	if len(inputs) != len(t.inputs) {
		fault(ErrVectorLength, "%d inputs for %d sensors", len(inputs), len(t.inputs))
	}
	t.inputs = inputs.Clone()
	t.Fire(t, EventChanged, nil)
	return t
}

// SetOutput sets one actuator output and fires EventChanged.
// The source state's Moore actions are derived on demand and need no refresh.
func (t *Transition) SetOutput(index int, b Bit) *Transition {
	if index < 0 || index >= len(t.outputs) {
		fault(ErrIndexOutOfRange, "output index %d of %d actuators", index, len(t.outputs))
	}
	t.outputs[index] = b
	t.Fire(t, EventChanged, nil)
	return t
}

// SetOutputs replaces the whole output vector and fires EventChanged.
func (t *Transition) SetOutputs(outputs Bits) *Transition {
	if len(outputs) != len(t.outputs) {
		fault(ErrVectorLength, "%d outputs for %d actuators", len(outputs), len(t.outputs))
	}
	t.outputs = outputs.Clone()
	t.Fire(t, EventChanged, nil)
	return t
}

// Matches reports whether every input guard accepts the sensor value at the same index.
func (t *Transition) Matches(sensors Bits) bool {
	return t.inputs.Accepts(sensors)
}
