package domain

import "fmt"

// State is a node of the automaton graph.
// States are created and destroyed only through their StateMachine.
type State struct {
	Entity

	machine  *StateMachine
	name     string
	encoding Bits

	outgoing []*Transition // insertion order is selection priority
	incoming []*Transition
}

func newState(m *StateMachine) *State {
	s := &State{
		machine:  m,
		encoding: ZeroBits(m.stateVars),
	}
	s.initEntity()
	s.name = fmt.Sprintf("State%d", s.id)
	return s
}

// Machine returns the owning state machine.
func (s *State) Machine() *StateMachine {
	return s.machine
}

// Name returns the human-readable name.
func (s *State) Name() string {
	return s.name
}

// SetName renames the state and fires EventChanged.
func (s *State) SetName(name string) *State {
	s.name = name
	s.Fire(s, EventChanged, nil)
	return s
}

// Encoding returns a copy of the state's bit-vector encoding.
func (s *State) Encoding() Bits {
	return s.encoding.Clone()
}

// EncodingBit returns one bit of the encoding.
func (s *State) EncodingBit(index int) Bit {
	s.checkEncodingIndex(index)
	return s.encoding[index]
}

// SetEncoding sets one bit of the encoding and fires EventChanged.
func (s *State) SetEncoding(index int, value Bit) *State {
	s.checkEncodingIndex(index)
	s.encoding[index] = value
	s.Fire(s, EventChanged, nil)
	return s
}

func (s *State) checkEncodingIndex(index int) {
	if index < 0 || index >= len(s.encoding) {
		fault(ErrIndexOutOfRange, "encoding index %d of %d state variables", index, len(s.encoding))
	}
}

// OutgoingTransitions returns the outgoing transitions in priority order.
func (s *State) OutgoingTransitions() []*Transition {
	return append([]*Transition(nil), s.outgoing...)
}

// IncomingTransitions returns the transitions targeting this state.
func (s *State) IncomingTransitions() []*Transition {
	return append([]*Transition(nil), s.incoming...)
}

// TransitionsTo returns, in priority order, the outgoing transitions whose target is target.
func (s *State) TransitionsTo(target *State) []*Transition {
	var out []*Transition
	for _, t := range s.outgoing {
		if t.target == target {
			out = append(out, t)
		}
	}
	return out
}

// MooreActions returns the actuators that every outgoing transition drives to 1.
// Such an actuator is held for the whole dwell time of the state, whichever
// transition eventually fires. A state without outgoing transitions holds nothing.
func (s *State) MooreActions() []Signal {
	if len(s.outgoing) == 0 {
		return nil
	}
	var out []Signal
	for i, a := range s.machine.layout.Actuators {
		if s.holds(i) {
			out = append(out, a)
		}
	}
	return out
}

// MooreVector is MooreActions mapped onto a full actuator vector.
func (s *State) MooreVector() Bits {
	v := ZeroBits(len(s.machine.layout.Actuators))
	if len(s.outgoing) == 0 {
		return v
	}
	for i := range v {
		if s.holds(i) {
			v[i] = One
		}
	}
	return v
}

func (s *State) holds(actuator int) bool {
	for _, t := range s.outgoing {
		if t.outputs[actuator] != One {
			return false
		}
	}
	return true
}

// Adjacency bookkeeping. These never fire EventChanged: the Transition or
// StateMachine operation that calls them is responsible for notification.

func (s *State) addOutgoingTransition(t *Transition) {
	s.outgoing = append(s.outgoing, t)
}

func (s *State) removeOutgoingTransition(t *Transition) {
	s.outgoing = removeTransition(s.outgoing, t)
}

func (s *State) addIncomingTransition(t *Transition) {
	s.incoming = append(s.incoming, t)
}

func (s *State) removeIncomingTransition(t *Transition) {
	s.incoming = removeTransition(s.incoming, t)
}

func (s *State) resizeEncoding(n int) {
	next := ZeroBits(n)
	copy(next, s.encoding)
	s.encoding = next
}

func removeTransition(list []*Transition, t *Transition) []*Transition {
	for i, x := range list {
		if x == t {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	fault(ErrForeignTransition, "transition %d missing from adjacency list", t.id)
	return list
}
