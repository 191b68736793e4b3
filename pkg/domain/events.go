package domain

// EventName identifies a notification fired by an entity.
type EventName string

const (
	// EventChanged is fired by State, Transition and World on attribute mutation.
	EventChanged EventName = "changed"

	// Graph lifecycle, fired by the StateMachine. Payload: *State or *Transition.
	EventCreateState           EventName = "createState"
	EventAfterRemoveState      EventName = "afterRemoveState"
	EventCreateTransition      EventName = "createTransition"
	EventAfterRemoveTransition EventName = "afterRemoveTransition"

	// EventCurrentStateChanged is fired by the StateMachine. Payload: *State (nil when cleared).
	EventCurrentStateChanged EventName = "currentStateChanged"

	// World run control.
	EventStart EventName = "start"
	EventPause EventName = "pause"
	EventStop  EventName = "stop"
	// EventDone is fired when the world reports a terminal status. Payload: the status.
	EventDone EventName = "done"
)

// Event is the argument passed to listeners.
type Event struct {
	Name EventName
	// Source is the firing entity (*State, *Transition, *StateMachine, or a world).
	Source any
	// Payload is the event-specific argument, if any.
	Payload any
}

// State returns the payload as a state, or nil.
func (e Event) State() *State {
	s, _ := e.Payload.(*State)
	return s
}

// Transition returns the payload as a transition, or nil.
func (e Event) Transition() *Transition {
	t, _ := e.Payload.(*Transition)
	return t
}

// Listener receives events synchronously, in registration order. Listeners on
// a world's entities run under the world's lock and must not call back into it.
type Listener func(Event)
