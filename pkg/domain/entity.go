package domain

import (
	"sync"
	"sync/atomic"
)

var lastEntityID atomic.Uint64

// NextID returns a fresh process-unique, monotonically increasing identifier.
func NextID() uint64 {
	return lastEntityID.Add(1)
}

type registration struct {
	token uint64
	fn    Listener
}

// Entity provides identity and a synchronous event registry.
// It is embedded by State, Transition, StateMachine and World.
type Entity struct {
	id uint64

	mu        sync.Mutex
	nextToken uint64
	listeners map[EventName][]registration
}

// NewEntity returns an entity with a fresh identifier.
func NewEntity() *Entity {
	e := &Entity{}
	e.initEntity()
	return e
}

func (e *Entity) initEntity() {
	e.id = NextID()
}

// InitEntity assigns a fresh identifier to an embedded Entity.
// Types outside this package that embed Entity by value call it once on construction.
func (e *Entity) InitEntity() {
	e.initEntity()
}

// ID returns the entity identifier.
func (e *Entity) ID() uint64 {
	return e.id
}

// AddListener registers fn for the named event and returns a function that removes it.
func (e *Entity) AddListener(name EventName, fn Listener) (remove func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners == nil {
		e.listeners = make(map[EventName][]registration)
	}
	e.nextToken++
	token := e.nextToken
	e.listeners[name] = append(e.listeners[name], registration{token: token, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		regs := e.listeners[name]
		for i, r := range regs {
			if r.token == token {
				e.listeners[name] = append(regs[:i:i], regs[i+1:]...)
				return
			}
		}
	}
}

// Fire invokes every listener registered for name, in registration order.
// A panicking listener aborts the remaining ones; nothing is rolled back.
func (e *Entity) Fire(source any, name EventName, payload any) {
	e.mu.Lock()
	regs := e.listeners[name]
	e.mu.Unlock()

	evt := Event{Name: name, Source: source, Payload: payload}
	for _, r := range regs {
		r.fn(evt)
	}
}
