/*
Package domain contains the deterministic automaton engine at the heart of Automata.

It defines the State/Transition graph owned by a StateMachine and the stepping
algorithm that turns sensor readings into actuator outputs once per tick. This
package is kept pure and free of external dependencies like I/O, timers or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Entity: process-unique identity plus a synchronous listener registry.
  - State: a node with a bit-vector encoding and ordered adjacency lists.
  - Transition: a guarded, directed edge carrying an output vector.
  - StateMachine: sole owner and mutation authority of the graph. Step selects
    the first matching outgoing transition in creation order.

# Signals

Sensor values and transition outputs are Bits ("0" or "1"). Transition inputs
are Guards, which add the wildcard "-" that accepts either value.

# Misuse

Structural misuse (foreign states, vector length mismatches, out of range
indices) panics with an error wrapping one of the sentinel errors in errors.go.
Such calls are programming errors; absorbing them would corrupt the graph.

# Reentrancy

Listeners run synchronously on the goroutine that fired the event. Mutating the
machine or the firing entity from inside a listener is not supported.
*/
package domain
