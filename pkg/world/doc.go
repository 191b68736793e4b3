// Package world couples a state machine to named sensors and actuators and
// drives it with a drift-corrected tick scheduler.
//
// A World owns exactly one domain.StateMachine. Each tick it hands the current
// sensor vector to the machine, publishes the resulting actuator vector, and
// lets a Domain advance its own physics and report whether the run is over:
//
//	w := world.New(layout, world.WithDomain(arena), world.WithLogger(logger))
//	w.Edit(func(m *domain.StateMachine) {
//	    s0 := m.CreateState()
//	    m.CreateTransition(s0, s0)
//	})
//	w.Start()
//
// All World methods are safe for concurrent use. Listeners run while the world
// lock is held and must not call back into the World or its machine.
package world
