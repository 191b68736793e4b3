/*
Package automata is a deterministic finite-state machine engine for driving
simple reactive worlds, such as a robot in a maze.

A machine is a graph of states and guarded transitions wired to a fixed set of
binary sensors and actuators. Each tick the world feeds the sensor vector to
the machine, which fires the first outgoing transition of the current state
whose guards accept it and produces an actuator vector. Actuators driven by
every outgoing transition of a state are that state's Moore actions and stay
on while the machine rests there.

# Packages

  - pkg/domain: State, Transition, StateMachine and the event registry.
  - pkg/world: World, the drift-corrected tick scheduler and Domain hooks.
  - pkg/schema: the document format, validation and restore.
  - pkg/library: save/load orchestration over a ports.DocumentStore.
  - pkg/adapters: memory, file, redis and Loam storage; HTTP and MCP transports.

# Usage

A Lab loads documents from a library (a Loam directory by default) into a
world and saves edited machines to a store.

	package main

	import (
		"context"
		"log"
		"time"

		"github.com/aretw0/automata"
	)

	func main() {
		lab, err := automata.Open("./machines")
		if err != nil {
			log.Fatal(err)
		}

		w, err := lab.Load(context.Background(), "wall-follower")
		if err != nil {
			log.Fatal(err)
		}

		w.Start()
		time.Sleep(time.Second)
		w.Pause()
		log.Println(w.View().Actuators)
	}
*/
package automata
