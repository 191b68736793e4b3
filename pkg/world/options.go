package world

import (
	"log/slog"
	"time"

	"github.com/aretw0/automata/pkg/ports"
)

// Option configures a World.
type Option func(*World)

// WithDomain installs the application hooks.
func WithDomain(d Domain) Option {
	return func(w *World) {
		w.hooks = d
	}
}

// WithClock replaces the wall clock, typically with a manual clock in tests.
func WithClock(c ports.Clock) Option {
	return func(w *World) {
		w.clock = c
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(w *World) {
		w.logger = logger
	}
}

// WithTimeStep sets the tick period. Values outside the bounds are clamped.
func WithTimeStep(d time.Duration) Option {
	return func(w *World) {
		w.timeStep = clampTimeStep(d)
	}
}

// WithStateVars sets the encoding width of the machine's states.
func WithStateVars(n int) Option {
	return func(w *World) {
		w.stateVars = n
	}
}
