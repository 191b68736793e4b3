package observability

import (
	"log/slog"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/world"
)

// LogEvents logs world lifecycle and machine structure events.
// Ticks are logged at Debug, everything else at Info.
func LogEvents(logger *slog.Logger, w *world.World) (detach func()) {
	m := w.Machine()
	var removers []func()
	on := func(e *domain.Entity, name domain.EventName, fn domain.Listener) {
		removers = append(removers, e.AddListener(name, fn))
	}

	on(&w.Entity, domain.EventStart, func(domain.Event) { logger.Info("world_start") })
	on(&w.Entity, domain.EventPause, func(domain.Event) { logger.Info("world_pause") })
	on(&w.Entity, domain.EventStop, func(domain.Event) { logger.Info("world_stop") })
	on(&w.Entity, domain.EventDone, func(e domain.Event) {
		status, _ := e.Payload.(world.Status)
		logger.Info("world_done", "details", status.Details)
	})
	on(&w.Entity, world.EventTick, func(e domain.Event) {
		tick := e.Payload.(world.Tick)
		logger.Debug("world_tick",
			"state", stateName(tick.State),
			"stalled", tick.Stalled(),
			"outputs", tick.Outputs.String(),
		)
	})

	on(&m.Entity, domain.EventCurrentStateChanged, func(e domain.Event) {
		logger.Info("current_state_changed", "state", stateName(e.State()))
	})
	on(&m.Entity, domain.EventCreateState, func(e domain.Event) {
		logger.Info("state_created", "id", e.State().ID())
	})
	on(&m.Entity, domain.EventAfterRemoveState, func(e domain.Event) {
		logger.Info("state_removed", "id", e.State().ID())
	})
	on(&m.Entity, domain.EventCreateTransition, func(e domain.Event) {
		t := e.Transition()
		logger.Info("transition_created", "id", t.ID(), "source", t.SourceState().ID(), "target", t.TargetState().ID())
	})
	on(&m.Entity, domain.EventAfterRemoveTransition, func(e domain.Event) {
		logger.Info("transition_removed", "id", e.Transition().ID())
	})

	return func() {
		for _, remove := range removers {
			remove()
		}
	}
}

func stateName(s *domain.State) string {
	if s == nil {
		return ""
	}
	return s.Name()
}
