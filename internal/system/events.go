package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/witchwood/sim/internal/core/event"
	coresys "github.com/witchwood/sim/internal/core/system"
)

// EventDispatchSystem swaps the bus buffers and delivers last frame's
// events. Phase 1 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// SubscribeWitchLog logs witch behaviour changes.
func SubscribeWitchLog(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(e event.WitchSpottedPlayer) {
		log.Info("witch spotted the player, chasing",
			zap.Uint64("witch", uint64(e.Witch)),
			zap.Float32("distance", e.Distance))
	})
	event.Subscribe(bus, func(e event.WitchLostPlayer) {
		log.Info("witch lost the player, resuming patrol", zap.Uint64("witch", uint64(e.Witch)))
	})
	event.Subscribe(bus, func(e event.PatrolPointPicked) {
		log.Debug("witch picked patrol point",
			zap.Uint64("witch", uint64(e.Witch)),
			zap.Float32("x", e.Target.X()),
			zap.Float32("z", e.Target.Z()))
	})
	event.Subscribe(bus, func(e event.PlayerCaught) {
		log.Info("player caught", zap.Uint64("witch", uint64(e.Witch)))
	})
}
