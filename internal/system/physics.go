package system

import (
	"time"

	coresys "github.com/witchwood/sim/internal/core/system"
	"github.com/witchwood/sim/internal/physics"
)

// PhysicsSystem advances the physics world by one fixed step per frame.
// Phase 2 (Update).
type PhysicsSystem struct {
	world *physics.World
}

func NewPhysicsSystem(w *physics.World) *PhysicsSystem {
	return &PhysicsSystem{world: w}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PhysicsSystem) Update(_ time.Duration) {
	s.world.Step()
}
