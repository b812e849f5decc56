package system

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/witchwood/sim/internal/component"
	"github.com/witchwood/sim/internal/core/ecs"
	"github.com/witchwood/sim/internal/core/event"
	"github.com/witchwood/sim/internal/physics"
)

// Scene is the live state shared by the frame systems: the entity registry,
// the physics world and the event bus, plus the one player entity and its
// body. The player fields are set once at construction and never searched
// for.
type Scene struct {
	ECS     *ecs.World
	Stores  *component.Stores
	Physics *physics.World
	Bus     *event.Bus

	Player     ecs.EntityID
	PlayerBody physics.BodyHandle
}

// PlayerPosition returns the player's body translation, or false when the
// body is gone.
func (s *Scene) PlayerPosition() (mgl32.Vec3, bool) {
	b, ok := s.Physics.Body(s.PlayerBody)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return b.Translation(), true
}
