package event

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/witchwood/sim/internal/core/ecs"
)

// Witch behaviour events, emitted by the witch AI and delivered at the start
// of the next frame.

type WitchSpottedPlayer struct {
	Witch    ecs.EntityID
	Distance float32
}

type WitchLostPlayer struct {
	Witch ecs.EntityID
}

type PatrolPointPicked struct {
	Witch  ecs.EntityID
	Target mgl32.Vec3
}

type PlayerCaught struct {
	Witch  ecs.EntityID
	Player ecs.EntityID
}
