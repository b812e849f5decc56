package component

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/witchwood/sim/internal/physics"
)

// Components are pure data. Systems own every mutation.

// Body links an entity to its physics body and the collider bound back to
// the entity.
type Body struct {
	Body     physics.BodyHandle
	Collider physics.ColliderHandle
}

// Player marks the single player-controlled entity.
type Player struct {
	Width, Height float32
}

// Footprint marks entities that occupy their tile for spawn placement.
type Footprint struct{}

type Tree struct {
	LeafWidth   float32
	LeafHeight  float32
	TrunkHeight float32
	LeafColor   Color
	TrunkColor  Color
}

type Ball struct {
	Radius float32
	Color  Color
}

// WitchState is the witch behaviour state.
type WitchState uint8

const (
	Patrolling WitchState = iota
	Chasing
)

func (s WitchState) String() string {
	switch s {
	case Patrolling:
		return "patrolling"
	case Chasing:
		return "chasing"
	default:
		return "unknown"
	}
}

type Witch struct {
	Width, Height float32
	Color         Color
	State         WitchState
	Target        mgl32.Vec3 // patrol target, used while Patrolling
}

// Block is a static cube generated on a stone tile.
type Block struct {
	Size  float32
	Color Color
}

// Ground is the slab under the whole map.
type Ground struct {
	HalfExtents mgl32.Vec3
}

// Wall is one of the four boundary walls.
type Wall struct {
	HalfExtents mgl32.Vec3
}
