package system

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	coresys "github.com/witchwood/sim/internal/core/system"
	"github.com/witchwood/sim/internal/physics"
)

// Input is one frame's snapshot of held movement keys and pointer motion.
type Input struct {
	Forward, Back, Left, Right bool
	MouseDX, MouseDY           float32
}

// PitchLimit keeps the look direction off the poles.
const PitchLimit = math.Pi/2 - 0.01

// MouseLook accumulates yaw and pitch from pointer deltas.
type MouseLook struct {
	yaw, pitch  float32
	sensitivity float32
}

func NewMouseLook(sensitivity float32) *MouseLook {
	return &MouseLook{sensitivity: sensitivity}
}

// Apply adds a pointer delta. Moving the pointer up looks up.
func (m *MouseLook) Apply(dx, dy float32) {
	m.yaw += dx * m.sensitivity
	m.pitch -= dy * m.sensitivity
	m.pitch = mgl32.Clamp(m.pitch, -PitchLimit, PitchLimit)
}

func (m *MouseLook) Yaw() float32   { return m.yaw }
func (m *MouseLook) Pitch() float32 { return m.pitch }

// Forward is the unit look direction for yaw and pitch, with yaw 0 facing +X.
func Forward(yaw, pitch float32) mgl32.Vec3 {
	sy, cy := math.Sincos(float64(yaw))
	sp, cp := math.Sincos(float64(pitch))
	return mgl32.Vec3{float32(cy * cp), float32(sp), float32(sy * cp)}.Normalize()
}

// MoveVelocity returns the horizontal velocity for the held keys, relative
// to yaw. ok is false when the keys cancel out or none are held, in which
// case the body keeps its current velocity.
func MoveVelocity(in Input, yaw, speed float32) (mgl32.Vec3, bool) {
	fwd := Forward(yaw, 0)
	right := mgl32.Vec3{-fwd.Z(), 0, fwd.X()}

	var m mgl32.Vec3
	if in.Forward {
		m = m.Add(fwd)
	}
	if in.Back {
		m = m.Sub(fwd)
	}
	if in.Left {
		m = m.Sub(right)
	}
	if in.Right {
		m = m.Add(right)
	}
	if m.Len() < 1e-6 {
		return mgl32.Vec3{}, false
	}
	return m.Normalize().Mul(speed), true
}

// ApplyMove overwrites the body's horizontal velocity with the input's
// move velocity and keeps its vertical velocity.
func ApplyMove(b *physics.RigidBody, in Input, yaw, speed float32) bool {
	v, ok := MoveVelocity(in, yaw, speed)
	if !ok {
		return false
	}
	b.SetLinVel(mgl32.Vec3{v.X(), b.LinVel().Y(), v.Z()})
	return true
}

// PlayerSystem applies the frame's input to the look angles and the player
// body before the physics step consumes it. Phase 0 (Input).
type PlayerSystem struct {
	scene *Scene
	look  *MouseLook
	speed float32
	input Input
}

func NewPlayerSystem(scene *Scene, look *MouseLook, speed float32) *PlayerSystem {
	return &PlayerSystem{scene: scene, look: look, speed: speed}
}

func (s *PlayerSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// SetInput stores the snapshot consumed by the next Update.
func (s *PlayerSystem) SetInput(in Input) { s.input = in }

func (s *PlayerSystem) Update(_ time.Duration) {
	in := s.input
	s.input = Input{}
	s.look.Apply(in.MouseDX, in.MouseDY)

	b, ok := s.scene.Physics.Body(s.scene.PlayerBody)
	if !ok {
		return
	}
	ApplyMove(b, in, s.look.Yaw(), s.speed)
}
