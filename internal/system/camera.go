package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	coresys "github.com/witchwood/sim/internal/core/system"
)

// Camera is a perspective view derived from the player body each frame.
// It never feeds back into the simulation.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	FovY     float32 // degrees
}

// EyeHeight is the eye offset above the player body's centre.
const EyeHeight = 1.0

func NewCamera(pos mgl32.Vec3) *Camera {
	return &Camera{
		Position: pos,
		Target:   pos.Add(mgl32.Vec3{1, 0, 0}),
		Up:       mgl32.Vec3{0, 1, 0},
		FovY:     60,
	}
}

// Follow places the eye above body and aims along yaw and pitch.
func (c *Camera) Follow(body mgl32.Vec3, yaw, pitch float32) {
	c.Position = body.Add(mgl32.Vec3{0, EyeHeight, 0})
	c.Target = c.Position.Add(Forward(yaw, pitch))
}

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// Projection returns the perspective matrix for the given aspect ratio.
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, 0.01, 1000)
}

// CameraSystem updates the camera after the step. Phase 4 (Output).
type CameraSystem struct {
	scene  *Scene
	look   *MouseLook
	camera *Camera
}

func NewCameraSystem(scene *Scene, look *MouseLook, cam *Camera) *CameraSystem {
	return &CameraSystem{scene: scene, look: look, camera: cam}
}

func (s *CameraSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *CameraSystem) Update(_ time.Duration) {
	pos, ok := s.scene.PlayerPosition()
	if !ok {
		return
	}
	s.camera.Follow(pos, s.look.Yaw(), s.look.Pitch())
}
