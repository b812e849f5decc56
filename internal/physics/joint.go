package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// DistanceJoint keeps two bodies' translations Rest apart.
type DistanceJoint struct {
	BodyA, BodyB BodyHandle
	Rest         float32
}

// InsertJoint adds a joint between two live bodies.
func (w *World) InsertJoint(j DistanceJoint) (JointHandle, error) {
	if _, ok := w.bodies.get(uint64(j.BodyA)); !ok {
		return 0, fmt.Errorf("insert joint body A %d: %w", j.BodyA, ErrInvalidHandle)
	}
	if _, ok := w.bodies.get(uint64(j.BodyB)); !ok {
		return 0, fmt.Errorf("insert joint body B %d: %w", j.BodyB, ErrInvalidHandle)
	}
	return JointHandle(w.joints.insert(j)), nil
}

func (w *World) Joint(h JointHandle) (*DistanceJoint, bool) {
	return w.joints.get(uint64(h))
}

func (w *World) RemoveJoint(h JointHandle) bool {
	_, ok := w.joints.remove(uint64(h))
	return ok
}

func (w *World) JointCount() int { return w.joints.len() }

// jointBias is the Baumgarte factor for joint drift.
const jointBias = 0.2

func (w *World) solveJoint(j *DistanceJoint, dt float32) {
	a, ok := w.bodies.get(uint64(j.BodyA))
	if !ok {
		return
	}
	b, ok := w.bodies.get(uint64(j.BodyB))
	if !ok {
		return
	}
	inv := a.invMass + b.invMass
	if inv == 0 {
		return
	}
	d := b.translation.Sub(a.translation)
	l := d.Len()
	if l < 1e-6 {
		return
	}
	n := d.Mul(1 / l)
	vrel := b.linvel.Sub(a.linvel).Dot(n)
	bias := jointBias * (l - j.Rest) / dt
	lambda := -(vrel + bias) / inv
	applyImpulse(a, b, n.Mul(lambda))
}

// applyImpulse pushes a by -p and b by +p, scaled by inverse mass.
func applyImpulse(a, b *RigidBody, p mgl32.Vec3) {
	a.linvel = a.linvel.Sub(p.Mul(a.invMass))
	b.linvel = b.linvel.Add(p.Mul(b.invMass))
}
