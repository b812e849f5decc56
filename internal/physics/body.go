package physics

import "github.com/go-gl/mathgl/mgl32"

// BodyType is the mass class of a rigid body.
type BodyType uint8

const (
	BodyFixed   BodyType = iota // never moves, infinite mass
	BodyDynamic                 // integrated by Step
)

func (t BodyType) String() string {
	switch t {
	case BodyFixed:
		return "fixed"
	case BodyDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// BodyDesc describes a body to insert into the World.
type BodyDesc struct {
	Type          BodyType
	Translation   mgl32.Vec3
	LinVel        mgl32.Vec3
	LinearDamping float32
	CCD           bool
}

// FixedBody returns a descriptor for a static body at pos.
func FixedBody(pos mgl32.Vec3) BodyDesc {
	return BodyDesc{Type: BodyFixed, Translation: pos}
}

// DynamicBody returns a descriptor for a simulated body at pos.
func DynamicBody(pos mgl32.Vec3) BodyDesc {
	return BodyDesc{Type: BodyDynamic, Translation: pos}
}

// RigidBody is the simulated state of one body. Colliders are treated as
// axis aligned and the solver produces no angular motion, so every body
// keeps its orientation.
type RigidBody struct {
	kind        BodyType
	translation mgl32.Vec3
	linvel      mgl32.Vec3
	damping     float32
	ccd         bool

	mass      float32
	invMass   float32
	colliders []ColliderHandle
}

func newRigidBody(d BodyDesc) RigidBody {
	return RigidBody{
		kind:        d.Type,
		translation: d.Translation,
		linvel:      d.LinVel,
		damping:     d.LinearDamping,
		ccd:         d.CCD,
	}
}

func (b *RigidBody) Type() BodyType              { return b.kind }
func (b *RigidBody) IsDynamic() bool             { return b.kind == BodyDynamic }
func (b *RigidBody) Translation() mgl32.Vec3     { return b.translation }
func (b *RigidBody) LinVel() mgl32.Vec3          { return b.linvel }
func (b *RigidBody) LinearDamping() float32      { return b.damping }
func (b *RigidBody) CCDEnabled() bool            { return b.ccd }
func (b *RigidBody) Mass() float32               { return b.mass }
func (b *RigidBody) Colliders() []ColliderHandle { return b.colliders }

// SetLinVel overwrites the linear velocity. Fixed bodies ignore it.
func (b *RigidBody) SetLinVel(v mgl32.Vec3) {
	if b.kind != BodyDynamic {
		return
	}
	b.linvel = v
}

// SetTranslation teleports the body.
func (b *RigidBody) SetTranslation(p mgl32.Vec3) {
	b.translation = p
}

func (b *RigidBody) recomputeMass(w *World) {
	b.mass = 0
	for _, h := range b.colliders {
		if c, ok := w.colliders.get(uint64(h)); ok {
			b.mass += c.density * c.shape.volume()
		}
	}
	switch {
	case b.kind != BodyDynamic:
		b.invMass = 0
	case b.mass <= 0:
		b.mass = 1
		b.invMass = 1
	default:
		b.invMass = 1 / b.mass
	}
}
