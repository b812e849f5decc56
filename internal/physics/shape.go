package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ShapeKind selects the collider geometry.
type ShapeKind uint8

const (
	ShapeCuboid ShapeKind = iota
	ShapeRoundCuboid
	ShapeBall
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCuboid:
		return "cuboid"
	case ShapeRoundCuboid:
		return "round_cuboid"
	case ShapeBall:
		return "ball"
	default:
		return "unknown"
	}
}

// Shape is a collider geometry centred on its parent body's translation.
type Shape struct {
	Kind        ShapeKind
	HalfExtents mgl32.Vec3 // cuboid and round cuboid core
	Border      float32    // round cuboid rounding radius
	Radius      float32    // ball
}

func Cuboid(hx, hy, hz float32) Shape {
	return Shape{Kind: ShapeCuboid, HalfExtents: mgl32.Vec3{hx, hy, hz}}
}

func RoundCuboid(hx, hy, hz, border float32) Shape {
	return Shape{Kind: ShapeRoundCuboid, HalfExtents: mgl32.Vec3{hx, hy, hz}, Border: border}
}

func Ball(radius float32) Shape {
	return Shape{Kind: ShapeBall, Radius: radius}
}

func (s Shape) isBall() bool { return s.Kind == ShapeBall }

// boxHalf is the half extent of the box used for contacts and rays. A round
// cuboid is approximated by its core grown by the border radius.
func (s Shape) boxHalf() mgl32.Vec3 {
	switch s.Kind {
	case ShapeBall:
		return mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	case ShapeRoundCuboid:
		return s.HalfExtents.Add(mgl32.Vec3{s.Border, s.Border, s.Border})
	default:
		return s.HalfExtents
	}
}

// minHalf is the thinnest half extent, used to size CCD substeps.
func (s Shape) minHalf() float32 {
	h := s.boxHalf()
	return min(h.X(), h.Y(), h.Z())
}

func (s Shape) volume() float32 {
	if s.Kind == ShapeBall {
		return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
	}
	h := s.boxHalf()
	return 8 * h.X() * h.Y() * h.Z()
}

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max mgl32.Vec3
}

func aabbAround(center, half mgl32.Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X() <= b.Max.X() && a.Max.X() >= b.Min.X() &&
		a.Min.Y() <= b.Max.Y() && a.Max.Y() >= b.Min.Y() &&
		a.Min.Z() <= b.Max.Z() && a.Max.Z() >= b.Min.Z()
}

func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= a.Min.X() && p.X() <= a.Max.X() &&
		p.Y() >= a.Min.Y() && p.Y() <= a.Max.Y() &&
		p.Z() >= a.Min.Z() && p.Z() <= a.Max.Z()
}

// ColliderDesc describes a collider to attach to a body.
type ColliderDesc struct {
	Shape       Shape
	Density     float32
	Restitution float32
	Friction    float32
}

// NewCollider returns a descriptor with density 1 and friction 0.5.
func NewCollider(shape Shape) ColliderDesc {
	return ColliderDesc{Shape: shape, Density: 1, Friction: 0.5}
}

// Collider is the geometry attached to exactly one parent body.
type Collider struct {
	shape       Shape
	density     float32
	restitution float32
	friction    float32
	parent      BodyHandle
}

func (c *Collider) Shape() Shape         { return c.shape }
func (c *Collider) Parent() BodyHandle   { return c.parent }
func (c *Collider) Density() float32     { return c.density }
func (c *Collider) Restitution() float32 { return c.restitution }
func (c *Collider) Friction() float32    { return c.friction }

func (c *Collider) aabb(center mgl32.Vec3) AABB {
	return aabbAround(center, c.shape.boxHalf())
}
