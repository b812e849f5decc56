package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// contact is one penetrating pair. normal points from A to B.
type contact struct {
	bodyA, bodyB BodyHandle
	normal       mgl32.Vec3
	depth        float32
	restitution  float32
	friction     float32

	target    float32 // desired separating normal velocity
	normalAcc float32
	tangAcc   float32
}

type placed struct {
	shape  Shape
	center mgl32.Vec3
	box    AABB
}

// collide computes the contact between a and b, if any. The normal points
// from a to b.
func collide(a, b placed) (mgl32.Vec3, float32, bool) {
	switch {
	case a.shape.isBall() && b.shape.isBall():
		return ballBall(a.center, a.shape.Radius, b.center, b.shape.Radius)
	case a.shape.isBall():
		n, d, ok := ballBox(a.center, a.shape.Radius, b.box)
		return n.Mul(-1), d, ok
	case b.shape.isBall():
		return ballBox(b.center, b.shape.Radius, a.box)
	default:
		return boxBox(a.box, b.box)
	}
}

func ballBall(ca mgl32.Vec3, ra float32, cb mgl32.Vec3, rb float32) (mgl32.Vec3, float32, bool) {
	d := cb.Sub(ca)
	dist := d.Len()
	depth := ra + rb - dist
	if depth <= 0 {
		return mgl32.Vec3{}, 0, false
	}
	if dist < 1e-6 {
		return mgl32.Vec3{0, 1, 0}, depth, true
	}
	return d.Mul(1 / dist), depth, true
}

// ballBox returns the normal pointing from the box towards the ball.
func ballBox(c mgl32.Vec3, r float32, box AABB) (mgl32.Vec3, float32, bool) {
	q := mgl32.Vec3{
		mgl32.Clamp(c.X(), box.Min.X(), box.Max.X()),
		mgl32.Clamp(c.Y(), box.Min.Y(), box.Max.Y()),
		mgl32.Clamp(c.Z(), box.Min.Z(), box.Max.Z()),
	}
	d := c.Sub(q)
	dist := d.Len()
	if dist > 1e-6 {
		if dist >= r {
			return mgl32.Vec3{}, 0, false
		}
		return d.Mul(1 / dist), r - dist, true
	}

	// Centre inside the box: push out through the nearest face.
	best := float32(math.MaxFloat32)
	var n mgl32.Vec3
	for axis := 0; axis < 3; axis++ {
		if lo := c[axis] - box.Min[axis]; lo < best {
			best = lo
			n = mgl32.Vec3{}
			n[axis] = -1
		}
		if hi := box.Max[axis] - c[axis]; hi < best {
			best = hi
			n = mgl32.Vec3{}
			n[axis] = 1
		}
	}
	return n, r + best, true
}

// boxBox resolves along the axis of least overlap.
func boxBox(a, b AABB) (mgl32.Vec3, float32, bool) {
	ca, cb := a.Center(), b.Center()
	best := float32(math.MaxFloat32)
	var n mgl32.Vec3
	// Y first so resting contacts on wide slabs stay vertical on ties.
	for _, axis := range [3]int{1, 0, 2} {
		overlap := min(a.Max[axis], b.Max[axis]) - max(a.Min[axis], b.Min[axis])
		if overlap <= 0 {
			return mgl32.Vec3{}, 0, false
		}
		if overlap < best {
			best = overlap
			n = mgl32.Vec3{}
			if cb[axis] >= ca[axis] {
				n[axis] = 1
			} else {
				n[axis] = -1
			}
		}
	}
	return n, best, true
}

// narrowPhase turns candidate pairs into contacts.
func (w *World) narrowPhase(pairs []pair) {
	w.contacts = w.contacts[:0]
	for _, p := range pairs {
		pa, pb := &w.proxies[p.a], &w.proxies[p.b]
		ca, ok := w.colliders.get(uint64(pa.collider))
		if !ok {
			continue
		}
		cb, ok := w.colliders.get(uint64(pb.collider))
		if !ok {
			continue
		}
		n, depth, hit := collide(
			placed{shape: ca.shape, center: pa.box.Center(), box: pa.box},
			placed{shape: cb.shape, center: pb.box.Center(), box: pb.box},
		)
		if !hit {
			continue
		}
		w.contacts = append(w.contacts, contact{
			bodyA:       pa.body,
			bodyB:       pb.body,
			normal:      n,
			depth:       depth,
			restitution: (ca.restitution + cb.restitution) / 2,
			friction:    (ca.friction + cb.friction) / 2,
		})
	}
}
