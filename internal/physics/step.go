package physics

import (
	"math"

	"go.uber.org/zap"
)

// Step advances the world by one fixed timestep: forces and damping, then
// one or more substeps of integrate, broad phase, narrow phase and solve.
// The substep count grows with the fastest CCD body so that no CCD body
// travels more than half the thinnest pair of extents per substep. The
// query pipeline is rebuilt last, so rays cast after Step see the new poses.
func (w *World) Step() {
	dt := w.cfg.Timestep
	g := w.cfg.Gravity
	w.bodies.each(func(_ uint64, b *RigidBody) {
		if !b.IsDynamic() {
			return
		}
		b.linvel = b.linvel.Add(g.Mul(dt))
		if b.damping > 0 {
			b.linvel = b.linvel.Mul(1 / (1 + dt*b.damping))
		}
	})

	n := w.substeps(dt)
	sub := dt / float32(n)
	for i := 0; i < n; i++ {
		w.integrate(sub)
		w.collectProxies()
		w.broad.rebuild(w.proxies)
		w.pairBuf = w.broad.pairs(w.proxies, w.pairBuf)
		w.narrowPhase(w.pairBuf)
		w.solveVelocities(sub)
		w.correctPositions()
	}
	if n > 1 {
		w.log.Debug("ccd substeps", zap.Int("substeps", n), zap.Uint64("step", w.steps))
	}
	w.steps++
	w.query.rebuild(w)
}

func (w *World) substeps(dt float32) int {
	if w.cfg.MaxCCDSubsteps <= 1 {
		return 1
	}
	thinnest := float32(math.MaxFloat32)
	w.colliders.each(func(_ uint64, c *Collider) {
		thinnest = min(thinnest, c.shape.minHalf())
	})
	n := 1
	w.bodies.each(func(_ uint64, b *RigidBody) {
		if !b.IsDynamic() || !b.ccd || len(b.colliders) == 0 {
			return
		}
		own := float32(math.MaxFloat32)
		for _, h := range b.colliders {
			if c, ok := w.colliders.get(uint64(h)); ok {
				own = min(own, c.shape.minHalf())
			}
		}
		budget := 0.5 * (own + thinnest)
		if budget <= 0 {
			return
		}
		need := int(math.Ceil(float64(b.linvel.Len() * dt / budget)))
		n = max(n, need)
	})
	return min(n, w.cfg.MaxCCDSubsteps)
}

func (w *World) integrate(dt float32) {
	w.bodies.each(func(_ uint64, b *RigidBody) {
		if b.IsDynamic() {
			b.translation = b.translation.Add(b.linvel.Mul(dt))
		}
	})
}

func (w *World) collectProxies() {
	w.proxies = w.proxies[:0]
	w.colliders.each(func(h uint64, c *Collider) {
		b, ok := w.bodies.get(uint64(c.parent))
		if !ok {
			return
		}
		w.proxies = append(w.proxies, proxy{
			collider: ColliderHandle(h),
			body:     c.parent,
			box:      c.aabb(b.translation),
			dynamic:  b.IsDynamic(),
		})
	})
}
