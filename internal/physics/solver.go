package physics

const (
	// restitutionThreshold is the approach speed below which contacts
	// do not bounce, so resting bodies settle.
	restitutionThreshold = 1.0
	penetrationSlop      = 0.005
	correctionPercent    = 0.8
)

func (w *World) prepareContacts() {
	for i := range w.contacts {
		c := &w.contacts[i]
		a, okA := w.bodies.get(uint64(c.bodyA))
		b, okB := w.bodies.get(uint64(c.bodyB))
		if !okA || !okB {
			continue
		}
		vn := b.linvel.Sub(a.linvel).Dot(c.normal)
		if vn < -restitutionThreshold {
			c.target = -c.restitution * vn
		}
	}
}

// solveVelocities runs sequential impulses over contacts and joints.
func (w *World) solveVelocities(dt float32) {
	w.prepareContacts()
	for it := 0; it < w.cfg.SolverIterations; it++ {
		for i := range w.contacts {
			w.solveContact(&w.contacts[i])
		}
		w.joints.each(func(_ uint64, j *DistanceJoint) {
			w.solveJoint(j, dt)
		})
	}
}

func (w *World) solveContact(c *contact) {
	a, okA := w.bodies.get(uint64(c.bodyA))
	b, okB := w.bodies.get(uint64(c.bodyB))
	if !okA || !okB {
		return
	}
	inv := a.invMass + b.invMass
	if inv == 0 {
		return
	}

	vr := b.linvel.Sub(a.linvel)
	vn := vr.Dot(c.normal)
	dj := (c.target - vn) / inv
	acc := max(c.normalAcc+dj, 0)
	dj = acc - c.normalAcc
	c.normalAcc = acc
	applyImpulse(a, b, c.normal.Mul(dj))

	// Friction along the current sliding direction, bounded by the
	// accumulated normal impulse.
	vr = b.linvel.Sub(a.linvel)
	vt := vr.Sub(c.normal.Mul(vr.Dot(c.normal)))
	speed := vt.Len()
	if speed < 1e-6 {
		return
	}
	t := vt.Mul(1 / speed)
	limit := c.friction * c.normalAcc
	jt := -speed / inv
	tacc := min(max(c.tangAcc+jt, -limit), limit)
	jt = tacc - c.tangAcc
	c.tangAcc = tacc
	applyImpulse(a, b, t.Mul(jt))
}

// correctPositions removes most of the remaining penetration directly.
func (w *World) correctPositions() {
	for i := range w.contacts {
		c := &w.contacts[i]
		a, okA := w.bodies.get(uint64(c.bodyA))
		b, okB := w.bodies.get(uint64(c.bodyB))
		if !okA || !okB {
			continue
		}
		inv := a.invMass + b.invMass
		if inv == 0 {
			continue
		}
		k := max(c.depth-penetrationSlop, 0) * correctionPercent / inv
		if k == 0 {
			continue
		}
		corr := c.normal.Mul(k)
		a.translation = a.translation.Sub(corr.Mul(a.invMass))
		b.translation = b.translation.Add(corr.Mul(b.invMass))
	}
}
