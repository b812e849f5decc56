package physics

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// QueryFilter narrows which colliders a ray may hit. Zero handles exclude
// nothing.
type QueryFilter struct {
	ExcludeCollider ColliderHandle
	ExcludeBody     BodyHandle
	Predicate       func(ColliderHandle) bool // keep collider when true
}

func (f QueryFilter) accepts(e *queryEntry) bool {
	if !f.ExcludeCollider.IsZero() && e.collider == f.ExcludeCollider {
		return false
	}
	if !f.ExcludeBody.IsZero() && e.body == f.ExcludeBody {
		return false
	}
	if f.Predicate != nil && !f.Predicate(e.collider) {
		return false
	}
	return true
}

// RayHit is the nearest intersection found by CastRay.
type RayHit struct {
	Collider ColliderHandle
	TOI      float32 // distance along the normalized direction
	Point    mgl32.Vec3
}

type queryEntry struct {
	collider ColliderHandle
	body     BodyHandle
	shape    Shape
	center   mgl32.Vec3
	box      AABB
}

// queryPipeline is a snapshot of collider bounds bucketed on the XZ plane.
// It is rebuilt after every Step and lazily after colliders are added or
// removed.
type queryPipeline struct {
	grid    *cellGrid
	entries []queryEntry
	bounds  AABB
	dirty   bool
	marks   []uint32
	stamp   uint32
}

// maxRayCells bounds how many grid cells a ray walks before the query
// falls back to testing every entry.
const maxRayCells = 1024

func newQueryPipeline(cellSize float32) *queryPipeline {
	return &queryPipeline{grid: newCellGrid(cellSize), dirty: true}
}

func (q *queryPipeline) markDirty() { q.dirty = true }

func (q *queryPipeline) rebuild(w *World) {
	q.entries = q.entries[:0]
	first := true
	w.colliders.each(func(h uint64, c *Collider) {
		b, ok := w.bodies.get(uint64(c.parent))
		if !ok {
			return
		}
		box := c.aabb(b.translation)
		q.entries = append(q.entries, queryEntry{
			collider: ColliderHandle(h),
			body:     c.parent,
			shape:    c.shape,
			center:   b.translation,
			box:      box,
		})
		if first {
			q.bounds = box
			first = false
		} else {
			q.bounds = AABB{
				Min: mgl32.Vec3{min(q.bounds.Min.X(), box.Min.X()), min(q.bounds.Min.Y(), box.Min.Y()), min(q.bounds.Min.Z(), box.Min.Z())},
				Max: mgl32.Vec3{max(q.bounds.Max.X(), box.Max.X()), max(q.bounds.Max.Y(), box.Max.Y()), max(q.bounds.Max.Z(), box.Max.Z())},
			}
		}
	})
	proxies := make([]proxy, len(q.entries))
	for i := range q.entries {
		proxies[i] = proxy{collider: q.entries[i].collider, body: q.entries[i].body, box: q.entries[i].box}
	}
	q.grid.rebuild(proxies)
	if cap(q.marks) < len(q.entries) {
		q.marks = make([]uint32, len(q.entries))
	}
	q.marks = q.marks[:len(q.entries)]
	q.dirty = false
}

// candidates returns entry indices whose cells the segment may touch,
// in handle order.
func (q *queryPipeline) candidates(origin, end mgl32.Vec3, out []int) []int {
	out = out[:0]
	if len(q.entries) == 0 {
		return out
	}
	seg := AABB{
		Min: mgl32.Vec3{min(origin.X(), end.X()), min(origin.Y(), end.Y()), min(origin.Z(), end.Z())},
		Max: mgl32.Vec3{max(origin.X(), end.X()), max(origin.Y(), end.Y()), max(origin.Z(), end.Z())},
	}
	if !seg.Overlaps(q.bounds) {
		return out
	}
	// Clip to the scene so an unbounded ray stays cheap.
	seg.Min = mgl32.Vec3{max(seg.Min.X(), q.bounds.Min.X()), seg.Min.Y(), max(seg.Min.Z(), q.bounds.Min.Z())}
	seg.Max = mgl32.Vec3{min(seg.Max.X(), q.bounds.Max.X()), seg.Max.Y(), min(seg.Max.Z(), q.bounds.Max.Z())}
	x0, z0, x1, z1 := q.grid.span(seg)
	if int64(x1-x0+1)*int64(z1-z0+1) > maxRayCells {
		for i := range q.entries {
			out = append(out, i)
		}
		return out
	}

	q.stamp++
	if q.stamp == 0 {
		clear(q.marks)
		q.stamp = 1
	}
	visit := func(i int) {
		if q.marks[i] != q.stamp {
			q.marks[i] = q.stamp
			out = append(out, i)
		}
	}
	for cx := x0; cx <= x1; cx++ {
		for cz := z0; cz <= z1; cz++ {
			for _, i := range q.grid.cells[cellKey{cx: cx, cz: cz}] {
				visit(i)
			}
		}
	}
	for _, i := range q.grid.large {
		visit(i)
	}
	sort.Ints(out)
	return out
}

// CastRay returns the nearest collider hit with TOI strictly below maxDist.
// A ray that starts inside a collider hits it at TOI 0. Ties resolve to the
// lower collider handle.
func (w *World) CastRay(origin, dir mgl32.Vec3, maxDist float32, filter QueryFilter) (RayHit, bool) {
	l := dir.Len()
	if l < 1e-9 || maxDist <= 0 {
		return RayHit{}, false
	}
	dir = dir.Mul(1 / l)
	if w.query.dirty {
		w.query.rebuild(w)
	}
	q := w.query
	reach := maxDist
	if math.IsInf(float64(maxDist), 1) || maxDist > 1e6 {
		reach = 1e6
	}
	end := origin.Add(dir.Mul(reach))

	var best RayHit
	found := false
	w.rayBuf = q.candidates(origin, end, w.rayBuf)
	for _, i := range w.rayBuf {
		e := &q.entries[i]
		if !filter.accepts(e) {
			continue
		}
		var t float32
		var ok bool
		if e.shape.isBall() {
			t, ok = raySphere(origin, dir, e.center, e.shape.Radius)
		} else {
			t, ok = rayBox(origin, dir, e.box)
		}
		if !ok || t >= maxDist {
			continue
		}
		if !found || t < best.TOI {
			best = RayHit{Collider: e.collider, TOI: t}
			found = true
		}
	}
	if found {
		best.Point = origin.Add(dir.Mul(best.TOI))
	}
	return best, found
}

// rayBox is the slab test. Returns 0 when origin is inside the box.
func rayBox(origin, dir mgl32.Vec3, box AABB) (float32, bool) {
	tmin := float32(0)
	tmax := float32(math.MaxFloat32)
	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], dir[axis]
		if abs32(d) < 1e-9 {
			if o < box.Min[axis] || o > box.Max[axis] {
				return 0, false
			}
			continue
		}
		inv := 1 / d
		t1 := (box.Min[axis] - o) * inv
		t2 := (box.Max[axis] - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// raySphere expects a unit direction. Returns 0 when origin is inside.
func raySphere(origin, dir, center mgl32.Vec3, r float32) (float32, bool) {
	m := origin.Sub(center)
	c := m.Dot(m) - r*r
	if c <= 0 {
		return 0, true
	}
	b := m.Dot(dir)
	if b > 0 {
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	return -b - float32(math.Sqrt(float64(disc))), true
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
