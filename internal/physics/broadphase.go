package physics

import (
	"math"
	"sort"
)

// cellGrid is a uniform spatial hash over the XZ plane. A proxy is filed
// under every cell its bounds touch; proxies spanning more than
// maxProxyCells cells (ground slabs, long walls) live in a separate list
// that is paired against everything.
// Accessed only from the stepping goroutine, no locks.

const maxProxyCells = 64

type cellKey struct {
	cx int32
	cz int32
}

type proxy struct {
	collider ColliderHandle
	body     BodyHandle
	box      AABB
	dynamic  bool
}

type pair struct {
	a, b int // indices into the proxy slice, a < b
}

type cellGrid struct {
	size  float32
	cells map[cellKey][]int
	large []int
	seen  map[pair]struct{}
}

func newCellGrid(size float32) *cellGrid {
	return &cellGrid{
		size:  size,
		cells: make(map[cellKey][]int),
		seen:  make(map[pair]struct{}),
	}
}

func (g *cellGrid) toCellCoord(v float32) int32 {
	return int32(math.Floor(float64(v / g.size)))
}

// span returns the inclusive cell range covered by box.
func (g *cellGrid) span(box AABB) (x0, z0, x1, z1 int32) {
	return g.toCellCoord(box.Min.X()), g.toCellCoord(box.Min.Z()),
		g.toCellCoord(box.Max.X()), g.toCellCoord(box.Max.Z())
}

func (g *cellGrid) reset() {
	for k, ids := range g.cells {
		g.cells[k] = ids[:0]
	}
	g.large = g.large[:0]
	clear(g.seen)
}

// rebuild files every proxy into the grid.
func (g *cellGrid) rebuild(proxies []proxy) {
	g.reset()
	for i := range proxies {
		x0, z0, x1, z1 := g.span(proxies[i].box)
		if int64(x1-x0+1)*int64(z1-z0+1) > maxProxyCells {
			g.large = append(g.large, i)
			continue
		}
		for cx := x0; cx <= x1; cx++ {
			for cz := z0; cz <= z1; cz++ {
				k := cellKey{cx: cx, cz: cz}
				g.cells[k] = append(g.cells[k], i)
			}
		}
	}
}

// pairs returns the candidate pairs whose bounds overlap, sorted so the
// narrow phase visits them in a deterministic order. Pairs on the same
// body or between two non-dynamic bodies are skipped.
func (g *cellGrid) pairs(proxies []proxy, out []pair) []pair {
	out = out[:0]
	try := func(i, j int) {
		if i == j {
			return
		}
		if i > j {
			i, j = j, i
		}
		a, b := &proxies[i], &proxies[j]
		if a.body == b.body || (!a.dynamic && !b.dynamic) {
			return
		}
		p := pair{a: i, b: j}
		if _, dup := g.seen[p]; dup {
			return
		}
		g.seen[p] = struct{}{}
		if a.box.Overlaps(b.box) {
			out = append(out, p)
		}
	}
	for _, ids := range g.cells {
		for x := 0; x < len(ids); x++ {
			for y := x + 1; y < len(ids); y++ {
				try(ids[x], ids[y])
			}
		}
	}
	for _, l := range g.large {
		for j := range proxies {
			try(l, j)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].a != out[j].a {
			return out[i].a < out[j].a
		}
		return out[i].b < out[j].b
	})
	return out
}
