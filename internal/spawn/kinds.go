package spawn

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/witchwood/sim/internal/component"
	"github.com/witchwood/sim/internal/data"
	"github.com/witchwood/sim/internal/grid"
	"github.com/witchwood/sim/internal/physics"
)

// PatrolFunc draws a patrol target for a new witch.
type PatrolFunc func(rng *rand.Rand) mgl32.Vec3

// PlayerKind is the upright, rotation-locked player capsule stand-in.
type PlayerKind struct {
	Params data.BodyKind
}

func (PlayerKind) Name() string { return "player" }

func (k PlayerKind) Build(tile grid.Coord, g *grid.Grid, _ *rand.Rand) Blueprint {
	ts := g.TileSize()
	w, h, d := k.Params.Size[0]*ts, k.Params.Size[1]*ts, k.Params.Size[2]*ts

	body := physics.DynamicBody(g.TileToWorld(tile, k.Params.SpawnHeight*ts))
	body.LinearDamping = k.Params.LinearDamping
	body.CCD = true
	return Blueprint{
		Body:     body,
		Collider: physics.NewCollider(physics.RoundCuboid(w/2, h/2, d/2, k.Params.Border)),
		Bundle:   component.Player{Width: w, Height: h},
	}
}

// TreeKind draws a random size and palette per tree.
type TreeKind struct {
	Params data.TreeKind
}

func (TreeKind) Name() string { return "tree" }

func (k TreeKind) Build(tile grid.Coord, g *grid.Grid, rng *rand.Rand) Blueprint {
	p := k.Params
	ts := g.TileSize()
	leafWidth := p.LeafWidths[rng.IntN(len(p.LeafWidths))]
	leafHeight := uniform(rng, p.LeafHeight)
	trunkHeight := uniform(rng, p.TrunkHeight)
	palette := p.Palettes[rng.IntN(len(p.Palettes))]

	half := max(leafWidth, p.MinWidth) / 2 * ts
	total := (leafHeight + trunkHeight) * ts
	return Blueprint{
		Body:     physics.FixedBody(g.TileToWorld(tile, total/2)),
		Collider: physics.NewCollider(physics.Cuboid(half, total/2, half)),
		Bundle: component.Tree{
			LeafWidth:   leafWidth * ts,
			LeafHeight:  leafHeight * ts,
			TrunkHeight: trunkHeight * ts,
			LeafColor:   palette.Leaf,
			TrunkColor:  palette.Trunk,
		},
	}
}

// BallKind drops a bouncy ball from height.
type BallKind struct {
	Params data.BallKind
}

func (BallKind) Name() string { return "ball" }

func (k BallKind) Build(tile grid.Coord, g *grid.Grid, _ *rand.Rand) Blueprint {
	ts := g.TileSize()
	body := physics.DynamicBody(g.TileToWorld(tile, k.Params.DropHeight*ts))
	body.CCD = true

	col := physics.NewCollider(physics.Ball(k.Params.Radius))
	col.Density = k.Params.Density
	col.Restitution = k.Params.Restitution
	return Blueprint{
		Body:     body,
		Collider: col,
		Bundle:   component.Ball{Radius: k.Params.Radius, Color: k.Params.Color},
	}
}

// WitchKind starts every witch patrolling towards a fresh target.
type WitchKind struct {
	Params data.BodyKind
	Patrol PatrolFunc
}

func (WitchKind) Name() string { return "witch" }

func (k WitchKind) Build(tile grid.Coord, g *grid.Grid, rng *rand.Rand) Blueprint {
	ts := g.TileSize()
	w, h, d := k.Params.Size[0]*ts, k.Params.Size[1]*ts, k.Params.Size[2]*ts

	body := physics.DynamicBody(g.TileToWorld(tile, k.Params.SpawnHeight*ts))
	body.CCD = true
	body.LinearDamping = k.Params.LinearDamping

	var target mgl32.Vec3
	if k.Patrol != nil {
		target = k.Patrol(rng)
	}
	return Blueprint{
		Body:     body,
		Collider: physics.NewCollider(physics.RoundCuboid(w/2, h/2, d/2, k.Params.Border)),
		Bundle: component.Witch{
			Width:  w,
			Height: h,
			Color:  k.Params.Color,
			State:  component.Patrolling,
			Target: target,
		},
	}
}

func uniform(rng *rand.Rand, r data.Range) float32 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float32()*(r.Max-r.Min)
}
