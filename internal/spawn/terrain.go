package spawn

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/witchwood/sim/internal/component"
	"github.com/witchwood/sim/internal/core/ecs"
	"github.com/witchwood/sim/internal/grid"
	"github.com/witchwood/sim/internal/physics"
)

// TerrainConfig sizes the generated static geometry, in tiles.
type TerrainConfig struct {
	WallHeight      float32
	GroundThickness float32
	BlockColor      component.Color
}

func DefaultTerrainConfig() TerrainConfig {
	return TerrainConfig{WallHeight: 3, GroundThickness: 1, BlockColor: component.LightGray}
}

// Terrain lists the static entities generated for a map.
type Terrain struct {
	Ground ecs.EntityID
	Walls  [4]ecs.EntityID // west, east, south, north
	Blocks []ecs.EntityID
}

// GenerateTerrain builds a ground slab whose top sits at y=0 under the
// whole grid, a wall along each edge row of tiles, and a block on every
// interior stone tile.
func GenerateTerrain(cfg TerrainConfig, w *ecs.World, stores *component.Stores, phys *physics.World, g *grid.Grid) (Terrain, error) {
	var t Terrain
	ts := g.TileSize()
	ex, ez := g.Extent()

	thick := cfg.GroundThickness * ts
	groundHalf := mgl32.Vec3{ex / 2, thick / 2, ez / 2}
	id, err := staticPiece(w, stores, phys, g.Center(-thick/2), groundHalf, component.Ground{HalfExtents: groundHalf})
	if err != nil {
		return t, fmt.Errorf("ground: %w", err)
	}
	t.Ground = id

	wallH := cfg.WallHeight * ts
	c := g.Center(wallH / 2)
	westEast := mgl32.Vec3{ts / 2, wallH / 2, ez / 2}
	southNorth := mgl32.Vec3{ex / 2, wallH / 2, ts / 2}
	walls := [4]struct {
		pos, half mgl32.Vec3
	}{
		{mgl32.Vec3{0, c.Y(), c.Z()}, westEast},
		{mgl32.Vec3{float32(g.Width()-1) * ts, c.Y(), c.Z()}, westEast},
		{mgl32.Vec3{c.X(), c.Y(), 0}, southNorth},
		{mgl32.Vec3{c.X(), c.Y(), float32(g.Height()-1) * ts}, southNorth},
	}
	for i, wall := range walls {
		id, err := staticPiece(w, stores, phys, wall.pos, wall.half, component.Wall{HalfExtents: wall.half})
		if err != nil {
			return t, fmt.Errorf("wall %d: %w", i, err)
		}
		t.Walls[i] = id
	}

	var firstErr error
	g.Each(func(tile grid.Tile) {
		if firstErr != nil || tile.Type != grid.Stone || g.IsEdge(tile.Coord) {
			return
		}
		half := mgl32.Vec3{ts / 2, ts / 2, ts / 2}
		id, err := staticPiece(w, stores, phys, g.TileToWorld(tile.Coord, ts/2), half, component.Block{Size: ts, Color: cfg.BlockColor})
		if err != nil {
			firstErr = fmt.Errorf("block at %s: %w", tile.Coord, err)
			return
		}
		t.Blocks = append(t.Blocks, id)
	})
	return t, firstErr
}

func staticPiece(w *ecs.World, stores *component.Stores, phys *physics.World, pos, half mgl32.Vec3, bundle component.Bundle) (ecs.EntityID, error) {
	id, _, err := Materialize(w, stores, phys, Blueprint{
		Body:     physics.FixedBody(pos),
		Collider: physics.NewCollider(physics.Cuboid(half.X(), half.Y(), half.Z())),
		Bundle:   bundle,
	})
	return id, err
}
