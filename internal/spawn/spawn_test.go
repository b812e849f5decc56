package spawn

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/witchwood/sim/internal/component"
	"github.com/witchwood/sim/internal/core/ecs"
	"github.com/witchwood/sim/internal/data"
	"github.com/witchwood/sim/internal/grid"
	"github.com/witchwood/sim/internal/physics"
)

type fixture struct {
	world  *ecs.World
	stores *component.Stores
	phys   *physics.World
	grid   *grid.Grid
	sp     *Spawner
}

func newFixture(t *testing.T, g *grid.Grid, seed uint64) *fixture {
	t.Helper()
	w := ecs.NewWorld()
	s := component.NewStores(w)
	phys := physics.NewWorld(physics.DefaultConfig(), zap.NewNop())
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &fixture{
		world:  w,
		stores: s,
		phys:   phys,
		grid:   g,
		sp:     New(DefaultConfig(), w, s, phys, g, rng, zap.NewNop()),
	}
}

func grassGrid(t *testing.T, w, h int) *grid.Grid {
	t.Helper()
	g, err := grid.Filled(w, h, 1, grid.Grass)
	require.NoError(t, err)
	return g
}

func (f *fixture) tileOf(t *testing.T, id ecs.EntityID) grid.Coord {
	t.Helper()
	b, ok := f.stores.Bodies.Get(id)
	require.True(t, ok)
	body, ok := f.phys.Body(b.Body)
	require.True(t, ok)
	return f.grid.WorldToTile(body.Translation())
}

func treeKind() TreeKind { return TreeKind{Params: data.DefaultKinds().Tree} }

func TestSpawnTreesInsideMargin(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		f := newFixture(t, grassGrid(t, 10, 10), seed)
		ids, err := f.sp.Spawn(5, treeKind())
		require.NoError(t, err)
		require.Len(t, ids, 5)

		seen := map[grid.Coord]bool{}
		for _, id := range ids {
			c := f.tileOf(t, id)
			assert.True(t, c.X >= 2 && c.X <= 7, "x=%d", c.X)
			assert.True(t, c.Z >= 2 && c.Z <= 7, "z=%d", c.Z)
			assert.False(t, seen[c], "tile %s reused", c)
			seen[c] = true
		}
	}
}

func TestSpawnFillsEveryFreeTile(t *testing.T) {
	f := newFixture(t, grassGrid(t, 10, 10), 7)
	ids, err := f.sp.Spawn(36, treeKind())
	require.NoError(t, err)
	require.Len(t, ids, 36)

	seen := map[grid.Coord]bool{}
	for _, id := range ids {
		seen[f.tileOf(t, id)] = true
	}
	assert.Len(t, seen, 36)
}

func TestSpawnReportsCapacity(t *testing.T) {
	f := newFixture(t, grassGrid(t, 10, 10), 3)
	ids, err := f.sp.Spawn(37, treeKind())
	assert.ErrorIs(t, err, ErrCapacity)
	assert.Len(t, ids, 36)

	_, err = f.sp.Spawn(1, BallKind{Params: data.DefaultKinds().Ball})
	assert.ErrorIs(t, err, ErrCapacity)
}

func TestSpawnWithoutInsetRoom(t *testing.T) {
	f := newFixture(t, grassGrid(t, 4, 4), 1)
	ids, err := f.sp.Spawn(1, treeKind())
	assert.ErrorIs(t, err, ErrCapacity)
	assert.Empty(t, ids)
	assert.Equal(t, 0, f.phys.BodyCount())
}

func TestSpawnSkipsStoneTiles(t *testing.T) {
	tiles := make([]grid.TileType, 36)
	for i := range tiles {
		tiles[i] = grid.Stone
	}
	// Only (2,3) is walkable inside a margin of 2.
	tiles[2*6+3] = grid.Grass
	g, err := grid.New(6, 6, 1, tiles)
	require.NoError(t, err)

	f := newFixture(t, g, 11)
	ids, err := f.sp.Spawn(1, treeKind())
	require.NoError(t, err)
	assert.Equal(t, grid.Coord{X: 2, Z: 3}, f.tileOf(t, ids[0]))

	_, err = f.sp.Spawn(1, treeKind())
	assert.ErrorIs(t, err, ErrCapacity)
}

func TestSpawnLeaksNoBodies(t *testing.T) {
	f := newFixture(t, grassGrid(t, 8, 8), 5)
	kinds := data.DefaultKinds()
	_, err := f.sp.Spawn(1, PlayerKind{Params: kinds.Player})
	require.NoError(t, err)
	_, err = f.sp.Spawn(10, treeKind())
	require.NoError(t, err)
	_, err = f.sp.Spawn(10, BallKind{Params: kinds.Ball})
	assert.ErrorIs(t, err, ErrCapacity, "only 16 inset tiles")

	// Every body and collider belongs to exactly one entity.
	assert.Equal(t, f.world.Len(), f.phys.BodyCount())
	assert.Equal(t, f.world.Len(), f.phys.ColliderCount())
	assert.Equal(t, 16, f.world.Len())
}

func TestSpawnBindsColliderToEntity(t *testing.T) {
	f := newFixture(t, grassGrid(t, 10, 10), 9)
	ids, err := f.sp.Spawn(3, BallKind{Params: data.DefaultKinds().Ball})
	require.NoError(t, err)
	for _, id := range ids {
		b, ok := f.stores.Bodies.Get(id)
		require.True(t, ok)
		owner, ok := f.phys.EntityOf(b.Collider)
		require.True(t, ok)
		assert.Equal(t, id, owner)
		assert.True(t, f.stores.Balls.Has(id))
		assert.True(t, f.stores.Footprints.Has(id))

		body, _ := f.phys.Body(b.Body)
		assert.Equal(t, float32(10), body.Translation().Y())
		assert.True(t, body.CCDEnabled())
	}
}

func TestPlayerAndWitchBlueprints(t *testing.T) {
	g := grassGrid(t, 10, 10)
	kinds := data.DefaultKinds()
	rng := rand.New(rand.NewPCG(1, 2))

	bp := PlayerKind{Params: kinds.Player}.Build(grid.Coord{X: 3, Z: 4}, g, rng)
	assert.Equal(t, physics.BodyDynamic, bp.Body.Type)
	assert.True(t, bp.Body.CCD)
	assert.Equal(t, float32(4), bp.Body.LinearDamping)
	assert.Equal(t, mgl32.Vec3{3, 2, 4}, bp.Body.Translation)
	assert.Equal(t, physics.RoundCuboid(0.5, 1, 0.5, 0.1), bp.Collider.Shape)

	target := mgl32.Vec3{1, 0, -1}
	bp = WitchKind{Params: kinds.Witch, Patrol: func(*rand.Rand) mgl32.Vec3 { return target }}.Build(grid.Coord{X: 5, Z: 5}, g, rng)
	witch, ok := bp.Bundle.(component.Witch)
	require.True(t, ok)
	assert.Equal(t, component.Patrolling, witch.State)
	assert.Equal(t, target, witch.Target)
	assert.Equal(t, component.Purple, witch.Color)
	assert.True(t, bp.Body.CCD)
}

func TestTreeBlueprintSizes(t *testing.T) {
	g := grassGrid(t, 10, 10)
	rng := rand.New(rand.NewPCG(4, 4))
	for i := 0; i < 50; i++ {
		bp := treeKind().Build(grid.Coord{X: 5, Z: 5}, g, rng)
		tree := bp.Bundle.(component.Tree)
		assert.Contains(t, []float32{1, 3}, tree.LeafWidth)
		assert.True(t, tree.LeafHeight >= 1 && tree.LeafHeight <= 8)
		assert.True(t, tree.TrunkHeight >= 1 && tree.TrunkHeight <= 2)

		total := tree.LeafHeight + tree.TrunkHeight
		assert.InDelta(t, total/2, bp.Body.Translation.Y(), 1e-5)
		assert.InDelta(t, total/2, bp.Collider.Shape.HalfExtents.Y(), 1e-5)
		assert.InDelta(t, tree.LeafWidth/2, bp.Collider.Shape.HalfExtents.X(), 1e-5)
		assert.Equal(t, physics.BodyFixed, bp.Body.Type)
	}
}

func TestGenerateTerrain(t *testing.T) {
	tiles := make([]grid.TileType, 25)
	for i := range tiles {
		tiles[i] = grid.Grass
	}
	tiles[0] = grid.Stone     // edge: no block
	tiles[2*5+2] = grid.Stone // interior
	g, err := grid.New(5, 5, 1, tiles)
	require.NoError(t, err)

	f := newFixture(t, g, 1)
	ter, err := GenerateTerrain(DefaultTerrainConfig(), f.world, f.stores, f.phys, g)
	require.NoError(t, err)
	assert.Len(t, ter.Blocks, 1)
	assert.Equal(t, 6, f.phys.BodyCount())
	assert.True(t, f.stores.Grounds.Has(ter.Ground))
	for _, w := range ter.Walls {
		assert.True(t, f.stores.Walls.Has(w))
	}

	// Ground top is flush with y=0 across the map.
	hit, ok := f.phys.CastRay(mgl32.Vec3{1, 5, 1}, mgl32.Vec3{0, -1, 0}, 10, physics.QueryFilter{})
	require.True(t, ok)
	owner, _ := f.phys.EntityOf(hit.Collider)
	assert.Equal(t, ter.Ground, owner)
	assert.InDelta(t, 0, hit.Point.Y(), 1e-5)

	// A ray across the interior hits the stone block.
	hit, ok = f.phys.CastRay(mgl32.Vec3{1, 0.5, 2}, mgl32.Vec3{1, 0, 0}, 10, physics.QueryFilter{})
	require.True(t, ok)
	owner, _ = f.phys.EntityOf(hit.Collider)
	assert.Equal(t, ter.Blocks[0], owner)

	// Terrain entities carry no footprint.
	assert.Empty(t, f.sp.Occupied())
}

func TestDespawnFreesBody(t *testing.T) {
	f := newFixture(t, grassGrid(t, 10, 10), 2)
	ids, err := f.sp.Spawn(2, treeKind())
	require.NoError(t, err)

	require.True(t, Despawn(f.world, f.stores, f.phys, ids[0]))
	assert.Equal(t, 1, f.phys.BodyCount())
	assert.False(t, f.stores.Trees.Has(ids[0]))
	assert.False(t, Despawn(f.world, f.stores, f.phys, ids[0]))
}
