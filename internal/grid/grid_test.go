package grid

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(0, 4, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidGrid)

	_, err = New(2, 2, 0, make([]TileType, 4))
	assert.ErrorIs(t, err, ErrInvalidGrid)

	_, err = New(2, 2, 1, make([]TileType, 3))
	assert.ErrorIs(t, err, ErrInvalidGrid)

	_, err = New(1, 1, 1, []TileType{TileType(9)})
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestOversizedGridsAreRejected(t *testing.T) {
	_, err := Filled(3_000_000_000, 3_000_000_000, 1, Grass)
	assert.ErrorIs(t, err, ErrInvalidGrid)

	_, err = Filled(MaxSide+1, 1, 1, Grass)
	assert.ErrorIs(t, err, ErrInvalidGrid)

	_, err = New(1<<62, 4, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidGrid)

	assert.NoError(t, CheckSize(MaxSide, MaxSide))
}

func TestAtAndIsFree(t *testing.T) {
	// x-major: column x=0 is {Grass, Stone}, x=1 is {Air, Grass}.
	g, err := New(2, 2, 1, []TileType{Grass, Stone, Air, Grass})
	require.NoError(t, err)

	tile, ok := g.At(Coord{X: 0, Z: 1})
	require.True(t, ok)
	assert.Equal(t, Stone, tile.Type)
	assert.Equal(t, Coord{X: 0, Z: 1}, tile.Coord)

	assert.True(t, g.IsFree(Coord{X: 0, Z: 0}))
	assert.False(t, g.IsFree(Coord{X: 0, Z: 1}))
	assert.True(t, g.IsFree(Coord{X: 1, Z: 0}), "air is walkable")
	assert.False(t, g.IsFree(Coord{X: 2, Z: 0}))
	assert.False(t, g.IsFree(Coord{X: -1, Z: 0}))

	_, ok = g.At(Coord{X: 5, Z: 5})
	assert.False(t, ok)
}

func TestTileWorldRoundTrip(t *testing.T) {
	for _, size := range []float32{1, 0.5, 2.25} {
		g, err := Filled(7, 5, size, Grass)
		require.NoError(t, err)
		g.Each(func(tile Tile) {
			p := g.TileToWorld(tile.Coord, 3)
			assert.Equal(t, float32(3), p.Y())
			assert.Equal(t, tile.Coord, g.WorldToTile(p))
		})
	}
}

func TestWorldToTileRoundsToNearest(t *testing.T) {
	g, err := Filled(10, 10, 2, Grass)
	require.NoError(t, err)
	assert.Equal(t, Coord{X: 1, Z: 2}, g.WorldToTile(mgl32.Vec3{2.9, 7, 4.2}))
	assert.Equal(t, Coord{X: 2, Z: 2}, g.WorldToTile(mgl32.Vec3{3.1, 0, 3.9}))
}

func TestFreeInset(t *testing.T) {
	g, err := Filled(10, 10, 1, Grass)
	require.NoError(t, err)

	free := g.FreeInset(2)
	assert.Len(t, free, 36)
	for _, c := range free {
		assert.True(t, c.X >= 2 && c.X <= 7 && c.Z >= 2 && c.Z <= 7, c.String())
	}

	assert.Empty(t, g.FreeInset(5))
}

func TestFreeInsetSkipsStone(t *testing.T) {
	tiles := make([]TileType, 25)
	for i := range tiles {
		tiles[i] = Grass
	}
	tiles[2*5+2] = Stone
	g, err := New(5, 5, 1, tiles)
	require.NoError(t, err)

	assert.Equal(t, []Coord{
		{1, 1}, {1, 2}, {1, 3},
		{2, 1}, {2, 3},
		{3, 1}, {3, 2}, {3, 3},
	}, g.FreeInset(1))
}

func TestEdgesAndCenter(t *testing.T) {
	g, err := Filled(4, 3, 1, Air)
	require.NoError(t, err)
	assert.True(t, g.IsEdge(Coord{X: 0, Z: 1}))
	assert.True(t, g.IsEdge(Coord{X: 3, Z: 1}))
	assert.True(t, g.IsEdge(Coord{X: 1, Z: 2}))
	assert.False(t, g.IsEdge(Coord{X: 1, Z: 1}))

	assert.Equal(t, mgl32.Vec3{1.5, 0, 1}, g.Center(0))
	x, z := g.Extent()
	assert.Equal(t, float32(4), x)
	assert.Equal(t, float32(3), z)
}
