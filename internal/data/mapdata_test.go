package data

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witchwood/sim/internal/component"
	"github.com/witchwood/sim/internal/grid"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadMap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.txt", "# top row is the far edge\n1,1,2\n\n0,1,1\n")
	path := writeFile(t, dir, "small.yaml", "name: small\nwidth: 3\nheight: 2\ntile_size: 2\ntiles: small.txt\n")

	m, err := LoadMap(path)
	require.NoError(t, err)
	assert.Equal(t, "small", m.Info.Name)
	assert.Equal(t, 3, m.Grid.Width())
	assert.Equal(t, 2, m.Grid.Height())
	assert.Equal(t, float32(2), m.Grid.TileSize())

	at := func(x, z int) grid.TileType {
		tile, ok := m.Grid.At(grid.Coord{X: x, Z: z})
		require.True(t, ok)
		return tile.Type
	}
	assert.Equal(t, grid.Air, at(0, 0))
	assert.Equal(t, grid.Grass, at(1, 0))
	assert.Equal(t, grid.Grass, at(0, 1))
	assert.Equal(t, grid.Stone, at(2, 1))
}

func TestLoadMapDefaultsTileSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "t.txt", "1\n")
	path := writeFile(t, dir, "m.yaml", "width: 1\nheight: 1\ntiles: t.txt\n")

	m, err := LoadMap(path)
	require.NoError(t, err)
	assert.Equal(t, float32(1), m.Grid.TileSize())
}

func TestLoadMapMissingFile(t *testing.T) {
	_, err := LoadMap(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var me *MapError
	require.True(t, errors.As(err, &me))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrMalformedMap))
}

func TestLoadMapMalformed(t *testing.T) {
	cases := []struct {
		name  string
		desc  string
		tiles string
		line  int
	}{
		{"bad yaml", "width: [", "", 0},
		{"zero size", "width: 0\nheight: 2\ntiles: t.txt", "", 0},
		{"no layer", "width: 1\nheight: 1", "", 0},
		{"huge size", "width: 3000000000\nheight: 3000000000\ntiles: t.txt", "1\n", 0},
		{"overflowing size", "width: 9000000000000000000\nheight: 4\ntiles: t.txt", "1\n", 0},
		{"bad token", "width: 2\nheight: 2\ntiles: t.txt", "1,1\n1,x\n", 2},
		{"unknown tile", "width: 2\nheight: 1\ntiles: t.txt", "1,7\n", 1},
		{"short row", "width: 3\nheight: 1\ntiles: t.txt", "1,1\n", 1},
		{"too many rows", "width: 1\nheight: 1\ntiles: t.txt", "1\n1\n", 2},
		{"too few rows", "width: 1\nheight: 2\ntiles: t.txt", "1\n", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			if tc.tiles != "" {
				writeFile(t, dir, "t.txt", tc.tiles)
			}
			path := writeFile(t, dir, "m.yaml", tc.desc)

			_, err := LoadMap(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedMap)
			var me *MapError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tc.line, me.Line)
		})
	}
}

func TestLoadMapMissingTileLayer(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "m.yaml", "width: 1\nheight: 1\ntiles: gone.txt\n")

	_, err := LoadMap(path)
	var me *MapError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, filepath.Join(dir, "gone.txt"), me.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadKindsOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "kinds.yaml", `
ball:
  radius: 0.25
  restitution: 0.9
  color: "#ff000080"
tree:
  leaf_widths: [2]
`)
	k, err := LoadKinds(path)
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), k.Ball.Radius)
	assert.Equal(t, float32(0.9), k.Ball.Restitution)
	assert.Equal(t, float32(10), k.Ball.DropHeight, "unset fields keep defaults")
	assert.Equal(t, component.Color{R: 255, A: 128}, k.Ball.Color)
	assert.Equal(t, []float32{2}, k.Tree.LeafWidths)
	assert.Len(t, k.Tree.Palettes, 2)
	assert.Equal(t, DefaultKinds().Player, k.Player)
}

func TestLoadKindsRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "kinds.yaml", "tree:\n  leaf_height: {min: 5, max: 1}\n")
	_, err := LoadKinds(path)
	assert.Error(t, err)

	path = writeFile(t, dir, "bad.yaml", "ball:\n  color: \"green\"\n")
	_, err = LoadKinds(path)
	assert.Error(t, err)
}

func TestDefaultKindsValid(t *testing.T) {
	assert.NoError(t, DefaultKinds().Validate())
}
