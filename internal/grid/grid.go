// Package grid is the static tile lattice used for placement. Collision is
// handled by the physics colliders generated from it, never by the grid.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidGrid is returned when dimensions, tile size or tile data do not
// describe a usable lattice.
var ErrInvalidGrid = errors.New("grid: invalid grid")

// TileType is the terrain kind of one cell.
type TileType uint8

const (
	Air TileType = iota
	Grass
	Stone
)

func (t TileType) String() string {
	switch t {
	case Air:
		return "air"
	case Grass:
		return "grass"
	case Stone:
		return "stone"
	default:
		return fmt.Sprintf("tile(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the known terrain kinds.
func (t TileType) Valid() bool { return t <= Stone }

// Walkable reports whether entities may be placed on the tile.
func (t TileType) Walkable() bool { return t == Air || t == Grass }

// Coord is an integer lattice position. Z is the second horizontal axis.
type Coord struct {
	X, Z int
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Z) }

// Tile is a cell with its coordinate.
type Tile struct {
	Type  TileType
	Coord Coord
}

// Grid is immutable after construction.
type Grid struct {
	width    int
	height   int
	tileSize float32
	tiles    []TileType // flat [x*height + z]
}

// New builds a grid from tiles laid out as [x*height + z].
func New(width, height int, tileSize float32, tiles []TileType) (*Grid, error) {
	if err := CheckSize(width, height); err != nil {
		return nil, err
	}
	if tileSize <= 0 || math.IsNaN(float64(tileSize)) {
		return nil, fmt.Errorf("tile size %v: %w", tileSize, ErrInvalidGrid)
	}
	if len(tiles) != width*height {
		return nil, fmt.Errorf("got %d tiles for %dx%d: %w", len(tiles), width, height, ErrInvalidGrid)
	}
	for i, t := range tiles {
		if !t.Valid() {
			return nil, fmt.Errorf("tile %d has type %d: %w", i, t, ErrInvalidGrid)
		}
	}
	return &Grid{
		width:    width,
		height:   height,
		tileSize: tileSize,
		tiles:    append([]TileType(nil), tiles...),
	}, nil
}

// MaxSide bounds each grid dimension in tiles.
const MaxSide = 4096

// CheckSize rejects dimensions that are not positive or exceed MaxSide.
func CheckSize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxSide || height > MaxSide {
		return fmt.Errorf("dimensions %dx%d: %w", width, height, ErrInvalidGrid)
	}
	return nil
}

// Filled returns a grid where every tile is kind.
func Filled(width, height int, tileSize float32, kind TileType) (*Grid, error) {
	if err := CheckSize(width, height); err != nil {
		return nil, err
	}
	tiles := make([]TileType, width*height)
	for i := range tiles {
		tiles[i] = kind
	}
	return New(width, height, tileSize, tiles)
}

func (g *Grid) Width() int        { return g.width }
func (g *Grid) Height() int       { return g.height }
func (g *Grid) TileSize() float32 { return g.tileSize }

func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.width && c.Z >= 0 && c.Z < g.height
}

// At returns the tile at c, or false when c is outside the grid.
func (g *Grid) At(c Coord) (Tile, bool) {
	if !g.InBounds(c) {
		return Tile{}, false
	}
	return Tile{Type: g.tiles[c.X*g.height+c.Z], Coord: c}, true
}

// IsFree reports whether c is inside the grid and walkable. Occupancy by
// entities is tracked by the spawner, not here.
func (g *Grid) IsFree(c Coord) bool {
	t, ok := g.At(c)
	return ok && t.Type.Walkable()
}

// TileToWorld maps a tile to the world position of its centre at height y.
func (g *Grid) TileToWorld(c Coord, y float32) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X) * g.tileSize, y, float32(c.Z) * g.tileSize}
}

// WorldToTile maps a world position to the nearest tile. The result may be
// out of bounds.
func (g *Grid) WorldToTile(p mgl32.Vec3) Coord {
	return Coord{
		X: int(math.Round(float64(p.X() / g.tileSize))),
		Z: int(math.Round(float64(p.Z() / g.tileSize))),
	}
}

// Each visits every tile, x-major.
func (g *Grid) Each(fn func(Tile)) {
	for x := 0; x < g.width; x++ {
		for z := 0; z < g.height; z++ {
			fn(Tile{Type: g.tiles[x*g.height+z], Coord: Coord{X: x, Z: z}})
		}
	}
}

// IsEdge reports whether c lies on the outer ring of tiles.
func (g *Grid) IsEdge(c Coord) bool {
	return c.X == 0 || c.Z == 0 || c.X == g.width-1 || c.Z == g.height-1
}

// Inset returns the half-open coordinate range [lo, hi) left after removing
// margin tiles from each side of the given axis length. hi <= lo means the
// range is empty.
func Inset(length, margin int) (lo, hi int) {
	return margin, length - margin
}

// FreeInset lists the walkable tiles at least margin tiles from every
// edge, x-major.
func (g *Grid) FreeInset(margin int) []Coord {
	x0, x1 := Inset(g.width, margin)
	z0, z1 := Inset(g.height, margin)
	var out []Coord
	for x := x0; x < x1; x++ {
		for z := z0; z < z1; z++ {
			if c := (Coord{X: x, Z: z}); g.IsFree(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// Center is the world position of the grid's middle at height y.
func (g *Grid) Center(y float32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(g.width-1) * g.tileSize / 2,
		y,
		float32(g.height-1) * g.tileSize / 2,
	}
}

// Extent is the world size of the grid on X and Z.
func (g *Grid) Extent() (x, z float32) {
	return float32(g.width) * g.tileSize, float32(g.height) * g.tileSize
}
