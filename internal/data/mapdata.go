package data

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/witchwood/sim/internal/grid"
)

// ErrMalformedMap marks map files that were read but could not be parsed.
var ErrMalformedMap = errors.New("malformed map")

// MapError reports where a map failed to load. Line is 1-based, 0 when the
// failure is not tied to a line.
type MapError struct {
	Path string
	Line int
	Err  error
}

func (e *MapError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("map %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("map %s: %v", e.Path, e.Err)
}

func (e *MapError) Unwrap() error { return e.Err }

// MapInfo is the map descriptor, loaded from a small YAML file next to the
// tile layer.
type MapInfo struct {
	Name     string  `yaml:"name"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	TileSize float32 `yaml:"tile_size"`
	Tiles    string  `yaml:"tiles"` // CSV tile layer, relative to the descriptor
}

// Map is a loaded descriptor plus its grid.
type Map struct {
	Info MapInfo
	Grid *grid.Grid
}

// LoadMap reads a map descriptor and its tile layer.
func LoadMap(path string) (*Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &MapError{Path: path, Err: err}
	}
	info := MapInfo{TileSize: 1}
	if err := yaml.Unmarshal(raw, &info); err != nil {
		return nil, &MapError{Path: path, Err: fmt.Errorf("%w: %v", ErrMalformedMap, err)}
	}
	if err := grid.CheckSize(info.Width, info.Height); err != nil {
		return nil, &MapError{Path: path, Err: fmt.Errorf("%w: %w", ErrMalformedMap, err)}
	}
	if info.Tiles == "" {
		return nil, &MapError{Path: path, Err: fmt.Errorf("%w: no tile layer", ErrMalformedMap)}
	}

	tilePath := info.Tiles
	if !filepath.IsAbs(tilePath) {
		tilePath = filepath.Join(filepath.Dir(path), tilePath)
	}
	tiles, err := loadTileFile(tilePath, info.Width, info.Height)
	if err != nil {
		return nil, err
	}
	g, err := grid.New(info.Width, info.Height, info.TileSize, tiles)
	if err != nil {
		return nil, &MapError{Path: path, Err: fmt.Errorf("%w: %w", ErrMalformedMap, err)}
	}
	return &Map{Info: info, Grid: g}, nil
}

// loadTileFile reads a CSV tile layer: one line per row, comma-separated
// tile type values (0 air, 1 grass, 2 stone). The first row is the far
// edge of the map (z = height-1), matching editors whose origin is top-left.
// Blank lines and lines starting with '#' are skipped.
func loadTileFile(path string, width, height int) ([]grid.TileType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MapError{Path: path, Err: err}
	}
	defer f.Close()

	// Flat array: tiles[x*height + z]
	tiles := make([]grid.TileType, width*height)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	row, line := 0, 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		if row >= height {
			return nil, &MapError{Path: path, Line: line, Err: fmt.Errorf("%w: more than %d rows", ErrMalformedMap, height)}
		}
		toks := strings.Split(text, ",")
		if len(toks) != width {
			return nil, &MapError{Path: path, Line: line, Err: fmt.Errorf("%w: %d columns, want %d", ErrMalformedMap, len(toks), width)}
		}
		z := height - 1 - row
		for x, tok := range toks {
			val, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 8)
			if err != nil {
				return nil, &MapError{Path: path, Line: line, Err: fmt.Errorf("%w: column %d: %v", ErrMalformedMap, x+1, err)}
			}
			t := grid.TileType(val)
			if !t.Valid() {
				return nil, &MapError{Path: path, Line: line, Err: fmt.Errorf("%w: column %d: unknown tile %d", ErrMalformedMap, x+1, val)}
			}
			tiles[x*height+z] = t
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, &MapError{Path: path, Line: line, Err: err}
	}
	if row != height {
		return nil, &MapError{Path: path, Err: fmt.Errorf("%w: %d rows, want %d", ErrMalformedMap, row, height)}
	}
	return tiles, nil
}
