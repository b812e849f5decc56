package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/witchwood/sim/internal/component"
)

// Sizes in the kind table are in tiles and are scaled by the map's tile
// size at spawn time.

// BodyKind describes an upright round-cuboid character body.
type BodyKind struct {
	Size          [3]float32      `yaml:"size"`   // full extents in tiles
	Border        float32         `yaml:"border"` // rounding radius
	SpawnHeight   float32         `yaml:"spawn_height"`
	LinearDamping float32         `yaml:"linear_damping"`
	Color         component.Color `yaml:"color"`
}

// Range is an inclusive float range.
type Range struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

type TreePalette struct {
	Leaf  component.Color `yaml:"leaf"`
	Trunk component.Color `yaml:"trunk"`
}

type TreeKind struct {
	LeafWidths  []float32     `yaml:"leaf_widths"`
	LeafHeight  Range         `yaml:"leaf_height"`
	TrunkHeight Range         `yaml:"trunk_height"`
	MinWidth    float32       `yaml:"min_width"` // collider floor for thin trees
	Palettes    []TreePalette `yaml:"palettes"`
}

type BallKind struct {
	Radius      float32         `yaml:"radius"`
	Density     float32         `yaml:"density"`
	Restitution float32         `yaml:"restitution"`
	DropHeight  float32         `yaml:"drop_height"`
	Color       component.Color `yaml:"color"`
}

type BlockKind struct {
	Color component.Color `yaml:"color"`
}

// KindTable holds the static parameters of every spawnable kind.
type KindTable struct {
	Player BodyKind  `yaml:"player"`
	Witch  BodyKind  `yaml:"witch"`
	Tree   TreeKind  `yaml:"tree"`
	Ball   BallKind  `yaml:"ball"`
	Block  BlockKind `yaml:"block"`
}

// DefaultKinds returns the built-in kind table.
func DefaultKinds() KindTable {
	return KindTable{
		Player: BodyKind{
			Size:          [3]float32{1, 2, 1},
			Border:        0.1,
			SpawnHeight:   2,
			LinearDamping: 4,
			Color:         component.Gray,
		},
		Witch: BodyKind{
			Size:        [3]float32{1, 2, 1},
			Border:      0.1,
			SpawnHeight: 2,
			Color:       component.Purple,
		},
		Tree: TreeKind{
			LeafWidths:  []float32{1, 3},
			LeafHeight:  Range{Min: 1, Max: 8},
			TrunkHeight: Range{Min: 1, Max: 2},
			MinWidth:    0.25,
			Palettes: []TreePalette{
				{Leaf: component.Green, Trunk: component.Brown},
				{Leaf: component.DarkGreen, Trunk: component.DarkBrown},
			},
		},
		Ball: BallKind{
			Radius:      0.5,
			Density:     1,
			Restitution: 0.7,
			DropHeight:  10,
			Color:       component.Blue,
		},
		Block: BlockKind{Color: component.LightGray},
	}
}

// LoadKinds reads a kind table from YAML over the defaults. Kinds absent
// from the file keep their built-in parameters.
func LoadKinds(path string) (KindTable, error) {
	k := DefaultKinds()
	raw, err := os.ReadFile(path)
	if err != nil {
		return k, fmt.Errorf("read kinds %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &k); err != nil {
		return k, fmt.Errorf("parse kinds %s: %w", path, err)
	}
	if err := k.Validate(); err != nil {
		return k, fmt.Errorf("kinds %s: %w", path, err)
	}
	return k, nil
}

// Validate checks the ranges and lists the spawner draws from.
func (k KindTable) Validate() error {
	for name, b := range map[string]BodyKind{"player": k.Player, "witch": k.Witch} {
		if b.Size[0] <= 0 || b.Size[1] <= 0 || b.Size[2] <= 0 {
			return fmt.Errorf("%s: size must be positive", name)
		}
		if b.Border < 0 {
			return fmt.Errorf("%s: negative border", name)
		}
	}
	if len(k.Tree.LeafWidths) == 0 {
		return fmt.Errorf("tree: no leaf widths")
	}
	if len(k.Tree.Palettes) == 0 {
		return fmt.Errorf("tree: no palettes")
	}
	if k.Tree.LeafHeight.Min > k.Tree.LeafHeight.Max || k.Tree.TrunkHeight.Min > k.Tree.TrunkHeight.Max {
		return fmt.Errorf("tree: inverted height range")
	}
	if k.Ball.Radius <= 0 {
		return fmt.Errorf("ball: radius must be positive")
	}
	return nil
}
