package component

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an 8-bit RGBA colour for render consumers.
type Color struct {
	R, G, B, A uint8
}

// Palette used by the built-in entity kinds.
var (
	Green     = Color{0, 228, 48, 255}
	DarkGreen = Color{0, 117, 44, 255}
	Brown     = Color{127, 106, 79, 255}
	DarkBrown = Color{76, 63, 47, 255}
	Blue      = Color{0, 121, 241, 255}
	Purple    = Color{200, 122, 255, 255}
	Gray      = Color{130, 130, 130, 255}
	LightGray = Color{200, 200, 200, 255}
)

// ParseColor accepts "#RRGGBB" or "#RRGGBBAA".
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("color %q: want #RRGGBB or #RRGGBBAA", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func (c Color) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// UnmarshalText lets colours appear as hex strings in YAML and TOML.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
