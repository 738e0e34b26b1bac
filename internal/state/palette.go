package state

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

type Swatch struct {
	Hex  string
	Name string
}

// Palettes are listed in toolbar order by PaletteNames.
var Palettes = map[string][]Swatch{
	"basic": {
		{"#000000", "Black"},
		{"#ef4444", "Red"},
		{"#f97316", "Orange"},
		{"#eab308", "Yellow"},
		{"#22c55e", "Green"},
		{"#3b82f6", "Blue"},
		{"#8b5cf6", "Purple"},
		{"#ec4899", "Pink"},
	},
	"rainbow": {
		{"#ff0000", "Bright Red"},
		{"#ff8000", "Bright Orange"},
		{"#ffff00", "Bright Yellow"},
		{"#80ff00", "Lime Green"},
		{"#00ff00", "Bright Green"},
		{"#00ff80", "Spring Green"},
		{"#00ffff", "Cyan"},
		{"#0080ff", "Sky Blue"},
		{"#0000ff", "Bright Blue"},
		{"#8000ff", "Electric Purple"},
		{"#ff00ff", "Magenta"},
		{"#ff0080", "Hot Pink"},
	},
	"neon": {
		{"#ff073a", "Neon Red"},
		{"#ff6600", "Neon Orange"},
		{"#ffff00", "Neon Yellow"},
		{"#39ff14", "Neon Green"},
		{"#00ffff", "Neon Cyan"},
		{"#0066ff", "Neon Blue"},
		{"#9d00ff", "Neon Purple"},
		{"#ff1493", "Neon Pink"},
	},
	"pastels": {
		{"#ffb3ba", "Pastel Pink"},
		{"#ffdfba", "Pastel Peach"},
		{"#ffffba", "Pastel Yellow"},
		{"#baffc9", "Pastel Green"},
		{"#bae1ff", "Pastel Blue"},
		{"#d4baff", "Pastel Purple"},
		{"#ffbaff", "Pastel Magenta"},
		{"#f0f0f0", "Pastel Gray"},
	},
}

func PaletteNames() []string {
	return []string{"basic", "rainbow", "neon", "pastels"}
}

// ParseHex parses "#rrggbb" into an opaque colour.
func ParseHex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Color returns the swatch colour. Palette entries are known to be valid.
func (s Swatch) Color() color.RGBA {
	c, err := ParseHex(s.Hex)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return c
}
