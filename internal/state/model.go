package state

import (
	"fmt"
	"image/color"
	"time"
)

// Point is a position in surface space (backing-store pixels).
type Point struct{ X, Y float64 }

type Tool int

const (
	ToolBrush Tool = iota
	ToolEraser
)

func (t Tool) String() string {
	switch t {
	case ToolBrush:
		return "brush"
	case ToolEraser:
		return "eraser"
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

type BrushStyle int

const (
	StyleRound BrushStyle = iota
	StyleSquare
	StyleTextured
)

func (s BrushStyle) String() string {
	switch s {
	case StyleRound:
		return "round"
	case StyleSquare:
		return "square"
	case StyleTextured:
		return "texture"
	}
	return fmt.Sprintf("style(%d)", int(s))
}

// Brush size limits offered by the toolbar.
const (
	MinBrushSize     = 1
	MaxBrushSize     = 20
	DefaultBrushSize = 5
)

// Settings is the active drawing configuration. Changes apply to the next
// segment only.
type Settings struct {
	Color color.RGBA // always opaque
	Size  int
	Tool  Tool
	Style BrushStyle
}

func DefaultSettings() Settings {
	return Settings{
		Color: color.RGBA{A: 255},
		Size:  DefaultBrushSize,
		Tool:  ToolBrush,
		Style: StyleRound,
	}
}

// Artwork is a finished drawing as it travels to the gallery wall.
type Artwork struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	PNG       []byte    `json:"png"`
}
