package surface

import "KidArtStudio/internal/state"

// DisplayBox is where the surface is shown, in host display coordinates.
type DisplayBox struct {
	Left, Top     float64
	Width, Height float64
}

// ToSurface maps a display position to surface space:
//
//	surface_x = (x - box.Left) * backingW / box.Width
//
// and the same for y. A box with no area maps with scale 1.
func ToSurface(box DisplayBox, backingW, backingH int, x, y float64) state.Point {
	sx, sy := 1.0, 1.0
	if box.Width > 0 {
		sx = float64(backingW) / box.Width
	}
	if box.Height > 0 {
		sy = float64(backingH) / box.Height
	}
	return state.Point{
		X: (x - box.Left) * sx,
		Y: (y - box.Top) * sy,
	}
}
