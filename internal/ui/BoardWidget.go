package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"KidArtStudio/internal/state"
	"KidArtStudio/internal/surface"
)

// BoardWidget shows an engine's surface scaled to the widget and feeds it
// pointer input converted to surface coordinates.
type BoardWidget struct {
	widget.BaseWidget
	engine *surface.Engine
	raster *canvas.Raster

	// set when the pointer leaves mid-drag; the drag draws nothing more
	left bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget(e *surface.Engine) *BoardWidget {
	b := &BoardWidget{engine: e}
	b.raster = canvas.NewRaster(func(int, int) image.Image {
		return b.engine.Surface()
	})
	b.raster.SetMinSize(fyne.NewSize(300, 300))
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.White)
	return widget.NewSimpleRenderer(container.NewStack(background, b.raster))
}

func (b *BoardWidget) Refresh() {
	b.raster.Refresh()
	b.BaseWidget.Refresh()
}

// toSurface maps a widget-relative position into the engine's backing
// store, whatever size the widget is laid out at.
func (b *BoardWidget) toSurface(pos fyne.Position) state.Point {
	w, h := b.engine.Size()
	size := b.Size()
	box := surface.DisplayBox{Width: float64(size.Width), Height: float64(size.Height)}
	return surface.ToSurface(box, w, h, float64(pos.X), float64(pos.Y))
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.left = false
	b.engine.BeginStroke(b.toSurface(e.Position))
}

func (b *BoardWidget) MouseUp(*desktop.MouseEvent) {
	b.endStroke()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	if !b.engine.Drawing() {
		return
	}
	b.engine.ExtendStroke(b.toSurface(e.Position))
	b.raster.Refresh()
}

// MouseOut commits the open stroke when the pointer leaves the board
// while hovering. Drags never see MouseOut; Dragged handles those.
func (b *BoardWidget) MouseOut() {
	if b.engine.Drawing() {
		b.left = true
	}
	b.endStroke()
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.left {
		return
	}
	if !b.contains(e.Position) {
		// leaving the board mid-drag commits; the rest of the drag is ignored
		b.left = b.engine.Drawing()
		b.endStroke()
		return
	}
	p := b.toSurface(e.Position)
	if !b.engine.Drawing() {
		// touch input delivers drags without a preceding MouseDown
		b.engine.BeginStroke(p)
	}
	b.engine.ExtendStroke(p)
	b.raster.Refresh()
}

func (b *BoardWidget) DragEnd() {
	b.left = false
	b.endStroke()
}

func (b *BoardWidget) contains(pos fyne.Position) bool {
	size := b.Size()
	return pos.X >= 0 && pos.Y >= 0 && pos.X <= size.Width && pos.Y <= size.Height
}

func (b *BoardWidget) endStroke() {
	if !b.engine.Drawing() {
		return
	}
	b.engine.EndStroke()
	b.raster.Refresh()
}
