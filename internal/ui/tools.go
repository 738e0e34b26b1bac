package ui

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"KidArtStudio/internal/state"
	"KidArtStudio/internal/surface"
)

const shareTimeout = 10 * time.Second

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

func swatches(palette string, tapped func(color.Color)) []fyne.CanvasObject {
	var objs []fyne.CanvasObject
	for _, sw := range state.Palettes[palette] {
		objs = append(objs, newColorSwatch(sw.Color(), tapped))
	}
	return objs
}

var styleNames = map[string]state.BrushStyle{
	state.StyleRound.String():    state.StyleRound,
	state.StyleSquare.String():   state.StyleSquare,
	state.StyleTextured.String(): state.StyleTextured,
}

// NewToolbar builds the studio's controls. w parents the dialogs.
func NewToolbar(s *Studio, w fyne.Window) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			s.Engine.Configure(surface.WithTool(state.ToolBrush))
		}), // Brush
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			s.Engine.Configure(surface.WithTool(state.ToolEraser))
		}), // Eraser
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), s.Undo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), s.Redo),
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			dialog.ShowConfirm("Start over?", "This wipes the whole picture.", func(ok bool) {
				if ok {
					s.Clear()
				}
			}, w)
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { showSaveDialog(w, s) }),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), func() { showPrintDialog(w, s) }),
		widget.NewToolbarAction(theme.MailSendIcon(), func() { showShareDialog(w, s) }),
		widget.NewToolbarAction(theme.GridIcon(), func() { showGalleryDialog(w, s) }),
	)

	// --- Brush style ---
	style := widget.NewSelect([]string{
		state.StyleRound.String(),
		state.StyleSquare.String(),
		state.StyleTextured.String(),
	}, func(name string) {
		s.Engine.Configure(surface.WithBrushStyle(styleNames[name]))
	})
	style.SetSelected(s.Engine.Settings().Style.String())

	// --- Color Palette ---
	onColorTapped := func(c color.Color) {
		s.Engine.Configure(surface.WithColor(c), surface.WithTool(state.ToolBrush))
	}
	colorBox := container.NewHBox(swatches("basic", onColorTapped)...)
	palette := widget.NewSelect(state.PaletteNames(), func(name string) {
		colorBox.Objects = swatches(name, onColorTapped)
		colorBox.Refresh()
	})
	palette.SetSelected("basic")

	// --- Brush Size Slider ---
	sizeLabel := widget.NewLabel("")
	sizeSlider := widget.NewSlider(state.MinBrushSize, state.MaxBrushSize)
	sizeSlider.Step = 1
	sizeSlider.OnChanged = func(val float64) {
		s.Engine.Configure(surface.WithBrushSize(int(val)))
		sizeLabel.SetText(fmt.Sprintf("%d", int(val)))
	}
	sizeSlider.SetValue(float64(s.Engine.Settings().Size))
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), sizeSlider)

	// --- Assemble everything ---
	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Brush:"),
		style,
		widget.NewSeparator(),
		palette,
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		sizeLabel,
		layout.NewSpacer(),
	)
}

func showShareDialog(w fyne.Window, s *Studio) {
	if !s.Connected() {
		dialog.ShowInformation("Share", "Join a gallery wall to share your picture.", w)
		return
	}
	name := widget.NewEntry()
	name.SetPlaceHolder("My picture")
	dialog.ShowForm("Pin to the gallery wall", "Share", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Title", name)},
		func(ok bool) {
			if !ok {
				return
			}
			// export on the UI goroutine, the network round trip off it
			art, err := s.Artwork(name.Text)
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), shareTimeout)
				defer cancel()
				_, _ = s.Share(ctx, art)
			}()
		}, w)
}
