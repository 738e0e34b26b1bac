package ui

import (
	"bytes"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"KidArtStudio/internal/export"
	"KidArtStudio/internal/state"
)

// showGalleryDialog lists the gallery as thumbnails with view, save,
// print and remove actions.
func showGalleryDialog(w fyne.Window, s *Studio) {
	grid := container.NewGridWrap(fyne.NewSize(180, 210))
	empty := widget.NewLabel("No pictures on the wall yet. Share one!")

	var refresh func()
	refresh = func() {
		grid.Objects = nil
		for _, art := range s.Wall() {
			grid.Add(galleryCard(w, s, art, refresh))
		}
		empty.Hidden = len(grid.Objects) > 0
		grid.Refresh()
		empty.Refresh()
	}
	refresh()

	scroll := container.NewVScroll(grid)
	scroll.SetMinSize(fyne.NewSize(600, 420))
	d := dialog.NewCustom("Gallery", "Close", container.NewBorder(empty, nil, nil, nil, scroll), w)
	d.Show()
}

func thumbnail(art state.Artwork) *canvas.Image {
	img := canvas.NewImageFromReader(bytes.NewReader(art.PNG), art.ID+".png")
	img.FillMode = canvas.ImageFillContain
	return img
}

func galleryCard(w fyne.Window, s *Studio, art state.Artwork, changed func()) fyne.CanvasObject {
	thumb := thumbnail(art)
	thumb.SetMinSize(fyne.NewSize(160, 120))

	caption := widget.NewLabel(fmt.Sprintf("%s\nby %s", art.Name, art.Author))
	caption.Truncation = fyne.TextTruncateEllipsis

	actions := container.NewHBox(
		widget.NewButtonWithIcon("", theme.VisibilityIcon(), func() {
			big := thumbnail(art)
			big.SetMinSize(fyne.NewSize(640, 480))
			dialog.ShowCustom(art.Name, "Close", big, w)
		}),
		widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), func() {
			saveArtworkDialog(w, s, art)
		}),
		widget.NewButtonWithIcon("", theme.DocumentPrintIcon(), func() {
			printArtworkDialog(w, s, art)
		}),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
			dialog.ShowConfirm("Take it down?", fmt.Sprintf("Remove %q from the gallery.", art.Name), func(ok bool) {
				if ok && s.RemoveFromWall(art.ID) {
					changed()
				}
			}, w)
		}),
	)
	return container.NewBorder(nil, container.NewVBox(caption, actions), nil, nil, thumb)
}

func saveArtworkDialog(w fyne.Window, s *Studio, art state.Artwork) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if writer == nil {
			return
		}
		if err := s.SaveArtwork(writer, art); err != nil {
			dialog.ShowError(err, w)
		}
	}, w)
	d.SetFileName(export.PNGName(art.CreatedAt))
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	d.Show()
}

func printArtworkDialog(w fyne.Window, s *Studio, art state.Artwork) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if writer == nil {
			return
		}
		if err := s.PrintArtwork(writer, art); err != nil {
			dialog.ShowError(err, w)
		}
	}, w)
	d.SetFileName(export.PDFName(art.CreatedAt))
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	d.Show()
}
