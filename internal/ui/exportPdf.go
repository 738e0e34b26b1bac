package ui

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"KidArtStudio/internal/export"
)

func showSaveDialog(w fyne.Window, s *Studio) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if writer == nil {
			return // cancelled
		}
		if err := s.SaveToFile(writer); err != nil {
			dialog.ShowError(err, w)
		}
	}, w)
	d.SetFileName(export.PNGName(time.Now()))
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	d.Show()
}

func showPrintDialog(w fyne.Window, s *Studio) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if writer == nil {
			return
		}
		if err := s.PrintToFile(writer, "My picture"); err != nil {
			dialog.ShowError(err, w)
		}
	}, w)
	d.SetFileName(export.PDFName(time.Now()))
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	d.Show()
}
