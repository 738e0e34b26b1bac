package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// RunApp opens the studio window and blocks until it is closed. onStarted
// runs once the app is up, so it may update the UI with fyne.Do.
func RunApp(title, shareLink string, s *Studio, onStarted func()) {
	myApp := app.NewWithID("io.kidart.studio")
	myWindow := myApp.NewWindow(title)
	myWindow.Resize(fyne.NewSize(1024, 768))

	toolbar := NewToolbar(s, myWindow)

	footer := container.NewHBox(s.status)
	if shareLink != "" {
		copyLink := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
			myWindow.Clipboard().SetContent(shareLink)
			s.status.SetText("Link copied")
		})
		footer = container.NewBorder(nil, nil, nil,
			container.NewHBox(widget.NewLabel("Gallery wall: "+shareLink), copyLink),
			s.status)
	}

	content := container.NewBorder(toolbar, footer, nil, nil, s.Board)
	myWindow.SetContent(content)

	if onStarted != nil {
		myApp.Lifecycle().SetOnStarted(onStarted)
	}
	myWindow.ShowAndRun()
}
