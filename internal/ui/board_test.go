package ui

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kidnet "KidArtStudio/internal/net"
	"KidArtStudio/internal/state"
	"KidArtStudio/internal/surface"
)

var black = color.RGBA{A: 255}

func newStudio(t *testing.T) *Studio {
	t.Helper()
	test.NewTempApp(t)
	e, err := surface.New(800, 600)
	require.NoError(t, err)
	s := NewStudio(e, "Ada")
	s.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	s.Board.Resize(fyne.NewSize(400, 300))
	return s
}

func press(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func drag(x, y, dx, dy float32) *fyne.DragEvent {
	return &fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Dragged:    fyne.NewDelta(dx, dy),
	}
}

func at(s *Studio, x, y int) color.RGBA {
	return s.Engine.Surface().(*image.RGBA).RGBAAt(x, y)
}

func TestBoardScalesPointerToSurface(t *testing.T) {
	s := newStudio(t)
	b := s.Board

	b.MouseDown(press(100, 100))
	require.True(t, s.Engine.Drawing())
	b.Dragged(drag(150, 100, 50, 0))
	b.DragEnd()
	b.MouseUp(press(150, 100))

	assert.False(t, s.Engine.Drawing())
	assert.Equal(t, 2, s.Engine.HistoryLen())
	// widget (100,100)-(150,100) lands on surface (200,200)-(300,200)
	assert.Equal(t, black, at(s, 250, 200))
	assert.Equal(t, black, at(s, 205, 200))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, at(s, 250, 100))
}

func TestBoardCommitsWhenDragLeaves(t *testing.T) {
	s := newStudio(t)
	b := s.Board
	white := color.RGBA{255, 255, 255, 255}

	b.MouseDown(press(100, 100))
	b.Dragged(drag(150, 100, 50, 0))
	// the driver keeps sending drag events outside the widget
	b.Dragged(drag(150, 400, 0, 300))

	assert.False(t, s.Engine.Drawing())
	assert.Equal(t, 2, s.Engine.HistoryLen())
	assert.Equal(t, black, at(s, 250, 200))
	assert.Equal(t, white, at(s, 300, 500))

	b.Dragged(drag(300, 400, 150, 0))
	b.Dragged(drag(300, 100, 0, -300))
	assert.False(t, s.Engine.Drawing(), "coming back does not reopen the stroke")
	assert.Equal(t, white, at(s, 450, 200))
	assert.Equal(t, white, at(s, 600, 200))

	b.DragEnd()
	b.MouseUp(press(300, 100))
	assert.Equal(t, 2, s.Engine.HistoryLen())

	// the next press draws again
	b.MouseDown(press(10, 10))
	b.Dragged(drag(20, 10, 10, 0))
	b.DragEnd()
	assert.Equal(t, 3, s.Engine.HistoryLen())
}

func TestBoardCommitsWhenHoverLeaves(t *testing.T) {
	s := newStudio(t)
	b := s.Board

	b.MouseDown(press(100, 100))
	b.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(150, 100)}})
	b.MouseOut()

	assert.False(t, s.Engine.Drawing())
	assert.Equal(t, 2, s.Engine.HistoryLen())
	assert.Equal(t, black, at(s, 250, 200))
}

func TestBoardHoverWithoutPressDoesNothing(t *testing.T) {
	s := newStudio(t)
	s.Board.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 10)}})
	s.Board.MouseOut()
	s.Board.MouseUp(press(10, 10))
	assert.Equal(t, 1, s.Engine.HistoryLen())
}

func TestBoardIgnoresSecondaryButton(t *testing.T) {
	s := newStudio(t)
	s.Board.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 10)},
		Button:     desktop.MouseButtonSecondary,
	})
	assert.False(t, s.Engine.Drawing())
}

func TestStudioJournal(t *testing.T) {
	s := newStudio(t)
	s.Board.MouseDown(press(10, 10))
	s.Board.MouseUp(press(10, 10))
	assert.Equal(t, "stroke (step 1 of 1)", s.StatusText())

	s.Undo()
	assert.Equal(t, "undo (step 0 of 1)", s.StatusText())
	s.Redo()
	assert.Equal(t, "redo (step 1 of 1)", s.StatusText())
	s.Clear()
	assert.Equal(t, "clear (step 2 of 2)", s.StatusText())
}

type closingBuffer struct {
	bytes.Buffer
	closed bool
}

func (c *closingBuffer) Close() error {
	c.closed = true
	return nil
}

func TestStudioSaveAndPrint(t *testing.T) {
	s := newStudio(t)
	s.Board.MouseDown(press(100, 100))
	s.Board.Dragged(drag(150, 100, 50, 0))
	s.Board.DragEnd()

	var pngOut closingBuffer
	require.NoError(t, s.SaveToFile(&pngOut))
	assert.True(t, pngOut.closed)
	img, err := png.Decode(&pngOut.Buffer)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 800, 600), img.Bounds())
	assert.Equal(t, "Picture saved", s.StatusText())

	var pdfOut closingBuffer
	require.NoError(t, s.PrintToFile(&pdfOut, "Sun"))
	assert.True(t, pdfOut.closed)
	assert.True(t, bytes.HasPrefix(pdfOut.Bytes(), []byte("%PDF-")))
}

func TestStudioArtwork(t *testing.T) {
	s := newStudio(t)
	art, err := s.Artwork("")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", art.Name)
	assert.Equal(t, "Ada", art.Author)
	assert.NotEmpty(t, art.ID)
	assert.Equal(t, 2026, art.CreatedAt.Year())
	_, err = png.DecodeConfig(bytes.NewReader(art.PNG))
	assert.NoError(t, err)
}

type fakeSharer struct {
	got []state.Artwork
	ack kidnet.Ack
}

func (f *fakeSharer) Share(_ context.Context, art state.Artwork) (kidnet.Ack, error) {
	f.got = append(f.got, art)
	return f.ack, nil
}

func TestStudioShare(t *testing.T) {
	s := newStudio(t)
	art, err := s.Artwork("Sun")
	require.NoError(t, err)

	_, err = s.Share(context.Background(), art)
	require.ErrorIs(t, err, ErrNotConnected)
	assert.False(t, s.Connected())

	sh := &fakeSharer{ack: kidnet.Ack{ID: art.ID, Count: 3}}
	s.SetSharer(sh)
	assert.True(t, s.Connected())

	ack, err := s.Share(context.Background(), art)
	require.NoError(t, err)
	assert.Equal(t, 3, ack.Count)
	require.Len(t, sh.got, 1)
	assert.Equal(t, "Sun", sh.got[0].Name)
}

func TestStudioKeepsSharedPictures(t *testing.T) {
	s := newStudio(t)
	s.SetSharer(&fakeSharer{ack: kidnet.Ack{Count: 1}})

	sun, err := s.Artwork("Sun")
	require.NoError(t, err)
	_, err = s.Share(context.Background(), sun)
	require.NoError(t, err)

	wall := s.Wall()
	require.Len(t, wall, 1)
	assert.Equal(t, "Sun", wall[0].Name)

	var pngOut closingBuffer
	require.NoError(t, s.SaveArtwork(&pngOut, wall[0]))
	assert.True(t, pngOut.closed)
	assert.Equal(t, sun.PNG, pngOut.Bytes())

	var pdfOut closingBuffer
	require.NoError(t, s.PrintArtwork(&pdfOut, wall[0]))
	assert.True(t, bytes.HasPrefix(pdfOut.Bytes(), []byte("%PDF-")))

	assert.True(t, s.RemoveFromWall(sun.ID))
	assert.Empty(t, s.Wall())
	assert.False(t, s.RemoveFromWall(sun.ID))
}

func TestStudioShowsHostWall(t *testing.T) {
	s := newStudio(t)
	wall := state.NewGallery()
	wall.Add(state.Artwork{ID: "a1", Name: "Tree", CreatedAt: time.Unix(1, 0)})
	wall.Add(state.Artwork{ID: "a2", Name: "Moon", CreatedAt: time.Unix(2, 0)})
	s.SetWall(wall)

	got := s.Wall()
	require.Len(t, got, 2)
	assert.Equal(t, "Tree", got[0].Name)
	assert.Equal(t, "Moon", got[1].Name)

	require.True(t, s.RemoveFromWall("a1"))
	assert.Equal(t, 1, wall.Len(), "removal reaches the shared gallery")
}

func TestGalleryCardBuildsForEveryPicture(t *testing.T) {
	s := newStudio(t)
	w := test.NewWindow(nil)
	defer w.Close()

	art, err := s.Artwork("Sun")
	require.NoError(t, err)
	card := galleryCard(w, s, art, func() {})
	assert.NotNil(t, card)
	assert.True(t, card.MinSize().Width > 0)
}
