package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"KidArtStudio/internal/export"
	kidnet "KidArtStudio/internal/net"
	"KidArtStudio/internal/state"
	"KidArtStudio/internal/surface"
)

// ErrNotConnected is returned by Share before a gallery wall is joined.
var ErrNotConnected = errors.New("not connected to a gallery wall")

// Sharer pins artwork to a gallery wall. *net.Client implements it.
type Sharer interface {
	Share(ctx context.Context, art state.Artwork) (kidnet.Ack, error)
}

// Studio ties an engine to its board, the status bar and the gallery wall.
type Studio struct {
	Engine *surface.Engine
	Board  *BoardWidget

	status *widget.Label
	author string
	now    func() time.Time

	mu     sync.Mutex
	sharer Sharer
	wall   *state.Gallery
}

func NewStudio(e *surface.Engine, author string) *Studio {
	s := &Studio{
		Engine: e,
		Board:  NewBoardWidget(e),
		status: widget.NewLabel("Ready to draw"),
		author: author,
		now:    time.Now,
		wall:   state.NewGallery(),
	}
	e.OnCommit(s.journal)
	return s
}

func (s *Studio) journal(a state.Action) {
	s.status.SetText(fmt.Sprintf("%s (step %d of %d)", a.Kind, a.Index, a.Len-1))
}

func (s *Studio) StatusText() string { return s.status.Text }

// SetStatus is safe to call from any goroutine.
func (s *Studio) SetStatus(text string) {
	fyne.Do(func() {
		s.status.SetText(text)
	})
}

func (s *Studio) Undo() {
	s.Engine.Undo()
	s.Board.Refresh()
}

func (s *Studio) Redo() {
	s.Engine.Redo()
	s.Board.Refresh()
}

func (s *Studio) Clear() {
	s.Engine.Clear()
	s.Board.Refresh()
}

// Artwork snapshots the current drawing as a PNG artwork.
func (s *Studio) Artwork(name string) (state.Artwork, error) {
	data, err := s.Engine.Export()
	if err != nil {
		return state.Artwork{}, err
	}
	if name == "" {
		name = "Untitled"
	}
	return state.Artwork{
		ID:        state.NewArtworkID(),
		Name:      name,
		Author:    s.author,
		CreatedAt: s.now(),
		PNG:       data,
	}, nil
}

// SaveToFile writes the drawing as PNG and closes writer.
func (s *Studio) SaveToFile(writer io.WriteCloser) error {
	data, err := s.Engine.Export()
	if err != nil {
		_ = writer.Close()
		s.status.SetText("Could not save the picture")
		return err
	}
	return s.savePNG(writer, data)
}

// PrintToFile writes the drawing as a printable PDF poster and closes writer.
func (s *Studio) PrintToFile(writer io.WriteCloser, name string) error {
	art, err := s.Artwork(name)
	if err != nil {
		_ = writer.Close()
		s.status.SetText("Could not print the picture")
		return err
	}
	return s.printPoster(writer, art)
}

// SaveArtwork writes a picture from the gallery as PNG and closes writer.
func (s *Studio) SaveArtwork(writer io.WriteCloser, art state.Artwork) error {
	return s.savePNG(writer, art.PNG)
}

// PrintArtwork writes a picture from the gallery as a PDF poster and
// closes writer.
func (s *Studio) PrintArtwork(writer io.WriteCloser, art state.Artwork) error {
	return s.printPoster(writer, art)
}

func (s *Studio) savePNG(writer io.WriteCloser, data []byte) error {
	defer closeWriter(writer)

	if _, err := writer.Write(data); err != nil {
		s.status.SetText("Could not save the picture")
		return fmt.Errorf("write png: %w", err)
	}
	Logger().Info("picture saved", zap.Int("bytes", len(data)))
	s.status.SetText("Picture saved")
	return nil
}

func (s *Studio) printPoster(writer io.WriteCloser, art state.Artwork) error {
	defer closeWriter(writer)

	if err := export.WritePDF(writer, art); err != nil {
		s.status.SetText("Could not print the picture")
		return err
	}
	Logger().Info("poster written", zap.String("name", art.Name))
	s.status.SetText("Poster ready to print")
	return nil
}

func closeWriter(writer io.Closer) {
	if err := writer.Close(); err != nil {
		Logger().Warn("error closing writer", zap.Error(err))
	}
}

// SetWall makes g the studio's gallery. The wall host passes the shared
// gallery; other studios keep their own shared pictures.
func (s *Studio) SetWall(g *state.Gallery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wall = g
}

func (s *Studio) gallery() *state.Gallery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wall
}

// Wall lists the gallery, oldest first.
func (s *Studio) Wall() []state.Artwork {
	return s.gallery().List()
}

// RemoveFromWall takes a picture down from the gallery.
func (s *Studio) RemoveFromWall(id string) bool {
	art, ok := s.gallery().Get(id)
	if !ok || !s.gallery().Remove(id) {
		return false
	}
	Logger().Info("[GALLERY] artwork removed", zap.String("id", id))
	s.status.SetText(fmt.Sprintf("%q taken down", art.Name))
	return true
}

func (s *Studio) SetSharer(sh Sharer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sharer = sh
}

func (s *Studio) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sharer != nil
}

// Share sends art to the gallery wall. It blocks on the network, so UI
// callers run it on its own goroutine with an artwork taken beforehand.
func (s *Studio) Share(ctx context.Context, art state.Artwork) (kidnet.Ack, error) {
	s.mu.Lock()
	sh := s.sharer
	s.mu.Unlock()
	if sh == nil {
		s.SetStatus("Join a gallery wall to share")
		return kidnet.Ack{}, ErrNotConnected
	}

	ack, err := sh.Share(ctx, art)
	if err != nil {
		Logger().Warn("[CLIENT] share failed", zap.String("id", art.ID), zap.Error(err))
		s.SetStatus("Could not share: " + err.Error())
		return kidnet.Ack{}, err
	}
	s.gallery().Add(art)
	if ack.Duplicate {
		s.SetStatus(fmt.Sprintf("%q is already on the wall", art.Name))
	} else {
		s.SetStatus(fmt.Sprintf("%q is on the wall (%d pictures)", art.Name, ack.Count))
	}
	return ack, nil
}

// Received reports artwork pinned to the wall by someone else.
func (s *Studio) Received(name string, count int) {
	s.SetStatus(fmt.Sprintf("New on the wall: %q (%d pictures)", name, count))
}
