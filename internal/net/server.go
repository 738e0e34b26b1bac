package net

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"KidArtStudio/internal/state"
)

const (
	GalleryPath = "/gallery"

	// big enough for a base64 PNG of a full-size drawing
	maxMessageSize = 32 << 20
)

// Server is the gallery wall: studios connect over a websocket and pin
// finished artwork to the shared gallery.
type Server struct {
	gallery  *state.Gallery
	peers    *PeerManager
	upgrader websocket.Upgrader

	// OnArtwork is called from the connection's goroutine for every newly
	// pinned artwork.
	OnArtwork func(state.Artwork)
}

func NewServer(g *state.Gallery) *Server {
	return &Server{
		gallery: g,
		peers:   NewPeerManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// studios on the LAN are not browsers; there is no origin to check
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Gallery() *state.Gallery { return s.gallery }
func (s *Server) Peers() *PeerManager     { return s.peers }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != GalleryPath {
		http.NotFound(w, r)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Logger().Warn("[HOST] upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	peer := &Peer{ID: r.RemoteAddr, conn: conn}
	s.peers.Add(peer)
	defer func() {
		s.peers.Remove(peer)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				Logger().Debug("[HOST] read failed", zap.String("peer", peer.ID), zap.Error(err))
			}
			return
		}
		reply := s.handle(peer, data)
		if err := peer.Send(reply); err != nil {
			Logger().Warn("[HOST] reply failed", zap.String("peer", peer.ID), zap.Error(err))
			return
		}
	}
}

func (s *Server) handle(from *Peer, data []byte) Message {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{Type: MsgError, Error: "malformed message"}
	}
	if msg.Type != MsgArtwork {
		return Message{Type: MsgError, Error: fmt.Sprintf("unsupported message %q", msg.Type)}
	}
	if err := validate(msg.Artwork); err != nil {
		id := ""
		if msg.Artwork != nil {
			id = msg.Artwork.ID
		}
		return Message{Type: MsgError, ID: id, Error: err.Error()}
	}

	art := *msg.Artwork
	if art.CreatedAt.IsZero() {
		art.CreatedAt = time.Now()
	}
	added := s.gallery.Add(art)
	count := s.gallery.Len()
	Logger().Info("[GALLERY] artwork received",
		zap.String("id", art.ID),
		zap.String("name", art.Name),
		zap.Bool("duplicate", !added),
		zap.Int("count", count))

	if added {
		if s.OnArtwork != nil {
			s.OnArtwork(art)
		}
		s.peers.Broadcast(Message{Type: MsgAdded, ID: art.ID, Name: art.Name, Count: count}, from)
	}
	return Message{Type: MsgAck, ID: art.ID, Duplicate: !added, Count: count}
}

func validate(art *state.Artwork) error {
	if art == nil {
		return errors.New("missing artwork")
	}
	if art.ID == "" {
		return errors.New("missing artwork id")
	}
	if _, err := png.DecodeConfig(bytes.NewReader(art.PNG)); err != nil {
		return fmt.Errorf("artwork is not a PNG image: %w", err)
	}
	return nil
}

// ListenAndServe runs the gallery wall on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		// Shutdown leaves hijacked websocket connections alone
		s.peers.CloseAll()
	}()

	Logger().Info("[HOST] gallery wall listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gallery wall: %w", err)
	}
	return nil
}
