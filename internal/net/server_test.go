package net

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KidArtStudio/internal/state"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3))))
	return buf.Bytes()
}

func artwork(t *testing.T, id, name string) state.Artwork {
	return state.Artwork{
		ID:        id,
		Name:      name,
		Author:    "Ada",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		PNG:       tinyPNG(t),
	}
}

func startWall(t *testing.T) (*Server, string) {
	t.Helper()
	srv := NewServer(state.NewGallery())
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, strings.TrimPrefix(ts.URL, "http://")
}

func dial(t *testing.T, link string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, link)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSharePinsArtwork(t *testing.T) {
	srv, addr := startWall(t)

	var mu sync.Mutex
	var pinned []string
	srv.OnArtwork = func(a state.Artwork) {
		mu.Lock()
		defer mu.Unlock()
		pinned = append(pinned, a.ID)
	}

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	c := dial(t, ShareLink(host, p))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ack, err := c.Share(ctx, artwork(t, "a1", "Sun"))
	require.NoError(t, err)
	assert.Equal(t, Ack{ID: "a1", Count: 1}, ack)

	got, ok := srv.Gallery().Get("a1")
	require.True(t, ok)
	assert.Equal(t, "Sun", got.Name)
	assert.Equal(t, "Ada", got.Author)

	mu.Lock()
	assert.Equal(t, []string{"a1"}, pinned)
	mu.Unlock()
}

func TestShareDuplicateIsAcked(t *testing.T) {
	srv, addr := startWall(t)
	c := dial(t, addr)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := c.Share(ctx, artwork(t, "a1", "Sun"))
	require.NoError(t, err)
	ack, err := c.Share(ctx, artwork(t, "a1", "Sun again"))
	require.NoError(t, err)

	assert.True(t, ack.Duplicate)
	assert.Equal(t, 1, ack.Count)
	got, _ := srv.Gallery().Get("a1")
	assert.Equal(t, "Sun", got.Name, "first pin wins")
}

func TestShareRejectsNonImage(t *testing.T) {
	srv, addr := startWall(t)
	c := dial(t, addr)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	art := artwork(t, "bad", "Scribble")
	art.PNG = []byte("not a png")
	_, err := c.Share(ctx, art)
	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, 0, srv.Gallery().Len())

	// the connection survives a rejection
	ack, err := c.Share(ctx, artwork(t, "good", "Tree"))
	require.NoError(t, err)
	assert.Equal(t, 1, ack.Count)
}

func TestIdleStudiosHearAboutNewArtwork(t *testing.T) {
	srv, addr := startWall(t)
	sender := dial(t, addr)
	listener := dial(t, addr)

	heard := make(chan Message, 4)
	listener.SetOnAdded(func(m Message) { heard <- m })

	require.Eventually(t, func() bool { return srv.Peers().Len() == 2 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := sender.Share(ctx, artwork(t, "a1", "Sun"))
	require.NoError(t, err)

	// the listener never shares; the announcement arrives on its own
	select {
	case m := <-heard:
		assert.Equal(t, MsgAdded, m.Type)
		assert.Equal(t, "a1", m.ID)
		assert.Equal(t, "Sun", m.Name)
		assert.Equal(t, 1, m.Count)
	case <-time.After(2 * time.Second):
		t.Fatal("idle studio was not told about the new artwork")
	}

	// announcements do not get in the way of the listener's own ack
	ack, err := listener.Share(ctx, artwork(t, "a2", "Moon"))
	require.NoError(t, err)
	assert.Equal(t, 2, ack.Count)
}

func TestShareFailsWhenWallGoesAway(t *testing.T) {
	srv, addr := startWall(t)
	c := dial(t, addr)
	require.Eventually(t, func() bool { return srv.Peers().Len() == 1 }, time.Second, 10*time.Millisecond)

	srv.Peers().CloseAll()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not notice the wall closing")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := c.Share(ctx, artwork(t, "a1", "Sun"))
	require.Error(t, err)
}

func TestMalformedMessageGetsError(t *testing.T) {
	_, addr := startWall(t)
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+GalleryPath, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgError, reply.Type)
	assert.Equal(t, "malformed message", reply.Error)

	require.NoError(t, conn.WriteJSON(Message{Type: MsgAck}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgError, reply.Type)
	assert.Contains(t, reply.Error, "unsupported")
}

func TestOtherPathsAreNotFound(t *testing.T) {
	_, addr := startWall(t)
	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDialUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err := Dial(ctx, "kidart://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial gallery wall 127.0.0.1:1")
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv := NewServer(state.NewGallery())
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestLinks(t *testing.T) {
	assert.Equal(t, "kidart://192.168.1.5:8080", ShareLink("192.168.1.5", 8080))
	assert.Equal(t, "192.168.1.5:8080", ParseLink("kidart://192.168.1.5:8080/"))
	assert.Equal(t, "10.0.0.2:9000", ParseLink("10.0.0.2:9000"))
}
