package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"KidArtStudio/internal/state"
)

// ErrRejected is returned when the gallery wall refuses an artwork.
var ErrRejected = errors.New("gallery wall rejected artwork")

// Client is a studio's connection to a gallery wall. A background reader
// hands acks to Share and announcements to the SetOnAdded hook as they arrive.
type Client struct {
	conn *websocket.Conn

	// serialises Share; only one artwork waits for an ack at a time
	mu      sync.Mutex
	replies chan Message

	hookMu  sync.RWMutex
	onAdded func(Message)

	done    chan struct{}
	readErr error
}

// Dial connects to a wall given as "kidart://host:port" or "host:port".
func Dial(ctx context.Context, link string) (*Client, error) {
	addr := ParseLink(link)
	u := url.URL{Scheme: "ws", Host: addr, Path: GalleryPath}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial gallery wall %s: %w", addr, err)
	}
	conn.SetReadLimit(maxMessageSize)

	c := &Client{
		conn:    conn,
		replies: make(chan Message, 1),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// SetOnAdded registers fn for announcements of artwork pinned by other
// studios. fn runs on the reader goroutine.
func (c *Client) SetOnAdded(fn func(Message)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.onAdded = fn
}

// Done is closed once the connection to the wall is lost or closed.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) LocalAddr() string {
	return c.conn.LocalAddr().String()
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.readErr = err
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			Logger().Warn("[CLIENT] skipping malformed message", zap.Error(err))
			continue
		}
		switch msg.Type {
		case MsgAdded:
			c.hookMu.RLock()
			fn := c.onAdded
			c.hookMu.RUnlock()
			if fn != nil {
				fn(msg)
			}
		case MsgAck, MsgError:
			select {
			case c.replies <- msg:
			default:
				// nobody is waiting: a late reply to a Share that gave up
				Logger().Debug("[CLIENT] dropping unsolicited reply", zap.String("id", msg.ID))
			}
		}
	}
}

// Share pins art to the wall and waits for its ack.
func (c *Client) Share(ctx context.Context, art state.Artwork) (Ack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// drop a stale reply left by an earlier Share that timed out
	select {
	case <-c.replies:
	default:
	}

	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(dl)
		defer func() { _ = c.conn.SetWriteDeadline(time.Time{}) }()
	}
	if err := c.conn.WriteJSON(Message{Type: MsgArtwork, Artwork: &art}); err != nil {
		return Ack{}, fmt.Errorf("send artwork: %w", err)
	}

	for {
		select {
		case msg := <-c.replies:
			switch msg.Type {
			case MsgAck:
				if msg.ID == art.ID {
					return Ack{ID: msg.ID, Duplicate: msg.Duplicate, Count: msg.Count}, nil
				}
			case MsgError:
				if msg.ID == "" || msg.ID == art.ID {
					return Ack{}, fmt.Errorf("%w: %s", ErrRejected, msg.Error)
				}
			}
		case <-c.done:
			return Ack{}, fmt.Errorf("wait for ack: %w", c.readErr)
		case <-ctx.Done():
			return Ack{}, ctx.Err()
		}
	}
}

// Close says goodbye to the wall and waits for the reader to stop.
func (c *Client) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := c.conn.Close()
	<-c.done
	return err
}

// ParseLink strips the kidart:// scheme and any trailing slash.
func ParseLink(link string) string {
	addr := strings.TrimPrefix(link, Scheme)
	return strings.TrimSuffix(addr, "/")
}
