package net

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Peer is one websocket connection to the gallery wall. Writes are
// serialised because acks and announcements come from different goroutines.
type Peer struct {
	ID   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *Peer) Send(msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteJSON(msg)
}

// PeerManager is used by the HOST to track every connected studio.
type PeerManager struct {
	peers map[string]*Peer
	mu    sync.RWMutex
}

func NewPeerManager() *PeerManager {
	return &PeerManager{
		peers: make(map[string]*Peer),
	}
}

func (pm *PeerManager) Add(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.peers[peer.ID] = peer
	Logger().Info("[HOST] studio connected", zap.String("peer", peer.ID))
}

func (pm *PeerManager) Remove(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.peers, peer.ID)
	Logger().Info("[HOST] studio disconnected", zap.String("peer", peer.ID))
}

func (pm *PeerManager) Len() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Broadcast sends msg to every peer except exclude.
func (pm *PeerManager) Broadcast(msg Message, exclude *Peer) {
	pm.mu.RLock()
	peers := make([]*Peer, 0, len(pm.peers))
	for _, p := range pm.peers {
		if p != exclude {
			peers = append(peers, p)
		}
	}
	pm.mu.RUnlock()

	for _, p := range peers {
		if err := p.Send(msg); err != nil {
			Logger().Warn("[HOST] broadcast failed", zap.String("peer", p.ID), zap.Error(err))
		}
	}
}

// CloseAll says goodbye to every peer and drops the connections. Serving
// goroutines notice on their next read and remove themselves.
func (pm *PeerManager) CloseAll() {
	pm.mu.RLock()
	peers := make([]*Peer, 0, len(pm.peers))
	for _, p := range pm.peers {
		peers = append(peers, p)
	}
	pm.mu.RUnlock()

	for _, p := range peers {
		_ = p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "gallery wall closing"),
			time.Now().Add(time.Second))
		_ = p.conn.Close()
	}
}
