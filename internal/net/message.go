package net

import "KidArtStudio/internal/state"

type MessageType string

const (
	MsgArtwork MessageType = "artwork" // studio -> wall
	MsgAck     MessageType = "ack"     // wall -> sender
	MsgAdded   MessageType = "added"   // wall -> everyone else
	MsgError   MessageType = "error"   // wall -> sender
)

// Message is the single JSON envelope used on the gallery socket.
type Message struct {
	Type      MessageType    `json:"type"`
	Artwork   *state.Artwork `json:"artwork,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Duplicate bool           `json:"duplicate,omitempty"`
	Count     int            `json:"count,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Ack is the wall's answer to a shared artwork.
type Ack struct {
	ID        string
	Duplicate bool
	Count     int
}
