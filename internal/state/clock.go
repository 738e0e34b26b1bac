package state

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

var lamport uint64

func nextLamport() uint64 {
	return atomic.AddUint64(&lamport, 1)
}

// NewSessionID identifies one engine instance in the action journal.
func NewSessionID() string {
	return uuid.NewString()
}

// NewArtworkID returns a fresh gallery ID.
func NewArtworkID() string {
	return uuid.NewString()
}

type ActionKind int

const (
	ActionStroke ActionKind = iota
	ActionClear
	ActionUndo
	ActionRedo
)

func (k ActionKind) String() string {
	switch k {
	case ActionStroke:
		return "stroke"
	case ActionClear:
		return "clear"
	case ActionUndo:
		return "undo"
	case ActionRedo:
		return "redo"
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action describes one history-changing operation. Index and Len are the
// history position and length after the action was applied.
type Action struct {
	Kind    ActionKind
	Seq     uint64
	Session string
	Index   int
	Len     int
}

// NewAction stamps an action with the next sequence number.
func NewAction(kind ActionKind, session string, h *History) Action {
	return Action{
		Kind:    kind,
		Seq:     nextLamport(),
		Session: session,
		Index:   h.Index(),
		Len:     h.Len(),
	}
}
