package state

// DefaultHistoryDepth is the number of snapshots kept for undo/redo.
const DefaultHistoryDepth = 20

// History is a linear undo stack of full-surface snapshots with a redo tail.
// Snapshots are opaque byte slices owned by the history once pushed.
type History struct {
	snapshots [][]byte
	index     int
	depth     int
}

// NewHistory records initial as snapshot 0. A depth below 1 is treated as 1.
func NewHistory(depth int, initial []byte) *History {
	if depth < 1 {
		depth = 1
	}
	snapshots := make([][]byte, 1, depth)
	snapshots[0] = initial
	return &History{snapshots: snapshots, depth: depth}
}

// Push appends a snapshot after the current index, discarding any redo tail.
// Once the history is full the oldest snapshot is evicted and the index
// stays where it is.
func (h *History) Push(snap []byte) {
	for i := h.index + 1; i < len(h.snapshots); i++ {
		h.snapshots[i] = nil
	}
	h.snapshots = append(h.snapshots[:h.index+1], snap)
	if len(h.snapshots) > h.depth {
		n := copy(h.snapshots, h.snapshots[1:])
		h.snapshots[n] = nil
		h.snapshots = h.snapshots[:n]
		return
	}
	h.index++
}

// Undo steps back one snapshot and returns it. ok is false at index 0.
func (h *History) Undo() (snap []byte, ok bool) {
	if h.index == 0 {
		return nil, false
	}
	h.index--
	return h.snapshots[h.index], true
}

// Redo steps forward one snapshot and returns it. ok is false at the last index.
func (h *History) Redo() (snap []byte, ok bool) {
	if h.index >= len(h.snapshots)-1 {
		return nil, false
	}
	h.index++
	return h.snapshots[h.index], true
}

func (h *History) Len() int   { return len(h.snapshots) }
func (h *History) Index() int { return h.index }
func (h *History) Depth() int { return h.depth }
