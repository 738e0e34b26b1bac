// Package surface implements the drawing surface: a fixed-size raster that
// turns strokes into pixels and keeps a bounded snapshot history for
// undo and redo.
//
// An Engine is not safe for concurrent use. All calls are expected to come
// from the host's UI event goroutine.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"KidArtStudio/internal/state"
)

// MaxSide bounds each surface dimension.
const MaxSide = 1 << 14

// ErrInvalidSize is returned by New for non-positive or oversized dimensions.
var ErrInvalidSize = errors.New("invalid surface size")

// Engine owns one drawing surface, its active settings and its history.
type Engine struct {
	width, height int
	img           *image.RGBA
	history       *state.History
	settings      state.Settings
	rng           *rand.Rand

	drawing bool
	cur     state.Point

	session  string
	depth    int
	onCommit func(state.Action)
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithRand sets the random source used by the textured brush. Use a seeded
// source for reproducible output.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithHistoryDepth overrides state.DefaultHistoryDepth.
func WithHistoryDepth(n int) Option {
	return func(e *Engine) { e.depth = n }
}

// WithSettings applies initial drawing settings.
func WithSettings(settings ...Setting) Option {
	return func(e *Engine) { e.Configure(settings...) }
}

// Setting is a partial update of the active drawing configuration.
type Setting func(*state.Settings)

// WithColor sets the brush colour. Alpha is forced to opaque.
func WithColor(c color.Color) Setting {
	return func(s *state.Settings) {
		rgba := color.RGBAModel.Convert(c).(color.RGBA)
		if rgba.A != 0 && rgba.A != 255 {
			// un-premultiply so a translucent input keeps its hue
			rgba.R = uint8(uint32(rgba.R) * 255 / uint32(rgba.A))
			rgba.G = uint8(uint32(rgba.G) * 255 / uint32(rgba.A))
			rgba.B = uint8(uint32(rgba.B) * 255 / uint32(rgba.A))
		}
		rgba.A = 255
		s.Color = rgba
	}
}

// WithBrushSize sets the brush diameter in surface pixels. Sizes below 1
// are ignored.
func WithBrushSize(size int) Setting {
	return func(s *state.Settings) {
		if size > 0 {
			s.Size = size
		}
	}
}

func WithTool(t state.Tool) Setting {
	return func(s *state.Settings) { s.Tool = t }
}

func WithBrushStyle(style state.BrushStyle) Setting {
	return func(s *state.Settings) { s.Style = style }
}

// New allocates a white surface of the given size and records it as
// history snapshot 0.
func New(width, height int, opts ...Option) (*Engine, error) {
	if width <= 0 || height <= 0 || width > MaxSide || height > MaxSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	e := &Engine{
		width:    width,
		height:   height,
		img:      image.NewRGBA(image.Rect(0, 0, width, height)),
		settings: state.DefaultSettings(),
		session:  state.NewSessionID(),
		depth:    state.DefaultHistoryDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := uint64(time.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	e.fillWhite()
	e.history = state.NewHistory(e.depth, e.snapshot())

	Logger().Debug("surface created",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.String("session", e.session))
	return e, nil
}

// Configure applies a partial settings update. It takes effect on the next
// drawn segment and never touches committed pixels.
func (e *Engine) Configure(settings ...Setting) {
	for _, s := range settings {
		s(&e.settings)
	}
}

func (e *Engine) Settings() state.Settings { return e.settings }

// OnCommit registers fn to be called after every stroke commit, clear,
// undo and redo that changed the history position.
func (e *Engine) OnCommit(fn func(state.Action)) {
	e.onCommit = fn
}

// BeginStroke starts a new path at p. Calling it while a stroke is open
// restarts the path at p without committing.
func (e *Engine) BeginStroke(p state.Point) {
	e.drawing = true
	e.cur = p
}

// ExtendStroke draws a segment from the current path position to p.
// It is a no-op when no stroke is open.
func (e *Engine) ExtendStroke(p state.Point) {
	if !e.drawing {
		return
	}
	e.drawSegment(p)
}

// EndStroke closes the open stroke and commits a snapshot. It is a no-op
// when no stroke is open.
func (e *Engine) EndStroke() {
	if !e.drawing {
		return
	}
	e.drawing = false
	e.commit(state.ActionStroke)
}

// Drawing reports whether a stroke is open.
func (e *Engine) Drawing() bool { return e.drawing }

// Clear paints the whole surface white and commits a snapshot.
func (e *Engine) Clear() {
	e.fillWhite()
	e.commit(state.ActionClear)
}

func (e *Engine) Undo() {
	snap, ok := e.history.Undo()
	if !ok {
		return
	}
	copy(e.img.Pix, snap)
	e.notify(state.ActionUndo)
}

func (e *Engine) Redo() {
	snap, ok := e.history.Redo()
	if !ok {
		return
	}
	copy(e.img.Pix, snap)
	e.notify(state.ActionRedo)
}

// Surface returns the live pixel buffer. Callers must treat it as read-only.
func (e *Engine) Surface() image.Image { return e.img }

func (e *Engine) Size() (width, height int) { return e.width, e.height }

func (e *Engine) HistoryLen() int   { return e.history.Len() }
func (e *Engine) HistoryIndex() int { return e.history.Index() }

func (e *Engine) commit(kind state.ActionKind) {
	e.history.Push(e.snapshot())
	e.notify(kind)
}

func (e *Engine) notify(kind state.ActionKind) {
	a := state.NewAction(kind, e.session, e.history)
	Logger().Debug("history",
		zap.Stringer("action", a.Kind),
		zap.Int("index", a.Index),
		zap.Int("len", a.Len),
		zap.Int("depth", e.history.Depth()))
	if e.onCommit != nil {
		e.onCommit(a)
	}
}

func (e *Engine) snapshot() []byte {
	snap := make([]byte, len(e.img.Pix))
	copy(snap, e.img.Pix)
	return snap
}

func (e *Engine) fillWhite() {
	draw.Draw(e.img, e.img.Bounds(), image.White, image.Point{}, draw.Src)
}
