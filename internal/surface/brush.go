package surface

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"KidArtStudio/internal/state"
)

const (
	// textured brush: sub-strokes per segment and jitter as a fraction of size
	textureFanOut = 3
	textureJitter = 0.3

	eraserScale = 2
)

func (e *Engine) lineWidth() float64 {
	w := float64(e.settings.Size)
	if e.settings.Tool == state.ToolEraser {
		w *= eraserScale
	}
	return w
}

// drawSegment renders from the current path position to p and advances the
// path. The textured style fans the segment out into jittered sub-strokes
// and leaves the path at the last jittered point.
func (e *Engine) drawSegment(p state.Point) {
	if e.settings.Style != state.StyleTextured {
		e.stamp(e.cur, p)
		e.cur = p
		return
	}

	from := e.cur
	for i := 0; i < textureFanOut; i++ {
		to := state.Point{X: p.X + e.jitter(), Y: p.Y + e.jitter()}
		e.stamp(from, to)
		from = to
	}
	e.cur = from
}

func (e *Engine) jitter() float64 {
	return (e.rng.Float64() - 0.5) * float64(e.settings.Size) * textureJitter
}

func capJoin(style state.BrushStyle) (gg.LineCap, gg.LineJoin) {
	if style == state.StyleSquare {
		return gg.LineCapSquare, gg.LineJoinMiter
	}
	return gg.LineCapRound, gg.LineJoinRound
}

// stamp strokes the segment a-b into a coverage mask covering only the
// segment's bounds and composites the mask onto the surface.
func (e *Engine) stamp(a, b state.Point) {
	w := e.lineWidth()
	// square caps reach w/2*sqrt2 past the endpoints
	pad := w*0.75 + 2
	r := image.Rect(
		int(math.Floor(math.Min(a.X, b.X)-pad)),
		int(math.Floor(math.Min(a.Y, b.Y)-pad)),
		int(math.Ceil(math.Max(a.X, b.X)+pad)),
		int(math.Ceil(math.Max(a.Y, b.Y)+pad)),
	).Intersect(e.img.Bounds())
	if r.Empty() {
		return
	}

	mask, err := coverage(a, b, r, w, e.settings.Style)
	if err != nil {
		Logger().Warn("segment not rendered", zap.Error(err))
		return
	}
	if e.settings.Tool == state.ToolEraser {
		e.cutOut(r, mask)
		return
	}
	e.paintOver(r, mask, e.settings.Color)
}

// coverage rasterises the segment in opaque white on a transparent scratch
// context the size of r. The alpha channel of the result is the coverage.
func coverage(a, b state.Point, r image.Rectangle, w float64, style state.BrushStyle) ([]byte, error) {
	dc := gg.NewContext(r.Dx(), r.Dy())
	defer dc.Close()

	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	ax, ay := a.X-ox, a.Y-oy
	bx, by := b.X-ox, b.Y-oy

	dc.SetColor(color.White)
	lineCap, lineJoin := capJoin(style)

	if math.Hypot(bx-ax, by-ay) < 1e-6 {
		// a tap leaves a dot in the shape of the cap
		if lineCap == gg.LineCapSquare {
			dc.DrawRectangle(ax-w/2, ay-w/2, w, w)
		} else {
			dc.DrawCircle(ax, ay, w/2)
		}
		if err := dc.Fill(); err != nil {
			return nil, err
		}
		return dc.ResizeTarget().Data(), nil
	}

	dc.SetLineWidth(w)
	dc.SetLineCap(lineCap)
	dc.SetLineJoin(lineJoin)
	dc.MoveTo(ax, ay)
	dc.LineTo(bx, by)
	if err := dc.Stroke(); err != nil {
		return nil, err
	}
	return dc.ResizeTarget().Data(), nil
}

// paintOver composites c over the surface through mask (source-over).
func (e *Engine) paintOver(r image.Rectangle, mask []byte, c color.RGBA) {
	m := &image.RGBA{Pix: mask, Stride: r.Dx() * 4, Rect: image.Rect(0, 0, r.Dx(), r.Dy())}
	draw.DrawMask(e.img, r, image.NewUniform(c), image.Point{}, m, image.Point{}, draw.Over)
}

// cutOut removes surface content through mask (destination-out). Fully
// covered pixels become transparent, background included.
// draw offers no destination-out Op.
func (e *Engine) cutOut(r image.Rectangle, mask []byte) {
	stride := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := (y - r.Min.Y) * stride
		for x := r.Min.X; x < r.Max.X; x++ {
			a := uint32(mask[row+(x-r.Min.X)*4+3])
			if a == 0 {
				continue
			}
			inv := 255 - a
			i := e.img.PixOffset(x, y)
			px := e.img.Pix[i : i+4 : i+4]
			for k := range px {
				px[k] = uint8(mul(px[k], inv))
			}
		}
	}
}

func mul(v uint8, a uint32) uint32 {
	return (uint32(v)*a + 127) / 255
}
