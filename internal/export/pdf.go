package export

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"KidArtStudio/internal/state"
)

const titleHeight = 14.0 // mm

// PNGName is the download name for a drawing saved at t.
func PNGName(t time.Time) string {
	return fmt.Sprintf("kid-art-%d.png", t.UnixMilli())
}

func PDFName(t time.Time) string {
	return fmt.Sprintf("kid-art-%d.pdf", t.UnixMilli())
}

// WritePDF writes a one-page A4 landscape poster: a title line and the
// artwork scaled to fit the rest of the page.
func WritePDF(w io.Writer, art state.Artwork) error {
	cfg, err := png.DecodeConfig(bytes.NewReader(art.PNG))
	if err != nil {
		return fmt.Errorf("read artwork: %w", err)
	}

	p := gofpdf.New("L", "mm", "A4", "")
	tr := p.UnicodeTranslatorFromDescriptor("")
	p.SetTitle(art.Name, true)
	if art.Author != "" {
		p.SetAuthor(art.Author, true)
	}
	p.AddPage()

	p.SetFont("Helvetica", "B", 20)
	p.CellFormat(0, titleHeight, tr(title(art)), "", 1, "C", false, 0, "")

	pageW, pageH := p.GetPageSize()
	left, top, right, bottom := p.GetMargins()
	availW := pageW - left - right
	availH := pageH - top - bottom - titleHeight

	scale := availW / float64(cfg.Width)
	if s := availH / float64(cfg.Height); s < scale {
		scale = s
	}
	imgW, imgH := float64(cfg.Width)*scale, float64(cfg.Height)*scale
	x := left + (availW-imgW)/2
	y := top + titleHeight + (availH-imgH)/2

	name := art.ID
	if name == "" {
		name = "artwork"
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader(name, opts, bytes.NewReader(art.PNG))
	p.ImageOptions(name, x, y, imgW, imgH, false, opts, 0, "")

	return p.Output(w)
}

func title(art state.Artwork) string {
	name := art.Name
	if name == "" {
		name = "My Drawing"
	}
	if art.Author != "" {
		name += " by " + art.Author
	}
	if !art.CreatedAt.IsZero() {
		name += " - " + art.CreatedAt.Format("Jan 2, 2006")
	}
	return name
}
