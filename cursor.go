package jobpdf

import (
	"log"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

// LayoutCursor is the drawing position of one render call. Layout steps
// take a cursor and return the advanced one.
type LayoutCursor struct {
	X, Y float64
	Page int
}

// drawContext carries everything a layout step needs. It belongs to exactly
// one render call.
type drawContext struct {
	pdf     *fpdf.Fpdf
	geo     PageGeometry
	colors  palette
	encode  func(string) string
	strict  bool
	logger  *log.Logger
	blocks  int // content blocks drawn so far
	skipped []ImageError
}

// at moves the engine to c.
func (dc *drawContext) at(c LayoutCursor) {
	dc.pdf.SetXY(c.X, c.Y)
}

// cursor reads the engine's current position.
func (dc *drawContext) cursor() LayoutCursor {
	return LayoutCursor{X: dc.pdf.GetX(), Y: dc.pdf.GetY(), Page: dc.pdf.PageNo()}
}

// newPage starts a page; the header decoration, if any, runs before the
// returned cursor is read.
func (dc *drawContext) newPage() LayoutCursor {
	dc.pdf.AddPage()
	c := dc.cursor()
	c.X = dc.geo.MarginLeft
	return c
}

// ensureSpace starts a new page when h more millimetres would cross limit.
func (dc *drawContext) ensureSpace(c LayoutCursor, h, limit float64) LayoutCursor {
	if c.Y+h > limit {
		return dc.newPage()
	}
	return c
}

// blockGap returns the cursor moved down by the gap that separates content
// blocks. The first block on a record gets no gap.
func (dc *drawContext) blockGap(c LayoutCursor) LayoutCursor {
	if dc.blocks > 0 {
		c.Y += dc.geo.SectionGap
	}
	dc.blocks++
	c.X = dc.geo.MarginLeft
	return c
}

func (dc *drawContext) setFill(rgb [3]int) {
	dc.pdf.SetFillColor(rgb[0], rgb[1], rgb[2])
}

func (dc *drawContext) setText(rgb [3]int) {
	dc.pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
}

// band draws a full-width filled caption band and the gap below it.
func (dc *drawContext) band(c LayoutCursor, name string) LayoutCursor {
	dc.at(c)
	dc.setFill(dc.colors.band)
	dc.pdf.SetTextColor(0, 0, 0)
	dc.pdf.SetFont(fontFamily, "B", 12)
	dc.pdf.CellFormat(dc.geo.PrintableWidth(), dc.geo.BandHeight, dc.encode(name), "", 1, "L", true, 0, "")
	c.Y += dc.geo.BandHeight + dc.geo.BandGap
	c.X = dc.geo.MarginLeft
	return c
}

const fontFamily = "Helvetica"

// encodeCP1252 converts UTF-8 text to the Windows-1252 bytes the core fonts
// are drawn with. Runes outside the code page become '?'.
func encodeCP1252(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteByte(byte(r))
			continue
		}
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}
