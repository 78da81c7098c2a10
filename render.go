package jobpdf

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// Document is a rendered report.
type Document struct {
	Bytes []byte
	Pages int
	// Skipped lists the attachments left out of the gallery.
	Skipped []ImageError
}

// fallbackDate stands in for a zero ReportRecord.Date; the engine would
// otherwise stamp the current time.
var fallbackDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Render lays out rec and returns the finished document. Rendering the same
// record twice with the same Renderer yields identical bytes.
func (r *Renderer) Render(rec ReportRecord) (*Document, error) {
	g := r.tpl.Geometry
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight},
	})
	pdf.SetMargins(g.MarginLeft, g.MarginTop, g.MarginRight)
	pdf.SetAutoPageBreak(false, g.MarginBottom)
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	date := rec.Date
	if date.IsZero() {
		date = fallbackDate
	}
	pdf.SetCreationDate(date)
	pdf.SetModificationDate(date)
	pdf.SetCreator("jobpdf", false)
	if rec.Title != "" {
		pdf.SetTitle(rec.Title, true)
	}

	dc := &drawContext{
		pdf:    pdf,
		geo:    g,
		colors: r.tpl.colors,
		encode: encodeCP1252,
		strict: r.strictImages,
		logger: r.logger,
	}
	page := func() PageInfo {
		return PageInfo{Number: pdf.PageNo(), Geometry: g, Encode: encodeCP1252}
	}
	if h := r.decorations.Header; h != nil {
		pdf.SetHeaderFunc(func() {
			h(pdf, page())
			pdf.SetTextColor(0, 0, 0)
		})
	}
	if f := r.decorations.Footer; f != nil {
		pdf.SetFooterFunc(func() {
			f(pdf, page())
		})
	}

	dc.newPage()
	if err := r.drawOpening(dc, rec); err != nil {
		return nil, err
	}
	c := dc.cursor()

	var err error
	for _, sec := range rec.Sections {
		if c, err = dc.drawSection(c, sec); err != nil {
			return nil, err
		}
	}
	if len(rec.Images) > 0 {
		if c, err = dc.drawGallery(c, rec.Images); err != nil {
			return nil, err
		}
	}
	if rec.Breakdown != nil {
		if c, err = dc.drawTotals(c, rec.Breakdown); err != nil {
			return nil, err
		}
	}
	if rec.Footnote != "" {
		r.drawFootnote(dc, c, rec.Footnote)
	}

	if pdf.Err() {
		return nil, newRenderError("Layout", pdf.Error())
	}
	pages := pdf.PageNo()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, newRenderError("Output", fmt.Errorf("%w: %v", ErrRenderIO, err))
	}
	return &Document{Bytes: buf.Bytes(), Pages: pages, Skipped: dc.skipped}, nil
}

// drawOpening draws what precedes the first content block on page one: the
// title block when no header decoration draws it, and the reference code.
func (r *Renderer) drawOpening(dc *drawContext, rec ReportRecord) error {
	inset := 0.0
	if rec.ReferenceCode != "" {
		if err := dc.drawReferenceCode(rec.ReferenceCode); err != nil {
			return newRenderError("ReferenceCode", err)
		}
		inset = dc.geo.ReferenceCodeSize
	}
	if r.decorations.Header == nil && rec.Title != "" {
		info := PageInfo{Number: 1, Geometry: dc.geo, Encode: dc.encode}
		drawTitleBlock(dc.pdf, info, rec.Title, rec.Subtitle, inset)
		if bottom := dc.geo.MarginTop + dc.geo.ReferenceCodeSize + dc.geo.BandGap; inset > 0 && dc.pdf.GetY() < bottom {
			dc.pdf.SetY(bottom)
		}
	}
	return nil
}

// drawFootnote draws the closing line below the content. Content that
// already reaches past the footer threshold is handled by the footer
// policy; a line that would still cross the bottom margin moves to a new
// page.
func (r *Renderer) drawFootnote(dc *drawContext, c LayoutCursor, text string) {
	g := dc.geo
	switch {
	case c.Y <= r.footerThreshold:
		c.Y += g.FooterGap
	case r.footerPolicy == FooterNewPage:
		c = dc.newPage()
	default:
		c.Y = r.footerThreshold
	}
	if c.Y+g.FooterHeight > g.ContentBottom() {
		c = dc.newPage()
	}

	c.X = g.MarginLeft
	dc.at(c)
	dc.pdf.SetFont(fontFamily, "I", 9)
	dc.pdf.SetTextColor(0, 0, 0)
	dc.pdf.CellFormat(g.PrintableWidth(), g.FooterHeight, dc.encode(text), "", 0, "R", false, 0, "")
}

// Render lays out rec with a Renderer built from opts and writes the PDF to
// w.
func Render(w io.Writer, rec ReportRecord, opts ...Option) error {
	r, err := NewRenderer(opts...)
	if err != nil {
		return err
	}
	doc, err := r.Render(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(doc.Bytes); err != nil {
		return newRenderError("Write", fmt.Errorf("%w: %v", ErrRenderIO, err))
	}
	return nil
}
