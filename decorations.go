package jobpdf

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

// PageInfo describes the page a decoration is drawn on.
type PageInfo struct {
	Number   int
	Geometry PageGeometry
	// Encode converts UTF-8 text to the encoding of the document's fonts.
	// Text passed to the engine must go through it.
	Encode func(string) string
}

// DecorationFunc draws running content on a page.
type DecorationFunc func(pdf *fpdf.Fpdf, page PageInfo)

// PageDecorations holds the callbacks run when a page starts (Header) and
// when it ends (Footer). Either may be nil.
//
// A Header leaves the cursor where page content begins. Without a Header the
// renderer draws the record's title block on the first page instead.
type PageDecorations struct {
	Header DecorationFunc
	Footer DecorationFunc
}

// StandardDecorations returns the intake report decorations: a centered
// title and subtitle on every page, and a footer with the page number and a
// "Generated with <brand>" line. An empty subtitle or brand is left out.
func StandardDecorations(title, subtitle, brand string) PageDecorations {
	return PageDecorations{
		Header: func(pdf *fpdf.Fpdf, page PageInfo) {
			drawTitleBlock(pdf, page, title, subtitle, 0)
		},
		Footer: func(pdf *fpdf.Fpdf, page PageInfo) {
			g := page.Geometry
			pdf.SetY(-15)
			pdf.SetFont(fontFamily, "I", 9)
			pdf.SetTextColor(defaultPalette.footerText[0], defaultPalette.footerText[1], defaultPalette.footerText[2])
			pdf.CellFormat(g.PrintableWidth(), 10, fmt.Sprintf("Page %d", page.Number), "", 0, "C", false, 0, "")
			if brand != "" {
				pdf.SetX(g.MarginLeft)
				pdf.CellFormat(g.PrintableWidth(), 10, page.Encode("Generated with "+brand), "", 0, "R", false, 0, "")
			}
			pdf.SetTextColor(0, 0, 0)
		},
	}
}

// drawTitleBlock draws the title (bold 16, accent color) and subtitle
// (regular 12) centered between the margins, indented by inset on both
// sides, followed by a 5mm gap.
func drawTitleBlock(pdf *fpdf.Fpdf, page PageInfo, title, subtitle string, inset float64) {
	g := page.Geometry
	w := g.PrintableWidth() - 2*inset
	x := g.MarginLeft + inset
	c := defaultPalette.title

	pdf.SetXY(x, pdf.GetY())
	pdf.SetFont(fontFamily, "B", 16)
	pdf.SetTextColor(c[0], c[1], c[2])
	pdf.CellFormat(w, 10, page.Encode(title), "", 2, "C", false, 0, "")

	pdf.SetFont(fontFamily, "", 12)
	pdf.SetTextColor(0, 0, 0)
	if subtitle != "" {
		pdf.CellFormat(w, 10, page.Encode(subtitle), "", 2, "C", false, 0, "")
	}
	pdf.SetXY(g.MarginLeft, pdf.GetY()+5)
}
