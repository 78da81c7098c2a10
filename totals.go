package jobpdf

import (
	"github.com/revuapp/jobpdf/table"
)

func rgb(c [3]int) *table.RGBColor {
	return &table.RGBColor{R: c[0], G: c[1], B: c[2]}
}

// totalsTable builds the breakdown table: an optional caption row, one row
// per line with alternating fill starting white, and the highlighted total.
func (dc *drawContext) totalsTable(b *PriceBreakdown) *table.Table {
	g := dc.geo
	regular := &table.FontSpec{Family: fontFamily, Size: 12}
	bold := &table.FontSpec{Family: fontFamily, Style: "B", Size: 12}

	tb := table.New(dc.pdf)
	tb.SetEncoder(dc.encode)
	tb.SetColumns(
		table.ColumnDef{Width: g.TotalsLabelWidth, Wrap: true},
		table.ColumnDef{Width: g.TotalsValueWidth, Wrap: true},
	)
	tb.SetStyle(table.TableStyle{
		Border:   &table.BorderStyle{Color: table.Gray(0)},
		CellFont: regular,
		HeaderStyle: &table.CellStyle{
			FillColor: rgb(dc.colors.totalsBand),
			Font:      bold,
			Align:     "C",
		},
		AlternateRows: &table.AlternateStyle{
			Even: table.CellStyle{FillColor: rgb(dc.colors.totalsEven)},
			Odd:  table.CellStyle{FillColor: rgb(dc.colors.totalsOdd)},
		},
		LineHeight:   g.LineHeight,
		MinRowHeight: g.TotalsRowHeight,
	})

	if b.Columns[0] != "" && b.Columns[1] != "" {
		h := tb.AddHeaderRow()
		h.AddCell(b.Columns[0])
		h.AddCell(b.Columns[1])
	}
	for _, line := range b.Lines {
		r := tb.AddRow()
		r.AddCell(line.Label)
		r.AddCell(line.Value())
	}
	total := tb.AddRow()
	total.AddCell(b.Total.Label)
	total.AddCell(b.Total.Value())
	total.SetStyle(table.CellStyle{FillColor: rgb(dc.colors.totalFill), Font: bold})
	return tb
}

// drawTotals draws the price breakdown. The caption row, when present, is
// repeated at the top of every page the block continues on.
func (dc *drawContext) drawTotals(c LayoutCursor, b *PriceBreakdown) (LayoutCursor, error) {
	c = dc.blockGap(c)
	tb := dc.totalsTable(b)

	// keep the caption with the first line
	need := tb.RowHeight(0)
	if b.Columns[0] != "" && b.Columns[1] != "" {
		need += tb.RowHeight(1)
	}
	c = dc.ensureSpace(c, need, dc.geo.ContentBottom())

	tb.SetPosition(dc.geo.MarginLeft, c.Y)
	if err := tb.Render(); err != nil {
		return c, newRenderError("Totals", err)
	}
	return dc.cursor(), nil
}
