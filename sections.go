package jobpdf

import (
	"github.com/revuapp/jobpdf/table"
)

// sectionTable builds the two-column label/value table of one section. The
// value column wraps; its row heights come from textwrap.
func (dc *drawContext) sectionTable(sec Section) *table.Table {
	g := dc.geo
	fill := table.Gray(dc.colors.rowFill[0])
	tb := table.New(dc.pdf)
	tb.SetEncoder(dc.encode)
	tb.SetColumns(
		table.ColumnDef{Width: g.LabelWidth, Font: &table.FontSpec{Family: fontFamily, Style: "B", Size: 12}},
		table.ColumnDef{Width: g.ValueWidth, Wrap: true},
	)
	tb.SetStyle(table.TableStyle{
		Border:   &table.BorderStyle{Color: table.Gray(dc.colors.rowBorder[0])},
		CellFont: &table.FontSpec{Family: fontFamily, Size: 12},
		AlternateRows: &table.AlternateStyle{
			Even: table.CellStyle{FillColor: &fill},
			Odd:  table.CellStyle{FillColor: &fill},
		},
		LineHeight: g.LineHeight,
		WrapMargin: g.WrapMargin,
	})
	for _, row := range sec.Rows {
		r := tb.AddRow()
		r.AddCell(row.Label)
		r.AddCell(row.Value)
	}
	return tb
}

// drawSection draws a section band followed by its rows. The band moves to
// a new page together with the first row when both do not fit.
func (dc *drawContext) drawSection(c LayoutCursor, sec Section) (LayoutCursor, error) {
	c = dc.blockGap(c)
	tb := dc.sectionTable(sec)

	g := dc.geo
	need := g.BandHeight + g.BandGap
	if len(sec.Rows) > 0 {
		first := tb.RowHeight(0)
		if need+first > g.ContentBottom()-g.MarginTop {
			// The row is split across pages anyway; keep one line with the band.
			first = g.LineHeight
		}
		need += first
	}
	c = dc.ensureSpace(c, need, dc.geo.ContentBottom())
	c = dc.band(c, sec.Name)
	if len(sec.Rows) == 0 {
		return c, nil
	}

	tb.SetPosition(dc.geo.MarginLeft, c.Y)
	if err := tb.Render(); err != nil {
		return c, newRenderError("Section", err)
	}
	return dc.cursor(), nil
}
