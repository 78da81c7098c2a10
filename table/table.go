package table

import (
	"github.com/go-pdf/fpdf"

	"github.com/revuapp/jobpdf/textwrap"
)

// ColumnDef describes one column. A zero Width shares the space the fixed
// columns leave on the page.
type ColumnDef struct {
	Width float64
	Align string    // "L" (default), "C" or "R"
	Wrap  bool      // draw the text as wrapped lines; the row grows to fit
	Font  *FontSpec // nil keeps the table font
}

// Encoder converts UTF-8 text into the byte encoding of the document's
// fonts before it is measured or drawn.
type Encoder func(string) string

// Table collects rows and draws them in one pass with Render.
type Table struct {
	pdf        *fpdf.Fpdf
	columns    []ColumnDef
	rows       []*Row
	headerRows int
	style      TableStyle
	encode     Encoder
	x, y       float64 // zero keeps the document cursor
}

// New returns an empty table that draws on pdf.
func New(pdf *fpdf.Fpdf) *Table {
	return &Table{
		pdf:    pdf,
		encode: func(s string) string { return s },
	}
}

// SetColumns replaces the column definitions.
func (t *Table) SetColumns(cols ...ColumnDef) *Table {
	t.columns = cols
	return t
}

// SetColumnWidths defines plain columns of the given widths.
func (t *Table) SetColumnWidths(widths ...float64) *Table {
	cols := make([]ColumnDef, 0, len(widths))
	for _, w := range widths {
		cols = append(cols, ColumnDef{Width: w})
	}
	return t.SetColumns(cols...)
}

// SetStyle replaces the table style.
func (t *Table) SetStyle(s TableStyle) *Table {
	t.style = s
	return t
}

// SetEncoder sets the text encoder applied before measuring and drawing.
func (t *Table) SetEncoder(enc Encoder) *Table {
	if enc != nil {
		t.encode = enc
	}
	return t
}

// SetPosition moves the table's top left corner. Without it the table
// starts at the document cursor.
func (t *Table) SetPosition(x, y float64) *Table {
	t.x, t.y = x, y
	return t
}

// AddRow appends a body row.
func (t *Table) AddRow() *Row {
	r := &Row{}
	t.rows = append(t.rows, r)
	return r
}

// AddHeaderRow inserts a header row after the existing header rows. Header
// rows are drawn first and again at the top of every page the table
// continues on.
func (t *Table) AddHeaderRow() *Row {
	r := &Row{isHeader: true}
	t.rows = append(t.rows, nil)
	copy(t.rows[t.headerRows+1:], t.rows[t.headerRows:])
	t.rows[t.headerRows] = r
	t.headerRows++
	return r
}

// Rows returns the table's rows, header rows first.
func (t *Table) Rows() []*Row {
	return t.rows
}

// RowHeight returns the height row i (header rows first) is drawn with, or 0
// when there is no such row.
func (t *Table) RowHeight(i int) float64 {
	if i < 0 || i >= len(t.rows) {
		return 0
	}
	return t.rowHeight(t.rows[i], t.widths(), i-t.headerRows)
}

// Render draws the table and leaves the document cursor at the table's left
// edge below the last row.
func (t *Table) Render() error {
	if t.pdf.Err() {
		return t.pdf.Error()
	}

	widths := t.widths()
	left := t.x
	if left == 0 {
		left = t.pdf.GetX()
	}
	if t.y != 0 {
		t.pdf.SetY(t.y)
	}

	header := t.rows[:t.headerRows]
	drawHeader := func() {
		for _, r := range header {
			t.drawRow(r, widths, left, -1, 0, nil)
		}
	}
	drawHeader()
	newPage := func() {
		t.pdf.AddPage()
		t.pdf.SetX(left)
		drawHeader()
	}

	_, pageH := t.pdf.GetPageSize()
	_, top, _, bottom := t.pdf.GetMargins()
	limit := pageH - bottom
	for i, r := range t.rows[t.headerRows:] {
		h := t.rowHeight(r, widths, i)
		if t.pdf.GetY()+h > limit && h <= limit-top {
			newPage()
		}
		t.drawRow(r, widths, left, i, limit, newPage)
	}
	return t.pdf.Error()
}

// widths resolves the column widths. Without column definitions every cell
// position gets an equal share of the printable width.
func (t *Table) widths() []float64 {
	if len(t.columns) == 0 {
		n := 0
		for _, r := range t.rows {
			n = max(n, len(r.cells))
		}
		if n == 0 {
			return nil
		}
		t.columns = make([]ColumnDef, n)
	}

	pageW, _ := t.pdf.GetPageSize()
	left, _, right, _ := t.pdf.GetMargins()
	free := pageW - left - right
	shared := 0
	out := make([]float64, len(t.columns))
	for i, col := range t.columns {
		if col.Width > 0 {
			out[i] = col.Width
			free -= col.Width
		} else {
			shared++
		}
	}
	if shared > 0 {
		each := max(free, 0) / float64(shared)
		for i := range out {
			if out[i] == 0 {
				out[i] = each
			}
		}
	}
	return out
}

// rowHeight is the tallest wrapped cell's line count times the line height,
// never below the table and row minimums. body is the row's index among
// the body rows, negative for header rows.
func (t *Table) rowHeight(r *Row, widths []float64, body int) float64 {
	h := max(t.style.minRowHeight(), r.minH)
	for i, cell := range r.cells {
		if !t.wraps(i, widths) {
			continue
		}
		t.setFont(t.styleFor(r, i, body).Font)
		n := textwrap.LineCount(cell.text, widths[i], t.style.wrapMargin(), t.measurer())
		h = max(h, float64(n)*t.style.lineHeight())
	}
	return h
}

func (t *Table) wraps(col int, widths []float64) bool {
	return col < len(widths) && col < len(t.columns) && t.columns[col].Wrap
}

// drawRow draws r at the cursor. When newPage is set and the row does not
// fit above limit, the wrapped cells are split between lines: the lines that
// fit are drawn as one part, newPage is called and the rest continues on the
// next page. Every part is a full row whose cells share the part's height;
// single-line cells are drawn in the first part only.
func (t *Table) drawRow(r *Row, widths []float64, left float64, body int, limit float64, newPage func()) {
	lineH := t.style.lineHeight()
	minH := max(t.style.minRowHeight(), r.minH)

	lines := make([][]string, len(r.cells))
	for i, cell := range r.cells {
		if t.wraps(i, widths) {
			t.setFont(t.styleFor(r, i, body).Font)
			lines[i] = textwrap.Lines(cell.text, widths[i], t.style.wrapMargin(), t.measurer())
		}
	}

	first, fresh := true, false
	for {
		n := 0
		for _, l := range lines {
			n = max(n, len(l))
		}
		h := max(minH, float64(n)*lineH)
		y := t.pdf.GetY()
		if newPage == nil || y+h <= limit {
			t.drawPart(r, widths, left, body, lines, h, first)
			return
		}

		room := int((limit - y + 1e-9) / lineH)
		if room < 1 || (first && float64(room)*lineH < minH) {
			if fresh {
				// Not even one line fits on an empty page.
				t.drawPart(r, widths, left, body, lines, h, first)
				return
			}
			newPage()
			fresh = true
			continue
		}

		part := make([][]string, len(lines))
		for i, l := range lines {
			k := min(room, len(l))
			part[i], lines[i] = l[:k], l[k:]
		}
		t.drawPart(r, widths, left, body, part, float64(room)*lineH, first)
		first = false
		newPage()
		fresh = true
	}
}

// drawPart draws one part of r with height h. lines holds the wrapped lines
// of each wrapping cell; other cells show their text when first is set.
func (t *Table) drawPart(r *Row, widths []float64, left float64, body int, lines [][]string, h float64, first bool) {
	lineH := t.style.lineHeight()
	top := t.pdf.GetY()

	if b := t.style.Border; b != nil {
		t.pdf.SetDrawColor(b.Color.R, b.Color.G, b.Color.B)
		if b.Width > 0 {
			t.pdf.SetLineWidth(b.Width)
		}
	}

	x := left
	for i, cell := range r.cells {
		if i >= len(widths) {
			break
		}
		w := widths[i]
		st := t.styleFor(r, i, body)

		mode := "D"
		if c := st.FillColor; c != nil {
			t.pdf.SetFillColor(c.R, c.G, c.B)
			mode = "FD"
		}
		t.pdf.Rect(x, top, w, h, mode)

		text := RGBColor{}
		if st.TextColor != nil {
			text = *st.TextColor
		}
		t.pdf.SetTextColor(text.R, text.G, text.B)
		t.setFont(st.Font)
		align := st.Align
		if align == "" {
			align = "L"
		}

		switch {
		case t.wraps(i, widths):
			y := top + (h-float64(len(lines[i]))*lineH)/2
			for _, line := range lines[i] {
				t.pdf.SetXY(x, y)
				t.pdf.CellFormat(w, lineH, t.encode(line), "", 0, align, false, 0, "")
				y += lineH
			}
		case first:
			t.pdf.SetXY(x, top)
			t.pdf.CellFormat(w, h, t.encode(cell.text), "", 0, align, false, 0, "")
		}
		x += w
	}

	t.pdf.SetTextColor(0, 0, 0)
	t.pdf.SetXY(left, top+h)
}

// styleFor layers the styles that apply to cell col of r, weakest first:
// table font, column, header or alternating fill, row.
func (t *Table) styleFor(r *Row, col, body int) CellStyle {
	st := CellStyle{Font: t.style.CellFont}
	if col < len(t.columns) {
		st.overlay(&CellStyle{Font: t.columns[col].Font, Align: t.columns[col].Align})
	}
	switch alt := t.style.AlternateRows; {
	case r.isHeader:
		st.overlay(t.style.HeaderStyle)
	case alt != nil && body%2 == 0:
		st.overlay(&alt.Even)
	case alt != nil:
		st.overlay(&alt.Odd)
	}
	st.overlay(r.style)
	return st
}

func (t *Table) setFont(f *FontSpec) {
	if f != nil {
		t.pdf.SetFont(f.Family, f.Style, f.Size)
	}
}

func (t *Table) measurer() textwrap.Measurer {
	return encodedMeasurer{pdf: t.pdf, encode: t.encode}
}

// encodedMeasurer measures UTF-8 text in the document's font encoding.
type encodedMeasurer struct {
	pdf    *fpdf.Fpdf
	encode Encoder
}

func (m encodedMeasurer) GetStringWidth(s string) float64 {
	return m.pdf.GetStringWidth(m.encode(s))
}
