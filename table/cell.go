package table

import (
	"fmt"
)

// Cell is a single text cell in a table row.
type Cell struct {
	text string
}

// Text returns the cell's content.
func (c *Cell) Text() string {
	return c.text
}

// Row represents a single row in a table.
type Row struct {
	cells    []*Cell
	style    *CellStyle
	isHeader bool
	minH     float64
}

// AddCell adds a text cell to the row and returns the cell for chaining.
func (r *Row) AddCell(text string) *Cell {
	c := &Cell{text: text}
	r.cells = append(r.cells, c)
	return c
}

// AddCellf adds a formatted text cell to the row.
func (r *Row) AddCellf(format string, args ...any) *Cell {
	return r.AddCell(fmt.Sprintf(format, args...))
}

// Cells returns the row's cells in column order.
func (r *Row) Cells() []*Cell {
	return r.cells
}

// SetStyle sets the style for all cells in this row. A row style wins over
// alternating fills.
func (r *Row) SetStyle(s CellStyle) *Row {
	r.style = &s
	return r
}

// SetMinHeight sets the minimum height for this row.
func (r *Row) SetMinHeight(h float64) *Row {
	r.minH = h
	return r
}
