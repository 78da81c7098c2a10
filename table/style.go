// Package table draws bordered label/value tables on an fpdf document.
//
// Row heights come from the textwrap package: a row is as tall as its
// longest wrapped cell, and wrapped cells are drawn from exactly the lines
// textwrap computed, so every cell of a row shares one height. Rows that
// would cross the bottom margin start a new page, and header rows are
// repeated there.
package table

// RGBColor represents an RGB color value.
type RGBColor struct {
	R, G, B int
}

// Gray returns the RGB color with all three components set to v.
func Gray(v int) RGBColor {
	return RGBColor{v, v, v}
}

// FontSpec defines font properties for text rendering.
type FontSpec struct {
	Family string
	Style  string  // "", "B", "I", "BI"
	Size   float64 // in points
}

// BorderStyle defines the appearance of cell borders.
type BorderStyle struct {
	Width float64
	Color RGBColor
}

// CellStyle defines the visual appearance of a cell.
type CellStyle struct {
	FillColor *RGBColor
	TextColor *RGBColor
	Font      *FontSpec
	Align     string // "L", "C", "R"
}

// AlternateStyle defines alternating row colors. Even applies to the first
// body row.
type AlternateStyle struct {
	Even CellStyle
	Odd  CellStyle
}

// TableStyle defines the overall appearance of a table.
type TableStyle struct {
	Border        *BorderStyle
	AlternateRows *AlternateStyle
	HeaderStyle   *CellStyle
	CellFont      *FontSpec

	LineHeight   float64 // height of one wrapped line (default 6)
	MinRowHeight float64 // floor for every row (default LineHeight)
	WrapMargin   float64 // horizontal allowance subtracted from wrapped cell widths (default 2)
}

func (s TableStyle) lineHeight() float64 {
	if s.LineHeight > 0 {
		return s.LineHeight
	}
	return 6
}

func (s TableStyle) minRowHeight() float64 {
	if s.MinRowHeight > 0 {
		return s.MinRowHeight
	}
	return s.lineHeight()
}

func (s TableStyle) wrapMargin() float64 {
	if s.WrapMargin > 0 {
		return s.WrapMargin
	}
	return 2
}

// overlay copies the fields src sets onto s. A nil src changes nothing.
func (s *CellStyle) overlay(src *CellStyle) {
	if src == nil {
		return
	}
	if src.FillColor != nil {
		s.FillColor = src.FillColor
	}
	if src.TextColor != nil {
		s.TextColor = src.TextColor
	}
	if src.Font != nil {
		s.Font = src.Font
	}
	if src.Align != "" {
		s.Align = src.Align
	}
}
