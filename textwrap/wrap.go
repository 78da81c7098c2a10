// Package textwrap computes how text breaks into lines inside a fixed-width
// cell, character by character, using the advance widths reported by a
// Measurer.
//
// The line breaks are the ones a report row is drawn with, so a row's height
// (line count times line height) always matches the text it contains.
package textwrap

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Measurer reports the advance width of a string in document units.
// *fpdf.Fpdf satisfies it for its current font.
type Measurer interface {
	GetStringWidth(s string) float64
}

// Lines splits text into the lines it occupies in a cell of the given width.
// Carriage returns are dropped and a newline always ends a line. A line
// breaks when adding the next character would make it wider than
// width-margin; that character starts the next line. Empty text is one line.
func Lines(text string, width, margin float64, m Measurer) []string {
	limit := width - margin
	text = strings.ReplaceAll(text, "\r", "")

	var (
		lines []string
		cur   strings.Builder
		acc   float64
	)
	for _, r := range text {
		if r == '\n' {
			lines = append(lines, cur.String())
			cur.Reset()
			acc = 0
			continue
		}
		w := m.GetStringWidth(string(r))
		if acc+w > limit {
			lines = append(lines, cur.String())
			cur.Reset()
			acc = w
		} else {
			acc += w
		}
		cur.WriteRune(r)
	}
	return append(lines, cur.String())
}

// LineCount returns len(Lines(text, width, margin, m)).
func LineCount(text string, width, margin float64, m Measurer) int {
	return len(Lines(text, width, margin, m))
}

// RowHeight returns the height of a cell holding text at lineHeight per line.
func RowHeight(text string, width, margin, lineHeight float64, m Measurer) float64 {
	return float64(LineCount(text, width, margin, m)) * lineHeight
}

// FaceMeasurer measures text with a font face, treating one face unit as a
// point, and reports widths in millimetres.
type FaceMeasurer struct {
	Face font.Face

	// Scale multiplies every width. Zero means 1.
	Scale float64
}

// ScaledFace returns a FaceMeasurer for face, whose glyphs were drawn at
// nativeSize, as if it were set at size points.
func ScaledFace(face font.Face, nativeSize, size float64) FaceMeasurer {
	return FaceMeasurer{Face: face, Scale: size / nativeSize}
}

const mmPerPoint = 25.4 / 72

// GetStringWidth implements Measurer.
func (fm FaceMeasurer) GetStringWidth(s string) float64 {
	adv := font.MeasureString(fm.Face, s)
	w := fixedToFloat(adv) * mmPerPoint
	if fm.Scale != 0 {
		w *= fm.Scale
	}
	return w
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
