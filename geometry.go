package jobpdf

import (
	"fmt"
	"sort"
)

// MillimetersPerInch converts inches to the document unit.
const MillimetersPerInch = 25.4

// PageGeometry holds the fixed page size, margins and layout constants of a
// template. All lengths are in millimetres.
type PageGeometry struct {
	PageWidth    float64
	PageHeight   float64
	MarginLeft   float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64 // content never crosses PageHeight-MarginBottom
	DPI          float64 // pixel density assumed for attachments

	// Sections
	LabelWidth  float64
	ValueWidth  float64
	LineHeight  float64
	WrapMargin  float64
	BandHeight  float64 // section header band
	BandGap     float64 // space between a band and its first row
	SectionGap  float64 // space before every block after the first

	// Gallery
	GalleryMaxWidth     float64
	GalleryMaxHeight    float64
	GalleryGap          float64 // horizontal space between two photos
	GalleryRowGap       float64 // vertical space after a row of photos
	GalleryRowAllowance float64 // space a row is assumed to need
	GalleryBottom       float64 // rows start on a new page past this
	CaptionHeight       float64
	CaptionGap          float64 // from the caption's top to the image's top

	// Totals
	TotalsLabelWidth float64
	TotalsValueWidth float64
	TotalsRowHeight  float64

	// Closing line
	FooterThreshold float64
	FooterGap       float64
	FooterHeight    float64

	ReferenceCodeSize float64
}

// PrintableWidth is the page width inside the left and right margins.
func (g PageGeometry) PrintableWidth() float64 {
	return g.PageWidth - g.MarginLeft - g.MarginRight
}

// ContentBottom is the lowest y-position content may reach.
func (g PageGeometry) ContentBottom() float64 {
	return g.PageHeight - g.MarginBottom
}

// Template is a named, fixed page geometry with its color scheme.
type Template struct {
	Name     string
	Geometry PageGeometry
	colors   palette
}

// palette holds the RGB colors of the report's fixed styling.
type palette struct {
	title       [3]int
	band        [3]int
	rowFill     [3]int
	rowBorder   [3]int
	totalsEven  [3]int
	totalsOdd   [3]int
	totalsBand  [3]int
	totalFill   [3]int
	footerText  [3]int
	captionText [3]int
}

var defaultPalette = palette{
	title:       [3]int{79, 139, 249},
	band:        [3]int{230, 230, 230},
	rowFill:     [3]int{245, 245, 245},
	rowBorder:   [3]int{200, 200, 200},
	totalsEven:  [3]int{255, 255, 255},
	totalsOdd:   [3]int{245, 245, 245},
	totalsBand:  [3]int{230, 230, 230},
	totalFill:   [3]int{255, 255, 0},
	footerText:  [3]int{100, 100, 100},
	captionText: [3]int{0, 0, 0},
}

// Template names accepted by WithTemplate.
const (
	TemplateA4     = "a4"
	TemplateLetter = "letter"
)

func a4Geometry() PageGeometry {
	return PageGeometry{
		PageWidth:    210,
		PageHeight:   297,
		MarginLeft:   10,
		MarginTop:    10,
		MarginRight:  10,
		MarginBottom: 20,
		DPI:          96,

		LabelWidth: 60,
		ValueWidth: 130,
		LineHeight: 6,
		WrapMargin: 2,
		BandHeight: 10,
		BandGap:    5,
		SectionGap: 10,

		GalleryMaxWidth:     180,
		GalleryMaxHeight:    120,
		GalleryGap:          10,
		GalleryRowGap:       10,
		GalleryRowAllowance: 140,
		GalleryBottom:       280,
		CaptionHeight:       5,
		CaptionGap:          7,

		TotalsLabelWidth: 120,
		TotalsValueWidth: 70,
		TotalsRowHeight:  10,

		FooterThreshold: 265,
		FooterGap:       10,
		FooterHeight:    10,

		ReferenceCodeSize: 18,
	}
}

func letterGeometry() PageGeometry {
	g := a4Geometry()
	g.PageWidth = 215.9
	g.PageHeight = 279.4
	g.ValueWidth = g.PrintableWidth() - g.LabelWidth
	g.TotalsLabelWidth = g.PrintableWidth() - g.TotalsValueWidth
	g.GalleryBottom = g.PageHeight - 17
	g.FooterThreshold = g.PageHeight - 32
	return g
}

var templates = map[string]func() Template{
	TemplateA4: func() Template {
		return Template{Name: TemplateA4, Geometry: a4Geometry(), colors: defaultPalette}
	},
	TemplateLetter: func() Template {
		return Template{Name: TemplateLetter, Geometry: letterGeometry(), colors: defaultPalette}
	},
}

// LookupTemplate returns the template registered under name.
func LookupTemplate(name string) (Template, error) {
	mk, ok := templates[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return mk(), nil
}

// TemplateNames lists the available templates in sorted order.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
