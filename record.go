package jobpdf

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ReportRecord is everything a report shows. The form layer validates it;
// the renderer draws whatever it is given.
type ReportRecord struct {
	Title    string
	Subtitle string

	// Date is the only time value embedded in the document.
	Date time.Time

	Sections  []Section
	Breakdown *PriceBreakdown
	Images    []ImageAttachment

	// Footnote is the closing line drawn after all content, e.g.
	// "Generated with Revu".
	Footnote string

	// ReferenceCode, when set, is drawn as a QR code at the top of the
	// first page.
	ReferenceCode string
}

// Section is a named group of label/value rows under a filled band.
type Section struct {
	Name string
	Rows []Row
}

// Row is one label/value pair.
type Row struct {
	Label string
	Value string
}

// PriceBreakdown lists the priced lines of a quote and its highlighted total.
type PriceBreakdown struct {
	// Columns, when both are set, is drawn as a caption row above the lines.
	Columns [2]string
	Lines   []PriceLine
	Total   PriceLine
}

// PriceLine is one row of the totals block. Detail, when set, replaces the
// formatted amount in the value column.
type PriceLine struct {
	Label  string
	Detail string
	Amount float64
}

// Value returns the text drawn in the line's value column.
func (l PriceLine) Value() string {
	if l.Detail != "" {
		return l.Detail
	}
	return FormatMoney(l.Amount)
}

// ImageAttachment is an uploaded photo. Only PNG and JPEG data is accepted.
type ImageAttachment struct {
	Name string
	Data []byte
}

// FormatMoney formats an amount in dollars with thousands separators and
// two decimals, with the sign ahead of the currency symbol: "$1,234.50",
// "-$100.00".
func FormatMoney(amount float64) string {
	cents := math.Round(amount * 100)
	p := message.NewPrinter(language.English)
	if cents < 0 {
		return p.Sprintf("-$%.2f", -cents/100)
	}
	return p.Sprintf("$%.2f", cents/100)
}
