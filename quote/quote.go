// Package quote holds the straight-line arithmetic of a service quote:
// service and labor amounts, add-ons, a percentage discount and sales tax.
package quote

import (
	"strconv"
	"strings"
)

// AddOn is one optional service line, written by the user as
// "Name - Amount".
type AddOn struct {
	Name   string
	Amount float64
	// Parsed is false when the line had no readable amount. Such lines are
	// kept, with a zero amount, so the user sees them in the quote.
	Parsed bool
}

// ParseAddOns reads one add-on per non-blank line. The amount is the text
// after the last '-' and may carry a leading '$' and thousands separators.
// Lines whose amount cannot be read are kept whole with a zero amount.
func ParseAddOns(text string) []AddOn {
	var out []AddOn
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		i := strings.LastIndex(line, "-")
		if i < 0 {
			out = append(out, AddOn{Name: line})
			continue
		}
		amount, ok := parseAmount(line[i+1:])
		if !ok {
			out = append(out, AddOn{Name: line})
			continue
		}
		out = append(out, AddOn{Name: strings.TrimSpace(line[:i]), Amount: amount, Parsed: true})
	}
	return out
}

func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Input holds the figures entered on a quote form. Rates are percentages.
type Input struct {
	Quantity     float64
	UnitPrice    float64
	Material     float64
	LaborHours   float64
	HourlyRate   float64
	Travel       float64
	AddOns       []AddOn
	DiscountRate float64
	TaxRate      float64
}

// Breakdown is the computed quote.
type Breakdown struct {
	Service  float64
	Labor    float64
	AddOns   float64
	Subtotal float64
	Discount float64
	Taxable  float64
	Tax      float64
	Total    float64
}

// Compute derives every amount of the quote from in.
//
//	subtotal = service + material + labor + travel + add-ons
//	discount = subtotal x discount% ; taxable = subtotal - discount
//	tax      = taxable x tax%       ; total   = taxable + tax
func Compute(in Input) Breakdown {
	var b Breakdown
	b.Service = in.Quantity * in.UnitPrice
	b.Labor = in.LaborHours * in.HourlyRate
	for _, a := range in.AddOns {
		b.AddOns += a.Amount
	}
	b.Subtotal = b.Service + in.Material + b.Labor + in.Travel + b.AddOns
	b.Discount = b.Subtotal * in.DiscountRate / 100
	b.Taxable = b.Subtotal - b.Discount
	b.Tax = b.Taxable * in.TaxRate / 100
	b.Total = b.Taxable + b.Tax
	return b
}
