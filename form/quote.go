package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/revuapp/jobpdf"
	"github.com/revuapp/jobpdf/quote"
)

// Unit types accepted by QuoteForm.UnitType.
var UnitTypes = []string{"Square Ft", "Linear Ft", "Cubic Yard", "Hour", "Flat Rate", "Item Count", "Other"}

// DefaultTaxRate is the sales tax percentage a new quote starts with.
const DefaultTaxRate = 6.25

var quoteFields = struct {
	Company, ClientName, ClientEmail, Number, Job, UnitType, AddOns Field
	Quantity, UnitPrice, Material, LaborHours, HourlyRate, Travel   Field
	Discount, Tax                                                    Field
}{
	Company:     Field{Name: "company", Label: "Company", Type: TypeText, MaxLen: 200},
	ClientName:  Field{Name: "client_name", Label: "Name", Type: TypeText, Required: true, MaxLen: 200},
	ClientEmail: Field{Name: "client_email", Label: "Email", Type: TypeText, MaxLen: 254},
	Number:      Field{Name: "quote_number", Label: "Quote #", Type: TypeText, MaxLen: 64},
	Job:         Field{Name: "job_description", Label: "Job", Type: TypeTextArea, MaxLen: 5000},
	UnitType:    Field{Name: "unit_type", Label: "Unit Type", Type: TypeChoice, Options: UnitTypes},
	AddOns:      Field{Name: "add_ons", Label: "Add-ons", Type: TypeTextArea, MaxLen: 5000},
	Quantity:    Field{Name: "quantity", Type: TypeNumber},
	UnitPrice:   Field{Name: "unit_price", Type: TypeNumber},
	Material:    Field{Name: "material_cost", Type: TypeNumber},
	LaborHours:  Field{Name: "labor_hours", Type: TypeNumber},
	HourlyRate:  Field{Name: "hourly_rate", Type: TypeNumber},
	Travel:      Field{Name: "travel_cost", Type: TypeNumber},
	Discount:    Field{Name: "discount_rate", Type: TypeNumber, Max: 100},
	Tax:         Field{Name: "tax_rate", Type: TypeNumber, Max: 100},
}

// QuoteForm is a service quote request. Rates are percentages.
type QuoteForm struct {
	Company        string `json:"company" yaml:"company"`
	ClientName     string `json:"client_name" yaml:"client_name"`
	ClientEmail    string `json:"client_email" yaml:"client_email"`
	QuoteNumber    string `json:"quote_number" yaml:"quote_number"`
	QuoteDate      Date   `json:"quote_date" yaml:"quote_date"`
	ValidUntil     Date   `json:"valid_until" yaml:"valid_until"`
	JobDescription string `json:"job_description" yaml:"job_description"`

	UnitType     string  `json:"unit_type" yaml:"unit_type"`
	Quantity     float64 `json:"quantity" yaml:"quantity"`
	UnitPrice    float64 `json:"unit_price" yaml:"unit_price"`
	Material     float64 `json:"material_cost" yaml:"material_cost"`
	LaborHours   float64 `json:"labor_hours" yaml:"labor_hours"`
	HourlyRate   float64 `json:"hourly_rate" yaml:"hourly_rate"`
	Travel       float64 `json:"travel_cost" yaml:"travel_cost"`
	AddOns       string  `json:"add_ons" yaml:"add_ons"`
	DiscountRate float64 `json:"discount_rate" yaml:"discount_rate"`
	TaxRate      float64 `json:"tax_rate" yaml:"tax_rate"`
}

// NewQuoteForm returns a form with the default unit type and tax rate, a
// quote date of on and a validity of 30 days.
func NewQuoteForm(on Date) QuoteForm {
	return QuoteForm{
		QuoteDate:  on,
		ValidUntil: Date{on.AddDate(0, 0, 30)},
		UnitType:   UnitTypes[0],
		Quantity:   1,
		TaxRate:    DefaultTaxRate,
	}
}

// Sanitize strips markup from every text field and defaults an empty unit
// type to the first one.
func (f *QuoteForm) Sanitize() {
	for _, p := range []*string{&f.Company, &f.ClientName, &f.ClientEmail, &f.QuoteNumber, &f.JobDescription, &f.UnitType, &f.AddOns} {
		*p = cleanText(*p)
	}
	if f.UnitType == "" {
		f.UnitType = UnitTypes[0]
	}
}

// Validate reports every missing or invalid field.
func (f *QuoteForm) Validate() error {
	var c checker
	fs := quoteFields
	c.text(fs.Company, f.Company)
	c.text(fs.ClientName, f.ClientName)
	c.text(fs.ClientEmail, f.ClientEmail)
	if e := strings.TrimSpace(f.ClientEmail); e != "" && !strings.Contains(e, "@") {
		c.add(fs.ClientEmail.Name, "not an email address")
	}
	c.text(fs.Number, f.QuoteNumber)
	c.text(fs.Job, f.JobDescription)
	c.text(fs.UnitType, f.UnitType)
	c.text(fs.AddOns, f.AddOns)
	c.number(fs.Quantity, f.Quantity)
	c.number(fs.UnitPrice, f.UnitPrice)
	c.number(fs.Material, f.Material)
	c.number(fs.LaborHours, f.LaborHours)
	c.number(fs.HourlyRate, f.HourlyRate)
	c.number(fs.Travel, f.Travel)
	c.number(fs.Discount, f.DiscountRate)
	c.number(fs.Tax, f.TaxRate)
	if !f.QuoteDate.IsZero() && !f.ValidUntil.IsZero() && f.ValidUntil.Before(f.QuoteDate.Time) {
		c.add("valid_until", "before the quote date")
	}
	return c.err("quote")
}

// Input converts the form to the quote arithmetic input.
func (f *QuoteForm) Input() quote.Input {
	return quote.Input{
		Quantity:     f.Quantity,
		UnitPrice:    f.UnitPrice,
		Material:     f.Material,
		LaborHours:   f.LaborHours,
		HourlyRate:   f.HourlyRate,
		Travel:       f.Travel,
		AddOns:       quote.ParseAddOns(f.AddOns),
		DiscountRate: f.DiscountRate,
		TaxRate:      f.TaxRate,
	}
}

// Compute returns the quote's amounts.
func (f *QuoteForm) Compute() quote.Breakdown {
	return quote.Compute(f.Input())
}

func (f *QuoteForm) company() string {
	if f.Company == "" {
		return "Service Provider"
	}
	return f.Company
}

// Record builds the quote report: quote details, customer info and the
// price breakdown ending in the highlighted total.
func (f *QuoteForm) Record(b Branding) jobpdf.ReportRecord {
	in := f.Input()
	sum := quote.Compute(in)
	money := jobpdf.FormatMoney

	lines := []jobpdf.PriceLine{{
		Label:  fmt.Sprintf("%s Work (%s @ %s)", f.UnitType, formatQty(f.Quantity), money(f.UnitPrice)),
		Amount: sum.Service,
	}}
	for _, a := range in.AddOns {
		lines = append(lines, jobpdf.PriceLine{Label: "Add-on: " + a.Name, Amount: a.Amount})
	}
	lines = append(lines,
		jobpdf.PriceLine{Label: "Material Cost", Amount: f.Material},
		jobpdf.PriceLine{
			Label:  "Labor",
			Detail: fmt.Sprintf("%s hrs @ %s/hr = %s", formatQty(f.LaborHours), money(f.HourlyRate), money(sum.Labor)),
			Amount: sum.Labor,
		},
		jobpdf.PriceLine{Label: "Travel Cost", Amount: f.Travel},
		jobpdf.PriceLine{Label: "Subtotal", Amount: sum.Subtotal},
	)
	if f.DiscountRate > 0 {
		lines = append(lines, jobpdf.PriceLine{
			Label:  fmt.Sprintf("Discount (%.2f%%)", f.DiscountRate),
			Amount: -sum.Discount,
		})
	}
	lines = append(lines, jobpdf.PriceLine{Label: fmt.Sprintf("Tax (%.2f%%)", f.TaxRate), Amount: sum.Tax})

	return jobpdf.ReportRecord{
		Title:    f.company() + " - Service Quote",
		Subtitle: f.subtitle(),
		Date:     f.QuoteDate.Time,
		Sections: []jobpdf.Section{
			{Name: "Quote Details", Rows: []jobpdf.Row{
				{Label: "Date", Value: f.QuoteDate.String()},
				{Label: quoteFields.Number.Label, Value: f.QuoteNumber},
				{Label: "Valid Until", Value: f.ValidUntil.String()},
			}},
			{Name: "Customer Info", Rows: []jobpdf.Row{
				{Label: quoteFields.ClientName.Label, Value: f.ClientName},
				{Label: quoteFields.ClientEmail.Label, Value: f.ClientEmail},
				{Label: quoteFields.Job.Label, Value: f.JobDescription},
			}},
		},
		Breakdown: &jobpdf.PriceBreakdown{
			Columns: [2]string{"Description", "Amount"},
			Lines:   lines,
			Total:   jobpdf.PriceLine{Label: "Total Due", Amount: sum.Total},
		},
		Footnote:      "Generated with " + b.brand(),
		ReferenceCode: f.QuoteNumber,
	}
}

func (f *QuoteForm) subtitle() string {
	if f.QuoteNumber == "" {
		return ""
	}
	return "Quote # " + f.QuoteNumber
}

// Options returns no extra renderer options; the quote draws its title on
// the first page only.
func (f *QuoteForm) Options(Branding) []jobpdf.Option {
	return nil
}

// FileName is the download name of the quote.
func (f *QuoteForm) FileName() string {
	return fileName(f.ClientName, "client", "_quote.pdf")
}

// MailDraft is the email that sends the quote to the client.
func (f *QuoteForm) MailDraft() MailDraft {
	company := f.Company
	if company == "" {
		company = "Your Business"
	}
	total := f.Compute().Total
	return MailDraft{
		Subject: "Service Quote from " + company,
		Body: fmt.Sprintf("Hello %s,\r\n\r\nHere's your service quote for the job: %s.\r\nTotal: %s\r\n\r\nThanks!\r\n%s",
			f.ClientName, f.JobDescription, jobpdf.FormatMoney(total), company),
	}
}

// formatQty prints a quantity without trailing zeros: 100, 2.5.
func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
