package form

import (
	"fmt"
	"strings"

	"github.com/revuapp/jobpdf"
)

// Branding names the business a report is generated for.
type Branding struct {
	// Brand appears in "Generated with <Brand>" lines.
	Brand string
}

// DefaultBranding is used when a caller does not set one.
var DefaultBranding = Branding{Brand: "Revu"}

func (b Branding) brand() string {
	if b.Brand == "" {
		return DefaultBranding.Brand
	}
	return b.Brand
}

// Contact methods accepted by IntakeForm.PreferredContact.
var ContactMethods = []string{"Phone", "Email", "Text"}

const intakeTitle = "Client Intake Summary"

var intakeFields = struct {
	FullName, Email, Phone, Address, Contact, Service, PreferredDate, Notes Field
}{
	FullName:      Field{Name: "full_name", Label: "Full Name", Type: TypeText, Required: true, MaxLen: 200},
	Email:         Field{Name: "email", Label: "Email", Type: TypeText, MaxLen: 254},
	Phone:         Field{Name: "phone", Label: "Phone", Type: TypeText, MaxLen: 50},
	Address:       Field{Name: "address", Label: "Address", Type: TypeTextArea, MaxLen: 1000},
	Contact:       Field{Name: "preferred_contact", Label: "Preferred Contact", Type: TypeChoice, Options: ContactMethods},
	Service:       Field{Name: "service", Label: "Service Needed", Type: TypeText, MaxLen: 500},
	PreferredDate: Field{Name: "preferred_date", Label: "Preferred Date", Type: TypeDate},
	Notes:         Field{Name: "notes", Label: "Notes", Type: TypeTextArea, MaxLen: 5000},
}

// IntakeForm is a client intake submission.
type IntakeForm struct {
	FullName         string `json:"full_name" yaml:"full_name"`
	Email            string `json:"email" yaml:"email"`
	Phone            string `json:"phone" yaml:"phone"`
	Address          string `json:"address" yaml:"address"`
	PreferredContact string `json:"preferred_contact" yaml:"preferred_contact"`
	Service          string `json:"service" yaml:"service"`
	PreferredDate    Date   `json:"preferred_date" yaml:"preferred_date"`
	Notes            string `json:"notes" yaml:"notes"`

	// Submitted is the day the report is generated on. It is the only date
	// stamped into the PDF.
	Submitted Date `json:"submitted" yaml:"submitted"`

	Photos []jobpdf.ImageAttachment `json:"-" yaml:"-"`
}

// Sanitize strips markup from every text field and defaults an empty
// preferred contact method to Phone.
func (f *IntakeForm) Sanitize() {
	for _, p := range []*string{&f.FullName, &f.Email, &f.Phone, &f.Address, &f.PreferredContact, &f.Service, &f.Notes} {
		*p = cleanText(*p)
	}
	if f.PreferredContact == "" {
		f.PreferredContact = ContactMethods[0]
	}
}

// Validate reports every missing or invalid field.
func (f *IntakeForm) Validate() error {
	var c checker
	fs := intakeFields
	c.text(fs.FullName, f.FullName)
	c.text(fs.Email, f.Email)
	if e := strings.TrimSpace(f.Email); e != "" && !strings.Contains(e, "@") {
		c.add(fs.Email.Name, "not an email address")
	}
	c.text(fs.Phone, f.Phone)
	c.text(fs.Address, f.Address)
	c.text(fs.Contact, f.PreferredContact)
	c.text(fs.Service, f.Service)
	c.text(fs.Notes, f.Notes)
	for i, p := range f.Photos {
		if len(p.Data) == 0 {
			c.add(fmt.Sprintf("photos[%d]", i), "empty file")
		}
	}
	return c.err("intake")
}

// Record builds the intake report.
func (f *IntakeForm) Record(b Branding) jobpdf.ReportRecord {
	fs := intakeFields
	return jobpdf.ReportRecord{
		Title:    intakeTitle,
		Subtitle: f.subtitle(),
		Date:     f.Submitted.Time,
		Sections: []jobpdf.Section{
			{Name: "Client Info", Rows: []jobpdf.Row{
				{Label: fs.FullName.Label, Value: f.FullName},
				{Label: fs.Email.Label, Value: f.Email},
				{Label: fs.Phone.Label, Value: f.Phone},
				{Label: fs.Address.Label, Value: f.Address},
				{Label: fs.Contact.Label, Value: f.PreferredContact},
			}},
			{Name: "Service Request", Rows: []jobpdf.Row{
				{Label: fs.Service.Label, Value: f.Service},
				{Label: fs.PreferredDate.Label, Value: f.PreferredDate.String()},
				{Label: fs.Notes.Label, Value: f.Notes},
			}},
		},
		Images: f.Photos,
	}
}

// Options returns the renderer options of the intake report: the title and
// page-number decorations on every page.
func (f *IntakeForm) Options(b Branding) []jobpdf.Option {
	return []jobpdf.Option{
		jobpdf.WithDecorations(jobpdf.StandardDecorations(intakeTitle, f.subtitle(), b.brand())),
	}
}

func (f *IntakeForm) subtitle() string {
	if f.Submitted.IsZero() {
		return ""
	}
	return "Generated on: " + f.Submitted.String()
}

// FileName is the download name of the intake report.
func (f *IntakeForm) FileName() string {
	return fileName(f.FullName, "client", "_intake.pdf")
}

// MailDraft is the notification email for a new intake. The PDF itself is
// attached by the sender.
func (f *IntakeForm) MailDraft() MailDraft {
	var body strings.Builder
	fmt.Fprintf(&body, "A new client intake form has been submitted for %s.\r\n\r\n", f.FullName)
	body.WriteString("Client Details:\r\n")
	fmt.Fprintf(&body, "Name: %s\r\n", f.FullName)
	fmt.Fprintf(&body, "Email: %s\r\n", f.Email)
	fmt.Fprintf(&body, "Phone: %s\r\n", f.Phone)
	fmt.Fprintf(&body, "Address: %s\r\n", f.Address)
	fmt.Fprintf(&body, "Preferred Contact: %s\r\n\r\n", f.PreferredContact)
	body.WriteString("Service Request:\r\n")
	fmt.Fprintf(&body, "Service Needed: %s\r\n", f.Service)
	fmt.Fprintf(&body, "Preferred Date: %s\r\n", f.PreferredDate)
	fmt.Fprintf(&body, "Notes: %s\r\n\r\n", f.Notes)
	body.WriteString("Please attach the PDF with full details, including any photos, before sending.")
	return MailDraft{
		Subject: "New Client Intake Form for " + f.FullName,
		Body:    body.String(),
	}
}
