package form

import (
	"github.com/revuapp/jobpdf"
)

// Report is a form that can be rendered as a PDF report.
type Report interface {
	Sanitize()
	Validate() error
	Record(b Branding) jobpdf.ReportRecord
	Options(b Branding) []jobpdf.Option
	FileName() string
	MailDraft() MailDraft
}

var (
	_ Report = (*IntakeForm)(nil)
	_ Report = (*QuoteForm)(nil)
)

// Prepare sanitises and validates r and returns its record and renderer
// options. opts are applied after the form's own options.
func Prepare(r Report, b Branding, opts ...jobpdf.Option) (jobpdf.ReportRecord, []jobpdf.Option, error) {
	r.Sanitize()
	if err := r.Validate(); err != nil {
		return jobpdf.ReportRecord{}, nil, err
	}
	return r.Record(b), append(r.Options(b), opts...), nil
}

// Render sanitises, validates and renders r.
func Render(r Report, b Branding, opts ...jobpdf.Option) (*jobpdf.Document, error) {
	rec, all, err := Prepare(r, b, opts...)
	if err != nil {
		return nil, err
	}
	renderer, err := jobpdf.NewRenderer(all...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(rec)
}
