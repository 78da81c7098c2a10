package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/revuapp/jobpdf"
	"github.com/revuapp/jobpdf/form"
	"github.com/revuapp/jobpdf/imgprobe"
	"github.com/revuapp/jobpdf/pdftext"
)

// Reports holds what the tools render with.
type Reports struct {
	Options  []jobpdf.Option
	Branding form.Branding
	Now      func() time.Time // defaults to time.Now
}

func (r *Reports) today() form.Date {
	if r.Now == nil {
		return form.NewDate(time.Now())
	}
	return form.NewDate(r.Now())
}

// RegisterTools adds the report tools to s.
func RegisterTools(s *Server, r *Reports) {
	s.AddTool(Tool{
		Name: "render_intake",
		Description: "Render a client intake summary PDF. Photos are base64 PNG or JPEG files; " +
			"unsupported ones are skipped and listed. Returns the PDF as an embedded resource.",
		InputSchema: objectSchema(map[string]any{
			"form":   map[string]any{"type": "object", "description": "Intake fields: full_name, email, phone, address, preferred_contact, service, preferred_date (YYYY-MM-DD), notes, submitted"},
			"photos": map[string]any{"type": "array", "items": photoSchema},
		}, "form"),
		Handler: r.renderIntake,
	})
	s.AddTool(Tool{
		Name: "render_quote",
		Description: "Render a service quote PDF with its price breakdown. Omitted fields take the quote " +
			"defaults: today's date, 30 days validity, quantity 1 and the default tax rate.",
		InputSchema: objectSchema(map[string]any{"form": quoteSchema}, "form"),
		Handler:     r.renderQuote,
	})
	s.AddTool(Tool{
		Name:        "quote_summary",
		Description: "Compute a quote's price breakdown and email draft without rendering a PDF.",
		InputSchema: objectSchema(map[string]any{"form": quoteSchema}, "form"),
		Handler:     r.quoteSummary,
	})
	s.AddTool(Tool{
		Name:        "probe_image",
		Description: "Report the format and pixel size of a base64 PNG or JPEG file, or why it cannot be placed in a report.",
		InputSchema: objectSchema(map[string]any{
			"data": map[string]any{"type": "string", "description": "base64 file contents"},
		}, "data"),
		Handler: probeImage,
	})
	s.AddTool(Tool{
		Name:        "report_text",
		Description: "List the text drawn on each page of a report PDF produced by the render tools, in drawing order.",
		InputSchema: objectSchema(map[string]any{
			"data": map[string]any{"type": "string", "description": "base64 PDF"},
		}, "data"),
		Handler: reportText,
	})
}

var photoSchema = objectSchema(map[string]any{
	"name": map[string]any{"type": "string"},
	"data": map[string]any{"type": "string", "description": "base64 file contents"},
}, "data")

var quoteSchema = map[string]any{
	"type": "object",
	"description": "Quote fields: company, client_name, client_email, quote_number, quote_date, valid_until, " +
		"job_description, unit_type, quantity, unit_price, material_cost, labor_hours, hourly_rate, " +
		"travel_cost, add_ons (one \"name - amount\" per line), discount_rate, tax_rate",
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	return map[string]any{"type": "object", "properties": props, "required": required}
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing arguments")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

type photoArg struct {
	Name string `json:"name"`
	Data []byte `json:"data"` // base64 in JSON
}

func (r *Reports) renderIntake(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	var args struct {
		Form   form.IntakeForm `json:"form"`
		Photos []photoArg      `json:"photos"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return ToolResult{}, err
	}

	f := args.Form
	for i, p := range args.Photos {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("photo-%d", i+1)
		}
		f.Photos = append(f.Photos, jobpdf.ImageAttachment{Name: name, Data: p.Data})
	}
	if f.Submitted.IsZero() {
		f.Submitted = r.today()
	}
	return r.render(&f)
}

func (r *Reports) decodeQuote(raw json.RawMessage) (*form.QuoteForm, error) {
	var args struct {
		Form json.RawMessage `json:"form"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	q := form.NewQuoteForm(r.today())
	if err := decodeArgs(args.Form, &q); err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	return &q, nil
}

func (r *Reports) renderQuote(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	q, err := r.decodeQuote(raw)
	if err != nil {
		return ToolResult{}, err
	}
	return r.render(q)
}

func (r *Reports) render(rep form.Report) (ToolResult, error) {
	doc, err := form.Render(rep, r.Branding, r.Options...)
	if err != nil {
		return ToolResult{}, err
	}

	name := rep.FileName()
	var summary strings.Builder
	fmt.Fprintf(&summary, "Rendered %s: %d page(s), %d bytes.", name, doc.Pages, len(doc.Bytes))
	for i := range doc.Skipped {
		fmt.Fprintf(&summary, "\nSkipped %v", &doc.Skipped[i])
	}
	if m := rep.MailDraft(); m.Subject != "" {
		fmt.Fprintf(&summary, "\nEmail draft: %s", m.URL())
	}

	return ToolResult{Content: []ContentBlock{
		{Type: "text", Text: summary.String()},
		{Type: "resource", Resource: &Blob{
			URI:      "jobpdf://reports/" + url.PathEscape(name),
			MIMEType: "application/pdf",
			Blob:     base64.StdEncoding.EncodeToString(doc.Bytes),
		}},
	}}, nil
}

type summaryLine struct {
	Label  string  `json:"label"`
	Value  string  `json:"value"`
	Amount float64 `json:"amount"`
}

func (r *Reports) quoteSummary(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	q, err := r.decodeQuote(raw)
	if err != nil {
		return ToolResult{}, err
	}
	q.Sanitize()
	if err := q.Validate(); err != nil {
		return ToolResult{}, err
	}

	b := q.Record(r.Branding).Breakdown
	out := struct {
		Lines  []summaryLine `json:"lines"`
		Total  summaryLine   `json:"total"`
		Mailto string        `json:"mailto"`
	}{
		Total:  summaryLine{Label: b.Total.Label, Value: b.Total.Value(), Amount: b.Total.Amount},
		Mailto: q.MailDraft().URL(),
	}
	for _, l := range b.Lines {
		out.Lines = append(out.Lines, summaryLine{Label: l.Label, Value: l.Value(), Amount: l.Amount})
	}
	js, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return ToolResult{}, fmt.Errorf("encoding summary: %w", err)
	}
	return textResult(string(js)), nil
}

func probeImage(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	var args struct {
		Data []byte `json:"data"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return ToolResult{}, err
	}
	info, err := imgprobe.Probe(args.Data)
	if err != nil {
		return ToolResult{}, err
	}
	js, err := json.Marshal(map[string]any{
		"format": info.Format,
		"width":  info.Width,
		"height": info.Height,
	})
	if err != nil {
		return ToolResult{}, fmt.Errorf("encoding probe result: %w", err)
	}
	return textResult(string(js)), nil
}

func reportText(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	var args struct {
		Data []byte `json:"data"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return ToolResult{}, err
	}
	pages, err := pdftext.Read(args.Data)
	if err != nil {
		return ToolResult{}, err
	}

	var out strings.Builder
	for _, p := range pages {
		fmt.Fprintf(&out, "--- Page %d ---\n", p.Number)
		for _, line := range p.Text {
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}
	return textResult(out.String()), nil
}
