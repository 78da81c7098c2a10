package jobpdf_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/go-cmp/cmp"

	"github.com/revuapp/jobpdf"
	"github.com/revuapp/jobpdf/pdftext"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 251)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func jpegImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}
	return buf.Bytes()
}

func quietRenderer(t *testing.T, opts ...jobpdf.Option) *jobpdf.Renderer {
	t.Helper()
	opts = append([]jobpdf.Option{jobpdf.WithLogger(log.New(io.Discard, "", 0))}, opts...)
	r, err := jobpdf.NewRenderer(opts...)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func intakeRecord(t *testing.T) jobpdf.ReportRecord {
	return jobpdf.ReportRecord{
		Title:    "Client Intake Summary",
		Subtitle: "Generated on: 05/14/2025",
		Date:     time.Date(2025, time.May, 14, 9, 30, 0, 0, time.UTC),
		Sections: []jobpdf.Section{
			{Name: "Client Info", Rows: []jobpdf.Row{
				{Label: "Full Name", Value: "Dana Whitfield"},
				{Label: "Email", Value: "dana@example.com"},
				{Label: "Address", Value: "18 Orchard Lane\nMillbrook, NY 12545"},
				{Label: "Preferred Contact", Value: "Text"},
			}},
			{Name: "Service Request", Rows: []jobpdf.Row{
				{Label: "Service Needed", Value: "Gutter cleaning"},
				{Label: "Notes", Value: strings.Repeat("Café access through the side gate. ", 12)},
			}},
		},
		Images: []jobpdf.ImageAttachment{
			{Name: "front.png", Data: pngImage(t, 320, 240)},
			{Name: "side.jpg", Data: jpegImage(t, 300, 200)},
			{Name: "roof.png", Data: pngImage(t, 1600, 900)},
		},
		Footnote: "Generated with Revu",
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := quietRenderer(t, jobpdf.WithDecorations(
		jobpdf.StandardDecorations("Client Intake Summary", "Generated on: 05/14/2025", "Revu")))
	doc, err := r.Render(intakeRecord(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(doc.Bytes, []byte("%PDF")) {
		t.Fatal("output does not start with %PDF header")
	}
	if doc.Pages < 2 {
		t.Errorf("Pages = %d, want the gallery to continue on a second page", doc.Pages)
	}
	if len(doc.Skipped) != 0 {
		t.Errorf("Skipped = %v, want none", doc.Skipped)
	}
}

func TestRenderIsByteIdentical(t *testing.T) {
	r := quietRenderer(t, jobpdf.WithDecorations(jobpdf.StandardDecorations("Intake", "", "Revu")))
	rec := intakeRecord(t)
	rec.ReferenceCode = "Q-123456"
	rec.Breakdown = &jobpdf.PriceBreakdown{
		Lines: []jobpdf.PriceLine{{Label: "Material Cost", Amount: 120}},
		Total: jobpdf.PriceLine{Label: "Total Due", Amount: 120},
	}

	first, err := r.Render(rec)
	if err != nil {
		t.Fatalf("first Render: %v", err)
	}
	second, err := r.Render(rec)
	if err != nil {
		t.Fatalf("second Render: %v", err)
	}
	if !bytes.Equal(first.Bytes, second.Bytes) {
		t.Fatal("rendering the same record twice produced different bytes")
	}
}

func TestRenderZeroDateIsStable(t *testing.T) {
	r := quietRenderer(t)
	rec := jobpdf.ReportRecord{Title: "Quote", Footnote: "Generated with Revu"}
	a, err := r.Render(rec)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := r.Render(rec)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(a.Bytes, b.Bytes) {
		t.Fatal("records without a date rendered differently")
	}
}

func TestRenderSkipsUnsupportedImages(t *testing.T) {
	var logBuf bytes.Buffer
	r, err := jobpdf.NewRenderer(jobpdf.WithLogger(log.New(&logBuf, "", 0)))
	if err != nil {
		t.Fatal(err)
	}
	rec := jobpdf.ReportRecord{
		Title: "Intake",
		Images: []jobpdf.ImageAttachment{
			{Name: "ok.png", Data: pngImage(t, 64, 64)},
			{Name: "anim.gif", Data: []byte("GIF89a\x01\x00\x01\x00")},
			{Name: "cut.png", Data: pngImage(t, 64, 64)[:20]},
			{Name: "ok.jpg", Data: jpegImage(t, 64, 48)},
		},
	}
	doc, err := r.Render(rec)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var got []int
	for _, s := range doc.Skipped {
		got = append(got, s.Index)
		if !errors.Is(&s, jobpdf.ErrUnsupportedImageFormat) {
			t.Errorf("skipped photo %d: %v is not ErrUnsupportedImageFormat", s.Index, s.Err)
		}
	}
	if diff := cmp.Diff([]int{1, 2}, got); diff != "" {
		t.Errorf("skipped indexes mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(logBuf.String(), "anim.gif") {
		t.Errorf("log %q does not name the skipped photo", logBuf.String())
	}
}

func TestRenderSkipsImagesTheEngineRejects(t *testing.T) {
	data := pngImage(t, 40, 40)
	// Interlace method byte of IHDR: the header still probes, the engine
	// refuses the image.
	data[28] = 1

	r := quietRenderer(t)
	doc, err := r.Render(jobpdf.ReportRecord{
		Images: []jobpdf.ImageAttachment{{Name: "interlaced.png", Data: data}},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(doc.Skipped) != 1 || doc.Skipped[0].Index != 0 {
		t.Fatalf("Skipped = %v, want photo 1", doc.Skipped)
	}
}

func TestRenderStrictImagesAborts(t *testing.T) {
	r := quietRenderer(t, jobpdf.WithStrictImages(true))
	_, err := r.Render(jobpdf.ReportRecord{
		Images: []jobpdf.ImageAttachment{
			{Name: "ok.png", Data: pngImage(t, 10, 10)},
			{Name: "notes.txt", Data: []byte("not an image")},
		},
	})
	if !errors.Is(err, jobpdf.ErrUnsupportedImageFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedImageFormat", err)
	}
	var re *jobpdf.RenderError
	if !errors.As(err, &re) || re.Op != "Gallery" {
		t.Errorf("err = %#v, want *RenderError from Gallery", err)
	}
	var ie *jobpdf.ImageError
	if !errors.As(err, &ie) || ie.Index != 1 || ie.Name != "notes.txt" {
		t.Errorf("err = %v, want ImageError for photo 2", err)
	}
}

func TestRowsStayAboveBottomMargin(t *testing.T) {
	var lows []float64
	footer := func(pdf *fpdf.Fpdf, _ jobpdf.PageInfo) {
		lows = append(lows, pdf.GetY())
	}
	r := quietRenderer(t, jobpdf.WithDecorations(jobpdf.PageDecorations{Footer: footer}))

	var rows []jobpdf.Row
	for i := 0; i < 40; i++ {
		rows = append(rows, jobpdf.Row{
			Label: "Note",
			Value: strings.Repeat("word ", 10+i%5*20),
		})
	}
	doc, err := r.Render(jobpdf.ReportRecord{
		Title:    "Long report",
		Sections: []jobpdf.Section{{Name: "Notes", Rows: rows}},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc.Pages < 3 {
		t.Fatalf("Pages = %d, want at least 3", doc.Pages)
	}
	if len(lows) != doc.Pages {
		t.Fatalf("footer ran %d times for %d pages", len(lows), doc.Pages)
	}
	bottom := r.Template().Geometry.ContentBottom()
	for i, y := range lows {
		if y > bottom+1e-9 {
			t.Errorf("page %d content ends at %.2f, below the bottom margin at %.2f", i+1, y, bottom)
		}
	}
}

func TestRowTallerThanAPageIsSplit(t *testing.T) {
	var lows []float64
	footer := func(pdf *fpdf.Fpdf, _ jobpdf.PageInfo) {
		lows = append(lows, pdf.GetY())
	}
	r := quietRenderer(t, jobpdf.WithDecorations(jobpdf.PageDecorations{Footer: footer}))

	notes := strings.TrimSpace(strings.Repeat("The side gate sticks, lift it first. ", 130))
	notes += " Ring the bell twice."
	doc, err := r.Render(jobpdf.ReportRecord{
		Title: "Site visit",
		Sections: []jobpdf.Section{{Name: "Service Request", Rows: []jobpdf.Row{
			{Label: "Service Needed", Value: "Gate repair"},
			{Label: "Notes", Value: notes},
		}}},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc.Pages < 2 || len(lows) != doc.Pages {
		t.Fatalf("Pages = %d, footer ran %d times", doc.Pages, len(lows))
	}
	bottom := r.Template().Geometry.ContentBottom()
	for i, y := range lows {
		if y > bottom+1e-9 {
			t.Errorf("page %d content ends at %.2f, below the bottom margin at %.2f", i+1, y, bottom)
		}
	}

	pages, err := pdftext.Read(doc.Bytes)
	if err != nil {
		t.Fatalf("pdftext.Read: %v", err)
	}
	if !pages[0].Contains("Notes") {
		t.Errorf("page 1 = %q, want the notes row to start there", pages[0].Text)
	}
	var all strings.Builder
	for _, p := range pages {
		for _, s := range p.Text {
			all.WriteString(s)
		}
	}
	if !strings.Contains(all.String(), notes) {
		t.Errorf("notes text was not drawn in full")
	}
	if last := pages[len(pages)-1]; !strings.HasSuffix(strings.Join(last.Text, ""), "twice.") {
		t.Errorf("last page = %q, want it to end with the last words of the notes", last.Text)
	}
}

func TestNewRendererRejectsBadOptions(t *testing.T) {
	if _, err := jobpdf.NewRenderer(jobpdf.WithTemplate("tabloid")); !errors.Is(err, jobpdf.ErrUnknownTemplate) {
		t.Errorf("unknown template: err = %v, want ErrUnknownTemplate", err)
	}
	if _, err := jobpdf.NewRenderer(jobpdf.WithFooterThreshold(400)); !errors.Is(err, jobpdf.ErrInvalidParam) {
		t.Errorf("threshold below the page: err = %v, want ErrInvalidParam", err)
	}
	if _, err := jobpdf.NewRenderer(jobpdf.WithFooterPolicy(jobpdf.FooterPolicy(7))); !errors.Is(err, jobpdf.ErrInvalidParam) {
		t.Errorf("unknown policy: err = %v, want ErrInvalidParam", err)
	}
}

func TestLetterTemplate(t *testing.T) {
	r := quietRenderer(t, jobpdf.WithTemplate(jobpdf.TemplateLetter))
	g := r.Template().Geometry
	if math.Abs(g.LabelWidth+g.ValueWidth-g.PrintableWidth()) > 1e-9 {
		t.Errorf("label + value = %.1f, want printable width %.1f", g.LabelWidth+g.ValueWidth, g.PrintableWidth())
	}
	if _, err := r.Render(intakeRecord(t)); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderWriteFailure(t *testing.T) {
	err := jobpdf.Render(failingWriter{}, jobpdf.ReportRecord{Title: "x"}, jobpdf.WithLogger(nil))
	if !errors.Is(err, jobpdf.ErrRenderIO) {
		t.Fatalf("err = %v, want ErrRenderIO", err)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{956.25, "$956.25"},
		{1234.5, "$1,234.50"},
		{-100, "-$100.00"},
		{1000000, "$1,000,000.00"},
		{19.999, "$20.00"},
	}
	for _, tt := range tests {
		if got := jobpdf.FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderDrawsBlocksInOrder(t *testing.T) {
	rec := jobpdf.ReportRecord{
		Title:    "Cravix - Service Quote",
		Subtitle: "Quote # 123456",
		Date:     time.Date(2025, time.May, 14, 0, 0, 0, 0, time.UTC),
		Sections: []jobpdf.Section{
			{Name: "Quote Details", Rows: []jobpdf.Row{{Label: "Job Description", Value: "Café patio reseal"}}},
			{Name: "Customer Info", Rows: []jobpdf.Row{{Label: "Name", Value: "Dana (D.) Whitfield"}}},
		},
		Breakdown: &jobpdf.PriceBreakdown{
			Columns: [2]string{"Description", "Amount"},
			Lines:   []jobpdf.PriceLine{{Label: "Material Cost", Amount: 120}},
			Total:   jobpdf.PriceLine{Label: "Total Due", Amount: 120},
		},
		Footnote: "Generated with Revu",
	}
	doc, err := quietRenderer(t).Render(rec)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	pages, err := pdftext.Read(doc.Bytes)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}

	p := pages[0]
	order := []string{
		"Cravix - Service Quote", "Quote # 123456",
		"Quote Details", "Café patio reseal",
		"Customer Info", "Dana (D.) Whitfield",
		"Amount", "Material Cost", "$120.00", "Total Due",
		"Generated with Revu",
	}
	last := -1
	for _, s := range order {
		i := p.Index(s)
		if i <= last {
			t.Fatalf("%q at text object %d, want after %d; page text:\n%s", s, i, last, strings.Join(p.Text, "\n"))
		}
		last = i
	}
}
