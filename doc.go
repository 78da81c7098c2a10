// Package jobpdf renders job intake and service quote reports as paginated
// PDF documents.
//
// A ReportRecord holds everything a report shows: titled sections of
// label/value rows, photo attachments, an optional price breakdown and a
// closing line. A Renderer lays the record out on a fixed page template:
//
//	r, err := jobpdf.NewRenderer(
//	    jobpdf.WithDecorations(jobpdf.StandardDecorations("Client Intake Summary", "Generated on: 05/14/2025", "Revu")),
//	)
//	if err != nil {
//	    return err
//	}
//	doc, err := r.Render(rec)
//
// Layout rules:
//
//   - Every value row is as tall as its wrapped text. Text is wrapped one
//     character at a time against the value column width, and the value cell
//     is drawn from exactly those lines, so label and value cells always
//     share a height.
//   - A row that would cross the bottom margin starts a new page. Section
//     bands move together with their first row.
//   - Photos are scaled down (never up) to fit 180 x 120 mm at 96 dpi and
//     placed two to a row when both fit between the margins.
//   - The closing line follows the content. When the content already reaches
//     past the footer threshold, the FooterPolicy decides whether it is
//     clamped to the threshold or moved to a new page.
//
// Text is drawn with the PDF core fonts, so it is converted to Windows-1252;
// characters outside that code page print as '?'.
//
// A Renderer is immutable and safe for concurrent use. The output depends
// only on the record: the document dates come from ReportRecord.Date, so the
// same record renders to the same bytes.
package jobpdf
