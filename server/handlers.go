package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revuapp/jobpdf"
	"github.com/revuapp/jobpdf/cache"
	"github.com/revuapp/jobpdf/form"
)

const (
	fieldForm   = "form"
	fieldPhotos = "photos"
)

// renderIntake takes a multipart body: the form as JSON in the "form" field
// and any number of "photos" files.
func (s *Server) renderIntake(c *gin.Context) {
	mf, err := c.MultipartForm()
	if err != nil {
		s.badBody(c, err)
		return
	}

	var f form.IntakeForm
	if err := json.Unmarshal([]byte(firstValue(mf.Value[fieldForm])), &f); err != nil {
		s.badBody(c, fmt.Errorf("%s field: %w", fieldForm, err))
		return
	}
	for _, fh := range mf.File[fieldPhotos] {
		data, err := readPart(fh)
		if err != nil {
			s.badBody(c, err)
			return
		}
		f.Photos = append(f.Photos, jobpdf.ImageAttachment{Name: fh.Filename, Data: data})
	}
	if f.Submitted.IsZero() {
		f.Submitted = form.NewDate(s.now())
	}
	s.renderReport(c, "intake", &f)
}

func (s *Server) renderQuote(c *gin.Context) {
	q, ok := s.bindQuote(c)
	if !ok {
		return
	}
	s.renderReport(c, "quote", q)
}

// renderReport writes the PDF of r as an attachment, from the cache when
// an identical request was rendered before.
func (s *Server) renderReport(c *gin.Context, kind string, r form.Report) {
	r.Sanitize()
	if err := r.Validate(); err != nil {
		s.fail(c, err)
		return
	}

	parts, err := requestParts(r)
	if err != nil {
		s.fail(c, err)
		return
	}
	data, hit, err := s.cache.GetOrRender(c.Request.Context(), cache.Key(kind, parts...), func() ([]byte, error) {
		doc, err := form.Render(r, s.branding, s.opts...)
		if err != nil {
			return nil, err
		}
		for i := range doc.Skipped {
			s.logger.Printf("%s %s: skipped %v", c.GetString(ctxRequestID), kind, &doc.Skipped[i])
		}
		return doc.Bytes, nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", r.FileName()))
	c.Header("X-Cache", cacheStatus(hit))
	c.Data(http.StatusOK, "application/pdf", data)
}

// requestParts is the canonical form of a sanitised report for cache keys:
// its JSON encoding followed by every photo.
func requestParts(r form.Report) ([][]byte, error) {
	js, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("server: encoding request: %w", err)
	}
	parts := [][]byte{js}
	if f, ok := r.(*form.IntakeForm); ok {
		for _, p := range f.Photos {
			parts = append(parts, []byte(p.Name), p.Data)
		}
	}
	return parts, nil
}

func (s *Server) intakeDraft(c *gin.Context) {
	var f form.IntakeForm
	if err := c.ShouldBindJSON(&f); err != nil {
		s.badBody(c, err)
		return
	}
	if f.Submitted.IsZero() {
		f.Submitted = form.NewDate(s.now())
	}
	f.Sanitize()
	if err := f.Validate(); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, draftJSON(f.MailDraft()))
}

type breakdownLine struct {
	Label  string  `json:"label"`
	Value  string  `json:"value"`
	Amount float64 `json:"amount"`
}

func (s *Server) quoteSummary(c *gin.Context) {
	q, ok := s.bindQuote(c)
	if !ok {
		return
	}
	q.Sanitize()
	if err := q.Validate(); err != nil {
		s.fail(c, err)
		return
	}

	b := q.Record(s.branding).Breakdown
	lines := make([]breakdownLine, 0, len(b.Lines))
	for _, l := range b.Lines {
		lines = append(lines, breakdownLine{Label: l.Label, Value: l.Value(), Amount: l.Amount})
	}
	c.JSON(http.StatusOK, gin.H{
		"lines":     lines,
		"total":     breakdownLine{Label: b.Total.Label, Value: b.Total.Value(), Amount: b.Total.Amount},
		"file_name": q.FileName(),
		"draft":     draftJSON(q.MailDraft()),
	})
}

// bindQuote decodes a quote over the defaults of a quote dated today.
func (s *Server) bindQuote(c *gin.Context) (*form.QuoteForm, bool) {
	q := form.NewQuoteForm(form.NewDate(s.now()))
	if err := c.ShouldBindJSON(&q); err != nil {
		s.badBody(c, err)
		return nil, false
	}
	return &q, true
}

func draftJSON(m form.MailDraft) gin.H {
	return gin.H{"subject": m.Subject, "body": m.Body, "mailto": m.URL()}
}

// fail maps validation errors to 400 and anything else to 500.
func (s *Server) fail(c *gin.Context, err error) {
	var ve *form.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"err": ve.Error(), "problems": ve.Problems})
		return
	}
	s.logger.Printf("%s %s: %v", c.GetString(ctxRequestID), c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
}

func (s *Server) badBody(c *gin.Context, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"err": fmt.Sprintf("request larger than %d bytes", tooBig.Limit)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	return data, nil
}

func firstValue(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
