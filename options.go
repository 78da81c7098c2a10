package jobpdf

import (
	"fmt"
	"io"
	"log"
	"os"
)

// FooterPolicy decides what happens to the closing line when the content
// already reaches past the footer threshold.
type FooterPolicy int

const (
	// FooterClamp moves the closing line up to the threshold on the current
	// page. It may overlap the content above it.
	FooterClamp FooterPolicy = iota
	// FooterNewPage starts a new page for the closing line.
	FooterNewPage
)

// ParseFooterPolicy maps "clamp" and "newpage" to a FooterPolicy.
func ParseFooterPolicy(s string) (FooterPolicy, error) {
	switch s {
	case "", "clamp":
		return FooterClamp, nil
	case "newpage":
		return FooterNewPage, nil
	}
	return 0, fmt.Errorf("%w: footer policy %q", ErrInvalidParam, s)
}

func (p FooterPolicy) String() string {
	if p == FooterNewPage {
		return "newpage"
	}
	return "clamp"
}

// Option is a functional option for configuring a Renderer via NewRenderer.
type Option func(*rendererConfig)

type rendererConfig struct {
	template        string
	decorations     PageDecorations
	footerPolicy    FooterPolicy
	footerThreshold float64
	strictImages    bool
	compress        bool
	logger          *log.Logger
}

// WithTemplate selects the page template by name. Use TemplateA4 ("a4") or
// TemplateLetter ("letter").
func WithTemplate(name string) Option {
	return func(c *rendererConfig) {
		c.template = name
	}
}

// WithDecorations sets the callbacks drawn at the start and end of every page.
func WithDecorations(d PageDecorations) Option {
	return func(c *rendererConfig) {
		c.decorations = d
	}
}

// WithFooterPolicy sets how the closing line is placed when content runs
// past the footer threshold.
func WithFooterPolicy(p FooterPolicy) Option {
	return func(c *rendererConfig) {
		c.footerPolicy = p
	}
}

// WithFooterThreshold overrides the template's footer threshold, in mm from
// the top of the page. Thresholds that leave no room for the closing line
// above the bottom margin push it onto a new page.
func WithFooterThreshold(y float64) Option {
	return func(c *rendererConfig) {
		c.footerThreshold = y
	}
}

// WithStrictImages makes an unreadable attachment abort the whole render
// instead of leaving its slot out of the gallery.
func WithStrictImages(strict bool) Option {
	return func(c *rendererConfig) {
		c.strictImages = strict
	}
}

// WithCompression enables or disables page stream compression. It is on by
// default.
func WithCompression(compress bool) Option {
	return func(c *rendererConfig) {
		c.compress = compress
	}
}

// WithLogger sets the logger used for skipped attachments. A nil logger
// discards messages.
func WithLogger(l *log.Logger) Option {
	return func(c *rendererConfig) {
		if l == nil {
			l = log.New(io.Discard, "", 0)
		}
		c.logger = l
	}
}

// Renderer turns ReportRecords into PDF documents. It is immutable once
// built and safe for concurrent use; every Render call owns its own
// document, cursor and buffer.
type Renderer struct {
	tpl             Template
	decorations     PageDecorations
	footerPolicy    FooterPolicy
	footerThreshold float64
	strictImages    bool
	compress        bool
	logger          *log.Logger
}

// NewRenderer creates a Renderer using functional options.
// If no options are specified, it renders A4 pages with a clamped footer and
// skips unreadable attachments.
//
// Example:
//
//	r, err := jobpdf.NewRenderer(
//	    jobpdf.WithTemplate(jobpdf.TemplateLetter),
//	    jobpdf.WithDecorations(jobpdf.StandardDecorations("Client Intake Summary", "", "Revu")),
//	)
func NewRenderer(opts ...Option) (*Renderer, error) {
	cfg := &rendererConfig{
		template:     TemplateA4,
		footerPolicy: FooterClamp,
		compress:     true,
		logger:       log.New(os.Stderr, "[jobpdf] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tpl, err := LookupTemplate(cfg.template)
	if err != nil {
		return nil, err
	}
	threshold := tpl.Geometry.FooterThreshold
	if cfg.footerThreshold != 0 {
		if cfg.footerThreshold < 0 || cfg.footerThreshold > tpl.Geometry.PageHeight {
			return nil, fmt.Errorf("%w: footer threshold %.1f outside the page", ErrInvalidParam, cfg.footerThreshold)
		}
		threshold = cfg.footerThreshold
	}
	if cfg.footerPolicy != FooterClamp && cfg.footerPolicy != FooterNewPage {
		return nil, fmt.Errorf("%w: footer policy %d", ErrInvalidParam, cfg.footerPolicy)
	}

	return &Renderer{
		tpl:             tpl,
		decorations:     cfg.decorations,
		footerPolicy:    cfg.footerPolicy,
		footerThreshold: threshold,
		strictImages:    cfg.strictImages,
		compress:        cfg.compress,
		logger:          cfg.logger,
	}, nil
}

// Template returns the renderer's page template.
func (r *Renderer) Template() Template {
	return r.tpl
}
