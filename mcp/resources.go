package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/revuapp/jobpdf"
	"github.com/revuapp/jobpdf/form"
)

// Resource URIs.
const (
	URITemplates   = "jobpdf://templates"
	URIFormOptions = "jobpdf://form-options"
)

// RegisterResources adds the read-only reference documents to s.
func RegisterResources(s *Server) {
	s.AddResource(Resource{
		URI:         URITemplates,
		Name:        "Page templates",
		Description: "Page size and margins of every page template, in millimetres.",
		MIMEType:    "application/json",
		Handler:     templatesResource,
	})
	s.AddResource(Resource{
		URI:         URIFormOptions,
		Name:        "Form options",
		Description: "Allowed unit types and contact methods, and the default tax rate.",
		MIMEType:    "application/json",
		Handler:     formOptionsResource,
	})
}

type templateInfo struct {
	Name           string  `json:"name"`
	PageWidth      float64 `json:"page_width"`
	PageHeight     float64 `json:"page_height"`
	MarginLeft     float64 `json:"margin_left"`
	MarginTop      float64 `json:"margin_top"`
	MarginRight    float64 `json:"margin_right"`
	MarginBottom   float64 `json:"margin_bottom"`
	PrintableWidth float64 `json:"printable_width"`
}

func templatesResource(uri string) ([]ResourceContent, error) {
	var infos []templateInfo
	for _, name := range jobpdf.TemplateNames() {
		t, err := jobpdf.LookupTemplate(name)
		if err != nil {
			return nil, err
		}
		g := t.Geometry
		infos = append(infos, templateInfo{
			Name:           name,
			PageWidth:      g.PageWidth,
			PageHeight:     g.PageHeight,
			MarginLeft:     g.MarginLeft,
			MarginTop:      g.MarginTop,
			MarginRight:    g.MarginRight,
			MarginBottom:   g.MarginBottom,
			PrintableWidth: g.PrintableWidth(),
		})
	}
	return jsonContent(uri, infos)
}

func formOptionsResource(uri string) ([]ResourceContent, error) {
	return jsonContent(uri, map[string]any{
		"unit_types":       form.UnitTypes,
		"contact_methods":  form.ContactMethods,
		"default_tax_rate": form.DefaultTaxRate,
		"date_layout":      form.DateLayout,
	})
}

func jsonContent(uri string, v any) ([]ResourceContent, error) {
	js, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(js)}}, nil
}
