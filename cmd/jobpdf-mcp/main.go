// Command jobpdf-mcp is an MCP server that renders intake and quote reports
// for AI assistants over stdio.
//
// # Tools
//
//   - render_intake: client intake summary PDF, with photos
//   - render_quote: service quote PDF
//   - quote_summary: quote price breakdown and email draft
//   - probe_image: format and size of a PNG or JPEG file
//   - report_text: text of each page of a rendered report
//
// # Resources
//
//   - jobpdf://templates: page templates
//   - jobpdf://form-options: unit types, contact methods and tax default
//
// Logs go to stderr; stdout carries only protocol messages.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/revuapp/jobpdf/config"
	"github.com/revuapp/jobpdf/mcp"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "config file (defaults when empty or missing)")
	flag.Parse()

	logger := config.NewLogger(os.Stderr, "mcp")
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		logger.Fatal(err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		logger.Fatal(err)
	}
	opts, err := cfg.RendererOptions(config.NewLogger(os.Stderr, "jobpdf"))
	if err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := mcp.NewServer("jobpdf-mcp", version, os.Stdout, logger)
	mcp.RegisterTools(s, &mcp.Reports{Options: opts, Branding: cfg.BrandingFor()})
	mcp.RegisterResources(s)

	if err := s.Serve(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		logger.Fatal(err)
	}
}
