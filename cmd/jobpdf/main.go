// Command jobpdf renders an intake or quote report from a YAML form file.
//
//	jobpdf -kind intake -in intake.yaml -photo front.jpg -photo side.png -out reports/
//	jobpdf -kind quote -in quote.yaml -out - > quote.pdf
//
// When -out names a directory the report gets its default file name. The
// PDF is never written to a terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/revuapp/jobpdf"
	"github.com/revuapp/jobpdf/config"
	"github.com/revuapp/jobpdf/form"
)

const version = "1.0.0"

var errTerminal = errors.New("refusing to write a PDF to a terminal; redirect stdout or use -out")

// photoList collects repeated -photo flags.
type photoList []string

func (p *photoList) String() string     { return strings.Join(*p, ",") }
func (p *photoList) Set(v string) error { *p = append(*p, v); return nil }

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "jobpdf: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("jobpdf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (defaults when empty or missing)")
	kind := fs.String("kind", "", `report kind: "intake" or "quote"`)
	in := fs.String("in", "", `YAML form file, "-" for stdin`)
	out := fs.String("out", "-", `output file or directory, "-" for stdout`)
	draft := fs.Bool("draft", false, "print the email draft link to stderr")
	showVersion := fs.Bool("version", false, "print the version and exit")
	var photos photoList
	fs.Var(&photos, "photo", "photo to attach to an intake report (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "jobpdf %s\n", version)
		return nil
	}
	if *in == "" {
		return errors.New("-in is required")
	}

	logger := config.NewLogger(stderr, "jobpdf")
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	opts, err := cfg.RendererOptions(logger)
	if err != nil {
		return err
	}

	data, err := readInput(*in, stdin)
	if err != nil {
		return err
	}
	today := form.NewDate(time.Now())
	rep, err := decodeForm(*kind, data, photos, today)
	if err != nil {
		return err
	}

	doc, err := form.Render(rep, cfg.BrandingFor(), opts...)
	if err != nil {
		return err
	}
	for i := range doc.Skipped {
		logger.Printf("skipped %v", &doc.Skipped[i])
	}
	if *draft {
		fmt.Fprintln(stderr, rep.MailDraft().URL())
	}

	if *out == "-" {
		if isTerminal(stdout) {
			return errTerminal
		}
		_, err := stdout.Write(doc.Bytes)
		return err
	}
	path := outputPath(*out, rep.FileName())
	if err := writeFileAtomic(path, doc.Bytes, logger); err != nil {
		return err
	}
	logger.Printf("wrote %s (%d pages)", path, doc.Pages)
	return nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// decodeForm parses a YAML form of the given kind. Quote fields left out
// keep the defaults of a quote dated today.
func decodeForm(kind string, data []byte, photos []string, today form.Date) (form.Report, error) {
	switch kind {
	case "intake":
		var f form.IntakeForm
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing intake form: %w", err)
		}
		for _, p := range photos {
			b, err := os.ReadFile(p)
			if err != nil {
				return nil, err
			}
			f.Photos = append(f.Photos, jobpdf.ImageAttachment{Name: filepath.Base(p), Data: b})
		}
		if f.Submitted.IsZero() {
			f.Submitted = today
		}
		return &f, nil
	case "quote":
		if len(photos) > 0 {
			return nil, errors.New("-photo only applies to intake reports")
		}
		q := form.NewQuoteForm(today)
		if err := yaml.Unmarshal(data, &q); err != nil {
			return nil, fmt.Errorf("parsing quote form: %w", err)
		}
		return &q, nil
	default:
		return nil, fmt.Errorf(`unknown -kind %q (want "intake" or "quote")`, kind)
	}
}

func outputPath(out, name string) string {
	if strings.HasSuffix(out, string(filepath.Separator)) {
		return filepath.Join(out, name)
	}
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		return filepath.Join(out, name)
	}
	return out
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place. The temporary file is removed on every failure.
func writeFileAtomic(path string, data []byte, logger *log.Logger) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jobpdf-*.pdf")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Printf("removing %s: %v", tmp.Name(), rmErr)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting mode of %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
