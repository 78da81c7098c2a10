package main

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/revuapp/jobpdf"
)

const quoteYAML = `company: Cravix
client_name: Dana Whitfield
quote_number: "123456"
job_description: Clean and seal driveway
quantity: 800
unit_price: 1
`

const intakeYAML = `full_name: Dana Whitfield
email: dana@example.com
service: Driveway sealing
preferred_date: 2025-06-02
`

func writeTemp(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestQuoteToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-kind", "quote", "-in", "-"}, strings.NewReader(quoteYAML), &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}
	if !bytes.HasPrefix(stdout.Bytes(), []byte("%PDF-")) {
		t.Errorf("stdout is not a PDF: %q", stdout.Bytes()[:min(16, stdout.Len())])
	}
}

func TestIntakeIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	in := writeTemp(t, dir, "intake.yaml", []byte(intakeYAML))

	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	photo := writeTemp(t, dir, "front.jpg", buf.Bytes())
	bad := writeTemp(t, dir, "notes.txt", []byte("not a photo"))

	outDir := filepath.Join(dir, "reports")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	args := []string{"-kind", "intake", "-in", in, "-photo", photo, "-photo", bad, "-out", outDir, "-draft"}
	if err := run(args, nil, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "Dana Whitfield_intake.pdf" {
		t.Errorf("output directory holds %v", entries)
	}
	if !strings.Contains(stderr.String(), "skipped photo 2 (notes.txt)") {
		t.Errorf("stderr does not report the skipped photo:\n%s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "mailto:?subject=") {
		t.Errorf("stderr lacks the email draft:\n%s", stderr.String())
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeTemp(t, dir, "quote.yaml", []byte(quoteYAML))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"-kind", "quote"}, "-in is required"},
		{"unknown kind", []string{"-kind", "invoice", "-in", in}, "unknown -kind"},
		{"photo on quote", []string{"-kind", "quote", "-in", in, "-photo", in}, "only applies to intake"},
		{"missing file", []string{"-kind", "quote", "-in", filepath.Join(dir, "none.yaml")}, "no such file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, nil, io.Discard, io.Discard)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestInvalidForm(t *testing.T) {
	err := run([]string{"-kind", "intake", "-in", "-"}, strings.NewReader("email: nope\n"), io.Discard, io.Discard)
	if !errors.Is(err, jobpdf.ErrInvalidRecord) {
		t.Errorf("err = %v, want ErrInvalidRecord", err)
	}
}

func TestWriteFileAtomicCleansUp(t *testing.T) {
	dir := t.TempDir()
	logger := log.New(io.Discard, "", 0)

	path := filepath.Join(dir, "out.pdf")
	if err := writeFileAtomic(path, []byte("%PDF-1.3"), logger); err != nil {
		t.Fatalf("writeFileAtomic: %v", err)
	}
	// Renaming over a directory fails after the temporary file is written.
	blocked := filepath.Join(dir, "blocked")
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(blocked, "keep"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := writeFileAtomic(blocked, []byte("%PDF-1.3"), logger); err == nil {
		t.Fatal("renaming over a non-empty directory succeeded")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if strings.Join(names, ",") != "blocked,out.pdf" {
		t.Errorf("directory holds %v, want no temporary files", names)
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	if got := outputPath(dir, "a.pdf"); got != filepath.Join(dir, "a.pdf") {
		t.Errorf("existing directory: %q", got)
	}
	if got := outputPath(filepath.Join(dir, "x.pdf"), "a.pdf"); got != filepath.Join(dir, "x.pdf") {
		t.Errorf("file path: %q", got)
	}
}

func TestVersion(t *testing.T) {
	var stdout bytes.Buffer
	if err := run([]string{"-version"}, nil, &stdout, io.Discard); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "jobpdf "+version+"\n" {
		t.Errorf("version output = %q", stdout.String())
	}
}
