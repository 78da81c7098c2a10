// Package pdftext reads back the text a generated report shows.
//
// It understands the files the renderer writes: a classic cross-reference
// table, a flat page tree and one content stream per page, either plain or
// Flate-compressed. Strings are decoded from Windows-1252, the encoding the
// renderer uses for the core fonts. Anything else is reported as
// ErrMalformed rather than guessed at.
package pdftext

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformed is returned for files this package cannot follow.
var ErrMalformed = errors.New("pdftext: malformed or unsupported PDF")

// Page is the text of one page. Each entry is the text of one text object
// (a BT...ET block), in drawing order.
type Page struct {
	Number int
	Text   []string
}

// Contains reports whether any text object on the page contains s.
func (p Page) Contains(s string) bool {
	return p.Index(s) >= 0
}

// Index returns the position of the first text object containing s, or -1.
func (p Page) Index(s string) int {
	for i, t := range p.Text {
		if strings.Contains(t, s) {
			return i
		}
	}
	return -1
}

// Read returns the text of every page of the PDF in data.
func Read(data []byte) ([]Page, error) {
	f, err := open(data)
	if err != nil {
		return nil, err
	}

	kids, err := f.pageRefs()
	if err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(kids))
	for i, ref := range kids {
		content, err := f.pageContent(ref)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		text, err := showText(content)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, Page{Number: i + 1, Text: text})
	}
	return pages, nil
}

type file struct {
	data    []byte
	offsets map[int]int // object number to byte offset
	root    int
}

var (
	reRoot     = regexp.MustCompile(`/Root (\d+) 0 R`)
	rePages    = regexp.MustCompile(`/Pages (\d+) 0 R`)
	reKids     = regexp.MustCompile(`/Kids \[([^\]]*)\]`)
	reRef      = regexp.MustCompile(`(\d+) 0 R`)
	reContents = regexp.MustCompile(`/Contents (\d+) 0 R`)
	reLength   = regexp.MustCompile(`/Length (\d+)`)
)

func open(data []byte) (*file, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}

	tail := data[max(0, len(data)-1024):]
	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return nil, fmt.Errorf("%w: startxref not found", ErrMalformed)
	}
	fields := bytes.Fields(tail[i+len("startxref"):])
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: startxref without offset", ErrMalformed)
	}
	start, err := strconv.Atoi(string(fields[0]))
	if err != nil || start < 0 || start >= len(data) {
		return nil, fmt.Errorf("%w: bad startxref offset %q", ErrMalformed, fields[0])
	}

	f := &file{data: data, offsets: make(map[int]int)}
	trailer, err := f.readXref(start)
	if err != nil {
		return nil, err
	}
	m := reRoot.FindSubmatch(trailer)
	if m == nil {
		return nil, fmt.Errorf("%w: trailer has no /Root", ErrMalformed)
	}
	f.root, _ = strconv.Atoi(string(m[1]))
	return f, nil
}

// readXref parses the cross-reference table at start and returns the
// trailer dictionary that follows it.
func (f *file) readXref(start int) ([]byte, error) {
	lines := strings.Split(string(f.data[start:]), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != "xref" {
		return nil, fmt.Errorf("%w: no xref table at %d", ErrMalformed, start)
	}

	n := 1
	for n < len(lines) {
		head := strings.Fields(lines[n])
		if len(head) == 0 {
			n++
			continue
		}
		if head[0] == "trailer" {
			break
		}
		if len(head) != 2 {
			return nil, fmt.Errorf("%w: bad xref subsection %q", ErrMalformed, lines[n])
		}
		first, err1 := strconv.Atoi(head[0])
		count, err2 := strconv.Atoi(head[1])
		if err1 != nil || err2 != nil || n+count >= len(lines) {
			return nil, fmt.Errorf("%w: bad xref subsection %q", ErrMalformed, lines[n])
		}
		for j := 0; j < count; j++ {
			entry := strings.Fields(lines[n+1+j])
			if len(entry) != 3 {
				return nil, fmt.Errorf("%w: bad xref entry %q", ErrMalformed, lines[n+1+j])
			}
			if entry[2] != "n" {
				continue
			}
			off, err := strconv.Atoi(entry[0])
			if err != nil || off >= len(f.data) {
				return nil, fmt.Errorf("%w: bad xref entry %q", ErrMalformed, lines[n+1+j])
			}
			f.offsets[first+j] = off
		}
		n += 1 + count
	}
	if n >= len(lines) {
		return nil, fmt.Errorf("%w: trailer not found", ErrMalformed)
	}
	return []byte(strings.Join(lines[n:], "\n")), nil
}

// object returns the dictionary of object num and its stream, if any.
func (f *file) object(num int) (dict, stream []byte, err error) {
	off, ok := f.offsets[num]
	if !ok {
		return nil, nil, fmt.Errorf("%w: object %d not in xref", ErrMalformed, num)
	}
	body := f.data[off:]
	head := fmt.Sprintf("%d 0 obj", num)
	if !bytes.HasPrefix(body, []byte(head)) {
		return nil, nil, fmt.Errorf("%w: object %d not at offset %d", ErrMalformed, num, off)
	}
	body = body[len(head):]

	end := bytes.Index(body, []byte("endobj"))
	at := bytes.Index(body, []byte("stream\n"))
	if at < 0 || (end >= 0 && end < at) {
		if end < 0 {
			return nil, nil, fmt.Errorf("%w: object %d is not terminated", ErrMalformed, num)
		}
		return body[:end], nil, nil
	}

	dict = body[:at]
	m := reLength.FindSubmatch(dict)
	if m == nil {
		return nil, nil, fmt.Errorf("%w: stream %d has no direct /Length", ErrMalformed, num)
	}
	n, _ := strconv.Atoi(string(m[1]))
	data := body[at+len("stream\n"):]
	if n > len(data) {
		return nil, nil, fmt.Errorf("%w: stream %d is truncated", ErrMalformed, num)
	}
	return dict, data[:n], nil
}

// pageRefs returns the object numbers of the pages in order.
func (f *file) pageRefs() ([]int, error) {
	catalog, _, err := f.object(f.root)
	if err != nil {
		return nil, err
	}
	m := rePages.FindSubmatch(catalog)
	if m == nil {
		return nil, fmt.Errorf("%w: catalog has no /Pages", ErrMalformed)
	}
	num, _ := strconv.Atoi(string(m[1]))
	return f.kids(num, 0)
}

func (f *file) kids(num, depth int) ([]int, error) {
	if depth > 16 {
		return nil, fmt.Errorf("%w: page tree too deep", ErrMalformed)
	}
	node, _, err := f.object(num)
	if err != nil {
		return nil, err
	}
	if !bytes.Contains(node, []byte("/Type /Pages")) {
		return []int{num}, nil
	}
	m := reKids.FindSubmatch(node)
	if m == nil {
		return nil, fmt.Errorf("%w: page tree node %d has no /Kids", ErrMalformed, num)
	}
	var refs []int
	for _, r := range reRef.FindAllSubmatch(m[1], -1) {
		kid, _ := strconv.Atoi(string(r[1]))
		sub, err := f.kids(kid, depth+1)
		if err != nil {
			return nil, err
		}
		refs = append(refs, sub...)
	}
	return refs, nil
}

func (f *file) pageContent(num int) ([]byte, error) {
	page, _, err := f.object(num)
	if err != nil {
		return nil, err
	}
	m := reContents.FindSubmatch(page)
	if m == nil {
		return nil, nil // blank page
	}
	cnum, _ := strconv.Atoi(string(m[1]))
	dict, stream, err := f.object(cnum)
	if err != nil {
		return nil, err
	}
	if !bytes.Contains(dict, []byte("/FlateDecode")) {
		return stream, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(stream))
	if err != nil {
		return nil, fmt.Errorf("%w: content %d: %v", ErrMalformed, cnum, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: content %d: %v", ErrMalformed, cnum, err)
	}
	return out, nil
}
