package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/revuapp/jobpdf"
	"github.com/revuapp/jobpdf/form"
)

func newTestServer() *Server {
	s := NewServer("jobpdf-mcp", "test", io.Discard, log.New(io.Discard, "", 0))
	RegisterTools(s, &Reports{
		Options:  []jobpdf.Option{jobpdf.WithLogger(nil)},
		Branding: form.Branding{Brand: "Cravix"},
		Now:      func() time.Time { return time.Date(2025, 5, 14, 0, 0, 0, 0, time.UTC) },
	})
	RegisterResources(s)
	return s
}

// roundTrip sends lines to s and returns every response it wrote.
func roundTrip(t *testing.T, s *Server, lines ...string) []response {
	t.Helper()
	var out bytes.Buffer
	s.out = &out
	if err := s.Serve(context.Background(), strings.NewReader(strings.Join(lines, "\n")+"\n")); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	var resps []response
	dec := json.NewDecoder(&out)
	for dec.More() {
		var r response
		if err := dec.Decode(&r); err != nil {
			t.Fatalf("decoding response: %v\n%s", err, out.String())
		}
		resps = append(resps, r)
	}
	return resps
}

func call(t *testing.T, s *Server, method string, params any) response {
	t.Helper()
	req := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		req["params"] = params
	}
	js, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	resps := roundTrip(t, s, string(js))
	if len(resps) != 1 {
		t.Fatalf("%s: got %d responses, want 1", method, len(resps))
	}
	return resps[0]
}

// decodeResult re-decodes a response result into v.
func decodeResult(t *testing.T, r response, v any) {
	t.Helper()
	if r.Error != nil {
		t.Fatalf("unexpected error: %d %s %v", r.Error.Code, r.Error.Message, r.Error.Data)
	}
	js, err := json.Marshal(r.Result)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(js, v); err != nil {
		t.Fatalf("decoding result %s: %v", js, err)
	}
}

func TestInitialize(t *testing.T) {
	var res struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
	}
	decodeResult(t, call(t, newTestServer(), "initialize", map[string]any{"protocolVersion": ProtocolVersion}), &res)
	if res.ProtocolVersion != ProtocolVersion || res.ServerInfo.Name != "jobpdf-mcp" {
		t.Errorf("initialize = %+v", res)
	}
}

func TestToolsList(t *testing.T) {
	var res struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	decodeResult(t, call(t, newTestServer(), "tools/list", nil), &res)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	want := []string{"probe_image", "quote_summary", "render_intake", "render_quote", "report_text"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("tools mismatch (-want +got):\n%s", diff)
	}
}

func TestNotificationsGetNoResponse(t *testing.T) {
	resps := roundTrip(t, newTestServer(),
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":7,"method":"ping"}`,
	)
	if len(resps) != 1 || string(*resps[0].ID) != "7" {
		t.Errorf("responses = %+v, want only the ping reply", resps)
	}
}

func TestProtocolErrors(t *testing.T) {
	s := newTestServer()
	if r := call(t, s, "prompts/list", nil); r.Error == nil || r.Error.Code != codeMethodNotFound {
		t.Errorf("unknown method: %+v", r.Error)
	}
	if r := call(t, s, "tools/call", map[string]any{"name": "merge_pdfs"}); r.Error == nil || r.Error.Code != codeInvalidParams {
		t.Errorf("unknown tool: %+v", r.Error)
	}
	resps := roundTrip(t, s, `{not json`)
	if len(resps) != 1 || resps[0].Error == nil || resps[0].Error.Code != codeParseError {
		t.Errorf("malformed line: %+v", resps)
	}
}

type toolResult struct {
	Content []struct {
		Type     string `json:"type"`
		Text     string `json:"text"`
		Resource *Blob  `json:"resource"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func callTool(t *testing.T, name string, args any) toolResult {
	t.Helper()
	var res toolResult
	decodeResult(t, call(t, newTestServer(), "tools/call", map[string]any{"name": name, "arguments": args}), &res)
	return res
}

var quoteArgs = map[string]any{"form": map[string]any{
	"company":         "Cravix",
	"client_name":     "Dana Whitfield",
	"quote_number":    "123456",
	"job_description": "Clean and seal 800 sq ft driveway",
	"quantity":        800,
	"unit_price":      1,
	"discount_rate":   10,
}}

func TestRenderQuoteTool(t *testing.T) {
	res := callTool(t, "render_quote", quoteArgs)
	if res.IsError || len(res.Content) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if !strings.HasPrefix(res.Content[0].Text, "Rendered Dana Whitfield_quote.pdf: 1 page(s)") {
		t.Errorf("summary = %q", res.Content[0].Text)
	}
	blob := res.Content[1].Resource
	if blob == nil || blob.MIMEType != "application/pdf" || blob.URI != "jobpdf://reports/Dana%20Whitfield_quote.pdf" {
		t.Fatalf("resource = %+v", blob)
	}
	pdf, err := base64.StdEncoding.DecodeString(blob.Blob)
	if err != nil || !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("blob is not a PDF (err %v)", err)
	}
}

func TestReportTextTool(t *testing.T) {
	rendered := callTool(t, "render_quote", quoteArgs)
	if rendered.IsError {
		t.Fatalf("render_quote: %+v", rendered)
	}
	res := callTool(t, "report_text", map[string]any{"data": rendered.Content[1].Resource.Blob})
	if res.IsError {
		t.Fatalf("report_text: %+v", res)
	}
	text := res.Content[0].Text
	for _, want := range []string{"--- Page 1 ---\nCravix - Service Quote\n", "Total Due", "Generated with Cravix"} {
		if !strings.Contains(text, want) {
			t.Errorf("report text lacks %q:\n%s", want, text)
		}
	}
}

func TestQuoteSummaryTool(t *testing.T) {
	res := callTool(t, "quote_summary", quoteArgs)
	if res.IsError {
		t.Fatalf("result = %+v", res)
	}
	var summary struct {
		Total struct {
			Value string `json:"value"`
		} `json:"total"`
	}
	if err := json.Unmarshal([]byte(res.Content[0].Text), &summary); err != nil {
		t.Fatal(err)
	}
	// 800 - 10% = 720, plus 6.25% tax
	if summary.Total.Value != "$765.00" {
		t.Errorf("total = %q, want $765.00", summary.Total.Value)
	}
}

func TestRenderIntakeToolReportsProblems(t *testing.T) {
	res := callTool(t, "render_intake", map[string]any{"form": map[string]any{"email": "dana@example.com"}})
	if !res.IsError || !strings.Contains(res.Content[0].Text, "full_name") {
		t.Errorf("result = %+v, want a full_name problem", res)
	}
}

func TestRenderIntakeToolSkipsBadPhotos(t *testing.T) {
	res := callTool(t, "render_intake", map[string]any{
		"form":   map[string]any{"full_name": "Dana Whitfield"},
		"photos": []map[string]any{{"name": "notes.txt", "data": base64.StdEncoding.EncodeToString([]byte("hello"))}},
	})
	if res.IsError {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Content[0].Text, "Skipped photo 1 (notes.txt)") {
		t.Errorf("summary = %q", res.Content[0].Text)
	}
}

func TestProbeImageTool(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatal(err)
	}
	res := callTool(t, "probe_image", map[string]any{"data": base64.StdEncoding.EncodeToString(buf.Bytes())})
	if res.IsError || res.Content[0].Text != `{"format":"PNG","height":6,"width":8}` {
		t.Errorf("result = %+v", res)
	}

	res = callTool(t, "probe_image", map[string]any{"data": base64.StdEncoding.EncodeToString([]byte("GIF89a"))})
	if !res.IsError {
		t.Errorf("GIF probe succeeded: %+v", res)
	}
}

func TestTemplatesResource(t *testing.T) {
	s := newTestServer()
	var list struct {
		Resources []Resource `json:"resources"`
	}
	decodeResult(t, call(t, s, "resources/list", nil), &list)
	if len(list.Resources) != 2 || list.Resources[1].URI != URITemplates {
		t.Fatalf("resources = %+v", list.Resources)
	}

	var read struct {
		Contents []ResourceContent `json:"contents"`
	}
	decodeResult(t, call(t, s, "resources/read", map[string]any{"uri": URITemplates}), &read)
	var infos []templateInfo
	if err := json.Unmarshal([]byte(read.Contents[0].Text), &infos); err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 || infos[0].Name != "a4" || infos[0].PrintableWidth != 190 {
		t.Errorf("templates = %+v", infos)
	}
}
