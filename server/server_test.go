package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revuapp/jobpdf/cache"
	"github.com/revuapp/jobpdf/config"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var may14 = time.Date(2025, 5, 14, 9, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, edit func(*config.Config)) (*Server, *cache.MemoryStore) {
	t.Helper()
	cfg := config.Default()
	cfg.Branding.Brand = "Cravix"
	if edit != nil {
		edit(cfg)
	}
	store := cache.NewMemoryStore()
	logger := log.New(io.Discard, "", 0)
	s, err := New(cfg, cache.New(store, time.Hour, logger), logger)
	require.NoError(t, err)
	s.now = func() time.Time { return may14 }
	return s, store
}

const quoteJSON = `{
	"company": "Cravix",
	"client_name": "Dana Whitfield",
	"client_email": "dana@example.com",
	"quote_number": "123456",
	"job_description": "Clean and seal 800 sq ft driveway",
	"quantity": 800,
	"unit_price": 1,
	"material_cost": 120,
	"labor_hours": 2.5,
	"hourly_rate": 25,
	"travel_cost": 30,
	"add_ons": "Edge trim - 40\nCall ahead",
	"discount_rate": 10
}`

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"letter"`)

	_, err := uuid.Parse(w.Header().Get(HeaderRequestID))
	assert.NoError(t, err, "response carries a generated request ID")
}

func TestRequestIDIsEchoed(t *testing.T) {
	s, _ := newTestServer(t, nil)
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, id)
	w := do(t, s, req)
	assert.Equal(t, id, w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	w = do(t, s, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(HeaderRequestID))
}

func TestRenderQuoteCaches(t *testing.T) {
	s, store := newTestServer(t, nil)

	w := do(t, s, postJSON("/v1/quote", quoteJSON))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Dana Whitfield_quote.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))
	require.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	first := w.Body.Bytes()

	w = do(t, s, postJSON("/v1/quote", quoteJSON))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Header().Get("X-Cache"))
	assert.Equal(t, first, w.Body.Bytes())
	assert.Equal(t, 1, store.Len())
}

func TestRenderQuoteValidation(t *testing.T) {
	s, store := newTestServer(t, nil)
	w := do(t, s, postJSON("/v1/quote", `{"quantity": -3, "unit_type": "Furlong"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Err      string `json:"err"`
		Problems []struct {
			Field string `json:"field"`
		} `json:"problems"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Err)
	var fields []string
	for _, p := range resp.Problems {
		fields = append(fields, p.Field)
	}
	assert.Equal(t, []string{"client_name", "unit_type", "quantity"}, fields)
	assert.Equal(t, 0, store.Len(), "invalid requests are not cached")
}

func TestMalformedJSON(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, postJSON("/v1/quote", `{"quantity": `))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "err")
}

func TestQuoteSummary(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, postJSON("/v1/quote/summary", quoteJSON))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Lines []struct {
			Label string `json:"label"`
			Value string `json:"value"`
		} `json:"lines"`
		Total struct {
			Label  string  `json:"label"`
			Value  string  `json:"value"`
			Amount float64 `json:"amount"`
		} `json:"total"`
		Draft struct {
			Subject string `json:"subject"`
			Mailto  string `json:"mailto"`
		} `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Total Due", resp.Total.Label)
	assert.Equal(t, "$1,006.45", resp.Total.Value)
	assert.InDelta(t, 1006.453125, resp.Total.Amount, 1e-9)
	require.Len(t, resp.Lines, 9)
	assert.Equal(t, "Subtotal", resp.Lines[6].Label)
	assert.Equal(t, "Service Quote from Cravix", resp.Draft.Subject)
	assert.True(t, strings.HasPrefix(resp.Draft.Mailto, "mailto:?subject="))
}

func intakeBody(t *testing.T, formJSON string, photos map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField(fieldForm, formJSON))
	for name, data := range photos {
		part, err := mw.CreateFormFile(fieldPhotos, name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	img.Set(0, 0, color.Gray{Y: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

const intakeJSON = `{
	"full_name": "Dana Whitfield",
	"email": "dana@example.com",
	"phone": "555-0100",
	"service": "Driveway sealing",
	"notes": "Gate code 4411"
}`

func TestRenderIntake(t *testing.T) {
	s, _ := newTestServer(t, nil)
	body, ctype := intakeBody(t, intakeJSON, map[string][]byte{
		"front.png": pngBytes(t, 400, 300),
		"notes.txt": []byte("not an image"),
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/intake", body)
	req.Header.Set("Content-Type", ctype)
	w := do(t, s, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `attachment; filename="Dana Whitfield_intake.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestRenderIntakeValidation(t *testing.T) {
	s, _ := newTestServer(t, nil)
	body, ctype := intakeBody(t, `{"email": "nope"}`, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/intake", body)
	req.Header.Set("Content-Type", ctype)
	w := do(t, s, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"full_name"`)
}

func TestRenderIntakeTooLarge(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.Config) { cfg.Server.MaxUploadBytes = 1 << 10 })
	body, ctype := intakeBody(t, intakeJSON, map[string][]byte{"big.png": bytes.Repeat([]byte{0}, 4<<10)})
	req := httptest.NewRequest(http.MethodPost, "/v1/intake", body)
	req.Header.Set("Content-Type", ctype)
	w := do(t, s, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
}

func TestIntakeDraft(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, postJSON("/v1/intake/draft", intakeJSON))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp["mailto"], "mailto:?subject="))
	assert.Contains(t, resp["body"], "Dana Whitfield")
}

func TestNewRejectsBadRenderConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Template = "a3"
	_, err := New(cfg, nil, log.New(io.Discard, "", 0))
	assert.Error(t, err)
}
