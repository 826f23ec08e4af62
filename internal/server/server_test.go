package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/engine"
)

// fakeConverter implements Converter with canned behavior so status-code
// mapping can be tested without an engine or filesystem.
type fakeConverter struct {
	pdf        []byte
	convertErr error
	probeErr   error
	maxPayload int64
	calls      int
}

func (f *fakeConverter) Convert(_ context.Context, input html2pdf.Input) ([]byte, error) {
	f.calls++
	if f.convertErr != nil {
		return nil, f.convertErr
	}
	if err := html2pdf.ValidateHTML(input.HTML); err != nil {
		return nil, err
	}
	return f.pdf, nil
}

func (f *fakeConverter) Probe(context.Context) (string, error) {
	if f.probeErr != nil {
		return "", f.probeErr
	}
	return "FakeEngine 1.0", nil
}

func (f *fakeConverter) MaxPayload() int64 {
	if f.maxPayload > 0 {
		return f.maxPayload
	}
	return 16 << 20
}

func (f *fakeConverter) EngineBinary() string { return "prince" }

func newTestServer(t *testing.T, conv Converter) *Server {
	t.Helper()
	return New(config.Default(), conv, zerolog.Nop(), prometheus.NewRegistry())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

const validDoc = "<!DOCTYPE html><html><body><h1>Hi</h1></body></html>"

func TestConvert_JSONSubmission(t *testing.T) {
	t.Parallel()

	fake := &fakeConverter{pdf: []byte("%PDF-1.7 fake")}
	srv := newTestServer(t, fake)

	payload, _ := json.Marshal(map[string]string{"html": validDoc})
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="converted.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.7 fake", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestConvert_RawBodySubmission(t *testing.T) {
	t.Parallel()

	fake := &fakeConverter{pdf: []byte("%PDF-1.7 fake")}
	srv := newTestServer(t, fake)

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(validDoc))
	req.Header.Set("Content-Type", "text/html")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.7 fake", rec.Body.String())
}

func TestConvert_InvalidHTML(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeConverter{})

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("not html"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid HTML content", decodeError(t, rec))
}

func TestConvert_EmptyBody(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeConverter{})

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(""))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Empty request body", decodeError(t, rec))
}

func TestConvert_MissingJSONField(t *testing.T) {
	t.Parallel()

	fake := &fakeConverter{}
	srv := newTestServer(t, fake)

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(`{"document": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `Missing "html" field in JSON body`, decodeError(t, rec))
	assert.Zero(t, fake.calls, "pipeline must not run for undecodable submissions")
}

func TestConvert_InvalidJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeConverter{})

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", decodeError(t, rec))
}

func TestConvert_PayloadTooLarge(t *testing.T) {
	t.Parallel()

	fake := &fakeConverter{maxPayload: 64}
	srv := newTestServer(t, fake)

	big := "<!DOCTYPE html><html>" + strings.Repeat("x", 200) + "</html>"
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(big))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decodeError(t, rec), "File too large")
	assert.Zero(t, fake.calls, "oversized payloads must be rejected before dispatch")
}

func TestConvert_EngineFailureMapping(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err  error
		want string
	}{
		"render failed": {
			err:  &engine.RenderError{ExitCode: 1, Stderr: "prince: bad stylesheet"},
			want: "prince: bad stylesheet",
		},
		"timeout": {
			err:  fmt.Errorf("%w after 30s", engine.ErrRenderTimeout),
			want: "timed out",
		},
		"empty output": {
			err:  fmt.Errorf("%w: out.pdf is empty", engine.ErrEmptyOutput),
			want: "no output",
		},
		"unavailable": {
			err:  fmt.Errorf("%w: exec: not found", engine.ErrEngineUnavailable),
			want: "engine unavailable",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t, &fakeConverter{convertErr: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(validDoc))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			msg := decodeError(t, rec)
			assert.Contains(t, msg, "Conversion failed")
			assert.Contains(t, msg, tc.want)
		})
	}
}

func TestConvert_DiagnosticIsTruncated(t *testing.T) {
	t.Parallel()

	longStderr := strings.Repeat("e", 5000)
	srv := newTestServer(t, &fakeConverter{
		convertErr: &engine.RenderError{ExitCode: 1, Stderr: longStderr},
	})

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(validDoc))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	msg := decodeError(t, rec)
	assert.Less(t, len(msg), 600, "raw engine stderr must not leak unbounded")
	assert.True(t, strings.HasSuffix(msg, "..."))
}

func TestHealth_Healthy(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeConverter{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.True(t, body.EngineAvailable)
	assert.Equal(t, "FakeEngine 1.0", body.EngineVersion)
}

func TestHealth_EngineUnavailable(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeConverter{
		probeErr: fmt.Errorf("%w: exec: \"prince\": not found", engine.ErrEngineUnavailable),
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.False(t, body.EngineAvailable)
	assert.NotEmpty(t, body.Error)
}

func TestIndex(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeConverter{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "HTML to PDF Converter API", body["name"])
	usage, ok := body["usage"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "16MB", usage["max_size"])
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeConverter{pdf: []byte("%PDF")})

	// Drive one conversion so the counter has a sample.
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(validDoc))
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "html2pdf_conversions_total")
}

func TestSanitizeDiagnostic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", sanitizeDiagnostic("a\n  b\t\nc"))
	long := strings.Repeat("x", 1000)
	got := sanitizeDiagnostic(long)
	assert.Len(t, got, maxDiagnosticLen+3)
}
