package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/metrics"
)

// maxDiagnosticLen bounds how much engine stderr may leak into a client
// response. The full stream still goes to the logs.
const maxDiagnosticLen = 512

// convertRequest is the JSON submission shape.
type convertRequest struct {
	HTML *string `json:"html"`
}

// errorResponse is the uniform failure body.
type errorResponse struct {
	Error string `json:"error"`
}

// healthResponse is the liveness probe body.
type healthResponse struct {
	Status          string `json:"status"`
	EngineAvailable bool   `json:"engine_available"`
	EngineVersion   string `json:"engine_version,omitempty"`
	Error           string `json:"error,omitempty"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := zerolog.Ctx(r.Context())

	// Reject oversized submissions before reading the body.
	if r.ContentLength > s.converter.MaxPayload() {
		s.metrics.Conversions.WithLabelValues(metrics.OutcomeTooLarge).Inc()
		s.writeError(w, http.StatusRequestEntityTooLarge, s.tooLargeMessage())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.converter.MaxPayload()))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.metrics.Conversions.WithLabelValues(metrics.OutcomeTooLarge).Inc()
			s.writeError(w, http.StatusRequestEntityTooLarge, s.tooLargeMessage())
			return
		}
		logger.Warn().Err(err).Msg("reading request body")
		s.writeError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	htmlContent, badReq := decodePayload(r.Header.Get("Content-Type"), body)
	if badReq != "" {
		s.metrics.Conversions.WithLabelValues(metrics.OutcomeInvalid).Inc()
		s.writeError(w, http.StatusBadRequest, badReq)
		return
	}

	s.metrics.PayloadSize.Observe(float64(len(htmlContent)))

	pdf, err := s.converter.Convert(r.Context(), html2pdf.Input{HTML: htmlContent})
	s.metrics.Duration.Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Warn().Err(err).Msg("conversion failed")
		s.metrics.Conversions.WithLabelValues(outcomeFor(err)).Inc()
		status, msg := statusFor(err)
		s.writeError(w, status, msg)
		return
	}

	s.metrics.Conversions.WithLabelValues(metrics.OutcomeSuccess).Inc()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="converted.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	version, err := s.converter.Probe(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("engine probe failed")
		s.writeJSON(w, http.StatusInternalServerError, healthResponse{
			Status:          "unhealthy",
			EngineAvailable: false,
			Error:           sanitizeDiagnostic(err.Error()),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:          "healthy",
		EngineAvailable: true,
		EngineVersion:   version,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	maxMiB := s.converter.MaxPayload() / (1 << 20)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":        "HTML to PDF Converter API",
		"description": fmt.Sprintf("Convert HTML to PDF using %s", s.converter.EngineBinary()),
		"endpoints": map[string]string{
			"POST /convert": "Convert HTML to PDF",
			"GET /health":   "Health check",
			"GET /metrics":  "Prometheus metrics",
			"GET /":         "API information",
		},
		"usage": map[string]any{
			"content_type": "text/html or application/json",
			"max_size":     fmt.Sprintf("%dMB", maxMiB),
			"example_json": map[string]string{
				"html": "<!DOCTYPE html><html><head><title>Test</title></head><body><h1>Hello World</h1></body></html>",
			},
		},
	})
}

// decodePayload extracts the HTML payload from either submission shape:
// a JSON object with an "html" field, or the raw body itself. The second
// return value is a client-facing rejection message, empty on success.
func decodePayload(contentType string, body []byte) (html string, badReq string) {
	if strings.Contains(contentType, "application/json") {
		var req convertRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "", "Invalid JSON body"
		}
		if req.HTML == nil {
			return "", `Missing "html" field in JSON body`
		}
		return *req.HTML, ""
	}
	return string(body), ""
}

// statusFor maps a pipeline error to an HTTP status and a user-facing
// message. Engine diagnostics are truncated; nothing else from the engine's
// stderr leaves the process.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, html2pdf.ErrEmptyHTML):
		return http.StatusBadRequest, "Empty request body"
	case errors.Is(err, html2pdf.ErrInvalidHTML):
		return http.StatusBadRequest, "Invalid HTML content"
	case errors.Is(err, html2pdf.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "Payload too large"
	default:
		return http.StatusInternalServerError, "Conversion failed: " + sanitizeDiagnostic(err.Error())
	}
}

// outcomeFor picks the metrics label for a pipeline error.
func outcomeFor(err error) string {
	switch {
	case errors.Is(err, html2pdf.ErrEmptyHTML), errors.Is(err, html2pdf.ErrInvalidHTML):
		return metrics.OutcomeInvalid
	case errors.Is(err, html2pdf.ErrPayloadTooLarge):
		return metrics.OutcomeTooLarge
	case errors.Is(err, html2pdf.ErrRenderTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, html2pdf.ErrEmptyOutput):
		return metrics.OutcomeEmptyOutput
	case errors.Is(err, html2pdf.ErrEngineUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeEngineError
	}
}

// sanitizeDiagnostic flattens and truncates diagnostic text before it is
// sent to a client.
func sanitizeDiagnostic(msg string) string {
	msg = strings.Join(strings.Fields(msg), " ")
	if len(msg) > maxDiagnosticLen {
		msg = msg[:maxDiagnosticLen] + "..."
	}
	return msg
}

func (s *Server) tooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum size is %dMB", s.converter.MaxPayload()/(1<<20))
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("encoding response")
	}
}
