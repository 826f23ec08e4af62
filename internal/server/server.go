// Package server is the HTTP transport adapter: it decodes submissions,
// dispatches them to the conversion pipeline and maps classified errors to
// status codes. It re-interprets nothing — the pipeline's taxonomy is the
// single source of truth for failure classes.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/metrics"
)

// shutdownGrace bounds how long in-flight conversions may drain after a
// termination signal.
const shutdownGrace = 30 * time.Second

// Converter is the pipeline surface the transport depends on.
// *html2pdf.Service is the production implementation.
type Converter interface {
	Convert(ctx context.Context, input html2pdf.Input) ([]byte, error)
	Probe(ctx context.Context) (string, error)
	MaxPayload() int64
	EngineBinary() string
}

// Server wires the router, the pipeline and the instrumentation.
type Server struct {
	converter Converter
	router    *chi.Mux
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	listen    string
}

// New builds a Server around the given converter.
func New(cfg *config.Config, converter Converter, logger zerolog.Logger, reg *prometheus.Registry) *Server {
	s := &Server{
		converter: converter,
		logger:    logger,
		metrics:   metrics.New(reg),
		listen:    cfg.Listen,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(logger))
	r.Use(chimw.Recoverer)

	r.Group(func(r chi.Router) {
		if cfg.Limits.RatePerMinute > 0 {
			r.Use(httprate.LimitByIP(cfg.Limits.RatePerMinute, time.Minute))
		}
		r.Post("/convert", s.handleConvert)
	})

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleIndex)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.router = r
	return s
}

// Handler returns the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then drains gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("listen", s.listen).Msg("server started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
