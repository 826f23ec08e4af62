package html2pdf

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/alnah/go-html2pdf/internal/engine"
	"github.com/alnah/go-html2pdf/internal/scratch"
)

// renderer abstracts the external engine to enable testing without real
// subprocesses. *engine.Engine is the production implementation.
type renderer interface {
	Render(ctx context.Context, inputPath, outputPath string) ([]byte, error)
	Probe(ctx context.Context) (string, error)
}

// Compile-time interface check
var _ renderer = (*engine.Engine)(nil)

// Service orchestrates the HTML-to-PDF pipeline. It holds only read-only
// configuration and a shared engine handle; concurrent Convert calls are
// fully independent.
type Service struct {
	cfg      serviceConfig
	renderer renderer
	sem      *semaphore.Weighted // nil = unbounded
	logger   zerolog.Logger
}

// New creates a Service with default configuration (prince, 30s timeout,
// 16 MiB payload cap, unbounded concurrency). Use options to customize.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			bin:          "prince",
			timeout:      DefaultTimeout,
			probeTimeout: DefaultProbeTimeout,
			maxPayload:   DefaultMaxPayload,
		},
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create the engine if not injected (e.g., by tests)
	if s.renderer == nil {
		eng := engine.New(s.cfg.bin, s.cfg.timeout, s.cfg.probeTimeout)
		eng.Logger = s.logger.With().Str("component", "engine").Logger()
		s.renderer = eng
	}

	if s.cfg.maxConcurrent > 0 {
		s.sem = semaphore.NewWeighted(int64(s.cfg.maxConcurrent))
	}

	return s
}

// Convert runs the full pipeline and returns the PDF as bytes.
//
// The sequence is fixed: size gate, validation, optional concurrency gate,
// scratch workspace, engine invocation, artifact read-back. Validation
// failures allocate nothing and spawn nothing. The workspace is released on
// every exit path.
func (s *Service) Convert(ctx context.Context, input Input) ([]byte, error) {
	if int64(len(input.HTML)) > s.cfg.maxPayload {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(input.HTML), s.cfg.maxPayload)
	}
	if err := ValidateHTML(input.HTML); err != nil {
		return nil, err
	}

	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("waiting for engine slot: %w", err)
		}
		defer s.sem.Release(1)
	}

	ws, err := scratch.New(s.cfg.scratchDir, []byte(input.HTML), s.logger)
	if err != nil {
		return nil, fmt.Errorf("preparing workspace: %w", err)
	}
	defer ws.Cleanup()

	artifact, err := s.renderer.Render(ctx, ws.InputPath, ws.OutputPath)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int("payload", len(input.HTML)).Int("artifact", len(artifact)).
		Msg("conversion complete")
	return artifact, nil
}

// Probe reports whether the rendering engine is invocable. It backs the
// transport liveness check and returns the engine's version string on
// success.
func (s *Service) Probe(ctx context.Context) (string, error) {
	return s.renderer.Probe(ctx)
}

// MaxPayload returns the configured payload cap in bytes, for transport
// layers that enforce the same bound before dispatching.
func (s *Service) MaxPayload() int64 {
	return s.cfg.maxPayload
}

// EngineBinary returns the configured engine executable name.
func (s *Service) EngineBinary() string {
	return s.cfg.bin
}
