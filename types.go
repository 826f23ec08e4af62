package html2pdf

import (
	"time"

	"github.com/rs/zerolog"
)

// Input contains conversion parameters. The payload is owned by one
// Convert call and never retained.
type Input struct {
	HTML string // HTML document content (required)
}

// Default limits, mirroring the engine and transport defaults.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultProbeTimeout = 5 * time.Second
	DefaultMaxPayload   = 16 << 20 // 16 MiB
)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	bin           string
	timeout       time.Duration
	probeTimeout  time.Duration
	maxPayload    int64
	scratchDir    string
	maxConcurrent int
}

// Option configures a Service.
type Option func(*Service)

// WithEngineBinary sets the rendering engine executable (default "prince").
func WithEngineBinary(bin string) Option {
	if bin == "" {
		panic("html2pdf: WithEngineBinary requires a binary name")
	}
	return func(s *Service) {
		s.cfg.bin = bin
	}
}

// WithTimeout sets the conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2pdf: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithProbeTimeout sets the liveness probe timeout.
// Panics if d <= 0.
func WithProbeTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2pdf: WithProbeTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.probeTimeout = d
	}
}

// WithMaxPayload caps the accepted payload size in bytes.
// Panics if n <= 0.
func WithMaxPayload(n int64) Option {
	if n <= 0 {
		panic("html2pdf: WithMaxPayload size must be positive")
	}
	return func(s *Service) {
		s.cfg.maxPayload = n
	}
}

// WithScratchDir places per-request temp files in dir instead of the
// system temp directory. Useful for tests and isolated mounts.
func WithScratchDir(dir string) Option {
	return func(s *Service) {
		s.cfg.scratchDir = dir
	}
}

// WithLogger attaches a structured logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMaxConcurrent bounds the number of engine processes alive at once.
// 0 (the default) leaves conversions unbounded: one child per request.
func WithMaxConcurrent(n int) Option {
	if n < 0 {
		panic("html2pdf: WithMaxConcurrent must be >= 0")
	}
	return func(s *Service) {
		s.cfg.maxConcurrent = n
	}
}
