package html2pdf

import (
	"errors"

	"github.com/alnah/go-html2pdf/internal/engine"
)

// Sentinel errors for input validation. Engine-side failures are defined in
// internal/engine and re-exported below so callers match every outcome from
// one package.
var (
	ErrEmptyHTML       = errors.New("html content cannot be empty")
	ErrInvalidHTML     = errors.New("invalid HTML content")
	ErrPayloadTooLarge = errors.New("payload exceeds maximum size")
)

// Engine failure classes, one per way a conversion can go wrong after
// validation passed. Exactly one of these wraps any error returned from a
// render attempt.
var (
	// ErrRenderFailed: the engine exited non-zero. The wrapped
	// engine.RenderError carries the exit code and captured stderr.
	ErrRenderFailed = engine.ErrRenderFailed

	// ErrEmptyOutput: the engine exited zero but wrote no usable artifact.
	ErrEmptyOutput = engine.ErrEmptyOutput

	// ErrRenderTimeout: the engine exceeded the configured wall-clock bound
	// and was killed.
	ErrRenderTimeout = engine.ErrRenderTimeout

	// ErrEngineUnavailable: the engine binary could not be started at all
	// (missing, not executable). Also the liveness probe's failure mode.
	ErrEngineUnavailable = engine.ErrEngineUnavailable
)
