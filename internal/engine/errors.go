package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for engine invocation failures. Callers classify with
// errors.Is; no other failure class escapes this package.
var (
	ErrRenderFailed      = errors.New("engine conversion failed")
	ErrEmptyOutput       = errors.New("engine produced no output")
	ErrRenderTimeout     = errors.New("engine conversion timed out")
	ErrEngineUnavailable = errors.New("engine unavailable")
)

// RenderError reports a non-zero engine exit. It wraps ErrRenderFailed and
// carries the exit code and captured stderr for diagnostics. Stderr is the
// raw stream; transports must truncate before exposing it to clients.
type RenderError struct {
	ExitCode int
	Stderr   string
}

func (e *RenderError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("engine exited with status %d", e.ExitCode)
	}
	return fmt.Sprintf("engine exited with status %d: %s", e.ExitCode, e.Stderr)
}

func (e *RenderError) Unwrap() error {
	return ErrRenderFailed
}
