// Package scratch manages the pair of temporary files backing one
// conversion: an input file holding the submitted HTML and an output file
// for the engine to fill. A Workspace is owned by exactly one request and
// is removed on every exit path.
package scratch

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Workspace is one request's scratch file pair. Never pooled or reused.
type Workspace struct {
	InputPath  string
	OutputPath string

	logger  zerolog.Logger
	cleaned bool
}

// New creates the input/output pair in dir (empty dir = system temp).
// os.CreateTemp provides atomic creation with collision-resistant names,
// so concurrent requests cannot collide. The input file is written and
// closed before return; the output file is created empty for the engine
// to overwrite.
func New(dir string, payload []byte, logger zerolog.Logger) (*Workspace, error) {
	in, err := os.CreateTemp(dir, "html2pdf-*.html")
	if err != nil {
		return nil, fmt.Errorf("creating scratch input: %w", err)
	}

	ws := &Workspace{InputPath: in.Name(), logger: logger}

	if _, err := in.Write(payload); err != nil {
		_ = in.Close()
		ws.Cleanup()
		return nil, fmt.Errorf("writing scratch input: %w", err)
	}
	if err := in.Close(); err != nil {
		ws.Cleanup()
		return nil, fmt.Errorf("closing scratch input: %w", err)
	}

	out, err := os.CreateTemp(dir, "html2pdf-*.pdf")
	if err != nil {
		ws.Cleanup()
		return nil, fmt.Errorf("creating scratch output: %w", err)
	}
	ws.OutputPath = out.Name()
	if err := out.Close(); err != nil {
		ws.Cleanup()
		return nil, fmt.Errorf("closing scratch output: %w", err)
	}

	return ws, nil
}

// Cleanup removes both files. Idempotent; removal failures are logged, not
// returned — by the time cleanup runs the request outcome is already
// decided and must not change.
func (w *Workspace) Cleanup() {
	if w.cleaned {
		return
	}
	w.cleaned = true

	w.remove(w.InputPath)
	w.remove(w.OutputPath)
}

func (w *Workspace) remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		w.logger.Warn().Str("path", path).Err(err).Msg("scratch file not removed")
	}
}
