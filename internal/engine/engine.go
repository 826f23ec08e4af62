// Package engine invokes the external rendering binary that turns an HTML
// file into a PDF. The binary is treated as a black box: one input path in,
// one output path out, stderr captured for diagnostics. Prince's CLI shape
// ("prince in.html -o out.pdf", "prince --version") is the default contract.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-html2pdf/internal/process"
)

// Default timeouts, matching the service configuration defaults.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultProbeTimeout = 5 * time.Second
)

// waitDelay gives the killed process group a moment to be reaped before
// Wait returns with the context error.
const waitDelay = 2 * time.Second

// Engine runs conversions through a single external binary. It holds no
// per-request state; one Engine value is shared by all requests.
type Engine struct {
	Bin          string
	Timeout      time.Duration
	ProbeTimeout time.Duration
	Logger       zerolog.Logger
}

// New creates an Engine for the given binary. Zero durations fall back to
// the package defaults.
func New(bin string, timeout, probeTimeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	return &Engine{
		Bin:          bin,
		Timeout:      timeout,
		ProbeTimeout: probeTimeout,
		Logger:       zerolog.Nop(),
	}
}

// Render converts inputPath to outputPath and returns the artifact bytes.
// The child is placed in its own process group and the whole group is
// killed when the timeout fires, so no writer outlives the caller's scratch
// files. Outcomes are classified in order: spawn failure, timeout, non-zero
// exit, empty output.
func (e *Engine) Render(ctx context.Context, inputPath, outputPath string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.Bin, inputPath, "-o", outputPath)
	cmd.SysProcAttr = process.GroupAttr()
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = io.Discard // stdout carries no data in this contract

	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}

	e.Logger.Debug().Str("bin", e.Bin).Str("input", inputPath).Str("output", outputPath).
		Msg("starting engine")

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}

	err := cmd.Wait()
	if ctx.Err() == context.DeadlineExceeded {
		e.Logger.Warn().Str("bin", e.Bin).Dur("timeout", e.Timeout).Msg("engine timed out, process group killed")
		return nil, fmt.Errorf("%w after %s", ErrRenderTimeout, e.Timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			renderErr := &RenderError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
			e.Logger.Error().Int("exit_code", renderErr.ExitCode).Str("stderr", renderErr.Stderr).
				Msg("engine exited non-zero")
			return nil, renderErr
		}
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}

	artifact, err := readArtifact(outputPath)
	if err != nil {
		return nil, err
	}

	e.Logger.Debug().Int("size", len(artifact)).Msg("engine produced artifact")
	return artifact, nil
}

// Probe checks that the engine binary is invocable by running its version
// flag. Any successful exit means "reachable"; the trimmed version line is
// returned for the health report.
func (e *Engine) Probe(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.ProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.Bin, "--version")
	cmd.SysProcAttr = process.GroupAttr()
	cmd.WaitDelay = waitDelay

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: probe timed out after %s", ErrEngineUnavailable, e.ProbeTimeout)
		}
		return "", fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}

	version := strings.TrimSpace(string(out))
	if i := strings.IndexByte(version, '\n'); i >= 0 {
		version = version[:i]
	}
	return version, nil
}

// readArtifact returns the output file's contents, rejecting missing or
// zero-length artifacts. An engine that exits zero without writing output
// is still a failed conversion.
func readArtifact(outputPath string) ([]byte, error) {
	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyOutput, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrEmptyOutput, outputPath)
	}

	artifact, err := os.ReadFile(outputPath) // #nosec G304 -- path is service-owned scratch
	if err != nil {
		return nil, fmt.Errorf("%w: reading artifact: %v", ErrEmptyOutput, err)
	}
	return artifact, nil
}
