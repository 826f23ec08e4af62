// Package config holds the server's startup configuration: defaults,
// optional YAML file, and HTML2PDF_* environment overrides, merged in that
// order (command-line flags are applied last by the caller). Everything is
// read once at startup; there is no hot reload.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrConfigInvalid  = errors.New("invalid configuration")
)

// maxConfigSize limits YAML input to prevent memory exhaustion.
const maxConfigSize = 1 << 20

// Config holds all server configuration.
type Config struct {
	Listen     string       `yaml:"listen"`     // HTTP listen address
	ScratchDir string       `yaml:"scratchDir"` // Temp file location (empty = system temp)
	Engine     EngineConfig `yaml:"engine"`
	Limits     LimitsConfig `yaml:"limits"`
	Log        LogConfig    `yaml:"log"`
}

// EngineConfig defines the external rendering engine.
type EngineConfig struct {
	Bin          string        `yaml:"bin"`          // Executable name or path (default "prince")
	Timeout      time.Duration `yaml:"timeout"`      // Conversion timeout (default 30s)
	ProbeTimeout time.Duration `yaml:"probeTimeout"` // Liveness probe timeout (default 5s)
}

// LimitsConfig defines request bounds.
type LimitsConfig struct {
	MaxPayloadBytes int64 `yaml:"maxPayloadBytes"` // Payload cap (default 16 MiB)
	MaxConcurrent   int   `yaml:"maxConcurrent"`   // Live engine processes (0 = unbounded)
	RatePerMinute   int   `yaml:"ratePerMinute"`   // Per-IP convert requests/minute (0 = off)
}

// LogConfig defines logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // "json" or "console"
}

// Default returns the configuration matching the documented defaults.
func Default() *Config {
	return &Config{
		Listen:     ":5000",
		ScratchDir: "",
		Engine: EngineConfig{
			Bin:          "prince",
			Timeout:      30 * time.Second,
			ProbeTimeout: 5 * time.Second,
		},
		Limits: LimitsConfig{
			MaxPayloadBytes: 16 << 20,
			MaxConcurrent:   0,
			RatePerMinute:   0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML config file into a copy of the defaults. Unknown fields
// are rejected to catch typos early.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is operator-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(data) > maxConfigSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrConfigParse, maxConfigSize)
	}

	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return cfg, nil
}

// knownEnvVars lists valid HTML2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"HTML2PDF_CONFIG":        true,
	"HTML2PDF_LISTEN":        true,
	"HTML2PDF_SCRATCH_DIR":   true,
	"HTML2PDF_ENGINE_BIN":    true,
	"HTML2PDF_TIMEOUT":       true,
	"HTML2PDF_PROBE_TIMEOUT": true,
	"HTML2PDF_MAX_BYTES":     true,
	"HTML2PDF_WORKERS":       true,
	"HTML2PDF_RATE_LIMIT":    true,
	"HTML2PDF_LOG_LEVEL":     true,
	"HTML2PDF_LOG_FORMAT":    true,
}

// ApplyEnv overlays HTML2PDF_* environment variables onto cfg. Malformed
// numeric or duration values are ignored rather than fatal, matching how
// the variables behave in CI templates.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("HTML2PDF_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("HTML2PDF_SCRATCH_DIR"); v != "" {
		cfg.ScratchDir = v
	}
	if v := os.Getenv("HTML2PDF_ENGINE_BIN"); v != "" {
		cfg.Engine.Bin = v
	}
	if v := os.Getenv("HTML2PDF_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Engine.Timeout = d
		}
	}
	if v := os.Getenv("HTML2PDF_PROBE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Engine.ProbeTimeout = d
		}
	}
	if v := os.Getenv("HTML2PDF_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Limits.MaxPayloadBytes = n
		}
	}
	if v := os.Getenv("HTML2PDF_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Limits.MaxConcurrent = n
		}
	}
	if v := os.Getenv("HTML2PDF_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Limits.RatePerMinute = n
		}
	}
	if v := os.Getenv("HTML2PDF_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTML2PDF_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// WarnUnknownEnvVars writes a warning for each unrecognized HTML2PDF_*
// variable. Helps catch typos like HTML2PDF_TIMEUOT.
func WarnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "HTML2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("%w: listen address cannot be empty", ErrConfigInvalid)
	}
	if c.Engine.Bin == "" {
		return fmt.Errorf("%w: engine.bin cannot be empty", ErrConfigInvalid)
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("%w: engine.timeout must be positive", ErrConfigInvalid)
	}
	if c.Engine.ProbeTimeout <= 0 {
		return fmt.Errorf("%w: engine.probeTimeout must be positive", ErrConfigInvalid)
	}
	if c.Limits.MaxPayloadBytes <= 0 {
		return fmt.Errorf("%w: limits.maxPayloadBytes must be positive", ErrConfigInvalid)
	}
	if c.Limits.MaxConcurrent < 0 {
		return fmt.Errorf("%w: limits.maxConcurrent cannot be negative", ErrConfigInvalid)
	}
	if c.Limits.RatePerMinute < 0 {
		return fmt.Errorf("%w: limits.ratePerMinute cannot be negative", ErrConfigInvalid)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format must be json or console", ErrConfigInvalid)
	}
	if _, err := zerologLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return nil
}

// zerologLevel maps the config level names without importing zerolog here;
// the caller resolves the actual level. Kept as a plain validation table.
func zerologLevel(level string) (string, error) {
	switch strings.ToLower(level) {
	case "trace", "debug", "info", "warn", "error":
		return strings.ToLower(level), nil
	}
	return "", fmt.Errorf("unknown log level %q", level)
}
