// Command html2pdf-server exposes the HTML-to-PDF pipeline over HTTP.
//
// Configuration precedence: flags > HTML2PDF_* environment > config file >
// defaults. The engine binary is probed once at startup; a missing engine
// is reported but does not prevent the server from starting, so the health
// endpoint can keep answering truthfully.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("html2pdf-server", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to YAML config file")
	listen := flags.String("listen", "", "HTTP listen address (overrides config)")
	engineBin := flags.String("engine", "", "rendering engine binary (overrides config)")
	timeout := flags.Duration("timeout", 0, "conversion timeout (overrides config)")
	workers := flags.Int("workers", -1, "max concurrent engine processes, 0 = unbounded (overrides config)")
	logLevel := flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	logFormat := flags.String("log-format", "", "log format: json or console")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	if *showVersion {
		fmt.Println("html2pdf-server", Version)
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	config.ApplyEnv(cfg)
	config.WarnUnknownEnvVars(os.Stderr)

	// Flags win over everything.
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *engineBin != "" {
		cfg.Engine.Bin = *engineBin
	}
	if *timeout > 0 {
		cfg.Engine.Timeout = *timeout
	}
	if *workers >= 0 {
		cfg.Limits.MaxConcurrent = *workers
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug().Msgf(format, args...)
	}))

	svc := html2pdf.New(
		html2pdf.WithLogger(logger),
		html2pdf.WithEngineBinary(cfg.Engine.Bin),
		html2pdf.WithTimeout(cfg.Engine.Timeout),
		html2pdf.WithProbeTimeout(cfg.Engine.ProbeTimeout),
		html2pdf.WithMaxPayload(cfg.Limits.MaxPayloadBytes),
		html2pdf.WithScratchDir(cfg.ScratchDir),
		html2pdf.WithMaxConcurrent(cfg.Limits.MaxConcurrent),
	)

	probeCtx, cancel := context.WithTimeout(context.Background(), cfg.Engine.ProbeTimeout+time.Second)
	if version, probeErr := svc.Probe(probeCtx); probeErr != nil {
		logger.Warn().Err(probeErr).Str("bin", cfg.Engine.Bin).
			Msg("engine not reachable at startup; conversions will fail until it is installed")
	} else {
		logger.Info().Str("bin", cfg.Engine.Bin).Str("version", version).Msg("engine ready")
	}
	cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	srv := server.New(cfg, svc, logger, reg)
	return srv.Run(ctx)
}

// loadConfig resolves the config file from the flag or HTML2PDF_CONFIG.
// No file at all is fine; defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("HTML2PDF_CONFIG")
	}
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the log config.
func newLogger(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), errors.New("unknown log level " + cfg.Level)
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Str("service", "html2pdf").Logger(), nil
}
