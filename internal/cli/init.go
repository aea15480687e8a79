// Package cli provides the initialization shared by cmd/fintrack and
// cmd/fintrack-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from cfg and makes it the default.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadConfig reads the .env file and the environment, then validates.
func LoadConfig() (*config.Config, error) {
	LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenBackend creates the configured store and change feed.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.Backend, error) {
	opts, err := backend.OptionsFrom(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend config: %w", err)
	}
	return backend.NewOpener(logger).Open(ctx, opts)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Debug("Shutting down", log.FieldOperation, log.OpShutdown)
	}()
	return ctx, cancel
}
