// Package cli provides common initialization shared by cmd/laplata and
// cmd/laplata-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"laplata/internal/backend"
	"laplata/internal/config"
	applog "laplata/internal/log"
)

// SetupLogger initializes structured logging for a binary and sets it
// as the process default.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(os.Getenv("LOG_LEVEL"))
	cfg.Format = os.Getenv("LOG_FORMAT")
	cfg.Component = component

	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// OpenBackend builds the configured slot store or exits on failure.
func OpenBackend(logger *applog.Logger, cfg *config.Config) *backend.Result {
	result, err := backend.Open(cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize storage backend", applog.FieldError, err.Error())
		os.Exit(1)
	}
	return result
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	return ctx, cancel
}

// ShutdownTimeout bounds how long a binary waits for in-flight work on
// the way out.
const ShutdownTimeout = 10 * time.Second
