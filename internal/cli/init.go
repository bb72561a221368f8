// Package cli holds the start-up steps shared by cmd/finfamily and
// cmd/finfamily-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finfamily/internal/backend"
	"finfamily/internal/config"
	"finfamily/internal/core"
	"finfamily/internal/ledger"
	"finfamily/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and makes it the
// slog default.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{Level: log.ParseLevel(level)})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig reads the environment and validates it.
func LoadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		return nil, err
	}
	return cfg, nil
}

// Ledger is an opened backend plus the store loaded from it.
type Ledger struct {
	Store   *ledger.Store
	Backend *backend.BackendResult
}

// Close releases the backend connection.
func (l *Ledger) Close() error {
	if l == nil {
		return nil
	}
	return l.Backend.Close()
}

// OpenLedger opens the configured backend and loads the ledger from it.
// When the backend still needs settings it returns a *core.ConfigurationError
// and no ledger, so callers can keep running in a configuration-required state.
func OpenLedger(ctx context.Context, cfg *config.Config, opts ledger.Options, logger *log.Logger) (*Ledger, error) {
	if missing := cfg.RequiredState(); missing != nil {
		logger.Warn("Backend configuration required",
			"backend", cfg.DataBackend,
			"missing", missing.Missing)
		return nil, missing
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = logger
	}
	store := ledger.New(res.Persistence, opts)
	if err := store.Load(ctx); err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return &Ledger{Store: store, Backend: res}, nil
}

// IsConfigurationRequired reports whether err only means settings are missing.
func IsConfigurationRequired(err error) (*core.ConfigurationError, bool) {
	var ce *core.ConfigurationError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs once the signal arrives and gets at most timeout to finish.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		if cleanup == nil {
			return
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		cleanup(shutdownCtx)
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}
