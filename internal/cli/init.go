// Package cli provides common CLI initialization utilities and the output
// renderers shared by the financas commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"financas/internal/config"
	"financas/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger installs a charmbracelet handler on w at the given level and
// makes it the default logger. Unknown levels fall back to warn.
func SetupLogger(w io.Writer, level string) *log.Logger {
	lvl, ok := log.ParseLevel(level)
	if !ok || level == "" {
		lvl, _ = log.ParseLevel(config.DefaultLogLevel)
	}
	if w == nil {
		w = os.Stderr
	}
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentApp,
		Handler:   log.NewHandler(w, lvl),
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment, applies
// overrides and validates the result.
func LoadAndValidateConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg := config.Load()
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM. The
// returned stop function releases the signal handler.
func ShutdownContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			if logger != nil {
				logger.Info("Shutdown signal received", "signal", sig.String())
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
