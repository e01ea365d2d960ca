package main

import (
	"fmt"
	"log/slog"

	"github.com/pilotprep/pilotprep/internal/config"
	"github.com/pilotprep/pilotprep/internal/platform/logger"
)

// setupAppLogger configures the application logger from the server config.
// Returns the configured logger or an error if setup fails.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	return l, nil
}
