package main

import (
	"fmt"
	"log/slog"

	"github.com/pilotprep/pilotprep/internal/config"
)

// loadAppConfig loads the application configuration from environment
// variables or a config file. Returns the loaded config and any loading
// error.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if cfg.Database.URL != "" {
		slog.Debug("Database configuration", "url_present", true)
	}
	if cfg.Syllabus.SourcePath != "" {
		slog.Debug("Syllabus configuration", "source_path", cfg.Syllabus.SourcePath)
	}

	return cfg, nil
}
