package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskie-api/internal/config"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
)

// loadAppConfig loads the application configuration from environment variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// setupAppLogger installs the default logger and logs the loaded
// configuration without secrets.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("environment", cfg.Server.Environment),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("uploads_backend", cfg.Uploads.Backend))
	l.Debug("Database configuration", slog.String("url", maskPassword(cfg.Database.URL)))

	return l, nil
}
