package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskie-api/internal/config"
	"github.com/phrazzld/taskie-api/internal/platform/postgres"
)

// runMigrations executes a goose command against the configured postgres
// database. The mongo store has no schema to migrate.
func runMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	if cfg.Database.Driver != driverPostgres {
		return fmt.Errorf("migrations require the postgres driver, got %q", cfg.Database.Driver)
	}

	logger.Info("Executing migrations",
		slog.String("command", command),
		slog.String("database", maskPassword(cfg.Database.URL)))

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	return postgres.Migrate(ctx, db, command, logger)
}
