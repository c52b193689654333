// Package main implements the entry point for the Taskie API server, the
// backend of a task marketplace where requesters post paid jobs and taskers
// browse, favorite and discuss them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
)

// main is the entry point for the taskie-api server. With -migrate it runs a
// migration command against the postgres store and exits.
func main() {
	migrateCmd := flag.String("migrate", "",
		"run a database migration command (up, down, status, version, reset) and exit")
	flag.Parse()

	fmt.Println("Taskie API Server Starting...")

	cfg, err := loadAppConfig()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	logger, err := setupAppLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	ctx := context.Background()

	if *migrateCmd != "" {
		if err := runMigrations(ctx, cfg, *migrateCmd, logger); err != nil {
			logger.Error("Migration failed", slog.String("command", *migrateCmd), slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app, err := newApplication(ctx, cfg, logger, backend)
	if err != nil {
		backend.close(logger)
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app.autoSeed(ctx)

	if err := app.Run(ctx); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
