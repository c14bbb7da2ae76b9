package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/slack-github-tracker/internal/config"
	"github.com/phrazzld/slack-github-tracker/internal/platform/postgres"
)

// handleMigrations runs one goose command against the configured database.
func handleMigrations(ctx context.Context, cfg *config.Config, command string) error {
	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database connection", "error", err)
		}
	}()

	logger.Info("executing migrations", slog.String("command", command))
	if err := postgres.Migrate(ctx, db, command, logger); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
