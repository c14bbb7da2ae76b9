package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/slack-github-tracker/internal/config"
	"github.com/phrazzld/slack-github-tracker/internal/platform/postgres"
)

// setupAppDatabase establishes a connection to the database.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("database connection established")
	return db, nil
}
