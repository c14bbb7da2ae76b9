package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/slack-github-tracker/internal/config"
	"github.com/spf13/viper"
)

// loadAppConfig reads the optional config file into v and returns the
// validated configuration.
func loadAppConfig(v *viper.Viper, path string) (*config.Config, error) {
	if err := config.ReadFile(v, path); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg, err := config.LoadWith(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// logConfig logs the non-secret parts of cfg.
func logConfig(logger *slog.Logger, cfg *config.Config) {
	logger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"graceful_timeout", cfg.Server.GracefulTimeout(),
		"abandon_timeout", cfg.Server.AbandonTimeout(),
		"webhook_requests_per_minute", cfg.RateLimit.WebhookRequestsPerMinute)
}
