package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Slack     SlackConfig     `mapstructure:"slack"     validate:"required"`
	GitHub    GitHubConfig    `mapstructure:"github"    validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port       int    `mapstructure:"port"        validate:"required,gt=0,lt=65536"`
	LogLevel   string `mapstructure:"log_level"   validate:"required,oneof=debug info warn error"`
	DevLogging bool   `mapstructure:"dev_logging"`

	// GracefulTimeoutSeconds is how long in-flight work may continue after a
	// stop signal before the background runtime is cancelled regardless.
	GracefulTimeoutSeconds int `mapstructure:"graceful_timeout_seconds" validate:"gt=0"`

	// AbandonTimeoutSeconds bounds the wait for background tasks once they
	// have been cancelled. Zero waits forever.
	AbandonTimeoutSeconds int `mapstructure:"abandon_timeout_seconds" validate:"gte=0"`
}

// GracefulTimeout returns GracefulTimeoutSeconds as a duration.
func (c ServerConfig) GracefulTimeout() time.Duration {
	return time.Duration(c.GracefulTimeoutSeconds) * time.Second
}

// AbandonTimeout returns AbandonTimeoutSeconds as a duration.
func (c ServerConfig) AbandonTimeout() time.Duration {
	return time.Duration(c.AbandonTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// SlackConfig holds the credentials of the Slack app.
type SlackConfig struct {
	BotToken      string `mapstructure:"bot_token"      validate:"required"`
	SigningSecret string `mapstructure:"signing_secret" validate:"required"`
}

// GitHubConfig holds the webhook settings of the GitHub app.
type GitHubConfig struct {
	WebhookSecret string `mapstructure:"webhook_secret" validate:"required"`
}

// RateLimitConfig limits incoming webhook deliveries.
type RateLimitConfig struct {
	// WebhookRequestsPerMinute is applied per client IP. Zero disables the limit.
	WebhookRequestsPerMinute int `mapstructure:"webhook_requests_per_minute" validate:"gte=0"`
}
