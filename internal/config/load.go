package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name, e.g.
// TRACKER_SERVER_PORT for server.port.
const EnvPrefix = "TRACKER"

const secretEnvPrefix = "env:"

// Defaults applied before any file or environment value.
const (
	DefaultPort                     = 3000
	DefaultLogLevel                 = "info"
	DefaultGracefulTimeoutSeconds   = 600
	DefaultAbandonTimeoutSeconds    = 30
	DefaultWebhookRequestsPerMinute = 120
)

// keys lists every setting so that environment variables are seen by
// Unmarshal even when no file mentions them.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.dev_logging",
	"server.graceful_timeout_seconds",
	"server.abandon_timeout_seconds",
	"database.url",
	"slack.bot_token",
	"slack.signing_secret",
	"github.webhook_secret",
	"ratelimit.webhook_requests_per_minute",
}

// New returns a viper instance with defaults and environment bindings set.
// Callers may bind command line flags to it before passing it to LoadWith.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("server.dev_logging", false)
	v.SetDefault("server.graceful_timeout_seconds", DefaultGracefulTimeoutSeconds)
	v.SetDefault("server.abandon_timeout_seconds", DefaultAbandonTimeoutSeconds)
	v.SetDefault("ratelimit.webhook_requests_per_minute", DefaultWebhookRequestsPerMinute)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key)
	}

	return v
}

// Load reads configuration from environment variables and the optional file
// at path. An empty path looks for config.yaml in the working directory and
// carries on without it if it is missing.
func Load(path string) (*Config, error) {
	v := New()
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return LoadWith(v)
}

// ReadFile merges the config file at path into v. See Load for the meaning
// of an empty path.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// LoadWith unmarshals, resolves secrets and validates the settings held by v.
func LoadWith(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	secrets := []*string{
		&cfg.Database.URL,
		&cfg.Slack.BotToken,
		&cfg.Slack.SigningSecret,
		&cfg.GitHub.WebhookSecret,
	}
	for _, secret := range secrets {
		resolved, err := resolveSecret(*secret)
		if err != nil {
			return nil, err
		}
		*secret = resolved
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// resolveSecret expands "env:NAME" to the value of the NAME environment
// variable. Other values are returned unchanged.
func resolveSecret(value string) (string, error) {
	name, ok := strings.CutPrefix(value, secretEnvPrefix)
	if !ok {
		return value, nil
	}
	resolved, found := os.LookupEnv(name)
	if !found {
		return "", fmt.Errorf("config refers to environment variable %s which is not set", name)
	}
	return resolved, nil
}
