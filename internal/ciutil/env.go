package ciutil

import (
	"log/slog"
	"os"

	"github.com/phrazzld/slack-github-tracker/internal/redact"
)

// Environment variables read by this package.
const (
	// CI environment detection variables
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	// Database connection environment variables
	EnvTrackerTestDBURL = "TRACKER_TEST_DB_URL" // Preferred name
	EnvDatabaseURL      = "DATABASE_URL"
)

// TestDatabaseURLVars lists the variables that may hold the test database
// URL, preferred first.
var TestDatabaseURLVars = []string{EnvTrackerTestDBURL, EnvDatabaseURL}

// IsCI returns true if the current environment is a CI environment.
func IsCI() bool {
	for _, name := range []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvCircleCI} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// GetEnvWithFallbacks returns the value of the first non-empty environment
// variable in envVars, or defaultValue when none is set. Using any but the
// first variable is logged, with the value redacted.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		val := os.Getenv(envVar)
		if val == "" {
			continue
		}
		if i > 0 && logger != nil {
			logger.Debug("using fallback environment variable",
				"used_var", envVar,
				"preferred_var", envVars[0],
				"value", redact.String(val))
		}
		return val
	}
	return defaultValue
}
