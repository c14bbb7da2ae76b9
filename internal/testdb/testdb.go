package testdb

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/slack-github-tracker/internal/ciutil"
	"github.com/phrazzld/slack-github-tracker/internal/platform/postgres"
)

var migrateOnce struct {
	sync.Mutex
	done bool
}

// GetTestDatabaseURL returns the database URL for tests, or "" if none is set.
func GetTestDatabaseURL() string {
	return ciutil.GetEnvWithFallbacks(ciutil.TestDatabaseURLVars, "", nil)
}

// ShouldSkipDatabaseTest reports whether database tests should be skipped.
// They are never skipped in CI, where a missing database is a failure.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == "" && !ciutil.IsCI()
}

// GetTestDBWithT opens a migrated test database. Outside CI the test is
// skipped when no database is configured. The connection is closed by
// t.Cleanup.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		if ciutil.IsCI() {
			t.Fatalf("%s must be set in CI", ciutil.EnvTrackerTestDBURL)
		}
		t.Skipf("%s not set - skipping database test", ciutil.EnvTrackerTestDBURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	migrateOnce.Lock()
	defer migrateOnce.Unlock()
	if !migrateOnce.done {
		quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
		if err := postgres.Migrate(ctx, db, "up", quiet); err != nil {
			t.Fatalf("failed to migrate test database: %v", err)
		}
		migrateOnce.done = true
	}

	return db
}
