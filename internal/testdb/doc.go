// Package testdb provides helpers for tests that need a real PostgreSQL
// database.
//
// Tests call GetTestDBWithT, which skips the test when no database is
// configured, applies the embedded migrations once per process and closes
// the connection when the test ends.
//
// The package uses the following environment variables:
//
// - DATABASE_URL: Primary connection string
// - TRACKER_TEST_DB_URL: Alternative connection string
package testdb
