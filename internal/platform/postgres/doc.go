// Package postgres provides the PostgreSQL implementation of the store
// interfaces, the connection helper and the embedded schema migrations.
package postgres
