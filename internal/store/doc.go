// Package store defines the persistence interfaces of the tracker. The
// Postgres implementation lives in internal/platform/postgres; everything
// else depends only on the interfaces here.
package store
