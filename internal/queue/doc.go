// Package queue persists export jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages the database connection, schema initialization, and the
// single-writer file lock that keeps concurrent invocations from trampling
// each other's rows. Jobs capture the export request (paths, mode, quality,
// framerate) plus live progress and the terminal outcome, so the CLI can show
// history without any daemon.
//
// The database is job history, not an archive of exports. Schema changes bump
// the version in schema.go; users clear the database to adopt the new schema.
package queue
