// Package export orchestrates a complete export run: timeline reconciliation,
// segment extraction, caption rendering, and encoding, in that order.
//
// The Controller owns the run's scoped resources. Every spawned ffmpeg
// process is tracked in a ProcessRegistry and every intermediate file lives
// in a per-session Workspace; both are torn down on success, failure, and
// cancellation alike. Cancellation is cooperative through a Token polled
// between phases and at worker progress boundaries.
package export
