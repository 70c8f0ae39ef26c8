// Package logging builds the slog loggers clipforge writes through.
//
// A console handler renders compact single-line output for people, a JSON
// handler feeds the main and per-job log files, and a tee fans records to
// both without either filtering the other. Helpers attach the structured
// fields the rest of the codebase greps for: component, job_id, phase, and
// session_id, pulled from context where available. Per-phase level
// overrides, progress sampling, and log retention also live here.
//
// Construct loggers through New, NewFromConfig, or NewJobLogger rather
// than wiring slog by hand; that keeps every record in the same shape.
package logging
