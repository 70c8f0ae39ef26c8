package logging

import (
	"context"
	"log/slog"

	"clipforge/internal/services"
)

// Shared structured logging keys. A few get special treatment elsewhere:
// FieldComponent becomes the console handler's message prefix, and the
// progress trio mirrors the columns persisted on the job row.
const (
	FieldComponent       = "component"
	FieldJobID           = "job_id"
	FieldPhase           = "phase"
	FieldEventType       = "event_type"
	FieldErrorHint       = "error_hint"
	FieldProgressStage   = "progress_stage"
	FieldProgressPercent = "progress_percent"
	FieldProgressMessage = "progress_message"
)

// ContextFields turns the job annotations carried by ctx into slog attrs.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if id, ok := services.JobIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldJobID, id))
	}
	if phase, ok := services.PhaseFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPhase, phase))
	}
	if session, ok := services.SessionIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSessionID, session))
	}
	return fields
}

// WithContext returns logger with any job, phase, and session annotations
// from ctx attached as persistent attrs.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if fields := ContextFields(ctx); len(fields) > 0 {
		return logger.With(argsOf(fields)...)
	}
	return logger
}
