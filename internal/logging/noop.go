package logging

import (
	"context"
	"log/slog"
)

// NoopHandler drops every record. It backs NewNop and stands in wherever
// a handler chain would otherwise hold a nil.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
