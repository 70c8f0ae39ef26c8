package logging

import (
	"context"
	"log/slog"
)

// teeHandler fans every record out to a fixed set of target handlers.
// Each target keeps its own level, so a debug-only file sink can ride
// alongside an info console sink without either filtering the other.
type teeHandler struct {
	targets []slog.Handler
}

func newTeeHandler(targets ...slog.Handler) slog.Handler {
	live := make([]slog.Handler, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			live = append(live, t)
		}
	}
	switch len(live) {
	case 0:
		return NoopHandler{}
	case 1:
		return live[0]
	}
	return &teeHandler{targets: live}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, t := range h.targets {
		if t.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	enabled := 0
	for _, t := range h.targets {
		if t.Enabled(ctx, record.Level) {
			enabled++
		}
	}

	var firstErr error
	for _, t := range h.targets {
		if !t.Enabled(ctx, record.Level) {
			continue
		}
		rec := record
		// The record may carry shared attr state; hand each target but
		// the last its own copy.
		if enabled > 1 {
			rec = record.Clone()
		}
		enabled--
		if err := t.Handle(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.targets))
	for i, t := range h.targets {
		next[i] = t.WithAttrs(attrs)
	}
	return &teeHandler{targets: next}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.targets))
	for i, t := range h.targets {
		next[i] = t.WithGroup(name)
	}
	return &teeHandler{targets: next}
}

// TeeLogger returns a logger that writes through base and every extra
// handler. A nil base or nil handlers are skipped.
func TeeLogger(base *slog.Logger, extra ...slog.Handler) *slog.Logger {
	targets := make([]slog.Handler, 0, len(extra)+1)
	if base != nil {
		targets = append(targets, base.Handler())
	}
	targets = append(targets, extra...)
	return slog.New(newTeeHandler(targets...))
}
