package logging

import (
	"context"
	"log/slog"
	"strings"

	"clipforge/internal/config"
)

// minLevelHandler raises the floor for one logger without touching the
// shared handler underneath, which stays at the most verbose level any
// phase needs.
type minLevelHandler struct {
	next slog.Handler
	min  slog.Level
}

func (h minLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min && h.next.Enabled(ctx, level)
}

func (h minLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.min {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h minLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return minLevelHandler{next: h.next.WithAttrs(attrs), min: h.min}
}

func (h minLevelHandler) WithGroup(name string) slog.Handler {
	return minLevelHandler{next: h.next.WithGroup(name), min: h.min}
}

// CloneWithLevel rebinds the floor without stacking another wrapper.
func (h minLevelHandler) CloneWithLevel(level slog.Level) slog.Handler {
	return minLevelHandler{next: h.next, min: level}
}

// WithLevelOverride returns a logger whose records below level are
// dropped. Attributes and handler wiring carry over unchanged.
func WithLevelOverride(logger *slog.Logger, level slog.Level) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	if cloner, ok := logger.Handler().(interface{ CloneWithLevel(slog.Level) slog.Handler }); ok {
		return slog.New(cloner.CloneWithLevel(level))
	}
	return slog.New(minLevelHandler{next: logger.Handler(), min: level})
}

// ForPhase applies the configured per-phase level override, if any.
func ForPhase(cfg *config.Config, logger *slog.Logger, phase string) *slog.Logger {
	if cfg == nil || logger == nil {
		return logger
	}
	value, ok := cfg.Logging.PhaseOverrides[strings.ToLower(strings.TrimSpace(phase))]
	if !ok {
		return logger
	}
	return WithLevelOverride(logger, ParseLevel(value))
}
