package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewTeeHandlerCollapsesEmpty(t *testing.T) {
	h := newTeeHandler(nil, nil)
	if _, ok := h.(NoopHandler); !ok {
		t.Fatalf("expected NoopHandler when every target is nil, got %T", h)
	}
}

func TestNewTeeHandlerUnwrapsSingleTarget(t *testing.T) {
	var buf bytes.Buffer
	only := slog.NewJSONHandler(&buf, nil)

	if h := newTeeHandler(nil, only, nil); h != only {
		t.Fatalf("expected the sole non-nil target back unwrapped, got %T", h)
	}
}

func TestTeeHandlerWritesAllTargets(t *testing.T) {
	var console, file bytes.Buffer
	h := newTeeHandler(
		slog.NewJSONHandler(&console, nil),
		slog.NewJSONHandler(&file, nil),
	)

	slog.New(h).Info("render worker started", slog.Int("workers", 4))

	for name, buf := range map[string]*bytes.Buffer{"console": &console, "file": &file} {
		if !strings.Contains(buf.String(), "render worker started") {
			t.Errorf("%s target missing record: %q", name, buf.String())
		}
		if !strings.Contains(buf.String(), `"workers":4`) {
			t.Errorf("%s target missing attrs: %q", name, buf.String())
		}
	}
}

func TestTeeHandlerPerTargetLevels(t *testing.T) {
	// Mirrors the job logger split: info on the console, debug in the file.
	var console, file bytes.Buffer
	h := newTeeHandler(
		slog.NewJSONHandler(&console, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("tee should be enabled when any target accepts the level")
	}

	logger := slog.New(h)
	logger.Debug("frame queue drained")
	logger.Info("encode pass finished")

	if strings.Contains(console.String(), "frame queue drained") {
		t.Error("debug record leaked into the info-level target")
	}
	if !strings.Contains(file.String(), "frame queue drained") {
		t.Error("debug target did not receive the debug record")
	}
	if !strings.Contains(console.String(), "encode pass finished") {
		t.Error("info record missing from the info-level target")
	}
}

func TestTeeHandlerEnabledWhenNoTargetAccepts(t *testing.T) {
	var a, b bytes.Buffer
	h := newTeeHandler(
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("tee reported enabled for a level no target accepts")
	}
}

func TestTeeHandlerWithAttrsReachesEveryTarget(t *testing.T) {
	var a, b bytes.Buffer
	h := newTeeHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))

	slog.New(h.WithAttrs([]slog.Attr{slog.String("job_id", "7")})).Info("queued")

	for name, buf := range map[string]*bytes.Buffer{"a": &a, "b": &b} {
		if !strings.Contains(buf.String(), `"job_id":"7"`) {
			t.Errorf("target %s lost the bound attr: %q", name, buf.String())
		}
	}
}

func TestTeeHandlerWithGroupReachesEveryTarget(t *testing.T) {
	var a, b bytes.Buffer
	h := newTeeHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))

	slog.New(h.WithGroup("probe")).Info("done", slog.String("codec", "h264"))

	for name, buf := range map[string]*bytes.Buffer{"a": &a, "b": &b} {
		if !strings.Contains(buf.String(), `"probe"`) {
			t.Errorf("target %s lost the group: %q", name, buf.String())
		}
	}
}

func TestTeeLoggerDuplicatesBase(t *testing.T) {
	var baseBuf, extraBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&baseBuf, nil))

	TeeLogger(base, slog.NewJSONHandler(&extraBuf, nil)).Info("export complete")

	if !strings.Contains(baseBuf.String(), "export complete") {
		t.Error("base handler did not receive the record")
	}
	if !strings.Contains(extraBuf.String(), "export complete") {
		t.Error("extra handler did not receive the record")
	}
}

func TestTeeLoggerNilBase(t *testing.T) {
	var buf bytes.Buffer

	TeeLogger(nil, slog.NewJSONHandler(&buf, nil)).Info("standalone sink")

	if !strings.Contains(buf.String(), "standalone sink") {
		t.Errorf("expected record in the only sink, got %q", buf.String())
	}
}

func TestTeeLoggerNoSinks(t *testing.T) {
	logger := TeeLogger(nil)
	// Must be safe to use even with nothing wired.
	logger.Info("dropped")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("sinkless logger should report disabled")
	}
}
