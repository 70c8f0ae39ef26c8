package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"clipforge/internal/config"
)

// Options selects format, verbosity, and destinations for a logger. The
// zero value means console output at info level on the standard streams.
type Options struct {
	Level            string
	Format           string
	OutputPaths      []string
	ErrorOutputPaths []string
	// Development forces caller annotations even above debug level.
	Development bool
}

// New builds a slog logger from opts. The format is checked before any log
// file is opened, so a bad config never leaves files behind.
func New(opts Options) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(ParseLevel(opts.Level))

	sink, err := openWriters(
		orDefault(opts.OutputPaths, []string{"stdout"}),
		orDefault(opts.ErrorOutputPaths, []string{"stderr"}),
	)
	if err != nil {
		return nil, err
	}

	withSource := opts.Development || levelVar.Level() <= slog.LevelDebug
	if format == "json" {
		return slog.New(newJSONHandler(sink, levelVar, withSource)), nil
	}
	return slog.New(newConsoleHandler(sink, levelVar, withSource)), nil
}

// NewFromConfig builds the process-wide logger: the standard streams
// always, plus the main log file when a log directory is configured.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	opts := Options{Level: "info", Format: "console"}
	if cfg != nil {
		opts.Level = cfg.Logging.Level
		opts.Format = cfg.Logging.Format
	}

	if logPath := MainLogPath(cfg); logPath != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		opts.OutputPaths = []string{"stdout", logPath}
		opts.ErrorOutputPaths = []string{"stderr", logPath}
	}
	return New(opts)
}

// MainLogPath returns the primary log file location for the config.
func MainLogPath(cfg *config.Config) string {
	if cfg == nil || cfg.Paths.LogDir == "" {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, "clipforge.log")
}

// JobLogPath returns the per-job log file location for a session.
func JobLogPath(cfg *config.Config, sessionID string) string {
	if cfg == nil || cfg.Paths.LogDir == "" || strings.TrimSpace(sessionID) == "" {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, "jobs", "job-"+sessionID+".log")
}

// NewJobLogger tees the base logger into a per-job JSON log file, tagging
// every record with the job's session ID. The returned closer flushes the
// file; callers close it when the job finishes. When no log directory is
// configured the base logger is returned unchanged with a nil closer.
func NewJobLogger(base *slog.Logger, cfg *config.Config, sessionID string) (*slog.Logger, io.Closer, error) {
	if base == nil {
		base = NewNop()
	}
	path := JobLogPath(cfg, sessionID)
	if path == "" {
		return base, nil, nil
	}
	if err := ensureLogDir(path); err != nil {
		return nil, nil, fmt.Errorf("ensure job log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, nil, fmt.Errorf("open job log %s: %w", path, err)
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)
	handler := newSessionHandler(newJSONHandler(file, levelVar, false), sessionID)
	return TeeLogger(base, handler), file, nil
}

// ParseLevel maps a level name onto its slog value. Unknown names fall back
// to info so a typo in config never silences the log.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		values = fallback
	}
	return append([]string(nil), values...)
}

// openWriters turns the combined output and error path lists into a single
// writer, deduplicating paths so one file appended twice still gets each
// record once.
func openWriters(outputPaths, errorPaths []string) (io.Writer, error) {
	var writers []io.Writer
	seen := map[string]struct{}{}

	for _, path := range append(append([]string(nil), outputPaths...), errorPaths...) {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		w, err := openSink(path)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}

	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func openSink(path string) (io.Writer, error) {
	switch path {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	if err := ensureLogDir(path); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func ensureLogDir(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: normalizeJSONAttr,
	})
}

// normalizeJSONAttr keeps the JSON log schema stable: short keys, lowercase
// levels, RFC3339 UTC timestamps, and file:line sources.
func normalizeJSONAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() != slog.KindTime {
			return slog.Attr{Key: "ts", Value: attr.Value}
		}
		return slog.String("ts", attr.Value.Time().UTC().Format(time.RFC3339))
	case slog.LevelKey:
		return slog.String("level", strings.ToLower(attr.Value.String()))
	case slog.MessageKey:
		attr.Key = "msg"
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	return attr
}

// consoleHandler renders one human-readable line per record:
//
//	2026-01-02T15:04:05Z INFO encoder: pass finished crf=23 elapsed=1m2s
//
// Attributes added via With are formatted once, up front, instead of on
// every Handle call. The component attribute is lifted out of the key/value
// tail and shown as a message prefix.
type consoleHandler struct {
	mu           *sync.Mutex
	out          io.Writer
	min          *slog.LevelVar
	withSource   bool
	prefix       string
	preformatted string
	component    string
}

func newConsoleHandler(w io.Writer, min *slog.LevelVar, withSource bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), out: w, min: min, withSource: withSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.min.Level() {
		return nil
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var line bytes.Buffer
	line.Grow(160)
	line.WriteString(ts.UTC().Format(time.RFC3339))
	line.WriteByte(' ')
	line.WriteString(levelTag(record.Level))
	line.WriteByte(' ')
	if h.component != "" {
		line.WriteString(h.component)
		line.WriteString(": ")
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		line.WriteString(msg)
	} else {
		line.WriteString("(no message)")
	}
	if h.withSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		if frame, _ := frames.Next(); frame.File != "" {
			line.WriteString(" [")
			line.WriteString(filepath.Base(frame.File))
			line.WriteByte(':')
			line.WriteString(strconv.Itoa(frame.Line))
			line.WriteByte(']')
		}
	}
	line.WriteString(h.preformatted)
	record.Attrs(func(attr slog.Attr) bool {
		appendConsoleAttr(&line, h.prefix, attr)
		return true
	})
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(line.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	var b bytes.Buffer
	b.WriteString(h.preformatted)
	for _, attr := range attrs {
		if h.prefix == "" && attr.Key == FieldComponent && clone.component == "" {
			clone.component = attr.Value.Resolve().String()
			continue
		}
		appendConsoleAttr(&b, h.prefix, attr)
	}
	clone.preformatted = b.String()
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if strings.TrimSpace(name) == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// appendConsoleAttr flattens groups into dotted keys and writes " key=value".
func appendConsoleAttr(b *bytes.Buffer, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = prefix + attr.Key + "."
		}
		for _, nested := range attr.Value.Group() {
			appendConsoleAttr(b, next, nested)
		}
		return
	}
	key := prefix + attr.Key
	if key == "" {
		return
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(renderConsoleValue(attr.Value))
}

func renderConsoleValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(err.Error())
		}
		return quoteIfNeeded(fmt.Sprint(v.Any()))
	}
	return quoteIfNeeded(v.String())
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	if strings.IndexFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) >= 0 {
		return strconv.Quote(s)
	}
	return s
}

func levelTag(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	}
	return "ERROR"
}
