package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget names a directory whose matching files are eligible for
// pruning. Exclude lists absolute or relative paths that must survive, such
// as the main log the process is currently writing.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// CleanupOldLogs deletes files in each target that are older than
// retentionDays. Zero or negative retention disables pruning entirely.
// Errors are logged and skipped; retention must never fail an export.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) {
	if retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	protected := protectedPaths(targets)
	for _, target := range targets {
		pruneTarget(logger, cutoff, target, protected)
	}
}

func protectedPaths(targets []RetentionTarget) map[string]struct{} {
	protected := make(map[string]struct{})
	for _, target := range targets {
		for _, path := range target.Exclude {
			trimmed := strings.TrimSpace(path)
			if trimmed == "" {
				continue
			}
			if abs, err := filepath.Abs(trimmed); err == nil {
				trimmed = abs
			}
			protected[trimmed] = struct{}{}
		}
	}
	return protected
}

func pruneTarget(logger *slog.Logger, cutoff time.Time, target RetentionTarget, protected map[string]struct{}) {
	dir := strings.TrimSpace(target.Dir)
	if dir == "" {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	pattern := strings.TrimSpace(target.Pattern)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern != "" {
			ok, err := filepath.Match(pattern, entry.Name())
			if err != nil || !ok {
				continue
			}
		}
		path := filepath.Join(dir, entry.Name())
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if _, keep := protected[path]; keep {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "stale log removal failed", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on the log directory"),
				String(FieldImpact, "stale log kept on disk"),
			)
			continue
		}
		if logger != nil {
			logger.Info("stale log removed",
				String("path", path),
				String(FieldEventType, "log_pruned"),
			)
		}
	}
}
