package services

import (
	"errors"
	"fmt"
	"strings"

	"clipforge/internal/queue"
)

// Sentinel markers for the export error taxonomy. Every phase-level failure
// is tagged with exactly one of these so callers can classify with errors.Is.
var (
	// ErrValidation covers bad input: missing paths, empty timelines,
	// malformed clip sets.
	ErrValidation = errors.New("validation error")
	// ErrResource covers environment shortfalls: disk space, unwritable
	// output directories, missing frame files.
	ErrResource = errors.New("resource error")
	// ErrExternalProcess covers decode/encode subprocess failures.
	ErrExternalProcess = errors.New("external process error")
	// ErrRender covers per-frame rasterization failures. Recoverable: the
	// coordinator logs and skips the frame.
	ErrRender = errors.New("render error")
	// ErrEncode covers phase-level encode failures after the fallback path
	// has been exhausted.
	ErrEncode = errors.New("encode error")
	// ErrCancelled marks a user-initiated stop. Expected, never a failure.
	ErrCancelled = errors.New("export cancelled")
	// ErrConfiguration covers unusable configuration files or values.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that carries phase context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinels above.
func Wrap(marker error, phase, operation, message string, err error) error {
	if marker == nil {
		marker = ErrExternalProcess
	}
	detail := buildDetail(phase, operation, message)
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// FailureStatus maps an export error to the job status the store should
// persist once the export stops.
func FailureStatus(err error) queue.Status {
	if errors.Is(err, ErrCancelled) {
		return queue.StatusCancelled
	}
	return queue.StatusFailed
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{phase, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "export failure"
	}
	return strings.Join(parts, ": ")
}
