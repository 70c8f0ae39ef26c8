package export

import (
	"context"

	"clipforge/internal/media/ffprobe"
)

// inspectSource is swapped by tests that need scripted probe results.
var inspectSource = ffprobe.Inspect

// SetInspectForTests overrides source probing and returns a restore function.
func SetInspectForTests(fn func(ctx context.Context, binary, path string) (ffprobe.Result, error)) func() {
	prev := inspectSource
	inspectSource = fn
	return func() { inspectSource = prev }
}
