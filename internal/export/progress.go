package export

import (
	"context"
	"sync"

	"log/slog"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
)

// Per-phase slices of the overall progress figure. subtitlesOnly jumps
// straight to completion; modifiedSegments skips the render window.
const (
	extractLo, extractHi = 0.0, 15.0
	renderLo, renderHi   = 15.0, 80.0
	encodeLo, encodeHi   = 80.0, 100.0
)

// ProgressFunc receives overall export progress. Percent is monotonically
// non-decreasing within one run.
type ProgressFunc func(percent float64, message string)

// reporter folds per-phase progress into one monotonic 0-100 figure, fans it
// out to the caller's callback, samples it into the log, and persists it on
// the job row.
type reporter struct {
	mu       sync.Mutex
	last     float64
	callback ProgressFunc
	sampler  *logging.ProgressSampler
	logger   *slog.Logger
	store    *queue.Store
	job      *queue.Job
}

func newReporter(callback ProgressFunc, logger *slog.Logger, store *queue.Store, job *queue.Job) *reporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &reporter{
		callback: callback,
		sampler:  logging.NewProgressSampler(5),
		logger:   logger,
		store:    store,
		job:      job,
	}
}

// phase maps a phase-local percentage into the phase's window of the overall
// figure and reports it.
func (r *reporter) phase(ctx context.Context, stage string, lo, hi, phasePercent float64, message string) {
	if phasePercent < 0 {
		phasePercent = 0
	}
	if phasePercent > 100 {
		phasePercent = 100
	}
	r.report(ctx, stage, lo+(hi-lo)*phasePercent/100, message)
}

// report publishes an overall percentage. Regressions are clamped to the
// high-water mark so the callback never sees progress move backwards.
func (r *reporter) report(ctx context.Context, stage string, percent float64, message string) {
	r.mu.Lock()
	if percent < r.last {
		percent = r.last
	}
	r.last = percent
	r.mu.Unlock()

	if r.callback != nil {
		r.callback(percent, message)
	}
	if r.sampler.ShouldLog(percent, stage, message) {
		r.logger.Info("export progress",
			logging.String(logging.FieldProgressStage, stage),
			logging.Float64(logging.FieldProgressPercent, percent),
			logging.String(logging.FieldProgressMessage, message))
	}
	if r.store != nil && r.job != nil {
		r.job.SetProgress(stage, message, percent)
		if err := r.store.Update(ctx, r.job); err != nil {
			r.logger.Debug("progress persist failed", logging.Error(err))
		}
	}
}
