package export

import (
	"clipforge/internal/caption"
	"clipforge/internal/raster"
	"clipforge/internal/services"
	"clipforge/internal/timeline"
)

// cutPlan is everything the phases need to know about the edited timeline:
// which source ranges survive, what was removed, and the captions remapped
// onto the post-cut clock with their styles resolved.
type cutPlan struct {
	sourceDurationMs int64
	kept             []timeline.Interval
	removed          []timeline.Interval
	keptDurationMs   int64
	remapped         []caption.SubtitleFrame
	captions         []raster.Caption
}

// hasCuts reports whether any source time is actually removed.
func (p cutPlan) hasCuts() bool {
	return len(p.removed) > 0
}

// buildCutPlan derives the kept-interval set from word edits and removed
// clips. Word-level cutting only engages when at least one word is excised;
// an unedited timeline keeps the full source rather than cutting the silence
// between words.
func buildCutPlan(frames []caption.SubtitleFrame, clips []caption.Clip, durationMs int64) (cutPlan, error) {
	plan := cutPlan{sourceDurationMs: durationMs}

	var kept []timeline.Interval
	if excised := timeline.ExcisedRanges(frames); len(excised) > 0 {
		words, err := timeline.KeptIntervals(frames)
		if err != nil {
			return plan, services.Wrap(services.ErrValidation, "export", "build cut plan",
				"Timeline edits leave nothing to export", err)
		}
		kept = timeline.MergeOverlapping(words)
	} else {
		kept = []timeline.Interval{{StartMs: 0, EndMs: durationMs}}
	}

	if removedClips := caption.RemovedClips(clips); len(removedClips) > 0 {
		clipRanges := make([]timeline.Interval, 0, len(removedClips))
		for _, clip := range removedClips {
			clipRanges = append(clipRanges, timeline.Interval{StartMs: clip.StartMs, EndMs: clip.EndMs})
		}
		kept = timeline.Subtract(kept, clipRanges)
	}

	kept = clampIntervals(kept, durationMs)
	if len(kept) == 0 {
		return plan, services.Wrap(services.ErrValidation, "export", "build cut plan",
			"Timeline edits leave nothing to export", timeline.ErrEmptyTimeline)
	}

	plan.kept = kept
	plan.keptDurationMs = timeline.TotalDuration(kept)
	plan.removed = timeline.Complement(kept, durationMs)
	plan.remapped = timeline.Remap(frames, plan.removed)

	captions, err := raster.Prepare(plan.remapped)
	if err != nil {
		return plan, err
	}
	plan.captions = captions
	return plan, nil
}

// clampIntervals trims the kept set into [0, durationMs] and drops anything
// that falls entirely outside the source. Caption words can legitimately
// extend past the probed duration by a frame or two of rounding.
func clampIntervals(intervals []timeline.Interval, durationMs int64) []timeline.Interval {
	out := intervals[:0]
	for _, iv := range intervals {
		if iv.StartMs < 0 {
			iv.StartMs = 0
		}
		if iv.EndMs > durationMs {
			iv.EndMs = durationMs
		}
		if iv.EndMs > iv.StartMs {
			out = append(out, iv)
		}
	}
	return out
}
