package timeline

import "clipforge/internal/caption"

// Remap re-derives caption and word timestamps onto the post-cut timeline.
// Each timestamp shifts left by the removed time preceding it, so items after
// a cut slide up and items straddling a cut shrink to their surviving
// portion. Captions and words fully inside a removed region are dropped;
// word times are clamped into their caption's remapped range and words that
// collapse to nothing are dropped individually, not the whole caption. A
// final validation pass discards anything whose end does not exceed its
// start, so the result is always well-formed regardless of cut boundaries.
func Remap(frames []caption.SubtitleFrame, removed []Interval) []caption.SubtitleFrame {
	cuts := MergeOverlapping(removed)
	if len(cuts) == 0 {
		out := make([]caption.SubtitleFrame, len(frames))
		copy(out, frames)
		return out
	}

	var out []caption.SubtitleFrame
	for _, frame := range frames {
		if coveredByCut(cuts, frame.StartMs, frame.EndMs) {
			continue
		}
		remapped := frame
		remapped.StartMs = max(0, mapTime(cuts, frame.StartMs))
		remapped.EndMs = max(remapped.StartMs+1, mapTime(cuts, frame.EndMs))

		remapped.Words = remapWords(frame.Words, cuts, remapped.StartMs, remapped.EndMs)
		if remapped.EndMs <= remapped.StartMs {
			continue
		}
		out = append(out, remapped)
	}
	return out
}

func remapWords(words []caption.WordSegment, cuts []Interval, frameStart, frameEnd int64) []caption.WordSegment {
	var out []caption.WordSegment
	for _, word := range words {
		if coveredByCut(cuts, word.StartMs, word.EndMs) {
			continue
		}
		start := max(0, mapTime(cuts, word.StartMs))
		end := max(start+1, mapTime(cuts, word.EndMs))

		// Clamp into the caption's remapped range.
		start = min(max(start, frameStart), frameEnd)
		end = min(max(end, frameStart), frameEnd)
		if end <= start {
			continue
		}
		word.StartMs = start
		word.EndMs = end
		out = append(out, word)
	}
	return out
}

// mapTime converts a source timestamp to the post-cut timeline by subtracting
// all removed time before it. A timestamp inside a cut collapses onto the
// cut's seam. Cuts must be merged and sorted.
func mapTime(cuts []Interval, t int64) int64 {
	var removed int64
	for _, cut := range cuts {
		if cut.StartMs >= t {
			break
		}
		removed += min(t, cut.EndMs) - cut.StartMs
	}
	return t - removed
}

func coveredByCut(cuts []Interval, startMs, endMs int64) bool {
	for _, cut := range cuts {
		if cut.Contains(Interval{StartMs: startMs, EndMs: endMs}) {
			return true
		}
	}
	return false
}
