package timeline

import "sort"

// Interval is a half-closed time range [StartMs, EndMs) on the source
// timeline. Kept intervals and removed regions share the same algebra.
type Interval struct {
	StartMs int64 `json:"startMs"`
	EndMs   int64 `json:"endMs"`
}

// DurationMs returns the interval length in milliseconds.
func (iv Interval) DurationMs() int64 {
	return iv.EndMs - iv.StartMs
}

// Contains reports whether other lies entirely inside the interval.
func (iv Interval) Contains(other Interval) bool {
	return other.StartMs >= iv.StartMs && other.EndMs <= iv.EndMs
}

// TotalDuration sums the durations of all intervals.
func TotalDuration(intervals []Interval) int64 {
	var total int64
	for _, iv := range intervals {
		total += iv.DurationMs()
	}
	return total
}

// MergeOverlapping sorts intervals by start and folds overlapping or touching
// neighbors together. The result is sorted and pairwise non-overlapping, and
// its total duration equals the duration of the input's union. Merging an
// already-merged set is a no-op.
func MergeOverlapping(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartMs == sorted[j].StartMs {
			return sorted[i].EndMs < sorted[j].EndMs
		}
		return sorted[i].StartMs < sorted[j].StartMs
	})
	merged := []Interval{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &merged[len(merged)-1]
		if cur.StartMs <= last.EndMs {
			if cur.EndMs > last.EndMs {
				last.EndMs = cur.EndMs
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

// Subtract removes every removed region from the kept set. Both inputs may be
// unsorted and overlapping; the result is merged.
func Subtract(kept, removed []Interval) []Interval {
	keptMerged := MergeOverlapping(kept)
	removedMerged := MergeOverlapping(removed)
	if len(removedMerged) == 0 {
		return keptMerged
	}
	var out []Interval
	for _, iv := range keptMerged {
		cursor := iv.StartMs
		for _, cut := range removedMerged {
			if cut.EndMs <= cursor || cut.StartMs >= iv.EndMs {
				continue
			}
			if cut.StartMs > cursor {
				out = append(out, Interval{StartMs: cursor, EndMs: cut.StartMs})
			}
			if cut.EndMs > cursor {
				cursor = cut.EndMs
			}
		}
		if cursor < iv.EndMs {
			out = append(out, Interval{StartMs: cursor, EndMs: iv.EndMs})
		}
	}
	return out
}

// Complement returns the regions of [0, totalMs) not covered by the given
// intervals. The controller uses it to derive the removed regions implied by a
// kept set, which drive caption remapping.
func Complement(intervals []Interval, totalMs int64) []Interval {
	if totalMs <= 0 {
		return nil
	}
	return Subtract([]Interval{{StartMs: 0, EndMs: totalMs}}, intervals)
}
