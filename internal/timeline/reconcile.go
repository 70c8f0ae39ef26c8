package timeline

import (
	"errors"
	"strings"
	"unicode"

	"clipforge/internal/caption"
)

// ErrEmptyTimeline is returned when every word in the timeline is excised and
// nothing remains to export.
var ErrEmptyTimeline = errors.New("no words survive the timeline edits")

// KeptIntervals emits one interval per word that survives its edit state.
// Words marked strikethrough or silenced are excised, except that a
// strikethrough word whose text lives on inside a larger overlapping word is
// treated as merged during editing rather than deleted, and its range is kept.
// The result is in word order, unmerged; callers run MergeOverlapping.
func KeptIntervals(frames []caption.SubtitleFrame) ([]Interval, error) {
	var kept []Interval
	for _, frame := range frames {
		for _, word := range frame.Words {
			if word.EditState.Excised() && !mergedIntoLargerWord(word, frame.Words) {
				continue
			}
			kept = append(kept, Interval{StartMs: word.StartMs, EndMs: word.EndMs})
		}
	}
	if len(kept) == 0 {
		return nil, ErrEmptyTimeline
	}
	return kept, nil
}

// ExcisedRanges returns the ranges of words that are cut by their edit state,
// after the merged-word exception. Used to decide whether word-level cutting
// engages at all.
func ExcisedRanges(frames []caption.SubtitleFrame) []Interval {
	var out []Interval
	for _, frame := range frames {
		for _, word := range frame.Words {
			if word.EditState.Excised() && !mergedIntoLargerWord(word, frame.Words) {
				out = append(out, Interval{StartMs: word.StartMs, EndMs: word.EndMs})
			}
		}
	}
	return out
}

// mergedIntoLargerWord decides whether a struck word was actually merged into
// a neighboring word during text editing instead of deleted, by substring
// containment against larger words overlapping its range. Silenced words are
// an explicit audio edit and never qualify. The check is heuristic and can
// misclassify short words; it mirrors long-standing editor behavior.
func mergedIntoLargerWord(word caption.WordSegment, words []caption.WordSegment) bool {
	if word.EditState != caption.EditStateStrikethrough {
		return false
	}
	needle := normalizeWord(word.Text)
	if needle == "" {
		return false
	}
	for _, other := range words {
		if other.ID == word.ID || other.EditState.Excised() {
			continue
		}
		if other.EndMs < word.StartMs || other.StartMs > word.EndMs {
			continue
		}
		haystack := normalizeWord(other.Text)
		if len(haystack) > len(needle) && strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func normalizeWord(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
