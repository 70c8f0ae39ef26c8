package caption

import (
	"fmt"
	"sort"
	"strings"
)

// EditState describes the per-word disposition applied in the editor. It
// drives both caption display and audio/video cutting.
type EditState string

const (
	EditStateNormal         EditState = "normal"
	EditStateStrikethrough  EditState = "strikethrough"
	EditStateCensored       EditState = "censored"
	EditStateRemovedCaption EditState = "removedCaption"
	EditStateSilenced       EditState = "silenced"
	EditStateEditing        EditState = "editing"
)

// Valid reports whether the state is one of the known edit states. The empty
// string is accepted and treated as normal.
func (s EditState) Valid() bool {
	switch s {
	case "", EditStateNormal, EditStateStrikethrough, EditStateCensored,
		EditStateRemovedCaption, EditStateSilenced, EditStateEditing:
		return true
	}
	return false
}

// Excised reports whether a word in this state is cut out of the exported
// timeline (audio and video removed).
func (s EditState) Excised() bool {
	return s == EditStateStrikethrough || s == EditStateSilenced
}

// WordSegment is a single transcribed word with its time range and edit state.
type WordSegment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	StartMs   int64     `json:"startMs"`
	EndMs     int64     `json:"endMs"`
	EditState EditState `json:"editState,omitempty"`
}

// DurationMs returns the word duration in milliseconds.
func (w WordSegment) DurationMs() int64 {
	return w.EndMs - w.StartMs
}

// ActiveAt reports whether the word's range contains the frame time. Both
// bounds are inclusive; layout code resolves boundary overlap by preferring
// the later word.
func (w WordSegment) ActiveAt(tMs int64) bool {
	return tMs >= w.StartMs && tMs <= w.EndMs
}

// Visible reports whether the word participates in caption layout. Removed
// captions keep their audio but never render.
func (w WordSegment) Visible() bool {
	return w.EditState != EditStateRemovedCaption && w.EditState != EditStateStrikethrough
}

// DisplayText returns the text as it should render: censored words are masked
// past the first rune, everything else renders verbatim.
func (w WordSegment) DisplayText() string {
	if w.EditState != EditStateCensored {
		return w.Text
	}
	runes := []rune(w.Text)
	if len(runes) <= 1 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}

// SubtitleFrame groups the words displayed together as one caption, with the
// style applied to all of them. Words are ordered by start time. Text is the
// caption's plain text, drawn directly when the frame carries no word list
// and kept as the static fallback when edits empty the word list.
type SubtitleFrame struct {
	ID      string        `json:"id"`
	Text    string        `json:"text,omitempty"`
	StartMs int64         `json:"startMs"`
	EndMs   int64         `json:"endMs"`
	Words   []WordSegment `json:"words,omitempty"`
	Style   Style         `json:"style"`
}

// DurationMs returns the frame duration in milliseconds.
func (f SubtitleFrame) DurationMs() int64 {
	return f.EndMs - f.StartMs
}

// ContainsTime reports whether the frame's range contains the frame time,
// bounds inclusive.
func (f SubtitleFrame) ContainsTime(tMs int64) bool {
	return tMs >= f.StartMs && tMs <= f.EndMs
}

// VisibleWords returns the words that participate in layout, in order.
func (f SubtitleFrame) VisibleWords() []WordSegment {
	out := make([]WordSegment, 0, len(f.Words))
	for _, w := range f.Words {
		if w.Visible() {
			out = append(out, w)
		}
	}
	return out
}

// DisplayText joins the display text of the visible words, falling back to
// the frame's own text when no visible words remain. Used by simple-mode
// rendering and the subtitle file writer.
func (f SubtitleFrame) DisplayText() string {
	var parts []string
	for _, w := range f.VisibleWords() {
		text := strings.TrimSpace(w.DisplayText())
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return strings.TrimSpace(f.Text)
	}
	return strings.Join(parts, " ")
}

// Clip is a contiguous region of the original timeline. Removed clips denote
// regions excised before rendering.
type Clip struct {
	ID        string `json:"id"`
	StartMs   int64  `json:"startMs"`
	EndMs     int64  `json:"endMs"`
	IsRemoved bool   `json:"isRemoved"`
}

// DurationMs returns the clip duration in milliseconds.
func (c Clip) DurationMs() int64 {
	return c.EndMs - c.StartMs
}

// RemovedClips filters the removed clips from a clip list.
func RemovedClips(clips []Clip) []Clip {
	var out []Clip
	for _, c := range clips {
		if c.IsRemoved {
			out = append(out, c)
		}
	}
	return out
}

// ValidateFrames checks the structural invariants of a caller-supplied
// timeline: word and frame ranges must be positive and edit states known.
func ValidateFrames(frames []SubtitleFrame) error {
	for _, frame := range frames {
		if frame.EndMs <= frame.StartMs {
			return fmt.Errorf("frame %s: end %dms not after start %dms", frame.ID, frame.EndMs, frame.StartMs)
		}
		for _, word := range frame.Words {
			if word.EndMs <= word.StartMs {
				return fmt.Errorf("frame %s word %s: end %dms not after start %dms", frame.ID, word.ID, word.EndMs, word.StartMs)
			}
			if !word.EditState.Valid() {
				return fmt.Errorf("frame %s word %s: unknown edit state %q", frame.ID, word.ID, word.EditState)
			}
		}
	}
	return nil
}

// ValidateClips checks that clips do not overlap once sorted by start time.
func ValidateClips(clips []Clip) error {
	if len(clips) == 0 {
		return nil
	}
	sorted := make([]Clip, len(clips))
	copy(sorted, clips)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartMs < sorted[j].StartMs })
	for i, c := range sorted {
		if c.EndMs <= c.StartMs {
			return fmt.Errorf("clip %s: end %dms not after start %dms", c.ID, c.EndMs, c.StartMs)
		}
		if i > 0 && c.StartMs < sorted[i-1].EndMs {
			return fmt.Errorf("clip %s overlaps clip %s", c.ID, sorted[i-1].ID)
		}
	}
	return nil
}
