package caption

import "testing"

func TestEditStateExcised(t *testing.T) {
	excised := []EditState{EditStateStrikethrough, EditStateSilenced}
	for _, state := range excised {
		if !state.Excised() {
			t.Fatalf("expected %q to be excised", state)
		}
	}
	kept := []EditState{"", EditStateNormal, EditStateCensored, EditStateRemovedCaption, EditStateEditing}
	for _, state := range kept {
		if state.Excised() {
			t.Fatalf("expected %q to be kept", state)
		}
	}
	if EditState("mangled").Valid() {
		t.Fatal("expected unknown state to be invalid")
	}
}

func TestWordDisplayText(t *testing.T) {
	cases := []struct {
		name string
		word WordSegment
		want string
	}{
		{"plain", WordSegment{Text: "hello"}, "hello"},
		{"censored", WordSegment{Text: "dang", EditState: EditStateCensored}, "d***"},
		{"censored single rune", WordSegment{Text: "x", EditState: EditStateCensored}, "*"},
		{"censored empty", WordSegment{Text: "", EditState: EditStateCensored}, ""},
		{"editing untouched", WordSegment{Text: "mid", EditState: EditStateEditing}, "mid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.word.DisplayText(); got != tc.want {
				t.Fatalf("DisplayText() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFrameVisibleWordsAndText(t *testing.T) {
	frame := SubtitleFrame{
		StartMs: 0,
		EndMs:   2000,
		Words: []WordSegment{
			{Text: "keep", StartMs: 0, EndMs: 500},
			{Text: "hidden", StartMs: 500, EndMs: 1000, EditState: EditStateRemovedCaption},
			{Text: "struck", StartMs: 1000, EndMs: 1500, EditState: EditStateStrikethrough},
			{Text: "heck", StartMs: 1500, EndMs: 2000, EditState: EditStateCensored},
		},
	}
	visible := frame.VisibleWords()
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible words, got %d", len(visible))
	}
	if got := frame.DisplayText(); got != "keep h***" {
		t.Fatalf("DisplayText() = %q", got)
	}
}

func TestFrameDisplayTextFallsBackToFrameText(t *testing.T) {
	frame := SubtitleFrame{
		Text:    "static caption",
		StartMs: 0,
		EndMs:   1000,
		Words: []WordSegment{
			{Text: "gone", StartMs: 0, EndMs: 1000, EditState: EditStateRemovedCaption},
		},
	}
	if got := frame.DisplayText(); got != "static caption" {
		t.Fatalf("DisplayText() = %q, want frame text fallback", got)
	}
	empty := SubtitleFrame{StartMs: 0, EndMs: 1000}
	if got := empty.DisplayText(); got != "" {
		t.Fatalf("DisplayText() = %q, want empty", got)
	}
}

func TestWordActiveAt(t *testing.T) {
	word := WordSegment{StartMs: 500, EndMs: 1000}
	for _, tMs := range []int64{500, 600, 1000} {
		if !word.ActiveAt(tMs) {
			t.Fatalf("expected word active at %dms", tMs)
		}
	}
	for _, tMs := range []int64{499, 1001} {
		if word.ActiveAt(tMs) {
			t.Fatalf("expected word inactive at %dms", tMs)
		}
	}
}

func TestValidateFrames(t *testing.T) {
	good := []SubtitleFrame{{
		ID: "f1", StartMs: 0, EndMs: 1000,
		Words: []WordSegment{{ID: "w1", Text: "hi", StartMs: 0, EndMs: 1000}},
	}}
	if err := ValidateFrames(good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inverted := []SubtitleFrame{{ID: "f1", StartMs: 1000, EndMs: 1000}}
	if err := ValidateFrames(inverted); err == nil {
		t.Fatal("expected error for zero-duration frame")
	}
	badState := []SubtitleFrame{{
		ID: "f1", StartMs: 0, EndMs: 1000,
		Words: []WordSegment{{ID: "w1", StartMs: 0, EndMs: 500, EditState: "smudged"}},
	}}
	if err := ValidateFrames(badState); err == nil {
		t.Fatal("expected error for unknown edit state")
	}
}

func TestValidateClips(t *testing.T) {
	good := []Clip{
		{ID: "b", StartMs: 2000, EndMs: 3000},
		{ID: "a", StartMs: 0, EndMs: 2000, IsRemoved: true},
	}
	if err := ValidateClips(good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	overlapping := []Clip{
		{ID: "a", StartMs: 0, EndMs: 2000},
		{ID: "b", StartMs: 1500, EndMs: 3000},
	}
	if err := ValidateClips(overlapping); err == nil {
		t.Fatal("expected overlap error")
	}
	if err := ValidateClips(nil); err != nil {
		t.Fatalf("nil clips should validate: %v", err)
	}
}

func TestRemovedClips(t *testing.T) {
	clips := []Clip{
		{ID: "a", StartMs: 0, EndMs: 1000},
		{ID: "b", StartMs: 1000, EndMs: 2000, IsRemoved: true},
	}
	removed := RemovedClips(clips)
	if len(removed) != 1 || removed[0].ID != "b" {
		t.Fatalf("RemovedClips() = %+v", removed)
	}
	if got := removed[0].DurationMs(); got != 1000 {
		t.Fatalf("DurationMs() = %d", got)
	}
}
