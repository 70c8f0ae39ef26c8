package raster

import (
	"image"
	"testing"

	"clipforge/internal/caption"
)

func TestActiveWordIndexPrefersLaterWordOnBoundary(t *testing.T) {
	words := []caption.WordSegment{
		{Text: "Hi", StartMs: 0, EndMs: 500},
		{Text: "there", StartMs: 500, EndMs: 1000},
	}
	cases := []struct {
		tMs  int64
		want int
	}{
		{0, 0},
		{499, 0},
		{500, 1},
		{600, 1},
		{1000, 1},
		{1001, -1},
	}
	for _, tc := range cases {
		if got := activeWordIndex(words, tc.tMs); got != tc.want {
			t.Fatalf("activeWordIndex(%d) = %d, want %d", tc.tMs, got, tc.want)
		}
	}
	if got := activeWordIndex(nil, 100); got != -1 {
		t.Fatalf("expected -1 for empty word list, got %d", got)
	}
}

func TestProgressiveIndexAccumulates(t *testing.T) {
	words := []caption.WordSegment{
		{Text: "one", StartMs: 200, EndMs: 500},
		{Text: "two", StartMs: 500, EndMs: 1000},
	}
	cases := []struct {
		tMs  int64
		want int
	}{
		{100, -1},
		{200, 0},
		{499, 0},
		{500, 1},
		{1500, 1},
	}
	for _, tc := range cases {
		if got := progressiveIndex(words, tc.tMs); got != tc.want {
			t.Fatalf("progressiveIndex(%d) = %d, want %d", tc.tMs, got, tc.want)
		}
	}
}

func TestAlignedX(t *testing.T) {
	if got := alignedX(100, 50, caption.AlignCenter); got != 75 {
		t.Fatalf("center: got %d", got)
	}
	if got := alignedX(100, 50, caption.AlignLeft); got != 100 {
		t.Fatalf("left: got %d", got)
	}
	if got := alignedX(100, 50, caption.AlignRight); got != 50 {
		t.Fatalf("right: got %d", got)
	}
}

func TestAnchorPoint(t *testing.T) {
	st := &caption.ResolvedStyle{PositionX: 50, PositionY: 80}
	x, y := anchorPoint(image.Rect(0, 0, 640, 360), st)
	if x != 320 || y != 288 {
		t.Fatalf("anchorPoint = (%d, %d), want (320, 288)", x, y)
	}
}
