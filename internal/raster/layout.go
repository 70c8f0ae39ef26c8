package raster

import (
	"image"

	"clipforge/internal/caption"
)

// emphasisScale is how much the active karaoke word grows when emphasize
// mode is on.
const emphasisScale = 1.05

// activeWordIndex returns the last word whose range contains tMs, so a
// boundary timestamp shared by two words activates the later one. Returns -1
// when no word is active.
func activeWordIndex(words []caption.WordSegment, tMs int64) int {
	idx := -1
	for i, w := range words {
		if w.ActiveAt(tMs) {
			idx = i
		}
	}
	return idx
}

// progressiveIndex returns the last word that has started by tMs. Unlike the
// karaoke case a word stays in the stack after its range ends, which is what
// makes the stack accumulate.
func progressiveIndex(words []caption.WordSegment, tMs int64) int {
	idx := -1
	for i, w := range words {
		if w.StartMs <= tMs {
			idx = i
		}
	}
	return idx
}

// anchorPoint converts the style's percentage position into pixel
// coordinates within bounds.
func anchorPoint(bounds image.Rectangle, st *caption.ResolvedStyle) (int, int) {
	x := bounds.Min.X + int(float64(bounds.Dx())*st.PositionX/100.0+0.5)
	y := bounds.Min.Y + int(float64(bounds.Dy())*st.PositionY/100.0+0.5)
	return x, y
}

// alignedX returns the left edge of a run of the given width, aligned
// relative to the anchor.
func alignedX(anchor, width int, align caption.TextAlign) int {
	switch align {
	case caption.AlignLeft:
		return anchor
	case caption.AlignRight:
		return anchor - width
	default:
		return anchor - width/2
	}
}

// boxPad is the padding around a caption's background box.
func boxPad(fontSize float64) int {
	return int(fontSize*0.3 + 0.5)
}

// wordPad is the tighter padding around a single highlighted word.
func wordPad(fontSize float64) int {
	return int(fontSize*0.12 + 0.5)
}
