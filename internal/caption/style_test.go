package caption

import (
	"image/color"
	"testing"
)

func TestResolveStyleDefaults(t *testing.T) {
	resolved, err := ResolveStyle(Style{})
	if err != nil {
		t.Fatalf("ResolveStyle: %v", err)
	}
	if resolved.FontSize != defaultFontSize {
		t.Fatalf("FontSize = %v", resolved.FontSize)
	}
	if resolved.PositionX != defaultPositionX || resolved.PositionY != defaultPositionY {
		t.Fatalf("position = %v,%v", resolved.PositionX, resolved.PositionY)
	}
	if resolved.Scale != 1.0 {
		t.Fatalf("Scale = %v", resolved.Scale)
	}
	if resolved.Mode != RenderModeHorizontal {
		t.Fatalf("Mode = %q", resolved.Mode)
	}
	if resolved.Align != AlignCenter {
		t.Fatalf("Align = %q", resolved.Align)
	}
	if resolved.Transform != TransformNone {
		t.Fatalf("Transform = %q", resolved.Transform)
	}
	if !resolved.EmphasizeMode || !resolved.BurnIn {
		t.Fatalf("EmphasizeMode = %v BurnIn = %v", resolved.EmphasizeMode, resolved.BurnIn)
	}
	if resolved.TextColor != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("TextColor = %+v", resolved.TextColor)
	}
	if resolved.HighlightColor != (color.NRGBA{R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF}) {
		t.Fatalf("HighlightColor = %+v", resolved.HighlightColor)
	}
	if !resolved.PaintBackground {
		t.Fatal("expected default background to paint")
	}
	if resolved.PaintStroke {
		t.Fatal("expected stroke off by default")
	}
}

func TestResolveStyleExplicit(t *testing.T) {
	off := false
	resolved, err := ResolveStyle(Style{
		FontSize:        64,
		TextColor:       "#112233",
		BackgroundColor: "transparent",
		StrokeColor:     "#000000",
		StrokeWidth:     3,
		PositionX:       10,
		PositionY:       90,
		Scale:           1.5,
		RenderMode:      "Progressive",
		TextAlign:       "LEFT",
		TextTransform:   "uppercase",
		EmphasizeMode:   &off,
		BurnInSubtitles: &off,
	})
	if err != nil {
		t.Fatalf("ResolveStyle: %v", err)
	}
	if resolved.PaintBackground {
		t.Fatal("transparent background should not paint")
	}
	if !resolved.PaintStroke || resolved.StrokeWidth != 3 {
		t.Fatalf("stroke = %v width %d", resolved.PaintStroke, resolved.StrokeWidth)
	}
	if resolved.Mode != RenderModeProgressive || resolved.Align != AlignLeft {
		t.Fatalf("mode %q align %q", resolved.Mode, resolved.Align)
	}
	if resolved.Transform != TransformUppercase {
		t.Fatalf("Transform = %q", resolved.Transform)
	}
	if resolved.EmphasizeMode || resolved.BurnIn {
		t.Fatal("explicit false flags ignored")
	}
}

func TestResolveStyleKaraokeAlias(t *testing.T) {
	resolved, err := ResolveStyle(Style{RenderMode: "karaoke"})
	if err != nil {
		t.Fatalf("ResolveStyle: %v", err)
	}
	if resolved.Mode != RenderModeHorizontal {
		t.Fatalf("Mode = %q", resolved.Mode)
	}
}

func TestResolveStyleRejectsUnknowns(t *testing.T) {
	if _, err := ResolveStyle(Style{RenderMode: "diagonal"}); err == nil {
		t.Fatal("expected render mode error")
	}
	if _, err := ResolveStyle(Style{TextAlign: "justify"}); err == nil {
		t.Fatal("expected align error")
	}
	if _, err := ResolveStyle(Style{TextTransform: "swapcase"}); err == nil {
		t.Fatal("expected transform error")
	}
	if _, err := ResolveStyle(Style{TextColor: "#12"}); err == nil {
		t.Fatal("expected color error")
	}
}

func TestTransformText(t *testing.T) {
	cases := []struct {
		transform TextTransform
		in, want  string
	}{
		{TransformNone, "Hello there", "Hello there"},
		{TransformUppercase, "Hello there", "HELLO THERE"},
		{TransformLowercase, "Hello THERE", "hello there"},
		{TransformCapitalize, "hello there", "Hello There"},
		{TransformCapitalize, "don't STOP", "Don't STOP"},
	}
	for _, tc := range cases {
		if got := TransformText(tc.in, tc.transform); got != tc.want {
			t.Fatalf("TransformText(%q, %q) = %q, want %q", tc.in, tc.transform, got, tc.want)
		}
	}
}
