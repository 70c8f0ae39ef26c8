package caption

import (
	"fmt"
	"image/color"
	"strings"
)

// RenderMode selects the caption drawing strategy.
type RenderMode string

const (
	// RenderModeHorizontal lays all words of a caption on one line and
	// emphasizes the word matching the frame time (karaoke).
	RenderModeHorizontal RenderMode = "horizontal"
	// RenderModeProgressive stacks words vertically as they become active.
	RenderModeProgressive RenderMode = "progressive"
)

// TextAlign positions text relative to the style's x anchor.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Style is the caller-supplied caption style. Zero values mean "unset" and are
// filled by ResolveStyle; rendering code never consumes Style directly.
type Style struct {
	FontFamily      string  `json:"fontFamily,omitempty"`
	FontSize        float64 `json:"fontSize,omitempty"`
	TextColor       string  `json:"textColor,omitempty"`
	HighlightColor  string  `json:"highlightColor,omitempty"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	StrokeColor     string  `json:"strokeColor,omitempty"`
	StrokeWidth     float64 `json:"strokeWidth,omitempty"`
	PositionX       float64 `json:"positionX,omitempty"`
	PositionY       float64 `json:"positionY,omitempty"`
	Rotation        float64 `json:"rotation,omitempty"`
	Scale           float64 `json:"scale,omitempty"`
	RenderMode      string  `json:"renderMode,omitempty"`
	TextAlign       string  `json:"textAlign,omitempty"`
	TextTransform   string  `json:"textTransform,omitempty"`
	EmphasizeMode   *bool   `json:"emphasizeMode,omitempty"`
	BurnInSubtitles *bool   `json:"burnInSubtitles,omitempty"`
}

// Default style values applied by ResolveStyle.
const (
	defaultFontSize    = 42.0
	defaultPositionX   = 50.0
	defaultPositionY   = 80.0
	defaultStrokeWidth = 2.0

	defaultTextColor       = "#FFFFFF"
	defaultHighlightColor  = "#FFD700"
	defaultBackgroundColor = "rgba(0,0,0,0.55)"
)

// ResolvedStyle is the fully-populated, validated style produced once per
// frame render and consumed by pure drawing code.
type ResolvedStyle struct {
	FontFamily string
	FontSize   float64

	TextColor       color.NRGBA
	HighlightColor  color.NRGBA
	BackgroundColor color.NRGBA
	PaintBackground bool
	StrokeColor     color.NRGBA
	PaintStroke     bool
	StrokeWidth     int

	PositionX float64
	PositionY float64
	Rotation  float64
	Scale     float64

	Mode      RenderMode
	Align     TextAlign
	Transform TextTransform

	EmphasizeMode bool
	BurnIn        bool
}

// ResolveStyle fills defaults, normalizes enumerations, and parses colors. It
// is the single style-resolution step: everything downstream assumes a
// complete style and never re-checks fields.
func ResolveStyle(s Style) (ResolvedStyle, error) {
	out := ResolvedStyle{
		FontFamily:    strings.TrimSpace(s.FontFamily),
		FontSize:      s.FontSize,
		PositionX:     s.PositionX,
		PositionY:     s.PositionY,
		Rotation:      s.Rotation,
		Scale:         s.Scale,
		EmphasizeMode: true,
		BurnIn:        true,
	}
	if out.FontSize <= 0 {
		out.FontSize = defaultFontSize
	}
	if out.PositionX <= 0 || out.PositionX > 100 {
		out.PositionX = defaultPositionX
	}
	if out.PositionY <= 0 || out.PositionY > 100 {
		out.PositionY = defaultPositionY
	}
	if out.Scale <= 0 {
		out.Scale = 1.0
	}
	if s.EmphasizeMode != nil {
		out.EmphasizeMode = *s.EmphasizeMode
	}
	if s.BurnInSubtitles != nil {
		out.BurnIn = *s.BurnInSubtitles
	}

	var err error
	if out.Mode, err = normalizeMode(s.RenderMode); err != nil {
		return ResolvedStyle{}, err
	}
	if out.Align, err = normalizeAlign(s.TextAlign); err != nil {
		return ResolvedStyle{}, err
	}
	if out.Transform, err = normalizeTransform(s.TextTransform); err != nil {
		return ResolvedStyle{}, err
	}

	textColor := s.TextColor
	if strings.TrimSpace(textColor) == "" {
		textColor = defaultTextColor
	}
	if out.TextColor, _, err = ParseColor(textColor); err != nil {
		return ResolvedStyle{}, fmt.Errorf("text color: %w", err)
	}
	highlight := s.HighlightColor
	if strings.TrimSpace(highlight) == "" {
		highlight = defaultHighlightColor
	}
	if out.HighlightColor, _, err = ParseColor(highlight); err != nil {
		return ResolvedStyle{}, fmt.Errorf("highlight color: %w", err)
	}
	background := s.BackgroundColor
	if strings.TrimSpace(background) == "" {
		background = defaultBackgroundColor
	}
	if out.BackgroundColor, out.PaintBackground, err = ParseColor(background); err != nil {
		return ResolvedStyle{}, fmt.Errorf("background color: %w", err)
	}
	if out.StrokeColor, out.PaintStroke, err = ParseColor(s.StrokeColor); err != nil {
		return ResolvedStyle{}, fmt.Errorf("stroke color: %w", err)
	}
	width := s.StrokeWidth
	if width <= 0 {
		width = defaultStrokeWidth
	}
	out.StrokeWidth = int(width + 0.5)
	return out, nil
}

func normalizeMode(value string) (RenderMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "horizontal", "karaoke":
		return RenderModeHorizontal, nil
	case "progressive":
		return RenderModeProgressive, nil
	}
	return "", fmt.Errorf("render mode %q not recognized", value)
}

func normalizeAlign(value string) (TextAlign, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "center":
		return AlignCenter, nil
	case "left":
		return AlignLeft, nil
	case "right":
		return AlignRight, nil
	}
	return "", fmt.Errorf("text align %q not recognized", value)
}

func normalizeTransform(value string) (TextTransform, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return TransformNone, nil
	case "uppercase":
		return TransformUppercase, nil
	case "lowercase":
		return TransformLowercase, nil
	case "capitalize":
		return TransformCapitalize, nil
	}
	return "", fmt.Errorf("text transform %q not recognized", value)
}
