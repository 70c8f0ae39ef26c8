package raster

import (
	"fmt"
	"image"

	"log/slog"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"clipforge/internal/caption"
	"clipforge/internal/logging"
	"clipforge/internal/services"
)

// Caption pairs a subtitle frame with its resolved style. Built once per
// export by Prepare and shared read-only across workers.
type Caption struct {
	Frame caption.SubtitleFrame
	Style caption.ResolvedStyle
}

// Prepare resolves every frame's style up front so drawing code never sees
// an unresolved style. A style that fails to resolve fails the export before
// any frame is touched.
func Prepare(frames []caption.SubtitleFrame) ([]Caption, error) {
	out := make([]Caption, 0, len(frames))
	for _, frame := range frames {
		style, err := caption.ResolveStyle(frame.Style)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "rendering", "resolve style",
				fmt.Sprintf("caption %s", frame.ID), err)
		}
		out = append(out, Caption{Frame: frame, Style: style})
	}
	return out, nil
}

type faceKey struct {
	family string
	size   float64
}

// Renderer draws captions onto frame buffers. Each render worker owns one;
// the face cache is worker-local because faces are not safe for concurrent
// use.
type Renderer struct {
	library *FontLibrary
	logger  *slog.Logger
	faces   map[faceKey]font.Face
}

// NewRenderer constructs a renderer backed by the shared font library.
func NewRenderer(library *FontLibrary, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Renderer{
		library: library,
		logger:  logging.NewComponentLogger(logger, "rasterizer"),
		faces:   make(map[faceKey]font.Face),
	}
}

// Render draws every caption visible at tMs onto dst, in caption order. dst
// is modified in place.
func (r *Renderer) Render(dst *image.RGBA, captions []Caption, tMs int64) error {
	for i := range captions {
		c := &captions[i]
		if !c.Frame.ContainsTime(tMs) || !c.Style.BurnIn {
			continue
		}
		if err := r.renderCaption(dst, c, tMs); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderCaption(dst *image.RGBA, c *Caption, tMs int64) error {
	target := dst
	var layer *image.RGBA
	if c.Style.Rotation != 0 {
		layer = image.NewRGBA(dst.Bounds())
		target = layer
	}

	var err error
	words := c.Frame.VisibleWords()
	switch {
	case len(words) == 0:
		err = r.drawSimple(target, c)
	case c.Style.Mode == caption.RenderModeProgressive:
		err = r.drawProgressive(target, c, words, tMs)
	default:
		err = r.drawKaraoke(target, c, words, tMs)
	}
	if err != nil || layer == nil {
		return err
	}
	anchorX, anchorY := anchorPoint(dst.Bounds(), &c.Style)
	rotateComposite(dst, layer, image.Point{X: anchorX, Y: anchorY}, c.Style.Rotation)
	return nil
}

// drawSimple renders the caption's static text centered on the anchor.
func (r *Renderer) drawSimple(dst *image.RGBA, c *Caption) error {
	st := &c.Style
	text := caption.TransformText(c.Frame.DisplayText(), st.Transform)
	if text == "" {
		return nil
	}
	size := st.FontSize * st.Scale
	face, err := r.face(st.FontFamily, size)
	if err != nil {
		return err
	}
	width := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	ascent, descent := metrics.Ascent.Ceil(), metrics.Descent.Ceil()

	anchorX, baseline := anchorPoint(dst.Bounds(), st)
	x := alignedX(anchorX, width, st.Align)
	if st.PaintBackground {
		pad := boxPad(size)
		fillRect(dst, image.Rect(x-pad, baseline-ascent-pad, x+width+pad, baseline+descent+pad), st.BackgroundColor)
	}
	drawText(dst, face, text, x, baseline, st.TextColor, st)
	return nil
}

// drawKaraoke lays every word on one line and highlights the active one,
// either by growing it into the highlight color or by boxing it.
func (r *Renderer) drawKaraoke(dst *image.RGBA, c *Caption, words []caption.WordSegment, tMs int64) error {
	st := &c.Style
	size := st.FontSize * st.Scale
	normal, err := r.face(st.FontFamily, size)
	if err != nil {
		return err
	}
	emphasis, err := r.face(st.FontFamily, size*emphasisScale)
	if err != nil {
		return err
	}

	active := activeWordIndex(words, tMs)
	space := font.MeasureString(normal, " ").Ceil()
	texts := make([]string, len(words))
	widths := make([]int, len(words))
	total := 0
	for i, w := range words {
		texts[i] = caption.TransformText(w.DisplayText(), st.Transform)
		face := normal
		if i == active && st.EmphasizeMode {
			face = emphasis
		}
		widths[i] = font.MeasureString(face, texts[i]).Ceil()
		if i > 0 {
			total += space
		}
		total += widths[i]
	}

	anchorX, baseline := anchorPoint(dst.Bounds(), st)
	x := alignedX(anchorX, total, st.Align)
	metrics := normal.Metrics()
	ascent, descent := metrics.Ascent.Ceil(), metrics.Descent.Ceil()

	if st.PaintBackground {
		pad := boxPad(size)
		fillRect(dst, image.Rect(x-pad, baseline-ascent-pad, x+total+pad, baseline+descent+pad), st.BackgroundColor)
	}
	for i := range words {
		face, fill := normal, st.TextColor
		if i == active {
			if st.EmphasizeMode {
				face, fill = emphasis, st.HighlightColor
			} else {
				pad := wordPad(size)
				fillRect(dst, image.Rect(x-pad, baseline-ascent-pad, x+widths[i]+pad, baseline+descent+pad), st.HighlightColor)
			}
		}
		if texts[i] != "" {
			drawText(dst, face, texts[i], x, baseline, fill, st)
		}
		x += widths[i] + space
	}
	return nil
}

// drawProgressive stacks the words that have started by tMs, first word
// anchored at the style position and later words on lines below. The last
// word of the stack is the active one and gets the karaoke emphasis.
func (r *Renderer) drawProgressive(dst *image.RGBA, c *Caption, words []caption.WordSegment, tMs int64) error {
	st := &c.Style
	active := progressiveIndex(words, tMs)
	if active < 0 {
		return nil
	}
	size := st.FontSize * st.Scale
	normal, err := r.face(st.FontFamily, size)
	if err != nil {
		return err
	}
	emphasis, err := r.face(st.FontFamily, size*emphasisScale)
	if err != nil {
		return err
	}

	metrics := normal.Metrics()
	ascent, descent := metrics.Ascent.Ceil(), metrics.Descent.Ceil()
	lineAdvance := ascent + descent + int(size*0.25+0.5)
	anchorX, firstBaseline := anchorPoint(dst.Bounds(), st)

	for k, w := range words[:active+1] {
		text := caption.TransformText(w.DisplayText(), st.Transform)
		face, fill := normal, st.TextColor
		highlightBox := false
		if k == active {
			if st.EmphasizeMode {
				face, fill = emphasis, st.HighlightColor
			} else {
				highlightBox = true
			}
		}
		width := font.MeasureString(face, text).Ceil()
		baseline := firstBaseline + k*lineAdvance
		x := alignedX(anchorX, width, st.Align)
		if st.PaintBackground {
			pad := boxPad(size)
			fillRect(dst, image.Rect(x-pad, baseline-ascent-pad, x+width+pad, baseline+descent+pad), st.BackgroundColor)
		}
		if highlightBox {
			pad := wordPad(size)
			fillRect(dst, image.Rect(x-pad, baseline-ascent-pad, x+width+pad, baseline+descent+pad), st.HighlightColor)
		}
		if text != "" {
			drawText(dst, face, text, x, baseline, fill, st)
		}
	}
	return nil
}

func (r *Renderer) face(family string, size float64) (font.Face, error) {
	key := faceKey{family: family, size: size}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	parsed, fallback, err := r.library.Font(family)
	if err != nil {
		return nil, services.Wrap(services.ErrRender, "rendering", "load font", family, err)
	}
	if fallback {
		r.logger.Debug("font family unavailable, using bundled default", logging.String("family", family))
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrRender, "rendering", "build font face", family, err)
	}
	r.faces[key] = face
	return face, nil
}
