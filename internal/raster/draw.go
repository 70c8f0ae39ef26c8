package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"clipforge/internal/caption"
)

var shadowColor = color.NRGBA{A: 180}

// fillRect paints a rectangle with source-over blending, clipped to dst.
func fillRect(dst *image.RGBA, rect image.Rectangle, c color.NRGBA) {
	draw.Draw(dst, rect.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

// drawText draws one run of text at the baseline position: drop shadow
// first, then the stroke ring, then the fill.
func drawText(dst *image.RGBA, face font.Face, text string, x, y int, fill color.NRGBA, st *caption.ResolvedStyle) {
	shadow := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(shadowColor),
		Face: face,
		Dot:  fixed.P(x+2, y+2),
	}
	shadow.DrawString(text)

	if st.PaintStroke && st.StrokeWidth > 0 {
		strokeSrc := image.NewUniform(st.StrokeColor)
		for _, off := range strokeOffsets(st.StrokeWidth) {
			d := &font.Drawer{
				Dst:  dst,
				Src:  strokeSrc,
				Face: face,
				Dot:  fixed.P(x+off.X, y+off.Y),
			}
			d.DrawString(text)
		}
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fill),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// strokeOffsets is the ring of offsets that approximates a text outline by
// redrawing the glyphs shifted in eight directions.
func strokeOffsets(width int) []image.Point {
	w := width
	return []image.Point{
		{-w, -w}, {0, -w}, {w, -w},
		{-w, 0}, {w, 0},
		{-w, w}, {0, w}, {w, w},
	}
}

// rotateComposite draws layer onto dst rotated around the anchor, sampling
// the layer with inverse nearest-neighbor mapping. Only pixels the layer
// actually painted are composited.
func rotateComposite(dst, layer *image.RGBA, anchor image.Point, degrees float64) {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	bounds := dst.Bounds()
	layerBounds := layer.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dx := float64(x - anchor.X)
			dy := float64(y - anchor.Y)
			sx := anchor.X + int(math.Round(dx*cos+dy*sin))
			sy := anchor.Y + int(math.Round(-dx*sin+dy*cos))
			if sx < layerBounds.Min.X || sx >= layerBounds.Max.X || sy < layerBounds.Min.Y || sy >= layerBounds.Max.Y {
				continue
			}
			src := layer.RGBAAt(sx, sy)
			if src.A == 0 {
				continue
			}
			blendPixel(dst, x, y, src)
		}
	}
}

// blendPixel composites one premultiplied source pixel over dst.
func blendPixel(dst *image.RGBA, x, y int, src color.RGBA) {
	if src.A == 0xFF {
		dst.SetRGBA(x, y, src)
		return
	}
	base := dst.RGBAAt(x, y)
	inv := uint32(255 - src.A)
	dst.SetRGBA(x, y, color.RGBA{
		R: uint8(uint32(src.R) + uint32(base.R)*inv/255),
		G: uint8(uint32(src.G) + uint32(base.G)*inv/255),
		B: uint8(uint32(src.B) + uint32(base.B)*inv/255),
		A: uint8(uint32(src.A) + uint32(base.A)*inv/255),
	})
}
