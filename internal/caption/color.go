package caption

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses a style color value. Accepted forms: "transparent" (and
// the empty string), 6 or 8 digit hex with optional leading '#', and CSS style
// rgb(r,g,b) / rgba(r,g,b,a) with alpha in 0..1. The painted result is false
// for transparent values, which render as "no paint" rather than black.
func ParseColor(value string) (color.NRGBA, bool, error) {
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)
	if value == "" || lower == "transparent" {
		return color.NRGBA{}, false, nil
	}
	if strings.HasPrefix(lower, "rgba(") || strings.HasPrefix(lower, "rgb(") {
		return parseRGBFunc(lower)
	}
	return parseHex(strings.TrimPrefix(value, "#"))
}

func parseHex(hex string) (color.NRGBA, bool, error) {
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, false, fmt.Errorf("color %q: want 6 or 8 hex digits", hex)
	}
	raw, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return color.NRGBA{}, false, fmt.Errorf("color %q: %w", hex, err)
	}
	c := color.NRGBA{A: 0xFF}
	if len(hex) == 8 {
		c.A = uint8(raw & 0xFF)
		raw >>= 8
	}
	c.B = uint8(raw & 0xFF)
	c.G = uint8(raw >> 8 & 0xFF)
	c.R = uint8(raw >> 16 & 0xFF)
	if c.A == 0 {
		return c, false, nil
	}
	return c, true, nil
}

func parseRGBFunc(value string) (color.NRGBA, bool, error) {
	open := strings.IndexByte(value, '(')
	close := strings.IndexByte(value, ')')
	if open < 0 || close < open {
		return color.NRGBA{}, false, fmt.Errorf("color %q: malformed function", value)
	}
	wantAlpha := strings.HasPrefix(value, "rgba")
	parts := strings.Split(value[open+1:close], ",")
	if wantAlpha && len(parts) != 4 || !wantAlpha && len(parts) != 3 {
		return color.NRGBA{}, false, fmt.Errorf("color %q: wrong component count", value)
	}
	channel := func(s string) (uint8, error) {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, err
		}
		if n < 0 || n > 255 {
			return 0, fmt.Errorf("channel %d out of range", n)
		}
		return uint8(n), nil
	}
	r, errR := channel(parts[0])
	g, errG := channel(parts[1])
	b, errB := channel(parts[2])
	if errR != nil || errG != nil || errB != nil {
		return color.NRGBA{}, false, fmt.Errorf("color %q: bad channel", value)
	}
	c := color.NRGBA{R: r, G: g, B: b, A: 0xFF}
	if wantAlpha {
		alpha, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || alpha < 0 || alpha > 1 {
			return color.NRGBA{}, false, fmt.Errorf("color %q: alpha must be 0..1", value)
		}
		c.A = uint8(alpha*255 + 0.5)
	}
	if c.A == 0 {
		return c, false, nil
	}
	return c, true, nil
}
