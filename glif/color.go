package glif

import (
	"strconv"
	"strings"

	"github.com/npillmayer/ufo/core"
	"github.com/npillmayer/ufo/plist"
)

// Color is an RGBA color attached to anchors, guidelines, images and
// layers. Components are in the closed range 0…1.
type Color struct {
	R, G, B, A float64
}

// ParseColor reads the fixed "R,G,B,A" grammar: four decimal numbers,
// comma-separated, each within 0…1. Anything else is rejected.
func ParseColor(s string) (Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Color{}, core.Error(core.EINVALID, "color %q: expected 4 comma-separated components", s)
	}
	var c [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Color{}, core.WrapError(err, core.EINVALID, "color %q: component %d is not a number", s, i+1)
		}
		if f < 0 || f > 1 {
			return Color{}, core.Error(core.EINVALID, "color %q: component %d out of range 0…1", s, i+1)
		}
		c[i] = f
	}
	return Color{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}

// String renders the color in the canonical comma-separated form.
func (c Color) String() string {
	comp := []float64{c.R, c.G, c.B, c.A}
	strs := make([]string, 4)
	for i, f := range comp {
		strs[i] = plist.FormatReal(f)
	}
	return strings.Join(strs, ",")
}
