package glif

import (
	"github.com/npillmayer/arithm"
)

// Geometry convenience helpers. These are never required for format
// correctness; curve mathematics proper (flattening, exact curve
// extrema) is delegated to external geometry packages. What lives here
// operates on control points only.

// P creates a pair from glyph-space coordinates.
func P(x, y float64) arithm.Pair {
	return arithm.Pair(complex(x, y))
}

// Pair returns the point's location as a pair.
func (pt *Point) Pair() arithm.Pair {
	return P(pt.X, pt.Y)
}

// Apply maps a point through the affine transform.
func (t AffineTransform) Apply(p arithm.Pair) arithm.Pair {
	z := p.C()
	x, y := real(z), imag(z)
	return P(
		t.XScale*x+t.YXScale*y+t.XOffset,
		t.XYScale*x+t.YScale*y+t.YOffset,
	)
}

// Compose returns the transform equivalent to applying u first, then t.
func (t AffineTransform) Compose(u AffineTransform) AffineTransform {
	return AffineTransform{
		XScale:  u.XScale*t.XScale + u.XYScale*t.YXScale,
		XYScale: u.XScale*t.XYScale + u.XYScale*t.YScale,
		YXScale: u.YXScale*t.XScale + u.YScale*t.YXScale,
		YScale:  u.YXScale*t.XYScale + u.YScale*t.YScale,
		XOffset: u.XOffset*t.XScale + u.YOffset*t.YXScale + t.XOffset,
		YOffset: u.XOffset*t.XYScale + u.YOffset*t.YScale + t.YOffset,
	}
}

// ControlBox is an axis-aligned box over control points. The true ink
// box of a curve may be smaller; it never is larger.
type ControlBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Extend grows the box to cover a point.
func (b ControlBox) Extend(p arithm.Pair) ControlBox {
	z := p.C()
	x, y := real(z), imag(z)
	if x < b.MinX {
		b.MinX = x
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if y > b.MaxY {
		b.MaxY = y
	}
	return b
}

// Union merges two boxes.
func (b ControlBox) Union(other ControlBox) ControlBox {
	b = b.Extend(P(other.MinX, other.MinY))
	return b.Extend(P(other.MaxX, other.MaxY))
}

// ControlBox computes the box over the glyph's own contour points,
// transformed by t. Components are not resolved here; that needs the
// owning layer and is a layer-level operation. The second return value
// is false for a glyph without contour points.
func (g *Glyph) ControlBox(t AffineTransform) (ControlBox, bool) {
	var box ControlBox
	found := false
	for _, c := range g.Contours() {
		for i := range c.Points {
			p := t.Apply(c.Points[i].Pair())
			if !found {
				z := p.C()
				box = ControlBox{MinX: real(z), MinY: imag(z), MaxX: real(z), MaxY: imag(z)}
				found = true
				continue
			}
			box = box.Extend(p)
		}
	}
	return box, found
}
