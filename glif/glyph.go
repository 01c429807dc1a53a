package glif

import (
	"github.com/google/uuid"
	"github.com/npillmayer/ufo/core"
	"github.com/npillmayer/ufo/plist"
)

// Version numbers a .glif document format.
type Version int

// Known glif format versions.
const (
	Version1 Version = 1
	Version2 Version = 2
)

// ObjectLibsKey is the glyph-lib key under which per-object extension
// data travels on disk.
const ObjectLibsKey = "public.objectLibs"

// Glyph is one glyph of a layer: metrics, outline, attachment points and
// extension data. Glyphs own their contours, components, anchors and
// guidelines exclusively; a component references its base glyph by name
// only, never by pointer.
type Glyph struct {
	Name       string
	Advance    *Advance // nil if the document carries no advance
	Codepoints []rune   // ordered, may be empty
	Note       string
	Guidelines []Guideline
	Anchors    []Anchor
	Outline    []OutlineElement // contours and components in file order
	Image      *Image
	Lib        *plist.Dict // nil means no lib
}

// NewGlyph creates an empty glyph with the given name.
func NewGlyph(name string) *Glyph {
	return &Glyph{Name: name}
}

// Advance is the horizontal and vertical advance of a glyph.
// Height defaults to 0 and is frequently absent.
type Advance struct {
	Width  float64
	Height float64
}

// OutlineElement is either a *Contour or a *Component. The variant is
// closed; consumers switch exhaustively over the two types.
type OutlineElement interface {
	isOutlineElement()
}

func (*Contour) isOutlineElement()   {}
func (*Component) isOutlineElement() {}

// Contours returns the glyph's contours in outline order.
func (g *Glyph) Contours() []*Contour {
	var cs []*Contour
	for _, el := range g.Outline {
		if c, ok := el.(*Contour); ok {
			cs = append(cs, c)
		}
	}
	return cs
}

// Components returns the glyph's components in outline order.
func (g *Glyph) Components() []*Component {
	var cs []*Component
	for _, el := range g.Outline {
		if c, ok := el.(*Component); ok {
			cs = append(cs, c)
		}
	}
	return cs
}

// Contour is an ordered sequence of points. A contour starting with a
// move point is open; any other contour is closed and cyclic.
type Contour struct {
	Points     []Point
	Identifier Identifier
	Lib        *plist.Dict
}

// IsClosed reports whether the contour is closed. An empty contour
// counts as closed.
func (c *Contour) IsClosed() bool {
	return len(c.Points) == 0 || c.Points[0].Type != Move
}

// PointType tags the role of a point within its contour.
type PointType int8

// The closed set of point types.
const (
	OffCurve PointType = iota // control point of a curve or qcurve segment
	Move                      // start of an open contour; first point only
	Line                      // on-curve, straight segment from the previous point
	Curve                     // on-curve, ends a cubic segment (0-2 off-curves)
	QCurve                    // on-curve, ends a quadratic segment
)

func (pt PointType) String() string {
	switch pt {
	case Move:
		return "move"
	case Line:
		return "line"
	case OffCurve:
		return "offcurve"
	case Curve:
		return "curve"
	case QCurve:
		return "qcurve"
	}
	return "<unknown point type>"
}

// ParsePointType maps the wire spelling of a point type. An absent type
// attribute means offcurve.
func ParsePointType(s string) (PointType, bool) {
	switch s {
	case "", "offcurve":
		return OffCurve, true
	case "move":
		return Move, true
	case "line":
		return Line, true
	case "curve":
		return Curve, true
	case "qcurve":
		return QCurve, true
	}
	return OffCurve, false
}

// Point is one point of a contour. Smooth marks an on-curve point as a
// smooth joint rather than a corner.
type Point struct {
	X, Y       float64
	Type       PointType
	Smooth     bool
	Name       string
	Identifier Identifier
	Lib        *plist.Dict
}

// Component places another glyph of the same layer, transformed, into
// this glyph's outline.
type Component struct {
	Base       string // name of the referenced glyph
	Transform  AffineTransform
	Identifier Identifier
	Lib        *plist.Dict
}

// Anchor is a named attachment point.
type Anchor struct {
	X, Y       float64
	Name       string
	Color      *Color
	Identifier Identifier
	Lib        *plist.Dict
}

// Guideline is a line given by a point and an angle. X alone describes a
// vertical line, Y alone a horizontal one; with an angle both coordinates
// are required. Guidelines appear per glyph and, via fontinfo, per font.
type Guideline struct {
	X, Y, Angle *float64
	Name        string
	Color       *Color
	Identifier  Identifier
	Lib         *plist.Dict
}

// Image is a reference to an image file of the package's images store.
type Image struct {
	FileName  string
	Transform AffineTransform
	Color     *Color
}

// AffineTransform holds the six coefficients of an affine transformation
// matrix, in the order they appear on disk.
type AffineTransform struct {
	XScale  float64
	XYScale float64
	YXScale float64
	YScale  float64
	XOffset float64
	YOffset float64
}

// Identity returns the identity transformation.
func Identity() AffineTransform {
	return AffineTransform{XScale: 1, YScale: 1}
}

// IsIdentity reports whether the transform is the identity.
func (t AffineTransform) IsIdentity() bool {
	return t == Identity()
}

// Identifier is a per-object unique key, used to attach object libs.
// Identifiers drawn from NewIdentifier are random; within one document
// they are astronomically unlikely to collide, and this library does not
// check them against already-assigned identifiers.
type Identifier string

// NewIdentifier returns a fresh random identifier (UUIDv4).
func NewIdentifier() Identifier {
	return Identifier(uuid.NewString())
}

// IsValid reports whether an identifier satisfies the structural rules:
// 1 to 100 characters from the printable ASCII range.
func (id Identifier) IsValid() bool {
	if len(id) == 0 || len(id) > 100 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x20 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// --- Object libs -----------------------------------------------------------

// libCarrier is implemented by every entity that can carry an object lib.
type libCarrier interface {
	objectIdentifier() Identifier
	setObjectLib(*plist.Dict)
	objectLib() *plist.Dict
}

func (a *Anchor) objectIdentifier() Identifier  { return a.Identifier }
func (a *Anchor) setObjectLib(d *plist.Dict)    { a.Lib = d }
func (a *Anchor) objectLib() *plist.Dict        { return a.Lib }
func (g *Guideline) objectIdentifier() Identifier { return g.Identifier }
func (g *Guideline) setObjectLib(d *plist.Dict) { g.Lib = d }
func (g *Guideline) objectLib() *plist.Dict     { return g.Lib }
func (c *Contour) objectIdentifier() Identifier { return c.Identifier }
func (c *Contour) setObjectLib(d *plist.Dict)   { c.Lib = d }
func (c *Contour) objectLib() *plist.Dict       { return c.Lib }
func (p *Point) objectIdentifier() Identifier   { return p.Identifier }
func (p *Point) setObjectLib(d *plist.Dict)     { p.Lib = d }
func (p *Point) objectLib() *plist.Dict         { return p.Lib }
func (c *Component) objectIdentifier() Identifier { return c.Identifier }
func (c *Component) setObjectLib(d *plist.Dict) { c.Lib = d }
func (c *Component) objectLib() *plist.Dict     { return c.Lib }

// libCarriers walks the glyph's lib-capable objects in document order.
func (g *Glyph) libCarriers() []libCarrier {
	var out []libCarrier
	for i := range g.Anchors {
		out = append(out, &g.Anchors[i])
	}
	for i := range g.Guidelines {
		out = append(out, &g.Guidelines[i])
	}
	for _, el := range g.Outline {
		switch x := el.(type) {
		case *Contour:
			out = append(out, x)
			for i := range x.Points {
				out = append(out, &x.Points[i])
			}
		case *Component:
			out = append(out, x)
		}
	}
	return out
}

// distributeObjectLibs moves entries of the glyph lib's public.objectLibs
// dictionary onto the objects carrying the matching identifier. The key
// is removed from the glyph lib afterwards. Non-dictionary entries are
// malformed.
func (g *Glyph) distributeObjectLibs() error {
	if g.Lib == nil {
		return nil
	}
	raw, ok := g.Lib.Get(ObjectLibsKey)
	if !ok {
		return nil
	}
	g.Lib.Delete(ObjectLibsKey)
	libs, ok := raw.(*plist.Dict)
	if !ok {
		return core.Error(core.EPARSE, "glyph '%s': %s must be a dictionary", g.Name, ObjectLibsKey)
	}
	carriers := g.libCarriers()
	for _, key := range libs.Keys() {
		entry, _ := libs.Get(key)
		lib, ok := entry.(*plist.Dict)
		if !ok {
			return core.Error(core.EPARSE, "glyph '%s': object lib for '%s' must be a dictionary",
				g.Name, key)
		}
		for _, c := range carriers {
			if string(c.objectIdentifier()) == key {
				c.setObjectLib(lib)
				break
			}
		}
		// entries without a matching object are dropped silently, as
		// dangling object libs carry no recoverable meaning
	}
	return nil
}

// collectObjectLibs gathers object libs back into a public.objectLibs
// dictionary. Objects carrying a lib must have an identifier.
func (g *Glyph) collectObjectLibs() (*plist.Dict, error) {
	var libs *plist.Dict
	for _, c := range g.libCarriers() {
		lib := c.objectLib()
		if lib == nil || lib.Len() == 0 {
			continue
		}
		id := c.objectIdentifier()
		if id == "" {
			return nil, core.Error(core.EINVALID,
				"glyph '%s': object lib requires an identifier", g.Name)
		}
		if libs == nil {
			libs = plist.NewDict()
		}
		libs.Set(string(id), lib)
	}
	return libs, nil
}
