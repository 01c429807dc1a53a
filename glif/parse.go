package glif

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/ufo/core"
	"github.com/npillmayer/ufo/plist"
)

// Parse decodes a .glif document into a Glyph.
//
// Parsing is lenient about element order across categories but preserves
// order within the outline and within each contour, as point order is
// geometrically significant. Unknown elements are rejected. Whether the
// glyph's name matches the layer's contents mapping is not this codec's
// concern; the validator checks that with the full graph at hand.
func Parse(data []byte) (*Glyph, error) {
	p := &glifParser{d: xml.NewDecoder(bytes.NewReader(data))}
	root, err := p.rootElement()
	if err != nil {
		return nil, err
	}
	if err := p.parseGlyphElement(*root); err != nil {
		return nil, err
	}
	if p.version == Version1 {
		p.liftVersion1Anchors()
	}
	if err := p.g.distributeObjectLibs(); err != nil {
		return nil, err
	}
	tracer().Debugf("parsed glyph '%s' (format %d), %d outline elements",
		p.g.Name, p.version, len(p.g.Outline))
	return p.g, nil
}

// DocumentVersion reports the format version a .glif document declares,
// without parsing its body.
func DocumentVersion(data []byte) (Version, error) {
	p := &glifParser{d: xml.NewDecoder(bytes.NewReader(data))}
	root, err := p.rootElement()
	if err != nil {
		return 0, err
	}
	_, v, err := p.glyphAttrs(*root)
	return v, err
}

type glifParser struct {
	d       *xml.Decoder
	version Version
	g       *Glyph
}

func (p *glifParser) fail(format string, v ...interface{}) error {
	args := append(v, p.d.InputOffset())
	return core.Error(core.EPARSE, "glif: "+format+" (at byte %d)", args...)
}

func (p *glifParser) rootElement() (*xml.StartElement, error) {
	for {
		tok, err := p.d.Token()
		if err == io.EOF {
			return nil, p.fail("document contains no <glyph> element")
		}
		if err != nil {
			return nil, core.WrapError(err, core.EPARSE, "glif: XML error")
		}
		if start, ok := tok.(xml.StartElement); ok {
			if start.Name.Local != "glyph" {
				return nil, p.fail("expected <glyph> root, have <%s>", start.Name.Local)
			}
			copied := start.Copy()
			return &copied, nil
		}
	}
}

func (p *glifParser) glyphAttrs(root xml.StartElement) (string, Version, error) {
	var name string
	version := Version(0)
	for _, a := range root.Attr {
		switch a.Name.Local {
		case "name":
			name = a.Value
		case "format":
			n, err := strconv.Atoi(a.Value)
			if err != nil {
				return "", 0, p.fail("malformed format attribute %q", a.Value)
			}
			version = Version(n)
		case "formatMinor":
			// tolerated, carries no structural meaning for formats 1 and 2
		}
	}
	if name == "" {
		return "", 0, p.fail("<glyph> element carries no name")
	}
	if version != Version1 && version != Version2 {
		return "", 0, p.fail("unsupported glif format version %d", version)
	}
	return name, version, nil
}

func (p *glifParser) parseGlyphElement(root xml.StartElement) error {
	name, version, err := p.glyphAttrs(root)
	if err != nil {
		return err
	}
	p.version = version
	p.g = NewGlyph(name)
	seen := make(map[string]bool)
	for {
		tok, err := p.d.Token()
		if err != nil {
			return p.fail("unterminated <glyph> element")
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			once := t.Name.Local != "unicode" && t.Name.Local != "anchor" && t.Name.Local != "guideline"
			if once && seen[t.Name.Local] {
				return p.fail("more than one <%s> element", t.Name.Local)
			}
			seen[t.Name.Local] = true
			if err := p.parseChild(t); err != nil {
				return err
			}
		}
	}
}

func (p *glifParser) parseChild(el xml.StartElement) error {
	switch el.Name.Local {
	case "advance":
		return p.parseAdvance(el)
	case "unicode":
		return p.parseUnicode(el)
	case "note":
		text, err := p.text(el)
		if err != nil {
			return err
		}
		p.g.Note = strings.TrimSpace(text)
		return nil
	case "image":
		if p.version < Version2 {
			return p.fail("<image> is not legal before glif format 2")
		}
		return p.parseImage(el)
	case "guideline":
		if p.version < Version2 {
			return p.fail("<guideline> is not legal before glif format 2")
		}
		return p.parseGuideline(el)
	case "anchor":
		if p.version < Version2 {
			return p.fail("<anchor> is not legal before glif format 2")
		}
		return p.parseAnchor(el)
	case "outline":
		return p.parseOutline(el)
	case "lib":
		return p.parseLib(el)
	}
	return p.fail("unknown element <%s>", el.Name.Local)
}

func (p *glifParser) parseAdvance(el xml.StartElement) error {
	adv := &Advance{}
	for _, a := range el.Attr {
		f, err := strconv.ParseFloat(a.Value, 64)
		if err != nil {
			return p.fail("malformed advance %s %q", a.Name.Local, a.Value)
		}
		switch a.Name.Local {
		case "width":
			adv.Width = f
		case "height":
			adv.Height = f
		}
	}
	p.g.Advance = adv
	return p.d.Skip()
}

func (p *glifParser) parseUnicode(el xml.StartElement) error {
	hex, ok := attr(el, "hex")
	if !ok {
		return p.fail("<unicode> element carries no hex attribute")
	}
	code, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return p.fail("malformed unicode hex value %q", hex)
	}
	p.g.Codepoints = append(p.g.Codepoints, rune(code))
	return p.d.Skip()
}

func (p *glifParser) parseImage(el xml.StartElement) error {
	img := &Image{Transform: Identity()}
	fileName, ok := attr(el, "fileName")
	if !ok || fileName == "" {
		return p.fail("<image> element carries no fileName")
	}
	img.FileName = fileName
	if err := p.transformAttrs(el, &img.Transform); err != nil {
		return err
	}
	color, err := p.colorAttr(el)
	if err != nil {
		return err
	}
	img.Color = color
	p.g.Image = img
	return p.d.Skip()
}

func (p *glifParser) parseGuideline(el xml.StartElement) error {
	gl := Guideline{}
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "x", "y", "angle":
			f, err := strconv.ParseFloat(a.Value, 64)
			if err != nil {
				return p.fail("malformed guideline %s %q", a.Name.Local, a.Value)
			}
			v := f
			switch a.Name.Local {
			case "x":
				gl.X = &v
			case "y":
				gl.Y = &v
			case "angle":
				gl.Angle = &v
			}
		case "name":
			gl.Name = a.Value
		case "identifier":
			gl.Identifier = Identifier(a.Value)
		}
	}
	color, err := p.colorAttr(el)
	if err != nil {
		return err
	}
	gl.Color = color
	p.g.Guidelines = append(p.g.Guidelines, gl)
	return p.d.Skip()
}

func (p *glifParser) parseAnchor(el xml.StartElement) error {
	a := Anchor{}
	x, err := p.floatAttr(el, "x")
	if err != nil {
		return err
	}
	y, err := p.floatAttr(el, "y")
	if err != nil {
		return err
	}
	a.X, a.Y = x, y
	a.Name, _ = attr(el, "name")
	if id, ok := attr(el, "identifier"); ok {
		a.Identifier = Identifier(id)
	}
	color, err := p.colorAttr(el)
	if err != nil {
		return err
	}
	a.Color = color
	p.g.Anchors = append(p.g.Anchors, a)
	return p.d.Skip()
}

func (p *glifParser) parseOutline(el xml.StartElement) error {
	for {
		tok, err := p.d.Token()
		if err != nil {
			return p.fail("unterminated <outline>")
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			switch t.Name.Local {
			case "contour":
				if err := p.parseContour(t); err != nil {
					return err
				}
			case "component":
				if err := p.parseComponent(t); err != nil {
					return err
				}
			default:
				return p.fail("unknown outline element <%s>", t.Name.Local)
			}
		}
	}
}

func (p *glifParser) parseContour(el xml.StartElement) error {
	c := &Contour{}
	if id, ok := attr(el, "identifier"); ok {
		if err := p.requireVersion2("contour identifier"); err != nil {
			return err
		}
		c.Identifier = Identifier(id)
	}
	for {
		tok, err := p.d.Token()
		if err != nil {
			return p.fail("unterminated <contour>")
		}
		switch t := tok.(type) {
		case xml.EndElement:
			p.g.Outline = append(p.g.Outline, c)
			return nil
		case xml.StartElement:
			if t.Name.Local != "point" {
				return p.fail("unknown contour element <%s>", t.Name.Local)
			}
			pt, err := p.parsePoint(t)
			if err != nil {
				return err
			}
			c.Points = append(c.Points, pt)
		}
	}
}

func (p *glifParser) parsePoint(el xml.StartElement) (Point, error) {
	pt := Point{}
	x, err := p.floatAttr(el, "x")
	if err != nil {
		return pt, err
	}
	y, err := p.floatAttr(el, "y")
	if err != nil {
		return pt, err
	}
	pt.X, pt.Y = x, y
	typ, _ := attr(el, "type")
	ptype, known := ParsePointType(typ)
	if !known {
		return pt, p.fail("unknown point type %q", typ)
	}
	pt.Type = ptype
	if smooth, ok := attr(el, "smooth"); ok {
		switch smooth {
		case "yes":
			pt.Smooth = true
		case "no":
			pt.Smooth = false
		default:
			return pt, p.fail("malformed smooth attribute %q", smooth)
		}
	}
	pt.Name, _ = attr(el, "name")
	if id, ok := attr(el, "identifier"); ok {
		if err := p.requireVersion2("point identifier"); err != nil {
			return pt, err
		}
		pt.Identifier = Identifier(id)
	}
	return pt, p.d.Skip()
}

func (p *glifParser) parseComponent(el xml.StartElement) error {
	c := &Component{Transform: Identity()}
	base, ok := attr(el, "base")
	if !ok || base == "" {
		return p.fail("<component> element carries no base glyph name")
	}
	c.Base = base
	if err := p.transformAttrs(el, &c.Transform); err != nil {
		return err
	}
	if id, ok := attr(el, "identifier"); ok {
		if err := p.requireVersion2("component identifier"); err != nil {
			return err
		}
		c.Identifier = Identifier(id)
	}
	p.g.Outline = append(p.g.Outline, c)
	return p.d.Skip()
}

func (p *glifParser) parseLib(el xml.StartElement) error {
	for {
		tok, err := p.d.Token()
		if err != nil {
			return p.fail("unterminated <lib>")
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if p.g.Lib == nil {
				p.g.Lib = plist.NewDict()
			}
			return nil
		case xml.StartElement:
			if p.g.Lib != nil {
				return p.fail("<lib> holds more than one value")
			}
			v, err := plist.ParseElement(p.d, t)
			if err != nil {
				return core.WrapError(err, core.EPARSE, "glif: malformed <lib> fragment")
			}
			dict, ok := v.(*plist.Dict)
			if !ok {
				return p.fail("<lib> must hold a dictionary")
			}
			p.g.Lib = dict
		}
	}
}

// liftVersion1Anchors rewrites the historical format 1 anchor convention:
// an open contour consisting of a single named move point is an anchor.
func (p *glifParser) liftVersion1Anchors() {
	var outline []OutlineElement
	for _, el := range p.g.Outline {
		c, ok := el.(*Contour)
		if ok && len(c.Points) == 1 && c.Points[0].Type == Move && c.Points[0].Name != "" {
			pt := c.Points[0]
			p.g.Anchors = append(p.g.Anchors, Anchor{X: pt.X, Y: pt.Y, Name: pt.Name})
			continue
		}
		outline = append(outline, el)
	}
	p.g.Outline = outline
}

// --- Small attribute helpers -----------------------------------------------

func attr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (p *glifParser) floatAttr(el xml.StartElement, name string) (float64, error) {
	s, ok := attr(el, name)
	if !ok {
		return 0, p.fail("<%s> element carries no %s attribute", el.Name.Local, name)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, p.fail("malformed %s attribute %q", name, s)
	}
	return f, nil
}

func (p *glifParser) colorAttr(el xml.StartElement) (*Color, error) {
	s, ok := attr(el, "color")
	if !ok {
		return nil, nil
	}
	c, err := ParseColor(s)
	if err != nil {
		return nil, p.fail("malformed color attribute %q", s)
	}
	return &c, nil
}

func (p *glifParser) transformAttrs(el xml.StartElement, t *AffineTransform) error {
	for _, a := range el.Attr {
		var target *float64
		switch a.Name.Local {
		case "xScale":
			target = &t.XScale
		case "xyScale":
			target = &t.XYScale
		case "yxScale":
			target = &t.YXScale
		case "yScale":
			target = &t.YScale
		case "xOffset":
			target = &t.XOffset
		case "yOffset":
			target = &t.YOffset
		default:
			continue
		}
		f, err := strconv.ParseFloat(a.Value, 64)
		if err != nil {
			return p.fail("malformed transform attribute %s=%q", a.Name.Local, a.Value)
		}
		*target = f
	}
	return nil
}

func (p *glifParser) requireVersion2(what string) error {
	if p.version >= Version2 {
		return nil
	}
	return p.fail("%s is not legal before glif format 2", what)
}

// text collects character data up to the element's end tag.
func (p *glifParser) text(el xml.StartElement) (string, error) {
	var sb strings.Builder
	for {
		tok, err := p.d.Token()
		if err != nil {
			return "", p.fail("unterminated <%s>", el.Name.Local)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return sb.String(), nil
		case xml.StartElement:
			return "", p.fail("unexpected <%s> inside <%s>", t.Name.Local, el.Name.Local)
		}
	}
}
