package glif

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/npillmayer/ufo/core"
	"github.com/npillmayer/ufo/plist"
)

// Encode serializes a glyph as a .glif document for the given target
// format version.
//
// Encoding against format 1 follows a fixed compatibility table: anchors
// are downgraded to the historical single-point contour convention;
// guidelines, images, identifiers and object libs have no format 1
// representation and yield a version error. Nothing is ever dropped
// silently.
func Encode(g *Glyph, target Version) ([]byte, error) {
	if target != Version1 && target != Version2 {
		return nil, core.Error(core.EVERSION, "unsupported glif target format %d", target)
	}
	if g.Lib != nil {
		if _, ok := g.Lib.Get(ObjectLibsKey); ok {
			return nil, core.Error(core.EINVALID,
				"glyph '%s': lib already carries a raw %s key", g.Name, ObjectLibsKey)
		}
	}
	if target == Version1 {
		if err := checkVersion1(g); err != nil {
			return nil, err
		}
	}
	lib, err := assembleLib(g, target)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(&buf, "<glyph name=\"%s\" format=\"%d\">\n", attrEscape(g.Name), target)
	encodeAdvance(&buf, g.Advance)
	for _, cp := range g.Codepoints {
		fmt.Fprintf(&buf, "\t<unicode hex=\"%04X\"/>\n", cp)
	}
	if g.Note != "" {
		fmt.Fprintf(&buf, "\t<note>%s</note>\n", textEscape(g.Note))
	}
	if target >= Version2 {
		encodeImage(&buf, g.Image)
		for i := range g.Guidelines {
			encodeGuideline(&buf, &g.Guidelines[i])
		}
		for i := range g.Anchors {
			encodeAnchor(&buf, &g.Anchors[i])
		}
	}
	encodeOutline(&buf, g, target)
	if lib != nil && lib.Len() > 0 {
		buf.WriteString("\t<lib>\n")
		plist.EncodeElement(&buf, lib, 2)
		buf.WriteString("\t</lib>\n")
	}
	buf.WriteString("</glyph>\n")
	return buf.Bytes(), nil
}

// checkVersion1 rejects features with no format 1 representation.
func checkVersion1(g *Glyph) error {
	versionErr := func(what string) error {
		return core.Error(core.EVERSION,
			"glyph '%s': %s cannot be represented in glif format 1", g.Name, what)
	}
	if len(g.Guidelines) > 0 {
		return versionErr("guidelines")
	}
	if g.Image != nil {
		return versionErr("an image reference")
	}
	for _, c := range g.libCarriers() {
		if c.objectIdentifier() != "" {
			return versionErr("object identifiers")
		}
		if lib := c.objectLib(); lib != nil && lib.Len() > 0 {
			return versionErr("object libs")
		}
	}
	return nil
}

// assembleLib merges collected object libs into a copy of the glyph lib.
func assembleLib(g *Glyph, target Version) (*plist.Dict, error) {
	var lib *plist.Dict
	if g.Lib != nil {
		lib = g.Lib.Clone()
	}
	if target < Version2 {
		return lib, nil
	}
	objectLibs, err := g.collectObjectLibs()
	if err != nil {
		return nil, err
	}
	if objectLibs != nil {
		if lib == nil {
			lib = plist.NewDict()
		}
		lib.Set(ObjectLibsKey, objectLibs)
	}
	return lib, nil
}

func encodeAdvance(buf *bytes.Buffer, adv *Advance) {
	if adv == nil {
		return
	}
	buf.WriteString("\t<advance")
	if adv.Width != 0 {
		fmt.Fprintf(buf, " width=\"%s\"", formatNum(adv.Width))
	}
	if adv.Height != 0 {
		fmt.Fprintf(buf, " height=\"%s\"", formatNum(adv.Height))
	}
	buf.WriteString("/>\n")
}

func encodeImage(buf *bytes.Buffer, img *Image) {
	if img == nil {
		return
	}
	fmt.Fprintf(buf, "\t<image fileName=\"%s\"", attrEscape(img.FileName))
	encodeTransform(buf, img.Transform)
	if img.Color != nil {
		fmt.Fprintf(buf, " color=\"%s\"", img.Color)
	}
	buf.WriteString("/>\n")
}

func encodeGuideline(buf *bytes.Buffer, gl *Guideline) {
	buf.WriteString("\t<guideline")
	if gl.X != nil {
		fmt.Fprintf(buf, " x=\"%s\"", formatNum(*gl.X))
	}
	if gl.Y != nil {
		fmt.Fprintf(buf, " y=\"%s\"", formatNum(*gl.Y))
	}
	if gl.Angle != nil {
		fmt.Fprintf(buf, " angle=\"%s\"", formatNum(*gl.Angle))
	}
	if gl.Name != "" {
		fmt.Fprintf(buf, " name=\"%s\"", attrEscape(gl.Name))
	}
	if gl.Color != nil {
		fmt.Fprintf(buf, " color=\"%s\"", gl.Color)
	}
	if gl.Identifier != "" {
		fmt.Fprintf(buf, " identifier=\"%s\"", attrEscape(string(gl.Identifier)))
	}
	buf.WriteString("/>\n")
}

func encodeAnchor(buf *bytes.Buffer, a *Anchor) {
	fmt.Fprintf(buf, "\t<anchor x=\"%s\" y=\"%s\"", formatNum(a.X), formatNum(a.Y))
	if a.Name != "" {
		fmt.Fprintf(buf, " name=\"%s\"", attrEscape(a.Name))
	}
	if a.Color != nil {
		fmt.Fprintf(buf, " color=\"%s\"", a.Color)
	}
	if a.Identifier != "" {
		fmt.Fprintf(buf, " identifier=\"%s\"", attrEscape(string(a.Identifier)))
	}
	buf.WriteString("/>\n")
}

func encodeOutline(buf *bytes.Buffer, g *Glyph, target Version) {
	downgraded := target < Version2 && len(g.Anchors) > 0
	if len(g.Outline) == 0 && !downgraded {
		return
	}
	buf.WriteString("\t<outline>\n")
	if downgraded {
		// format 1 convention: anchors become named one-point open contours
		for i := range g.Anchors {
			a := &g.Anchors[i]
			buf.WriteString("\t\t<contour>\n")
			fmt.Fprintf(buf, "\t\t\t<point x=\"%s\" y=\"%s\" type=\"move\" name=\"%s\"/>\n",
				formatNum(a.X), formatNum(a.Y), attrEscape(a.Name))
			buf.WriteString("\t\t</contour>\n")
		}
	}
	for _, el := range g.Outline {
		switch x := el.(type) {
		case *Contour:
			encodeContour(buf, x, target)
		case *Component:
			encodeComponent(buf, x, target)
		}
	}
	buf.WriteString("\t</outline>\n")
}

func encodeContour(buf *bytes.Buffer, c *Contour, target Version) {
	buf.WriteString("\t\t<contour")
	if c.Identifier != "" && target >= Version2 {
		fmt.Fprintf(buf, " identifier=\"%s\"", attrEscape(string(c.Identifier)))
	}
	if len(c.Points) == 0 {
		buf.WriteString("/>\n")
		return
	}
	buf.WriteString(">\n")
	for i := range c.Points {
		encodePoint(buf, &c.Points[i], target)
	}
	buf.WriteString("\t\t</contour>\n")
}

func encodePoint(buf *bytes.Buffer, pt *Point, target Version) {
	fmt.Fprintf(buf, "\t\t\t<point x=\"%s\" y=\"%s\"", formatNum(pt.X), formatNum(pt.Y))
	if pt.Type != OffCurve {
		fmt.Fprintf(buf, " type=\"%s\"", pt.Type)
	}
	if pt.Smooth {
		buf.WriteString(" smooth=\"yes\"")
	}
	if pt.Name != "" {
		fmt.Fprintf(buf, " name=\"%s\"", attrEscape(pt.Name))
	}
	if pt.Identifier != "" && target >= Version2 {
		fmt.Fprintf(buf, " identifier=\"%s\"", attrEscape(string(pt.Identifier)))
	}
	buf.WriteString("/>\n")
}

func encodeComponent(buf *bytes.Buffer, c *Component, target Version) {
	fmt.Fprintf(buf, "\t\t<component base=\"%s\"", attrEscape(c.Base))
	encodeTransform(buf, c.Transform)
	if c.Identifier != "" && target >= Version2 {
		fmt.Fprintf(buf, " identifier=\"%s\"", attrEscape(string(c.Identifier)))
	}
	buf.WriteString("/>\n")
}

// encodeTransform writes the transform coefficients which differ from
// the identity, in canonical attribute order.
func encodeTransform(buf *bytes.Buffer, t AffineTransform) {
	id := Identity()
	coeffs := []struct {
		name     string
		val, def float64
	}{
		{"xScale", t.XScale, id.XScale},
		{"xyScale", t.XYScale, id.XYScale},
		{"yxScale", t.YXScale, id.YXScale},
		{"yScale", t.YScale, id.YScale},
		{"xOffset", t.XOffset, id.XOffset},
		{"yOffset", t.YOffset, id.YOffset},
	}
	for _, c := range coeffs {
		if c.val != c.def {
			fmt.Fprintf(buf, " %s=\"%s\"", c.name, formatNum(c.val))
		}
	}
}

// formatNum renders a coordinate without spurious precision: integral
// values carry no fraction part, everything else uses the minimal stable
// decimal representation.
func formatNum(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func attrEscape(s string) string { return attrEscaper.Replace(s) }
func textEscape(s string) string { return textEscaper.Replace(s) }
