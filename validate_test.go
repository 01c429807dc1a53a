package ufo

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/ufo/glif"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Preparation ------------------------------------------------

type ValidateTestEnviron struct {
	suite.Suite
}

// listen for 'go test' command --> run test methods
func TestValidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.io")
	defer teardown()
	suite.Run(t, new(ValidateTestEnviron))
}

// cleanFont builds a small font that passes validation: two simple
// glyphs on the default layer.
func cleanFont() *Font {
	f := NewFont()
	layer := f.DefaultLayer()
	a := glif.NewGlyph("A")
	a.Outline = []glif.OutlineElement{&glif.Contour{Points: []glif.Point{
		{X: 0, Y: 0, Type: glif.Line},
		{X: 100, Y: 0, Type: glif.Line},
		{X: 50, Y: 200, Type: glif.Line},
	}}}
	b := glif.NewGlyph("B")
	layer.AddGlyph(a)
	layer.AddGlyph(b)
	return f
}

func findingKinds(r Report) []FindingKind {
	kinds := make([]FindingKind, len(r))
	for i, f := range r {
		kinds[i] = f.Kind
	}
	return kinds
}

// --- Tests -----------------------------------------------------------------

func (env *ValidateTestEnviron) TestCleanFont() {
	r := Validate(cleanFont(), FormatVersion3)
	env.Empty(r, "expected a clean font to produce no findings, have %v", r)
}

func (env *ValidateTestEnviron) TestSelfReferencingComponent() {
	f := cleanFont()
	layer := f.DefaultLayer()
	g, _ := layer.Glyph("A")
	g.Outline = append(g.Outline, &glif.Component{Base: "A"})
	r := Validate(f, FormatVersion3)
	env.Contains(findingKinds(r), FindingComponentCycle,
		"expected a self-referencing component to be reported as a cycle")
}

func (env *ValidateTestEnviron) TestTransitiveComponentCycle() {
	f := cleanFont()
	layer := f.DefaultLayer()
	a, _ := layer.Glyph("A")
	b, _ := layer.Glyph("B")
	a.Outline = append(a.Outline, &glif.Component{Base: "B"})
	b.Outline = append(b.Outline, &glif.Component{Base: "A"})
	r := Validate(f, FormatVersion3)
	env.Contains(findingKinds(r), FindingComponentCycle,
		"expected a two-step component cycle to be reported")
}

func (env *ValidateTestEnviron) TestMissingComponentBase() {
	f := cleanFont()
	g, _ := f.DefaultLayer().Glyph("B")
	g.Outline = append(g.Outline, &glif.Component{Base: "nonexistent"})
	r := Validate(f, FormatVersion3)
	env.Require().Len(r, 1)
	env.Equal(FindingMissingComponentBase, r[0].Kind)
}

func (env *ValidateTestEnviron) TestUndeclaredKerningGroup() {
	f := cleanFont()
	f.Kerning.Set("public.kern1.round", "B", -20)
	r := Validate(f, FormatVersion3)
	env.Require().Len(r, 1, "expected exactly one finding, have %v", r)
	env.Equal(FindingUndeclaredGroup, r[0].Kind)
	env.Equal("public.kern1.round", r[0].Subject)
}

func (env *ValidateTestEnviron) TestKerningGroupOnWrongSide() {
	f := cleanFont()
	f.Groups.Set("public.kern2.round", []string{"B"})
	f.Kerning.Set("public.kern2.round", "B", -20)
	r := Validate(f, FormatVersion3)
	env.Require().Len(r, 1)
	env.Equal(FindingGroupSidePrefix, r[0].Kind)
}

func (env *ValidateTestEnviron) TestIndependentViolationsAccumulate() {
	f := cleanFont()
	layer := f.DefaultLayer()
	a, _ := layer.Glyph("A")
	a.Outline = append(a.Outline, &glif.Component{Base: "A"})
	f.Kerning.Set("public.kern1.round", "B", -20)
	r := Validate(f, FormatVersion3)
	env.Len(r, 2, "expected both violations to be reported, have %v", r)
}

func (env *ValidateTestEnviron) TestDuplicateGlyphName() {
	f := cleanFont()
	layer := f.DefaultLayer()
	layer.glyphs = append(layer.glyphs, glif.NewGlyph("A"))
	layer.index = nil
	r := Validate(f, FormatVersion3)
	env.Contains(findingKinds(r), FindingDuplicateGlyph)
}

func (env *ValidateTestEnviron) TestDefaultLayerCount() {
	f := cleanFont()
	f.DefaultLayer().Default = false
	r := Validate(f, FormatVersion3)
	env.Contains(findingKinds(r), FindingNoDefaultLayer)

	f = cleanFont()
	second, _ := f.NewLayer("background")
	second.Default = true
	r = Validate(f, FormatVersion3)
	env.Contains(findingKinds(r), FindingMultipleDefaultLayers)
}

func (env *ValidateTestEnviron) TestColorRange() {
	f := cleanFont()
	f.DefaultLayer().Color = &glif.Color{R: 1.5, G: 0, B: 0, A: 1}
	r := Validate(f, FormatVersion3)
	env.Require().Len(r, 1)
	env.Equal(FindingBadColor, r[0].Kind)
}

func (env *ValidateTestEnviron) TestIdentifierSyntax() {
	f := cleanFont()
	g, _ := f.DefaultLayer().Glyph("A")
	g.Anchors = append(g.Anchors, glif.Anchor{Name: "top", Identifier: glif.Identifier("naïve")})
	r := Validate(f, FormatVersion3)
	env.Require().Len(r, 1)
	env.Equal(FindingBadIdentifier, r[0].Kind)
}

func (env *ValidateTestEnviron) TestPointSequences() {
	f := cleanFont()
	g, _ := f.DefaultLayer().Glyph("B")

	// move point in the middle of a contour
	g.Outline = []glif.OutlineElement{&glif.Contour{Points: []glif.Point{
		{X: 0, Y: 0, Type: glif.Move},
		{X: 10, Y: 0, Type: glif.Line},
		{X: 20, Y: 0, Type: glif.Move},
	}}}
	r := Validate(f, FormatVersion3)
	env.Contains(findingKinds(r), FindingIllegalPointSequence)

	// open contour ending off-curve
	g.Outline = []glif.OutlineElement{&glif.Contour{Points: []glif.Point{
		{X: 0, Y: 0, Type: glif.Move},
		{X: 10, Y: 0, Type: glif.OffCurve},
	}}}
	r = Validate(f, FormatVersion3)
	env.Contains(findingKinds(r), FindingIllegalPointSequence)

	// line point after an off-curve point
	g.Outline = []glif.OutlineElement{&glif.Contour{Points: []glif.Point{
		{X: 0, Y: 0, Type: glif.OffCurve},
		{X: 10, Y: 0, Type: glif.Line},
	}}}
	r = Validate(f, FormatVersion3)
	env.Contains(findingKinds(r), FindingIllegalPointSequence)

	// all-off-curve closed contour is the legal quadratic form
	g.Outline = []glif.OutlineElement{&glif.Contour{Points: []glif.Point{
		{X: 0, Y: 0, Type: glif.OffCurve},
		{X: 10, Y: 0, Type: glif.OffCurve},
		{X: 10, Y: 10, Type: glif.OffCurve},
	}}}
	r = Validate(f, FormatVersion3)
	env.Empty(r, "expected the all-off-curve contour to be legal, have %v", r)
}

func (env *ValidateTestEnviron) TestGuidelineLegality() {
	angle := 420.0
	f := cleanFont()
	g, _ := f.DefaultLayer().Glyph("A")
	x, y := 10.0, 20.0
	g.Guidelines = []glif.Guideline{{X: &x, Y: &y, Angle: &angle}}
	r := Validate(f, FormatVersion3)
	env.Require().Len(r, 1)
	env.Equal(FindingBadGuideline, r[0].Kind)

	// x and y without an angle is ambiguous
	g.Guidelines = []glif.Guideline{{X: &x, Y: &y}}
	r = Validate(f, FormatVersion3)
	env.Contains(findingKinds(r), FindingBadGuideline)
}

func (env *ValidateTestEnviron) TestVersionRules() {
	f := cleanFont()
	x := 10.0
	g, _ := f.DefaultLayer().Glyph("A")
	g.Guidelines = []glif.Guideline{{X: &x}}
	r := Validate(f, FormatVersion3)
	env.Empty(r, "guidelines are fine for the current format, have %v", r)
	r = Validate(f, FormatVersion2)
	env.Contains(findingKinds(r), FindingVersionViolation,
		"expected glyph guidelines to violate the older format")

	f = cleanFont()
	f.NewLayer("background")
	r = Validate(f, FormatVersion2)
	env.Contains(findingKinds(r), FindingVersionViolation,
		"expected extra layers to violate the older format")
}
