package ufo

import (
	"fmt"
	"strings"

	"github.com/npillmayer/ufo/core"
	"github.com/npillmayer/ufo/glif"
	"github.com/npillmayer/ufo/names"
)

// FindingKind discriminates the structural violations the validator
// detects.
type FindingKind int

// The closed set of validator findings.
const (
	FindingDuplicateGlyph FindingKind = iota
	FindingDuplicateLayer
	FindingNoDefaultLayer
	FindingMultipleDefaultLayers
	FindingBadGlyphName
	FindingMissingComponentBase
	FindingComponentCycle
	FindingUndeclaredGroup
	FindingGroupSidePrefix
	FindingBadColor
	FindingBadIdentifier
	FindingBadGuideline
	FindingIllegalPointSequence
	FindingNameMismatch
	FindingBadStoreEntry
	FindingVersionViolation
)

func (k FindingKind) String() string {
	switch k {
	case FindingDuplicateGlyph:
		return "duplicate-glyph"
	case FindingDuplicateLayer:
		return "duplicate-layer"
	case FindingNoDefaultLayer:
		return "no-default-layer"
	case FindingMultipleDefaultLayers:
		return "multiple-default-layers"
	case FindingBadGlyphName:
		return "bad-glyph-name"
	case FindingMissingComponentBase:
		return "missing-component-base"
	case FindingComponentCycle:
		return "component-cycle"
	case FindingUndeclaredGroup:
		return "undeclared-group"
	case FindingGroupSidePrefix:
		return "group-side-prefix"
	case FindingBadColor:
		return "bad-color"
	case FindingBadIdentifier:
		return "bad-identifier"
	case FindingBadGuideline:
		return "bad-guideline"
	case FindingIllegalPointSequence:
		return "illegal-point-sequence"
	case FindingNameMismatch:
		return "name-mismatch"
	case FindingBadStoreEntry:
		return "bad-store-entry"
	case FindingVersionViolation:
		return "version-violation"
	}
	return "<unknown finding>"
}

// Finding is one structural violation: its kind, the offending
// identifier and a human-readable detail.
type Finding struct {
	Kind    FindingKind
	Layer   string // layer name, if layer-scoped
	Subject string // offending glyph/group/layer identifier
	Detail  string
}

func (f Finding) String() string {
	var sb strings.Builder
	sb.WriteString(f.Kind.String())
	if f.Layer != "" {
		fmt.Fprintf(&sb, " [layer '%s']", f.Layer)
	}
	if f.Subject != "" {
		fmt.Fprintf(&sb, " '%s'", f.Subject)
	}
	if f.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(f.Detail)
	}
	return sb.String()
}

// Report is the accumulated list of findings of one validator run. All
// checks run to completion — a font with N independent violations
// reports N findings, not just the first. A non-empty report is an
// error.
type Report []Finding

func (r Report) Error() string {
	if len(r) == 0 {
		return "no structural violations"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d structural violation(s):", len(r))
	for _, f := range r {
		sb.WriteString("\n  ")
		sb.WriteString(f.String())
	}
	return sb.String()
}

// ErrorCode makes a report usable as a core.AppError.
func (r Report) ErrorCode() int { return core.EINVALID }

// UserMessage summarizes the report.
func (r Report) UserMessage() string {
	return fmt.Sprintf("font source has %d structural violation(s)", len(r))
}

// Validate checks the cross-entity invariants of a font graph against a
// target format version. It runs after load and again before save,
// since programmatic mutation may break invariants in between. The
// returned report is nil when the font is clean.
func Validate(f *Font, target FormatVersion) Report {
	v := &validator{target: target}
	v.font(f)
	if len(v.report) > 0 {
		tracer().Infof("validation found %d structural violation(s)", len(v.report))
	}
	return v.report
}

type validator struct {
	target FormatVersion
	report Report
}

func (v *validator) add(kind FindingKind, layer, subject, format string, args ...interface{}) {
	v.report = append(v.report, Finding{
		Kind:    kind,
		Layer:   layer,
		Subject: subject,
		Detail:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) font(f *Font) {
	v.layerSet(f)
	for _, layer := range f.Layers() {
		v.layer(layer)
	}
	v.kerning(f)
	v.fontGuidelines(f)
	v.stores(f)
	v.versionRules(f)
}

func (v *validator) layerSet(f *Font) {
	seen := make(map[string]bool)
	defaults := 0
	for _, layer := range f.Layers() {
		if seen[layer.Name()] {
			v.add(FindingDuplicateLayer, "", layer.Name(), "layer name occurs more than once")
		}
		seen[layer.Name()] = true
		if layer.Default {
			defaults++
		}
	}
	if defaults == 0 {
		v.add(FindingNoDefaultLayer, "", "", "no layer is marked as default")
	} else if defaults > 1 {
		v.add(FindingMultipleDefaultLayers, "", "", "%d layers are marked as default", defaults)
	}
}

func (v *validator) layer(layer *Layer) {
	seen := make(map[string]bool)
	for _, g := range layer.Glyphs() {
		if seen[g.Name] {
			v.add(FindingDuplicateGlyph, layer.Name(), g.Name, "glyph name occurs more than once")
		}
		seen[g.Name] = true
		if !names.IsValidGlyphName(g.Name) {
			v.add(FindingBadGlyphName, layer.Name(), g.Name, "name is empty or contains control characters")
		}
		v.glyph(layer, g)
	}
	v.componentCycles(layer)
	if layer.Color != nil {
		v.color(layer.Name(), "layer '"+layer.Name()+"'", layer.Color)
	}
}

func (v *validator) glyph(layer *Layer, g *glif.Glyph) {
	for _, comp := range g.Components() {
		if _, ok := layer.Glyph(comp.Base); !ok {
			v.add(FindingMissingComponentBase, layer.Name(), g.Name,
				"component references nonexistent glyph '%s'", comp.Base)
		}
		v.identifier(layer.Name(), g.Name, comp.Identifier)
	}
	for i := range g.Anchors {
		a := &g.Anchors[i]
		v.color(layer.Name(), fmt.Sprintf("anchor '%s' of glyph '%s'", a.Name, g.Name), a.Color)
		v.identifier(layer.Name(), g.Name, a.Identifier)
	}
	for i := range g.Guidelines {
		v.guideline(layer.Name(), g.Name, &g.Guidelines[i])
	}
	if g.Image != nil {
		v.color(layer.Name(), fmt.Sprintf("image of glyph '%s'", g.Name), g.Image.Color)
	}
	for _, c := range g.Contours() {
		v.contour(layer.Name(), g.Name, c)
		v.identifier(layer.Name(), g.Name, c.Identifier)
		for i := range c.Points {
			v.identifier(layer.Name(), g.Name, c.Points[i].Identifier)
		}
	}
}

// contour checks the structural point rules: a move point only opens a
// contour, an open contour ends on-curve, and a line point never
// follows an off-curve point. A fully off-curve contour is legal only
// when closed (the quadratic-blob convention).
func (v *validator) contour(layerName, glyphName string, c *glif.Contour) {
	pts := c.Points
	if len(pts) == 0 {
		return
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Type == glif.Move {
			v.add(FindingIllegalPointSequence, layerName, glyphName,
				"move point at position %d does not open the contour", i+1)
		}
	}
	closed := c.IsClosed()
	if !closed && pts[len(pts)-1].Type == glif.OffCurve {
		v.add(FindingIllegalPointSequence, layerName, glyphName,
			"open contour ends with an off-curve point")
	}
	for i := range pts {
		if pts[i].Type != glif.Line {
			continue
		}
		prev := i - 1
		if prev < 0 {
			if !closed {
				continue
			}
			prev = len(pts) - 1
		}
		if pts[prev].Type == glif.OffCurve {
			v.add(FindingIllegalPointSequence, layerName, glyphName,
				"line point at position %d follows an off-curve point", i+1)
		}
	}
}

// componentCycles walks the component reference graph of one layer with
// a visited-set depth-first search. The walk is bounded by the layer's
// glyph count, so it terminates on any input. Name lookups resolve
// duplicate glyph names to their first occurrence, so a shadowed
// duplicate is not walked separately; the duplicate-glyph finding
// already marks the layer as broken.
func (v *validator) componentCycles(layer *Layer) {
	const (
		white = 0 // unvisited
		grey  = 1 // on the current path
		black = 2 // done
	)
	state := make(map[string]int, layer.Len())
	var walk func(name string)
	walk = func(name string) {
		state[name] = grey
		g, _ := layer.Glyph(name)
		for _, comp := range g.Components() {
			base, ok := layer.Glyph(comp.Base)
			if !ok {
				continue // reported as missing base already
			}
			switch state[base.Name] {
			case white:
				walk(base.Name)
			case grey:
				v.add(FindingComponentCycle, layer.Name(), name,
					"component reference cycle through glyph '%s'", base.Name)
			}
		}
		state[name] = black
	}
	for _, g := range layer.Glyphs() {
		if state[g.Name] == white {
			walk(g.Name)
		}
	}
}

func (v *validator) kerning(f *Font) {
	if f.Kerning == nil {
		return
	}
	check := func(ref string, wantSide GroupSide) {
		if !isGroupLike(ref) {
			return // plain glyph reference; dangling glyph kerning is tolerated
		}
		declared := false
		if f.Groups != nil {
			_, declared = f.Groups.Get(ref)
		}
		if !declared {
			v.add(FindingUndeclaredGroup, "", ref, "kerning references a group not declared in groups")
			return
		}
		if SideOfGroup(ref) != wantSide {
			v.add(FindingGroupSidePrefix, "", ref, "group is used on the wrong side of a kerning pair")
		}
	}
	for _, first := range f.Kerning.Firsts() {
		check(first, Side1)
		for _, second := range f.Kerning.Seconds(first) {
			check(second, Side2)
		}
	}
	if f.Groups != nil {
		for _, name := range f.Groups.Names() {
			if isGroupLike(name) && SideOfGroup(name) == SideNone {
				v.add(FindingGroupSidePrefix, "", name, "kerning group name misses its side prefix")
			}
		}
	}
}

func (v *validator) fontGuidelines(f *Font) {
	if f.Info == nil {
		return
	}
	gls, err := f.Info.Guidelines()
	if err != nil {
		v.add(FindingBadGuideline, "", "fontinfo", "%v", err)
		return
	}
	for i := range gls {
		v.guideline("", "fontinfo", &gls[i])
	}
}

// guideline checks the point+angle legality: x alone is a vertical
// line, y alone a horizontal one, and with an angle both coordinates
// are required and the angle must lie within 0…360.
func (v *validator) guideline(layerName, subject string, gl *glif.Guideline) {
	switch {
	case gl.Angle != nil:
		if gl.X == nil || gl.Y == nil {
			v.add(FindingBadGuideline, layerName, subject, "angled guideline requires both x and y")
		}
		if *gl.Angle < 0 || *gl.Angle > 360 {
			v.add(FindingBadGuideline, layerName, subject, "guideline angle %v out of range 0…360", *gl.Angle)
		}
	case gl.X != nil && gl.Y != nil:
		v.add(FindingBadGuideline, layerName, subject, "guideline with x and y requires an angle")
	case gl.X == nil && gl.Y == nil:
		v.add(FindingBadGuideline, layerName, subject, "guideline carries neither x nor y")
	}
	v.color(layerName, "guideline of "+subject, gl.Color)
	v.identifier(layerName, subject, gl.Identifier)
}

func (v *validator) color(layerName, subject string, c *glif.Color) {
	if c == nil {
		return
	}
	for _, comp := range []float64{c.R, c.G, c.B, c.A} {
		if comp < 0 || comp > 1 {
			v.add(FindingBadColor, layerName, subject, "color component %v out of range 0…1", comp)
			return
		}
	}
}

func (v *validator) identifier(layerName, subject string, id glif.Identifier) {
	if id == "" {
		return
	}
	if !id.IsValid() {
		v.add(FindingBadIdentifier, layerName, subject, "identifier %q violates the identifier grammar", string(id))
	}
}

func (v *validator) stores(f *Font) {
	checkStore := func(store map[string][]byte, what string) {
		for name := range store {
			if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "..") {
				v.add(FindingBadStoreEntry, "", name, "%s store entry escapes the package", what)
			}
		}
	}
	checkStore(f.Data, "data")
	checkStore(f.Images, "images")
}

// versionRules enforces the fixed compatibility table for the target
// format version. Violations surface here, before any save, instead of
// silently dropping data at encode time.
func (v *validator) versionRules(f *Font) {
	if v.target.Major != 2 && v.target.Major != 3 {
		v.add(FindingVersionViolation, "", "", "unsupported UFO format version %d", v.target.Major)
		return
	}
	if v.target.Major >= 3 {
		return
	}
	// UFO2 rules: one layer, no guidelines, no stores, no layer info
	for _, layer := range f.Layers() {
		if !layer.Default {
			v.add(FindingVersionViolation, layer.Name(), "",
				"extra layers cannot be represented before UFO3")
		}
		if layer.Color != nil || layer.Lib != nil {
			v.add(FindingVersionViolation, layer.Name(), "",
				"layer color/lib cannot be represented before UFO3")
		}
		for _, g := range layer.Glyphs() {
			if len(g.Guidelines) > 0 {
				v.add(FindingVersionViolation, layer.Name(), g.Name,
					"glyph guidelines cannot be represented before UFO3")
			}
			if g.Image != nil {
				v.add(FindingVersionViolation, layer.Name(), g.Name,
					"glyph images cannot be represented before UFO3")
			}
		}
	}
	if f.Info != nil {
		if _, ok := f.Info.Dict().Get("guidelines"); ok {
			v.add(FindingVersionViolation, "", "fontinfo",
				"global guidelines cannot be represented before UFO3")
		}
	}
	if len(f.Data) > 0 || len(f.Images) > 0 {
		v.add(FindingVersionViolation, "", "",
			"data/images stores cannot be represented before UFO3")
	}
}
