package ufo

import (
	"github.com/derekparker/trie"
	"github.com/npillmayer/ufo/core"
	"github.com/npillmayer/ufo/glif"
	"github.com/npillmayer/ufo/plist"
)

// Layer is a named container of glyphs. It owns its glyphs exclusively;
// glyph names are unique within a layer. Color and Lib mirror the
// layer's layerinfo.plist.
type Layer struct {
	Default bool
	Color   *glif.Color
	Lib     *plist.Dict
	name    string
	glyphs  []*glif.Glyph
	index   map[string]int // glyph name -> position; nil when stale
}

func newLayer(name string) *Layer {
	return &Layer{name: name}
}

// Name returns the layer's name.
func (l *Layer) Name() string {
	return l.name
}

// Rename gives the layer a new name. Uniqueness within the owning font
// is the font's concern (see Font.NewLayer and the validator).
func (l *Layer) Rename(name string) {
	l.name = name
}

// Len returns the number of glyphs.
func (l *Layer) Len() int {
	return len(l.glyphs)
}

// Glyphs returns the layer's glyphs in their canonical order.
// The slice is the layer's own; callers must not reorder it.
func (l *Layer) Glyphs() []*glif.Glyph {
	return l.glyphs
}

// Glyph finds a glyph by name.
func (l *Layer) Glyph(name string) (*glif.Glyph, bool) {
	l.reindex()
	i, ok := l.index[name]
	if !ok {
		return nil, false
	}
	return l.glyphs[i], true
}

// AddGlyph appends a glyph to the layer. The name must be valid and not
// yet taken.
func (l *Layer) AddGlyph(g *glif.Glyph) error {
	if _, exists := l.Glyph(g.Name); exists {
		return core.Error(core.EINVALID,
			"glyph named '%s' already exists in layer '%s'", g.Name, l.name)
	}
	l.glyphs = append(l.glyphs, g)
	l.index = nil
	return nil
}

// RemoveGlyph removes a glyph by name; removing an absent glyph is an
// error.
func (l *Layer) RemoveGlyph(name string) error {
	l.reindex()
	i, ok := l.index[name]
	if !ok {
		return core.Error(core.EMISSING, "glyph '%s' missing from layer '%s'", name, l.name)
	}
	l.glyphs = append(l.glyphs[:i], l.glyphs[i+1:]...)
	l.index = nil
	return nil
}

// RenameGlyph renames a glyph. This is a pure data mutation: no file
// path is remembered anywhere, the new path is derived at save time.
// Component references to the old name are not rewritten.
func (l *Layer) RenameGlyph(oldName, newName string) error {
	if _, taken := l.Glyph(newName); taken {
		return core.Error(core.EINVALID,
			"glyph named '%s' already exists in layer '%s'", newName, l.name)
	}
	g, ok := l.Glyph(oldName)
	if !ok {
		return core.Error(core.EMISSING, "glyph '%s' missing from layer '%s'", oldName, l.name)
	}
	g.Name = newName
	l.index = nil
	return nil
}

// GlyphNamesWithPrefix returns the names of all glyphs starting with
// prefix, in unspecified order. Useful for editor-style lookups
// ("show everything derived from 'a'").
func (l *Layer) GlyphNamesWithPrefix(prefix string) []string {
	t := trie.New()
	for _, g := range l.glyphs {
		t.Add(g.Name, nil)
	}
	return t.PrefixSearch(prefix)
}

// ControlBox computes the control-point box of a glyph including its
// components, resolved against this layer. Component cycles and dangling
// references are skipped here (the validator reports them); the walk is
// bounded by the layer's glyph count, so it always terminates. The
// second return value is false if no point contributes.
func (l *Layer) ControlBox(glyphName string) (glif.ControlBox, bool) {
	return l.controlBox(glyphName, glif.Identity(), make(map[string]bool))
}

func (l *Layer) controlBox(glyphName string, t glif.AffineTransform, visiting map[string]bool) (glif.ControlBox, bool) {
	if visiting[glyphName] {
		return glif.ControlBox{}, false
	}
	g, ok := l.Glyph(glyphName)
	if !ok {
		return glif.ControlBox{}, false
	}
	visiting[glyphName] = true
	defer delete(visiting, glyphName)
	box, found := g.ControlBox(t)
	for _, comp := range g.Components() {
		sub, ok := l.controlBox(comp.Base, t.Compose(comp.Transform), visiting)
		if !ok {
			continue
		}
		if !found {
			box, found = sub, true
			continue
		}
		box = box.Union(sub)
	}
	return box, found
}

func (l *Layer) reindex() {
	if l.index != nil {
		return
	}
	l.index = make(map[string]int, len(l.glyphs))
	for i, g := range l.glyphs {
		if _, dup := l.index[g.Name]; dup {
			continue // keep the first; the validator reports duplicates
		}
		l.index[g.Name] = i
	}
}
