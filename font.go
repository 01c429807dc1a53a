package ufo

import (
	"fmt"

	"github.com/npillmayer/ufo/core"
	"github.com/npillmayer/ufo/plist"
)

// FormatVersion identifies the UFO specification revision a font source
// conforms to. It gates which features are structurally legal.
type FormatVersion struct {
	Major int
	Minor int
}

// Supported UFO package format versions.
var (
	FormatVersion2 = FormatVersion{Major: 2}
	FormatVersion3 = FormatVersion{Major: 3}
)

func (v FormatVersion) String() string {
	if v.Minor == 0 {
		return fmt.Sprintf("UFO%d", v.Major)
	}
	return fmt.Sprintf("UFO%d.%d", v.Major, v.Minor)
}

// DefaultCreator identifies this library in metainfo.plist.
const DefaultCreator = "com.github.npillmayer.ufo"

// DefaultLayerName is the conventional name of a font's default layer.
const DefaultLayerName = "public.default"

// MetaInfo mirrors metainfo.plist: creator and format version tag.
type MetaInfo struct {
	Creator string
	Version FormatVersion
}

// Font is the root entity of a font source: metadata, layers, kerning,
// feature text and open-ended extension data.
type Font struct {
	Meta     MetaInfo
	Info     *FontInfo
	Groups   *Groups
	Kerning  *Kerning
	Features string       // opaque feature source text
	Lib      *plist.Dict  // font-level extension data
	Data     map[string][]byte // data store payloads, keyed by relative name
	Images   map[string][]byte // images store payloads, keyed by relative name
	layers   []*Layer
}

// NewFont creates an empty font with one default layer, tagged with the
// latest supported format version.
func NewFont() *Font {
	f := &Font{
		Meta:    MetaInfo{Creator: DefaultCreator, Version: FormatVersion3},
		Info:    NewFontInfo(),
		Groups:  NewGroups(),
		Kerning: NewKerning(),
		Lib:     plist.NewDict(),
	}
	layer := newLayer(DefaultLayerName)
	layer.Default = true
	f.layers = []*Layer{layer}
	return f
}

// Layers returns the font's layers in their canonical order.
// The slice is the font's own; callers must not reorder it.
func (f *Font) Layers() []*Layer {
	return f.layers
}

// DefaultLayer returns the layer marked as default. A well-formed font
// has exactly one; on a malformed graph the first marked layer wins and
// nil is returned if none is marked.
func (f *Font) DefaultLayer() *Layer {
	for _, l := range f.layers {
		if l.Default {
			return l
		}
	}
	return nil
}

// Layer finds a layer by its exact, case-sensitive name.
func (f *Font) Layer(name string) (*Layer, bool) {
	for _, l := range f.layers {
		if l.name == name {
			return l, true
		}
	}
	return nil, false
}

// NewLayer adds an empty, non-default layer. Layer names are unique
// within a font.
func (f *Font) NewLayer(name string) (*Layer, error) {
	if _, exists := f.Layer(name); exists {
		return nil, core.Error(core.EINVALID, "layer name '%s' already exists", name)
	}
	layer := newLayer(name)
	f.layers = append(f.layers, layer)
	return layer, nil
}

// RemoveLayer removes a layer by name. The default layer cannot be
// removed.
func (f *Font) RemoveLayer(name string) error {
	for i, l := range f.layers {
		if l.name == name {
			if l.Default {
				return core.Error(core.EINVALID, "cannot remove the default layer '%s'", name)
			}
			f.layers = append(f.layers[:i], f.layers[i+1:]...)
			return nil
		}
	}
	return core.Error(core.EMISSING, "layer name '%s' does not exist", name)
}

// SetDefaultLayer marks the named layer as default and unmarks every
// other layer.
func (f *Font) SetDefaultLayer(name string) error {
	target, ok := f.Layer(name)
	if !ok {
		return core.Error(core.EMISSING, "layer name '%s' does not exist", name)
	}
	for _, l := range f.layers {
		l.Default = l == target
	}
	return nil
}

// GlyphCount sums the glyph count over all layers.
func (f *Font) GlyphCount() int {
	n := 0
	for _, l := range f.layers {
		n += l.Len()
	}
	return n
}
