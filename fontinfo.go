package ufo

import (
	"github.com/npillmayer/ufo/core"
	"github.com/npillmayer/ufo/glif"
	"github.com/npillmayer/ufo/plist"
)

// FontInfo is the typed view onto fontinfo.plist. The underlying ordered
// dictionary is retained as-is, including keys this library knows
// nothing about, so a round trip preserves unknown fields and exact key
// order. Typed accessors for well-known fields read and write into that
// dictionary.
type FontInfo struct {
	dict *plist.Dict
}

// NewFontInfo creates an empty font info.
func NewFontInfo() *FontInfo {
	return &FontInfo{dict: plist.NewDict()}
}

// FontInfoFromDict wraps an existing dictionary, which the FontInfo
// takes ownership of.
func FontInfoFromDict(d *plist.Dict) *FontInfo {
	if d == nil {
		d = plist.NewDict()
	}
	return &FontInfo{dict: d}
}

// Dict exposes the underlying ordered dictionary, for callers layering
// their own schema on top.
func (fi *FontInfo) Dict() *plist.Dict {
	return fi.dict
}

func (fi *FontInfo) stringField(key string) string {
	if v, ok := fi.dict.Get(key); ok {
		if s, ok := v.(plist.String); ok {
			return string(s)
		}
	}
	return ""
}

func (fi *FontInfo) numField(key string) (float64, bool) {
	v, ok := fi.dict.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case plist.Integer:
		return float64(n), true
	case plist.Real:
		return float64(n), true
	}
	return 0, false
}

// setNum stores integral values as integers, which keeps untouched files
// byte-identical across a round trip.
func (fi *FontInfo) setNum(key string, f float64) {
	if f == float64(int64(f)) {
		fi.dict.Set(key, plist.Integer(int64(f)))
		return
	}
	fi.dict.Set(key, plist.Real(f))
}

// FamilyName returns the family name, or "".
func (fi *FontInfo) FamilyName() string { return fi.stringField("familyName") }

// SetFamilyName sets the family name.
func (fi *FontInfo) SetFamilyName(s string) { fi.dict.Set("familyName", plist.String(s)) }

// StyleName returns the style name, or "".
func (fi *FontInfo) StyleName() string { return fi.stringField("styleName") }

// SetStyleName sets the style name.
func (fi *FontInfo) SetStyleName(s string) { fi.dict.Set("styleName", plist.String(s)) }

// UnitsPerEm returns the em size; ok is false when unset.
func (fi *FontInfo) UnitsPerEm() (float64, bool) { return fi.numField("unitsPerEm") }

// SetUnitsPerEm sets the em size.
func (fi *FontInfo) SetUnitsPerEm(f float64) { fi.setNum("unitsPerEm", f) }

// Ascender returns the ascender; ok is false when unset.
func (fi *FontInfo) Ascender() (float64, bool) { return fi.numField("ascender") }

// SetAscender sets the ascender.
func (fi *FontInfo) SetAscender(f float64) { fi.setNum("ascender", f) }

// Descender returns the descender; ok is false when unset.
func (fi *FontInfo) Descender() (float64, bool) { return fi.numField("descender") }

// SetDescender sets the descender.
func (fi *FontInfo) SetDescender(f float64) { fi.setNum("descender", f) }

// CapHeight returns the cap height; ok is false when unset.
func (fi *FontInfo) CapHeight() (float64, bool) { return fi.numField("capHeight") }

// SetCapHeight sets the cap height.
func (fi *FontInfo) SetCapHeight(f float64) { fi.setNum("capHeight", f) }

// XHeight returns the x-height; ok is false when unset.
func (fi *FontInfo) XHeight() (float64, bool) { return fi.numField("xHeight") }

// SetXHeight sets the x-height.
func (fi *FontInfo) SetXHeight(f float64) { fi.setNum("xHeight", f) }

// ItalicAngle returns the italic angle; ok is false when unset.
func (fi *FontInfo) ItalicAngle() (float64, bool) { return fi.numField("italicAngle") }

// SetItalicAngle sets the italic angle.
func (fi *FontInfo) SetItalicAngle(f float64) { fi.setNum("italicAngle", f) }

// --- Global guidelines -----------------------------------------------------

// Guidelines decodes the font-global guidelines from the info
// dictionary. Malformed entries yield an error.
func (fi *FontInfo) Guidelines() ([]glif.Guideline, error) {
	raw, ok := fi.dict.Get("guidelines")
	if !ok {
		return nil, nil
	}
	arr, ok := raw.(plist.Array)
	if !ok {
		return nil, core.Error(core.EPARSE, "fontinfo: guidelines must be an array")
	}
	var gls []glif.Guideline
	for i, item := range arr {
		d, ok := item.(*plist.Dict)
		if !ok {
			return nil, core.Error(core.EPARSE, "fontinfo: guideline %d must be a dictionary", i+1)
		}
		gl, err := guidelineFromDict(d)
		if err != nil {
			return nil, err
		}
		gls = append(gls, gl)
	}
	return gls, nil
}

// SetGuidelines stores font-global guidelines into the info dictionary.
func (fi *FontInfo) SetGuidelines(gls []glif.Guideline) {
	if len(gls) == 0 {
		fi.dict.Delete("guidelines")
		return
	}
	arr := make(plist.Array, len(gls))
	for i := range gls {
		arr[i] = guidelineToDict(&gls[i])
	}
	fi.dict.Set("guidelines", arr)
}

func guidelineFromDict(d *plist.Dict) (glif.Guideline, error) {
	gl := glif.Guideline{}
	num := func(key string) (*float64, error) {
		v, ok := d.Get(key)
		if !ok {
			return nil, nil
		}
		switch n := v.(type) {
		case plist.Integer:
			f := float64(n)
			return &f, nil
		case plist.Real:
			f := float64(n)
			return &f, nil
		}
		return nil, core.Error(core.EPARSE, "fontinfo: guideline %s must be a number", key)
	}
	var err error
	if gl.X, err = num("x"); err != nil {
		return gl, err
	}
	if gl.Y, err = num("y"); err != nil {
		return gl, err
	}
	if gl.Angle, err = num("angle"); err != nil {
		return gl, err
	}
	if v, ok := d.Get("name"); ok {
		s, ok := v.(plist.String)
		if !ok {
			return gl, core.Error(core.EPARSE, "fontinfo: guideline name must be a string")
		}
		gl.Name = string(s)
	}
	if v, ok := d.Get("color"); ok {
		s, ok := v.(plist.String)
		if !ok {
			return gl, core.Error(core.EPARSE, "fontinfo: guideline color must be a string")
		}
		c, err := glif.ParseColor(string(s))
		if err != nil {
			return gl, err
		}
		gl.Color = &c
	}
	if v, ok := d.Get("identifier"); ok {
		s, ok := v.(plist.String)
		if !ok {
			return gl, core.Error(core.EPARSE, "fontinfo: guideline identifier must be a string")
		}
		gl.Identifier = glif.Identifier(s)
	}
	return gl, nil
}

func guidelineToDict(gl *glif.Guideline) *plist.Dict {
	d := plist.NewDict()
	putNum := func(key string, f *float64) {
		if f == nil {
			return
		}
		if *f == float64(int64(*f)) {
			d.Set(key, plist.Integer(int64(*f)))
			return
		}
		d.Set(key, plist.Real(*f))
	}
	putNum("x", gl.X)
	putNum("y", gl.Y)
	putNum("angle", gl.Angle)
	if gl.Name != "" {
		d.Set("name", plist.String(gl.Name))
	}
	if gl.Color != nil {
		d.Set("color", plist.String(gl.Color.String()))
	}
	if gl.Identifier != "" {
		d.Set("identifier", plist.String(string(gl.Identifier)))
	}
	return d
}
