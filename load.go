package ufo

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/npillmayer/ufo/core"
	"github.com/npillmayer/ufo/glif"
	"github.com/npillmayer/ufo/plist"
)

// Options tune loading and saving of font sources.
type Options struct {
	// Workers is the number of goroutines used for glyph file IO.
	// Values below 2 select the sequential path, which is the source of
	// truth the concurrent path must be indistinguishable from.
	Workers int
}

// Load reads a UFO package from a directory, with glyph IO fanned out
// over the available CPUs.
func Load(path string) (*Font, error) {
	return LoadWith(path, Options{Workers: defaultWorkers()})
}

// LoadWith reads a UFO package with explicit options. Structural IO and
// parse failures abort immediately; structural violations of the loaded
// graph are accumulated and returned as a Report.
func LoadWith(path string, opts Options) (*Font, error) {
	tracer().Debugf("loading font source from %s", path)
	ld := &loader{root: path, opts: opts}
	f, err := ld.font()
	if err != nil {
		return nil, err
	}
	report := Validate(f, f.Meta.Version)
	report = append(ld.findings, report...)
	if len(report) > 0 {
		return nil, report
	}
	tracer().Infof("loaded font source %s with %d glyph(s)", path, f.GlyphCount())
	return f, nil
}

type loader struct {
	root     string
	opts     Options
	findings Report
}

func (ld *loader) font() (*Font, error) {
	f := &Font{}
	if err := ld.metaInfo(f); err != nil {
		return nil, err
	}
	if err := ld.fontInfo(f); err != nil {
		return nil, err
	}
	if err := ld.groups(f); err != nil {
		return nil, err
	}
	if err := ld.kerning(f); err != nil {
		return nil, err
	}
	if err := ld.features(f); err != nil {
		return nil, err
	}
	if err := ld.lib(f); err != nil {
		return nil, err
	}
	if err := ld.layers(f); err != nil {
		return nil, err
	}
	var err error
	if f.Data, err = ld.store("data"); err != nil {
		return nil, err
	}
	if f.Images, err = ld.store("images"); err != nil {
		return nil, err
	}
	// absent optional files mean empty, not nil; a loaded font must be
	// mutable exactly like a fresh one
	if f.Info == nil {
		f.Info = NewFontInfo()
	}
	if f.Groups == nil {
		f.Groups = NewGroups()
	}
	if f.Kerning == nil {
		f.Kerning = NewKerning()
	}
	if f.Lib == nil {
		f.Lib = plist.NewDict()
	}
	return f, nil
}

// readPlistDict reads an optional top-level plist file. A missing file
// yields (nil, nil); required files are the caller's concern.
func (ld *loader) readPlistDict(name string) (*plist.Dict, error) {
	data, err := os.ReadFile(filepath.Join(ld.root, name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, core.WrapError(err, core.EIO, "cannot read %s", name)
	}
	d, err := plist.ParseDict(data)
	if err != nil {
		return nil, core.WrapError(err, core.EPARSE, "%s is malformed", name)
	}
	return d, nil
}

func (ld *loader) metaInfo(f *Font) error {
	d, err := ld.readPlistDict("metainfo.plist")
	if err != nil {
		return err
	}
	if d == nil {
		return core.Error(core.EMISSING, "not a font source: %s has no metainfo.plist", ld.root)
	}
	if v, ok := d.Get("creator"); ok {
		if s, ok := v.(plist.String); ok {
			f.Meta.Creator = string(s)
		}
	}
	major, ok := d.Get("formatVersion")
	if !ok {
		return core.Error(core.EPARSE, "metainfo.plist misses formatVersion")
	}
	n, ok := major.(plist.Integer)
	if !ok {
		return core.Error(core.EPARSE, "metainfo.plist formatVersion must be an integer")
	}
	f.Meta.Version.Major = int(n)
	if minor, ok := d.Get("formatVersionMinor"); ok {
		m, ok := minor.(plist.Integer)
		if !ok {
			return core.Error(core.EPARSE, "metainfo.plist formatVersionMinor must be an integer")
		}
		f.Meta.Version.Minor = int(m)
	}
	if f.Meta.Version.Major != 2 && f.Meta.Version.Major != 3 {
		return core.Error(core.EVERSION, "unsupported UFO format version %d", f.Meta.Version.Major)
	}
	return nil
}

func (ld *loader) fontInfo(f *Font) error {
	d, err := ld.readPlistDict("fontinfo.plist")
	if err != nil {
		return err
	}
	if d != nil {
		f.Info = FontInfoFromDict(d)
	}
	return nil
}

func (ld *loader) groups(f *Font) error {
	d, err := ld.readPlistDict("groups.plist")
	if err != nil {
		return err
	}
	if d == nil {
		return nil
	}
	f.Groups = NewGroups()
	for _, name := range d.Keys() {
		v, _ := d.Get(name)
		arr, ok := v.(plist.Array)
		if !ok {
			return core.Error(core.EPARSE, "groups.plist: group '%s' must be an array", name)
		}
		members := make([]string, len(arr))
		for i, item := range arr {
			s, ok := item.(plist.String)
			if !ok {
				return core.Error(core.EPARSE, "groups.plist: group '%s' member %d must be a string", name, i+1)
			}
			members[i] = string(s)
		}
		f.Groups.Set(name, members)
	}
	return nil
}

func (ld *loader) kerning(f *Font) error {
	d, err := ld.readPlistDict("kerning.plist")
	if err != nil {
		return err
	}
	if d == nil {
		return nil
	}
	f.Kerning = NewKerning()
	for _, first := range d.Keys() {
		v, _ := d.Get(first)
		seconds, ok := v.(*plist.Dict)
		if !ok {
			return core.Error(core.EPARSE, "kerning.plist: entry '%s' must be a dictionary", first)
		}
		for _, second := range seconds.Keys() {
			val, _ := seconds.Get(second)
			switch n := val.(type) {
			case plist.Integer:
				f.Kerning.Set(first, second, float64(n))
			case plist.Real:
				f.Kerning.Set(first, second, float64(n))
			default:
				return core.Error(core.EPARSE, "kerning.plist: value for ('%s','%s') must be a number", first, second)
			}
		}
	}
	return nil
}

func (ld *loader) features(f *Font) error {
	data, err := os.ReadFile(filepath.Join(ld.root, "features.fea"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return core.WrapError(err, core.EIO, "cannot read features.fea")
	}
	f.Features = string(data)
	return nil
}

func (ld *loader) lib(f *Font) error {
	d, err := ld.readPlistDict("lib.plist")
	if err != nil {
		return err
	}
	f.Lib = d
	return nil
}

// layerEntry is one row of layercontents.plist.
type layerEntry struct {
	name string
	dir  string
}

// layerContents reads layercontents.plist. The file is a UFO3 artifact;
// without it (UFO2, or a sparse UFO3) the package is treated as a
// single default layer living in "glyphs".
func (ld *loader) layerContents() ([]layerEntry, error) {
	data, err := os.ReadFile(filepath.Join(ld.root, "layercontents.plist"))
	if os.IsNotExist(err) {
		return []layerEntry{{name: DefaultLayerName, dir: defaultLayerDir}}, nil
	}
	if err != nil {
		return nil, core.WrapError(err, core.EIO, "cannot read layercontents.plist")
	}
	v, err := plist.Parse(data)
	if err != nil {
		return nil, core.WrapError(err, core.EPARSE, "layercontents.plist is malformed")
	}
	arr, ok := v.(plist.Array)
	if !ok {
		return nil, core.Error(core.EPARSE, "layercontents.plist must be an array")
	}
	var entries []layerEntry
	for i, item := range arr {
		pair, ok := item.(plist.Array)
		if !ok || len(pair) != 2 {
			return nil, core.Error(core.EPARSE, "layercontents.plist entry %d must be a [name, directory] pair", i+1)
		}
		name, ok1 := pair[0].(plist.String)
		dir, ok2 := pair[1].(plist.String)
		if !ok1 || !ok2 {
			return nil, core.Error(core.EPARSE, "layercontents.plist entry %d must hold two strings", i+1)
		}
		entries = append(entries, layerEntry{name: string(name), dir: string(dir)})
	}
	if len(entries) == 0 {
		return nil, core.Error(core.EPARSE, "layercontents.plist declares no layers")
	}
	return entries, nil
}

func (ld *loader) layers(f *Font) error {
	entries, err := ld.layerContents()
	if err != nil {
		return err
	}
	for _, entry := range entries {
		layer := newLayer(entry.name)
		layer.Default = entry.dir == defaultLayerDir
		if err := ld.layer(layer, entry.dir); err != nil {
			return err
		}
		f.layers = append(f.layers, layer)
	}
	return nil
}

func (ld *loader) layer(layer *Layer, dir string) error {
	layerPath := filepath.Join(ld.root, dir)
	if err := ld.layerInfo(layer, layerPath); err != nil {
		return err
	}

	// contents.plist is authoritative for the name -> file mapping;
	// on-disk file names are never reverse-engineered.
	data, err := os.ReadFile(filepath.Join(layerPath, "contents.plist"))
	if err != nil {
		return core.WrapError(err, core.EMISSING,
			"layer '%s' misses its contents.plist", layer.Name())
	}
	contents, err := plist.ParseDict(data)
	if err != nil {
		return core.WrapError(err, core.EPARSE,
			"contents.plist of layer '%s' is malformed", layer.Name())
	}

	names := contents.Keys()
	glyphs := make([]*glif.Glyph, len(names))
	errs := make([]error, len(names))
	forEach(len(names), ld.opts.Workers, func(i int) {
		v, _ := contents.Get(names[i])
		fileName, ok := v.(plist.String)
		if !ok {
			errs[i] = core.Error(core.EPARSE,
				"contents.plist of layer '%s': entry '%s' must be a file name", layer.Name(), names[i])
			return
		}
		raw, err := os.ReadFile(filepath.Join(layerPath, string(fileName)))
		if err != nil {
			errs[i] = core.WrapError(err, core.EIO,
				"cannot read glyph file '%s' of layer '%s'", string(fileName), layer.Name())
			return
		}
		g, err := glif.Parse(raw)
		if err != nil {
			errs[i] = core.WrapError(err, core.Code(err),
				"glyph file '%s' of layer '%s'", string(fileName), layer.Name())
			return
		}
		glyphs[i] = g
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	for i, g := range glyphs {
		if g.Name != names[i] {
			ld.findings = append(ld.findings, Finding{
				Kind:    FindingNameMismatch,
				Layer:   layer.Name(),
				Subject: names[i],
				Detail:  "glyph file declares name '" + g.Name + "'",
			})
			g.Name = names[i] // contents.plist wins
		}
		layer.glyphs = append(layer.glyphs, g)
	}
	return nil
}

func (ld *loader) layerInfo(layer *Layer, layerPath string) error {
	data, err := os.ReadFile(filepath.Join(layerPath, "layerinfo.plist"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return core.WrapError(err, core.EIO, "cannot read layerinfo.plist of layer '%s'", layer.Name())
	}
	d, err := plist.ParseDict(data)
	if err != nil {
		return core.WrapError(err, core.EPARSE, "layerinfo.plist of layer '%s' is malformed", layer.Name())
	}
	if v, ok := d.Get("color"); ok {
		s, ok := v.(plist.String)
		if !ok {
			return core.Error(core.EPARSE, "layerinfo.plist of layer '%s': color must be a string", layer.Name())
		}
		c, err := glif.ParseColor(string(s))
		if err != nil {
			return err
		}
		layer.Color = &c
	}
	if v, ok := d.Get("lib"); ok {
		lib, ok := v.(*plist.Dict)
		if !ok {
			return core.Error(core.EPARSE, "layerinfo.plist of layer '%s': lib must be a dictionary", layer.Name())
		}
		layer.Lib = lib
	}
	return nil
}

// store reads one of the open-ended binary stores (data/ or images/)
// into memory, keyed by slash-separated relative path.
func (ld *loader) store(dir string) (map[string][]byte, error) {
	storePath := filepath.Join(ld.root, dir)
	if _, err := os.Stat(storePath); os.IsNotExist(err) {
		return nil, nil
	}
	store := make(map[string][]byte)
	err := filepath.WalkDir(storePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(storePath, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		store[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return nil, core.WrapError(err, core.EIO, "cannot read %s store", dir)
	}
	if len(store) == 0 {
		return nil, nil
	}
	return store, nil
}
