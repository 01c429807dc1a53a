package ufo

import (
	"os"
	"path/filepath"

	"github.com/npillmayer/ufo/core"
	"github.com/npillmayer/ufo/glif"
	"github.com/npillmayer/ufo/names"
	"github.com/npillmayer/ufo/plist"
)

// defaultLayerDir is the fixed directory name of the default layer.
const defaultLayerDir = "glyphs"

// Save writes a font as a UFO package of the given format version,
// with glyph IO fanned out over the available CPUs.
func Save(f *Font, path string, target FormatVersion) error {
	return SaveWith(f, path, target, Options{Workers: defaultWorkers()})
}

// SaveWith writes a font with explicit options. The font is validated
// against the target version first; a non-empty Report aborts the save
// before anything touches the disk. The package is assembled in a
// sibling temporary directory and swapped into place in one rename, so
// a failing save never leaves a half-written package at path.
func SaveWith(f *Font, path string, target FormatVersion, opts Options) error {
	if report := Validate(f, target); len(report) > 0 {
		return report
	}
	parent := filepath.Dir(path)
	tmp, err := os.MkdirTemp(parent, ".ufo-save-*")
	if err != nil {
		return core.WrapError(err, core.EIO, "cannot create staging directory in %s", parent)
	}
	sv := &saver{root: tmp, target: target, opts: opts}
	if err := sv.font(f); err != nil {
		os.RemoveAll(tmp)
		return err
	}
	if err := swapDirs(tmp, path); err != nil {
		os.RemoveAll(tmp)
		return err
	}
	tracer().Infof("saved font source %s as %s", path, target)
	return nil
}

// swapDirs moves the staged package into place. Both directories live
// on the same file system, so the rename is atomic.
func swapDirs(tmp, path string) error {
	if _, err := os.Stat(path); err == nil {
		if err := os.RemoveAll(path); err != nil {
			return core.WrapError(err, core.EIO, "cannot replace %s", path)
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		return core.WrapError(err, core.EIO, "cannot move staged package to %s", path)
	}
	return nil
}

type saver struct {
	root   string
	target FormatVersion
	opts   Options

	// writeHook, when set, replaces os.WriteFile for glyph files.
	// Tests inject faults through it.
	writeHook func(path string, data []byte) error
}

func (sv *saver) writeFile(name string, data []byte) error {
	path := filepath.Join(sv.root, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return core.WrapError(err, core.EIO, "cannot write %s", name)
	}
	return nil
}

func (sv *saver) font(f *Font) error {
	if err := sv.metaInfo(f); err != nil {
		return err
	}
	if f.Info != nil && f.Info.Dict().Len() > 0 {
		if err := sv.writeFile("fontinfo.plist", plist.Encode(f.Info.Dict())); err != nil {
			return err
		}
	}
	if err := sv.groups(f); err != nil {
		return err
	}
	if err := sv.kerning(f); err != nil {
		return err
	}
	if f.Features != "" {
		if err := sv.writeFile("features.fea", []byte(f.Features)); err != nil {
			return err
		}
	}
	if f.Lib != nil && f.Lib.Len() > 0 {
		if err := sv.writeFile("lib.plist", plist.Encode(f.Lib)); err != nil {
			return err
		}
	}
	dirs, err := sv.layerDirs(f)
	if err != nil {
		return err
	}
	if sv.target.Major >= 3 {
		if err := sv.layerContents(f, dirs); err != nil {
			return err
		}
	}
	for i, layer := range f.Layers() {
		if err := sv.layer(layer, dirs[i]); err != nil {
			return err
		}
	}
	if sv.target.Major >= 3 {
		if err := sv.store("data", f.Data); err != nil {
			return err
		}
		if err := sv.store("images", f.Images); err != nil {
			return err
		}
	}
	return nil
}

func (sv *saver) metaInfo(f *Font) error {
	creator := f.Meta.Creator
	if creator == "" {
		creator = DefaultCreator
	}
	d := plist.NewDict()
	d.Set("creator", plist.String(creator))
	d.Set("formatVersion", plist.Integer(sv.target.Major))
	if sv.target.Minor != 0 {
		d.Set("formatVersionMinor", plist.Integer(sv.target.Minor))
	}
	return sv.writeFile("metainfo.plist", plist.Encode(d))
}

func (sv *saver) groups(f *Font) error {
	if f.Groups == nil || f.Groups.Len() == 0 {
		return nil
	}
	d := plist.NewDict()
	for _, name := range f.Groups.Names() {
		members, _ := f.Groups.Get(name)
		arr := make(plist.Array, len(members))
		for i, m := range members {
			arr[i] = plist.String(m)
		}
		d.Set(name, arr)
	}
	return sv.writeFile("groups.plist", plist.Encode(d))
}

// kerning writes kerning.plist. Integral values are written as
// integers, matching what the common editors emit.
func (sv *saver) kerning(f *Font) error {
	if f.Kerning == nil || f.Kerning.Len() == 0 {
		return nil
	}
	d := plist.NewDict()
	for _, first := range f.Kerning.Firsts() {
		seconds := plist.NewDict()
		for _, second := range f.Kerning.Seconds(first) {
			v, _ := f.Kerning.Get(first, second)
			if v == float64(int64(v)) {
				seconds.Set(second, plist.Integer(int64(v)))
			} else {
				seconds.Set(second, plist.Real(v))
			}
		}
		d.Set(first, seconds)
	}
	return sv.writeFile("kerning.plist", plist.Encode(d))
}

// layerDirs assigns a directory name to every layer: the fixed name
// for the default layer, an escaped "glyphs."-prefixed one for all
// others.
func (sv *saver) layerDirs(f *Font) ([]string, error) {
	namer := names.NewLayerNamer()
	dirs := make([]string, len(f.Layers()))
	for i, layer := range f.Layers() {
		if layer.Default {
			dirs[i] = defaultLayerDir
			continue
		}
		dir, err := namer.Name(layer.Name())
		if err != nil {
			return nil, err
		}
		dirs[i] = dir
	}
	return dirs, nil
}

func (sv *saver) layerContents(f *Font, dirs []string) error {
	arr := make(plist.Array, len(dirs))
	for i, layer := range f.Layers() {
		arr[i] = plist.Array{plist.String(layer.Name()), plist.String(dirs[i])}
	}
	return sv.writeFile("layercontents.plist", plist.Encode(arr))
}

func (sv *saver) layer(layer *Layer, dir string) error {
	layerPath := filepath.Join(sv.root, dir)
	if err := os.Mkdir(layerPath, 0755); err != nil {
		return core.WrapError(err, core.EIO, "cannot create layer directory %s", dir)
	}
	if sv.target.Major >= 3 {
		if err := sv.layerInfo(layer, dir); err != nil {
			return err
		}
	}

	namer := names.NewGlyphNamer()
	glyphs := layer.Glyphs()
	contents := plist.NewDict()
	files := make([]string, len(glyphs))
	for i, g := range glyphs {
		fileName, err := namer.Name(g.Name)
		if err != nil {
			return err
		}
		files[i] = fileName
		contents.Set(g.Name, plist.String(fileName))
	}
	if err := sv.writeFile(filepath.Join(dir, "contents.plist"), plist.Encode(contents)); err != nil {
		return err
	}

	glifVersion := glif.Version1
	if sv.target.Major >= 3 {
		glifVersion = glif.Version2
	}
	errs := make([]error, len(glyphs))
	forEach(len(glyphs), sv.opts.Workers, func(i int) {
		data, err := glif.Encode(glyphs[i], glifVersion)
		if err != nil {
			errs[i] = err
			return
		}
		name := filepath.Join(dir, files[i])
		if sv.writeHook != nil {
			errs[i] = sv.writeHook(name, data)
			return
		}
		errs[i] = sv.writeFile(name, data)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (sv *saver) layerInfo(layer *Layer, dir string) error {
	if layer.Color == nil && (layer.Lib == nil || layer.Lib.Len() == 0) {
		return nil
	}
	d := plist.NewDict()
	if layer.Color != nil {
		d.Set("color", plist.String(layer.Color.String()))
	}
	if layer.Lib != nil && layer.Lib.Len() > 0 {
		d.Set("lib", layer.Lib)
	}
	return sv.writeFile(filepath.Join(dir, "layerinfo.plist"), plist.Encode(d))
}

func (sv *saver) store(dir string, store map[string][]byte) error {
	if len(store) == 0 {
		return nil
	}
	for name, data := range store {
		path := filepath.Join(sv.root, dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return core.WrapError(err, core.EIO, "cannot create %s store directory", dir)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return core.WrapError(err, core.EIO, "cannot write %s store entry '%s'", dir, name)
		}
	}
	return nil
}

// saveForTest builds the package under an explicit staging directory,
// bypassing the swap. Tests use it to exercise fault injection.
func saveForTest(f *Font, tmp string, target FormatVersion, opts Options, hook func(string, []byte) error) error {
	sv := &saver{root: tmp, target: target, opts: opts, writeHook: hook}
	return sv.font(f)
}
