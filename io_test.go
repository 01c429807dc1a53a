package ufo

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/ufo/core"
	"github.com/npillmayer/ufo/glif"
	"github.com/npillmayer/ufo/plist"
)

// writeFixture materializes a map of relative path -> file content as a
// directory tree.
func writeFixture(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const fixtureMetaInfo = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>creator</key>
	<string>com.example.editor</string>
	<key>formatVersion</key>
	<integer>3</integer>
</dict>
</plist>
`

const fixtureGlifA = `<?xml version="1.0" encoding="UTF-8"?>
<glyph name="A" format="2">
	<advance width="500"/>
	<unicode hex="0041"/>
	<outline>
		<contour>
			<point x="0" y="0" type="line"/>
			<point x="100" y="0" type="line"/>
			<point x="50" y="200" type="line"/>
		</contour>
	</outline>
</glyph>
`

func minimalFixture() map[string]string {
	return map[string]string{
		"metainfo.plist": fixtureMetaInfo,
		"layercontents.plist": `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<array>
	<array>
		<string>public.default</string>
		<string>glyphs</string>
	</array>
</array>
</plist>
`,
		"glyphs/contents.plist": `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>A</key>
	<string>A_.glif</string>
</dict>
</plist>
`,
		"glyphs/A_.glif": fixtureGlifA,
	}
}

func TestLoadMinimalFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.io")
	defer teardown()
	//
	dir := writeFixture(t, minimalFixture())
	f, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if f.Meta.Version != FormatVersion3 {
		t.Errorf("expected format version 3, have %v", f.Meta.Version)
	}
	if f.Meta.Creator != "com.example.editor" {
		t.Errorf("creator mangled: %q", f.Meta.Creator)
	}
	layer := f.DefaultLayer()
	if layer == nil || layer.Name() != DefaultLayerName {
		t.Fatal("expected a default layer named public.default")
	}
	g, ok := layer.Glyph("A")
	if !ok {
		t.Fatal("expected glyph 'A' on the default layer")
	}
	if g.Advance == nil || g.Advance.Width != 500 {
		t.Errorf("advance mangled: %+v", g.Advance)
	}
}

func TestLoadWithoutMetaInfo(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.io")
	defer teardown()
	//
	dir := t.TempDir()
	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected load of an empty directory to fail")
	}
	if core.Code(err) != core.EMISSING {
		t.Errorf("expected error code EMISSING, have %d", core.Code(err))
	}
}

func TestLoadGlyphNameMismatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.io")
	defer teardown()
	//
	files := minimalFixture()
	files["glyphs/A_.glif"] = strings.Replace(fixtureGlifA, `name="A"`, `name="B"`, 1)
	dir := writeFixture(t, files)
	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected a name mismatch to fail the load")
	}
	report, ok := err.(Report)
	if !ok {
		t.Fatalf("expected a validation report, have %T: %v", err, err)
	}
	if len(report) != 1 || report[0].Kind != FindingNameMismatch {
		t.Errorf("expected exactly one name-mismatch finding, have %v", report)
	}
}

// A loaded font is mutable exactly like a fresh one: the optional
// collections come back empty, never nil, even when the package carried
// none of the optional files.
func TestLoadedFontIsMutable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.io")
	defer teardown()
	//
	dir := writeFixture(t, minimalFixture())
	f, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if f.Info == nil || f.Groups == nil || f.Kerning == nil || f.Lib == nil {
		t.Fatal("optional collections must be initialized after load")
	}
	f.Info.SetFamilyName("Example Sans")
	f.Groups.Set("public.kern1.round", []string{"A"})
	f.Kerning.Set("public.kern1.round", "A", -10)
	f.Lib.Set("com.example.tool", plist.String("kept"))
	out := filepath.Join(t.TempDir(), "Mutated.ufo")
	if err := Save(f, out, FormatVersion3); err != nil {
		t.Fatal(err)
	}
	g, err := Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := g.Kerning.Get("public.kern1.round", "A"); !ok || v != -10 {
		t.Errorf("kerning mutation lost: %v %v", v, ok)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.io")
	defer teardown()
	//
	f := cleanFont()
	f.Info.SetFamilyName("Example Sans")
	f.Info.SetUnitsPerEm(1000)
	f.Groups.Set("public.kern1.round", []string{"B"})
	f.Kerning.Set("public.kern1.round", "A", -20)
	f.Features = "# no features yet\n"
	f.Lib.Set("com.example.tool", plist.String("kept"))
	bg, _ := f.NewLayer("background")
	bg.Color = &glif.Color{R: 1, G: 0, B: 0, A: 0.5}
	bg.AddGlyph(glif.NewGlyph("A"))

	dir := filepath.Join(t.TempDir(), "Example.ufo")
	if err := Save(f, dir, FormatVersion3); err != nil {
		t.Fatal(err)
	}
	g, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if g.Info.FamilyName() != "Example Sans" {
		t.Errorf("family name mangled: %q", g.Info.FamilyName())
	}
	if v, ok := g.Kerning.Get("public.kern1.round", "A"); !ok || v != -20 {
		t.Errorf("kerning mangled: %v %v", v, ok)
	}
	if g.Features != "# no features yet\n" {
		t.Errorf("features mangled: %q", g.Features)
	}
	layer, ok := g.Layer("background")
	if !ok {
		t.Fatal("expected the background layer to survive")
	}
	if layer.Color == nil || layer.Color.R != 1 || layer.Color.A != 0.5 {
		t.Errorf("layer color mangled: %+v", layer.Color)
	}
	if layer.Default {
		t.Error("background layer must not be the default layer")
	}
}

// A second save of a freshly loaded font must reproduce the first save
// byte for byte.
func TestSaveIsByteStable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.io")
	defer teardown()
	//
	f := cleanFont()
	f.Info.SetFamilyName("Example Sans")
	f.Kerning.Set("A", "B", -15)

	base := t.TempDir()
	first := filepath.Join(base, "first.ufo")
	second := filepath.Join(base, "second.ufo")
	if err := Save(f, first, FormatVersion3); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(first)
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(loaded, second, FormatVersion3); err != nil {
		t.Fatal(err)
	}
	compareTrees(t, first, second)
}

func compareTrees(t *testing.T, a, b string) {
	t.Helper()
	filesA := treeFiles(t, a)
	filesB := treeFiles(t, b)
	if len(filesA) != len(filesB) {
		t.Fatalf("file sets differ: %v vs %v", filesA, filesB)
	}
	for name := range filesA {
		dataA, err := os.ReadFile(filepath.Join(a, name))
		if err != nil {
			t.Fatal(err)
		}
		dataB, err := os.ReadFile(filepath.Join(b, name))
		if err != nil {
			t.Fatalf("file %s missing from second package: %v", name, err)
		}
		if !bytes.Equal(dataA, dataB) {
			t.Errorf("file %s differs between saves", name)
		}
	}
}

func treeFiles(t *testing.T, root string) map[string]bool {
	t.Helper()
	files := make(map[string]bool)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[rel] = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return files
}

// Glyph names with characters illegal in file names get escaped in
// contents.plist; the glyph name itself stays untouched.
func TestSaveEscapesFileNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.io")
	defer teardown()
	//
	f := cleanFont()
	f.DefaultLayer().AddGlyph(glif.NewGlyph("A/B"))

	dir := filepath.Join(t.TempDir(), "Escaped.ufo")
	if err := Save(f, dir, FormatVersion3); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "glyphs", "contents.plist"))
	if err != nil {
		t.Fatal(err)
	}
	contents, err := plist.ParseDict(data)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := contents.Get("A/B")
	if !ok {
		t.Fatal("expected glyph name 'A/B' to appear verbatim in contents.plist")
	}
	fileName := string(v.(plist.String))
	if strings.ContainsRune(fileName, '/') {
		t.Errorf("file name %q must not contain a slash", fileName)
	}
	if !strings.Contains(fileName, "_002F") {
		t.Errorf("expected the slash to be escaped in %q", fileName)
	}
	g, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.DefaultLayer().Glyph("A/B"); !ok {
		t.Error("expected glyph 'A/B' to survive the round trip")
	}
}

// Saving to an older format version fails up front when the font uses
// features that version cannot represent, and the failed save leaves an
// existing package untouched.
func TestSaveVersionGatingIsAtomic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.io")
	defer teardown()
	//
	dir := filepath.Join(t.TempDir(), "Gated.ufo")
	if err := Save(cleanFont(), dir, FormatVersion3); err != nil {
		t.Fatal(err)
	}
	before := treeFiles(t, dir)

	f := cleanFont()
	g, _ := f.DefaultLayer().Glyph("A")
	y := 480.0
	g.Guidelines = []glif.Guideline{{Y: &y, Name: "cap"}}
	err := Save(f, dir, FormatVersion2)
	if err == nil {
		t.Fatal("expected save to the older format to fail")
	}
	report, ok := err.(Report)
	if !ok {
		t.Fatalf("expected a validation report, have %T: %v", err, err)
	}
	if report[0].Kind != FindingVersionViolation {
		t.Errorf("expected a version violation, have %v", report)
	}
	after := treeFiles(t, dir)
	if len(before) != len(after) {
		t.Error("failed save must leave the existing package untouched")
	}
}

// A write fault during glyph output aborts the save with the underlying
// error.
func TestSaveFaultInjection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.io")
	defer teardown()
	//
	f := cleanFont()
	tmp := t.TempDir()
	fault := core.Error(core.EIO, "disk full")
	err := saveForTest(f, tmp, FormatVersion3, Options{Workers: 1},
		func(path string, data []byte) error {
			if strings.HasSuffix(path, "B_.glif") {
				return fault
			}
			return os.WriteFile(filepath.Join(tmp, path), data, 0644)
		})
	if err == nil {
		t.Fatal("expected the injected fault to surface")
	}
	if core.Code(err) != core.EIO {
		t.Errorf("expected error code EIO, have %d", core.Code(err))
	}
}

// The concurrent glyph IO path must be indistinguishable from the
// sequential one.
func TestParallelMatchesSequential(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.io")
	defer teardown()
	//
	f := cleanFont()
	layer := f.DefaultLayer()
	for _, name := range []string{"C", "D", "E", "F", "G", "H"} {
		layer.AddGlyph(glif.NewGlyph(name))
	}
	base := t.TempDir()
	seq := filepath.Join(base, "seq.ufo")
	par := filepath.Join(base, "par.ufo")
	if err := SaveWith(f, seq, FormatVersion3, Options{Workers: 1}); err != nil {
		t.Fatal(err)
	}
	if err := SaveWith(f, par, FormatVersion3, Options{Workers: 4}); err != nil {
		t.Fatal(err)
	}
	compareTrees(t, seq, par)

	fromSeq, err := LoadWith(seq, Options{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	fromPar, err := LoadWith(seq, Options{Workers: 4})
	if err != nil {
		t.Fatal(err)
	}
	namesSeq := make([]string, 0, fromSeq.DefaultLayer().Len())
	for _, g := range fromSeq.DefaultLayer().Glyphs() {
		namesSeq = append(namesSeq, g.Name)
	}
	namesPar := make([]string, 0, fromPar.DefaultLayer().Len())
	for _, g := range fromPar.DefaultLayer().Glyphs() {
		namesPar = append(namesPar, g.Name)
	}
	if len(namesSeq) != len(namesPar) {
		t.Fatalf("glyph counts differ: %v vs %v", namesSeq, namesPar)
	}
	for i := range namesSeq {
		if namesSeq[i] != namesPar[i] {
			t.Errorf("glyph order differs at %d: %q vs %q", i, namesSeq[i], namesPar[i])
		}
	}
}

// Unknown fontinfo keys and their order survive a round trip.
func TestFontInfoKeyOrderSurvives(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.io")
	defer teardown()
	//
	files := minimalFixture()
	files["fontinfo.plist"] = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>zzzCustomKey</key>
	<string>opaque</string>
	<key>familyName</key>
	<string>Example Sans</string>
	<key>com.example.private</key>
	<integer>42</integer>
</dict>
</plist>
`
	dir := writeFixture(t, files)
	f, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	f.Info.SetFamilyName("Example Serif")
	out := filepath.Join(t.TempDir(), "Out.ufo")
	if err := Save(f, out, FormatVersion3); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(out, "fontinfo.plist"))
	if err != nil {
		t.Fatal(err)
	}
	saved, err := plist.ParseDict(data)
	if err != nil {
		t.Fatal(err)
	}
	keys := saved.Keys()
	want := []string{"zzzCustomKey", "familyName", "com.example.private"}
	if len(keys) != len(want) {
		t.Fatalf("key set mangled: %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key order mangled at %d: %q vs %q", i, keys[i], want[i])
		}
	}
	if v, _ := saved.Get("familyName"); v != plist.String("Example Serif") {
		t.Errorf("edited field not updated: %v", v)
	}
}
