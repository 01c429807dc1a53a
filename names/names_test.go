package names

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestEscapeReservedSeparator(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.names")
	defer teardown()
	//
	n := NewGlyphNamer()
	fileName, err := n.Name("A/B")
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsRune(fileName, '/') {
		t.Fatalf("file name %q still contains a path separator", fileName)
	}
	if !strings.Contains(fileName, "_002F") {
		t.Errorf("expected escape sequence for '/' in %q", fileName)
	}
	if !strings.HasSuffix(fileName, ".glif") {
		t.Errorf("expected .glif suffix, have %q", fileName)
	}
}

func TestCaseCollision(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.names")
	defer teardown()
	//
	n := NewGlyphNamer()
	// "A" escapes to "A_", "a_" folds onto it case-insensitively
	first, err := n.Name("A")
	if err != nil {
		t.Fatal(err)
	}
	second, err := n.Name("a_")
	if err != nil {
		t.Fatal(err)
	}
	if strings.EqualFold(first, second) {
		t.Errorf("case-insensitive collision: %q vs %q", first, second)
	}
}

func TestInjectivity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.names")
	defer teardown()
	//
	namesInput := []string{
		"a", "A", "a_", "A_", "_a", ".notdef", "dotless.i", "con", "CON", "Con.alt",
		"a/b", "a:b", "a*b", "A.sc", "acutecomb", "Acutecomb", "nul", "lpt1",
	}
	n := NewGlyphNamer()
	seen := make(map[string]string)
	for _, name := range namesInput {
		fileName, err := n.Name(name)
		if err != nil {
			t.Fatalf("name %q: %v", name, err)
		}
		folded := strings.ToLower(fileName)
		if prev, ok := seen[folded]; ok {
			t.Errorf("names %q and %q map to colliding files %q", prev, name, fileName)
		}
		seen[folded] = name
	}
}

func TestReservedDeviceName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.names")
	defer teardown()
	//
	n := NewGlyphNamer()
	fileName, err := n.Name("con")
	if err != nil {
		t.Fatal(err)
	}
	if strings.EqualFold(fileName, "con.glif") {
		t.Errorf("reserved device name must be disambiguated, have %q", fileName)
	}
}

func TestLongNameHashSuffix(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.names")
	defer teardown()
	//
	long1 := strings.Repeat("x", 300) + "1"
	long2 := strings.Repeat("x", 300) + "2"
	n := NewGlyphNamer()
	f1, err := n.Name(long1)
	if err != nil {
		t.Fatal(err)
	}
	f2, err := n.Name(long2)
	if err != nil {
		t.Fatal(err)
	}
	if len(f1) > 255 || len(f2) > 255 {
		t.Errorf("file names exceed 255 bytes: %d, %d", len(f1), len(f2))
	}
	if f1 == f2 {
		t.Errorf("long names with common prefix collided on %q", f1)
	}
}

func TestTruncatedCollisionStaysWithinLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.names")
	defer teardown()
	//
	// the numeric disambiguation of an already-truncated name must not
	// push the file name back over the length limit
	long := strings.Repeat("a", 300)
	n := NewGlyphNamer()
	first, err := n.Name(long)
	if err != nil {
		t.Fatal(err)
	}
	second, err := n.Name(long)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("repeated assignment collided on %q", first)
	}
	if len(first) > 255 || len(second) > 255 {
		t.Errorf("file names exceed 255 bytes: %d, %d", len(first), len(second))
	}
}

func TestRoundTripOwnNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.names")
	defer teardown()
	//
	// "A0041" and "A_B" probe the marker-vs-escape ambiguity after an
	// uppercase letter
	for _, name := range []string{"a", "A", "A/B", ".notdef", "a_b", "Aacute",
		"perthousand", "A0041", "AB", "A_B"} {
		n := NewGlyphNamer()
		fileName, err := n.Name(name)
		if err != nil {
			t.Fatal(err)
		}
		back, ok := FileNameToGlyphName(fileName)
		if !ok {
			t.Errorf("cannot invert own file name %q", fileName)
			continue
		}
		if back != name {
			t.Errorf("round trip mangled %q -> %q -> %q", name, fileName, back)
		}
	}
}

func TestLayerDirNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.names")
	defer teardown()
	//
	n := NewLayerNamer()
	dir, err := n.Name("background")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dir, "glyphs.") {
		t.Errorf("layer dir must start with 'glyphs.', have %q", dir)
	}
}

func TestGlyphNameValidity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.names")
	defer teardown()
	//
	if !IsValidGlyphName("A.sc") {
		t.Error("expected 'A.sc' to be valid")
	}
	if IsValidGlyphName("") {
		t.Error("empty name must be invalid")
	}
	if IsValidGlyphName("a\tb") {
		t.Error("control characters must be invalid")
	}
}
