package plist

import (
	"bytes"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestParseScalars(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.plist")
	defer teardown()
	//
	input := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>name</key>
	<string>Testfont &amp; Friends</string>
	<key>unitsPerEm</key>
	<integer>1000</integer>
	<key>italicAngle</key>
	<real>-7.5</real>
	<key>bold</key>
	<false/>
	<key>created</key>
	<date>2021-03-04T10:00:00Z</date>
	<key>blob</key>
	<data>aGVsbG8=</data>
</dict>
</plist>
`
	v, err := Parse([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	d, ok := v.(*Dict)
	if !ok {
		t.Fatalf("expected dict root, have %s", v.Kind())
	}
	if s, _ := d.Get("name"); s != String("Testfont & Friends") {
		t.Errorf("string value mangled: %v", s)
	}
	if n, _ := d.Get("unitsPerEm"); n != Integer(1000) {
		t.Errorf("expected integer 1000, have %v", n)
	}
	if r, _ := d.Get("italicAngle"); r != Real(-7.5) {
		t.Errorf("expected real -7.5, have %v", r)
	}
	if b, _ := d.Get("bold"); b != Boolean(false) {
		t.Errorf("expected false, have %v", b)
	}
	date, _ := d.Get("created")
	want := time.Date(2021, 3, 4, 10, 0, 0, 0, time.UTC)
	if !date.(Date).Time.Equal(want) {
		t.Errorf("date mangled: %v", date)
	}
	if blob, _ := d.Get("blob"); !bytes.Equal(blob.(Data), []byte("hello")) {
		t.Errorf("data mangled: %v", blob)
	}
}

func TestParseWithoutWrapper(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.plist")
	defer teardown()
	//
	v, err := Parse([]byte(`<dict><key>a</key><integer>1</integer></dict>`))
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != DictKind {
		t.Errorf("expected dict, have %s", v.Kind())
	}
}

func TestKeyOrderPreserved(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.plist")
	defer teardown()
	//
	// deliberately non-alphabetical
	d := NewDict()
	d.Set("zebra", Integer(1))
	d.Set("apple", Integer(2))
	d.Set("mango", Integer(3))
	out := Encode(d)
	reparsed, err := ParseDict(out)
	if err != nil {
		t.Fatal(err)
	}
	keys := reparsed.Keys()
	if len(keys) != 3 || keys[0] != "zebra" || keys[1] != "apple" || keys[2] != "mango" {
		t.Errorf("key order not preserved: %v", keys)
	}
}

func TestRoundTripByteStable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.plist")
	defer teardown()
	//
	d := NewDict()
	d.Set("styleName", String("Regular"))
	inner := NewDict()
	inner.Set("x", Real(0.5))
	inner.Set("y", Integer(-12))
	d.Set("nested", inner)
	d.Set("tags", Array{String("a"), String("b")})
	first := Encode(d)
	v, err := Parse(first)
	if err != nil {
		t.Fatal(err)
	}
	second := Encode(v)
	if !bytes.Equal(first, second) {
		t.Errorf("canonical round trip not byte-stable:\n%s\n----\n%s", first, second)
	}
}

func TestDateRoundTripKeepsPrecision(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.plist")
	defer teardown()
	//
	// fractional seconds and a zone offset must survive untouched
	input := `<dict>
	<key>created</key>
	<date>2021-03-04T10:00:00.500+02:00</date>
</dict>`
	v, err := Parse([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	out := Encode(v)
	if !bytes.Contains(out, []byte("<date>2021-03-04T10:00:00.500+02:00</date>")) {
		t.Errorf("date text not preserved:\n%s", out)
	}
	d, _ := v.(*Dict).Get("created")
	want := time.Date(2021, 3, 4, 8, 0, 0, 500000000, time.UTC)
	if !d.(Date).Time.Equal(want) {
		t.Errorf("date instant mangled: %v", d.(Date).Time)
	}
}

func TestMalformedNesting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.plist")
	defer teardown()
	//
	cases := []string{
		`<dict><key>a</key></dict>`,                        // key without value
		`<dict><integer>1</integer></dict>`,                // value without key
		`<string>a<integer>1</integer></string>`,           // element inside scalar
		`<dict><key>a</key><integer>xx</integer></dict>`,   // bad number
		`<array><dict><key>k</key><string>v</string></array>`, // unbalanced
	}
	for _, input := range cases {
		if _, err := Parse([]byte(input)); err == nil {
			t.Errorf("expected parse error for %q, got none", input)
		}
	}
}

func TestParseErrorHasOffset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.plist")
	defer teardown()
	//
	_, err := Parse([]byte(`<dict><key>a</key><integer>oops</integer></dict>`))
	if err == nil {
		t.Fatal("expected parse error")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, have %T", err)
	}
	if pe.Offset == 0 {
		t.Errorf("expected nonzero byte offset in %v", pe)
	}
}

func TestEqualHonorsKeyOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufo.plist")
	defer teardown()
	//
	a := NewDict()
	a.Set("x", Integer(1))
	a.Set("y", Integer(2))
	b := NewDict()
	b.Set("y", Integer(2))
	b.Set("x", Integer(1))
	if Equal(a, b) {
		t.Error("dicts with different key order must not compare equal")
	}
	if !Equal(a, a.Clone()) {
		t.Error("clone must compare equal to original")
	}
}
