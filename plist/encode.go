package plist

import (
	"bytes"
	"encoding/base64"
	"strconv"
	"strings"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
`

// Encode serializes a value as a complete property-list document.
// Output is deterministic: dictionary keys keep their insertion order and
// numbers use a minimal stable representation, so encoding the result of
// Parse on a canonical file reproduces it byte for byte.
func Encode(v Value) []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	buf.WriteString("<plist version=\"1.0\">\n")
	encodeValue(&buf, v, 0)
	buf.WriteString("</plist>\n")
	return buf.Bytes()
}

// EncodeElement serializes a single value as an element fragment at the
// given indentation depth, without document header or <plist> wrapper.
// The counterpart of ParseElement for embedded plist fragments.
func EncodeElement(buf *bytes.Buffer, v Value, depth int) {
	encodeValue(buf, v, depth)
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func indent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteByte('\t')
	}
}

func encodeValue(buf *bytes.Buffer, v Value, depth int) {
	indent(buf, depth)
	switch x := v.(type) {
	case *Dict:
		if x.Len() == 0 {
			buf.WriteString("<dict/>\n")
			return
		}
		buf.WriteString("<dict>\n")
		for _, key := range x.Keys() {
			indent(buf, depth+1)
			buf.WriteString("<key>")
			escaper.WriteString(buf, key)
			buf.WriteString("</key>\n")
			item, _ := x.Get(key)
			encodeValue(buf, item, depth+1)
		}
		indent(buf, depth)
		buf.WriteString("</dict>\n")
	case Array:
		if len(x) == 0 {
			buf.WriteString("<array/>\n")
			return
		}
		buf.WriteString("<array>\n")
		for _, item := range x {
			encodeValue(buf, item, depth+1)
		}
		indent(buf, depth)
		buf.WriteString("</array>\n")
	case String:
		buf.WriteString("<string>")
		escaper.WriteString(buf, string(x))
		buf.WriteString("</string>\n")
	case Integer:
		buf.WriteString("<integer>")
		buf.WriteString(strconv.FormatInt(int64(x), 10))
		buf.WriteString("</integer>\n")
	case Real:
		buf.WriteString("<real>")
		buf.WriteString(FormatReal(float64(x)))
		buf.WriteString("</real>\n")
	case Boolean:
		if x {
			buf.WriteString("<true/>\n")
		} else {
			buf.WriteString("<false/>\n")
		}
	case Date:
		buf.WriteString("<date>")
		if x.raw != "" {
			buf.WriteString(x.raw)
		} else {
			buf.WriteString(x.Time.UTC().Format("2006-01-02T15:04:05Z"))
		}
		buf.WriteString("</date>\n")
	case Data:
		buf.WriteString("<data>")
		buf.WriteString(base64.StdEncoding.EncodeToString(x))
		buf.WriteString("</data>\n")
	}
}

// FormatReal renders a float with the minimal number of decimal digits
// that survives a round trip, without introducing exponent notation.
// Integral reals keep no fraction part; they are still tagged <real>.
func FormatReal(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
