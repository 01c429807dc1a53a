package plist

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ParseError reports a malformed property list. Offset is the byte
// position of the offending token within the input, where derivable.
type ParseError struct {
	Offset int64
	Reason string
	err    error
}

func (e *ParseError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("plist: %s at byte %d: %v", e.Reason, e.Offset, e.err)
	}
	return fmt.Sprintf("plist: %s at byte %d", e.Reason, e.Offset)
}

func (e *ParseError) Unwrap() error {
	return e.err
}

// parser wraps an XML token stream with position bookkeeping.
type parser struct {
	d *xml.Decoder
}

func (p *parser) fail(reason string, err error) *ParseError {
	return &ParseError{Offset: p.d.InputOffset(), Reason: reason, err: err}
}

// Parse decodes a property-list document into a Value.
// The <plist> wrapper element is optional; some tools in the wild omit it.
func Parse(data []byte) (Value, error) {
	p := &parser{d: xml.NewDecoder(bytes.NewReader(data))}
	start, err := p.nextStart()
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, p.fail("document contains no value", nil)
	}
	if start.Name.Local == "plist" {
		start, err = p.nextStart()
		if err != nil {
			return nil, err
		}
		if start == nil {
			return nil, p.fail("empty <plist> element", nil)
		}
	}
	v, err := p.parseValue(*start)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("parsed plist root of kind %s", v.Kind())
	return v, nil
}

// ParseElement decodes a single property-list value from within an
// enclosing XML token stream, starting at the given element. This serves
// embedded plist fragments, such as the <lib> block of a glyph document.
func ParseElement(d *xml.Decoder, start xml.StartElement) (Value, error) {
	p := &parser{d: d}
	return p.parseValue(start)
}

// ParseDict decodes a property list whose root value must be a dictionary.
func ParseDict(data []byte) (*Dict, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	d, ok := v.(*Dict)
	if !ok {
		return nil, &ParseError{Reason: fmt.Sprintf("expected dict root, have %s", v.Kind())}
	}
	return d, nil
}

// nextStart skips over whitespace, comments, processing instructions and
// directives until the next start element. Returns nil at well-formed EOF.
func (p *parser) nextStart() (*xml.StartElement, error) {
	for {
		tok, err := p.d.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, p.fail("XML error", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			start := t.Copy()
			return &start, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, p.fail("unexpected text outside of element", nil)
			}
		case xml.EndElement:
			// closing </plist>; callers detect a missing value themselves
			return nil, nil
		}
	}
}

func (p *parser) parseValue(start xml.StartElement) (Value, error) {
	switch start.Name.Local {
	case "dict":
		return p.parseDict(start)
	case "array":
		return p.parseArray(start)
	case "string":
		s, err := p.text(start)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case "integer":
		s, err := p.text(start)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, p.fail("malformed <integer>", err)
		}
		return Integer(n), nil
	case "real":
		s, err := p.text(start)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, p.fail("malformed <real>", err)
		}
		return Real(f), nil
	case "true", "false":
		if err := p.d.Skip(); err != nil {
			return nil, p.fail("malformed boolean", err)
		}
		return Boolean(start.Name.Local == "true"), nil
	case "date":
		s, err := p.text(start)
		if err != nil {
			return nil, err
		}
		s = strings.TrimSpace(s)
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, p.fail("malformed <date>", err)
		}
		return Date{Time: t, raw: s}, nil
	case "data":
		s, err := p.text(start)
		if err != nil {
			return nil, err
		}
		s = strings.Map(dropSpace, s)
		blob, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, p.fail("malformed <data>", err)
		}
		return Data(blob), nil
	}
	return nil, p.fail(fmt.Sprintf("unknown element <%s>", start.Name.Local), nil)
}

func (p *parser) parseDict(start xml.StartElement) (*Dict, error) {
	dict := NewDict()
	for {
		tok, err := p.d.Token()
		if err != nil {
			return nil, p.fail("unterminated <dict>", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return dict, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, p.fail("stray text inside <dict>", nil)
			}
		case xml.StartElement:
			if t.Name.Local != "key" {
				return nil, p.fail(fmt.Sprintf("expected <key>, have <%s>", t.Name.Local), nil)
			}
			key, err := p.text(t)
			if err != nil {
				return nil, err
			}
			if !utf8.ValidString(key) {
				return nil, p.fail("dict key is not valid UTF-8", nil)
			}
			vstart, err := p.nextStart()
			if err != nil {
				return nil, err
			}
			if vstart == nil || vstart.Name.Local == "key" {
				return nil, p.fail(fmt.Sprintf("key '%s' has no value", key), nil)
			}
			v, err := p.parseValue(*vstart)
			if err != nil {
				return nil, err
			}
			dict.Set(key, v)
		}
	}
}

func (p *parser) parseArray(start xml.StartElement) (Array, error) {
	arr := Array{}
	for {
		tok, err := p.d.Token()
		if err != nil {
			return nil, p.fail("unterminated <array>", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return arr, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, p.fail("stray text inside <array>", nil)
			}
		case xml.StartElement:
			v, err := p.parseValue(t)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
	}
}

// text collects the character data of an element up to its end tag.
// Nested elements are malformed nesting and rejected.
func (p *parser) text(start xml.StartElement) (string, error) {
	var sb strings.Builder
	for {
		tok, err := p.d.Token()
		if err != nil {
			return "", p.fail(fmt.Sprintf("unterminated <%s>", start.Name.Local), err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return sb.String(), nil
		case xml.StartElement:
			return "", p.fail(fmt.Sprintf("unexpected <%s> inside <%s>", t.Name.Local, start.Name.Local), nil)
		}
	}
}

func dropSpace(r rune) rune {
	switch r {
	case ' ', '\t', '\n', '\r':
		return -1
	}
	return r
}
