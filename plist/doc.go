/*
Package plist implements a codec for XML property lists, the structured
value format used by every non-glyph metadata file of a UFO package
(fontinfo.plist, groups.plist, kerning.plist, lib.plist, …).

Values form a closed variant over dictionary, array, string, integer,
real, boolean, date and binary data. Dictionaries are insertion-ordered:
UFO sources live under version control and are expected to diff cleanly,
therefore a parse→encode round trip of an already-canonical file must be
byte-stable and key order must never be re-sorted.

Parsing is lenient where real-world font sources are sloppy (a missing
<plist> wrapper element is tolerated), but malformed nesting and type
errors are rejected with a ParseError carrying the byte offset of the
offending token.
*/
package plist

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ufo.plist'
func tracer() tracing.Trace {
	return tracing.Select("ufo.plist")
}
