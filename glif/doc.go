/*
Package glif implements the glyph entities of a UFO font source and the
codec for .glif documents, the per-glyph XML files of a glyph directory.

A glyph carries metrics, an ordered unicode codepoint list, an outline of
interleaved contours and components, anchors, guidelines, an optional
embedded-image reference and open-ended extension data ("lib"). Element
order within the outline and point order within a contour are
geometrically significant and preserved exactly; order across categories
is not, and parsing is lenient about it.

Glif documents are versioned. Version gating is strict in both
directions: features a format version does not know (anchors and
guidelines before version 2) are parse defects on decode, and encoding
against an older target either downgrades a feature along the documented
compatibility table or fails with a version error — never with silent
data loss.

----------------------------------------------------------------------

BSD License

Copyright (c) 2017–21, Norbert Pillmayer (norbert@pillmayer.com)

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package glif

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ufo.glif'
func tracer() tracing.Trace {
	return tracing.Select("ufo.glif")
}
