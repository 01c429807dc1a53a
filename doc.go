/*
Package ufo reads and writes UFO font source packages: directory-based,
version-aware font sources composed of nested property-list files and
per-glyph XML documents.

Intended audience for this package are font-engineering tools that need
a faithful, round-trip-safe in-memory model of a font source. It is not
a rendering or compilation engine: no outlines are rasterized, no binary
fonts (OTF/TTF) are emitted, and glyph artwork is checked for structural
legality only, never for semantic quality.

A font is a graph of single-ownership entities: the font owns its
layers, a layer owns its glyphs, a glyph owns its contours, components,
anchors and guidelines. Cross-entity references — a component naming its
base glyph, a kerning pair naming a group — are weak, name-based lookups
resolved on demand, so the graph stays acyclic and trivially
destructible. No entity remembers its on-disk path; path mapping is
re-derived at save time, which makes renaming a glyph a pure data
mutation.

Loading assembles the graph from disk, then validates it; a failed load
never yields a partially populated font. Saving validates first, writes
a complete sibling temporary directory, and swaps it into place as the
last step — a failed save leaves the original package untouched. Within
one layer, glyph files are an embarrassingly parallel unit of work, and
both directions optionally fan out over a small worker pool; sequential
execution remains the source of truth and the parallel path must be
observably identical.

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
package ufo

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ufo.io'
func tracer() tracing.Trace {
	return tracing.Select("ufo.io")
}
