/*
Package names maps arbitrary glyph and layer names onto a filesystem
namespace that is safe on case-insensitive, reserved-word-aware systems.

The mapping is deterministic and injective within one Namer: two distinct
names handed to the same Namer never receive the same file name, even if
they differ only by case. The inverse direction exists as a best effort
for files this library wrote itself; when loading, the contents.plist
mapping is authoritative and must be trusted over any reversal.
*/
package names

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/ufo/core"
	"golang.org/x/text/unicode/norm"
)

// tracer writes to trace with key 'ufo.names'
func tracer() tracing.Trace {
	return tracing.Select("ufo.names")
}

// maxFileNameLen is the conventional per-component limit of common
// filesystems.
const maxFileNameLen = 255

// IsValidGlyphName reports whether a string is usable as a glyph name:
// non-empty, valid UTF-8, free of control characters.
func IsValidGlyphName(name string) bool {
	if name == "" || !utf8.ValidString(name) {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// Namer assigns file names within one directory. It remembers every name
// it has given out and will disambiguate case-insensitive collisions with
// a numeric suffix.
type Namer struct {
	prefix string
	suffix string
	used   map[string]string // folded file name -> user name
}

// NewGlyphNamer creates a Namer for .glif files of one glyph directory.
func NewGlyphNamer() *Namer {
	return &Namer{suffix: ".glif", used: make(map[string]string)}
}

// NewLayerNamer creates a Namer for layer directories ("glyphs.<name>").
func NewLayerNamer() *Namer {
	return &Namer{prefix: "glyphs.", used: make(map[string]string)}
}

// Name maps a user-visible name to a unique file name, remembering the
// assignment. It fails for invalid names; exhausting the disambiguation
// space would be a logic defect and is reported as a collision error.
func (n *Namer) Name(userName string) (string, error) {
	if !IsValidGlyphName(userName) {
		return "", core.Error(core.EINVALID, "name not usable in a UFO package: %q", userName)
	}
	base := n.prefix + escape(userName)
	if len(base)+len(n.suffix) > maxFileNameLen {
		base = truncate(base, userName, len(n.suffix))
	}
	candidate := base
	for i := 1; ; i++ {
		fileName := candidate + n.suffix
		folded := fold(fileName)
		_, taken := n.used[folded]
		if !taken && !isReserved(candidate) {
			n.used[folded] = userName
			tracer().Debugf("name %q -> file %q", userName, fileName)
			return fileName, nil
		}
		if i > len(n.used)+1 {
			// cannot happen: i distinct suffixes cannot all collide
			return "", core.Error(core.ECOLLISION, "cannot find distinct file name for %q", userName)
		}
		num := strconv.Itoa(i)
		candidate = base + num
		if len(candidate)+len(n.suffix) > maxFileNameLen {
			candidate = truncate(base, userName, len(n.suffix)+len(num)) + num
		}
	}
}

// Assigned returns the user name a file name was handed out for, if any.
func (n *Namer) Assigned(fileName string) (string, bool) {
	userName, ok := n.used[fold(fileName)]
	return userName, ok
}

// specialIllegal are printable characters that are illegal or magic in
// file names on at least one common filesystem.
const specialIllegal = `\*+/:<>?[]|`

func mustEscape(r rune, first bool) bool {
	if r < 0x20 || r == 0x7f || r == '_' {
		return true
	}
	if first && r == '.' {
		return true
	}
	return strings.ContainsRune(specialIllegal, r)
}

// escape rewrites a name character by character: problematic characters
// become an underscore marker followed by the 4-digit hex codepoint, and
// uppercase ASCII gains a trailing underscore so that names differing
// only by case stay distinct after case folding. Underscore itself is
// always escaped, which keeps the encoding injective and reversible.
func escape(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case mustEscape(r, i == 0):
			fmt.Fprintf(&sb, "_%04X", r)
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
			sb.WriteByte('_')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// FileNameToGlyphName inverts the escaping for file names produced by
// this package. The numeric disambiguation and overlength-hash suffixes
// are not invertible; for those, and for third-party file names, the
// second return value is false and the caller must fall back to the
// contents.plist mapping.
func FileNameToGlyphName(fileName string) (string, bool) {
	name, ok := strings.CutSuffix(fileName, ".glif")
	if !ok {
		return "", false
	}
	var sb strings.Builder
	prevUpper := false
	for i := 0; i < len(name); {
		c := name[i]
		if c == '_' {
			// escape always emits the case marker right after an
			// uppercase letter, so the marker interpretation wins here
			if prevUpper {
				prevUpper = false
				i++
				continue
			}
			if i+5 <= len(name) && isHex4(name[i+1:i+5]) {
				code, _ := strconv.ParseUint(name[i+1:i+5], 16, 32)
				sb.WriteRune(rune(code))
				i += 5
				continue
			}
			return "", false
		}
		r, size := utf8.DecodeRuneInString(name[i:])
		sb.WriteRune(r)
		prevUpper = r >= 'A' && r <= 'Z'
		i += size
	}
	return sb.String(), true
}

func isHex4(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// fold normalizes a file name for collision detection on case-insensitive
// filesystems. NFC first, so composed and decomposed spellings of the same
// name cannot claim distinct files.
func fold(fileName string) string {
	return strings.ToLower(norm.NFC.String(fileName))
}

// reservedNames are device names some platforms refuse as file stems,
// in any case and with any extension.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true, "CLOCK$": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

func isReserved(base string) bool {
	upper := strings.ToUpper(base)
	if reservedNames[upper] {
		return true
	}
	if stem, _, ok := strings.Cut(upper, "."); ok && reservedNames[stem] {
		return true
	}
	return false
}

// truncate shortens an overlong escaped name, replacing the tail with a
// short hash of the original name so that two long names with a common
// prefix cannot silently collide.
func truncate(base string, userName string, suffixLen int) string {
	h := fnv.New32a()
	h.Write([]byte(userName))
	tail := fmt.Sprintf("_%08X", h.Sum32())
	keep := maxFileNameLen - suffixLen - len(tail)
	for keep > 0 && !utf8.RuneStart(base[keep]) {
		keep--
	}
	return base[:keep] + tail
}
