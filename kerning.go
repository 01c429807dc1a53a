package ufo

import (
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Kerning group side prefixes. Group names are namespaced by side: a
// group used on the first (left) side of a pair carries the kern1
// prefix, one used on the second (right) side the kern2 prefix.
const (
	GroupPrefix1 = "public.kern1."
	GroupPrefix2 = "public.kern2."
)

// GroupSide tells which side of a kerning pair a group serves.
type GroupSide int8

// Group sides.
const (
	SideNone GroupSide = iota // not a kerning group
	Side1                     // first/left member of a pair
	Side2                     // second/right member of a pair
)

// SideOfGroup derives the side from a group name's prefix.
func SideOfGroup(name string) GroupSide {
	switch {
	case strings.HasPrefix(name, GroupPrefix1):
		return Side1
	case strings.HasPrefix(name, GroupPrefix2):
		return Side2
	}
	return SideNone
}

// isGroupLike reports whether a kerning pair member is meant to be a
// group reference rather than a plain glyph name.
func isGroupLike(name string) bool {
	return strings.HasPrefix(name, "public.kern")
}

// Groups are named sets of glyph names, preserving the on-disk entry
// order of groups.plist so that round trips diff cleanly.
type Groups struct {
	m *linkedhashmap.Map // name -> []string
}

// NewGroups creates an empty group collection.
func NewGroups() *Groups {
	return &Groups{m: linkedhashmap.New()}
}

// Set inserts or replaces a group.
func (gr *Groups) Set(name string, members []string) {
	gr.m.Put(name, members)
}

// Get returns a group's members.
func (gr *Groups) Get(name string) ([]string, bool) {
	v, ok := gr.m.Get(name)
	if !ok {
		return nil, false
	}
	return v.([]string), true
}

// Delete removes a group.
func (gr *Groups) Delete(name string) {
	gr.m.Remove(name)
}

// Names returns the group names in insertion order.
func (gr *Groups) Names() []string {
	raw := gr.m.Keys()
	names := make([]string, len(raw))
	for i, k := range raw {
		names[i] = k.(string)
	}
	return names
}

// Len returns the number of groups.
func (gr *Groups) Len() int {
	return gr.m.Size()
}

// Kerning maps ordered (first, second) references — each a group or a
// plain glyph name — to a numeric value. Entry order of both levels is
// preserved from kerning.plist.
type Kerning struct {
	firsts *linkedhashmap.Map // first -> *linkedhashmap.Map (second -> float64)
}

// NewKerning creates an empty kerning table.
func NewKerning() *Kerning {
	return &Kerning{firsts: linkedhashmap.New()}
}

// Set inserts or replaces the value for a pair.
func (k *Kerning) Set(first, second string, value float64) {
	var seconds *linkedhashmap.Map
	if v, ok := k.firsts.Get(first); ok {
		seconds = v.(*linkedhashmap.Map)
	} else {
		seconds = linkedhashmap.New()
		k.firsts.Put(first, seconds)
	}
	seconds.Put(second, value)
}

// Get returns the value for a pair.
func (k *Kerning) Get(first, second string) (float64, bool) {
	v, ok := k.firsts.Get(first)
	if !ok {
		return 0, false
	}
	value, ok := v.(*linkedhashmap.Map).Get(second)
	if !ok {
		return 0, false
	}
	return value.(float64), true
}

// Remove deletes a pair. The first-level entry disappears with its last
// pair.
func (k *Kerning) Remove(first, second string) {
	v, ok := k.firsts.Get(first)
	if !ok {
		return
	}
	seconds := v.(*linkedhashmap.Map)
	seconds.Remove(second)
	if seconds.Size() == 0 {
		k.firsts.Remove(first)
	}
}

// Firsts returns the first-side references in insertion order.
func (k *Kerning) Firsts() []string {
	raw := k.firsts.Keys()
	firsts := make([]string, len(raw))
	for i, f := range raw {
		firsts[i] = f.(string)
	}
	return firsts
}

// Seconds returns the second-side references for a first, in insertion
// order.
func (k *Kerning) Seconds(first string) []string {
	v, ok := k.firsts.Get(first)
	if !ok {
		return nil
	}
	raw := v.(*linkedhashmap.Map).Keys()
	seconds := make([]string, len(raw))
	for i, s := range raw {
		seconds[i] = s.(string)
	}
	return seconds
}

// Len counts the kerning pairs.
func (k *Kerning) Len() int {
	n := 0
	for _, v := range k.firsts.Values() {
		n += v.(*linkedhashmap.Map).Size()
	}
	return n
}
