package plist

import (
	"bytes"
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Kind discriminates the variants of a property-list Value.
type Kind int8

// The closed set of property-list value kinds.
const (
	DictKind Kind = iota
	ArrayKind
	StringKind
	IntegerKind
	RealKind
	BooleanKind
	DateKind
	DataKind
)

func (k Kind) String() string {
	switch k {
	case DictKind:
		return "dict"
	case ArrayKind:
		return "array"
	case StringKind:
		return "string"
	case IntegerKind:
		return "integer"
	case RealKind:
		return "real"
	case BooleanKind:
		return "boolean"
	case DateKind:
		return "date"
	case DataKind:
		return "data"
	}
	return "<unknown kind>"
}

// Value is one node of a property list. It is a closed variant; the
// concrete types are Dict, Array, String, Integer, Real, Boolean, Date
// and Data.
type Value interface {
	Kind() Kind
}

// String is a property-list string value.
type String string

// Integer is a property-list integer value.
type Integer int64

// Real is a property-list floating point value.
type Real float64

// Boolean is a property-list boolean value.
type Boolean bool

// Date is a property-list date value. The textual form it was parsed
// from is retained, so a date carrying fractional seconds or a zone
// offset re-encodes byte for byte.
type Date struct {
	Time time.Time
	raw  string
}

// NewDate wraps a time value for storage in a property list.
func NewDate(t time.Time) Date { return Date{Time: t} }

// Data is a property-list binary blob.
type Data []byte

// Array is an ordered sequence of values.
type Array []Value

// Kind returns StringKind.
func (String) Kind() Kind { return StringKind }

// Kind returns IntegerKind.
func (Integer) Kind() Kind { return IntegerKind }

// Kind returns RealKind.
func (Real) Kind() Kind { return RealKind }

// Kind returns BooleanKind.
func (Boolean) Kind() Kind { return BooleanKind }

// Kind returns DateKind.
func (Date) Kind() Kind { return DateKind }

// Kind returns DataKind.
func (Data) Kind() Kind { return DataKind }

// Kind returns ArrayKind.
func (Array) Kind() Kind { return ArrayKind }

// --- Ordered dictionaries --------------------------------------------------

// Dict is a string-keyed dictionary which preserves insertion order.
// The zero value is not usable; create instances with NewDict.
type Dict struct {
	m *linkedhashmap.Map
}

// NewDict creates an empty ordered dictionary.
func NewDict() *Dict {
	return &Dict{m: linkedhashmap.New()}
}

// Kind returns DictKind.
func (d *Dict) Kind() Kind { return DictKind }

// Set inserts or replaces the value for key. A replaced key keeps its
// original position.
func (d *Dict) Set(key string, v Value) {
	d.m.Put(key, v)
}

// Get returns the value stored for key.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.m.Get(key)
	if !ok {
		return nil, false
	}
	return v.(Value), true
}

// Delete removes key from the dictionary. Removing an absent key is a no-op.
func (d *Dict) Delete(key string) {
	d.m.Remove(key)
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	return d.m.Size()
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	raw := d.m.Keys()
	keys := make([]string, len(raw))
	for i, k := range raw {
		keys[i] = k.(string)
	}
	return keys
}

// Clone returns a deep copy of the dictionary.
func (d *Dict) Clone() *Dict {
	c := NewDict()
	for _, key := range d.Keys() {
		v, _ := d.Get(key)
		c.Set(key, CloneValue(v))
	}
	return c
}

// CloneValue returns a deep copy of a value. Scalars are copied by value,
// containers recursively.
func CloneValue(v Value) Value {
	switch x := v.(type) {
	case *Dict:
		return x.Clone()
	case Array:
		c := make(Array, len(x))
		for i, item := range x {
			c[i] = CloneValue(item)
		}
		return c
	case Data:
		c := make(Data, len(x))
		copy(c, x)
		return c
	default:
		return v
	}
}

// Equal compares two values for semantic equality. Dictionary key order is
// significant, as is array element order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Dict:
		y := b.(*Dict)
		if x.Len() != y.Len() {
			return false
		}
		xkeys, ykeys := x.Keys(), y.Keys()
		for i, key := range xkeys {
			if key != ykeys[i] {
				return false
			}
			xv, _ := x.Get(key)
			yv, _ := y.Get(key)
			if !Equal(xv, yv) {
				return false
			}
		}
		return true
	case Array:
		y := b.(Array)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Data:
		return bytes.Equal(x, b.(Data))
	case Date:
		return x.Time.Equal(b.(Date).Time)
	default:
		return a == b
	}
}
