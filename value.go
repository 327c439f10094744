package plist

import (
	"bytes"
	"math"
	"time"
)

// Value is a node of a property list tree. The set of implementations is
// closed: Null, Boolean, Integer, Real, Date, Data, ASCIIString,
// UnicodeString, Array, Dictionary, Set and UID.
type Value interface {
	typeName() string
}

// Null is the binary-only null singleton.
type Null struct{}

// Boolean is a property list boolean.
type Boolean bool

// Integer is a signed 64-bit property list integer.
type Integer int64

// Real is a property list floating point number. It is written with
// 4 bytes when Narrow reports true and with 8 bytes otherwise.
type Real float64

// Date is an instant, stored relative to 2001-01-01T00:00:00Z.
type Date time.Time

// Data is an opaque byte string.
type Data []byte

// ASCIIString is a string made only of 7-bit characters.
type ASCIIString string

// UnicodeString is text stored as UTF-16 big-endian code units.
type UnicodeString string

// Array is an ordered sequence of values.
type Array []Value

// Set is a collection of values unique by structural equality.
type Set []Value

// UID is a keyed-archiver object reference. It is opaque to the codec.
type UID uint64

// KeyValue is one dictionary entry.
type KeyValue struct {
	Key   Value
	Value Value
}

// Dictionary is an insertion-ordered list of entries. Keys need not be
// strings.
type Dictionary []KeyValue

func (Null) typeName() string          { return "null" }
func (Boolean) typeName() string       { return "boolean" }
func (Integer) typeName() string       { return "integer" }
func (Real) typeName() string          { return "real" }
func (Date) typeName() string          { return "date" }
func (Data) typeName() string          { return "data" }
func (ASCIIString) typeName() string   { return "ascii string" }
func (UnicodeString) typeName() string { return "unicode string" }
func (Array) typeName() string         { return "array" }
func (Set) typeName() string           { return "set" }
func (UID) typeName() string           { return "uid" }
func (Dictionary) typeName() string    { return "dictionary" }

// Narrow reports whether r is exactly representable as a 32-bit float.
func (r Real) Narrow() bool { return floatFitsIn32(float64(r)) }

// Time returns d as a time.Time.
func (d Date) Time() time.Time { return time.Time(d) }

// Equal reports whether d and o are the same instant.
func (d Date) Equal(o Date) bool { return time.Time(d).Equal(time.Time(o)) }

// String returns s as an ASCIIString when it only holds 7-bit
// characters and as a UnicodeString otherwise.
func String(s string) Value {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return UnicodeString(s)
		}
	}
	return ASCIIString(s)
}

// Get returns the value stored under the string key k.
func (d Dictionary) Get(k string) (Value, bool) {
	for _, kv := range d {
		if s, ok := stringOf(kv.Key); ok && s == k {
			return kv.Value, true
		}
	}
	return nil, false
}

// stringOf returns the text of either string variant.
func stringOf(v Value) (string, bool) {
	switch v := v.(type) {
	case ASCIIString:
		return string(v), true
	case UnicodeString:
		return string(v), true
	}
	return "", false
}

// Equal reports whether a and b are structurally equal: same variant and
// same content, recursively. Reals compare by bit pattern, sets compare
// without regard to order.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case Boolean:
		b, ok := b.(Boolean)
		return ok && a == b
	case Integer:
		b, ok := b.(Integer)
		return ok && a == b
	case Real:
		b, ok := b.(Real)
		return ok && math.Float64bits(float64(a)) == math.Float64bits(float64(b))
	case Date:
		b, ok := b.(Date)
		return ok && a.Equal(b)
	case Data:
		b, ok := b.(Data)
		return ok && bytes.Equal(a, b)
	case ASCIIString:
		b, ok := b.(ASCIIString)
		return ok && a == b
	case UnicodeString:
		b, ok := b.(UnicodeString)
		return ok && a == b
	case UID:
		b, ok := b.(UID)
		return ok && a == b
	case Array:
		b, ok := b.(Array)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case Set:
		b, ok := b.(Set)
		return ok && containsAll(a, b) && containsAll(b, a)
	case Dictionary:
		b, ok := b.(Dictionary)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i].Key, b[i].Key) || !Equal(a[i].Value, b[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func containsAll(haystack, needles []Value) bool {
outer:
	for _, n := range needles {
		for _, h := range haystack {
			if Equal(h, n) {
				continue outer
			}
		}
		return false
	}
	return true
}
