package plist

import (
	"errors"
	"fmt"
	"reflect"
)

// Causes carried by a *FormatError.
var (
	ErrInvalidMagic       = errors.New("invalid magic")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrTruncatedFile      = errors.New("truncated file")
	ErrCorruptOffsetTable = errors.New("corrupt offset table")
	ErrMalformedObject    = errors.New("malformed object")
)

// ErrUnsupportedFormat is returned when decoding anything but a binary
// property list.
var ErrUnsupportedFormat = errors.New("plist: unsupported format")

// FormatError reports a binary property list that cannot be decoded.
// Offset is the byte position the problem was found at, or -1.
type FormatError struct {
	Offset int64
	Err    error
}

func (e *FormatError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("bplist: %v", e.Err)
	}
	return fmt.Sprintf("bplist: %v at offset %d", e.Err, e.Offset)
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatError(offset int64, cause error, format string, args ...interface{}) error {
	if format == "" {
		return &FormatError{Offset: offset, Err: cause}
	}
	return &FormatError{Offset: offset, Err: fmt.Errorf("%w: "+format, append([]interface{}{cause}, args...)...)}
}

// RangeError reports a value that cannot be represented by a primitive
// encoding.
type RangeError struct {
	What  string
	Value int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("plist: %s %d out of range", e.What, e.Value)
}

// UnsupportedTypeError reports a value that has no property list
// representation.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return "plist: unsupported type: " + e.Type
}

func unsupportedType(v interface{}) error {
	if v == nil {
		return &UnsupportedTypeError{Type: "nil"}
	}
	return &UnsupportedTypeError{Type: reflect.TypeOf(v).String()}
}

// CyclicStructureError reports a value that contains itself.
type CyclicStructureError struct {
	Type string
}

func (e *CyclicStructureError) Error() string {
	return "plist: cyclic structure through " + e.Type
}

// IntegerOverflowError reports an object count or offset that does not
// fit the trailer's 64-bit fields.
type IntegerOverflowError struct {
	What string
}

func (e *IntegerOverflowError) Error() string {
	return "plist: " + e.What + " overflows 64 bits"
}

// UnmarshalTypeError reports a property list value that cannot be stored
// in a Go value of the destination type.
type UnmarshalTypeError struct {
	Value string
	Type  reflect.Type
}

func (e *UnmarshalTypeError) Error() string {
	return "plist: cannot unmarshal " + e.Value + " into Go value of type " + e.Type.String()
}
