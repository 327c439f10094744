package plist

import (
	"bytes"
	"io"
)

// Property list formats.
const (
	InvalidFormat int = iota
	XMLFormat
	BinaryFormat
)

// FormatNames maps format constants to their display names.
var FormatNames = map[int]string{
	InvalidFormat: "unknown/invalid",
	XMLFormat:     "XML",
	BinaryFormat:  "Binary",
}

// An Encoder writes a property list to an output stream.
type Encoder struct {
	writer io.Writer
	format int
	indent string
}

// Encode writes the property list encoding of v to the stream.
func (p *Encoder) Encode(v interface{}) error {
	pval, err := marshalValue(v)
	if err != nil {
		return err
	}
	switch p.format {
	case XMLFormat:
		g := newXMLPlistGenerator(p.writer)
		g.Indent(p.indent)
		return g.generateDocument(pval)
	case BinaryFormat:
		return newBplistGenerator(p.writer).generateDocument(pval)
	}
	return ErrUnsupportedFormat
}

// Indent turns on pretty-printing for the XML format. Each element
// begins on a new line and is preceded by one or more copies of indent.
func (p *Encoder) Indent(indent string) {
	p.indent = indent
}

// NewEncoder returns an Encoder that writes an XML property list to w.
func NewEncoder(w io.Writer) *Encoder {
	return NewEncoderForFormat(w, XMLFormat)
}

// NewEncoderForFormat returns an Encoder that writes a property list to
// w in the specified format.
func NewEncoderForFormat(w io.Writer, format int) *Encoder {
	return &Encoder{writer: w, format: format}
}

// NewBinaryEncoder returns an Encoder that writes a binary property list
// to w.
func NewBinaryEncoder(w io.Writer) *Encoder {
	return NewEncoderForFormat(w, BinaryFormat)
}

// Marshal returns the property list encoding of v in the specified
// format.
//
// Go values map to property list values as follows: booleans, integers,
// floats, strings, []byte and time.Time map to their scalar counterparts;
// slices and arrays become arrays; maps with string keys and structs
// become dictionaries. Values implementing Value are written as is, and
// encoding.TextMarshaler implementations are written as strings.
//
// Struct fields are named by the "plist" tag when present. The
// "omitempty" option drops empty fields, and a tag of "-" drops the
// field entirely. Nil pointers and interfaces inside maps and structs are
// omitted.
func Marshal(v interface{}, format int) ([]byte, error) {
	return MarshalIndent(v, format, "")
}

// MarshalIndent works like Marshal, but each XML element is indented.
func MarshalIndent(v interface{}, format int, indent string) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := NewEncoderForFormat(buf, format)
	enc.Indent(indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
