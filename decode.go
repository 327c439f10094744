package plist

import (
	"bytes"
	"errors"
	"io"
	"reflect"
)

// A Decoder reads a binary property list from an input stream.
type Decoder struct {
	// Format is set to the format of the last decoded document.
	Format int

	reader io.ReadSeeker
}

// Decode reads the whole stream and stores the decoded property list in
// the value pointed to by v. Decoding into a *Value keeps the raw tree.
func (p *Decoder) Decode(v interface{}) error {
	if val := reflect.ValueOf(v); val.Kind() != reflect.Ptr || val.IsNil() {
		return errNonPointer
	}

	if _, err := p.reader.Seek(0, io.SeekStart); err != nil {
		return err
	}
	buf, err := io.ReadAll(p.reader)
	if err != nil {
		return err
	}

	trimmed := bytes.TrimLeft(buf, " \t\r\n\xef\xbb\xbf")
	if bytes.HasPrefix(trimmed, []byte("<")) {
		p.Format = XMLFormat
		return ErrUnsupportedFormat
	}

	pval, err := DecodeBinary(buf)
	if err != nil {
		return err
	}
	p.Format = BinaryFormat
	return UnmarshalValue(pval, v)
}

var errNonPointer = errors.New("plist: decoding requires a non-nil pointer")

// UnmarshalValue stores an already decoded Value tree in the value
// pointed to by v, following the rules of Unmarshal.
func UnmarshalValue(pval Value, v interface{}) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return errNonPointer
	}
	return unmarshalValue(pval, val)
}

// NewDecoder returns a Decoder that reads a property list from r.
func NewDecoder(r io.ReadSeeker) *Decoder {
	return &Decoder{Format: InvalidFormat, reader: r}
}

// Unmarshal parses a property list document and stores the result in
// the value pointed to by v. It returns the format of the document.
//
// Integers may be stored in any Go integer or float type that holds
// them; negative integers stored in 64-bit unsigned destinations keep
// their bit pattern. Dictionaries fill structs by field name (see
// Marshal) or maps with string keys. Strings are handed to
// encoding.TextUnmarshaler implementations. Storing into an empty
// interface produces the types returned by Interface.
func Unmarshal(data []byte, v interface{}) (format int, err error) {
	dec := NewDecoder(bytes.NewReader(data))
	err = dec.Decode(v)
	format = dec.Format
	return
}
