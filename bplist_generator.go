package plist

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"unicode/utf16"
)

type bplistGenerator struct {
	writer  io.Writer
	buf     bytes.Buffer
	refSize int
}

// EncodeBinary returns the bplist00 image of v.
func EncodeBinary(v Value) ([]byte, error) {
	var out bytes.Buffer
	if err := newBplistGenerator(&out).generateDocument(v); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func newBplistGenerator(w io.Writer) *bplistGenerator {
	return &bplistGenerator{writer: w}
}

func (p *bplistGenerator) generateDocument(root Value) error {
	table, top, err := flatten(root)
	if err != nil {
		return err
	}
	n := uint64(len(table.entries))
	if n > math.MaxInt64 {
		return &IntegerOverflowError{What: "object count"}
	}

	p.refSize = uintWidth(n - 1)
	p.buf.Reset()
	p.buf.WriteString(bplistMagic)
	p.buf.WriteString(bplistVersion)

	offsets := make([]uint64, n)
	for i, e := range table.entries {
		offsets[i] = uint64(p.buf.Len())
		if err := p.writeObject(e); err != nil {
			return err
		}
	}

	offsetTableOffset := uint64(p.buf.Len())
	if offsetTableOffset > math.MaxInt64 {
		return &IntegerOverflowError{What: "offset table offset"}
	}
	offsetSize := uintWidth(offsetTableOffset)
	entry := make([]byte, offsetSize)
	for _, off := range offsets {
		putUint(entry, off, offsetSize)
		p.buf.Write(entry)
	}

	trailer := bplistTrailer{
		SortVersion:       0,
		OffsetIntSize:     uint8(offsetSize),
		ObjectRefSize:     uint8(p.refSize),
		NumObjects:        n,
		TopObject:         top,
		OffsetTableOffset: offsetTableOffset,
	}
	if err := binary.Write(&p.buf, binary.BigEndian, &trailer); err != nil {
		return err
	}
	_, err = p.writer.Write(p.buf.Bytes())
	return err
}

func (p *bplistGenerator) writeObject(e tableEntry) error {
	switch v := e.value.(type) {
	case Null:
		p.buf.WriteByte(bpTagNull)
	case Boolean:
		if v {
			p.buf.WriteByte(bpTagBoolTrue)
		} else {
			p.buf.WriteByte(bpTagBoolFalse)
		}
	case Integer:
		return p.writeIntTag(bpKindInteger, int64(v))
	case Real:
		width := 8
		if v.Narrow() {
			width = 4
		}
		b, err := encodeReal(float64(v), width)
		if err != nil {
			return err
		}
		p.buf.WriteByte(bpTagReal | uint8(log2Width(width)))
		p.buf.Write(b)
	case Date:
		p.buf.WriteByte(bpTagDate | 0x3)
		p.buf.Write(encodeDate(v.Time()))
	case Data:
		if err := p.writeCountedTag(bpKindData, uint64(len(v))); err != nil {
			return err
		}
		p.buf.Write(v)
	case ASCIIString:
		if err := p.writeCountedTag(bpKindASCII, uint64(len(v))); err != nil {
			return err
		}
		p.buf.WriteString(string(v))
	case UnicodeString:
		units := utf16.Encode([]rune(string(v)))
		if err := p.writeCountedTag(bpKindUTF16, uint64(len(units))); err != nil {
			return err
		}
		var b [2]byte
		for _, u := range units {
			binary.BigEndian.PutUint16(b[:], u)
			p.buf.Write(b[:])
		}
	case UID:
		width := uintWidth(uint64(v))
		b := make([]byte, width)
		putUint(b, uint64(v), width)
		p.buf.WriteByte(bpTagUID | uint8(width-1))
		p.buf.Write(b)
	case Array:
		return p.writeRefs(bpKindArray, uint64(len(e.refs)), e.refs)
	case Set:
		return p.writeRefs(bpKindSet, uint64(len(e.refs)), e.refs)
	case Dictionary:
		return p.writeRefs(bpKindDictionary, uint64(len(e.refs)/2), e.refs)
	default:
		return unsupportedType(v)
	}
	return nil
}

// writeIntTag writes a complete integer object.
func (p *bplistGenerator) writeIntTag(kind int, v int64) error {
	width := integerWidth(v)
	b, err := encodeInteger(v, width)
	if err != nil {
		return err
	}
	tag, err := packTag(kind, log2Width(width))
	if err != nil {
		return err
	}
	p.buf.WriteByte(tag)
	p.buf.Write(b)
	return nil
}

// writeCountedTag writes the tag of a sized object, escaping counts of
// 15 and above into a following integer object.
func (p *bplistGenerator) writeCountedTag(kind int, count uint64) error {
	if count < bpInfoEscape {
		tag, err := packTag(kind, int(count))
		if err != nil {
			return err
		}
		p.buf.WriteByte(tag)
		return nil
	}
	if count > math.MaxInt64 {
		return &IntegerOverflowError{What: "object length"}
	}
	tag, err := packTag(kind, bpInfoEscape)
	if err != nil {
		return err
	}
	p.buf.WriteByte(tag)
	return p.writeIntTag(bpKindInteger, int64(count))
}

func (p *bplistGenerator) writeRefs(kind int, count uint64, refs []uint64) error {
	if err := p.writeCountedTag(kind, count); err != nil {
		return err
	}
	b := make([]byte, p.refSize)
	for _, r := range refs {
		putUint(b, r, p.refSize)
		p.buf.Write(b)
	}
	return nil
}
