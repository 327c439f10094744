package plist

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// maxDepth bounds the nesting of collections so deep chains fail
// instead of exhausting the stack.
const maxDepth = 10000

type bplistParser struct {
	buffer  []byte
	trailer bplistTrailer
	// limit is the end of the object area: nothing is read past the trailer.
	limit      uint64
	offsets    []uint64
	objects    map[uint64]Value
	inProgress map[uint64]struct{}
	depth      int
}

// DecodeBinary parses a complete bplist00 image.
func DecodeBinary(buffer []byte) (Value, error) {
	p := &bplistParser{buffer: buffer}
	return p.parseDocument()
}

func (p *bplistParser) parseDocument() (Value, error) {
	if len(p.buffer) < bplistHeaderSize {
		return nil, formatError(int64(len(p.buffer)), ErrTruncatedFile, "")
	}
	if string(p.buffer[:6]) != bplistMagic {
		return nil, formatError(0, ErrInvalidMagic, "%q", p.buffer[:6])
	}
	if version := string(p.buffer[6:8]); version != bplistVersion {
		return nil, formatError(6, ErrUnsupportedVersion, "%q", version)
	}
	if len(p.buffer) < bplistHeaderSize+bplistTrailerSize {
		return nil, formatError(int64(len(p.buffer)), ErrTruncatedFile, "")
	}

	trailerStart := len(p.buffer) - bplistTrailerSize
	err := binary.Read(bytes.NewReader(p.buffer[trailerStart:]), binary.BigEndian, &p.trailer)
	if err != nil {
		return nil, formatError(int64(trailerStart), ErrTruncatedFile, "%v", err)
	}
	p.limit = uint64(trailerStart)

	if err := p.parseOffsetTable(); err != nil {
		return nil, err
	}
	if p.trailer.TopObject >= p.trailer.NumObjects {
		return nil, formatError(int64(trailerStart), ErrMalformedObject, "root index %d of %d objects", p.trailer.TopObject, p.trailer.NumObjects)
	}

	p.objects = make(map[uint64]Value)
	p.inProgress = make(map[uint64]struct{})
	return p.objectAtIndex(p.trailer.TopObject)
}

func (p *bplistParser) parseOffsetTable() error {
	t := &p.trailer
	where := int64(p.limit)
	if t.OffsetIntSize < 1 || t.OffsetIntSize > 8 {
		return formatError(where, ErrCorruptOffsetTable, "offset size %d", t.OffsetIntSize)
	}
	if t.ObjectRefSize < 1 || t.ObjectRefSize > 8 {
		return formatError(where, ErrCorruptOffsetTable, "object reference size %d", t.ObjectRefSize)
	}
	if t.NumObjects == 0 {
		return formatError(where, ErrCorruptOffsetTable, "no objects")
	}
	if t.OffsetTableOffset < bplistHeaderSize || t.OffsetTableOffset >= p.limit {
		return formatError(where, ErrCorruptOffsetTable, "offset table at %d", t.OffsetTableOffset)
	}
	size := uint64(t.OffsetIntSize)
	if t.NumObjects > (p.limit-t.OffsetTableOffset)/size {
		return formatError(int64(t.OffsetTableOffset), ErrCorruptOffsetTable, "%d entries do not fit", t.NumObjects)
	}

	p.offsets = make([]uint64, t.NumObjects)
	at := t.OffsetTableOffset
	for i := range p.offsets {
		off := readUint(p.buffer[at:], int(size))
		if off < bplistHeaderSize || off >= p.limit {
			return formatError(int64(at), ErrCorruptOffsetTable, "object %d at offset %d", i, off)
		}
		p.offsets[i] = off
		at += size
	}
	return nil
}

// objectAtIndex resolves an object once; later references share the
// resolved value.
func (p *bplistParser) objectAtIndex(index uint64) (Value, error) {
	if index >= p.trailer.NumObjects {
		return nil, formatError(-1, ErrMalformedObject, "reference to object %d of %d", index, p.trailer.NumObjects)
	}
	if v, ok := p.objects[index]; ok {
		return v, nil
	}
	if _, ok := p.inProgress[index]; ok {
		return nil, formatError(int64(p.offsets[index]), ErrMalformedObject, "object %d references itself", index)
	}
	if p.depth >= maxDepth {
		return nil, formatError(int64(p.offsets[index]), ErrMalformedObject, "nesting deeper than %d", maxDepth)
	}
	p.depth++
	p.inProgress[index] = struct{}{}
	v, err := p.parseObjectAtOffset(p.offsets[index])
	delete(p.inProgress, index)
	p.depth--
	if err != nil {
		return nil, err
	}
	p.objects[index] = v
	return v, nil
}

// read returns n bytes at off, failing when they run into the trailer.
func (p *bplistParser) read(off, n uint64) ([]byte, error) {
	if off > p.limit || n > p.limit-off {
		return nil, formatError(int64(off), ErrMalformedObject, "%d bytes run past the object area", n)
	}
	return p.buffer[off : off+n], nil
}

func (p *bplistParser) parseObjectAtOffset(off uint64) (Value, error) {
	tag := p.buffer[off]
	kind, info := unpackTag(tag)
	switch kind {
	case bpKindSingleton:
		switch tag {
		case bpTagNull:
			return Null{}, nil
		case bpTagBoolFalse:
			return Boolean(false), nil
		case bpTagBoolTrue:
			return Boolean(true), nil
		}
	case bpKindInteger:
		v, _, err := p.parseIntegerAtOffset(off)
		if err != nil {
			return nil, err
		}
		return Integer(v), nil
	case bpKindReal:
		width := uint64(1) << uint(info)
		if width != 4 && width != 8 {
			break
		}
		b, err := p.read(off+1, width)
		if err != nil {
			return nil, err
		}
		f, err := decodeReal(b, int(width))
		if err != nil {
			return nil, formatError(int64(off), ErrMalformedObject, "%v", err)
		}
		return Real(f), nil
	case bpKindDate:
		if info != 3 {
			break
		}
		b, err := p.read(off+1, 8)
		if err != nil {
			return nil, err
		}
		t, err := decodeDate(b)
		if err != nil {
			return nil, formatError(int64(off), ErrMalformedObject, "%v", err)
		}
		return Date(t), nil
	case bpKindData:
		b, err := p.parseSized(off, info, 1)
		if err != nil {
			return nil, err
		}
		return Data(append([]byte(nil), b...)), nil
	case bpKindASCII:
		b, err := p.parseSized(off, info, 1)
		if err != nil {
			return nil, err
		}
		return ASCIIString(b), nil
	case bpKindUTF16:
		b, err := p.parseSized(off, info, 2)
		if err != nil {
			return nil, err
		}
		units := make([]uint16, len(b)/2)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(b[2*i:])
		}
		return UnicodeString(string(utf16.Decode(units))), nil
	case bpKindUID:
		width := uint64(info) + 1
		if width > 8 {
			break
		}
		b, err := p.read(off+1, width)
		if err != nil {
			return nil, err
		}
		return UID(readUint(b, int(width))), nil
	case bpKindArray, bpKindSet:
		refs, err := p.parseRefs(off, info, 1)
		if err != nil {
			return nil, err
		}
		values, err := p.resolveAll(refs)
		if err != nil {
			return nil, err
		}
		if kind == bpKindSet {
			return Set(values), nil
		}
		return Array(values), nil
	case bpKindDictionary:
		refs, err := p.parseRefs(off, info, 2)
		if err != nil {
			return nil, err
		}
		values, err := p.resolveAll(refs)
		if err != nil {
			return nil, err
		}
		n := len(values) / 2
		dict := make(Dictionary, n)
		for i := range dict {
			dict[i] = KeyValue{Key: values[i], Value: values[n+i]}
		}
		return dict, nil
	}
	return nil, formatError(int64(off), ErrMalformedObject, "unexpected tag 0x%02x", tag)
}

// parseIntegerAtOffset reads an integer object and returns its value and
// the offset just past it.
func (p *bplistParser) parseIntegerAtOffset(off uint64) (int64, uint64, error) {
	tagBytes, err := p.read(off, 1)
	if err != nil {
		return 0, 0, err
	}
	kind, info := unpackTag(tagBytes[0])
	if kind != bpKindInteger || info > 4 {
		return 0, 0, formatError(int64(off), ErrMalformedObject, "expected integer, found tag 0x%02x", tagBytes[0])
	}
	width := uint64(1) << uint(info)
	b, err := p.read(off+1, width)
	if err != nil {
		return 0, 0, err
	}
	v, err := decodeInteger(b, int(width))
	if err != nil {
		return 0, 0, formatError(int64(off), ErrMalformedObject, "%v", err)
	}
	return v, off + 1 + width, nil
}

// parseCount returns the element count of a sized object and the offset
// of its payload.
func (p *bplistParser) parseCount(off uint64, info int) (uint64, uint64, error) {
	if info != bpInfoEscape {
		return uint64(info), off + 1, nil
	}
	n, next, err := p.parseIntegerAtOffset(off + 1)
	if err != nil {
		return 0, 0, err
	}
	if n < 0 {
		return 0, 0, formatError(int64(off), ErrMalformedObject, "negative length %d", n)
	}
	return uint64(n), next, nil
}

// parseSized returns the payload of a data or string object whose
// elements are unit bytes wide.
func (p *bplistParser) parseSized(off uint64, info int, unit uint64) ([]byte, error) {
	n, start, err := p.parseCount(off, info)
	if err != nil {
		return nil, err
	}
	if n > (p.limit-start)/unit {
		return nil, formatError(int64(off), ErrMalformedObject, "length %d runs past the object area", n)
	}
	return p.read(start, n*unit)
}

// parseRefs reads the object references of a collection; perEntry is 2
// for dictionaries, whose keys are followed by their values.
func (p *bplistParser) parseRefs(off uint64, info int, perEntry uint64) ([]uint64, error) {
	n, start, err := p.parseCount(off, info)
	if err != nil {
		return nil, err
	}
	size := uint64(p.trailer.ObjectRefSize)
	if n > (p.limit-start)/size/perEntry {
		return nil, formatError(int64(off), ErrMalformedObject, "%d entries run past the object area", n)
	}
	b, err := p.read(start, n*perEntry*size)
	if err != nil {
		return nil, err
	}
	refs := make([]uint64, n*perEntry)
	for i := range refs {
		refs[i] = readUint(b[uint64(i)*size:], int(size))
	}
	return refs, nil
}

func (p *bplistParser) resolveAll(refs []uint64) ([]Value, error) {
	values := make([]Value, len(refs))
	for i, r := range refs {
		v, err := p.objectAtIndex(r)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
