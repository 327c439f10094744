package plist

const (
	bplistMagic   = "bplist"
	bplistVersion = "00"

	bplistHeaderSize  = 8
	bplistTrailerSize = 32
)

type bplistTrailer struct {
	Unused            [5]uint8
	SortVersion       uint8
	OffsetIntSize     uint8
	ObjectRefSize     uint8
	NumObjects        uint64
	TopObject         uint64
	OffsetTableOffset uint64
}

// Kinds occupy the high nibble of a type tag.
const (
	bpKindSingleton  = 0x0
	bpKindInteger    = 0x1
	bpKindReal       = 0x2
	bpKindDate       = 0x3
	bpKindData       = 0x4
	bpKindASCII      = 0x5
	bpKindUTF16      = 0x6
	bpKindUID        = 0x8
	bpKindArray      = 0xA
	bpKindSet        = 0xC
	bpKindDictionary = 0xD

	// bpInfoEscape means the element count follows as an integer object.
	bpInfoEscape = 0xF
)

const (
	bpTagNull        uint8 = 0x00
	bpTagBoolFalse   uint8 = 0x08
	bpTagBoolTrue    uint8 = 0x09
	bpTagInteger     uint8 = 0x10
	bpTagReal        uint8 = 0x20
	bpTagDate        uint8 = 0x30
	bpTagData        uint8 = 0x40
	bpTagASCIIString uint8 = 0x50
	bpTagUTF16String uint8 = 0x60
	bpTagUID         uint8 = 0x80
	bpTagArray       uint8 = 0xA0
	bpTagSet         uint8 = 0xC0
	bpTagDictionary  uint8 = 0xD0
)

// packTag combines a kind and its info nibble into a type tag.
func packTag(kind, info int) (byte, error) {
	if kind < 0 || kind > 0xF {
		return 0, &RangeError{What: "tag kind", Value: int64(kind)}
	}
	if info < 0 || info > 0xF {
		return 0, &RangeError{What: "tag info", Value: int64(info)}
	}
	return byte(kind<<4 | info), nil
}

func unpackTag(b byte) (kind, info int) {
	return int(b >> 4), int(b & 0x0F)
}
