package plist

import (
	"encoding/binary"
	"math"
	"time"
)

// Dates are stored as seconds relative to 2001-01-01T00:00:00Z.
var bplistEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

const bplistEpochUnix = 978307200

// integerWidth returns the number of payload bytes an integer object needs.
// This is not the minimal two's-complement width: readers treat 1, 2 and
// 4 byte integers as unsigned, so negative values always take the full
// 8 bytes and decodeInteger reads the short widths as unsigned.
func integerWidth(v int64) int {
	switch {
	case v < 0:
		return 8
	case v <= math.MaxInt8:
		return 1
	case v <= math.MaxInt16:
		return 2
	case v <= math.MaxInt32:
		return 4
	}
	return 8
}

// uintWidth returns the smallest of 1, 2, 4 or 8 bytes that holds n.
func uintWidth(n uint64) int {
	switch {
	case n <= math.MaxUint8:
		return 1
	case n <= math.MaxUint16:
		return 2
	case n <= math.MaxUint32:
		return 4
	}
	return 8
}

// log2Width maps a power-of-two byte width to the info nibble used by
// integer and real tags.
func log2Width(width int) int {
	switch width {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	case 16:
		return 4
	}
	return -1
}

func encodeInteger(v int64, width int) ([]byte, error) {
	b := make([]byte, width)
	switch width {
	case 1, 2, 4:
		if v < 0 || uint64(v) >= 1<<(8*uint(width)) {
			return nil, &RangeError{What: "integer", Value: v}
		}
		putUint(b, uint64(v), width)
	case 8:
		binary.BigEndian.PutUint64(b, uint64(v))
	default:
		return nil, &RangeError{What: "integer width", Value: int64(width)}
	}
	return b, nil
}

func decodeInteger(b []byte, width int) (int64, error) {
	if len(b) < width {
		return 0, ErrMalformedObject
	}
	switch width {
	case 1, 2, 4:
		return int64(readUint(b, width)), nil
	case 8:
		return int64(binary.BigEndian.Uint64(b)), nil
	case 16:
		// The high half only carries the sign or the unsigned extension.
		return int64(binary.BigEndian.Uint64(b[8:])), nil
	}
	return 0, &RangeError{What: "integer width", Value: int64(width)}
}

// putUint writes v big-endian into the first width bytes of b.
func putUint(b []byte, v uint64, width int) {
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

// readUint reads a big-endian unsigned integer of 1 to 8 bytes.
func readUint(b []byte, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// floatFitsIn32 reports whether v survives a round trip through float32
// bit for bit.
func floatFitsIn32(v float64) bool {
	return math.Float64bits(float64(float32(v))) == math.Float64bits(v)
}

func encodeReal(v float64, width int) ([]byte, error) {
	b := make([]byte, width)
	switch width {
	case 4:
		binary.BigEndian.PutUint32(b, math.Float32bits(float32(v)))
	case 8:
		binary.BigEndian.PutUint64(b, math.Float64bits(v))
	default:
		return nil, &RangeError{What: "real width", Value: int64(width)}
	}
	return b, nil
}

func decodeReal(b []byte, width int) (float64, error) {
	if len(b) < width {
		return 0, ErrMalformedObject
	}
	switch width {
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	}
	return 0, &RangeError{What: "real width", Value: int64(width)}
}

func dateDelta(t time.Time) float64 {
	return float64(t.Unix()-bplistEpochUnix) + float64(t.Nanosecond())/1e9
}

func encodeDate(t time.Time) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(dateDelta(t)))
	return b
}

func decodeDate(b []byte) (time.Time, error) {
	if len(b) < 8 {
		return time.Time{}, ErrMalformedObject
	}
	return dateFromDelta(math.Float64frombits(binary.BigEndian.Uint64(b)))
}

// dateFromDelta converts seconds since 2001-01-01T00:00:00Z to a UTC time.
func dateFromDelta(delta float64) (time.Time, error) {
	if math.IsNaN(delta) || math.Abs(delta) > 1<<62 {
		return time.Time{}, &RangeError{What: "date delta", Value: int64(delta)}
	}
	sec, frac := math.Modf(delta)
	if frac < 0 {
		sec--
		frac++
	}
	nsec := math.Round(frac * 1e9)
	if nsec >= 1e9 {
		sec++
		nsec -= 1e9
	}
	return time.Unix(bplistEpochUnix+int64(sec), int64(nsec)).UTC(), nil
}
