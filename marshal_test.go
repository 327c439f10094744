package plist

import (
	"bytes"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/require"
)

type basicStruct struct {
	Name string
}

type taggedStruct struct {
	CFBundleInfoDictionaryVersion string `plist:"CFBundleInfoDictionaryVersion"`
	BandSize                      uint64 `plist:"band-size"`
	Note                          string `plist:"note,omitempty"`
	Ignored                       string `plist:"-"`
	hidden                        string
}

type EmbedA struct {
	A string
	B string
}

type EmbedB struct {
	B string
	C int
}

type embedding struct {
	EmbedA
	*EmbedB
	Own bool
}

type innerPlain struct {
	X string
	y string
}

type innerPtr struct {
	P int
}

type promotedPrivate struct {
	innerPlain
	*innerPtr
	Z int
}

type everything struct {
	Bool    bool
	Int     int
	Int8    int8
	Uint16  uint16
	Float   float32
	Text    string
	Bytes   []byte
	Array   [2]int
	Fixed   [4]byte
	List    []string
	Map     map[string]int
	When    time.Time
	ID      uuid.UUID
	Ptr     *basicStruct
	Any     interface{}
	Raw     Value
	Missing *basicStruct
}

func TestMarshalBasicStructure(t *testing.T) {
	out, err := Marshal(basicStruct{Name: "Dustin"}, BinaryFormat)
	require.NoError(t, err)

	v, err := DecodeBinary(out)
	require.NoError(t, err)
	require.True(t, Equal(decodeVectors[1].Value, v))

	var back basicStruct
	format, err := Unmarshal(decodeVectors[1].Bin, &back)
	require.NoError(t, err)
	require.Equal(t, BinaryFormat, format)
	require.Equal(t, "Dustin", back.Name)
}

func TestMarshalTags(t *testing.T) {
	in := taggedStruct{
		CFBundleInfoDictionaryVersion: "6.0",
		BandSize:                      8388608,
		Ignored:                       "gone",
		hidden:                        "gone",
	}
	pval, err := marshalValue(in)
	require.NoError(t, err)
	want := Dictionary{
		{Key: ASCIIString("CFBundleInfoDictionaryVersion"), Value: ASCIIString("6.0")},
		{Key: ASCIIString("band-size"), Value: Integer(8388608)},
	}
	require.True(t, Equal(want, pval), "got %#v", pval)
}

func TestMarshalEmbedded(t *testing.T) {
	in := embedding{EmbedA: EmbedA{A: "a", B: "shadowed"}, Own: true}
	pval, err := marshalValue(in)
	require.NoError(t, err)
	want := Dictionary{
		{Key: ASCIIString("A"), Value: ASCIIString("a")},
		{Key: ASCIIString("B"), Value: ASCIIString("shadowed")},
		{Key: ASCIIString("Own"), Value: Boolean(true)},
	}
	require.True(t, Equal(want, pval), "got %#v", pval)

	var back embedding
	doc, err := EncodeBinary(Dictionary{
		{Key: ASCIIString("A"), Value: ASCIIString("a")},
		{Key: ASCIIString("C"), Value: Integer(3)},
	})
	require.NoError(t, err)
	_, err = Unmarshal(doc, &back)
	require.NoError(t, err)
	require.Equal(t, "a", back.A)
	require.NotNil(t, back.EmbedB)
	require.Equal(t, 3, back.C)
}

func TestMarshalPrivateEmbedded(t *testing.T) {
	pval, err := marshalValue(promotedPrivate{innerPlain: innerPlain{X: "x", y: "hidden"}, Z: 2})
	require.NoError(t, err)
	want := Dictionary{
		{Key: ASCIIString("X"), Value: ASCIIString("x")},
		{Key: ASCIIString("Z"), Value: Integer(2)},
	}
	require.True(t, Equal(want, pval), "got %#v", pval)

	pval, err = marshalValue(promotedPrivate{innerPtr: &innerPtr{P: 7}})
	require.NoError(t, err)
	p, ok := pval.(Dictionary).Get("P")
	require.True(t, ok)
	require.Equal(t, Integer(7), p)

	doc, err := EncodeBinary(Dictionary{
		{Key: ASCIIString("X"), Value: ASCIIString("back")},
		{Key: ASCIIString("P"), Value: Integer(9)},
		{Key: ASCIIString("Z"), Value: Integer(3)},
	})
	require.NoError(t, err)
	var back promotedPrivate
	_, err = Unmarshal(doc, &back)
	require.NoError(t, err)
	require.Equal(t, "back", back.X)
	require.Equal(t, 3, back.Z)
	require.Nil(t, back.innerPtr)

	back.innerPtr = &innerPtr{}
	_, err = Unmarshal(doc, &back)
	require.NoError(t, err)
	require.Equal(t, 9, back.P)
}

func TestMarshalRoundTrip(t *testing.T) {
	in := everything{
		Bool:   true,
		Int:    -42,
		Int8:   7,
		Uint16: 65535,
		Float:  1.5,
		Text:   "héllo",
		Bytes:  []byte{1, 2, 3},
		Array:  [2]int{4, 5},
		Fixed:  [4]byte{9, 8, 7, 6},
		List:   []string{"a", "b"},
		Map:    map[string]int{"x": 1, "y": 2},
		When:   time.Date(2013, 11, 27, 0, 34, 0, 0, time.UTC),
		ID:     uuid.Must(uuid.FromString("6ba7b810-9dad-11d1-80b4-00c04fd430c8")),
		Ptr:    &basicStruct{Name: "p"},
		Any:    "any",
		Raw:    Set{Integer(1)},
	}
	out, err := Marshal(in, BinaryFormat)
	require.NoError(t, err)

	var back everything
	_, err = Unmarshal(out, &back)
	require.NoError(t, err)
	if diff := cmp.Diff(in, back); diff != "" {
		t.Errorf("round trip differs (-want +got):\n%s", diff)
	}
}

func TestMarshalUint64Wraps(t *testing.T) {
	out, err := Marshal([]uint64{math.MaxUint64, 1}, BinaryFormat)
	require.NoError(t, err)

	v, err := DecodeBinary(out)
	require.NoError(t, err)
	require.True(t, Equal(Array{Integer(-1), Integer(1)}, v))

	var back []uint64
	_, err = Unmarshal(out, &back)
	require.NoError(t, err)
	require.Equal(t, []uint64{math.MaxUint64, 1}, back)
}

func TestMarshalNilHandling(t *testing.T) {
	_, err := Marshal(nil, BinaryFormat)
	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)

	pval, err := marshalValue(map[string]interface{}{"a": nil, "b": 1})
	require.NoError(t, err)
	require.True(t, Equal(Dictionary{{Key: ASCIIString("b"), Value: Integer(1)}}, pval))

	pval, err = marshalValue([]interface{}{nil, 1})
	require.NoError(t, err)
	require.True(t, Equal(Array{Null{}, Integer(1)}, pval))
}

func TestMarshalErrors(t *testing.T) {
	var unsupported *UnsupportedTypeError
	_, err := Marshal(map[int]string{1: "a"}, BinaryFormat)
	require.ErrorAs(t, err, &unsupported)

	_, err = Marshal(make(chan int), BinaryFormat)
	require.ErrorAs(t, err, &unsupported)

	type node struct {
		Next *node
	}
	n := &node{}
	n.Next = n
	_, err = Marshal(n, BinaryFormat)
	var cyclic *CyclicStructureError
	require.ErrorAs(t, err, &cyclic)

	_, err = Marshal("x", InvalidFormat)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestMarshalSortsMapKeys(t *testing.T) {
	pval, err := marshalValue(map[string]int{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	dict := pval.(Dictionary)
	require.Len(t, dict, 3)
	for i, k := range []string{"a", "b", "c"} {
		require.Equal(t, ASCIIString(k), dict[i].Key)
	}
}

func TestUnmarshalIntoInterface(t *testing.T) {
	var v interface{}
	_, err := Unmarshal(decodeVectors[1].Bin, &v)
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"Name": "Dustin"}, v)
}

func TestUnmarshalIntoValue(t *testing.T) {
	var v Value
	_, err := Unmarshal(decodeVectors[12].Bin, &v)
	require.NoError(t, err)
	require.True(t, Equal(decodeVectors[12].Value, v))
}

func TestUnmarshalErrors(t *testing.T) {
	doc, err := EncodeBinary(Integer(300))
	require.NoError(t, err)

	var small uint8
	_, err = Unmarshal(doc, &small)
	var typeErr *UnmarshalTypeError
	require.ErrorAs(t, err, &typeErr)
	require.Equal(t, reflect.TypeOf(small), typeErr.Type)

	var s string
	_, err = Unmarshal(doc, &s)
	require.ErrorAs(t, err, &typeErr)

	_, err = Unmarshal(doc, small)
	require.Error(t, err)

	_, err = Unmarshal([]byte("junk"), &s)
	require.ErrorIs(t, err, ErrTruncatedFile)
}

func TestUnmarshalXMLUnsupported(t *testing.T) {
	doc, err := Marshal("Hello", XMLFormat)
	require.NoError(t, err)

	var s string
	format, err := Unmarshal(doc, &s)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	require.Equal(t, XMLFormat, format)
}

func TestEncoderDecoder(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewBinaryEncoder(buf).Encode([]string{"a", "b"}))

	dec := NewDecoder(bytes.NewReader(buf.Bytes()))
	var back []string
	require.NoError(t, dec.Decode(&back))
	require.Equal(t, BinaryFormat, dec.Format)
	require.Equal(t, []string{"a", "b"}, back)
}

func TestConvertToJSON(t *testing.T) {
	out, err := ConvertToJSON(decodeVectors[1].Bin)
	require.NoError(t, err)
	require.JSONEq(t, `{"Name":"Dustin"}`, string(out))
}
