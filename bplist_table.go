package plist

import (
	"encoding/binary"
	"reflect"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// tableEntry is one unique object of an encode call. refs holds the
// resolved child indices: elements for arrays and sets, all keys followed
// by all values for dictionaries.
type tableEntry struct {
	value Value
	key   string
	refs  []uint64
}

// objectTable is the flat, deduplicated object list written by the
// generator. Two structurally equal values always share one index.
type objectTable struct {
	entries []tableEntry
	index   map[uint64][]uint64
	active  map[compositeID]struct{}
}

// compositeID identifies a composite being visited by its backing array.
type compositeID struct {
	ptr  uintptr
	n    int
	kind byte
}

// flatten walks root depth first, children before parents, and returns
// the object table together with the root's index.
func flatten(root Value) (*objectTable, uint64, error) {
	t := &objectTable{
		index:  make(map[uint64][]uint64),
		active: make(map[compositeID]struct{}),
	}
	ref, err := t.visit(root)
	if err != nil {
		return nil, 0, err
	}
	return t, ref, nil
}

func (t *objectTable) visit(v Value) (uint64, error) {
	var (
		key  []byte
		refs []uint64
		err  error
	)
	switch v := v.(type) {
	case Null:
		key = []byte{bpTagNull}
	case Boolean:
		if v {
			key = []byte{bpTagBoolTrue}
		} else {
			key = []byte{bpTagBoolFalse}
		}
	case Integer:
		key = fixedKey(bpTagInteger, uint64(v))
	case Real:
		key, _ = encodeReal(float64(v), 8)
		key = append([]byte{bpTagReal}, key...)
	case Date:
		key = append([]byte{bpTagDate}, encodeDate(v.Time())...)
	case Data:
		key = append([]byte{bpTagData}, v...)
	case ASCIIString:
		key = append([]byte{bpTagASCIIString}, v...)
	case UnicodeString:
		key = append([]byte{bpTagUTF16String}, v...)
	case UID:
		key = fixedKey(bpTagUID, uint64(v))
	case Array:
		if refs, err = t.visitAll(v, bpTagArray, v); err != nil {
			return 0, err
		}
		key = refsKey(bpTagArray, refs)
	case Set:
		if refs, err = t.visitAll(v, bpTagSet, v); err != nil {
			return 0, err
		}
		refs = sortedUnique(refs)
		key = refsKey(bpTagSet, refs)
	case Dictionary:
		if refs, err = t.visitDictionary(v); err != nil {
			return 0, err
		}
		key = refsKey(bpTagDictionary, refs)
	default:
		return 0, unsupportedType(v)
	}
	return t.intern(v, key, refs), nil
}

func (t *objectTable) visitAll(owner Value, kind byte, vs []Value) ([]uint64, error) {
	leave, err := t.enter(owner, kind, len(vs))
	if err != nil {
		return nil, err
	}
	defer leave()

	refs := make([]uint64, len(vs))
	for i, e := range vs {
		if refs[i], err = t.visit(e); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

func (t *objectTable) visitDictionary(d Dictionary) ([]uint64, error) {
	leave, err := t.enter(d, bpTagDictionary, len(d))
	if err != nil {
		return nil, err
	}
	defer leave()

	refs := make([]uint64, 2*len(d))
	for i, kv := range d {
		if refs[i], err = t.visit(kv.Key); err != nil {
			return nil, err
		}
		if refs[len(d)+i], err = t.visit(kv.Value); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

// enter marks a composite as being visited. Empty composites cannot
// contain anything and are not tracked.
func (t *objectTable) enter(owner Value, kind byte, n int) (func(), error) {
	if n == 0 {
		return func() {}, nil
	}
	id := compositeID{ptr: reflect.ValueOf(owner).Pointer(), n: n, kind: kind}
	if _, ok := t.active[id]; ok {
		return nil, &CyclicStructureError{Type: owner.typeName()}
	}
	t.active[id] = struct{}{}
	return func() { delete(t.active, id) }, nil
}

func (t *objectTable) intern(v Value, key []byte, refs []uint64) uint64 {
	h := xxhash.Sum64(key)
	for _, i := range t.index[h] {
		if t.entries[i].key == string(key) {
			return i
		}
	}
	i := uint64(len(t.entries))
	t.entries = append(t.entries, tableEntry{value: v, key: string(key), refs: refs})
	t.index[h] = append(t.index[h], i)
	return i
}

func fixedKey(tag byte, v uint64) []byte {
	key := make([]byte, 9)
	key[0] = tag
	binary.BigEndian.PutUint64(key[1:], v)
	return key
}

func refsKey(tag byte, refs []uint64) []byte {
	key := make([]byte, 1, 1+len(refs)*binary.MaxVarintLen64)
	key[0] = tag
	var tmp [binary.MaxVarintLen64]byte
	for _, r := range refs {
		n := binary.PutUvarint(tmp[:], r)
		key = append(key, tmp[:n]...)
	}
	return key
}

func sortedUnique(refs []uint64) []uint64 {
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	out := refs[:0]
	for _, r := range refs {
		if len(out) == 0 || r != out[len(out)-1] {
			out = append(out, r)
		}
	}
	return out
}
