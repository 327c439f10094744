package plist

import (
	"encoding"
	"reflect"
	"sort"
	"time"
)

var (
	valueType           = reflect.TypeOf((*Value)(nil)).Elem()
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	timeType            = reflect.TypeOf((*time.Time)(nil)).Elem()
)

// marshalValue converts a Go value into a Value tree.
func marshalValue(v interface{}) (Value, error) {
	m := &marshaler{visiting: make(map[visitKey]struct{})}
	pval, err := m.marshal(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	if pval == nil {
		return nil, unsupportedType(v)
	}
	return pval, nil
}

type marshaler struct {
	visiting map[visitKey]struct{}
}

// visitKey identifies a pointer, map or slice on the current path.
type visitKey struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

// marshal returns nil, nil for nil pointers and interfaces; callers
// decide whether that omits the value.
func (m *marshaler) marshal(val reflect.Value) (Value, error) {
	if !val.IsValid() {
		return nil, nil
	}
	typ := val.Type()

	if (val.Kind() == reflect.Ptr || val.Kind() == reflect.Interface) && val.IsNil() {
		return nil, nil
	}
	if val.CanInterface() {
		if typ.Kind() != reflect.Ptr && typ.Implements(valueType) {
			return val.Interface().(Value), nil
		}
		if typ == timeType {
			return Date(val.Interface().(time.Time)), nil
		}
		if typ.Implements(textMarshalerType) {
			return m.marshalText(val.Interface().(encoding.TextMarshaler))
		}
		if val.CanAddr() && reflect.PtrTo(typ).Implements(textMarshalerType) {
			return m.marshalText(val.Addr().Interface().(encoding.TextMarshaler))
		}
	}

	switch val.Kind() {
	case reflect.Interface:
		return m.marshal(val.Elem())
	case reflect.Ptr:
		leave, err := m.enter(val, 0)
		if err != nil {
			return nil, err
		}
		defer leave()
		return m.marshal(val.Elem())
	case reflect.Bool:
		return Boolean(val.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(val.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		// Values above MaxInt64 keep their bit pattern.
		return Integer(int64(val.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Real(val.Float()), nil
	case reflect.String:
		return String(val.String()), nil
	case reflect.Slice:
		if typ.Elem().Kind() == reflect.Uint8 {
			return Data(append([]byte(nil), val.Bytes()...)), nil
		}
		leave, err := m.enter(val, val.Len())
		if err != nil {
			return nil, err
		}
		defer leave()
		return m.marshalArray(val)
	case reflect.Array:
		if typ.Elem().Kind() == reflect.Uint8 {
			b := make([]byte, val.Len())
			for i := range b {
				b[i] = byte(val.Index(i).Uint())
			}
			return Data(b), nil
		}
		return m.marshalArray(val)
	case reflect.Map:
		leave, err := m.enter(val, 0)
		if err != nil {
			return nil, err
		}
		defer leave()
		return m.marshalMap(val)
	case reflect.Struct:
		return m.marshalStruct(val)
	}
	return nil, &UnsupportedTypeError{Type: typ.String()}
}

// enter records a reference on the current path and fails on a revisit.
func (m *marshaler) enter(val reflect.Value, n int) (func(), error) {
	if val.Pointer() == 0 {
		return func() {}, nil
	}
	key := visitKey{ptr: val.Pointer(), typ: val.Type(), n: n}
	if _, ok := m.visiting[key]; ok {
		return nil, &CyclicStructureError{Type: val.Type().String()}
	}
	m.visiting[key] = struct{}{}
	return func() { delete(m.visiting, key) }, nil
}

func (m *marshaler) marshalText(tm encoding.TextMarshaler) (Value, error) {
	text, err := tm.MarshalText()
	if err != nil {
		return nil, err
	}
	return String(string(text)), nil
}

func (m *marshaler) marshalArray(val reflect.Value) (Value, error) {
	arr := make(Array, val.Len())
	for i := range arr {
		elem, err := m.marshal(val.Index(i))
		if err != nil {
			return nil, err
		}
		if elem == nil {
			elem = Null{}
		}
		arr[i] = elem
	}
	return arr, nil
}

func (m *marshaler) marshalMap(val reflect.Value) (Value, error) {
	typ := val.Type()
	if typ.Key().Kind() != reflect.String {
		return nil, &UnsupportedTypeError{Type: typ.String()}
	}
	keys := val.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	dict := make(Dictionary, 0, len(keys))
	for _, k := range keys {
		elem, err := m.marshal(val.MapIndex(k))
		if err != nil {
			return nil, err
		}
		if elem == nil {
			continue
		}
		dict = append(dict, KeyValue{Key: String(k.String()), Value: elem})
	}
	return dict, nil
}

func (m *marshaler) marshalStruct(val reflect.Value) (Value, error) {
	tinfo, err := getTypeInfo(val.Type())
	if err != nil {
		return nil, err
	}
	dict := make(Dictionary, 0, len(tinfo.fields))
	for i := range tinfo.fields {
		finfo := &tinfo.fields[i]
		field := finfo.valueIfPresent(val)
		if !field.IsValid() || (finfo.omitEmpty && isEmptyValue(field)) {
			continue
		}
		elem, err := m.marshal(field)
		if err != nil {
			return nil, err
		}
		if elem == nil {
			continue
		}
		dict = append(dict, KeyValue{Key: String(finfo.name), Value: elem})
	}
	return dict, nil
}
