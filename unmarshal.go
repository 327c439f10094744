package plist

import (
	"encoding"
	"encoding/json"
	"reflect"
	"time"
)

// unmarshalValue stores pval into the value ptr points to.
func unmarshalValue(pval Value, ptr reflect.Value) error {
	return unmarshal(pval, ptr.Elem())
}

func incompatible(pval Value, typ reflect.Type) error {
	return &UnmarshalTypeError{Value: pval.typeName(), Type: typ}
}

func unmarshal(pval Value, val reflect.Value) error {
	if pval == nil {
		return nil
	}
	if _, ok := pval.(Null); ok {
		val.Set(reflect.Zero(val.Type()))
		return nil
	}

	typ := val.Type()
	switch {
	case typ == valueType:
		val.Set(reflect.ValueOf(pval))
		return nil
	case val.Kind() == reflect.Interface:
		if val.NumMethod() != 0 {
			return incompatible(pval, typ)
		}
		if g := Interface(pval); g != nil {
			val.Set(reflect.ValueOf(g))
		}
		return nil
	case val.Kind() == reflect.Ptr:
		if val.IsNil() {
			val.Set(reflect.New(typ.Elem()))
		}
		return unmarshal(pval, val.Elem())
	case typ.Implements(valueType) && reflect.TypeOf(pval) == typ:
		val.Set(reflect.ValueOf(pval))
		return nil
	case typ == timeType:
		if d, ok := pval.(Date); ok {
			val.Set(reflect.ValueOf(d.Time()))
			return nil
		}
	}
	if s, ok := stringOf(pval); ok && val.CanAddr() && val.Addr().Type().Implements(textUnmarshalerType) {
		return val.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
	}

	switch pval := pval.(type) {
	case Boolean:
		if val.Kind() == reflect.Bool {
			val.SetBool(bool(pval))
			return nil
		}
	case Integer:
		return unmarshalInteger(pval, int64(pval), val)
	case UID:
		return unmarshalInteger(pval, int64(pval), val)
	case Real:
		switch val.Kind() {
		case reflect.Float32, reflect.Float64:
			if val.OverflowFloat(float64(pval)) {
				return incompatible(pval, typ)
			}
			val.SetFloat(float64(pval))
			return nil
		}
	case Data:
		return unmarshalBytes(pval, []byte(pval), val)
	case ASCIIString:
		return unmarshalString(pval, string(pval), val)
	case UnicodeString:
		return unmarshalString(pval, string(pval), val)
	case Array:
		return unmarshalSlice(pval, pval, val)
	case Set:
		return unmarshalSlice(pval, pval, val)
	case Dictionary:
		switch val.Kind() {
		case reflect.Map:
			return unmarshalMap(pval, val)
		case reflect.Struct:
			return unmarshalStruct(pval, val)
		}
	}
	return incompatible(pval, typ)
}

func unmarshalInteger(pval Value, n int64, val reflect.Value) error {
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if val.OverflowInt(n) {
			return incompatible(pval, val.Type())
		}
		val.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		// 64-bit destinations take the bit pattern, see Marshal.
		if val.Type().Size() < 8 && (n < 0 || val.OverflowUint(uint64(n))) {
			return incompatible(pval, val.Type())
		}
		val.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		val.SetFloat(float64(n))
		return nil
	}
	return incompatible(pval, val.Type())
}

func unmarshalBytes(pval Value, b []byte, val reflect.Value) error {
	switch val.Kind() {
	case reflect.Slice:
		if val.Type().Elem().Kind() == reflect.Uint8 {
			val.SetBytes(append([]byte(nil), b...))
			return nil
		}
	case reflect.Array:
		if val.Type().Elem().Kind() == reflect.Uint8 && val.Len() == len(b) {
			for i, c := range b {
				val.Index(i).SetUint(uint64(c))
			}
			return nil
		}
	case reflect.String:
		val.SetString(string(b))
		return nil
	}
	return incompatible(pval, val.Type())
}

func unmarshalString(pval Value, s string, val reflect.Value) error {
	switch val.Kind() {
	case reflect.String:
		val.SetString(s)
		return nil
	case reflect.Slice:
		if val.Type().Elem().Kind() == reflect.Uint8 {
			val.SetBytes([]byte(s))
			return nil
		}
	}
	return incompatible(pval, val.Type())
}

func unmarshalSlice(pval Value, values []Value, val reflect.Value) error {
	switch val.Kind() {
	case reflect.Slice:
		val.Set(reflect.MakeSlice(val.Type(), len(values), len(values)))
	case reflect.Array:
		val.Set(reflect.Zero(val.Type()))
		if len(values) > val.Len() {
			values = values[:val.Len()]
		}
	default:
		return incompatible(pval, val.Type())
	}
	for i, v := range values {
		if err := unmarshal(v, val.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func unmarshalMap(dict Dictionary, val reflect.Value) error {
	typ := val.Type()
	if typ.Key().Kind() != reflect.String {
		return incompatible(dict, typ)
	}
	if val.IsNil() {
		val.Set(reflect.MakeMapWithSize(typ, len(dict)))
	}
	for _, kv := range dict {
		k, ok := stringOf(kv.Key)
		if !ok {
			return incompatible(kv.Key, typ.Key())
		}
		elem := reflect.New(typ.Elem()).Elem()
		if err := unmarshal(kv.Value, elem); err != nil {
			return err
		}
		val.SetMapIndex(reflect.ValueOf(k).Convert(typ.Key()), elem)
	}
	return nil
}

func unmarshalStruct(dict Dictionary, val reflect.Value) error {
	tinfo, err := getTypeInfo(val.Type())
	if err != nil {
		return err
	}
	for i := range tinfo.fields {
		finfo := &tinfo.fields[i]
		v, ok := dict.Get(finfo.name)
		if !ok {
			continue
		}
		field := finfo.value(val)
		if !field.IsValid() {
			continue
		}
		if err := unmarshal(v, field); err != nil {
			return err
		}
	}
	return nil
}

// Interface converts v into plain Go values: nil, bool, int64, float64,
// time.Time, []byte, string, UID, []interface{} for arrays and sets, and
// map[string]interface{} for dictionaries whose keys are all strings.
// Dictionaries with other keys are returned unchanged.
func Interface(v Value) interface{} {
	switch v := v.(type) {
	case Boolean:
		return bool(v)
	case Integer:
		return int64(v)
	case Real:
		return float64(v)
	case Date:
		return time.Time(v)
	case Data:
		return []byte(v)
	case ASCIIString:
		return string(v)
	case UnicodeString:
		return string(v)
	case UID:
		return v
	case Array:
		return interfaceSlice(v)
	case Set:
		return interfaceSlice(v)
	case Dictionary:
		m := make(map[string]interface{}, len(v))
		for _, kv := range v {
			k, ok := stringOf(kv.Key)
			if !ok {
				return v
			}
			m[k] = Interface(kv.Value)
		}
		return m
	}
	return nil
}

func interfaceSlice(vs []Value) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = Interface(v)
	}
	return out
}

// ConvertToJSON decodes a binary property list and re-encodes it as JSON.
func ConvertToJSON(data []byte) ([]byte, error) {
	pval, err := DecodeBinary(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Interface(pval))
}
