package plist

import (
	"reflect"
	"sort"
	"strings"
	"sync"
)

// typeInfo holds details for the plist representation of a struct type.
type typeInfo struct {
	fields []fieldInfo
}

// fieldInfo holds details for the plist representation of a single field.
type fieldInfo struct {
	idx       []int
	name      string
	omitEmpty bool
}

var tinfoMap sync.Map // map[reflect.Type]*typeInfo

// getTypeInfo returns the typeInfo structure with details necessary
// for marshalling and unmarshalling typ.
func getTypeInfo(typ reflect.Type) (*typeInfo, error) {
	if cached, ok := tinfoMap.Load(typ); ok {
		return cached.(*typeInfo), nil
	}
	tinfo := &typeInfo{}
	if typ.Kind() == reflect.Struct {
		n := typ.NumField()
		for i := 0; i < n; i++ {
			f := typ.Field(i)
			if f.Tag.Get("plist") == "-" || (!f.Anonymous && f.PkgPath != "") {
				continue // Private field
			}
			if f.Anonymous && f.PkgPath != "" && (f.Tag.Get("plist") != "" || !isStructOrStructPtr(f.Type)) {
				continue // Private embedded type that cannot be inlined
			}

			// For embedded structs, embed its fields.
			if f.Anonymous && f.Tag.Get("plist") == "" {
				t := f.Type
				if t.Kind() == reflect.Ptr {
					t = t.Elem()
				}
				if t.Kind() == reflect.Struct {
					inner, err := getTypeInfo(t)
					if err != nil {
						return nil, err
					}
					for _, finfo := range inner.fields {
						finfo.idx = append([]int{i}, finfo.idx...)
						addFieldInfo(tinfo, finfo)
					}
					continue
				}
			}

			addFieldInfo(tinfo, structFieldInfo(&f))
		}
		sort.Slice(tinfo.fields, func(i, j int) bool {
			return indexLess(tinfo.fields[i].idx, tinfo.fields[j].idx)
		})
	}
	cached, _ := tinfoMap.LoadOrStore(typ, tinfo)
	return cached.(*typeInfo), nil
}

func isStructOrStructPtr(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// structFieldInfo builds and returns a fieldInfo for f.
func structFieldInfo(f *reflect.StructField) fieldInfo {
	finfo := fieldInfo{idx: f.Index, name: f.Name}
	tokens := strings.Split(f.Tag.Get("plist"), ",")
	for _, flag := range tokens[1:] {
		if flag == "omitempty" {
			finfo.omitEmpty = true
		}
	}
	if tokens[0] != "" {
		finfo.name = tokens[0]
	}
	return finfo
}

// addFieldInfo adds newf to tinfo.fields unless a shallower field of the
// same name exists. Deeper fields of the same name are dropped, which
// matches Go's field resolution on embedding.
func addFieldInfo(tinfo *typeInfo, newf fieldInfo) {
	var conflicts []int
	for i := range tinfo.fields {
		if tinfo.fields[i].name == newf.name {
			conflicts = append(conflicts, i)
		}
	}
	for _, i := range conflicts {
		if len(tinfo.fields[i].idx) <= len(newf.idx) {
			return
		}
	}
	for c := len(conflicts) - 1; c >= 0; c-- {
		i := conflicts[c]
		tinfo.fields = append(tinfo.fields[:i], tinfo.fields[i+1:]...)
	}
	tinfo.fields = append(tinfo.fields, newf)
}

func indexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// value returns v's field value corresponding to finfo, allocating nil
// embedded struct pointers on the way. It returns an invalid
// reflect.Value when a nil pointer to an unexported embedded struct
// cannot be allocated.
func (finfo *fieldInfo) value(v reflect.Value) reflect.Value {
	for i, x := range finfo.idx {
		if i > 0 {
			t := v.Type()
			if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct {
				if v.IsNil() {
					if !v.CanSet() {
						return reflect.Value{}
					}
					v.Set(reflect.New(v.Type().Elem()))
				}
				v = v.Elem()
			}
		}
		v = v.Field(x)
	}
	return v
}

// valueIfPresent works like value but never allocates. It returns an
// invalid reflect.Value when a nil embedded pointer is in the way.
func (finfo *fieldInfo) valueIfPresent(v reflect.Value) reflect.Value {
	for i, x := range finfo.idx {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	case reflect.Struct:
		if !v.CanInterface() {
			return false
		}
		if t, ok := v.Interface().(interface{ IsZero() bool }); ok {
			return t.IsZero()
		}
	}
	return false
}
