package plist

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	uuid "github.com/satori/go.uuid"
)

const (
	archiverVersion = 100000
	archiverName    = "NSKeyedArchiver"
	archiverNull    = "$null"
)

type archiverClass struct {
	ClassName string   `plist:"$classname"`
	Classes   []string `plist:"$classes"`
}

var (
	archiverMutableDictionaryClass = &archiverClass{ClassName: "NSMutableDictionary", Classes: []string{"NSMutableDictionary", "NSDictionary", "NSObject"}}
	archiverMutableArrayClass      = &archiverClass{ClassName: "NSMutableArray", Classes: []string{"NSMutableArray", "NSArray", "NSObject"}}
	archiverDateClass              = &archiverClass{ClassName: "NSDate", Classes: []string{"NSDate", "NSObject"}}
	archiverUUIDClass              = &archiverClass{ClassName: "NSUUID", Classes: []string{"NSUUID", "NSObject"}}

	archiverUUIDType = reflect.TypeOf((*uuid.UUID)(nil)).Elem()

	archiverClasses = make(map[reflect.Type]*archiverClass)

	errArchiverNoTop = errors.New("plist: keyed archive has no root object")
)

// ArchiverAddFoundation registers the archived class name of a struct
// type. Registered structs are archived as objects of that class with one
// entry per field instead of as dictionaries.
func ArchiverAddFoundation(typ reflect.Type, name string, classes ...string) {
	if len(classes) == 0 {
		classes = []string{name, "NSObject"}
	}
	archiverClasses[typ] = &archiverClass{ClassName: name, Classes: classes}
}

func (c *archiverClass) isDictionary() bool {
	return c.ClassName == "NSMutableDictionary" || c.ClassName == "NSDictionary"
}
func (c *archiverClass) isArray() bool {
	return c.ClassName == "NSMutableArray" || c.ClassName == "NSArray"
}
func (c *archiverClass) isSet() bool {
	return c.ClassName == "NSMutableSet" || c.ClassName == "NSSet"
}
func (c *archiverClass) isData() bool {
	return c.ClassName == "NSMutableData" || c.ClassName == "NSData"
}
func (c *archiverClass) isString() bool {
	return c.ClassName == "NSMutableString" || c.ClassName == "NSString"
}
func (c *archiverClass) isUUID() bool {
	return c.ClassName == "NSUUID"
}
func (c *archiverClass) isDate() bool {
	return c.ClassName == "NSDate"
}

type archiverTop struct {
	Root UID `plist:"root"`
}

// Archiver reads and writes NSKeyedArchiver payloads: binary property
// lists whose objects live in a flat $objects array and refer to each
// other through UIDs.
type Archiver struct {
	Version  int          `plist:"$version"`
	Objects  []Value      `plist:"$objects"`
	Archiver string       `plist:"$archiver"`
	Top      *archiverTop `plist:"$top"`

	pointers map[uintptr]UID
}

// ReadFromZipData reads a gzip-compressed keyed archive.
func (a *Archiver) ReadFromZipData(data []byte) error {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	return a.ReadFromData(raw)
}

// ReadFromData reads a keyed archive.
func (a *Archiver) ReadFromData(data []byte) error {
	return a.ReadFromReader(bytes.NewReader(data))
}

// ReadFromReader reads a keyed archive.
func (a *Archiver) ReadFromReader(reader io.ReadSeeker) error {
	return NewDecoder(reader).Decode(a)
}

// Archive returns the keyed archive of v.
func Archive(v interface{}) ([]byte, error) {
	return (&Archiver{}).Marshal(v)
}

// Unarchive reads a keyed archive and stores its root object in the value
// pointed to by v.
func Unarchive(data []byte, v interface{}) error {
	a := &Archiver{}
	if err := a.ReadFromData(data); err != nil {
		return err
	}
	return a.Unmarshal(v)
}

// Marshal archives v and returns the binary property list.
func (a *Archiver) Marshal(v interface{}) ([]byte, error) {
	a.Version = archiverVersion
	a.Archiver = archiverName
	a.Objects = make([]Value, 0)
	a.pointers = make(map[uintptr]UID)
	a.addObject(ASCIIString(archiverNull))
	root, err := a.marshal(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	a.Top = &archiverTop{Root: root}
	return Marshal(a, BinaryFormat)
}

func (a *Archiver) addObject(obj Value) UID {
	for i, o := range a.Objects {
		if cmp.Equal(o, obj) {
			return UID(i)
		}
	}
	a.Objects = append(a.Objects, obj)
	return UID(len(a.Objects) - 1)
}

func (a *Archiver) addClass(class *archiverClass) UID {
	classes := make(Array, len(class.Classes))
	for i, c := range class.Classes {
		classes[i] = String(c)
	}
	return a.addObject(Dictionary{
		{Key: ASCIIString("$classname"), Value: String(class.ClassName)},
		{Key: ASCIIString("$classes"), Value: classes},
	})
}

// marshal archives val and returns its UID. Pointers are archived once,
// so shared and cyclic references survive.
func (a *Archiver) marshal(val reflect.Value) (UID, error) {
	if !val.IsValid() {
		return 0, nil
	}
	switch val.Kind() {
	case reflect.Interface:
		if val.IsNil() {
			return 0, nil
		}
		return a.marshal(val.Elem())
	case reflect.Ptr:
		if val.IsNil() {
			return 0, nil
		}
		if uid, ok := a.pointers[val.Pointer()]; ok {
			return uid, nil
		}
		a.Objects = append(a.Objects, Null{})
		slot := UID(len(a.Objects) - 1)
		a.pointers[val.Pointer()] = slot
		obj, err := a.object(val.Elem())
		if err != nil {
			return 0, err
		}
		a.Objects[slot] = obj
		return slot, nil
	case reflect.String:
		if val.String() == archiverNull {
			return 0, nil
		}
	}
	obj, err := a.object(val)
	if err != nil {
		return 0, err
	}
	return a.addObject(obj), nil
}

// object builds the archived form of val; children are added to the
// archive and referenced by UID.
func (a *Archiver) object(val reflect.Value) (Value, error) {
	typ := val.Type()
	if val.CanInterface() {
		switch {
		case typ.Kind() != reflect.Ptr && typ.Implements(valueType):
			switch g := Interface(val.Interface().(Value)).(type) {
			case nil:
				return ASCIIString(archiverNull), nil
			case Value:
				// UIDs and dictionaries with non-string keys are stored raw.
				return g, nil
			default:
				return a.object(reflect.ValueOf(g))
			}
		case typ == timeType:
			t := val.Interface().(time.Time)
			return Dictionary{
				{Key: ASCIIString("NS.time"), Value: Real(dateDelta(t))},
				{Key: ASCIIString("$class"), Value: a.addClass(archiverDateClass)},
			}, nil
		case typ == archiverUUIDType:
			id := val.Interface().(uuid.UUID)
			return Dictionary{
				{Key: ASCIIString("NS.uuidbytes"), Value: Data(id.Bytes())},
				{Key: ASCIIString("$class"), Value: a.addClass(archiverUUIDClass)},
			}, nil
		}
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(val.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Integer(int64(val.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Real(val.Float()), nil
	case reflect.Bool:
		return Boolean(val.Bool()), nil
	case reflect.String:
		return String(val.String()), nil
	case reflect.Slice, reflect.Array:
		if typ.Elem().Kind() == reflect.Uint8 {
			b := make([]byte, val.Len())
			for i := range b {
				b[i] = byte(val.Index(i).Uint())
			}
			return Data(b), nil
		}
		return a.marshalSlice(val)
	case reflect.Map:
		return a.marshalMap(val)
	case reflect.Struct:
		return a.marshalStruct(val)
	case reflect.Ptr, reflect.Interface:
		uid, err := a.marshal(val)
		if err != nil {
			return nil, err
		}
		return uid, nil
	}
	return nil, &UnsupportedTypeError{Type: typ.String()}
}

func (a *Archiver) marshalSlice(val reflect.Value) (Value, error) {
	objects := make(Array, val.Len())
	for i := range objects {
		uid, err := a.marshal(val.Index(i))
		if err != nil {
			return nil, err
		}
		objects[i] = uid
	}
	return Dictionary{
		{Key: ASCIIString("NS.objects"), Value: objects},
		{Key: ASCIIString("$class"), Value: a.addClass(archiverMutableArrayClass)},
	}, nil
}

func (a *Archiver) marshalMap(val reflect.Value) (Value, error) {
	if val.Type().Key().Kind() != reflect.String {
		return nil, &UnsupportedTypeError{Type: val.Type().String()}
	}
	mapKeys := val.MapKeys()
	sort.Slice(mapKeys, func(i, j int) bool { return mapKeys[i].String() < mapKeys[j].String() })

	var keys, objects Array
	for _, k := range mapKeys {
		uid, err := a.marshal(val.MapIndex(k))
		if err != nil {
			return nil, err
		}
		keys = append(keys, a.addObject(String(k.String())))
		objects = append(objects, uid)
	}
	return a.table(keys, objects), nil
}

func (a *Archiver) marshalStruct(val reflect.Value) (Value, error) {
	typ := val.Type()
	tinfo, err := getTypeInfo(typ)
	if err != nil {
		return nil, err
	}

	class, custom := archiverClasses[typ]
	var (
		fields        Dictionary
		keys, objects Array
	)
	for i := range tinfo.fields {
		finfo := &tinfo.fields[i]
		field := finfo.valueIfPresent(val)
		if !field.IsValid() || (finfo.omitEmpty && isEmptyValue(field)) {
			continue
		}
		uid, err := a.marshal(field)
		if err != nil {
			return nil, err
		}
		if custom {
			fields = append(fields, KeyValue{Key: String(finfo.name), Value: uid})
			continue
		}
		keys = append(keys, a.addObject(String(finfo.name)))
		objects = append(objects, uid)
	}
	if custom {
		return append(fields, KeyValue{Key: ASCIIString("$class"), Value: a.addClass(class)}), nil
	}
	return a.table(keys, objects), nil
}

func (a *Archiver) table(keys, objects Array) Dictionary {
	if keys == nil {
		keys, objects = Array{}, Array{}
	}
	return Dictionary{
		{Key: ASCIIString("NS.keys"), Value: keys},
		{Key: ASCIIString("NS.objects"), Value: objects},
		{Key: ASCIIString("$class"), Value: a.addClass(archiverMutableDictionaryClass)},
	}
}

// Unmarshal stores the archive's root object in the value pointed to by v.
func (a *Archiver) Unmarshal(v interface{}) error {
	root, err := a.Resolve()
	if err != nil {
		return err
	}
	return UnmarshalValue(root, v)
}

// Resolve replaces every UID of the archive by the object it refers to
// and returns the root as a plain Value tree. Foundation collections,
// strings, data, dates and UUIDs become their Value counterparts; other
// classes become dictionaries of their fields.
func (a *Archiver) Resolve() (Value, error) {
	if a.Top == nil {
		return nil, errArchiverNoTop
	}
	r := &archiveResolver{
		archiver: a,
		done:     make(map[UID]Value),
		active:   make(map[UID]struct{}),
	}
	return r.resolve(a.Top.Root)
}

type archiveResolver struct {
	archiver *Archiver
	done     map[UID]Value
	active   map[UID]struct{}
}

func (r *archiveResolver) object(uid UID) (Value, error) {
	if uint64(uid) >= uint64(len(r.archiver.Objects)) {
		return nil, fmt.Errorf("plist: archived object %d of %d: %w", uid, len(r.archiver.Objects), ErrMalformedObject)
	}
	return r.archiver.Objects[uid], nil
}

func (r *archiveResolver) resolve(uid UID) (Value, error) {
	if uid == 0 {
		return Null{}, nil
	}
	if v, ok := r.done[uid]; ok {
		return v, nil
	}
	if _, ok := r.active[uid]; ok {
		return nil, &CyclicStructureError{Type: fmt.Sprintf("archived object %d", uid)}
	}
	obj, err := r.object(uid)
	if err != nil {
		return nil, err
	}
	r.active[uid] = struct{}{}
	v, err := r.resolveValue(obj)
	delete(r.active, uid)
	if err != nil {
		return nil, err
	}
	r.done[uid] = v
	return v, nil
}

func (r *archiveResolver) resolveValue(obj Value) (Value, error) {
	switch o := obj.(type) {
	case UID:
		return r.resolve(o)
	case Array:
		return r.resolveAll(o)
	case Dictionary:
		if ref, ok := o.Get("$class"); ok {
			return r.resolveInstance(o, ref)
		}
		out := make(Dictionary, len(o))
		for i, kv := range o {
			v, err := r.resolveValue(kv.Value)
			if err != nil {
				return nil, err
			}
			out[i] = KeyValue{Key: kv.Key, Value: v}
		}
		return out, nil
	}
	return obj, nil
}

func (r *archiveResolver) resolveAll(refs []Value) (Array, error) {
	out := make(Array, len(refs))
	for i, ref := range refs {
		v, err := r.resolveValue(ref)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *archiveResolver) field(obj Dictionary, name string) (Value, error) {
	v, ok := obj.Get(name)
	if !ok {
		return nil, fmt.Errorf("plist: archived object has no %s: %w", name, ErrMalformedObject)
	}
	return r.resolveValue(v)
}

func (r *archiveResolver) resolveInstance(obj Dictionary, ref Value) (Value, error) {
	class, err := r.archiver.getClass(ref)
	if err != nil {
		return nil, err
	}
	switch {
	case class.isDictionary():
		keys, err := r.field(obj, "NS.keys")
		if err != nil {
			return nil, err
		}
		objects, err := r.field(obj, "NS.objects")
		if err != nil {
			return nil, err
		}
		ks, ok1 := keys.(Array)
		vs, ok2 := objects.(Array)
		if !ok1 || !ok2 || len(ks) != len(vs) {
			return nil, fmt.Errorf("plist: %s keys and objects differ: %w", class.ClassName, ErrMalformedObject)
		}
		dict := make(Dictionary, len(ks))
		for i := range ks {
			dict[i] = KeyValue{Key: ks[i], Value: vs[i]}
		}
		return dict, nil
	case class.isArray(), class.isSet():
		objects, err := r.field(obj, "NS.objects")
		if err != nil {
			return nil, err
		}
		arr, ok := objects.(Array)
		if !ok {
			return nil, fmt.Errorf("plist: %s objects are not an array: %w", class.ClassName, ErrMalformedObject)
		}
		if class.isSet() {
			return Set(arr), nil
		}
		return arr, nil
	case class.isData():
		return r.field(obj, "NS.data")
	case class.isString():
		return r.field(obj, "NS.string")
	case class.isUUID():
		return r.field(obj, "NS.uuidbytes")
	case class.isDate():
		v, err := r.field(obj, "NS.time")
		if err != nil {
			return nil, err
		}
		var delta float64
		if err := unmarshal(v, reflect.ValueOf(&delta).Elem()); err != nil {
			return nil, err
		}
		t, err := dateFromDelta(delta)
		if err != nil {
			return nil, err
		}
		return Date(t), nil
	}

	fields := make(Dictionary, 0, len(obj))
	for _, kv := range obj {
		if name, _ := stringOf(kv.Key); name == "$class" {
			continue
		}
		v, err := r.resolveValue(kv.Value)
		if err != nil {
			return nil, err
		}
		fields = append(fields, KeyValue{Key: kv.Key, Value: v})
	}
	return fields, nil
}

func (a *Archiver) getClass(ref Value) (*archiverClass, error) {
	uid, ok := ref.(UID)
	if !ok {
		return nil, fmt.Errorf("plist: $class is a %s: %w", ref.typeName(), ErrMalformedObject)
	}
	r := &archiveResolver{archiver: a}
	obj, err := r.object(uid)
	if err != nil {
		return nil, err
	}
	class := &archiverClass{}
	if err := UnmarshalValue(obj, class); err != nil {
		return nil, err
	}
	return class, nil
}

// Print describes the archive's root object, one element per line.
func (a *Archiver) Print() string {
	root, err := a.Resolve()
	if err != nil {
		return fmt.Sprintf("error(%v)", err)
	}
	return printObject(root, 0)
}

func printObject(v Value, depth int) string {
	switch pval := v.(type) {
	case Null:
		return "nil"
	case ASCIIString:
		return fmt.Sprintf("string(%v)", string(pval))
	case UnicodeString:
		return fmt.Sprintf("string(%v)", string(pval))
	case Integer:
		return fmt.Sprintf("int64(%v)", int64(pval))
	case Real:
		return fmt.Sprintf("float64(%v)", float64(pval))
	case Boolean:
		return fmt.Sprintf("bool(%v)", bool(pval))
	case Data:
		return fmt.Sprintf("[]byte(%x)", []byte(pval))
	case Date:
		return fmt.Sprintf("time(%v)", pval.Time())
	case UID:
		return fmt.Sprintf("UID(%d)", uint64(pval))
	case Array:
		return printList("[]array", pval, depth)
	case Set:
		return printList("[]set", pval, depth)
	case Dictionary:
		indent := strings.Repeat("\t", depth+1)
		builder := &strings.Builder{}
		builder.WriteString("struct{\n")
		for _, kv := range pval {
			k, ok := stringOf(kv.Key)
			if !ok {
				k = printObject(kv.Key, depth+1)
			}
			builder.WriteString(fmt.Sprintf("%s[%s]: %s\n", indent, k, printObject(kv.Value, depth+1)))
		}
		builder.WriteString(strings.Repeat("\t", depth) + "}")
		return builder.String()
	}
	return fmt.Sprintf("unknown : %v", v)
}

func printList(name string, values []Value, depth int) string {
	indent := strings.Repeat("\t", depth+1)
	builder := &strings.Builder{}
	builder.WriteString(name + "{\n")
	for i, v := range values {
		builder.WriteString(fmt.Sprintf("%s[%d]: %s\n", indent, i, printObject(v, depth+1)))
	}
	builder.WriteString(strings.Repeat("\t", depth) + "}")
	return builder.String()
}
