package xref

// Primitive describes a scalar type of the declaration language under the
// LP64 data model.
type Primitive struct {
	Name   string
	Size   int64
	Align  int64
	GoType string
	// FFI names the libffi type descriptor variable in the ffi package.
	FFI    string
	Signed bool
	Float  bool
}

var primitives = map[string]Primitive{}

func init() {
	for _, p := range []Primitive{
		{"u8", 1, 1, "uint8", "TypeUint8", false, false},
		{"u16", 2, 2, "uint16", "TypeUint16", false, false},
		{"u32", 4, 4, "uint32", "TypeUint32", false, false},
		{"u64", 8, 8, "uint64", "TypeUint64", false, false},
		{"usize", 8, 8, "uintptr", "TypeUint64", false, false},
		{"i8", 1, 1, "int8", "TypeSint8", true, false},
		{"i16", 2, 2, "int16", "TypeSint16", true, false},
		{"i32", 4, 4, "int32", "TypeSint32", true, false},
		{"i64", 8, 8, "int64", "TypeSint64", true, false},
		{"isize", 8, 8, "int", "TypeSint64", true, false},
		{"f32", 4, 4, "float32", "TypeFloat", true, true},
		{"f64", 8, 8, "float64", "TypeDouble", true, true},
		{"bool", 1, 1, "bool", "TypeUint8", false, false},
		{"c_char", 1, 1, "byte", "TypeSint8", true, false},
		{"c_schar", 1, 1, "int8", "TypeSint8", true, false},
		{"c_uchar", 1, 1, "uint8", "TypeUint8", false, false},
		{"c_short", 2, 2, "int16", "TypeSint16", true, false},
		{"c_ushort", 2, 2, "uint16", "TypeUint16", false, false},
		{"c_int", 4, 4, "int32", "TypeSint32", true, false},
		{"c_uint", 4, 4, "uint32", "TypeUint32", false, false},
		{"c_long", 8, 8, "int64", "TypeSint64", true, false},
		{"c_ulong", 8, 8, "uint64", "TypeUint64", false, false},
		{"c_longlong", 8, 8, "int64", "TypeSint64", true, false},
		{"c_ulonglong", 8, 8, "uint64", "TypeUint64", false, false},
		{"c_float", 4, 4, "float32", "TypeFloat", true, true},
		{"c_double", 8, 8, "float64", "TypeDouble", true, true},
	} {
		primitives[p.Name] = p
	}
}

// LookupPrimitive returns the scalar type with the given name.
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := primitives[name]
	return p, ok
}

// VoidName is the opaque pointee type; *c_void is an untyped pointer.
const VoidName = "c_void"

const pointerSize = 8
