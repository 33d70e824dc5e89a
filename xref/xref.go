// Package xref answers cross-definition questions about a model: which
// structure-type tag belongs to a struct, what a type name ultimately refers
// to, how large a type is and what a constant expression evaluates to.
package xref

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tliron/commonlog"

	"github.com/chazu/vkbind/config"
	"github.com/chazu/vkbind/decl"
	"github.com/chazu/vkbind/defs"
)

var log = commonlog.GetLogger("vkgen.xref")

// Class is the broad category of a resolved type.
type Class int

const (
	ClassUnknown Class = iota
	ClassVoid
	ClassPrimitive
	ClassEnum
	ClassBitmask
	ClassStruct
	ClassUnion
	ClassHandle
	ClassNonDispatchable
	ClassFnPointer
	ClassPointer
	ClassArray
)

var classNames = [...]string{
	"unknown", "void", "primitive", "enum", "bitmask", "struct", "union",
	"handle", "non-dispatchable handle", "fn pointer", "pointer", "array",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Index is a view over a model. It memoizes layouts and is not safe for
// concurrent use.
type Index struct {
	Model   *defs.Model
	Dialect config.Dialect

	enums    map[string]*defs.Enum
	consts   map[string]*defs.Const
	structs  map[string]*defs.Struct
	unions   map[string]*defs.Union
	aliases  map[string]*defs.TypeAlias
	handles  map[string]*defs.Handle
	fnptrs   map[string]*defs.FnPointer
	tags     map[string]string
	layouts  map[string]layout
	needInit map[string]bool
}

// New indexes m.
func New(m *defs.Model, d config.Dialect) *Index {
	x := &Index{
		Model:    m,
		Dialect:  d.WithDefaults(),
		enums:    make(map[string]*defs.Enum),
		consts:   make(map[string]*defs.Const),
		structs:  make(map[string]*defs.Struct),
		unions:   make(map[string]*defs.Union),
		aliases:  make(map[string]*defs.TypeAlias),
		handles:  make(map[string]*defs.Handle),
		fnptrs:   make(map[string]*defs.FnPointer),
		tags:     make(map[string]string),
		layouts:  make(map[string]layout),
		needInit: make(map[string]bool),
	}
	for _, e := range m.Enums {
		if _, dup := x.enums[e.Name]; !dup {
			x.enums[e.Name] = e
		}
	}
	for _, c := range m.Consts {
		x.consts[c.Name] = c
	}
	for _, s := range m.Structs {
		x.structs[s.Name] = s
	}
	for _, u := range m.Unions {
		x.unions[u.Name] = u
	}
	for _, a := range m.Aliases {
		x.aliases[a.Name] = a
	}
	for _, h := range m.Handles {
		x.handles[h.Name] = h
	}
	for _, f := range m.FnPointers {
		x.fnptrs[f.PfnName()] = f
	}
	if kind, ok := x.enums[x.Dialect.KindEnum]; ok {
		for _, mem := range kind.Members {
			slug := Slug(mem.Name)
			if _, dup := x.tags[slug]; !dup {
				x.tags[slug] = mem.Name
			}
		}
	}
	log.Debugf("indexed %d structure type tags", len(x.tags))
	return x
}

// Slug lower-cases s and keeps only letters and digits, so that
// PhysicalDeviceIdProperties and PHYSICAL_DEVICE_ID_PROPERTIES agree.
func Slug(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

// Tag returns the kind-enum member that identifies the named struct. Only
// structs with a discriminator field have one; a miss is not an error.
func (x *Index) Tag(structName string) (string, bool) {
	s, ok := x.structs[structName]
	if !ok || !x.hasDiscriminator(s) {
		return "", false
	}
	tag, ok := x.tags[Slug(structName)]
	return tag, ok
}

// hasDiscriminator reports whether the first member is the discriminator.
func (x *Index) hasDiscriminator(s *defs.Struct) bool {
	return len(s.Members) > 0 && s.Members[0].Name == x.Dialect.DiscriminatorField
}

// Enum, Struct, Union, Handle and FnPointer look up definitions by name.

func (x *Index) Enum(name string) (*defs.Enum, bool) {
	e, ok := x.enums[name]
	return e, ok
}

func (x *Index) Struct(name string) (*defs.Struct, bool) {
	s, ok := x.structs[name]
	return s, ok
}

func (x *Index) Union(name string) (*defs.Union, bool) {
	u, ok := x.unions[name]
	return u, ok
}

func (x *Index) Handle(name string) (*defs.Handle, bool) {
	h, ok := x.handles[name]
	return h, ok
}

// FnPointer looks up a function pointer by its Pfn type name.
func (x *Index) FnPointer(pfnName string) (*defs.FnPointer, bool) {
	f, ok := x.fnptrs[pfnName]
	return f, ok
}

func (x *Index) Const(name string) (*defs.Const, bool) {
	c, ok := x.consts[name]
	return c, ok
}

// Resolve follows type aliases until t names something other than an
// alias, and returns that type.
func (x *Index) Resolve(t decl.Type) decl.Type {
	seen := map[string]bool{}
	for {
		p, ok := t.(*decl.PathType)
		if !ok || len(p.Args) > 0 {
			return t
		}
		a, ok := x.aliases[p.Last()]
		if !ok || seen[a.Name] {
			return t
		}
		seen[a.Name] = true
		t = a.Target
	}
}

// ClassOf reports the category of t after alias resolution.
func (x *Index) ClassOf(t decl.Type) Class {
	switch t := x.Resolve(t).(type) {
	case *decl.PointerType:
		return ClassPointer
	case *decl.ArrayType:
		return ClassArray
	case *decl.FnType:
		return ClassFnPointer
	case *decl.PathType:
		if _, ok := decl.OptionFn(t); ok {
			return ClassFnPointer
		}
		name := t.Last()
		if name == VoidName {
			return ClassVoid
		}
		if _, ok := primitives[name]; ok {
			return ClassPrimitive
		}
		if e, ok := x.enums[name]; ok {
			if e.Bitmask {
				return ClassBitmask
			}
			return ClassEnum
		}
		if _, ok := x.structs[name]; ok {
			return ClassStruct
		}
		if _, ok := x.unions[name]; ok {
			return ClassUnion
		}
		if h, ok := x.handles[name]; ok {
			if h.Dispatchable {
				return ClassHandle
			}
			return ClassNonDispatchable
		}
		if _, ok := x.fnptrs[name]; ok {
			return ClassFnPointer
		}
	}
	return ClassUnknown
}

// NeedsInit reports whether the zero value of t is not its default: t is a
// struct with a tag, contains one, or is an array of such.
func (x *Index) NeedsInit(t decl.Type) bool {
	switch t := x.Resolve(t).(type) {
	case *decl.ArrayType:
		return x.NeedsInit(t.Elem)
	case *decl.PathType:
		if len(t.Args) > 0 {
			return false
		}
		return x.structNeedsInit(t.Last(), map[string]bool{})
	}
	return false
}

func (x *Index) structNeedsInit(name string, visiting map[string]bool) bool {
	if v, ok := x.needInit[name]; ok {
		return v
	}
	s, ok := x.structs[name]
	if !ok || visiting[name] {
		return false
	}
	visiting[name] = true
	result := false
	if _, tagged := x.Tag(name); tagged {
		result = true
	} else {
		for _, m := range s.Members {
			if x.memberNeedsInit(m.Type, visiting) {
				result = true
				break
			}
		}
	}
	x.needInit[name] = result
	return result
}

func (x *Index) memberNeedsInit(t decl.Type, visiting map[string]bool) bool {
	switch t := x.Resolve(t).(type) {
	case *decl.ArrayType:
		return x.memberNeedsInit(t.Elem, visiting)
	case *decl.PathType:
		if len(t.Args) > 0 {
			return false
		}
		return x.structNeedsInit(t.Last(), visiting)
	}
	return false
}
