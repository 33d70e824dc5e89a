// Package defs is the in-memory definition model built by the classifier
// and consumed by the emitters.
package defs

import (
	"fmt"

	"github.com/chazu/vkbind/decl"
	"github.com/chazu/vkbind/normalize"
)

// Kind identifies one of the seven definition kinds.
type Kind int

const (
	KindEnum Kind = iota
	KindConst
	KindStruct
	KindUnion
	KindFnPointer
	KindTypeAlias
	KindHandle
)

var kindNames = [...]string{"enum", "const", "struct", "union", "fn-pointer", "type-alias", "handle"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Def is implemented by every definition record.
type Def interface {
	Kind() Kind
	DefName() string
}

// Model holds every classified definition, one slice per kind, each in
// declaration order.
type Model struct {
	Enums      []*Enum
	Consts     []*Const
	Structs    []*Struct
	Unions     []*Union
	FnPointers []*FnPointer
	Aliases    []*TypeAlias
	Handles    []*Handle
}

// Enum is a numeric wrapper with named members.
type Enum struct {
	Name    string
	Type    decl.Type
	Members []EnumMember
	Bitmask bool
	// Placeholder marks an enum synthesized for a flags alias with no bits.
	Placeholder bool
}

// EnumMember is one named value. Raw is the name before the enum's own
// prefix was stripped; value expressions of sibling members may use it.
type EnumMember struct {
	Name  string
	Raw   string
	Value decl.Expr
}

// Const is a typed named constant.
type Const struct {
	Name  string
	Type  decl.Type
	Value decl.Expr
}

// Member is a struct field or union member.
type Member struct {
	Name string
	Type decl.Type
}

// Struct is a C-layout aggregate.
type Struct struct {
	Name    string
	Members []Member
}

// Union is an aggregate with overlapping storage.
type Union struct {
	Name    string
	Members []Member
}

// FnPointer is a nullable function pointer type. Raw is the declared name
// (PFN_vkCreateInstance) and BaseName its normalized stem (CreateInstance).
type FnPointer struct {
	BaseName  string
	Raw       string
	Signature *decl.FnType
}

// TypeAlias renames another type.
type TypeAlias struct {
	Name   string
	Target decl.Type
}

// Handle is an opaque API object reference.
type Handle struct {
	Name         string
	Dispatchable bool
}

func (*Enum) Kind() Kind      { return KindEnum }
func (*Const) Kind() Kind     { return KindConst }
func (*Struct) Kind() Kind    { return KindStruct }
func (*Union) Kind() Kind     { return KindUnion }
func (*FnPointer) Kind() Kind { return KindFnPointer }
func (*TypeAlias) Kind() Kind { return KindTypeAlias }
func (*Handle) Kind() Kind    { return KindHandle }

func (e *Enum) DefName() string      { return e.Name }
func (c *Const) DefName() string     { return c.Name }
func (s *Struct) DefName() string    { return s.Name }
func (u *Union) DefName() string     { return u.Name }
func (f *FnPointer) DefName() string { return f.PfnName() }
func (a *TypeAlias) DefName() string { return a.Name }
func (h *Handle) DefName() string    { return h.Name }

// FnName is the name of the call signature type.
func (f *FnPointer) FnName() string { return "Fn" + f.BaseName }

// PfnName is the name of the nullable pointer type.
func (f *FnPointer) PfnName() string { return "Pfn" + f.BaseName }

// SnakeName is the command's lower_snake name, e.g. create_instance.
func (f *FnPointer) SnakeName() string { return normalize.Snake(f.BaseName) }

// Symbol returns the exported native symbol. It is derived from the declared
// name so that acronyms keep their original spelling.
func (f *FnPointer) Symbol(fnPointerPrefix, mixedPrefix string) string {
	if len(f.Raw) > len(fnPointerPrefix) && f.Raw[:len(fnPointerPrefix)] == fnPointerPrefix {
		return mixedPrefix + f.Raw[len(fnPointerPrefix):]
	}
	return mixedPrefix + f.BaseName
}

// Add appends d to the slice for its kind.
func (m *Model) Add(d Def) {
	switch d := d.(type) {
	case *Enum:
		m.Enums = append(m.Enums, d)
	case *Const:
		m.Consts = append(m.Consts, d)
	case *Struct:
		m.Structs = append(m.Structs, d)
	case *Union:
		m.Unions = append(m.Unions, d)
	case *FnPointer:
		m.FnPointers = append(m.FnPointers, d)
	case *TypeAlias:
		m.Aliases = append(m.Aliases, d)
	case *Handle:
		m.Handles = append(m.Handles, d)
	}
}

// Counts returns the number of definitions per kind.
func (m *Model) Counts() map[Kind]int {
	return map[Kind]int{
		KindEnum:      len(m.Enums),
		KindConst:     len(m.Consts),
		KindStruct:    len(m.Structs),
		KindUnion:     len(m.Unions),
		KindFnPointer: len(m.FnPointers),
		KindTypeAlias: len(m.Aliases),
		KindHandle:    len(m.Handles),
	}
}

// Enum returns the enum with the given name.
func (m *Model) Enum(name string) (*Enum, bool) {
	for _, e := range m.Enums {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// FnPointersByBase indexes function pointer types by base name.
func (m *Model) FnPointersByBase() map[string]*FnPointer {
	out := make(map[string]*FnPointer, len(m.FnPointers))
	for _, f := range m.FnPointers {
		out[f.BaseName] = f
	}
	return out
}
