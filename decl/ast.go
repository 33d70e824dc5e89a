package decl

import (
	"fmt"
	"strings"
)

// ItemKind identifies the shape of a top-level declaration.
type ItemKind int

const (
	ItemModule ItemKind = iota // mod Name { type Type = i32; const A: Type = 0; }
	ItemConst                  // const NAME: T = expr;
	ItemStruct                 // struct Name { field: T, ... }
	ItemUnion                  // union Name { member: T, ... }
	ItemUse                    // use a::B::Type as C;
	ItemType                   // type Name = T;
	ItemOther                  // any other keyword item; never valid input
)

var itemKindNames = [...]string{"module", "const", "struct", "union", "use", "type", "other"}

func (k ItemKind) String() string {
	if int(k) < len(itemKindNames) {
		return itemKindNames[k]
	}
	return fmt.Sprintf("ItemKind(%d)", int(k))
}

// Item is one top-level declaration. Which fields are set depends on Kind.
type Item struct {
	Kind    ItemKind
	Name    string
	Pos     Position
	Keyword string   // ItemOther: the leading keyword
	Items   []Item   // ItemModule
	Type    Type     // ItemConst, ItemType
	Value   Expr     // ItemConst
	Fields  []Field  // ItemStruct, ItemUnion
	Path    []string // ItemUse
}

// Field is a struct or union member.
type Field struct {
	Name string
	Type Type
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Type is a type expression.
type Type interface {
	typeNode()
	String() string
}

// PathType names a type, optionally with generic arguments (Option<...>).
type PathType struct {
	Segments []string
	Args     []Type
}

// PointerType is *const T or *mut T.
type PointerType struct {
	Mut  bool
	Elem Type
}

// ArrayType is [T; N].
type ArrayType struct {
	Elem Type
	Len  Expr
}

// FnType is fn(params) -> Result. Result is nil for no return value.
type FnType struct {
	Params []Param
	Result Type
}

// Param is a function parameter; Name may be empty.
type Param struct {
	Name string
	Type Type
}

func (*PathType) typeNode()    {}
func (*PointerType) typeNode() {}
func (*ArrayType) typeNode()   {}
func (*FnType) typeNode()      {}

// Named returns a single-segment path type.
func Named(name string) *PathType {
	return &PathType{Segments: []string{name}}
}

// Last returns the final path segment.
func (p *PathType) Last() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

// IsName reports whether p is exactly the single-segment, non-generic name.
func (p *PathType) IsName(name string) bool {
	return len(p.Segments) == 1 && len(p.Args) == 0 && p.Segments[0] == name
}

func (p *PathType) String() string {
	s := strings.Join(p.Segments, "::")
	if len(p.Args) > 0 {
		args := make([]string, len(p.Args))
		for i, a := range p.Args {
			args[i] = a.String()
		}
		s += "<" + strings.Join(args, ", ") + ">"
	}
	return s
}

func (p *PointerType) String() string {
	if p.Mut {
		return "*mut " + p.Elem.String()
	}
	return "*const " + p.Elem.String()
}

func (a *ArrayType) String() string {
	return fmt.Sprintf("[%s; %s]", a.Elem, a.Len)
}

func (f *FnType) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		if p.Name != "" {
			params[i] = p.Name + ": " + p.Type.String()
		} else {
			params[i] = p.Type.String()
		}
	}
	s := "fn(" + strings.Join(params, ", ") + ")"
	if f.Result != nil {
		s += " -> " + f.Result.String()
	}
	return s
}

// OptionFn returns the signature wrapped by Option<fn(...)>, if t is one.
func OptionFn(t Type) (*FnType, bool) {
	p, ok := t.(*PathType)
	if !ok || p.Last() != "Option" || len(p.Args) != 1 {
		return nil, false
	}
	fn, ok := p.Args[0].(*FnType)
	return fn, ok
}

// RenameTypes returns a copy of t with every path segment passed through fn.
func RenameTypes(t Type, fn func(string) string) Type {
	switch t := t.(type) {
	case *PathType:
		segs := make([]string, len(t.Segments))
		for i, s := range t.Segments {
			segs[i] = fn(s)
		}
		var args []Type
		for _, a := range t.Args {
			args = append(args, RenameTypes(a, fn))
		}
		return &PathType{Segments: segs, Args: args}
	case *PointerType:
		return &PointerType{Mut: t.Mut, Elem: RenameTypes(t.Elem, fn)}
	case *ArrayType:
		return &ArrayType{Elem: RenameTypes(t.Elem, fn), Len: t.Len}
	case *FnType:
		out := &FnType{}
		for _, p := range t.Params {
			out.Params = append(out.Params, Param{Name: p.Name, Type: RenameTypes(p.Type, fn)})
		}
		if t.Result != nil {
			out.Result = RenameTypes(t.Result, fn)
		}
		return out
	}
	return t
}

// TrimPathSuffix rewrites every multi-segment path ending in suffix to drop
// that segment, so Enum::Type refers to Enum itself.
func TrimPathSuffix(t Type, suffix string) Type {
	switch t := t.(type) {
	case *PathType:
		out := &PathType{Segments: t.Segments}
		if len(t.Segments) > 1 && t.Last() == suffix {
			out.Segments = t.Segments[:len(t.Segments)-1]
		}
		for _, a := range t.Args {
			out.Args = append(out.Args, TrimPathSuffix(a, suffix))
		}
		return out
	case *PointerType:
		return &PointerType{Mut: t.Mut, Elem: TrimPathSuffix(t.Elem, suffix)}
	case *ArrayType:
		return &ArrayType{Elem: TrimPathSuffix(t.Elem, suffix), Len: t.Len}
	case *FnType:
		out := &FnType{}
		for _, p := range t.Params {
			out.Params = append(out.Params, Param{Name: p.Name, Type: TrimPathSuffix(p.Type, suffix)})
		}
		if t.Result != nil {
			out.Result = TrimPathSuffix(t.Result, suffix)
		}
		return out
	}
	return t
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Expr is a constant value expression.
type Expr interface {
	exprNode()
	String() string
}

// IntLit is an integer literal with any type suffix removed.
type IntLit struct {
	Text string
}

// FloatLit is a float literal with any type suffix removed.
type FloatLit struct {
	Text string
}

// StringLit is a string literal; Value holds the decoded bytes.
type StringLit struct {
	Value string
}

// Ident references another constant, possibly through a path.
type Ident struct {
	Path []string
}

// Unary is -X or !X.
type Unary struct {
	Op string
	X  Expr
}

// Binary is X op Y.
type Binary struct {
	Op   string
	X, Y Expr
}

// Paren is (X).
type Paren struct {
	X Expr
}

func (*IntLit) exprNode()    {}
func (*FloatLit) exprNode()  {}
func (*StringLit) exprNode() {}
func (*Ident) exprNode()     {}
func (*Unary) exprNode()     {}
func (*Binary) exprNode()    {}
func (*Paren) exprNode()     {}

func (e *IntLit) String() string    { return e.Text }
func (e *FloatLit) String() string  { return e.Text }
func (e *StringLit) String() string { return fmt.Sprintf("%q", e.Value) }
func (e *Ident) String() string     { return strings.Join(e.Path, "::") }
func (e *Unary) String() string     { return e.Op + e.X.String() }
func (e *Binary) String() string    { return e.X.String() + " " + e.Op + " " + e.Y.String() }
func (e *Paren) String() string     { return "(" + e.X.String() + ")" }

// Name returns the last path segment.
func (e *Ident) Name() string {
	return e.Path[len(e.Path)-1]
}
