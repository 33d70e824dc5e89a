package emit

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/vkbind/decl"
	"github.com/chazu/vkbind/defs"
	"github.com/chazu/vkbind/xref"
)

// typer maps declaration types to Go type expressions.
type typer struct {
	x        *xref.Index
	warnings *[]string
}

func (g *typer) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Warning(msg)
	*g.warnings = append(*g.warnings, msg)
}

func (g *typer) goType(t decl.Type) (*jen.Statement, error) {
	switch t := t.(type) {
	case *decl.PointerType:
		switch g.x.ClassOf(t.Elem) {
		case xref.ClassVoid, xref.ClassUnknown:
			return jen.Qual("unsafe", "Pointer"), nil
		}
		elem, err := g.goType(t.Elem)
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(elem), nil

	case *decl.ArrayType:
		elem, err := g.goType(t.Elem)
		if err != nil {
			return nil, err
		}
		n, err := g.x.Eval(t.Len, nil)
		if err != nil {
			g.warnf("unresolved array length %s: %v", t.Len, err)
			length, lerr := g.constExpr(t.Len, nil, nil)
			if lerr != nil {
				return nil, fmt.Errorf("array length %s: %w", t.Len, err)
			}
			return jen.Index(length).Add(elem), nil
		}
		return jen.Index(jen.Lit(int(n))).Add(elem), nil

	case *decl.FnType:
		return jen.Uintptr(), nil

	case *decl.PathType:
		if _, ok := decl.OptionFn(t); ok {
			return jen.Uintptr(), nil
		}
		name := t.Last()
		if p, ok := xref.LookupPrimitive(name); ok {
			return jen.Id(p.GoType), nil
		}
		if name == xref.VoidName {
			return nil, fmt.Errorf("%s used as a value type", name)
		}
		if g.x.ClassOf(t) == xref.ClassUnknown {
			return nil, fmt.Errorf("unknown type %s", t)
		}
		return jen.Id(name), nil
	}
	return nil, fmt.Errorf("unsupported type %s", t)
}

// resultType returns nil for void.
func (g *typer) resultType(t decl.Type) (*jen.Statement, error) {
	if t == nil || g.x.ClassOf(t) == xref.ClassVoid {
		return nil, nil
	}
	return g.goType(t)
}

// underlying returns the Go integer type of an enum.
func (g *typer) underlying(e *defs.Enum) (string, error) {
	p, ok := xref.LookupPrimitive(g.x.Resolve(e.Type).String())
	if !ok || p.Float {
		return "", fmt.Errorf("enum %s has non-integer type %s", e.Name, e.Type)
	}
	return p.GoType, nil
}

// constExpr renders a constant expression as Go. typ is the constant's Go
// type, used to spell bitwise complement; scope resolves enum siblings.
func (g *typer) constExpr(e decl.Expr, typ *jen.Statement, scope *defs.Enum) (*jen.Statement, error) {
	switch e := e.(type) {
	case *decl.IntLit:
		return jen.Op(goIntLiteral(e.Text)), nil
	case *decl.FloatLit:
		return jen.Op(e.Text), nil
	case *decl.StringLit:
		return jen.Lit(e.Value), nil
	case *decl.Paren:
		inner, err := g.constExpr(e.X, typ, scope)
		if err != nil {
			return nil, err
		}
		return jen.Parens(inner), nil
	case *decl.Unary:
		inner, err := g.constExpr(e.X, typ, scope)
		if err != nil {
			return nil, err
		}
		if e.Op == "!" {
			if typ == nil {
				return jen.Op("^").Parens(inner), nil
			}
			return jen.Op("^").Add(typ.Clone()).Parens(inner), nil
		}
		return jen.Op(e.Op).Add(inner), nil
	case *decl.Binary:
		x, err := g.constExpr(e.X, typ, scope)
		if err != nil {
			return nil, err
		}
		y, err := g.constExpr(e.Y, typ, scope)
		if err != nil {
			return nil, err
		}
		// operator precedence differs between the languages
		if _, ok := e.X.(*decl.Binary); ok {
			x = jen.Parens(x)
		}
		if _, ok := e.Y.(*decl.Binary); ok {
			y = jen.Parens(y)
		}
		return x.Op(e.Op).Add(y), nil
	case *decl.Ident:
		return g.identExpr(e.Name(), scope)
	}
	return nil, fmt.Errorf("cannot render %v", e)
}

func (g *typer) identExpr(name string, scope *defs.Enum) (*jen.Statement, error) {
	if scope != nil {
		for _, m := range scope.Members {
			if m.Raw == name {
				return jen.Id(MemberName(scope, m)), nil
			}
		}
	}
	if _, ok := g.x.Const(name); ok {
		return jen.Id(ConstName(name)), nil
	}
	for _, e := range g.x.Model.Enums {
		for _, m := range e.Members {
			if m.Raw == name {
				return jen.Id(MemberName(e, m)), nil
			}
		}
	}
	return nil, fmt.Errorf("undefined constant %s", name)
}

// goIntLiteral rewrites decimal literals with leading zeros, which Go
// would read as octal.
func goIntLiteral(text string) string {
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		return text
	}
	trimmed := strings.TrimLeft(text, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
