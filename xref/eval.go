package xref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/vkbind/decl"
	"github.com/chazu/vkbind/defs"
)

// Eval computes an integer constant expression. Identifiers resolve first
// against the raw member names of scope, when given, then against named
// constants, then against enum members anywhere in the model.
func (x *Index) Eval(e decl.Expr, scope *defs.Enum) (int64, error) {
	return x.eval(e, scope, map[string]bool{})
}

func (x *Index) eval(e decl.Expr, scope *defs.Enum, visiting map[string]bool) (int64, error) {
	switch e := e.(type) {
	case *decl.IntLit:
		return ParseInt(e.Text)

	case *decl.Paren:
		return x.eval(e.X, scope, visiting)

	case *decl.Unary:
		v, err := x.eval(e.X, scope, visiting)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case "-":
			return -v, nil
		case "!":
			return ^v, nil
		}
		return 0, fmt.Errorf("unknown unary operator %q", e.Op)

	case *decl.Binary:
		a, err := x.eval(e.X, scope, visiting)
		if err != nil {
			return 0, err
		}
		b, err := x.eval(e.Y, scope, visiting)
		if err != nil {
			return 0, err
		}
		return binary(e.Op, a, b)

	case *decl.Ident:
		return x.evalIdent(e.Name(), scope, visiting)

	case *decl.FloatLit:
		return 0, fmt.Errorf("%s is not an integer", e)
	case *decl.StringLit:
		return 0, fmt.Errorf("string %s is not an integer", e)
	}
	return 0, fmt.Errorf("cannot evaluate %v", e)
}

func binary(op string, a, b int64) (int64, error) {
	switch op {
	case "|":
		return a | b, nil
	case "&":
		return a & b, nil
	case "^":
		return a ^ b, nil
	case "<<":
		if b < 0 || b > 63 {
			return 0, fmt.Errorf("shift count %d out of range", b)
		}
		return a << uint(b), nil
	case ">>":
		if b < 0 || b > 63 {
			return 0, fmt.Errorf("shift count %d out of range", b)
		}
		return a >> uint(b), nil
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	}
	return 0, fmt.Errorf("unknown operator %q", op)
}

func (x *Index) evalIdent(name string, scope *defs.Enum, visiting map[string]bool) (int64, error) {
	if visiting[name] {
		return 0, fmt.Errorf("constant %s refers to itself", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	if scope != nil {
		if m, ok := findRaw(scope, name); ok {
			return x.eval(m.Value, scope, visiting)
		}
	}
	if c, ok := x.consts[name]; ok {
		return x.eval(c.Value, nil, visiting)
	}
	for _, en := range x.Model.Enums {
		if m, ok := findRaw(en, name); ok {
			return x.eval(m.Value, en, visiting)
		}
	}
	return 0, fmt.Errorf("undefined constant %s", name)
}

func findRaw(e *defs.Enum, raw string) (defs.EnumMember, bool) {
	for _, m := range e.Members {
		if m.Raw == raw {
			return m, true
		}
	}
	return defs.EnumMember{}, false
}

// ParseInt parses an integer literal. Literals without a radix prefix are
// decimal even with leading zeros; values above MaxInt64 keep their bit
// pattern.
func ParseInt(text string) (int64, error) {
	base := 10
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		base = 0
	}
	if v, err := strconv.ParseInt(text, base, 64); err == nil {
		return v, nil
	}
	u, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", text)
	}
	return int64(u), nil
}
