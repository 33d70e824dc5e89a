package emit

import (
	"go/token"
	"strconv"
	"strings"

	"github.com/chazu/vkbind/defs"
	"github.com/chazu/vkbind/normalize"
)

// reservedIdents are identifiers generated code uses for itself.
var reservedIdents = map[string]bool{
	"ffi": true, "unsafe": true, "vkrt": true, "strconv": true,
	"ret": true, "tbl": true, "policy": true, "resolver": true,
}

// FieldName returns the exported Go name of a struct field. Padding fields
// (leading underscore) become blank.
func FieldName(name string) string {
	if strings.HasPrefix(name, "_") {
		return "_"
	}
	return normalize.Camel(name)
}

// ParamName returns a lowerCamel parameter name that is neither a Go
// keyword nor an identifier the generated code uses itself.
func ParamName(name string) string {
	n := normalize.LowerCamel(name)
	if n == "" || n == "_" {
		return "arg"
	}
	if token.IsKeyword(n) || reservedIdents[n] {
		return n + "_"
	}
	return n
}

// MemberName returns the Go constant name of an enum member.
func MemberName(e *defs.Enum, m defs.EnumMember) string {
	return e.Name + normalize.Camel(m.Name)
}

// ConstName returns the Go name of a named constant.
func ConstName(name string) string {
	return normalize.Camel(name)
}

// paramNames assigns unique names to a parameter list, naming unnamed
// parameters after their position.
func paramNames(params []string) []string {
	out := make([]string, len(params))
	seen := map[string]bool{}
	for i, p := range params {
		n := "arg" + strconv.Itoa(i)
		if p != "" {
			n = ParamName(p)
		}
		base := n
		for k := 1; seen[n]; k++ {
			n = base + strings.Repeat("_", k)
		}
		seen[n] = true
		out[i] = n
	}
	return out
}
