// Package normalize renames registry identifiers from the C API's naming
// convention into the generator's: prefixes are stripped, functions and
// fields become lower_snake, types UpperCamel and constants SHOUTY_SNAKE.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chazu/vkbind/config"
	"github.com/chazu/vkbind/decl"
)

// Normalizer applies the dialect's renaming rules.
type Normalizer struct {
	d config.Dialect
}

// New returns a normalizer for the given dialect.
func New(d config.Dialect) *Normalizer {
	return &Normalizer{d: d.WithDefaults()}
}

// Trees renames every identifier in a token tree.
func (n *Normalizer) Trees(trees []decl.Tree) []decl.Tree {
	return decl.MapIdents(trees, n.Ident)
}

// Ident renames one identifier. Function-pointer type names are left for
// Deferred; escaped reserved words (trailing underscore) pass through.
func (n *Normalizer) Ident(s string) string {
	if rest, ok := stripBefore(s, n.d.MixedPrefix, unicode.IsUpper); ok {
		return Snake(rest)
	}
	if rest, ok := stripBefore(s, n.d.CamelPrefix, isUpperOrDigit); ok {
		return Camel(rest)
	}
	if rest, ok := stripBefore(s, n.d.ShoutyPrefix, nil); ok {
		return Shouty(rest)
	}
	if n.d.FnPointerPrefix != "" && strings.HasPrefix(s, n.d.FnPointerPrefix) {
		return s
	}

	first, _ := utf8.DecodeRuneInString(s)
	switch {
	case IsShouty(s):
		return Shouty(s)
	case unicode.IsUpper(first):
		return Camel(s)
	case unicode.IsLower(first) && !strings.HasSuffix(s, "_"):
		return Snake(s)
	}
	return s
}

// Deferred performs the second pass over function-pointer type names:
// PFN_vkCreateInstance becomes PfnCreateInstance. Other names are returned
// unchanged.
func (n *Normalizer) Deferred(s string) string {
	base, ok := n.FnPointerBase(s)
	if !ok {
		return s
	}
	return "Pfn" + base
}

// FnPointerBase strips the function-pointer prefix and returns the
// UpperCamel base name.
func (n *Normalizer) FnPointerBase(s string) (string, bool) {
	if n.d.FnPointerPrefix == "" || !strings.HasPrefix(s, n.d.FnPointerPrefix) || len(s) == len(n.d.FnPointerPrefix) {
		return "", false
	}
	return Camel(s[len(n.d.FnPointerPrefix):]), true
}

// CommandKey maps an API-level command name (vkCreateInstance) to the
// base name its function-pointer definition carries (CreateInstance).
func (n *Normalizer) CommandKey(command string) string {
	if rest, ok := stripBefore(command, n.d.MixedPrefix, nil); ok {
		return Camel(rest)
	}
	return Camel(command)
}

// stripBefore removes prefix from s when something follows it and, if next
// is non-nil, the first remaining rune satisfies it.
func stripBefore(s, prefix string, next func(rune) bool) (string, bool) {
	if prefix == "" || !strings.HasPrefix(s, prefix) || len(s) == len(prefix) {
		return "", false
	}
	rest := s[len(prefix):]
	if next != nil {
		r, _ := utf8.DecodeRuneInString(rest)
		if !next(r) {
			return "", false
		}
	}
	return rest, true
}

func isUpperOrDigit(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}
