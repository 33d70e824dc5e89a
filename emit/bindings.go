// Package emit renders a classified model as Go source: the data
// definitions that mirror the C layout, and the per-scope dispatch tables
// that call into the native library.
package emit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/tliron/commonlog"

	"github.com/chazu/vkbind/decl"
	"github.com/chazu/vkbind/defs"
	"github.com/chazu/vkbind/normalize"
	"github.com/chazu/vkbind/vkrt"
	"github.com/chazu/vkbind/xref"
)

var log = commonlog.GetLogger("vkgen.emit")

// GeneratedHeader starts every emitted file.
const GeneratedHeader = "Code generated by vkgen. DO NOT EDIT."

// Result holds rendered source and the warnings raised while rendering it.
type Result struct {
	Code     []byte
	Warnings []string
}

// BindingsOptions controls Bindings.
type BindingsOptions struct {
	Package string
	// Digest is recorded in the header; see defs.Digest.
	Digest string
	// APIVersions get an APIVersion<major>_<minor> constant each.
	APIVersions []vkrt.Version
}

type bindingsGen struct {
	typer
	m        *defs.Model
	f        *jen.File
	declared map[string]bool
	warnings []string

	parseErrorDone bool
}

// Bindings renders the data definitions of m.
func Bindings(m *defs.Model, x *xref.Index, opts BindingsOptions) (*Result, error) {
	g := &bindingsGen{m: m, declared: map[string]bool{}}
	g.typer = typer{x: x, warnings: &g.warnings}

	g.f = jen.NewFile(opts.Package)
	g.f.HeaderComment(GeneratedHeader)
	if opts.Digest != "" {
		g.f.HeaderComment("Model digest: " + opts.Digest)
	}

	for _, e := range m.Enums {
		if err := g.enum(e); err != nil {
			return nil, err
		}
	}
	for _, c := range m.Consts {
		if err := g.constant(c); err != nil {
			return nil, err
		}
	}
	for _, s := range m.Structs {
		if err := g.structure(s); err != nil {
			return nil, err
		}
	}
	for _, u := range m.Unions {
		if err := g.union(u); err != nil {
			return nil, err
		}
	}
	for _, h := range m.Handles {
		g.handle(h)
	}
	for _, fp := range m.FnPointers {
		if err := g.fnPointer(fp); err != nil {
			return nil, err
		}
	}
	for _, a := range m.Aliases {
		if err := g.alias(a); err != nil {
			return nil, err
		}
	}
	g.versions(opts.APIVersions)

	var buf bytes.Buffer
	if err := g.f.Render(&buf); err != nil {
		return nil, fmt.Errorf("emit: render bindings: %w", err)
	}
	log.Debugf("rendered bindings: %d bytes, %d warnings", buf.Len(), len(g.warnings))
	return &Result{Code: buf.Bytes(), Warnings: g.warnings}, nil
}

// declare claims a top-level Go name, warning on collisions.
func (g *bindingsGen) declare(name, what string) bool {
	if g.declared[name] {
		g.warnf("skipping %s %s: name already declared", what, name)
		return false
	}
	g.declared[name] = true
	return true
}

// ---------------------------------------------------------------------------
// Enums
// ---------------------------------------------------------------------------

func (g *bindingsGen) enum(e *defs.Enum) error {
	if !g.declare(e.Name, "enum") {
		return nil
	}
	under, err := g.underlying(e)
	if err != nil {
		return err
	}
	g.f.Type().Id(e.Name).Id(under)

	var values []enumValue
	var consts []jen.Code
	for _, m := range e.Members {
		goName := MemberName(e, m)
		if g.declared[goName] {
			g.warnf("skipping duplicate member %s of %s", m.Name, e.Name)
			continue
		}
		v, err := g.x.Eval(m.Value, e)
		if err != nil {
			return fmt.Errorf("emit: %s.%s: %w", e.Name, m.Name, err)
		}
		g.declared[goName] = true
		consts = append(consts, jen.Id(goName).Id(e.Name).Op("=").Op(formatValue(v, under, e.Bitmask)))
		values = append(values, enumValue{goName, m.Name, v})
	}
	if len(consts) > 0 {
		g.f.Const().Defs(consts...)
	}
	g.f.Line()

	recv := jen.Id("e").Id(e.Name)
	switch {
	case e.Bitmask:
		g.bitmaskMethods(e.Name)
	case len(values) > 0:
		var cases []jen.Code
		seen := map[int64]bool{}
		for _, v := range values {
			if seen[v.v] {
				continue
			}
			seen[v.v] = true
			cases = append(cases, jen.Case(jen.Id(v.goName)).Block(jen.Return(jen.Lit(displayName(v.raw)))))
		}
		cases = append(cases, jen.Default().Block(jen.Return(
			jen.Lit(e.Name+"(").Op("+").Qual("strconv", "FormatInt").Call(jen.Int64().Call(jen.Id("e")), jen.Lit(10)).Op("+").Lit(")"),
		)))
		g.f.Func().Params(recv).Id("String").Params().String().Block(jen.Switch(jen.Id("e")).Block(cases...))
		g.f.Line()
		g.parseFunc(e, values)
	}

	if e.Name == g.x.Dialect.StatusEnum {
		g.statusMethods(e, values)
	}
	return nil
}

// parseFunc emits Parse<Enum>, the inverse of String over member names.
func (g *bindingsGen) parseFunc(e *defs.Enum, values []enumValue) {
	if !g.declare("Parse"+e.Name, "parser") {
		return
	}
	if !g.parseErrorDone {
		g.parseErrorDone = true
		g.parseError()
	}
	var cases []jen.Code
	for _, v := range values {
		cases = append(cases, jen.Case(jen.Lit(displayName(v.raw))).Block(jen.Return(jen.Id(v.goName), jen.Nil())))
	}
	g.f.Commentf("Parse%s returns the member of %s named s.", e.Name, e.Name)
	g.f.Func().Id("Parse"+e.Name).Params(jen.Id("s").String()).Params(jen.Id(e.Name), jen.Error()).Block(
		jen.Switch(jen.Id("s")).Block(cases...),
		jen.Return(jen.Lit(0), jen.Op("&").Id(parseErrorType).Values(jen.Dict{
			jen.Id("Enum"):  jen.Lit(e.Name),
			jen.Id("Value"): jen.Id("s"),
		})),
	)
	g.f.Line()
}

const parseErrorType = "ParseEnumError"

func (g *bindingsGen) parseError() {
	if !g.declare(parseErrorType, "type") {
		return
	}
	g.f.Commentf("%s reports a name that is not a member of an enum.", parseErrorType)
	g.f.Type().Id(parseErrorType).Struct(
		jen.Id("Enum").String(),
		jen.Id("Value").String(),
	)
	g.f.Line()
	g.f.Func().Params(jen.Id("e").Op("*").Id(parseErrorType)).Id("Error").Params().String().Block(
		jen.Return(jen.Lit("unknown ").Op("+").Id("e").Dot("Enum").Op("+").Lit(" member ").Op("+").Qual("strconv", "Quote").Call(jen.Id("e").Dot("Value"))),
	)
	g.f.Line()
}

// displayName drops the escape on members that start with a digit.
func displayName(member string) string {
	return strings.TrimPrefix(member, "_")
}

type enumValue struct {
	goName string
	raw    string
	v      int64
}

func formatValue(v int64, goType string, bitmask bool) string {
	switch goType {
	case "uint8":
		v = int64(uint8(v))
	case "uint16":
		v = int64(uint16(v))
	case "uint32":
		v = int64(uint32(v))
	}
	if goType == "uint64" || (bitmask && v >= 0) {
		return fmt.Sprintf("%#x", uint64(v))
	}
	return fmt.Sprintf("%d", v)
}

func (g *bindingsGen) bitmaskMethods(name string) {
	recv := func() *jen.Statement { return jen.Id("f").Id(name) }
	other := func() *jen.Statement { return jen.Id("o").Id(name) }

	g.f.Comment("IsEmpty reports whether no bit is set.")
	g.f.Func().Params(recv()).Id("IsEmpty").Params().Bool().Block(
		jen.Return(jen.Id("f").Op("==").Lit(0)),
	)
	g.f.Comment("Intersects reports whether f and o share a bit.")
	g.f.Func().Params(recv()).Id("Intersects").Params(other()).Bool().Block(
		jen.Return(jen.Id("f").Op("&").Id("o").Op("!=").Lit(0)),
	)
	g.f.Comment("Contains reports whether every bit of o is set in f.")
	g.f.Func().Params(recv()).Id("Contains").Params(other()).Bool().Block(
		jen.Return(jen.Id("f").Op("&").Id("o").Op("==").Id("o")),
	)
	for _, op := range []struct{ name, op string }{{"And", "&"}, {"Or", "|"}, {"Xor", "^"}} {
		g.f.Func().Params(recv()).Id(op.name).Params(other()).Id(name).Block(
			jen.Return(jen.Id("f").Op(op.op).Id("o")),
		)
	}
	g.f.Func().Params(recv()).Id("Not").Params().Id(name).Block(
		jen.Return(jen.Op("^").Id("f")),
	)
	g.f.Line()
}

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

func (g *bindingsGen) constant(c *defs.Const) error {
	name := ConstName(c.Name)
	if !g.declare(name, "constant") {
		return nil
	}
	if s, ok := c.Value.(*decl.StringLit); ok {
		g.f.Const().Id(name).Op("=").Lit(strings.TrimSuffix(s.Value, "\x00"))
		return nil
	}
	typ, err := g.goType(c.Type)
	if err != nil {
		return fmt.Errorf("emit: constant %s: %w", c.Name, err)
	}
	val, err := g.constExpr(c.Value, typ, nil)
	if err != nil {
		return fmt.Errorf("emit: constant %s: %w", c.Name, err)
	}
	g.f.Const().Id(name).Add(typ).Op("=").Add(val)
	return nil
}

// ---------------------------------------------------------------------------
// Structs and unions
// ---------------------------------------------------------------------------

func (g *bindingsGen) structure(s *defs.Struct) error {
	if !g.declare(s.Name, "struct") {
		return nil
	}
	fields := make([]jen.Code, 0, len(s.Members))
	for _, m := range s.Members {
		typ, err := g.goType(m.Type)
		if err != nil {
			return fmt.Errorf("emit: %s.%s: %w", s.Name, m.Name, err)
		}
		fields = append(fields, jen.Id(FieldName(m.Name)).Add(typ))
	}
	g.f.Type().Id(s.Name).Struct(fields...)
	g.f.Line()

	if !g.declare("New"+s.Name, "constructor") {
		return nil
	}
	g.f.Commentf("New%s returns the default %s.", s.Name, s.Name)
	body, err := g.structDefaults(s)
	if err != nil {
		return err
	}
	g.f.Func().Id("New" + s.Name).Params().Id(s.Name).Block(body...)
	g.f.Line()
	return nil
}

func (g *bindingsGen) structDefaults(s *defs.Struct) ([]jen.Code, error) {
	tag, tagged := g.x.Tag(s.Name)
	var stmts []jen.Code
	for _, m := range s.Members {
		field := FieldName(m.Name)
		if field == "_" {
			continue
		}
		if tagged && m.Name == g.x.Dialect.DiscriminatorField {
			kind, ok := g.x.Enum(g.x.Dialect.KindEnum)
			if !ok {
				continue
			}
			var member defs.EnumMember
			for _, km := range kind.Members {
				if km.Name == tag {
					member = km
				}
			}
			stmts = append(stmts, jen.Id("v").Dot(field).Op("=").Id(MemberName(kind, member)))
			continue
		}
		if g.x.NeedsInit(m.Type) {
			stmts = append(stmts, g.initValue(jen.Id("v").Dot(field), m.Type, 0)...)
		}
	}
	if len(stmts) == 0 {
		return []jen.Code{jen.Return(jen.Id(s.Name).Values())}, nil
	}
	body := []jen.Code{jen.Var().Id("v").Id(s.Name)}
	body = append(body, stmts...)
	return append(body, jen.Return(jen.Id("v"))), nil
}

// initValue assigns the default of t to target, looping over arrays.
func (g *bindingsGen) initValue(target *jen.Statement, t decl.Type, depth int) []jen.Code {
	switch t := g.x.Resolve(t).(type) {
	case *decl.ArrayType:
		i := fmt.Sprintf("i%d", depth)
		elem := target.Clone().Index(jen.Id(i))
		return []jen.Code{
			jen.For(jen.Id(i).Op(":=").Range().Add(target.Clone())).Block(g.initValue(elem, t.Elem, depth+1)...),
		}
	case *decl.PathType:
		return []jen.Code{target.Clone().Op("=").Id("New" + t.Last()).Call()}
	}
	return nil
}

func (g *bindingsGen) union(u *defs.Union) error {
	if !g.declare(u.Name, "union") {
		return nil
	}
	size, align, err := g.x.Layout(decl.Named(u.Name))
	if err != nil {
		return fmt.Errorf("emit: union %s: %w", u.Name, err)
	}
	g.f.Commentf("%s is a C union; members share storage and are reached through accessors.", u.Name)
	g.f.Type().Id(u.Name).Struct(
		jen.Id("_").Index(jen.Lit(0)).Id(alignType(align)),
		jen.Id("raw").Index(jen.Lit(int(size))).Byte(),
	)
	g.f.Line()

	recv := func() *jen.Statement { return jen.Id("u").Op("*").Id(u.Name) }
	var members []defs.Member
	for _, m := range u.Members {
		if strings.HasPrefix(m.Name, "_") {
			continue
		}
		acc := normalize.Camel(m.Name)
		if acc == "String" || acc == "Equal" || acc == "Hash" || acc == "" {
			g.warnf("skipping accessor %s of union %s", m.Name, u.Name)
			continue
		}
		typ, err := g.goType(m.Type)
		if err != nil {
			return fmt.Errorf("emit: %s.%s: %w", u.Name, m.Name, err)
		}
		g.f.Func().Params(recv()).Id(acc).Params().Op("*").Add(typ.Clone()).Block(
			jen.Return(jen.Parens(jen.Op("*").Add(typ.Clone())).Call(
				jen.Qual("unsafe", "Pointer").Call(jen.Op("&").Id("u").Dot("raw")),
			)),
		)
		g.f.Func().Params(recv()).Id("Set" + acc).Params(jen.Id("v").Add(typ.Clone())).Block(
			jen.Op("*").Id("u").Dot(acc).Call().Op("=").Id("v"),
		)
		members = append(members, m)
	}

	g.f.Func().Params(jen.Id("u").Id(u.Name)).Id("String").Params().String().Block(
		jen.Return(jen.Lit(u.Name + " { (union) }")),
	)
	g.f.Comment("Equal compares the raw storage.")
	g.f.Func().Params(recv()).Id("Equal").Params(jen.Id("o").Op("*").Id(u.Name)).Bool().Block(
		jen.Return(jen.Id("u").Dot("raw").Op("==").Id("o").Dot("raw")),
	)
	g.f.Comment("Hash returns the FNV-1a hash of the raw storage.")
	g.f.Func().Params(recv()).Id("Hash").Params().Uint64().Block(
		jen.Id("h").Op(":=").Lit(uint64(14695981039346656037)),
		jen.For(jen.List(jen.Id("_"), jen.Id("b")).Op(":=").Range().Id("u").Dot("raw")).Block(
			jen.Id("h").Op("^=").Uint64().Call(jen.Id("b")),
			jen.Id("h").Op("*=").Lit(1099511628211),
		),
		jen.Return(jen.Id("h")),
	)
	g.f.Line()

	if !g.declare("New"+u.Name, "constructor") {
		return nil
	}
	var body []jen.Code
	if len(members) > 0 && g.x.NeedsInit(members[0].Type) {
		first := members[0]
		body = append(body, jen.Var().Id("u").Id(u.Name))
		target := jen.Parens(jen.Op("*").Id("u").Dot(normalize.Camel(first.Name)).Call())
		body = append(body, g.initValue(target, first.Type, 0)...)
		body = append(body, jen.Return(jen.Id("u")))
	} else {
		body = append(body, jen.Return(jen.Id(u.Name).Values()))
	}
	g.f.Func().Id("New" + u.Name).Params().Id(u.Name).Block(body...)
	g.f.Line()
	return nil
}

func alignType(align int64) string {
	switch align {
	case 8:
		return "uint64"
	case 4:
		return "uint32"
	case 2:
		return "uint16"
	}
	return "uint8"
}

// ---------------------------------------------------------------------------
// Handles, function pointers, aliases
// ---------------------------------------------------------------------------

func (g *bindingsGen) handle(h *defs.Handle) {
	if !g.declare(h.Name, "handle") {
		return
	}
	null := "Null" + h.Name
	if h.Dispatchable {
		backing := h.Name + "T"
		g.declare(backing, "handle backing type")
		g.f.Commentf("%s is the opaque object a %s points to.", backing, h.Name)
		g.f.Type().Id(backing).Struct(jen.Id("_").Index(jen.Lit(0)).Byte())
		g.f.Type().Id(h.Name).Struct(jen.Id("p").Op("*").Id(backing))
		g.f.Func().Params(jen.Id("h").Id(h.Name)).Id("IsNull").Params().Bool().Block(
			jen.Return(jen.Id("h").Dot("p").Op("==").Nil()),
		)
		g.f.Func().Params(jen.Id("h").Id(h.Name)).Id("Raw").Params().Uintptr().Block(
			jen.Return(jen.Uintptr().Call(jen.Qual("unsafe", "Pointer").Call(jen.Id("h").Dot("p")))),
		)
		g.f.Func().Id(null).Params().Id(h.Name).Block(jen.Return(jen.Id(h.Name).Values()))
	} else {
		g.f.Type().Id(h.Name).Uint64()
		g.f.Func().Params(jen.Id("h").Id(h.Name)).Id("IsNull").Params().Bool().Block(
			jen.Return(jen.Id("h").Op("==").Lit(0)),
		)
		g.f.Func().Id(null).Params().Id(h.Name).Block(jen.Return(jen.Lit(0)))
	}
	g.declared[null] = true
	g.f.Line()
}

func (g *bindingsGen) fnPointer(fp *defs.FnPointer) error {
	if !g.declare(fp.PfnName(), "function pointer") || !g.declare(fp.FnName(), "function type") {
		return nil
	}
	params, result, err := g.signature(fp.Signature)
	if err != nil {
		return fmt.Errorf("emit: %s: %w", fp.Raw, err)
	}
	sig := jen.Type().Id(fp.FnName()).Func().Params(params...)
	if result != nil {
		sig.Add(result)
	}
	g.f.Add(sig)
	g.f.Type().Id(fp.PfnName()).Uintptr()
	g.f.Func().Params(jen.Id("p").Id(fp.PfnName())).Id("IsNull").Params().Bool().Block(
		jen.Return(jen.Id("p").Op("==").Lit(0)),
	)
	g.f.Line()
	return nil
}

func (g *typer) signature(fn *decl.FnType) ([]jen.Code, *jen.Statement, error) {
	names := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		names[i] = p.Name
	}
	names = paramNames(names)
	params := make([]jen.Code, len(fn.Params))
	for i, p := range fn.Params {
		typ, err := g.goType(p.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("parameter %s: %w", names[i], err)
		}
		params[i] = jen.Id(names[i]).Add(typ)
	}
	result, err := g.resultType(fn.Result)
	if err != nil {
		return nil, nil, fmt.Errorf("result: %w", err)
	}
	return params, result, nil
}

func (g *bindingsGen) alias(a *defs.TypeAlias) error {
	if !g.declare(a.Name, "alias") {
		return nil
	}
	typ, err := g.goType(a.Target)
	if err != nil {
		return fmt.Errorf("emit: alias %s: %w", a.Name, err)
	}
	g.f.Type().Id(a.Name).Op("=").Add(typ)
	return nil
}

// ---------------------------------------------------------------------------
// Version helpers
// ---------------------------------------------------------------------------

func (g *bindingsGen) versions(versions []vkrt.Version) {
	if !g.declare("MakeAPIVersion", "version helper") {
		return
	}
	g.f.Line()
	g.f.Comment("MakeAPIVersion packs a version number the way the API expects it.")
	g.f.Func().Id("MakeAPIVersion").Params(jen.List(jen.Id("major"), jen.Id("minor"), jen.Id("patch")).Uint32()).Uint32().Block(
		jen.Return(jen.Id("major").Op("<<").Lit(22).Op("|").Id("minor").Op("<<").Lit(12).Op("|").Id("patch")),
	)
	g.f.Func().Id("APIVersionMajor").Params(jen.Id("v").Uint32()).Uint32().Block(
		jen.Return(jen.Id("v").Op(">>").Lit(22)),
	)
	g.f.Func().Id("APIVersionMinor").Params(jen.Id("v").Uint32()).Uint32().Block(
		jen.Return(jen.Id("v").Op(">>").Lit(12).Op("&").Lit(0x3ff)),
	)
	g.f.Func().Id("APIVersionPatch").Params(jen.Id("v").Uint32()).Uint32().Block(
		jen.Return(jen.Id("v").Op("&").Lit(0xfff)),
	)

	var consts []jen.Code
	for _, v := range versions {
		name := fmt.Sprintf("APIVersion%d_%d", v.Major(), v.Minor())
		if !g.declare(name, "version constant") {
			continue
		}
		consts = append(consts, jen.Id(name).Uint32().Op("=").Lit(int(v)))
	}
	if len(consts) > 0 {
		g.f.Const().Defs(consts...)
	}
}
