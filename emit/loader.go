package emit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/vkbind/config"
	"github.com/chazu/vkbind/decl"
	"github.com/chazu/vkbind/defs"
	"github.com/chazu/vkbind/vkrt"
	"github.com/chazu/vkbind/xref"
)

const ffiImport = "github.com/jupiterrider/ffi"

// LoaderOptions controls Loader.
type LoaderOptions struct {
	Package string
	Digest  string
	// RuntimeImport is the import path of the vkrt package.
	RuntimeImport string
}

type loaderGen struct {
	typer
	f        *jen.File
	rt       string
	descDone map[string]bool
	descs    []jen.Code
	warnings []string
}

// call is one command ready to render.
type call struct {
	cmd     Command
	params  []jen.Code // wrapper parameters, owner handle excluded
	args    []string   // wrapper parameter names in call order
	result  *jen.Statement
	class   xref.Class
	retArg  bool // result travels through ffi.Arg
	retBool bool
	ffiRet  jen.Code
	ffiArgs []jen.Code
}

// Loader renders the dispatch tables of plans. Each table gets a struct of
// vkrt.Command slots, Load functions that resolve every slot, and one
// wrapper method per command.
func Loader(plans []TablePlan, m *defs.Model, x *xref.Index, opts LoaderOptions) (*Result, error) {
	g := &loaderGen{descDone: map[string]bool{}, rt: opts.RuntimeImport}
	g.typer = typer{x: x, warnings: &g.warnings}
	if g.rt == "" {
		g.rt = config.DefaultRuntimeImport
	}

	g.f = jen.NewFile(opts.Package)
	g.f.HeaderComment(GeneratedHeader)
	if opts.Digest != "" {
		g.f.HeaderComment("Model digest: " + opts.Digest)
	}

	tables := make([][]*call, len(plans))
	for i, plan := range plans {
		if plan.Handle != "" {
			if x.ClassOf(decl.Named(plan.Handle)) != xref.ClassHandle {
				return nil, fmt.Errorf("emit: table %s: %s is not a dispatchable handle", plan.Name, plan.Handle)
			}
		}
		for _, cmd := range plan.Commands {
			c, err := g.prepare(cmd)
			if err != nil {
				if plan.Core {
					return nil, fmt.Errorf("emit: %s.%s: %w", plan.Name, cmd.GoName, err)
				}
				g.warnf("skipping %s of %s: %v", cmd.Symbol, plan.Name, err)
				continue
			}
			tables[i] = append(tables[i], c)
		}
	}

	if len(g.descs) > 0 {
		g.f.Var().Defs(g.descs...)
		g.f.Line()
	}
	for i, plan := range plans {
		g.table(plan, tables[i])
	}

	var buf bytes.Buffer
	if err := g.f.Render(&buf); err != nil {
		return nil, fmt.Errorf("emit: render loader: %w", err)
	}
	log.Debugf("rendered loader: %d tables, %d warnings", len(plans), len(g.warnings))
	return &Result{Code: buf.Bytes(), Warnings: g.warnings}, nil
}

func (g *loaderGen) prepare(cmd Command) (*call, error) {
	fn := cmd.Fn.Signature
	raw := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		raw[i] = p.Name
	}
	names := paramNames(raw)

	c := &call{cmd: cmd}
	for i, p := range fn.Params {
		ft, err := g.ffiType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", names[i], err)
		}
		c.ffiArgs = append(c.ffiArgs, ft)
		if i == 0 && cmd.TakesHandle {
			continue
		}
		typ, err := g.goType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", names[i], err)
		}
		c.params = append(c.params, jen.Id(names[i]).Add(typ))
		c.args = append(c.args, names[i])
	}

	result, err := g.resultType(fn.Result)
	if err != nil {
		return nil, fmt.Errorf("result: %w", err)
	}
	c.result = result
	if result == nil {
		c.ffiRet = jen.Op("&").Qual(ffiImport, "TypeVoid")
		return c, nil
	}
	if c.ffiRet, err = g.ffiType(fn.Result); err != nil {
		return nil, fmt.Errorf("result: %w", err)
	}
	c.class = g.x.ClassOf(fn.Result)
	switch c.class {
	case xref.ClassPrimitive, xref.ClassEnum, xref.ClassBitmask:
		p, ok := g.scalar(fn.Result)
		if ok && !p.Float && p.Size <= 4 {
			c.retArg = true
			c.retBool = p.Name == "bool"
		}
	}
	return c, nil
}

// scalar returns the primitive behind a primitive or enum type.
func (g *loaderGen) scalar(t decl.Type) (xref.Primitive, bool) {
	r := g.x.Resolve(t)
	p, ok := r.(*decl.PathType)
	if !ok {
		return xref.Primitive{}, false
	}
	if e, ok := g.x.Enum(p.Last()); ok {
		return xref.LookupPrimitive(g.x.Resolve(e.Type).String())
	}
	return xref.LookupPrimitive(p.Last())
}

// ffiType returns the libffi descriptor expression of a value of type t.
func (g *loaderGen) ffiType(t decl.Type) (jen.Code, error) {
	ptr := func(name string) jen.Code { return jen.Op("&").Qual(ffiImport, name) }
	switch class := g.x.ClassOf(t); class {
	case xref.ClassPointer, xref.ClassFnPointer, xref.ClassHandle, xref.ClassArray:
		return ptr("TypePointer"), nil
	case xref.ClassNonDispatchable:
		return ptr("TypeUint64"), nil
	case xref.ClassVoid:
		return ptr("TypeVoid"), nil
	case xref.ClassPrimitive, xref.ClassEnum, xref.ClassBitmask:
		p, ok := g.scalar(t)
		if !ok {
			return nil, fmt.Errorf("no scalar type for %s", t)
		}
		return ptr(p.FFI), nil
	case xref.ClassStruct, xref.ClassUnion:
		name := g.x.Resolve(t).(*decl.PathType).Last()
		if err := g.descriptor(name, class == xref.ClassUnion); err != nil {
			return nil, err
		}
		return jen.Op("&").Id(descName(name)), nil
	}
	return nil, fmt.Errorf("unsupported type %s", t)
}

func descName(name string) string { return "ffiType" + name }

// descriptor declares the ffi.Type of an aggregate passed by value. Unions
// are described as a run of words matching their size and alignment.
func (g *loaderGen) descriptor(name string, union bool) error {
	if g.descDone[name] {
		return nil
	}
	g.descDone[name] = true

	var elems []jen.Code
	if union {
		size, align, err := g.x.Layout(decl.Named(name))
		if err != nil {
			return err
		}
		word := map[int64]string{1: "TypeUint8", 2: "TypeUint16", 4: "TypeUint32", 8: "TypeUint64"}[align]
		for i := int64(0); i < size/align; i++ {
			elems = append(elems, jen.Op("&").Qual(ffiImport, word))
		}
	} else {
		s, _ := g.x.Struct(name)
		for _, m := range s.Members {
			e, err := g.elements(m.Type)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", name, m.Name, err)
			}
			elems = append(elems, e...)
		}
	}
	g.descs = append(g.descs, jen.Id(descName(name)).Op("=").Qual(ffiImport, "NewType").Call(elems...))
	return nil
}

// elements lists the descriptor entries of one struct member; arrays
// contribute one entry per element.
func (g *loaderGen) elements(t decl.Type) ([]jen.Code, error) {
	if a, ok := g.x.Resolve(t).(*decl.ArrayType); ok {
		n, err := g.x.Eval(a.Len, nil)
		if err != nil {
			return nil, err
		}
		elem, err := g.elements(a.Elem)
		if err != nil {
			return nil, err
		}
		var out []jen.Code
		for i := int64(0); i < n; i++ {
			out = append(out, elem...)
		}
		return out, nil
	}
	e, err := g.ffiType(t)
	if err != nil {
		return nil, err
	}
	return []jen.Code{e}, nil
}

func (g *loaderGen) table(plan TablePlan, calls []*call) {
	level := plan.Level.String()
	g.f.Commentf("%s holds the %s-level commands of %s.", plan.Name, level, strings.Join(plan.Scopes, ", "))
	g.f.Type().Id(plan.Name).StructFunc(func(grp *jen.Group) {
		if plan.Handle != "" {
			grp.Id(plan.Handle).Id(plan.Handle)
		}
		for _, c := range calls {
			grp.Id(c.cmd.Fn.PfnName()).Qual(g.rt, "Command")
		}
	})
	g.f.Line()

	handleParam := ParamName(plan.Handle)
	var head []jen.Code
	var pass []jen.Code
	raw := jen.Lit(0)
	if plan.Handle != "" {
		head = append(head, jen.Id(handleParam).Id(plan.Handle))
		pass = append(pass, jen.Id(handleParam))
		raw = jen.Id(handleParam).Dot("Raw").Call()
	}
	resolver := jen.Id("resolver").Qual(g.rt, "Resolver")
	policy := jen.Qual(g.rt, "Strict")
	if plan.Policy == vkrt.Lenient {
		policy = jen.Qual(g.rt, "Lenient")
	}

	g.f.Commentf("Load%s resolves every command of %s with the %s policy.", plan.Name, plan.Name, plan.Policy)
	g.f.Func().Id("Load"+plan.Name).Params(append(head, resolver)...).Params(jen.Op("*").Id(plan.Name), jen.Error()).Block(
		jen.Return(jen.Id("Load"+plan.Name+"WithPolicy").Call(append(pass, jen.Id("resolver"), policy)...)),
	)
	g.f.Line()

	body := []jen.Code{jen.Id("tbl").Op(":=").Op("&").Id(plan.Name).Values()}
	if plan.Handle != "" {
		body[0] = jen.Id("tbl").Op(":=").Op("&").Id(plan.Name).Values(jen.Dict{jen.Id(plan.Handle): jen.Id(handleParam)})
	}
	if len(calls) > 0 {
		body = append(body, jen.Var().Id("err").Error())
	}
	for _, c := range calls {
		args := append([]jen.Code{jen.Id("resolver"), raw.Clone(), jen.Lit(c.cmd.Symbol), jen.Id("policy"), c.ffiRet}, c.ffiArgs...)
		body = append(body, jen.If(
			jen.List(jen.Id("tbl").Dot(c.cmd.Fn.PfnName()), jen.Id("err")).Op("=").Qual(g.rt, "Load").Call(args...),
			jen.Id("err").Op("!=").Nil(),
		).Block(jen.Return(jen.Nil(), jen.Id("err"))))
	}
	body = append(body, jen.Return(jen.Id("tbl"), jen.Nil()))

	g.f.Commentf("Load%sWithPolicy resolves every command of %s.", plan.Name, plan.Name)
	g.f.Func().Id("Load"+plan.Name+"WithPolicy").Params(append(head, resolver, jen.Id("policy").Qual(g.rt, "Policy"))...).
		Params(jen.Op("*").Id(plan.Name), jen.Error()).Block(body...)
	g.f.Line()

	for _, c := range calls {
		g.wrapper(plan, c)
	}
}

func (g *loaderGen) wrapper(plan TablePlan, c *call) {
	var args []jen.Code
	if c.result == nil {
		args = append(args, jen.Nil())
	} else {
		args = append(args, jen.Qual("unsafe", "Pointer").Call(jen.Op("&").Id("ret")))
	}
	if c.cmd.TakesHandle {
		args = append(args, jen.Qual("unsafe", "Pointer").Call(jen.Op("&").Id("tbl").Dot(plan.Handle)))
	}
	for _, a := range c.args {
		args = append(args, jen.Qual("unsafe", "Pointer").Call(jen.Op("&").Id(a)))
	}
	invoke := jen.Id("tbl").Dot(c.cmd.Fn.PfnName()).Dot("Call").Call(args...)

	var body []jen.Code
	switch {
	case c.result == nil:
		body = []jen.Code{invoke}
	case c.retArg:
		ret := c.result.Clone().Parens(jen.Id("ret"))
		if c.retBool {
			ret = jen.Id("ret").Op("!=").Lit(0)
		}
		body = []jen.Code{jen.Var().Id("ret").Qual(ffiImport, "Arg"), invoke, jen.Return(ret)}
	default:
		body = []jen.Code{jen.Var().Id("ret").Add(c.result.Clone()), invoke, jen.Return(jen.Id("ret"))}
	}

	g.f.Commentf("%s calls %s.", c.cmd.GoName, c.cmd.Symbol)
	fn := g.f.Func().Params(jen.Id("tbl").Op("*").Id(plan.Name)).Id(c.cmd.GoName).Params(c.params...)
	if c.result != nil {
		fn.Add(c.result.Clone())
	}
	fn.Block(body...)
	g.f.Line()
}
