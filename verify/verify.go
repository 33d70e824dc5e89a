// Package verify type-checks generated Go code, either from memory or as
// a package on disk.
package verify

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/tools/go/packages"
)

var log = commonlog.GetLogger("vkgen.verify")

// Problem is one parse or type error, attributed to the function that
// contains it.
type Problem struct {
	File     string
	Line     int
	Column   int
	Function string // empty at package level
	Receiver string
	Message  string
}

func (p Problem) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%d:%d: ", p.File, p.Line, p.Column)
	if p.Function != "" {
		if p.Receiver != "" {
			sb.WriteString("(" + p.Receiver + ")." + p.Function)
		} else {
			sb.WriteString(p.Function)
		}
		sb.WriteString(": ")
	}
	sb.WriteString(p.Message)
	return sb.String()
}

// Error joins problems into one error, or returns nil when there are none.
func Error(problems []Problem) error {
	if len(problems) == 0 {
		return nil
	}
	lines := make([]string, len(problems))
	for i, p := range problems {
		lines[i] = p.String()
	}
	return fmt.Errorf("%d problems:\n  %s", len(problems), strings.Join(lines, "\n  "))
}

// Source parses and type-checks one package given as file name to content.
// Imports are resolved from source, so only the standard library and
// packages of the enclosing module are reachable.
func Source(files map[string][]byte) (*types.Package, []Problem, error) {
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("verify: no files")
	}
	fset := token.NewFileSet()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var parsed []*ast.File
	var problems []Problem
	for _, name := range names {
		f, err := parser.ParseFile(fset, name, files[name], parser.AllErrors|parser.ParseComments)
		if err != nil {
			problems = append(problems, Problem{File: name, Line: 1, Column: 1, Message: err.Error()})
			continue
		}
		parsed = append(parsed, f)
	}
	if len(problems) > 0 {
		return nil, problems, nil
	}

	funcs := functionMap(fset, parsed)
	conf := types.Config{
		Importer: importer.ForCompiler(fset, "source", nil),
		Error: func(err error) {
			terr, ok := err.(types.Error)
			if !ok {
				return
			}
			problems = append(problems, problemAt(fset.Position(terr.Pos), terr.Msg, funcs))
		},
	}
	pkg, _ := conf.Check(parsed[0].Name.Name, fset, parsed, nil)
	log.Debugf("checked %d files, %d problems", len(parsed), len(problems))
	return pkg, problems, nil
}

// Dir loads the package in dir with its module and reports its errors.
func Dir(dir string) ([]Problem, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedFiles,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, fmt.Errorf("verify: loading %s: %w", dir, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("verify: no package found in %s", dir)
	}

	var problems []Problem
	for _, pkg := range pkgs {
		funcs := functionMap(pkg.Fset, pkg.Syntax)
		for _, e := range pkg.Errors {
			problems = append(problems, packageProblem(e, funcs))
		}
	}
	return problems, nil
}

func packageProblem(e packages.Error, funcs map[string]map[int]*function) Problem {
	// Pos is "file:line:col" or empty
	pos := token.Position{}
	parts := strings.Split(e.Pos, ":")
	if len(parts) >= 3 {
		pos.Filename = strings.Join(parts[:len(parts)-2], ":")
		fmt.Sscanf(parts[len(parts)-2], "%d", &pos.Line)
		fmt.Sscanf(parts[len(parts)-1], "%d", &pos.Column)
	}
	return problemAt(pos, e.Msg, funcs)
}

type function struct {
	name     string
	receiver string
}

// functionMap maps file name and line to the declaring function.
func functionMap(fset *token.FileSet, files []*ast.File) map[string]map[int]*function {
	out := map[string]map[int]*function{}
	for _, f := range files {
		for _, d := range f.Decls {
			fn, ok := d.(*ast.FuncDecl)
			if !ok {
				continue
			}
			start, end := fset.Position(fn.Pos()), fset.Position(fn.End())
			info := &function{name: fn.Name.Name}
			if fn.Recv != nil && len(fn.Recv.List) > 0 {
				info.receiver = receiverType(fn.Recv.List[0].Type)
			}
			lines := out[start.Filename]
			if lines == nil {
				lines = map[int]*function{}
				out[start.Filename] = lines
			}
			for line := start.Line; line <= end.Line; line++ {
				lines[line] = info
			}
		}
	}
	return out
}

func problemAt(pos token.Position, msg string, funcs map[string]map[int]*function) Problem {
	p := Problem{File: pos.Filename, Line: pos.Line, Column: pos.Column, Message: msg}
	if fn := funcs[pos.Filename][pos.Line]; fn != nil {
		p.Function, p.Receiver = fn.name, fn.receiver
	}
	return p
}

func receiverType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return "*" + ident.Name
		}
	}
	return ""
}
