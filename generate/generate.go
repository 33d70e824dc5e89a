// Package generate runs the whole pipeline: declarations are normalized,
// classified and cross-referenced, then rendered as bindings and as a
// loader for the described API scopes.
package generate

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/chazu/vkbind/api"
	"github.com/chazu/vkbind/classify"
	"github.com/chazu/vkbind/config"
	"github.com/chazu/vkbind/decl"
	"github.com/chazu/vkbind/defs"
	"github.com/chazu/vkbind/emit"
	"github.com/chazu/vkbind/normalize"
	"github.com/chazu/vkbind/vkrt"
	"github.com/chazu/vkbind/xref"
)

var log = commonlog.GetLogger("vkgen.generate")

// Inputs are the two documents the pipeline consumes.
type Inputs struct {
	Declarations string
	APIs         *api.Description
}

// Result is everything one run produced.
type Result struct {
	Model    *defs.Model
	Index    *xref.Index
	Digest   string
	Plans    []emit.TablePlan
	Bindings []byte
	Loader   []byte
	Warnings []string
}

// Run executes the pipeline. It does no I/O.
func Run(cfg *config.Config, in Inputs) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	d := cfg.Dialect.WithDefaults()

	m, err := Model(d, in.Declarations)
	if err != nil {
		return nil, err
	}
	counts := m.Counts()
	log.Debugf("classified %d enums, %d structs, %d fn pointers", counts[defs.KindEnum], counts[defs.KindStruct], counts[defs.KindFnPointer])

	digest, err := defs.Digest(m)
	if err != nil {
		return nil, err
	}
	x := xref.New(m, d)
	res := &Result{Model: m, Index: x, Digest: digest}

	desc := in.APIs
	if desc == nil {
		desc = &api.Description{}
	}
	bindings, err := emit.Bindings(m, x, emit.BindingsOptions{
		Package:     cfg.Output.Package,
		Digest:      digest,
		APIVersions: CoreVersions(desc, d),
	})
	if err != nil {
		return nil, err
	}
	res.Bindings = bindings.Code
	res.Warnings = append(res.Warnings, bindings.Warnings...)

	policies, err := Policies(cfg)
	if err != nil {
		return nil, err
	}
	res.Plans, err = emit.PlanLoader(desc, m, d, policies)
	if err != nil {
		return nil, err
	}
	loader, err := emit.Loader(res.Plans, m, x, emit.LoaderOptions{
		Package:       cfg.Output.Package,
		Digest:        digest,
		RuntimeImport: cfg.Output.RuntimeImport,
	})
	if err != nil {
		return nil, err
	}
	res.Loader = loader.Code
	res.Warnings = append(res.Warnings, loader.Warnings...)
	return res, nil
}

// Model parses and classifies declaration text.
func Model(d config.Dialect, declarations string) (*defs.Model, error) {
	trees, err := decl.LexTrees(declarations)
	if err != nil {
		return nil, fmt.Errorf("declarations: %w", err)
	}
	items, err := decl.ParseTrees(normalize.New(d).Trees(trees))
	if err != nil {
		return nil, fmt.Errorf("declarations: %w", err)
	}
	return classify.New(d).Classify(items)
}

// Policies converts the configured policy names.
func Policies(cfg *config.Config) (emit.Policies, error) {
	core, err := vkrt.ParsePolicy(cfg.Policy.Core)
	if err != nil {
		return emit.Policies{}, fmt.Errorf("policy.core: %w", err)
	}
	ext, err := vkrt.ParsePolicy(cfg.Policy.Extensions)
	if err != nil {
		return emit.Policies{}, fmt.Errorf("policy.extensions: %w", err)
	}
	return emit.Policies{Core: core, Extensions: ext}, nil
}

// CoreVersions lists the versions named by core scopes such as
// VK_VERSION_1_2, sorted and without duplicates.
func CoreVersions(desc *api.Description, d config.Dialect) []vkrt.Version {
	re := regexp.MustCompile("^" + regexp.QuoteMeta(d.ShoutyPrefix) + `VERSION_(\d+)_(\d+)$`)
	seen := map[vkrt.Version]bool{}
	var out []vkrt.Version
	for _, s := range desc.Scopes {
		if !s.Core {
			continue
		}
		m := re.FindStringSubmatch(s.Name)
		if m == nil {
			continue
		}
		v, err := vkrt.ParseVersion(m[1] + "." + m[2])
		if err != nil || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
