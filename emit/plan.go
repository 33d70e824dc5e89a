package emit

import (
	"fmt"
	"strings"

	"github.com/chazu/vkbind/api"
	"github.com/chazu/vkbind/config"
	"github.com/chazu/vkbind/decl"
	"github.com/chazu/vkbind/defs"
	"github.com/chazu/vkbind/normalize"
	"github.com/chazu/vkbind/vkrt"
)

// Policies are the default load policies of generated tables.
type Policies struct {
	Core       vkrt.Policy
	Extensions vkrt.Policy
}

// DefaultPolicies fails core tables on a missing command and leaves
// extension commands unset.
var DefaultPolicies = Policies{Core: vkrt.Strict, Extensions: vkrt.Lenient}

// TablePlan is one dispatch table to generate.
type TablePlan struct {
	Name   string
	Scopes []string
	Level  api.Level
	Core   bool
	Policy vkrt.Policy
	// Handle is the owner handle type; empty for the global table.
	Handle   string
	Commands []Command
}

// Command is one resolved entry of a table.
type Command struct {
	Name        string // create_instance
	GoName      string // CreateInstance
	Symbol      string // vkCreateInstance
	Fn          *defs.FnPointer
	TakesHandle bool
}

// UnmappedCommandError reports a core command without a function-pointer
// definition.
type UnmappedCommandError struct {
	Scope   string
	Command string
}

func (e *UnmappedCommandError) Error() string {
	return fmt.Sprintf("emit: core command %s of %s has no function pointer definition", e.Command, e.Scope)
}

var coreTableNames = map[api.Level]string{
	api.Global:   "Entry",
	api.Instance: "CoreInstance",
	api.Device:   "CoreDevice",
}

// PlanLoader decides which tables the loader declares and binds every
// command to its function-pointer definition. Core scopes of one level share
// a table; each extension gets its own.
func PlanLoader(desc *api.Description, m *defs.Model, d config.Dialect, p Policies) ([]TablePlan, error) {
	norm := normalize.New(d)
	byBase := m.FnPointersByBase()

	var plans []TablePlan
	core := map[api.Level]int{}
	for _, level := range api.Levels {
		core[level] = -1
	}
	seen := map[string]map[string]bool{}
	names := extensionTableNames(desc, d)

	for _, s := range desc.Scopes {
		var idx int
		if s.Core {
			if core[s.Level] < 0 {
				core[s.Level] = len(plans)
				plans = append(plans, newPlan(coreTableNames[s.Level], s, p.Core, d))
				seen[coreTableNames[s.Level]] = map[string]bool{}
			} else {
				plans[core[s.Level]].Scopes = append(plans[core[s.Level]].Scopes, s.Name)
			}
			idx = core[s.Level]
		} else {
			name := names[scopeLevel{s.Name, s.Level}]
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("emit: extension %s collides with table %s", s.Name, name)
			}
			idx = len(plans)
			plans = append(plans, newPlan(name, s, p.Extensions, d))
			seen[name] = map[string]bool{}
		}

		plan := &plans[idx]
		for _, c := range s.Commands {
			if seen[plan.Name][c] {
				continue
			}
			fp, ok := byBase[norm.CommandKey(c)]
			if !ok {
				if s.Core {
					return nil, &UnmappedCommandError{Scope: s.Name, Command: c}
				}
				log.Warningf("skipping %s of %s: no function pointer definition", c, s.Name)
				continue
			}
			seen[plan.Name][c] = true
			plan.Commands = append(plan.Commands, Command{
				Name:        fp.SnakeName(),
				GoName:      fp.BaseName,
				Symbol:      fp.Symbol(d.FnPointerPrefix, d.MixedPrefix),
				Fn:          fp,
				TakesHandle: plan.Handle != "" && takesHandle(fp.Signature, plan.Handle),
			})
		}
	}

	out := plans[:0]
	for _, plan := range plans {
		if !plan.Core && len(plan.Commands) == 0 {
			log.Debugf("omitting empty table %s", plan.Name)
			continue
		}
		out = append(out, plan)
	}
	return out, nil
}

func newPlan(name string, s api.Scope, policy vkrt.Policy, d config.Dialect) TablePlan {
	return TablePlan{
		Name:   name,
		Scopes: []string{s.Name},
		Level:  s.Level,
		Core:   s.Core,
		Policy: policy,
		Handle: levelHandle(s.Level, d),
	}
}

func levelHandle(l api.Level, d config.Dialect) string {
	switch l {
	case api.Instance:
		return d.InstanceHandle
	case api.Device:
		return d.DeviceHandle
	}
	return ""
}

type scopeLevel struct {
	name  string
	level api.Level
}

// extensionTableNames names one table per extension and level. An extension
// that spans levels keeps the plain name at its lowest level; the others get
// the level as a suffix (ExtDebugUtils, ExtDebugUtilsDevice).
func extensionTableNames(desc *api.Description, d config.Dialect) map[scopeLevel]string {
	lowest := map[string]api.Level{}
	for _, s := range desc.Scopes {
		if s.Core {
			continue
		}
		if l, ok := lowest[s.Name]; !ok || s.Level < l {
			lowest[s.Name] = s.Level
		}
	}
	out := map[scopeLevel]string{}
	for _, s := range desc.Scopes {
		if s.Core {
			continue
		}
		name := extensionTableName(s.Name, d)
		if s.Level != lowest[s.Name] {
			name += normalize.Camel(s.Level.String())
		}
		out[scopeLevel{s.Name, s.Level}] = name
	}
	return out
}

// extensionTableName turns VK_KHR_swapchain into KhrSwapchain.
func extensionTableName(scope string, d config.Dialect) string {
	return normalize.Camel(strings.TrimPrefix(scope, d.ShoutyPrefix))
}

func takesHandle(fn *decl.FnType, handle string) bool {
	if len(fn.Params) == 0 {
		return false
	}
	p, ok := fn.Params[0].Type.(*decl.PathType)
	return ok && len(p.Segments) == 1 && len(p.Args) == 0 && p.Segments[0] == handle
}
