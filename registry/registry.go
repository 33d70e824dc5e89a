// Package registry derives an API-level description from a Khronos-style
// XML registry (vk.xml): which commands each core version and extension
// adds, and at which dispatch level they resolve.
package registry

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/vkbind/api"
	"github.com/chazu/vkbind/vkrt"
)

var log = commonlog.GetLogger("vkgen.registry")

// Extension enum values live in blocks of this size above this base.
const (
	extBase      = 1000000000
	extBlockSize = 1000
)

// ExtensionEnumValue computes the value of an enum member an extension
// adds by offset.
func ExtensionEnumValue(extnumber, offset int, negative bool) int64 {
	v := int64(extBase) + int64(extnumber-1)*extBlockSize + int64(offset)
	if negative {
		return -v
	}
	return v
}

// Options controls Describe.
type Options struct {
	// API selects features and extensions by their api/supported attribute;
	// empty means "vulkan".
	API string
	// MaxVersion is the newest core version included; zero includes all.
	MaxVersion vkrt.Version
	// InstanceHandle and DeviceHandle are the registry names of the level
	// roots; empty means VkInstance and VkDevice.
	InstanceHandle string
	DeviceHandle   string
}

type xmlRegistry struct {
	XMLName  xml.Name       `xml:"registry"`
	Types    []xmlType      `xml:"types>type"`
	Commands []xmlCommand   `xml:"commands>command"`
	Features []xmlFeature   `xml:"feature"`
	Exts     []xmlExtension `xml:"extensions>extension"`
}

type xmlType struct {
	Category  string `xml:"category,attr"`
	Name      string `xml:"name,attr"`
	Alias     string `xml:"alias,attr"`
	Parent    string `xml:"parent,attr"`
	InnerName string `xml:"name"`
	InnerType string `xml:"type"`
}

type xmlCommand struct {
	Name   string     `xml:"name,attr"`
	Alias  string     `xml:"alias,attr"`
	API    string     `xml:"api,attr"`
	Proto  xmlTyped   `xml:"proto"`
	Params []xmlTyped `xml:"param"`
}

type xmlTyped struct {
	Type string `xml:"type"`
	Name string `xml:"name"`
}

type xmlFeature struct {
	API      string       `xml:"api,attr"`
	Name     string       `xml:"name,attr"`
	Number   string       `xml:"number,attr"`
	Requires []xmlRequire `xml:"require"`
}

type xmlExtension struct {
	Name      string       `xml:"name,attr"`
	Type      string       `xml:"type,attr"`
	Supported string       `xml:"supported,attr"`
	Requires  []xmlRequire `xml:"require"`
}

type xmlRequire struct {
	API      string `xml:"api,attr"`
	Commands []struct {
		Name string `xml:"name,attr"`
	} `xml:"command"`
}

// Describe reads a registry and splits every selected feature and
// extension into one scope per dispatch level.
func Describe(r io.Reader, opts Options) (*api.Description, error) {
	var reg xmlRegistry
	if err := xml.NewDecoder(r).Decode(&reg); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if opts.API == "" {
		opts.API = "vulkan"
	}
	if opts.InstanceHandle == "" {
		opts.InstanceHandle = "VkInstance"
	}
	if opts.DeviceHandle == "" {
		opts.DeviceHandle = "VkDevice"
	}

	h := newHandles(reg.Types, opts)
	levels := map[string]api.Level{}
	for _, c := range reg.Commands {
		if c.Alias != "" || !selects(c.API, opts.API) {
			continue
		}
		levels[c.Proto.Name] = h.commandLevel(c)
	}
	// aliases share the level of their target
	for _, c := range reg.Commands {
		if c.Alias == "" {
			continue
		}
		if l, ok := levels[c.Alias]; ok {
			levels[c.Name] = l
		}
	}

	var desc api.Description
	for _, f := range reg.Features {
		if !selects(f.API, opts.API) {
			continue
		}
		if opts.MaxVersion != 0 {
			v, err := vkrt.ParseVersion(f.Number)
			if err != nil {
				return nil, fmt.Errorf("registry: feature %s: %w", f.Name, err)
			}
			if v > opts.MaxVersion {
				continue
			}
		}
		desc.Scopes = append(desc.Scopes, split(f.Name, true, f.Requires, levels, nil, opts.API)...)
	}
	for _, e := range reg.Exts {
		if !selects(e.Supported, opts.API) {
			log.Debugf("skipping extension %s (supported=%q)", e.Name, e.Supported)
			continue
		}
		var fallback *api.Level
		if l, err := api.ParseLevel(e.Type); err == nil {
			fallback = &l
		}
		desc.Scopes = append(desc.Scopes, split(e.Name, false, e.Requires, levels, fallback, opts.API)...)
	}

	desc.Normalize()
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	log.Debugf("described %d scopes", len(desc.Scopes))
	return &desc, nil
}

// selects reports whether a comma-separated api list names api. An empty
// list selects everything.
func selects(list, api string) bool {
	if list == "" {
		return true
	}
	for _, a := range strings.Split(list, ",") {
		if a == api {
			return true
		}
	}
	return false
}

// split distributes the commands of one feature or extension over levels,
// in level order. Commands of unknown level take fallback when given.
func split(name string, core bool, reqs []xmlRequire, levels map[string]api.Level, fallback *api.Level, apiName string) []api.Scope {
	byLevel := map[api.Level][]string{}
	for _, req := range reqs {
		if !selects(req.API, apiName) {
			continue
		}
		for _, c := range req.Commands {
			l, ok := levels[c.Name]
			if !ok {
				if fallback == nil {
					log.Warningf("%s: command %s has no definition", name, c.Name)
					continue
				}
				l = *fallback
			}
			byLevel[l] = append(byLevel[l], c.Name)
		}
	}
	var out []api.Scope
	for _, l := range api.Levels {
		if cmds := byLevel[l]; len(cmds) > 0 {
			out = append(out, api.Scope{Name: name, Level: l, Core: core, Commands: cmds})
		}
	}
	return out
}

// handles resolves the dispatch level of handle types through their
// parent chain.
type handles struct {
	parent       map[string]string
	alias        map[string]string
	dispatchable map[string]bool
	opts         Options
}

func newHandles(types []xmlType, opts Options) *handles {
	h := &handles{
		parent:       map[string]string{},
		alias:        map[string]string{},
		dispatchable: map[string]bool{},
		opts:         opts,
	}
	for _, t := range types {
		if t.Category != "handle" {
			continue
		}
		if t.Alias != "" {
			h.alias[t.Name] = t.Alias
			continue
		}
		parent := t.Parent
		if i := strings.IndexByte(parent, ','); i >= 0 {
			parent = parent[:i]
		}
		h.parent[t.InnerName] = parent
		h.dispatchable[t.InnerName] = t.InnerType == "VK_DEFINE_HANDLE"
	}
	return h
}

// level returns the level a handle belongs to, or false when its chain
// does not reach a level root.
func (h *handles) level(name string) (api.Level, bool) {
	seen := map[string]bool{}
	for cur := name; cur != "" && !seen[cur]; cur = h.parent[cur] {
		seen[cur] = true
		switch cur {
		case h.opts.InstanceHandle:
			return api.Instance, true
		case h.opts.DeviceHandle:
			return api.Device, true
		}
	}
	return 0, false
}

// commandLevel is decided by the first parameter; only dispatchable
// handles select a level.
func (h *handles) commandLevel(c xmlCommand) api.Level {
	if len(c.Params) == 0 {
		return api.Global
	}
	first := c.Params[0].Type
	if target, ok := h.alias[first]; ok {
		first = target
	}
	if !h.dispatchable[first] {
		return api.Global
	}
	if l, ok := h.level(first); ok {
		return l
	}
	return api.Global
}
