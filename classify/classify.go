// Package classify sorts normalized declarations into the definition model.
package classify

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/vkbind/config"
	"github.com/chazu/vkbind/decl"
	"github.com/chazu/vkbind/defs"
	"github.com/chazu/vkbind/normalize"
)

var log = commonlog.GetLogger("vkgen.classify")

// Error reports a declaration that matches no recognized shape. It always
// means the front end broke its contract, so classification stops.
type Error struct {
	Item   decl.Item
	Reason string
}

func (e *Error) Error() string {
	name := e.Item.Name
	if e.Item.Kind == decl.ItemOther {
		name = e.Item.Keyword + " " + name
	}
	return fmt.Sprintf("classify: %s %q at %s: %s", e.Item.Kind, name, e.Item.Pos, e.Reason)
}

// Classifier builds a definition model from declaration items.
type Classifier struct {
	d    config.Dialect
	norm *normalize.Normalizer
}

// New returns a classifier for the given dialect.
func New(d config.Dialect) *Classifier {
	d = d.WithDefaults()
	return &Classifier{d: d, norm: normalize.New(d)}
}

// Classify sorts every item into exactly one definition kind. Items must
// already be normalized.
func (c *Classifier) Classify(items []decl.Item) (*defs.Model, error) {
	m := &defs.Model{}
	for _, item := range items {
		def, err := c.classifyItem(item)
		if err != nil {
			return nil, err
		}
		if def != nil {
			m.Add(def)
		}
	}

	c.promoteFnPointerAliases(m)
	c.addPlaceholderEnums(m)
	c.renameDeferred(m)

	counts := m.Counts()
	log.Debugf("classified %d enums, %d consts, %d structs, %d unions, %d fn pointers, %d aliases, %d handles",
		counts[defs.KindEnum], counts[defs.KindConst], counts[defs.KindStruct], counts[defs.KindUnion],
		counts[defs.KindFnPointer], counts[defs.KindTypeAlias], counts[defs.KindHandle])
	return m, nil
}

// classifyItem returns nil for items that are intentionally dropped.
func (c *Classifier) classifyItem(item decl.Item) (defs.Def, error) {
	switch item.Kind {
	case decl.ItemModule:
		return c.classifyEnum(item)

	case decl.ItemConst:
		return &defs.Const{Name: item.Name, Type: c.trim(item.Type), Value: item.Value}, nil

	case decl.ItemStruct:
		if c.isOpaque(item.Name) {
			return nil, nil
		}
		return &defs.Struct{Name: item.Name, Members: c.members(item.Fields)}, nil

	case decl.ItemUnion:
		return &defs.Union{Name: item.Name, Members: c.members(item.Fields)}, nil

	case decl.ItemUse:
		return c.classifyUse(item)

	case decl.ItemType:
		if strings.HasPrefix(item.Name, "__") {
			return nil, nil
		}
		return c.classifyTypeDecl(item)
	}
	return nil, &Error{Item: item, Reason: "unrecognized declaration"}
}

func (c *Classifier) isOpaque(name string) bool {
	return c.d.OpaqueSuffix != "" && len(name) > len(c.d.OpaqueSuffix) && strings.HasSuffix(name, c.d.OpaqueSuffix)
}

func (c *Classifier) trim(t decl.Type) decl.Type {
	if t == nil {
		return nil
	}
	return decl.TrimPathSuffix(t, c.d.EnumTypeName)
}

func (c *Classifier) members(fields []decl.Field) []defs.Member {
	out := make([]defs.Member, len(fields))
	for i, f := range fields {
		out[i] = defs.Member{Name: f.Name, Type: c.trim(f.Type)}
	}
	return out
}

// classifyUse handles `use self::Enum::Type as Alias;`.
func (c *Classifier) classifyUse(item decl.Item) (defs.Def, error) {
	segs := item.Path
	for len(segs) > 0 && (segs[0] == "self" || segs[0] == "crate" || segs[0] == "super") {
		segs = segs[1:]
	}
	if len(segs) > 0 && segs[len(segs)-1] == c.d.EnumTypeName {
		segs = segs[:len(segs)-1]
	}
	if len(segs) == 0 {
		return nil, &Error{Item: item, Reason: "use path names no enum"}
	}
	target := segs[len(segs)-1]
	if target == item.Name {
		// `use self::Result::Type as Result;` names the enum itself
		return nil, nil
	}
	return &defs.TypeAlias{Name: item.Name, Target: decl.Named(target)}, nil
}

func (c *Classifier) classifyTypeDecl(item decl.Item) (defs.Def, error) {
	target := c.trim(item.Type)
	switch t := target.(type) {
	case *decl.PointerType:
		return &defs.Handle{Name: item.Name, Dispatchable: true}, nil

	case *decl.PathType:
		if t.IsName(c.d.NonDispatchableSentinel) {
			return &defs.Handle{Name: item.Name, Dispatchable: false}, nil
		}
		if sig, ok := decl.OptionFn(t); ok {
			base, ok := c.norm.FnPointerBase(item.Name)
			if !ok {
				base = normalize.Camel(item.Name)
			}
			return &defs.FnPointer{BaseName: base, Raw: item.Name, Signature: sig}, nil
		}
		if t.Last() == c.d.FlagsSuffix && strings.Contains(item.Name, c.d.FlagsSuffix) {
			bits := strings.ReplaceAll(item.Name, c.d.FlagsSuffix, c.d.FlagBitsMarker)
			return &defs.TypeAlias{Name: item.Name, Target: decl.Named(bits)}, nil
		}
		return &defs.TypeAlias{Name: item.Name, Target: t}, nil
	}
	return nil, &Error{Item: item, Reason: fmt.Sprintf("unsupported alias target %s", item.Type)}
}

// promoteFnPointerAliases turns `type PFN_vkXKHR = PFN_vkX;` into a
// function pointer sharing its target's signature.
func (c *Classifier) promoteFnPointerAliases(m *defs.Model) {
	byRaw := make(map[string]*defs.FnPointer, len(m.FnPointers))
	for _, f := range m.FnPointers {
		byRaw[f.Raw] = f
	}
	kept := m.Aliases[:0]
	for _, a := range m.Aliases {
		pt, ok := a.Target.(*decl.PathType)
		if ok && len(pt.Segments) == 1 {
			if target, found := byRaw[pt.Segments[0]]; found {
				if base, isPfn := c.norm.FnPointerBase(a.Name); isPfn {
					f := &defs.FnPointer{BaseName: base, Raw: a.Name, Signature: target.Signature}
					m.FnPointers = append(m.FnPointers, f)
					byRaw[a.Name] = f
					continue
				}
			}
		}
		kept = append(kept, a)
	}
	m.Aliases = kept
}

// addPlaceholderEnums gives every flags alias a backing bit enum, so that
// flags types are uniform even when the registry declares no bits.
func (c *Classifier) addPlaceholderEnums(m *defs.Model) {
	known := make(map[string]bool, len(m.Enums))
	for _, e := range m.Enums {
		known[e.Name] = true
	}
	for _, a := range m.Aliases {
		pt, ok := a.Target.(*decl.PathType)
		if !ok || len(pt.Segments) != 1 {
			continue
		}
		name := pt.Segments[0]
		if !strings.Contains(name, c.d.FlagBitsMarker) || known[name] {
			continue
		}
		known[name] = true
		m.Enums = append(m.Enums, &defs.Enum{
			Name:        name,
			Type:        decl.Named("u32"),
			Bitmask:     true,
			Placeholder: true,
		})
	}
}

// renameDeferred runs the normalizer's second pass over every type
// reference and alias name.
func (c *Classifier) renameDeferred(m *defs.Model) {
	rn := c.norm.Deferred
	re := func(t decl.Type) decl.Type {
		if t == nil {
			return nil
		}
		return decl.RenameTypes(t, rn)
	}
	for _, con := range m.Consts {
		con.Type = re(con.Type)
	}
	for _, s := range m.Structs {
		for i := range s.Members {
			s.Members[i].Type = re(s.Members[i].Type)
		}
	}
	for _, u := range m.Unions {
		for i := range u.Members {
			u.Members[i].Type = re(u.Members[i].Type)
		}
	}
	for _, f := range m.FnPointers {
		f.Signature = re(f.Signature).(*decl.FnType)
	}
	for _, a := range m.Aliases {
		a.Name = rn(a.Name)
		a.Target = re(a.Target)
	}
}
