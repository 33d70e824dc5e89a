package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chazu/vkbind/decl"
	"github.com/chazu/vkbind/defs"
	"github.com/chazu/vkbind/normalize"
)

// classifyEnum accepts a module holding exactly one `type Type = T;` and
// any number of constants of that type.
func (c *Classifier) classifyEnum(item decl.Item) (defs.Def, error) {
	e := &defs.Enum{Name: item.Name, Bitmask: c.isBitmask(item.Name)}
	prefix := c.memberPrefix(item.Name)
	for _, sub := range item.Items {
		switch {
		case sub.Kind == decl.ItemType && sub.Name == c.d.EnumTypeName:
			if e.Type != nil {
				return nil, &Error{Item: item, Reason: "enum declares its representation twice"}
			}
			e.Type = sub.Type
		case sub.Kind == decl.ItemConst:
			e.Members = append(e.Members, defs.EnumMember{
				Name:  stripMember(sub.Name, prefix),
				Raw:   sub.Name,
				Value: sub.Value,
			})
		default:
			return nil, &Error{Item: item, Reason: "module contains " + sub.Kind.String() + " " + sub.Name}
		}
	}
	if e.Type == nil {
		return nil, &Error{Item: item, Reason: "module has no " + c.d.EnumTypeName + " declaration"}
	}
	return e, nil
}

func (c *Classifier) isBitmask(name string) bool {
	return strings.Contains(name, c.d.FlagBitsMarker) || strings.HasSuffix(name, c.d.FlagsSuffix)
}

// memberPrefix returns the SHOUTY prefix every member of the named enum
// carries: ImageLayout gives IMAGE_LAYOUT_, SurfaceTransformFlagBitsKhr
// gives SURFACE_TRANSFORM_.
func (c *Classifier) memberPrefix(enumName string) string {
	base := c.stripVendor(enumName)
	if trimmed, ok := strings.CutSuffix(base, c.d.FlagBitsMarker); ok {
		base = trimmed
	} else if trimmed, ok := strings.CutSuffix(base, c.d.FlagsSuffix); ok {
		base = trimmed
	}
	return normalize.Shouty(base) + "_"
}

// stripVendor removes the first vendor tag, in dialect order, that ends name.
func (c *Classifier) stripVendor(name string) string {
	for _, tag := range c.d.VendorTags {
		if trimmed, ok := strings.CutSuffix(name, tag); ok && trimmed != "" {
			return trimmed
		}
	}
	return name
}

func stripMember(name, prefix string) string {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || rest == "" {
		return name
	}
	if r, _ := utf8.DecodeRuneInString(rest); unicode.IsDigit(r) {
		return "_" + rest
	}
	return rest
}
