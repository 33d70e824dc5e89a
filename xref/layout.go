package xref

import (
	"fmt"

	"github.com/chazu/vkbind/decl"
	"github.com/chazu/vkbind/defs"
)

type layout struct {
	size, align int64
}

// Layout returns the size and alignment in bytes of t under C layout rules.
func (x *Index) Layout(t decl.Type) (size, align int64, err error) {
	l, err := x.layoutOf(t, map[string]bool{})
	return l.size, l.align, err
}

func (x *Index) layoutOf(t decl.Type, visiting map[string]bool) (layout, error) {
	switch t := x.Resolve(t).(type) {
	case *decl.PointerType, *decl.FnType:
		return layout{pointerSize, pointerSize}, nil

	case *decl.ArrayType:
		elem, err := x.layoutOf(t.Elem, visiting)
		if err != nil {
			return layout{}, err
		}
		n, err := x.Eval(t.Len, nil)
		if err != nil {
			return layout{}, fmt.Errorf("array length %s: %w", t.Len, err)
		}
		if n < 0 {
			return layout{}, fmt.Errorf("negative array length %d", n)
		}
		return layout{elem.size * n, elem.align}, nil

	case *decl.PathType:
		if _, ok := decl.OptionFn(t); ok {
			return layout{pointerSize, pointerSize}, nil
		}
		return x.namedLayout(t.Last(), visiting)
	}
	return layout{}, fmt.Errorf("no layout for %s", t)
}

func (x *Index) namedLayout(name string, visiting map[string]bool) (layout, error) {
	if p, ok := primitives[name]; ok {
		return layout{p.Size, p.Align}, nil
	}
	if l, ok := x.layouts[name]; ok {
		return l, nil
	}
	if visiting[name] {
		return layout{}, fmt.Errorf("type %s contains itself", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	var (
		l   layout
		err error
	)
	switch {
	case x.enums[name] != nil:
		l, err = x.layoutOf(x.enums[name].Type, visiting)
	case x.handles[name] != nil, x.fnptrs[name] != nil:
		l = layout{pointerSize, pointerSize}
	case x.structs[name] != nil:
		l, err = x.aggregate(name, x.structs[name].Members, false, visiting)
	case x.unions[name] != nil:
		l, err = x.aggregate(name, x.unions[name].Members, true, visiting)
	default:
		return layout{}, fmt.Errorf("unknown type %s", name)
	}
	if err != nil {
		return layout{}, err
	}
	x.layouts[name] = l
	return l, nil
}

func (x *Index) aggregate(name string, members []defs.Member, union bool, visiting map[string]bool) (layout, error) {
	var size, align int64 = 0, 1
	for _, m := range members {
		ml, err := x.layoutOf(m.Type, visiting)
		if err != nil {
			return layout{}, fmt.Errorf("%s.%s: %w", name, m.Name, err)
		}
		if ml.align > align {
			align = ml.align
		}
		if union {
			if ml.size > size {
				size = ml.size
			}
			continue
		}
		size = alignUp(size, ml.align) + ml.size
	}
	return layout{alignUp(size, align), align}, nil
}

func alignUp(n, align int64) int64 {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}
