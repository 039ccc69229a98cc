// Collection and formatting filters, each following Jinja2's documented
// semantics for that name.
package filters

import (
	"sort"
	"strings"

	"github.com/exprkit/tmplcore/internal/value"
)

// pprintFilter formats baseVal as an indentation-aware diagnostic dump
// via InternalValue.Pprint; it performs formatting only, never mutation.
type pprintFilter struct{}

func (pprintFilter) Filter(baseVal value.InternalValue, ctx *Context) value.InternalValue {
	return value.NarrowString(baseVal.Pprint(0)).SetTemporary(true)
}

// defaultFilter substitutes a fallback when baseVal is empty (or, with
// boolean=true, also falsy).
type defaultFilter struct {
	fallback value.InternalValue
	boolean  bool
}

func newDefaultFilter(a CallArgs) *defaultFilter {
	return &defaultFilter{
		fallback: arg(a, "default_value", 0, value.NarrowString("")),
		boolean:  arg(a, "boolean", 1, value.Bool(false)).ConvertToBool(),
	}
}

func (f *defaultFilter) Filter(baseVal value.InternalValue, ctx *Context) value.InternalValue {
	if baseVal.IsEmpty() || (f.boolean && !baseVal.ConvertToBool()) {
		return f.fallback
	}
	return baseVal
}

// joinFilter concatenates a list's display forms with a separator.
type joinFilter struct {
	sep string
}

func newJoinFilter(a CallArgs) *joinFilter {
	sep, _ := value.AsPlainString(arg(a, "d", 0, value.NarrowString("")))
	return &joinFilter{sep: sep}
}

func (f *joinFilter) Filter(baseVal value.InternalValue, ctx *Context) value.InternalValue {
	l, ok := baseVal.AsList()
	if !ok {
		return value.Empty()
	}
	items := l.Materialize()
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = value.Display(it)
	}
	return value.NarrowString(strings.Join(parts, f.sep)).SetTemporary(true)
}

// listFilter forces any iterable (string, list, map) into a
// materialized list value: characters for strings, elements for lists,
// keys for maps.
type listFilter struct{}

func (listFilter) Filter(baseVal value.InternalValue, ctx *Context) value.InternalValue {
	switch baseVal.Kind() {
	case value.KindList:
		return baseVal
	case value.KindMap:
		m, _ := baseVal.AsMap()
		keys := m.Keys()
		sort.Strings(keys)
		items := make([]value.InternalValue, len(keys))
		for i, k := range keys {
			items[i] = value.NarrowString(k)
		}
		return value.List(value.NewMaterializedList(items)).SetTemporary(true)
	default:
		runes, _, ok := value.StringWidthOf(baseVal)
		if !ok {
			return value.Empty()
		}
		items := make([]value.InternalValue, len(runes))
		for i, r := range runes {
			items[i] = value.NarrowString(string(r))
		}
		return value.List(value.NewMaterializedList(items)).SetTemporary(true)
	}
}

// lengthFilter reports a container's or string's element count.
type lengthFilter struct{}

func (lengthFilter) Filter(baseVal value.InternalValue, ctx *Context) value.InternalValue {
	switch baseVal.Kind() {
	case value.KindList:
		l, _ := baseVal.AsList()
		return value.Int(int64(l.Len())).SetTemporary(true)
	case value.KindMap:
		m, _ := baseVal.AsMap()
		return value.Int(int64(m.Len())).SetTemporary(true)
	default:
		runes, _, ok := value.StringWidthOf(baseVal)
		if !ok {
			return value.Empty()
		}
		return value.Int(int64(len(runes))).SetTemporary(true)
	}
}

// sortFilter orders a list's elements, optionally reversed.
type sortFilter struct {
	reverse bool
}

func newSortFilter(a CallArgs) *sortFilter {
	return &sortFilter{reverse: arg(a, "reverse", 0, value.Bool(false)).ConvertToBool()}
}

func (f *sortFilter) Filter(baseVal value.InternalValue, ctx *Context) value.InternalValue {
	l, ok := baseVal.AsList()
	if !ok {
		return value.Empty()
	}
	items := append([]value.InternalValue{}, l.Materialize()...)
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
	if f.reverse {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	return value.List(value.NewMaterializedList(items)).SetTemporary(true)
}

func less(a, b value.InternalValue) bool {
	ar, aw, aok := value.StringWidthOf(a)
	if aok {
		br, _, bok := value.StringWidthOf(b)
		if bok {
			return string(ar) < string(br)
		}
		_ = aw
	}
	ai, aiok := a.AsInt()
	bi, biok := b.AsInt()
	if aiok && biok {
		return ai < bi
	}
	af, _ := a.AsFloat()
	bf, _ := b.AsFloat()
	return af < bf
}

// minmaxFilter returns the smallest or largest element of a list.
type minmaxFilter struct {
	takeMax bool
}

func (f minmaxFilter) Filter(baseVal value.InternalValue, ctx *Context) value.InternalValue {
	l, ok := baseVal.AsList()
	if !ok || l.Len() == 0 {
		return value.Empty()
	}
	items := l.Materialize()
	best := items[0]
	for _, it := range items[1:] {
		if f.takeMax && less(best, it) {
			best = it
		}
		if !f.takeMax && less(it, best) {
			best = it
		}
	}
	return best
}

// mapFilter projects each element of a list through a named attribute
// lookup (`items | map(attribute='name')`), matching the source's
// GenericMap filter without the general callable-filter variant.
type mapFilter struct {
	attribute string
}

func newMapFilter(a CallArgs) *mapFilter {
	attr, _ := value.AsPlainString(arg(a, "attribute", 0, value.NarrowString("")))
	return &mapFilter{attribute: attr}
}

func (f *mapFilter) Filter(baseVal value.InternalValue, ctx *Context) value.InternalValue {
	l, ok := baseVal.AsList()
	if !ok {
		return value.Empty()
	}
	items := l.Materialize()
	out := make([]value.InternalValue, len(items))
	for i, it := range items {
		if f.attribute == "" {
			out[i] = it
			continue
		}
		if m, ok := it.AsMap(); ok {
			v, _ := m.Get(f.attribute)
			out[i] = v
		} else {
			out[i] = value.Empty()
		}
	}
	return value.List(value.NewMaterializedList(out)).SetTemporary(true)
}

// selectFilter (invert=false) or rejectFilter (invert=true) filters a
// list by an attribute's truthiness, the attribute-only subset of
// Jinja2's select/reject (a full tester-name dispatch belongs to the
// external statement renderer, which has the tester registry's params
// parsed from source syntax rather than raw values).
type selectFilter struct {
	attribute string
	invert    bool
}

func newSelectFilter(a CallArgs, invert bool) *selectFilter {
	attr, _ := value.AsPlainString(arg(a, "attribute", 0, value.NarrowString("")))
	return &selectFilter{attribute: attr, invert: invert}
}

func (f *selectFilter) Filter(baseVal value.InternalValue, ctx *Context) value.InternalValue {
	l, ok := baseVal.AsList()
	if !ok {
		return value.Empty()
	}
	items := l.Materialize()
	var out []value.InternalValue
	for _, it := range items {
		truthy := it.ConvertToBool()
		if f.attribute != "" {
			if m, ok := it.AsMap(); ok {
				v, _ := m.Get(f.attribute)
				truthy = v.ConvertToBool()
			} else {
				truthy = false
			}
		}
		if truthy != f.invert {
			out = append(out, it)
		}
	}
	return value.List(value.NewMaterializedList(out)).SetTemporary(true)
}
