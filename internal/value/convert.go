package value

import (
	"fmt"
	"sort"
	"strings"
)

// StringWidthOf extracts v's textual content as runes together with its
// width, from any string-shaped variant (narrow string, wide string, or
// target-string of either width). ok is false for non-string values.
func StringWidthOf(v InternalValue) (runes []rune, width Width, ok bool) {
	switch v.kind {
	case KindStringNarrow:
		return []rune(v.s), WidthNarrow, true
	case KindStringWide:
		return v.wide, WidthWide, true
	case KindTargetString:
		if v.target == nil {
			return nil, WidthNarrow, false
		}
		if v.target.Width == WidthWide {
			return v.target.Wide, WidthWide, true
		}
		return []rune(v.target.Narrow), WidthNarrow, true
	default:
		return nil, WidthNarrow, false
	}
}

// AsPlainString extracts v's textual content as a Go string regardless
// of width, for filter arguments (old/new/end strings) that don't need
// to preserve the base value's width themselves.
func AsPlainString(v InternalValue) (string, bool) {
	runes, _, ok := StringWidthOf(v)
	if !ok {
		return "", false
	}
	return string(runes), true
}

// FromRunes rebuilds a plain (non-target) string InternalValue of the
// given width from runes.
func FromRunes(runes []rune, width Width) InternalValue {
	if width == WidthWide {
		return WideString(runes)
	}
	return NarrowString(string(runes))
}

// Display renders v as human-readable text for diagnostics, the pprint
// filter, and non-template debug output. It is a free function rather
// than a method since InternalValue is a plain struct, not an
// interface with per-kind implementations.
func Display(v InternalValue) string {
	switch v.kind {
	case KindEmpty:
		return ""
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindStringNarrow:
		return v.s
	case KindStringWide:
		return string(v.wide)
	case KindTargetString:
		return v.target.String()
	case KindList:
		items := v.list.Materialize()
		out := "["
		for i, it := range items {
			if i > 0 {
				out += ", "
			}
			out += Display(it)
		}
		return out + "]"
	case KindMap:
		out := "{"
		for i, k := range v.m.Keys() {
			if i > 0 {
				out += ", "
			}
			val, _ := v.m.Get(k)
			out += k + ": " + Display(val)
		}
		return out + "}"
	case KindCallable:
		if v.call != nil && v.call.Name != "" {
			return "<callable " + v.call.Name + ">"
		}
		return "<callable>"
	default:
		return ""
	}
}

// Pprint renders v as an indentation-aware diagnostic dump: scalars
// inline, lists and maps recursively indented one level per nesting
// depth, the way a human would format one by hand. depth is the
// current nesting level (0 at the top) and controls how far each line
// is indented.
func (v InternalValue) Pprint(depth int) string {
	indent := strings.Repeat("  ", depth)
	childIndent := strings.Repeat("  ", depth+1)
	switch v.kind {
	case KindList:
		items := v.list.Materialize()
		if len(items) == 0 {
			return "[]"
		}
		var b strings.Builder
		b.WriteString("[\n")
		for i, it := range items {
			b.WriteString(childIndent)
			b.WriteString(it.Pprint(depth + 1))
			if i < len(items)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(indent)
		b.WriteString("]")
		return b.String()
	case KindMap:
		keys := v.m.Keys()
		if len(keys) == 0 {
			return "{}"
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString("{\n")
		for i, k := range keys {
			val, _ := v.m.Get(k)
			b.WriteString(childIndent)
			b.WriteString(fmt.Sprintf("%q: ", k))
			b.WriteString(val.Pprint(depth + 1))
			if i < len(keys)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(indent)
		b.WriteString("}")
		return b.String()
	case KindStringNarrow:
		return fmt.Sprintf("%q", v.s)
	case KindStringWide:
		return fmt.Sprintf("%q", string(v.wide))
	case KindTargetString:
		if v.target == nil {
			return `""`
		}
		return fmt.Sprintf("%q", v.target.String())
	default:
		return Display(v)
	}
}
