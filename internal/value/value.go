package value

import (
	"strconv"
)

// InternalValue is the sum-type value that flows through the evaluator:
// scalars, narrow/wide strings and their views, list/map adapters, and
// callables, plus lifetime metadata for arena tracking.
//
// The struct stays small and by-value on purpose (see the package doc
// comment): string data is held by the s/wide string and slice headers,
// and the other heap-backed payloads live behind the *ListAdapter,
// *MapAdapter, *Callable and *TargetString pointers, never inline.
type InternalValue struct {
	kind Kind

	b bool
	i int64
	f float64
	s string // narrow string payload, or the backing of a narrow view

	wide []rune // wide string payload, or the backing of a wide view

	list   *ListAdapter
	m      *MapAdapter
	call   *Callable
	target *TargetString

	view      bool // true if s/wide is a subrange view into a parent's storage
	temporary bool
	hasParent bool
	id        ValueID
	parent    ValueID
}

// Empty returns the empty value.
func Empty() InternalValue { return InternalValue{kind: KindEmpty} }

// IsEmpty reports whether v holds no value.
func (v InternalValue) IsEmpty() bool { return v.kind == KindEmpty }

// Kind returns v's active variant tag.
func (v InternalValue) Kind() Kind { return v.kind }

// Bool wraps a boolean.
func Bool(b bool) InternalValue { return InternalValue{kind: KindBool, b: b} }

// Int wraps a signed 64-bit integer.
func Int(i int64) InternalValue { return InternalValue{kind: KindInt, i: i} }

// Float wraps a double.
func Float(f float64) InternalValue { return InternalValue{kind: KindFloat, f: f} }

// NarrowString wraps an owned narrow (UTF-8 byte) string.
func NarrowString(s string) InternalValue { return InternalValue{kind: KindStringNarrow, s: s} }

// WideString wraps an owned wide (rune array) string.
func WideString(r []rune) InternalValue { return InternalValue{kind: KindStringWide, wide: r} }

// NarrowStringView wraps a subrange of a narrow string; parent extends
// its lifetime to cover the view (see ShouldExtendLifetime).
func NarrowStringView(s string, parent ValueID) InternalValue {
	return InternalValue{kind: KindStringNarrow, s: s, view: true, hasParent: true, parent: parent}
}

// WideStringView wraps a subrange of a wide string.
func WideStringView(r []rune, parent ValueID) InternalValue {
	return InternalValue{kind: KindStringWide, wide: r, view: true, hasParent: true, parent: parent}
}

// List wraps a list adapter.
func List(l *ListAdapter) InternalValue { return InternalValue{kind: KindList, list: l} }

// Map wraps a map adapter.
func Map(m *MapAdapter) InternalValue { return InternalValue{kind: KindMap, m: m} }

// FromCallable wraps a callable.
func FromCallable(c *Callable) InternalValue { return InternalValue{kind: KindCallable, call: c} }

// FromTargetString wraps a rendered target-string (narrow or wide, the
// renderer's choice of output width).
func FromTargetString(t *TargetString) InternalValue {
	return InternalValue{kind: KindTargetString, target: t}
}

// AsString returns v's narrow string content along with whether v was
// narrow-shaped at all (KindStringNarrow or a narrow KindTargetString).
func (v InternalValue) AsString() (string, bool) {
	switch v.kind {
	case KindStringNarrow:
		return v.s, true
	case KindTargetString:
		if v.target != nil && v.target.Width == WidthNarrow {
			return v.target.Narrow, true
		}
	}
	return "", false
}

// AsWideString returns v's wide (rune) string content, if any.
func (v InternalValue) AsWideString() ([]rune, bool) {
	switch v.kind {
	case KindStringWide:
		return v.wide, true
	case KindTargetString:
		if v.target != nil && v.target.Width == WidthWide {
			return v.target.Wide, true
		}
	}
	return nil, false
}

// IsView reports whether this value is a view into a parent's storage.
func (v InternalValue) IsView() bool { return v.view }

// AsBool returns the raw boolean payload and whether v was a boolean.
func (v InternalValue) AsBool() (bool, bool) {
	if v.kind == KindBool {
		return v.b, true
	}
	return false, false
}

// AsInt returns the raw integer payload and whether v was an integer.
func (v InternalValue) AsInt() (int64, bool) {
	if v.kind == KindInt {
		return v.i, true
	}
	return 0, false
}

// AsFloat returns the raw float payload and whether v was a float.
func (v InternalValue) AsFloat() (float64, bool) {
	if v.kind == KindFloat {
		return v.f, true
	}
	return 0, false
}

// AsList returns the list adapter, if v is a list.
func (v InternalValue) AsList() (*ListAdapter, bool) {
	if v.kind == KindList {
		return v.list, true
	}
	return nil, false
}

// AsMap returns the map adapter, if v is a map.
func (v InternalValue) AsMap() (*MapAdapter, bool) {
	if v.kind == KindMap {
		return v.m, true
	}
	return nil, false
}

// AsCallable returns the callable, if v is callable.
func (v InternalValue) AsCallable() (*Callable, bool) {
	if v.kind == KindCallable {
		return v.call, true
	}
	return nil, false
}

// SetTemporary marks v as owning no shared storage; a binary operator
// may reuse v's slot as the result of the next operation.
func (v InternalValue) SetTemporary(flag bool) InternalValue {
	v.temporary = flag
	return v
}

// IsTemporary reports v's temporary flag.
func (v InternalValue) IsTemporary() bool { return v.temporary }

// SetParentData records other's id as v's parent, extending v's
// lifetime to at least cover other's.
func (v InternalValue) SetParentData(other InternalValue) InternalValue {
	if other.id != 0 {
		v.hasParent = true
		v.parent = other.id
	}
	return v
}

// ParentID returns v's recorded parent, if any.
func (v InternalValue) ParentID() (ValueID, bool) { return v.parent, v.hasParent }

// ID returns v's own pool handle, 0 if v was never registered with a pool.
func (v InternalValue) ID() ValueID { return v.id }

// WithID returns a copy of v registered under id.
func (v InternalValue) WithID(id ValueID) InternalValue {
	v.id = id
	return v
}

// Create allocates a fresh id for v from pool and returns the stamped
// copy. Scalars still go through Create so that later SetParentData
// calls against them have a stable handle, matching the arena's role of
// avoiding reference counting rather than avoiding allocation.
func Create(v InternalValue, pool *Pool) InternalValue {
	return v.WithID(pool.NewID())
}

// ShouldExtendLifetime reports whether v references pooled or
// view-backed data whose parent must stay alive for v to remain
// readable: true for adapters, callables, target-strings, string views,
// or any value carrying a recorded parent.
func (v InternalValue) ShouldExtendLifetime() bool {
	if v.hasParent {
		return true
	}
	switch v.kind {
	case KindList, KindMap, KindCallable, KindTargetString:
		return true
	case KindStringNarrow, KindStringWide:
		return v.view
	default:
		return false
	}
}

// ConvertToBool implements Jinja2 truthiness: empty is false, zero
// numbers are false, empty strings/containers are false, everything
// else is true.
func (v InternalValue) ConvertToBool() bool {
	switch v.kind {
	case KindEmpty:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindStringNarrow:
		return len(v.s) != 0
	case KindStringWide:
		return len(v.wide) != 0
	case KindList:
		return v.list != nil && v.list.Len() != 0
	case KindMap:
		return v.m != nil && v.m.Len() != 0
	case KindCallable:
		return v.call != nil
	case KindTargetString:
		if v.target == nil {
			return false
		}
		if v.target.Width == WidthWide {
			return len(v.target.Wide) != 0
		}
		return len(v.target.Narrow) != 0
	default:
		return false
	}
}

// ConvertToInt coerces v to an int64: empty yields def, bool yields 0/1,
// numbers truncate toward zero, strings parse (or yield def on failure),
// containers yield their truthiness as 0/1.
func ConvertToInt(v InternalValue, def int64) int64 {
	switch v.kind {
	case KindEmpty:
		return def
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindInt:
		return v.i
	case KindFloat:
		return int64(v.f)
	case KindStringNarrow:
		if n, err := strconv.ParseInt(v.s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v.s, 64); err == nil {
			return int64(f)
		}
		return def
	case KindStringWide:
		return ConvertToInt(NarrowString(string(v.wide)), def)
	case KindList, KindMap:
		if v.ConvertToBool() {
			return 1
		}
		return 0
	default:
		return def
	}
}
