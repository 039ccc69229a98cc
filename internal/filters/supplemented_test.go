package filters

import (
	"errors"
	"testing"

	"github.com/exprkit/tmplcore/internal/value"
)

func TestCreateUnknownFilterWrapsSentinel(t *testing.T) {
	_, err := Create("nope", CallArgs{})
	if err == nil {
		t.Fatal("expected an error for an unknown filter")
	}
	if !errors.Is(err, ErrUnknownFilter) {
		t.Fatalf("Create(%q) error = %v, want it to wrap ErrUnknownFilter", "nope", err)
	}
}

func TestCreateKnownFilter(t *testing.T) {
	f, err := Create("trim", CallArgs{})
	if err != nil {
		t.Fatalf("Create(trim): %v", err)
	}
	got := f.Filter(narrowOf(" a  b "), nil)
	s, _ := got.AsString()
	if s != "a b" {
		t.Fatalf("trim via Create = %q, want %q", s, "a b")
	}
}

func listOf(ints ...int64) value.InternalValue {
	items := make([]value.InternalValue, len(ints))
	for i, n := range ints {
		items[i] = value.Int(n)
	}
	return value.List(value.NewMaterializedList(items))
}

func TestDefaultFilterSubstitutesOnEmpty(t *testing.T) {
	f := newDefaultFilter(CallArgs{Positional: []value.InternalValue{value.NarrowString("fallback")}})
	got := f.Filter(value.Empty(), nil)
	s, _ := got.AsString()
	if s != "fallback" {
		t.Fatalf("default filter on empty = %q, want \"fallback\"", s)
	}
	got = f.Filter(value.NarrowString("present"), nil)
	s, _ = got.AsString()
	if s != "present" {
		t.Fatalf("default filter should pass through a present value, got %q", s)
	}
}

func TestJoinFilter(t *testing.T) {
	f := newJoinFilter(CallArgs{Positional: []value.InternalValue{value.NarrowString(", ")}})
	got := f.Filter(listOf(1, 2, 3), nil)
	s, _ := got.AsString()
	if s != "1, 2, 3" {
		t.Fatalf("join = %q, want \"1, 2, 3\"", s)
	}
}

func TestSortFilterReverse(t *testing.T) {
	f := newSortFilter(CallArgs{Positional: []value.InternalValue{value.Bool(true)}})
	got := f.Filter(listOf(3, 1, 2), nil)
	l, _ := got.AsList()
	items := l.Materialize()
	want := []int64{3, 2, 1}
	for i, w := range want {
		n, _ := items[i].AsInt()
		if n != w {
			t.Fatalf("sort(reverse=true)[%d] = %d, want %d", i, n, w)
		}
	}
}

func TestLengthFilter(t *testing.T) {
	got := lengthFilter{}.Filter(listOf(1, 2, 3), nil)
	n, _ := got.AsInt()
	if n != 3 {
		t.Fatalf("length = %d, want 3", n)
	}
}

func TestMinMaxFilter(t *testing.T) {
	min := minmaxFilter{takeMax: false}.Filter(listOf(3, 1, 2), nil)
	max := minmaxFilter{takeMax: true}.Filter(listOf(3, 1, 2), nil)
	minN, _ := min.AsInt()
	maxN, _ := max.AsInt()
	if minN != 1 || maxN != 3 {
		t.Fatalf("min=%d max=%d, want 1 and 3", minN, maxN)
	}
}

func TestPprintFilterIndentsNestedLists(t *testing.T) {
	got := pprintFilter{}.Filter(listOf(1, 2), nil)
	s, _ := got.AsString()
	want := "[\n  1,\n  2\n]"
	if s != want {
		t.Fatalf("pprint = %q, want %q", s, want)
	}
}

func TestPprintFilterScalarIsInline(t *testing.T) {
	got := pprintFilter{}.Filter(value.Int(7), nil)
	s, _ := got.AsString()
	if s != "7" {
		t.Fatalf("pprint(7) = %q, want %q", s, "7")
	}
}

func TestSelectRejectByTruthiness(t *testing.T) {
	items := value.List(value.NewMaterializedList([]value.InternalValue{
		value.Bool(true), value.Bool(false), value.Int(1), value.Int(0),
	}))
	selected := newSelectFilter(CallArgs{}, false).Filter(items, nil)
	l, _ := selected.AsList()
	if l.Len() != 2 {
		t.Fatalf("select should keep 2 truthy items, got %d", l.Len())
	}
	rejected := newSelectFilter(CallArgs{}, true).Filter(items, nil)
	l, _ = rejected.AsList()
	if l.Len() != 2 {
		t.Fatalf("reject should keep 2 falsy items, got %d", l.Len())
	}
}
