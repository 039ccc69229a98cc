package testers

import (
	"errors"
	"testing"

	"github.com/exprkit/tmplcore/internal/value"
)

func mustTest(t *testing.T, name string, v value.InternalValue, p Params) bool {
	t.Helper()
	tester, err := Create(name, p)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", name, err)
	}
	return tester.Test(v, nil)
}

func TestDefined(t *testing.T) {
	if mustTest(t, "defined", value.Empty(), Params{}) {
		t.Fatal("empty value should not be defined")
	}
	if !mustTest(t, "defined", value.Int(0), Params{}) {
		t.Fatal("zero is still defined")
	}
}

func TestOddEven(t *testing.T) {
	if !mustTest(t, "odd", value.Int(3), Params{}) {
		t.Fatal("3 should be odd")
	}
	if !mustTest(t, "even", value.Int(4), Params{}) {
		t.Fatal("4 should be even")
	}
}

func TestInList(t *testing.T) {
	seq := value.List(value.NewMaterializedList([]value.InternalValue{
		value.Int(1), value.Int(2), value.Int(3),
	}))
	p := Params{Keyword: map[string]value.InternalValue{"seq": seq}}
	if !mustTest(t, "in", value.Int(2), p) {
		t.Fatal("2 should be in [1,2,3]")
	}
	if mustTest(t, "in", value.Int(9), p) {
		t.Fatal("9 should not be in [1,2,3]")
	}
}

func TestUnknownTesterErrors(t *testing.T) {
	_, err := Create("nope", Params{})
	if err == nil {
		t.Fatal("expected an error for an unknown tester")
	}
	if !errors.Is(err, ErrUnknownTester) {
		t.Fatalf("Create(%q) error = %v, want it to wrap ErrUnknownTester", "nope", err)
	}
}

func TestEqualTo(t *testing.T) {
	p := Params{Positional: []value.InternalValue{value.Int(5)}}
	if !mustTest(t, "equalto", value.Int(5), p) {
		t.Fatal("5 should equal 5")
	}
}
