package binder

import (
	"testing"

	"github.com/exprkit/tmplcore/internal/value"
)

func constExpr(v value.InternalValue) Expr { return v }

func intOf(t *testing.T, e Expr) int64 {
	t.Helper()
	v, ok := e.(value.InternalValue)
	if !ok {
		t.Fatalf("expected a value.InternalValue expr, got %T", e)
	}
	n, ok := v.AsInt()
	if !ok {
		t.Fatalf("expected an int, got %+v", v)
	}
	return n
}

// f(1, 2, x=3) against schema (a, x, b='d') should bind a=1, b=2, x=3.
func TestBindMixedPositionalAndKeyword(t *testing.T) {
	schema := []value.ArgumentInfo{
		{Name: "a", Mandatory: true},
		{Name: "x", Mandatory: true},
		{Name: "b", Mandatory: false, Default: value.NarrowString("d")},
	}
	call := CallParams{
		Positional:   []Expr{constExpr(value.Int(1)), constExpr(value.Int(2))},
		Keyword:      map[string]Expr{"x": constExpr(value.Int(3))},
		KeywordOrder: []string{"x"},
	}

	bound := BindArguments(schema, call, constExpr)
	if !bound.Succeeded {
		t.Fatal("expected bind to succeed")
	}
	if got := intOf(t, bound.Args["a"]); got != 1 {
		t.Errorf("a = %d, want 1", got)
	}
	if got := intOf(t, bound.Args["x"]); got != 3 {
		t.Errorf("x = %d, want 3", got)
	}
	if got := intOf(t, bound.Args["b"]); got != 2 {
		t.Errorf("b = %d, want 2", got)
	}
}

func TestBindMissingMandatoryFails(t *testing.T) {
	schema := []value.ArgumentInfo{
		{Name: "a", Mandatory: true},
		{Name: "b", Mandatory: true},
	}
	call := CallParams{Positional: []Expr{constExpr(value.Int(1))}}

	bound := BindArguments(schema, call, constExpr)
	if bound.Succeeded {
		t.Fatal("expected bind to fail when a mandatory argument is missing")
	}
}

func TestBindIgnoresVarargPlaceholders(t *testing.T) {
	schema := []value.ArgumentInfo{
		{Name: "a", Mandatory: true},
		{Name: "*args"},
		{Name: "b", Mandatory: true},
	}
	call := CallParams{Positional: []Expr{constExpr(value.Int(1)), constExpr(value.Int(2))}}

	bound := BindArguments(schema, call, constExpr)
	if !bound.Succeeded {
		t.Fatal("expected bind to succeed")
	}
	if got := intOf(t, bound.Args["a"]); got != 1 {
		t.Errorf("a = %d, want 1", got)
	}
	if got := intOf(t, bound.Args["b"]); got != 2 {
		t.Errorf("b = %d, want 2", got)
	}
	if _, ok := bound.Args["*args"]; ok {
		t.Error("placeholder slot should never appear in bound Args")
	}
}

// f('Bye', 'Bob') against schema (greeting='Hi', name) has exactly enough
// positionals to cover the leading optional slot and the mandatory slot
// after it, so both bind in declaration order rather than the mandatory
// slot claiming the first positional and pushing the second to extras.
func TestBindPullsSurplusPositionalIntoLeadingOptional(t *testing.T) {
	schema := []value.ArgumentInfo{
		{Name: "greeting", Mandatory: false, Default: value.NarrowString("Hi")},
		{Name: "name", Mandatory: true},
	}
	call := CallParams{Positional: []Expr{constExpr(value.NarrowString("Bye")), constExpr(value.NarrowString("Bob"))}}

	bound := BindArguments(schema, call, constExpr)
	if !bound.Succeeded {
		t.Fatal("expected bind to succeed")
	}
	greeting, _ := bound.Args["greeting"].(value.InternalValue)
	name, _ := bound.Args["name"].(value.InternalValue)
	if s, _ := greeting.AsString(); s != "Bye" {
		t.Errorf("greeting = %q, want %q", s, "Bye")
	}
	if s, _ := name.AsString(); s != "Bob" {
		t.Errorf("name = %q, want %q", s, "Bob")
	}
	if len(bound.ExtraPosArgs) != 0 {
		t.Errorf("ExtraPosArgs = %v, want none", bound.ExtraPosArgs)
	}
}

// f('Bob') against the same schema has only enough positionals for the
// mandatory slot, so the leading optional is left at its default instead
// of being pulled in.
func TestBindLeavesLeadingOptionalAtDefaultWhenNoSurplus(t *testing.T) {
	schema := []value.ArgumentInfo{
		{Name: "greeting", Mandatory: false, Default: value.NarrowString("Hi")},
		{Name: "name", Mandatory: true},
	}
	call := CallParams{Positional: []Expr{constExpr(value.NarrowString("Bob"))}}

	bound := BindArguments(schema, call, constExpr)
	if !bound.Succeeded {
		t.Fatal("expected bind to succeed")
	}
	greeting, _ := bound.Args["greeting"].(value.InternalValue)
	name, _ := bound.Args["name"].(value.InternalValue)
	if s, _ := greeting.AsString(); s != "Hi" {
		t.Errorf("greeting = %q, want default %q", s, "Hi")
	}
	if s, _ := name.AsString(); s != "Bob" {
		t.Errorf("name = %q, want %q", s, "Bob")
	}
}

func TestBindExtras(t *testing.T) {
	schema := []value.ArgumentInfo{{Name: "a", Mandatory: true}}
	call := CallParams{
		Positional:   []Expr{constExpr(value.Int(1)), constExpr(value.Int(2))},
		Keyword:      map[string]Expr{"extra": constExpr(value.Int(3))},
		KeywordOrder: []string{"extra"},
	}

	bound := BindArguments(schema, call, constExpr)
	if !bound.Succeeded {
		t.Fatal("expected bind to succeed")
	}
	if len(bound.ExtraPosArgs) != 1 {
		t.Fatalf("ExtraPosArgs = %v, want 1 entry", bound.ExtraPosArgs)
	}
	if _, ok := bound.ExtraKwArgs["extra"]; !ok {
		t.Fatal("expected 'extra' in ExtraKwArgs")
	}
}
