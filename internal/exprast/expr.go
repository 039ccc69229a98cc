// Package exprast implements the expression tree: the node types an
// external parser/statement-renderer builds and hands to this core for
// evaluation. Every node satisfies Expression; nodes that can stream
// their result without materializing it (FullExpression with no guard)
// also satisfy Renderer.
//
// The tree is deliberately opaque from the outside: nothing here
// parses source text, it only evaluates an already-built tree.
package exprast

import (
	"github.com/exprkit/tmplcore/internal/binder"
	"github.com/exprkit/tmplcore/internal/evaluator"
	"github.com/exprkit/tmplcore/internal/filters"
	"github.com/exprkit/tmplcore/internal/render"
	"github.com/exprkit/tmplcore/internal/testers"
	"github.com/exprkit/tmplcore/internal/value"
)

// Expression is satisfied by every node in the tree.
type Expression interface {
	Evaluate(ctx *render.RenderContext) value.InternalValue
}

// Renderer is satisfied by nodes that can stream their result to an
// OutStream without necessarily materializing an intermediate value.
type Renderer interface {
	Render(out render.OutStream, ctx *render.RenderContext) error
}

// ConstantExpression wraps a literal value baked in at tree-construction
// time.
type ConstantExpression struct {
	Value value.InternalValue
}

// Evaluate returns a copy of the wrapped literal. The copy is
// non-temporary, since a constant's storage belongs to the tree, not
// to any one evaluation.
func (e *ConstantExpression) Evaluate(ctx *render.RenderContext) value.InternalValue {
	return e.Value.SetTemporary(false)
}

// ValueRefExpression looks a name up in the current scope chain.
type ValueRefExpression struct {
	Name string
}

// Evaluate returns the empty value on a scope miss; it never raises.
func (e *ValueRefExpression) Evaluate(ctx *render.RenderContext) value.InternalValue {
	v, _ := ctx.FindValue(e.Name)
	return v
}

// SubscriptExpression evaluates base then applies a chain of index
// operations, propagating parent-lifetime tracking.
type SubscriptExpression struct {
	Base    Expression
	Indices []Expression
}

func (e *SubscriptExpression) Evaluate(ctx *render.RenderContext) value.InternalValue {
	cur := e.Base.Evaluate(ctx)
	for _, idxExpr := range e.Indices {
		idx := idxExpr.Evaluate(ctx)
		next := Subscript(cur, idx, ctx)
		if cur.ShouldExtendLifetime() && cur.ID() != 0 {
			if next.ID() == 0 {
				next = value.Create(next, ctx.GetPool())
			}
			next = next.SetParentData(cur)
			ctx.GetPool().SetParent(next.ID(), cur.ID())
		}
		cur = next
	}
	return cur
}

// Subscript implements the base[index] operation: string/int key on a
// map, int index (negative counted from the end) on a list; misses and
// out-of-range indices yield the empty value rather than erroring.
func Subscript(base, idx value.InternalValue, ctx *render.RenderContext) value.InternalValue {
	switch base.Kind() {
	case value.KindMap:
		m, _ := base.AsMap()
		key := keyOf(idx)
		v, ok := m.Get(key)
		if !ok {
			return value.Empty()
		}
		return v
	case value.KindList:
		l, _ := base.AsList()
		i := int(evaluator.IntegerEvaluator(idx))
		v, ok := l.Get(i)
		if !ok {
			return value.Empty()
		}
		return v
	default:
		return value.Empty()
	}
}

func keyOf(idx value.InternalValue) string {
	if s, ok := idx.AsString(); ok {
		return s
	}
	if r, ok := idx.AsWideString(); ok {
		return string(r)
	}
	return value.Display(idx)
}

// FilterCall is one `| name(args...)` step in a filter chain: its
// argument expressions, evaluated fresh at each pass through the
// chain. Filters apply left to right, parent before child.
type FilterCall struct {
	Name       string
	Positional []Expression
	Keyword    map[string]Expression
}

// FilteredExpression evaluates inner then applies a named filter chain.
type FilteredExpression struct {
	Inner   Expression
	Filters []FilterCall
}

func (e *FilteredExpression) Evaluate(ctx *render.RenderContext) value.InternalValue {
	v := e.Inner.Evaluate(ctx)
	fc := filters.NewFilterContext(ctx)
	for _, call := range e.Filters {
		args := filters.CallArgs{
			Positional: evalAll(call.Positional, ctx),
			Keyword:    evalMap(call.Keyword, ctx),
		}
		f, err := filters.Create(call.Name, args)
		if err != nil {
			return value.Empty()
		}
		v = f.Filter(v, fc)
	}
	return v.SetTemporary(true)
}

func evalAll(exprs []Expression, ctx *render.RenderContext) []value.InternalValue {
	out := make([]value.InternalValue, len(exprs))
	for i, e := range exprs {
		out[i] = e.Evaluate(ctx)
	}
	return out
}

func evalMap(exprs map[string]Expression, ctx *render.RenderContext) map[string]value.InternalValue {
	out := make(map[string]value.InternalValue, len(exprs))
	for k, e := range exprs {
		out[k] = e.Evaluate(ctx)
	}
	return out
}

// UnaryExpression applies a unary operator to inner.
type UnaryExpression struct {
	Op    string
	Inner Expression
}

func (e *UnaryExpression) Evaluate(ctx *render.RenderContext) value.InternalValue {
	return evaluator.UnaryOperation(e.Op, e.Inner.Evaluate(ctx))
}

// TupleCreator builds a materialized list value from its elements.
type TupleCreator struct {
	Elements []Expression
}

func (e *TupleCreator) Evaluate(ctx *render.RenderContext) value.InternalValue {
	items := make([]value.InternalValue, len(e.Elements))
	for i, el := range e.Elements {
		items[i] = el.Evaluate(ctx)
	}
	return value.List(value.NewMaterializedList(items)).SetTemporary(true)
}

// DictEntry is one key/value pair of a DictCreator.
type DictEntry struct {
	Key   Expression
	Value Expression
}

// DictCreator builds a map value from its entries.
type DictCreator struct {
	Entries []DictEntry
}

func (e *DictCreator) Evaluate(ctx *render.RenderContext) value.InternalValue {
	entries := make(map[string]value.InternalValue, len(e.Entries))
	for _, ent := range e.Entries {
		k := keyOf(ent.Key.Evaluate(ctx))
		entries[k] = ent.Value.Evaluate(ctx)
	}
	return value.Map(value.NewMapAdapter(entries)).SetTemporary(true)
}

// IsExpression invokes a registered tester against Value.
type IsExpression struct {
	Value      Expression
	TesterName string
	Positional []Expression
	Keyword    map[string]Expression
}

func (e *IsExpression) Evaluate(ctx *render.RenderContext) value.InternalValue {
	params := testers.Params{
		Positional: evalAll(e.Positional, ctx),
		Keyword:    evalMap(e.Keyword, ctx),
	}
	t, err := testers.Create(e.TesterName, params)
	if err != nil {
		return value.Bool(false).SetTemporary(true)
	}
	tc := testers.NewTestContext(ctx)
	return value.Bool(t.Test(e.Value.Evaluate(ctx), tc)).SetTemporary(true)
}

// IfExpression is a boolean guard used by FullExpression: `expr if
// TestExpr else AltValue`.
type IfExpression struct {
	TestExpr Expression
	AltValue Expression
}

// Evaluate reports TestExpr's truthiness.
func (e *IfExpression) Evaluate(ctx *render.RenderContext) value.InternalValue {
	return value.Bool(e.TestExpr.Evaluate(ctx).ConvertToBool()).SetTemporary(true)
}

// EvaluateAltValue returns the else-branch value, or empty if none was
// declared.
func (e *IfExpression) EvaluateAltValue(ctx *render.RenderContext) value.InternalValue {
	if e.AltValue == nil {
		return value.Empty()
	}
	return e.AltValue.Evaluate(ctx)
}

// FullExpression is the top-level `primary if guard` construct that a
// statement renderer hands to Evaluate/Render.
type FullExpression struct {
	Primary Expression
	Guard   *IfExpression
}

func (e *FullExpression) Evaluate(ctx *render.RenderContext) value.InternalValue {
	if e.Guard != nil && !e.Guard.Evaluate(ctx).ConvertToBool() {
		return e.Guard.EvaluateAltValue(ctx)
	}
	return e.Primary.Evaluate(ctx)
}

// Render streams the result to out. With no guard it delegates to the
// primary's own Render when available, preserving streaming for
// callable statements; with a guard it falls back to evaluate-then-write.
func (e *FullExpression) Render(out render.OutStream, ctx *render.RenderContext) error {
	if e.Guard == nil {
		if r, ok := e.Primary.(Renderer); ok {
			return r.Render(out, ctx)
		}
		return out.WriteValue(e.Primary.Evaluate(ctx))
	}
	return out.WriteValue(e.Evaluate(ctx))
}

var _ Expression = (*binderExprAdapter)(nil)

// binderExprAdapter lets a bound value.InternalValue (a filled-in
// default from the call-parameter binder) stand in as an Expression,
// closing the loop with binder.BindArguments's constOf callback.
type binderExprAdapter struct {
	v value.InternalValue
}

func (a *binderExprAdapter) Evaluate(ctx *render.RenderContext) value.InternalValue { return a.v }

// constOf adapts an InternalValue default into a binder.Expr.
func constOf(v value.InternalValue) binder.Expr {
	return &binderExprAdapter{v: v}
}

func asExpression(e binder.Expr) Expression {
	expr, _ := e.(Expression)
	return expr
}
