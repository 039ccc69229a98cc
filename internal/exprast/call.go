package exprast

import (
	"github.com/exprkit/tmplcore/internal/binder"
	"github.com/exprkit/tmplcore/internal/evaluator"
	"github.com/exprkit/tmplcore/internal/render"
	"github.com/exprkit/tmplcore/internal/value"
)

// CallExpression evaluates ValueRef then invokes it, dispatching
// specially for the built-in range/loop.cycle functions.
type CallExpression struct {
	ValueRef   Expression
	Positional []Expression
	Keyword    map[string]Expression
}

func (e *CallExpression) Evaluate(ctx *render.RenderContext) value.InternalValue {
	callee := e.ValueRef.Evaluate(ctx)
	callable, ok := callee.AsCallable()
	if !ok {
		fallback := Subscript(callee, value.NarrowString("operator()"), ctx)
		callable, ok = fallback.AsCallable()
		if !ok {
			return value.Empty()
		}
	}

	switch callable.Kind {
	case value.SpecialFn:
		switch callable.SpecialID {
		case value.RangeFn:
			return e.evalRange(ctx)
		case value.LoopCycleFn:
			return e.evalLoopCycle(ctx)
		default:
			return value.Empty()
		}
	case value.GlobalFunc, value.UserCallable, value.Macro:
		return e.invoke(callable, ctx)
	default:
		return value.Empty()
	}
}

// evalRange implements range(start?, stop, step?): step defaults to 1,
// step 0 yields empty, the produced list has length
// max(0, (stop-start)/step) truncated toward zero.
func (e *CallExpression) evalRange(ctx *render.RenderContext) value.InternalValue {
	args := evalAll(e.Positional, ctx)
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		stop = evaluator.IntegerEvaluator(args[0])
	case 2:
		start = evaluator.IntegerEvaluator(args[0])
		stop = evaluator.IntegerEvaluator(args[1])
	case 3:
		start = evaluator.IntegerEvaluator(args[0])
		stop = evaluator.IntegerEvaluator(args[1])
		step = evaluator.IntegerEvaluator(args[2])
	default:
		return value.Empty()
	}
	if step == 0 {
		return value.Empty()
	}
	n := (stop - start) / step
	if n < 0 {
		n = 0
	}
	pool := ctx.GetPool()
	list := value.NewGeneratedList(int(n), func(i int) value.InternalValue {
		return value.Create(value.Int(start+step*int64(i)), pool)
	})
	return value.List(list).SetTemporary(true)
}

// evalLoopCycle implements loop.cycle(args...): reads loop.index0 from
// scope and returns args[index0 mod len(args)].
func (e *CallExpression) evalLoopCycle(ctx *render.RenderContext) value.InternalValue {
	args := e.Positional
	if len(args) == 0 {
		return value.Empty()
	}
	idx0, found := ctx.FindValue("loop.index0")
	if !found {
		idx0, found = ctx.FindValue("index0")
	}
	if !found {
		return value.Empty()
	}
	i := int(evaluator.IntegerEvaluator(idx0)) % len(args)
	if i < 0 {
		i += len(args)
	}
	return args[i].Evaluate(ctx).SetTemporary(true)
}

// invoke binds Positional/Keyword against callable's declared schema
// via the call-parameter binder, then runs its expression or statement
// body. Statement callables (macros) are invoked through
// their Stmt body writing to a discard sink and their last-written
// value returned, since CallExpression's contract is to produce a
// value regardless of the callable's shape.
func (e *CallExpression) invoke(callable *value.Callable, ctx *render.RenderContext) value.InternalValue {
	callParams := binder.CallParams{Keyword: make(map[string]binder.Expr, len(e.Keyword))}
	for _, p := range e.Positional {
		callParams.Positional = append(callParams.Positional, binder.Expr(p))
	}
	for k, v := range e.Keyword {
		callParams.Keyword[k] = binder.Expr(v)
		callParams.KeywordOrder = append(callParams.KeywordOrder, k)
	}

	bound := binder.BindArguments(callable.Schema, callParams, constOf)
	if !bound.Succeeded {
		return value.Empty()
	}

	if err := ctx.EnterCall(); err != nil {
		return value.Empty()
	}
	defer ctx.LeaveCall()

	callCtx := value.CallContext{
		Args:     make(map[string]value.InternalValue, len(bound.Args)),
		ExtraPos: evalAll(exprSlice(bound.ExtraPosArgs), ctx),
		ExtraKw:  evalMap(exprMap(bound.ExtraKwArgs), ctx),
		Pool:     ctx.GetPool(),
	}
	for name, expr := range bound.Args {
		if ex := asExpression(expr); ex != nil {
			callCtx.Args[name] = ex.Evaluate(ctx)
		}
	}

	if callable.IsStatement() {
		sink := captureSink{}
		if err := callable.Stmt(callCtx, &sink); err != nil {
			return value.Empty()
		}
		return sink.last
	}
	if callable.Expr != nil {
		return callable.Expr(callCtx).SetTemporary(true)
	}
	return value.Empty()
}

func exprSlice(in []binder.Expr) []Expression {
	out := make([]Expression, 0, len(in))
	for _, e := range in {
		if ex := asExpression(e); ex != nil {
			out = append(out, ex)
		}
	}
	return out
}

func exprMap(in map[string]binder.Expr) map[string]Expression {
	out := make(map[string]Expression, len(in))
	for k, e := range in {
		if ex := asExpression(e); ex != nil {
			out[k] = ex
		}
	}
	return out
}

// captureSink is the OutStream a Macro/UserCallable statement body
// writes through when invoked for its value; CallExpression's contract
// only needs the last value written, not a persisted text stream.
type captureSink struct {
	last value.InternalValue
}

func (s *captureSink) WriteValue(v value.InternalValue) error {
	s.last = v
	return nil
}
