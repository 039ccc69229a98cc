package exprast

import (
	"github.com/exprkit/tmplcore/internal/evaluator"
	"github.com/exprkit/tmplcore/internal/render"
	"github.com/exprkit/tmplcore/internal/testers"
	"github.com/exprkit/tmplcore/internal/value"
)

// BinOp names the binary operators a BinaryExpression can carry.
// Arithmetic/comparison ops pass through verbatim to
// evaluator.BinaryMathOperation by their string form.
type BinOp string

const (
	LogicalAnd   BinOp = "and"
	LogicalOr    BinOp = "or"
	In           BinOp = "in"
	StringConcat BinOp = "concat"
)

// BinaryExpression evaluates L and (unless short-circuited) R, then
// combines them per Op.
type BinaryExpression struct {
	Op   BinOp
	Raw  string // the operator token for arithmetic/comparison ops, passed to BinaryMathOperation verbatim
	L, R Expression
}

func (e *BinaryExpression) Evaluate(ctx *render.RenderContext) value.InternalValue {
	switch e.Op {
	case LogicalAnd:
		l := e.L.Evaluate(ctx)
		if !l.ConvertToBool() {
			return value.Bool(false).SetTemporary(true)
		}
		return value.Bool(e.R.Evaluate(ctx).ConvertToBool()).SetTemporary(true)
	case LogicalOr:
		l := e.L.Evaluate(ctx)
		if l.ConvertToBool() {
			return value.Bool(true).SetTemporary(true)
		}
		return value.Bool(e.R.Evaluate(ctx).ConvertToBool()).SetTemporary(true)
	case In:
		l := e.L.Evaluate(ctx)
		r := e.R.Evaluate(ctx)
		t, err := testers.Create("in", testers.Params{Keyword: map[string]value.InternalValue{"seq": r}})
		if err != nil {
			return value.Bool(false).SetTemporary(true)
		}
		return value.Bool(t.Test(l, testers.NewTestContext(ctx))).SetTemporary(true)
	case StringConcat:
		return e.stringConcat(ctx)
	default:
		l := e.L.Evaluate(ctx)
		r := e.R.Evaluate(ctx)
		result := evaluator.BinaryMathOperation(e.Raw, l, r)
		// If the left operand is already temporary, reuse its pool
		// handle for the result rather than allocating a fresh one.
		if l.IsTemporary() && l.ID() != 0 {
			ctx.GetPool().MarkReuse()
			result = result.WithID(l.ID())
		}
		return result
	}
}

func (e *BinaryExpression) stringConcat(ctx *render.RenderContext) value.InternalValue {
	width := ctx.GetRendererCallback().TargetWidth()
	lr := coerceWidth(e.L.Evaluate(ctx), width)
	rr := coerceWidth(e.R.Evaluate(ctx), width)
	out := append(append([]rune{}, lr...), rr...)
	if width == value.WidthWide {
		return value.FromTargetString(value.NewWideTarget(out)).SetTemporary(true)
	}
	return value.FromTargetString(value.NewNarrowTarget(string(out))).SetTemporary(true)
}

// coerceWidth renders v as text and converts it to width's rune form:
// StringConcat coerces both operands to a target-string of the same
// width via the renderer callback.
func coerceWidth(v value.InternalValue, width value.Width) []rune {
	if runes, w, ok := value.StringWidthOf(v); ok && w == width {
		return runes
	}
	return []rune(value.Display(v))
}
