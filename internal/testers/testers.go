// Package testers implements the tester registry and built-in testers:
// a Tester answers a yes/no question about a value, invoked from an
// `is` expression (exprast.IsExpression). It follows the same
// process-wide registry pattern as internal/filters.
package testers

import (
	"errors"
	"fmt"

	"github.com/exprkit/tmplcore/internal/render"
	"github.com/exprkit/tmplcore/internal/value"
)

// ErrUnknownTester is the sentinel wrapped into Create's error when name
// has no registered factory.
var ErrUnknownTester = errors.New("unknown tester")

// Context is the render-time context a Tester runs against.
type Context struct {
	rc *render.RenderContext
}

// NewTestContext wraps a render context for tester evaluation.
func NewTestContext(rc *render.RenderContext) *Context { return &Context{rc: rc} }

// Params is a tester invocation's already-evaluated arguments, the
// same positional/keyword shape as filters.CallArgs.
type Params struct {
	Positional []value.InternalValue
	Keyword    map[string]value.InternalValue
}

func arg(p Params, name string, pos int, def value.InternalValue) value.InternalValue {
	if v, ok := p.Keyword[name]; ok {
		return v
	}
	if pos >= 0 && pos < len(p.Positional) {
		return p.Positional[pos]
	}
	return def
}

// Tester is anything Create can hand back.
type Tester interface {
	Test(v value.InternalValue, ctx *Context) bool
}

type testerFunc func(v value.InternalValue, ctx *Context, p Params) bool

type boundTester struct {
	fn     testerFunc
	params Params
}

func (b boundTester) Test(v value.InternalValue, ctx *Context) bool { return b.fn(v, ctx, b.params) }

type factory func(p Params) (Tester, error)

var registry = map[string]factory{}

func register(name string, fn testerFunc) {
	registry[name] = func(p Params) (Tester, error) {
		return boundTester{fn: fn, params: p}, nil
	}
}

func init() {
	register("in", func(v value.InternalValue, ctx *Context, p Params) bool {
		seq := arg(p, "seq", 0, value.Empty())
		return membership(v, seq)
	})
	register("defined", func(v value.InternalValue, ctx *Context, p Params) bool {
		return !v.IsEmpty()
	})
	register("odd", func(v value.InternalValue, ctx *Context, p Params) bool {
		i, ok := v.AsInt()
		return ok && i%2 != 0
	})
	register("even", func(v value.InternalValue, ctx *Context, p Params) bool {
		i, ok := v.AsInt()
		return ok && i%2 == 0
	})
	register("string", func(v value.InternalValue, ctx *Context, p Params) bool {
		switch v.Kind() {
		case value.KindStringNarrow, value.KindStringWide, value.KindTargetString:
			return true
		}
		return false
	})
	register("number", func(v value.InternalValue, ctx *Context, p Params) bool {
		return v.Kind() == value.KindInt || v.Kind() == value.KindFloat
	})
	register("sequence", func(v value.InternalValue, ctx *Context, p Params) bool {
		switch v.Kind() {
		case value.KindList, value.KindStringNarrow, value.KindStringWide, value.KindTargetString:
			return true
		}
		return false
	})
	register("mapping", func(v value.InternalValue, ctx *Context, p Params) bool {
		return v.Kind() == value.KindMap
	})
	register("equalto", func(v value.InternalValue, ctx *Context, p Params) bool {
		other := arg(p, "other", 0, value.Empty())
		return equal(v, other)
	})
}

// Create looks up name and constructs a Tester bound to p. A miss
// surfaces as a construction-time error rather than a silent false.
func Create(name string, p Params) (Tester, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("tester %q: %w", name, ErrUnknownTester)
	}
	return f(p)
}

// Known reports whether name is a registered tester.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

func membership(needle, seq value.InternalValue) bool {
	switch seq.Kind() {
	case value.KindList:
		l, _ := seq.AsList()
		for _, it := range l.Materialize() {
			if equal(needle, it) {
				return true
			}
		}
		return false
	case value.KindMap:
		key, ok := value.AsPlainString(needle)
		if !ok {
			return false
		}
		m, _ := seq.AsMap()
		return m.Contains(key)
	default:
		ns, nok := value.AsPlainString(needle)
		hs, hok := value.AsPlainString(seq)
		if nok && hok {
			for i := 0; i+len(ns) <= len(hs); i++ {
				if hs[i:i+len(ns)] == ns {
					return true
				}
			}
		}
		return false
	}
}

func equal(a, b value.InternalValue) bool {
	if as, aok := value.AsPlainString(a); aok {
		bs, bok := value.AsPlainString(b)
		return bok && as == bs
	}
	if ai, aok := a.AsInt(); aok {
		if bi, bok := b.AsInt(); bok {
			return ai == bi
		}
		if bf, bok := b.AsFloat(); bok {
			return float64(ai) == bf
		}
		return false
	}
	if af, aok := a.AsFloat(); aok {
		if bf, bok := b.AsFloat(); bok {
			return af == bf
		}
		if bi, bok := b.AsInt(); bok {
			return af == float64(bi)
		}
		return false
	}
	if ab, aok := a.AsBool(); aok {
		bb, bok := b.AsBool()
		return bok && ab == bb
	}
	return a.IsEmpty() && b.IsEmpty()
}
