// Package filters implements the filter registry and the built-in
// string and collection filters. A Filter consumes a base value and
// the render context and produces a result value; filter chains apply
// their parent filter (if any) before themselves. The registry is a
// process-wide, construct-on-first-use map from name to factory.
package filters

import (
	"errors"
	"fmt"

	"github.com/exprkit/tmplcore/internal/engineconfig"
	"github.com/exprkit/tmplcore/internal/render"
	"github.com/exprkit/tmplcore/internal/value"
)

// ErrUnknownFilter is the sentinel wrapped into Create's error when name
// has no registered factory.
var ErrUnknownFilter = errors.New("unknown filter")

// Context is the render-time context a Filter runs against — a thin
// wrapper over *render.RenderContext, kept as its own type so this
// package can add filter-specific accessors without growing the render
// package's surface.
type Context struct {
	rc *render.RenderContext
}

// NewFilterContext wraps a render context for filter evaluation.
func NewFilterContext(rc *render.RenderContext) *Context { return &Context{rc: rc} }

// Pool exposes the render's arena.
func (c *Context) Pool() *value.Pool { return c.rc.GetPool() }

// TargetWidth reports the render's output width preference.
func (c *Context) TargetWidth() value.Width { return c.rc.GetRendererCallback().TargetWidth() }

// Config reports the render-wide tunables (casing, truncate defaults,
// urlencode reserved set) a nil Context falls back to
// engineconfig.Default() for, so filters constructed and exercised
// outside a full render (as the package's tests do) still get sane
// defaults.
func (c *Context) Config() engineconfig.Config {
	if c == nil || c.rc == nil {
		return engineconfig.Default()
	}
	return c.rc.GetConfig()
}

// CallArgs is a filter invocation's already-evaluated arguments:
// positional values in call order plus a name→value keyword map. Each
// filter mode resolves its own declared names against this with arg(),
// rather than going through the general call-parameter binder, since a
// filter's parameter list is small and fixed rather than needing a
// callable's full schema.
type CallArgs struct {
	Positional []value.InternalValue
	Keyword    map[string]value.InternalValue
}

// arg resolves a declared parameter: a keyword match wins, otherwise
// the positional found at pos (if within range), otherwise def.
func arg(a CallArgs, name string, pos int, def value.InternalValue) value.InternalValue {
	if v, ok := a.Keyword[name]; ok {
		return v
	}
	if pos >= 0 && pos < len(a.Positional) {
		return a.Positional[pos]
	}
	return def
}

// explicitArg reports whether the caller actually supplied name (by
// keyword or within the positional range), as opposed to arg's
// always-present default — used where the fallback value should come
// from engineconfig.Config rather than a literal baked in at
// construction time.
func explicitArg(a CallArgs, name string, pos int) (value.InternalValue, bool) {
	if v, ok := a.Keyword[name]; ok {
		return v, true
	}
	if pos >= 0 && pos < len(a.Positional) {
		return a.Positional[pos], true
	}
	return value.Empty(), false
}

// Filter is anything Create can hand back.
type Filter interface {
	Filter(baseVal value.InternalValue, ctx *Context) value.InternalValue
}

type chainedFilter struct {
	parent Filter
	self   Filter
}

func (c *chainedFilter) Filter(baseVal value.InternalValue, ctx *Context) value.InternalValue {
	if c.parent != nil {
		baseVal = c.parent.Filter(baseVal, ctx)
	}
	return c.self.Filter(baseVal, ctx)
}

// Chain composes parent before self: a chained filter applies its
// parent filter's result first, then its own.
func Chain(parent, self Filter) Filter {
	if parent == nil {
		return self
	}
	return &chainedFilter{parent: parent, self: self}
}

type factory func(args CallArgs) (Filter, error)

var registry = map[string]factory{}

func register(name string, f factory) { registry[name] = f }

func init() {
	register("trim", func(a CallArgs) (Filter, error) {
		return &StringConverter{Mode: Trim}, nil
	})
	register("title", func(a CallArgs) (Filter, error) {
		return &StringConverter{Mode: Title}, nil
	})
	register("wordcount", func(a CallArgs) (Filter, error) {
		return &StringConverter{Mode: WordCount}, nil
	})
	register("upper", func(a CallArgs) (Filter, error) {
		return &StringConverter{Mode: Upper}, nil
	})
	register("lower", func(a CallArgs) (Filter, error) {
		return &StringConverter{Mode: Lower}, nil
	})
	register("replace", func(a CallArgs) (Filter, error) {
		return newReplaceFilter(a), nil
	})
	register("truncate", func(a CallArgs) (Filter, error) {
		return newTruncateFilter(a), nil
	})
	register("urlencode", func(a CallArgs) (Filter, error) {
		return &StringConverter{Mode: UrlEncode}, nil
	})
	register("pprint", func(a CallArgs) (Filter, error) {
		return pprintFilter{}, nil
	})
	register("default", func(a CallArgs) (Filter, error) {
		return newDefaultFilter(a), nil
	})
	register("join", func(a CallArgs) (Filter, error) {
		return newJoinFilter(a), nil
	})
	register("list", func(a CallArgs) (Filter, error) {
		return listFilter{}, nil
	})
	register("length", func(a CallArgs) (Filter, error) {
		return lengthFilter{}, nil
	})
	register("sort", func(a CallArgs) (Filter, error) {
		return newSortFilter(a), nil
	})
	register("min", func(a CallArgs) (Filter, error) {
		return minmaxFilter{takeMax: false}, nil
	})
	register("max", func(a CallArgs) (Filter, error) {
		return minmaxFilter{takeMax: true}, nil
	})
	register("map", func(a CallArgs) (Filter, error) {
		return newMapFilter(a), nil
	})
	register("select", func(a CallArgs) (Filter, error) {
		return newSelectFilter(a, false), nil
	})
	register("reject", func(a CallArgs) (Filter, error) {
		return newSelectFilter(a, true), nil
	})
}

// Create looks up name and constructs a Filter bound to args. A miss
// surfaces as a construction-time error to the caller, never as a
// silently-empty render result.
func Create(name string, args CallArgs) (Filter, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("filter %q: %w", name, ErrUnknownFilter)
	}
	return f(args)
}

// Known reports whether name is a registered filter, for callers that
// want to validate a parsed template ahead of any render.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}
