// Package render implements the RenderContext: the lexical scope
// stack, pool handle, and output sink that an expression tree
// evaluates against. The scope chain is a store-plus-outer-link design,
// generalized from a single global/enclosed pair into an explicit
// EnterScope/LeaveScope stack, so pushes and pops stay strictly paired
// rather than relying on closures capturing an enclosing environment.
package render

import (
	"fmt"
	"log"

	"github.com/exprkit/tmplcore/internal/engineconfig"
	"github.com/exprkit/tmplcore/internal/metrics"
	"github.com/exprkit/tmplcore/internal/value"
)

// RendererCallback is the read-only, render-wide policy the core
// borrows during evaluation: the output width to coerce strings to for
// StringConcat and Render, and the sink new text is written to.
type RendererCallback interface {
	// TargetWidth reports which width StringConcat and streamed output
	// should coerce to.
	TargetWidth() value.Width
	// Write appends already-rendered text to the render's output.
	Write(s string) error
}

// OutStream is the minimal sink a statement callable or Render call
// writes through; it is structurally identical to value.OutStream.
type OutStream interface {
	WriteValue(value.InternalValue) error
}

// scope is one frame of the lexical scope stack.
type scope struct {
	vars map[string]value.InternalValue
}

// ErrCallDepthExceeded is returned by EnterCall when MaxCallDepth would
// be exceeded, guarding against infinite recursion through user
// callables.
var ErrCallDepthExceeded = fmt.Errorf("render: call depth exceeded")

// RenderContext is the per-render evaluation environment: an owned
// pool, a lexical scope stack, the renderer callback, and a call-depth
// counter. A RenderContext must not be shared across concurrent
// renders.
type RenderContext struct {
	pool     *value.Pool
	scopes   []scope
	callback RendererCallback
	out      OutStream
	config   engineconfig.Config
	metrics  *metrics.Sink

	Verbose      bool
	MaxCallDepth int
	callDepth    int
}

// New builds a RenderContext with a fresh pool and a single root scope
// pre-populated with globals (e.g. the range special function). It
// carries the built-in engineconfig.Default() tunables until SetConfig
// overrides them, and has no metrics sink until SetMetrics is called.
func New(callback RendererCallback, out OutStream) *RenderContext {
	cfg := engineconfig.Default()
	ctx := &RenderContext{
		pool:         value.NewPool(),
		callback:     callback,
		out:          out,
		config:       cfg,
		MaxCallDepth: cfg.MaxCallDepth,
		Verbose:      cfg.Verbose,
	}
	ctx.scopes = []scope{{vars: rootGlobals()}}
	return ctx
}

func rootGlobals() map[string]value.InternalValue {
	rangeCallable := &value.Callable{
		Kind:      value.SpecialFn,
		Name:      "range",
		SpecialID: value.RangeFn,
	}
	return map[string]value.InternalValue{
		"range": value.FromCallable(rangeCallable),
	}
}

// GetPool returns the render's arena.
func (ctx *RenderContext) GetPool() *value.Pool { return ctx.pool }

// GetRendererCallback returns the borrowed, read-only renderer policy.
func (ctx *RenderContext) GetRendererCallback() RendererCallback { return ctx.callback }

// Out returns the sink text is streamed to.
func (ctx *RenderContext) Out() OutStream { return ctx.out }

// GetConfig returns the render-wide tunables (casing, truncate
// defaults, urlencode reserved set) that filters consult.
func (ctx *RenderContext) GetConfig() engineconfig.Config { return ctx.config }

// SetConfig replaces the render-wide tunables, also syncing
// MaxCallDepth and Verbose to the config's values so a single config
// load governs both the call-depth guard and diagnostic output.
func (ctx *RenderContext) SetConfig(cfg engineconfig.Config) {
	ctx.config = cfg
	ctx.MaxCallDepth = cfg.MaxCallDepth
	ctx.Verbose = cfg.Verbose
}

// SetMetrics attaches a metrics sink that Close appends this render's
// final Stats to. A nil sink (the default) makes Close a no-op here.
func (ctx *RenderContext) SetMetrics(sink *metrics.Sink) { ctx.metrics = sink }

// EnterScope pushes a new lexical frame seeded with vars. Must be
// paired with a matching LeaveScope.
func (ctx *RenderContext) EnterScope(vars map[string]value.InternalValue) {
	if vars == nil {
		vars = make(map[string]value.InternalValue)
	}
	ctx.scopes = append(ctx.scopes, scope{vars: vars})
}

// LeaveScope pops the innermost lexical frame. Calling it without a
// matching EnterScope (beyond the root scope) is a programming error;
// it is a no-op rather than a panic, matching this core's policy of
// never aborting a render outright.
func (ctx *RenderContext) LeaveScope() {
	if len(ctx.scopes) <= 1 {
		return
	}
	ctx.scopes = ctx.scopes[:len(ctx.scopes)-1]
}

// FindValue looks up name from the innermost scope outward, returning
// the value and whether it was found. A miss is not an error — a
// ValueRefExpression does not raise — callers translate a miss into
// the empty value.
func (ctx *RenderContext) FindValue(name string) (value.InternalValue, bool) {
	for i := len(ctx.scopes) - 1; i >= 0; i-- {
		if v, ok := ctx.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return value.Empty(), false
}

// SetValue writes name into the innermost scope, used by the
// loop-injection external renderer and by macro invocation to bind
// parameters into a fresh scope.
func (ctx *RenderContext) SetValue(name string, v value.InternalValue) {
	ctx.scopes[len(ctx.scopes)-1].vars[name] = v
}

// EnterCall increments the call-depth counter, returning
// ErrCallDepthExceeded once MaxCallDepth is reached. Every CallExpression
// invocation of a UserCallable or Macro must pair this with LeaveCall.
func (ctx *RenderContext) EnterCall() error {
	if ctx.MaxCallDepth > 0 && ctx.callDepth >= ctx.MaxCallDepth {
		return ErrCallDepthExceeded
	}
	ctx.callDepth++
	return nil
}

// LeaveCall decrements the call-depth counter.
func (ctx *RenderContext) LeaveCall() {
	if ctx.callDepth > 0 {
		ctx.callDepth--
	}
}

// CallDepth reports the current call nesting, for diagnostics.
func (ctx *RenderContext) CallDepth() int { return ctx.callDepth }

// Close releases the render's pool, returning its final statistics. If
// a metrics sink is attached (SetMetrics), the statistics are also
// appended there before returning.
func (ctx *RenderContext) Close() value.Stats {
	stats := ctx.pool.Close()
	if ctx.metrics != nil {
		if err := ctx.metrics.RecordNow(stats); err != nil && ctx.Verbose {
			log.Printf("render: recording metrics: %v", err)
		}
	}
	return stats
}
