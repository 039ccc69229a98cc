package value

// CallableKind discriminates the shape of a Callable's body with a
// single tagged struct rather than an inheritance hierarchy — there is
// no user-defined subclassing to support here, only "which function
// pointer do I invoke".
type CallableKind uint8

const (
	// GlobalFunc is a builtin function value (range itself is a SpecialFn).
	GlobalFunc CallableKind = iota
	// UserCallable is a callable value produced by the host embedding
	// (an expression callable or a statement callable supplied by the
	// external statement renderer, e.g. a macro-backed function).
	UserCallable
	// Macro is a template-defined macro (injected by the external
	// statement renderer; the core only needs to invoke it uniformly).
	Macro
	// SpecialFn encodes a numeric id (RangeFn, LoopCycleFn, ...) so that
	// looking a name up in scope returns an ordinary InternalValue; the
	// CallExpression dispatches on SpecialID before treating the value
	// as an arbitrary callable.
	SpecialFn
)

// Special function ids encoded into a SpecialFn Callable.
const (
	RangeFn = iota + 1
	LoopCycleFn
)

// ArgumentInfo is one callee-declared parameter: its name, whether it is
// mandatory, and its default value (the empty value means "no default").
type ArgumentInfo struct {
	Name      string
	Mandatory bool
	Default   InternalValue
}

// Ignored reports whether this declared slot is a *args/**kwargs
// placeholder that the binder must skip rather than bind.
func (a ArgumentInfo) Ignored() bool {
	return a.Name == "*args" || a.Name == "**kwargs"
}

// ExprFn is the shape of an expression callable: it consumes bound
// arguments and the render context and produces a value.
type ExprFn func(ctx CallContext) InternalValue

// StmtFn is the shape of a statement callable: it consumes bound
// arguments, the render context, and an output sink, and writes text.
// The sink type is declared as an interface here (rather than importing
// the render package) to keep value dependency-free; render.OutStream
// satisfies it structurally.
type StmtFn func(ctx CallContext, out OutStream) error

// OutStream is the minimal write contract a statement callable needs.
type OutStream interface {
	WriteValue(InternalValue) error
}

// CallContext is what an ExprFn/StmtFn receives: its bound arguments
// (already resolved to values by the caller) and any extras the binder
// could not place against the declared schema.
type CallContext struct {
	Args     map[string]InternalValue
	ExtraPos []InternalValue
	ExtraKw  map[string]InternalValue
	Pool     *Pool
}

// Callable is the value representation of anything invocable: a global
// function, a user-supplied callable, a macro, or a special built-in id.
type Callable struct {
	Kind      CallableKind
	Name      string
	SpecialID int
	Schema    []ArgumentInfo
	Expr      ExprFn
	Stmt      StmtFn
}

// IsStatement reports whether this callable writes to a sink rather than
// returning a value.
func (c *Callable) IsStatement() bool { return c != nil && c.Stmt != nil }
