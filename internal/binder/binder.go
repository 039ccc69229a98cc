// Package binder implements the call-parameter binder: it reconciles a
// caller's mixed positional+keyword argument list against a callee's
// declared parameter schema.
//
// Expr is deliberately an alias for `any` rather than a concrete
// expression-node type: the binder only ever holds and hands back
// expression *pointers*, never evaluates them, so it has no need to
// import the exprast package — doing so would create an import cycle,
// since exprast's CallExpression is exactly what invokes the binder.
// This favors small, targeted interfaces over one shared "everything"
// package.
package binder

import "github.com/exprkit/tmplcore/internal/value"

// Expr is an opaque expression-node pointer.
type Expr = any

// CallParams is the caller's argument bundle: ordered positional
// expressions plus an insertion-order-preserving map of keyword name to
// expression.
type CallParams struct {
	Positional   []Expr
	Keyword      map[string]Expr
	KeywordOrder []string
}

// ParsedArguments is the binder's output.
type ParsedArguments struct {
	Args        map[string]Expr
	ExtraPosArgs []Expr
	ExtraKwArgs  map[string]Expr
	Succeeded    bool
}

type slotState uint8

const (
	stateKeyword slotState = iota
	stateNotFound
	stateNotFoundMandatory
	stateIgnored
)

// BindArguments reconciles call against schema (in the callee's declared
// order), following this algorithm:
//
//  1. Keyword pass: bind any declared slot whose name has a matching
//     keyword argument.
//  2. Locate the positional scanning window: the first mandatory unbound
//     slot, or slot 0 if none are mandatory. Then walk backward from
//     there, pulling in leading unbound optional slots one at a time for
//     as long as there are more positionals than the window already
//     needs — so a leading optional slot is only skipped over when
//     there aren't enough positionals to reach it and still fill every
//     mandatory slot after it.
//  3. Walk positionals through the remaining unbound slots in schema
//     order, skipping *args/**kwargs placeholders without consuming a
//     positional.
//  4. Fill still-unbound slots with declared defaults.
//  5. Anything left over becomes extras; any still-mandatory-and-unbound
//     slot fails the bind.
//
// constOf wraps an InternalValue default into an Expr the caller's
// expression tree can hold, keeping this package expression-type-free.
func BindArguments(schema []value.ArgumentInfo, call CallParams, constOf func(value.InternalValue) Expr) ParsedArguments {
	n := len(schema)
	state := make([]slotState, n)
	bound := make([]Expr, n)

	remainingKeywords := make(map[string]Expr, len(call.Keyword))
	for k, v := range call.Keyword {
		remainingKeywords[k] = v
	}

	anyMandatoryUnbound := false
	for i, decl := range schema {
		if decl.Ignored() {
			state[i] = stateIgnored
			continue
		}
		if expr, ok := remainingKeywords[decl.Name]; ok {
			bound[i] = expr
			state[i] = stateKeyword
			delete(remainingKeywords, decl.Name)
			continue
		}
		if decl.Mandatory {
			state[i] = stateNotFoundMandatory
			anyMandatoryUnbound = true
		} else {
			state[i] = stateNotFound
		}
	}

	// Locate the scanning window: start at the first mandatory unbound
	// slot; only start earlier, at an optional unbound slot, when no
	// mandatory slot would be skipped by doing so.
	start := 0
	if anyMandatoryUnbound {
		for i, st := range state {
			if st == stateNotFoundMandatory {
				start = i
				break
			}
		}
	} else {
		for i, st := range state {
			if st == stateNotFound {
				start = i
				break
			}
		}
	}

	// Pull surplus positionals backward into leading unbound optional
	// slots. The window located above reserves exactly one slot per
	// positional needed from start to the end of the schema; any
	// positionals beyond that reserve get walked backward into the
	// unbound optional slots before start, one slot per surplus
	// positional, so a call with enough positionals to cover both the
	// leading optionals and the mandatory tail binds them all in
	// declaration order instead of leaving the leading optionals at
	// their defaults and overflowing into extras.
	needed := 0
	for i := start; i < n; i++ {
		if state[i] == stateNotFound || state[i] == stateNotFoundMandatory {
			needed++
		}
	}
	surplus := len(call.Positional) - needed
	for surplus > 0 && start > 0 {
		i := start - 1
		start = i
		if state[i] == stateNotFound {
			surplus--
		}
	}

	posIdx := 0
	for i := start; i < n && posIdx < len(call.Positional); i++ {
		switch state[i] {
		case stateIgnored, stateKeyword:
			continue
		case stateNotFound, stateNotFoundMandatory:
			bound[i] = call.Positional[posIdx]
			posIdx++
			state[i] = stateKeyword
		}
	}

	succeeded := true
	for i, decl := range schema {
		if state[i] == stateKeyword || state[i] == stateIgnored {
			continue
		}
		if !decl.Default.IsEmpty() {
			bound[i] = constOf(decl.Default)
			continue
		}
		if decl.Mandatory {
			succeeded = false
		}
	}

	args := make(map[string]Expr, n)
	for i, decl := range schema {
		if decl.Ignored() {
			continue
		}
		if bound[i] != nil {
			args[decl.Name] = bound[i]
		}
	}

	extraPos := append([]Expr(nil), call.Positional[posIdx:]...)
	extraKw := make(map[string]Expr, len(remainingKeywords))
	for k, v := range remainingKeywords {
		extraKw[k] = v
	}

	return ParsedArguments{
		Args:         args,
		ExtraPosArgs: extraPos,
		ExtraKwArgs:  extraKw,
		Succeeded:    succeeded,
	}
}
