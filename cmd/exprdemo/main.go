// Command exprdemo builds a small expression tree programmatically
// (there is no parser here, this core consumes an already-built tree)
// and evaluates it, demonstrating two of the external interfaces a
// statement renderer would drive: Evaluate and the filter registry.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/exprkit/tmplcore/internal/exprast"
	"github.com/exprkit/tmplcore/internal/render"
	"github.com/exprkit/tmplcore/internal/value"
)

func main() {
	colorize := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	callback := render.NewBufferedCallback(value.WidthNarrow)
	ctx := render.New(callback, nil)
	ctx.Verbose = len(os.Args) > 1 && os.Args[1] == "-v"

	tree := buildDemoTree()
	result := tree.Evaluate(ctx)
	stats := ctx.Close()

	out := value.Display(result)
	if colorize {
		fmt.Printf("\x1b[32m%s\x1b[0m\n", out)
	} else {
		fmt.Println(out)
	}

	if ctx.Verbose {
		fmt.Fprintf(os.Stderr, "session %s: %d allocations, %d temp reuses\n",
			stats.SessionID, stats.Allocations, stats.TempReuses)
	}
}

// buildDemoTree constructs: "the quick brown fox" | title | truncate(9, false, "...", 2)
func buildDemoTree() exprast.Expression {
	literal := &exprast.ConstantExpression{Value: value.NarrowString("the quick brown fox")}
	titled := &exprast.FilteredExpression{
		Inner: literal,
		Filters: []exprast.FilterCall{
			{Name: "title"},
		},
	}
	return &exprast.FilteredExpression{
		Inner: titled,
		Filters: []exprast.FilterCall{
			{
				Name: "truncate",
				Positional: []exprast.Expression{
					&exprast.ConstantExpression{Value: value.Int(9)},
					&exprast.ConstantExpression{Value: value.Bool(false)},
					&exprast.ConstantExpression{Value: value.NarrowString("...")},
					&exprast.ConstantExpression{Value: value.Int(2)},
				},
			},
		},
	}
}
