package value

// TargetString is an output string whose width (narrow or wide) is
// determined by the surrounding template, used for the final rendered
// text of an expression and for StringConcat's common-width result.
type TargetString struct {
	Width  Width
	Narrow string
	Wide   []rune

	// Escaped is inert metadata: nothing in this core sets or reads it.
	// It exists so an external, autoescape-aware statement renderer has
	// a slot to mark "already HTML-safe" without this module needing to
	// know anything about HTML.
	Escaped bool
}

// NewNarrowTarget wraps a narrow string as a target-string.
func NewNarrowTarget(s string) *TargetString {
	return &TargetString{Width: WidthNarrow, Narrow: s}
}

// NewWideTarget wraps a wide string as a target-string.
func NewWideTarget(r []rune) *TargetString {
	return &TargetString{Width: WidthWide, Wide: r}
}

// String renders t as UTF-8 text regardless of its internal width,
// for use by output sinks and diagnostics.
func (t *TargetString) String() string {
	if t == nil {
		return ""
	}
	if t.Width == WidthWide {
		return string(t.Wide)
	}
	return t.Narrow
}
