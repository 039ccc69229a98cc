package render

import (
	"bytes"

	"github.com/exprkit/tmplcore/internal/value"
)

// BufferedCallback is the default RendererCallback: it accumulates
// output in memory and reports a fixed target width.
type BufferedCallback struct {
	width value.Width
	buf   bytes.Buffer
}

// NewBufferedCallback builds a callback that renders to an in-memory
// buffer at the given target width.
func NewBufferedCallback(width value.Width) *BufferedCallback {
	return &BufferedCallback{width: width}
}

// TargetWidth reports the configured output width.
func (c *BufferedCallback) TargetWidth() value.Width { return c.width }

// Write appends s to the buffer.
func (c *BufferedCallback) Write(s string) error {
	c.buf.WriteString(s)
	return nil
}

// String returns everything written so far.
func (c *BufferedCallback) String() string { return c.buf.String() }

// ValueSink adapts a RendererCallback into an OutStream by displaying
// each value through value.Display and writing the result, so a
// RendererCallback can be handed to anything that writes to an
// OutStream, such as FullExpression.Render.
type ValueSink struct {
	Callback RendererCallback
}

// WriteValue implements OutStream.
func (s ValueSink) WriteValue(v value.InternalValue) error {
	return s.Callback.Write(value.Display(v))
}
