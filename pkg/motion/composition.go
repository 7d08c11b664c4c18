package motion

import "time"

// Composition is an opaque reference to motion content loaded by the native
// engine. A View renders at most one composition at a time; the zero value of
// a view's composition is nil ("nothing to render").
//
// Compositions are immutable value holders: the engine owns the decoded
// content and ties its lifetime to the engine's internal cache. Most callers
// obtain compositions from a loader such as platform.LoadComposition rather
// than constructing them directly.
type Composition struct {
	handle    int64
	duration  time.Duration
	width     int
	height    int
	frameRate float64
}

// NewComposition wraps a native composition handle with its metadata.
// Engine bindings call this after the native side has decoded content.
func NewComposition(handle int64, duration time.Duration, width, height int, frameRate float64) *Composition {
	return &Composition{
		handle:    handle,
		duration:  duration,
		width:     width,
		height:    height,
		frameRate: frameRate,
	}
}

// Handle returns the native composition identifier.
func (c *Composition) Handle() int64 {
	return c.handle
}

// Duration returns the composition's total play time.
func (c *Composition) Duration() time.Duration {
	return c.duration
}

// Width returns the composition's authored width in pixels.
func (c *Composition) Width() int {
	return c.width
}

// Height returns the composition's authored height in pixels.
func (c *Composition) Height() int {
	return c.height
}

// FrameRate returns the composition's authored frame rate in frames per second.
func (c *Composition) FrameRate() float64 {
	return c.frameRate
}
