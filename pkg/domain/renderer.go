package domain

import "context"

// Renderer is the slice of the engine surface visible to state handlers:
// the render pipeline plus further invocations and forced jumps.
type Renderer interface {
	// Render runs the render pipeline for the widget and wraps the result
	// into a page update.
	Render(ctx context.Context, w *Widget, opts RenderOptions) (*PageUpdate, error)

	// Invoke resolves the state to run (state machine, then start state
	// fallback when state is ""), dispatches it and returns the handler's
	// result unchanged.
	Invoke(ctx context.Context, w *Widget, state string) (*PageUpdate, error)

	// Jump unconditionally invokes an explicit state, regardless of the
	// transition table. Escape hatch for forced navigation.
	Jump(ctx context.Context, w *Widget, state string) (*PageUpdate, error)
}

// Call is the invocation context handed to a state handler.
type Call struct {
	// Widget is the widget whose state is executing.
	Widget *Widget

	// State is the resolved state name being executed.
	State string

	// Params carries per-request parameters supplied by the transport (for
	// example the params of a routed event address).
	Params map[string]any

	// Engine gives the handler access to the render pipeline.
	Engine Renderer
}

// Render runs the render pipeline for the call's widget.
func (c *Call) Render(ctx context.Context, opts RenderOptions) (*PageUpdate, error) {
	return c.Engine.Render(ctx, c.Widget, opts)
}

// Jump forwards to the engine's forced-state invocation for the call's widget.
func (c *Call) Jump(ctx context.Context, state string) (*PageUpdate, error) {
	return c.Engine.Jump(ctx, c.Widget, state)
}

// AddressFor builds an event address originating at the call's widget.
func (c *Call) AddressFor(options map[string]any) (*EventAddress, error) {
	return AddressForEvent(c.Widget, options)
}

// Option reads a value from the widget's options bag.
func (c *Call) Option(key string) (any, bool) {
	v, ok := c.Widget.Options[key]
	return v, ok
}
