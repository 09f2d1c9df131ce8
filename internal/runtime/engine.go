// Package runtime implements the Arbor core: state invocation, child
// composition, the render pipeline and event dispatch. A render pass is
// synchronous and run-to-completion; recursion through composition is plain
// call/return.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// DefaultMaxJumpDepth bounds handler chains (a handler invoking further
// states before rendering) within a single render pass.
const DefaultMaxJumpDepth = 32

// Engine drives widget invocation and rendering.
type Engine struct {
	templater ports.Templater
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	frameTag  string
	maxDepth  int
}

var _ domain.Renderer = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFrameTag changes the default framing container tag.
func WithFrameTag(tag string) Option {
	return func(e *Engine) {
		e.frameTag = tag
	}
}

// WithMaxJumpDepth bounds state re-invocation depth within one render pass.
func WithMaxJumpDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// NewEngine creates an engine rendering through the given templater.
func NewEngine(templater ports.Templater, opts ...Option) *Engine {
	e := &Engine{
		templater: templater,
		logger:    logging.NewNop(),
		frameTag:  domain.DefaultFrameTag,
		maxDepth:  DefaultMaxJumpDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Invoke resolves the state to run and dispatches it. When state is "", the
// widget's own state machine decides (transition table, then start state
// fallback). The handler's result is returned unchanged.
func (e *Engine) Invoke(ctx context.Context, w *domain.Widget, state string) (*domain.PageUpdate, error) {
	forced := state != ""
	if state == "" {
		state = domain.NextState(w)
	}
	return e.dispatch(ctx, w, state, forced)
}

// Jump unconditionally invokes an explicit state, bypassing the state
// machine entirely. Transitions in the table are conventional defaults, not
// sole-legal-moves constraints; forced navigation is intentional.
func (e *Engine) Jump(ctx context.Context, w *domain.Widget, state string) (*domain.PageUpdate, error) {
	return e.dispatch(ctx, w, state, true)
}

// DispatchEvent routes a resolved event address back to its source widget:
// it finds the widget in the tree, maps the event type to a target state via
// the widget's kind, and jumps there with the address params available to
// the handler.
func (e *Engine) DispatchEvent(ctx context.Context, root *domain.Widget, addr *domain.EventAddress) (*domain.PageUpdate, error) {
	w := root.Find(addr.Source)
	if w == nil {
		return nil, fmt.Errorf("event %s: source %s: %w", addr.Type, addr.Source, domain.ErrWidgetNotFound)
	}
	state, ok := w.Kind.EventState(addr.Type)
	if !ok {
		return nil, fmt.Errorf("widget %s: event %s: %w", w.ID, addr.Type, domain.ErrUnhandledEvent)
	}
	if e.hooks.OnEventResolved != nil {
		e.hooks.OnEventResolved(ctx, &domain.EventResolution{
			Timestamp: time.Now(),
			WidgetID:  w.ID,
			EventType: addr.Type,
			State:     state,
		})
	}
	return e.Jump(WithParams(ctx, addr.Params), w, state)
}

func (e *Engine) dispatch(ctx context.Context, w *domain.Widget, state string, forced bool) (*domain.PageUpdate, error) {
	ctx, depth, err := descend(ctx, e.maxDepth)
	if err != nil {
		return nil, fmt.Errorf("widget %s: state %s: %w", w.ID, state, err)
	}

	handler, ok := w.Kind.Handler(state)
	if !ok {
		return nil, fmt.Errorf("widget %s (kind %s): state %s: %w", w.ID, w.Kind.Name(), state, domain.ErrUnknownState)
	}

	evt := &domain.StateEvent{
		Timestamp: time.Now(),
		WidgetID:  w.ID,
		Kind:      w.Kind.Name(),
		State:     state,
		Forced:    forced,
	}
	if e.hooks.OnStateEnter != nil {
		e.hooks.OnStateEnter(ctx, evt)
	}
	e.logger.Debug("invoking state",
		"widget_id", w.ID,
		"kind", w.Kind.Name(),
		"state", state,
		"forced", forced,
		"depth", depth,
	)

	w.CurrentState = state

	update, err := handler(ctx, &domain.Call{
		Widget: w,
		State:  state,
		Params: paramsFrom(ctx),
		Engine: e,
	})
	if err != nil {
		return nil, fmt.Errorf("widget %s: state %s: %w", w.ID, state, err)
	}

	if e.hooks.OnStateLeave != nil {
		e.hooks.OnStateLeave(ctx, evt)
	}
	return update, nil
}
