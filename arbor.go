package arbor

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/session"
)

// Engine is the high-level entry point for the arbor library.
// It wraps the internal runtime and provides a simplified API for consumers:
// a kind registry, the render/invoke/dispatch pipeline, and session-managed
// tree persistence.
type Engine struct {
	runtime     *runtime.Engine
	registry    *registry.Registry
	sessions    *session.Manager
	store       ports.TreeStore
	locker      ports.DistributedLocker
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runtimeOpts []runtime.Option
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStore injects a tree store, bypassing the default in-memory one.
func WithStore(store ports.TreeStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed locking for multi-instance deployments.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithRegistry injects a pre-populated kind registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFrameTag configures the default framing container tag (default: div).
func WithFrameTag(tag string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithFrameTag(tag))
	}
}

// WithMaxJumpDepth bounds handler-to-handler invocation chains.
func WithMaxJumpDepth(depth int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMaxJumpDepth(depth))
	}
}

// New initializes a new arbor Engine around the templating collaborator.
// By default trees persist to an in-memory store; inject a different store
// (e.g. the redis adapter) for durable multi-process sessions.
func New(templater ports.Templater, opts ...Option) (*Engine, error) {
	if templater == nil {
		return nil, fmt.Errorf("a templater is required")
	}

	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.registry == nil {
		eng.registry = registry.New()
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	// Ensure logger is initialized (so we don't pass nil to runtime, which
	// would overwrite its default)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	runtimeOpts := []runtime.Option{
		runtime.WithHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)
	eng.runtime = runtime.NewEngine(templater, runtimeOpts...)

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, eng.registry, sessionOpts...)

	return eng, nil
}

// Register adds a widget kind to the engine's registry.
func (e *Engine) Register(kind *domain.Kind) error {
	return e.registry.Register(kind)
}

// Kinds returns the engine's kind registry.
func (e *Engine) Kinds() *registry.Registry {
	return e.registry
}

// Sessions returns the session manager for tree persistence.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Store returns the underlying tree store.
func (e *Engine) Store() ports.TreeStore {
	return e.store
}

// Render runs the render pipeline for a widget.
func (e *Engine) Render(ctx context.Context, w *domain.Widget, opts domain.RenderOptions) (*domain.PageUpdate, error) {
	return e.runtime.Render(ctx, w, opts)
}

// Invoke resolves and runs a widget state; "" lets the widget's own state
// machine decide.
func (e *Engine) Invoke(ctx context.Context, w *domain.Widget, state string) (*domain.PageUpdate, error) {
	return e.runtime.Invoke(ctx, w, state)
}

// Jump unconditionally invokes an explicit state, bypassing the transition
// table.
func (e *Engine) Jump(ctx context.Context, w *domain.Widget, state string) (*domain.PageUpdate, error) {
	return e.runtime.Jump(ctx, w, state)
}

// DispatchEvent routes an event address to its originating widget within the
// tree and renders the resulting update.
func (e *Engine) DispatchEvent(ctx context.Context, root *domain.Widget, addr *domain.EventAddress) (*domain.PageUpdate, error) {
	return e.runtime.DispatchEvent(ctx, root, addr)
}

// Runtime exposes the core engine for adapters programmed against their own
// narrow Engine interfaces.
func (e *Engine) Runtime() *runtime.Engine {
	return e.runtime
}
