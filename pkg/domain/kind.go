package domain

import (
	"context"
	"fmt"
	"sort"
)

// Handler is a state handler routine. It runs when its state is invoked on a
// widget and is expected to eventually call the render pipeline (directly via
// call.Render, or indirectly through further invocations/jumps) and return
// the resulting page update unchanged.
type Handler func(ctx context.Context, call *Call) (*PageUpdate, error)

// Kind is a widget class: a closed set of named states bound to handlers at
// registration time, a transition table, and an event-type to state mapping.
//
// A Kind is immutable once built. The transition table is read-only shared
// state across all widget instances of the kind; mutating it at runtime would
// break the determinism guarantee of state resolution.
type Kind struct {
	name        string
	start       []string
	handlers    map[string]Handler
	transitions map[string]string
	events      map[string]string
}

// Name returns the registered kind name.
func (k *Kind) Name() string { return k.name }

// StartStates returns the kind's default start state sequence.
func (k *Kind) StartStates() []string {
	out := make([]string, len(k.start))
	copy(out, k.start)
	return out
}

// Handler looks up the handler bound to a state name.
func (k *Kind) Handler(state string) (Handler, bool) {
	h, ok := k.handlers[state]
	return h, ok
}

// Next consults the transition table. A missing entry yields ok=false,
// signaling "stay / fall back to start state" to the caller. The lookup is
// pure: repeated queries with the same state always yield the same result.
func (k *Kind) Next(current string) (string, bool) {
	next, ok := k.transitions[current]
	return next, ok
}

// EventState maps an event type to the state that handles it.
func (k *Kind) EventState(eventType string) (string, bool) {
	s, ok := k.events[eventType]
	return s, ok
}

// Events returns a copy of the event-type to state routing table.
func (k *Kind) Events() map[string]string {
	out := make(map[string]string, len(k.events))
	for evt, state := range k.events {
		out[evt] = state
	}
	return out
}

// States returns the sorted list of registered state names.
func (k *Kind) States() []string {
	out := make([]string, 0, len(k.handlers))
	for name := range k.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// KindBuilder assembles a Kind. Zero values are not usable; start with NewKind.
type KindBuilder struct {
	kind Kind
	errs []error
}

// NewKind starts building a widget kind with the given name.
func NewKind(name string) *KindBuilder {
	return &KindBuilder{
		kind: Kind{
			name:        name,
			handlers:    make(map[string]Handler),
			transitions: make(map[string]string),
			events:      make(map[string]string),
		},
	}
}

// State registers a handler under a state name. Registering the same state
// twice is a build error: states form a closed enumeration.
func (b *KindBuilder) State(name string, h Handler) *KindBuilder {
	if name == "" {
		b.errs = append(b.errs, fmt.Errorf("kind %s: empty state name", b.kind.name))
		return b
	}
	if h == nil {
		b.errs = append(b.errs, fmt.Errorf("kind %s: state %s: nil handler", b.kind.name, name))
		return b
	}
	if _, exists := b.kind.handlers[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("kind %s: state %s registered twice", b.kind.name, name))
		return b
	}
	b.kind.handlers[name] = h
	return b
}

// Transition records a default next-state for a state. Transitions are
// conventional defaults, not sole-legal-moves constraints: Jump may still
// target any registered state.
func (b *KindBuilder) Transition(from, to string) *KindBuilder {
	b.kind.transitions[from] = to
	return b
}

// OnEvent routes an event type to a target state.
func (b *KindBuilder) OnEvent(eventType, state string) *KindBuilder {
	b.kind.events[eventType] = state
	return b
}

// Start sets the kind's default start state sequence. The first element is
// the state proposed for a widget that has never run.
func (b *KindBuilder) Start(states ...string) *KindBuilder {
	b.kind.start = states
	return b
}

// Build validates and freezes the kind. Every transition endpoint, event
// target and start state must name a registered state.
func (b *KindBuilder) Build() (*Kind, error) {
	if b.kind.name == "" {
		return nil, fmt.Errorf("kind has no name")
	}
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if len(b.kind.handlers) == 0 {
		return nil, fmt.Errorf("kind %s: no states registered", b.kind.name)
	}
	if len(b.kind.start) == 0 {
		return nil, fmt.Errorf("kind %s: no start state", b.kind.name)
	}
	for _, s := range b.kind.start {
		if _, ok := b.kind.handlers[s]; !ok {
			return nil, fmt.Errorf("kind %s: start state %s is not registered", b.kind.name, s)
		}
	}
	for from, to := range b.kind.transitions {
		if _, ok := b.kind.handlers[from]; !ok {
			return nil, fmt.Errorf("kind %s: transition source %s is not registered", b.kind.name, from)
		}
		if _, ok := b.kind.handlers[to]; !ok {
			return nil, fmt.Errorf("kind %s: transition target %s is not registered", b.kind.name, to)
		}
	}
	for evt, state := range b.kind.events {
		if _, ok := b.kind.handlers[state]; !ok {
			return nil, fmt.Errorf("kind %s: event %s targets unregistered state %s", b.kind.name, evt, state)
		}
	}

	// Copy maps so the builder cannot mutate the kind after Build.
	k := &Kind{
		name:        b.kind.name,
		start:       append([]string(nil), b.kind.start...),
		handlers:    make(map[string]Handler, len(b.kind.handlers)),
		transitions: make(map[string]string, len(b.kind.transitions)),
		events:      make(map[string]string, len(b.kind.events)),
	}
	for n, h := range b.kind.handlers {
		k.handlers[n] = h
	}
	for f, t := range b.kind.transitions {
		k.transitions[f] = t
	}
	for e, s := range b.kind.events {
		k.events[e] = s
	}
	return k, nil
}

// MustBuild is Build that panics on error, for static kind definitions.
func (b *KindBuilder) MustBuild() *Kind {
	k, err := b.Build()
	if err != nil {
		panic(err)
	}
	return k
}
