package domain

import (
	"fmt"
)

// Widget is a node in the widget tree. Each widget owns a small finite-state
// machine (its kind's handlers plus transition table) and an ordered list of
// children; insertion order is render order.
//
// Tree linkage (parent, children) is volatile and managed through AddChild /
// RemoveChild so that ownership stays exclusive and the tree stays acyclic.
// The remaining fields are the durable subset that freeze/thaw persists.
type Widget struct {
	// ID is the rendering and addressing key. Non-empty, stable for the
	// widget's lifetime, unique among siblings and by convention unique in
	// the whole tree.
	ID string

	// Kind carries the shared handler registry and transition table.
	Kind *Kind

	// StartStates is the FSM's initial configuration. The first element is
	// proposed when the widget has never run.
	StartStates []string

	// CurrentState is the most recently executed state name, "" before the
	// first invocation. Once set it always names a registered handler.
	CurrentState string

	// Visible widgets participate in child composition. Hidden widgets stay
	// in the tree and remain addressable.
	Visible bool

	// Version counts successful renders. Informational only.
	Version int

	// Options is the opaque configuration bag passed at construction,
	// available to handler routines.
	Options map[string]any

	parent   *Widget
	children []*Widget
}

// WidgetOption configures a widget at construction time.
type WidgetOption func(*Widget)

// WithStartStates overrides the kind's default start state sequence.
func WithStartStates(states ...string) WidgetOption {
	return func(w *Widget) {
		w.StartStates = states
	}
}

// Hidden constructs the widget with Visible=false.
func Hidden() WidgetOption {
	return func(w *Widget) {
		w.Visible = false
	}
}

// WithOptions sets the widget's opaque options bag.
func WithOptions(options map[string]any) WidgetOption {
	return func(w *Widget) {
		w.Options = options
	}
}

// NewWidget constructs a widget of the given kind. The start state sequence
// defaults to the kind's; the widget starts visible with no parent.
func NewWidget(id string, kind *Kind, opts ...WidgetOption) (*Widget, error) {
	if id == "" {
		return nil, fmt.Errorf("widget id must not be empty")
	}
	if kind == nil {
		return nil, fmt.Errorf("widget %s: nil kind", id)
	}
	w := &Widget{
		ID:          id,
		Kind:        kind,
		StartStates: kind.StartStates(),
		Visible:     true,
	}
	for _, opt := range opts {
		opt(w)
	}
	if len(w.StartStates) == 0 {
		return nil, fmt.Errorf("widget %s: no start state", id)
	}
	if w.Options == nil {
		w.Options = make(map[string]any)
	}
	return w, nil
}

// StartState returns the first element of the start state sequence.
func (w *Widget) StartState() string {
	return w.StartStates[0]
}

// IsVisible reports whether the widget participates in child composition.
func (w *Widget) IsVisible() bool { return w.Visible }

// Parent returns the enclosing widget, nil for the root. The back-reference
// is navigation only, never ownership.
func (w *Widget) Parent() *Widget { return w.parent }

// Root walks parent links up to the tree root.
func (w *Widget) Root() *Widget {
	r := w
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Children returns the ordered child list. The returned slice is a copy;
// mutate the tree through AddChild and RemoveChild.
func (w *Widget) Children() []*Widget {
	out := make([]*Widget, len(w.children))
	copy(out, w.children)
	return out
}

// VisibleChildren returns the visible children in insertion order.
func (w *Widget) VisibleChildren() []*Widget {
	out := make([]*Widget, 0, len(w.children))
	for _, c := range w.children {
		if c.Visible {
			out = append(out, c)
		}
	}
	return out
}

// AddChild appends a child. Ownership is exclusive: the child must not
// already have a parent. Sibling ids must be unique and the edit must not
// create a cycle.
func (w *Widget) AddChild(child *Widget) error {
	if child == nil {
		return fmt.Errorf("widget %s: nil child", w.ID)
	}
	if child.parent != nil {
		return fmt.Errorf("widget %s is already owned by %s", child.ID, child.parent.ID)
	}
	for _, existing := range w.children {
		if existing.ID == child.ID {
			return fmt.Errorf("widget %s: child %s: %w", w.ID, child.ID, ErrWidgetExists)
		}
	}
	// Adding an ancestor (or self) as a child would make it its own ancestor.
	for a := w; a != nil; a = a.parent {
		if a == child {
			return fmt.Errorf("widget %s: adding %s: %w", w.ID, child.ID, ErrCycle)
		}
	}
	child.parent = w
	w.children = append(w.children, child)
	return nil
}

// RemoveChild detaches the child with the given id and reports whether it
// was present. The detached subtree keeps its own structure.
func (w *Widget) RemoveChild(id string) bool {
	for i, c := range w.children {
		if c.ID == id {
			c.parent = nil
			w.children = append(w.children[:i], w.children[i+1:]...)
			return true
		}
	}
	return false
}

// Find searches the subtree rooted at w, depth first and including w itself,
// for the first widget with the given id. Returns nil when absent.
func (w *Widget) Find(id string) *Widget {
	if w.ID == id {
		return w
	}
	for _, c := range w.children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits the subtree rooted at w in depth-first pre-order. Returning
// false from the visitor stops the walk.
func (w *Widget) Walk(visit func(*Widget) bool) {
	w.walk(visit)
}

func (w *Widget) walk(visit func(*Widget) bool) bool {
	if !visit(w) {
		return false
	}
	for _, c := range w.children {
		if !c.walk(visit) {
			return false
		}
	}
	return true
}
