// Package snapshot implements freeze/thaw: explicit serialization of the
// durable subset of a widget tree so an external store can persist it across
// requests.
//
// Durable fields are id, kind name, start/current state, visibility, version
// and the options bag, recursively over children. Transient fields — parent
// linkage, handler closures, rendering buffers — are never serialized;
// handlers are rebound by name through a kind resolver on thaw.
package snapshot

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// Node is the serializable form of one widget. JSON is the wire encoding
// used by the stores.
type Node struct {
	ID           string         `json:"id"`
	Kind         string         `json:"kind"`
	StartStates  []string       `json:"start_states,omitempty"`
	CurrentState string         `json:"current_state,omitempty"`
	Visible      bool           `json:"visible"`
	Version      int            `json:"version,omitempty"`
	Options      map[string]any `json:"options,omitempty"`
	Children     []*Node        `json:"children,omitempty"`
}

// KindResolver rebinds kind names to live definitions during thaw.
// *registry.Registry satisfies it.
type KindResolver interface {
	Kind(name string) (*domain.Kind, error)
}

// Freeze captures the durable subset of the subtree rooted at w.
func Freeze(w *domain.Widget) *Node {
	n := &Node{
		ID:           w.ID,
		Kind:         w.Kind.Name(),
		StartStates:  append([]string(nil), w.StartStates...),
		CurrentState: w.CurrentState,
		Visible:      w.Visible,
		Version:      w.Version,
		Options:      copyOptions(w.Options),
	}
	for _, c := range w.Children() {
		n.Children = append(n.Children, Freeze(c))
	}
	return n
}

// Thaw reconstructs a live widget tree from a frozen node, rebinding each
// kind by name. Returns domain.ErrUnknownKind (wrapped) when a kind name is
// not registered.
func Thaw(n *Node, kinds KindResolver) (*domain.Widget, error) {
	if n == nil {
		return nil, fmt.Errorf("snapshot: nil node")
	}
	kind, err := kinds.Kind(n.Kind)
	if err != nil {
		return nil, fmt.Errorf("thaw %s: %w", n.ID, err)
	}

	opts := []domain.WidgetOption{domain.WithOptions(copyOptions(n.Options))}
	if len(n.StartStates) > 0 {
		opts = append(opts, domain.WithStartStates(n.StartStates...))
	}
	w, err := domain.NewWidget(n.ID, kind, opts...)
	if err != nil {
		return nil, fmt.Errorf("thaw %s: %w", n.ID, err)
	}
	w.Visible = n.Visible
	w.Version = n.Version

	if n.CurrentState != "" {
		// A durable current state must still name a registered handler.
		if _, ok := kind.Handler(n.CurrentState); !ok {
			return nil, fmt.Errorf("thaw %s: state %s: %w", n.ID, n.CurrentState, domain.ErrUnknownState)
		}
		w.CurrentState = n.CurrentState
	}

	for _, cn := range n.Children {
		child, err := Thaw(cn, kinds)
		if err != nil {
			return nil, err
		}
		if err := w.AddChild(child); err != nil {
			return nil, fmt.Errorf("thaw %s: %w", n.ID, err)
		}
	}
	return w, nil
}

// Clone deep-copies the node, isolating stored snapshots from callers.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:           n.ID,
		Kind:         n.Kind,
		StartStates:  append([]string(nil), n.StartStates...),
		CurrentState: n.CurrentState,
		Visible:      n.Visible,
		Version:      n.Version,
		Options:      copyOptions(n.Options),
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, c.Clone())
	}
	return out
}

func copyOptions(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
