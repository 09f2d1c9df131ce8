package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// TreeBuilder manages the tree construction.
type TreeBuilder struct {
	kinds snapshot.KindResolver
	root  *WidgetBuilder
}

// NewTree creates a new tree builder resolving kind names through the
// resolver (typically a *registry.Registry).
func NewTree(kinds snapshot.KindResolver) *TreeBuilder {
	return &TreeBuilder{kinds: kinds}
}

// Root declares the root widget. Calling Root again with the same id returns
// the existing builder; a different id replaces the tree.
func (b *TreeBuilder) Root(id, kind string) *WidgetBuilder {
	if b.root != nil && b.root.id == id {
		return b.root
	}
	b.root = &WidgetBuilder{id: id, kind: kind, tree: b}
	return b.root
}

// Build compiles the declared tree into a live widget tree.
func (b *TreeBuilder) Build() (*domain.Widget, error) {
	if b.root == nil {
		return nil, fmt.Errorf("dsl: no root widget declared")
	}
	return b.build(b.root)
}

// Seed adapts the builder to the session manager's seed contract. Each call
// builds a fresh tree.
func (b *TreeBuilder) Seed() session.SeedFunc {
	return func() (*domain.Widget, error) {
		return b.Build()
	}
}

func (b *TreeBuilder) build(wb *WidgetBuilder) (*domain.Widget, error) {
	kind, err := b.kinds.Kind(wb.kind)
	if err != nil {
		return nil, fmt.Errorf("dsl: widget %s: %w", wb.id, err)
	}

	var opts []domain.WidgetOption
	if len(wb.options) > 0 {
		opts = append(opts, domain.WithOptions(wb.options))
	}
	if len(wb.startStates) > 0 {
		opts = append(opts, domain.WithStartStates(wb.startStates...))
	}
	if wb.hidden {
		opts = append(opts, domain.Hidden())
	}

	w, err := domain.NewWidget(wb.id, kind, opts...)
	if err != nil {
		return nil, fmt.Errorf("dsl: widget %s: %w", wb.id, err)
	}

	for _, cb := range wb.children {
		child, err := b.build(cb)
		if err != nil {
			return nil, err
		}
		if err := w.AddChild(child); err != nil {
			return nil, fmt.Errorf("dsl: widget %s: %w", wb.id, err)
		}
	}
	return w, nil
}
