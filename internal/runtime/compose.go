package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// composeChildren renders a widget's visible children in insertion order and
// assembles their results into an ordered child set.
//
// Per child, the state to invoke comes from the override map when an entry
// is keyed by the child's id; otherwise the child's own state machine
// decides. Override keys naming widgets absent from the child list are
// silently ignored rather than treated as errors.
func (e *Engine) composeChildren(ctx context.Context, w *domain.Widget, overrides map[string]string) (*domain.ChildSet, error) {
	results := domain.NewChildSet()
	for _, child := range w.Children() {
		if !child.Visible {
			continue
		}
		state := overrides[child.ID]
		update, err := e.Invoke(ctx, child, state)
		if err != nil {
			return nil, fmt.Errorf("compose %s: %w", w.ID, err)
		}
		results.Add(child.ID, update.Content)
	}
	return results, nil
}
