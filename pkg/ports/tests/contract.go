// Package tests provides reusable contract suites for ports adapters.
package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// RunTreeStoreContract verifies that an adapter complies with ports.TreeStore.
func RunTreeStoreContract(t *testing.T, store ports.TreeStore) {
	t.Helper()
	ctx := context.Background()

	tree := &snapshot.Node{
		ID:           "cage",
		Kind:         "container",
		StartStates:  []string{"show"},
		CurrentState: "show",
		Visible:      true,
		Version:      3,
		Options:      map[string]any{"title": "Cage"},
		Children: []*snapshot.Node{
			{ID: "mouse", Kind: "rodent", StartStates: []string{"idle"}, Visible: true},
			{ID: "food", Kind: "bowl", StartStates: []string{"full"}, Visible: false},
		},
	}

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := store.Load(ctx, "no-such-tree")
		if !errors.Is(err, domain.ErrTreeNotFound) {
			t.Fatalf("expected ErrTreeNotFound, got %v", err)
		}
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		if err := store.Save(ctx, "t1", tree); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.Load(ctx, "t1")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if got.ID != "cage" || got.CurrentState != "show" || got.Version != 3 {
			t.Errorf("durable fields lost: %+v", got)
		}
		if len(got.Children) != 2 {
			t.Fatalf("expected 2 children, got %d", len(got.Children))
		}
		if got.Children[0].ID != "mouse" || got.Children[1].ID != "food" {
			t.Errorf("child order not preserved: %+v", got.Children)
		}
		if got.Children[1].Visible {
			t.Error("visibility flag lost on hidden child")
		}
	})

	t.Run("Isolation", func(t *testing.T) {
		if err := store.Save(ctx, "t2", tree); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.Load(ctx, "t2")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		got.CurrentState = "mutated"
		again, err := store.Load(ctx, "t2")
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		if again.CurrentState != "show" {
			t.Error("store returned aliased snapshot; callers can corrupt stored state")
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		lookup := make(map[string]bool, len(ids))
		for _, id := range ids {
			lookup[id] = true
		}
		for _, want := range []string{"t1", "t2"} {
			if !lookup[want] {
				t.Errorf("tree %s missing from list", want)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, "t1"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		_, err := store.Load(ctx, "t1")
		if !errors.Is(err, domain.ErrTreeNotFound) {
			t.Fatalf("expected ErrTreeNotFound after delete, got %v", err)
		}
	})
}
