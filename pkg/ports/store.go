package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/snapshot"
)

// TreeStore persists frozen widget trees across requests, keyed by tree id.
// This is the freeze/thaw collaborator: it only ever sees the durable
// snapshot, never live widgets or handler closures.
type TreeStore interface {
	// Save persists the snapshot for a given tree id.
	Save(ctx context.Context, treeID string, root *snapshot.Node) error

	// Load retrieves the snapshot for a given tree id.
	// Returns domain.ErrTreeNotFound if the tree does not exist.
	Load(ctx context.Context, treeID string) (*snapshot.Node, error)

	// Delete removes the snapshot for a given tree id.
	Delete(ctx context.Context, treeID string) error

	// List returns the ids of stored trees.
	List(ctx context.Context) ([]string, error)
}
