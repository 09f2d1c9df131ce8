// Package memory provides an in-memory TreeStore, mostly for tests and
// single-process deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// Store implements ports.TreeStore in memory. Safe for concurrent use.
type Store struct {
	data map[string]*snapshot.Node
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*snapshot.Node),
	}
}

// Save persists the snapshot in memory. The snapshot is deep-copied so the
// caller cannot mutate stored state afterwards, mirroring serialization.
func (s *Store) Save(ctx context.Context, treeID string, root *snapshot.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[treeID] = root.Clone()
	return nil
}

// Load retrieves the snapshot from memory, again as a copy so the caller
// cannot corrupt the stored tree by pointer.
func (s *Store) Load(ctx context.Context, treeID string) (*snapshot.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root, ok := s.data[treeID]
	if !ok {
		return nil, domain.ErrTreeNotFound
	}
	return root.Clone(), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, treeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, treeID)
	return nil
}

// List returns stored tree ids, sorted for deterministic output.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
