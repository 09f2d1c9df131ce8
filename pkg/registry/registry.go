// Package registry holds named widget kind definitions so that frozen trees
// can be thawed back into live widgets with their handlers rebound.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Registry manages the available widget kinds. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]*domain.Kind
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		kinds: make(map[string]*domain.Kind),
	}
}

// Register adds a kind under its name. Registering a name twice overwrites
// the previous definition; live widgets keep the kind they were built with.
func (r *Registry) Register(k *domain.Kind) error {
	if k == nil {
		return fmt.Errorf("registry: nil kind")
	}
	if k.Name() == "" {
		return fmt.Errorf("registry: kind with empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[k.Name()] = k
	return nil
}

// Kind looks up a kind by name.
func (r *Registry) Kind(name string) (*domain.Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.kinds[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrUnknownKind)
	}
	return k, nil
}

// Names returns the sorted registered kind names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
