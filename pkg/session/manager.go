package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// SeedFunc builds a fresh widget tree for a session that has no stored
// snapshot yet.
type SeedFunc func() (*domain.Widget, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to widget trees. A tree is mutated by one
// request at a time; the Manager enforces that in-process and, with a
// DistributedLocker, across processes. It uses reference counting to
// garbage collect unused locks.
type Manager struct {
	store ports.TreeStore
	kinds snapshot.KindResolver

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager over the given store, thawing kinds
// through the resolver (typically a *registry.Registry).
func NewManager(store ports.TreeStore, kinds snapshot.KindResolver, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		kinds:  kinds,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) acquire(treeID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[treeID]
	if !exists {
		entry = &lockEntry{}
		m.locks[treeID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(treeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[treeID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, treeID)
	}
}

// Load thaws an existing tree from the store.
func (m *Manager) Load(ctx context.Context, treeID string) (*domain.Widget, error) {
	var root *domain.Widget
	err := m.WithLock(ctx, treeID, func(ctx context.Context) error {
		var err error
		root, err = m.load(ctx, treeID)
		return err
	})
	return root, err
}

// LoadOrStart thaws an existing tree, or seeds and persists a new one when
// no snapshot exists for the id.
func (m *Manager) LoadOrStart(ctx context.Context, treeID string, seed SeedFunc) (*domain.Widget, error) {
	var root *domain.Widget
	err := m.WithLock(ctx, treeID, func(ctx context.Context) error {
		var err error
		root, err = m.load(ctx, treeID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrTreeNotFound) {
			return fmt.Errorf("failed to check tree existence: %w", err)
		}

		root, err = seed()
		if err != nil {
			return fmt.Errorf("failed to seed tree %s: %w", treeID, err)
		}

		// Persist immediately to reserve the id.
		if err := m.store.Save(ctx, treeID, snapshot.Freeze(root)); err != nil {
			return fmt.Errorf("failed to initialize tree: %w", err)
		}
		return nil
	})
	return root, err
}

// Update loads the tree, applies fn to it and persists the result, all
// under the tree's lock. This is the request-cycle primitive: thaw, mutate
// (invoke, dispatch, render), freeze.
func (m *Manager) Update(ctx context.Context, treeID string, fn func(ctx context.Context, root *domain.Widget) error) error {
	return m.WithLock(ctx, treeID, func(ctx context.Context) error {
		root, err := m.load(ctx, treeID)
		if err != nil {
			return err
		}
		if err := fn(ctx, root); err != nil {
			return err
		}
		return m.store.Save(ctx, treeID, snapshot.Freeze(root))
	})
}

// UpdateOrStart is Update for trees that may not exist yet: the seed builds
// the initial tree when no snapshot is stored.
func (m *Manager) UpdateOrStart(ctx context.Context, treeID string, seed SeedFunc, fn func(ctx context.Context, root *domain.Widget) error) error {
	return m.WithLock(ctx, treeID, func(ctx context.Context) error {
		root, err := m.load(ctx, treeID)
		if errors.Is(err, domain.ErrTreeNotFound) {
			root, err = seed()
			if err != nil {
				return fmt.Errorf("failed to seed tree %s: %w", treeID, err)
			}
		} else if err != nil {
			return err
		}
		if err := fn(ctx, root); err != nil {
			return err
		}
		return m.store.Save(ctx, treeID, snapshot.Freeze(root))
	})
}

// Save freezes the tree and persists it.
func (m *Manager) Save(ctx context.Context, treeID string, root *domain.Widget) error {
	return m.WithLock(ctx, treeID, func(ctx context.Context) error {
		return m.store.Save(ctx, treeID, snapshot.Freeze(root))
	})
}

// Delete removes the tree from the store.
func (m *Manager) Delete(ctx context.Context, treeID string) error {
	return m.WithLock(ctx, treeID, func(ctx context.Context) error {
		return m.store.Delete(ctx, treeID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying tree store.
func (m *Manager) Store() ports.TreeStore {
	return m.store
}

// WithLock executes fn while holding the lock for the tree id.
func (m *Manager) WithLock(ctx context.Context, treeID string, fn func(context.Context) error) error {
	entry := m.acquire(treeID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(treeID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, treeID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"tree_id", treeID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) load(ctx context.Context, treeID string) (*domain.Widget, error) {
	frozen, err := m.store.Load(ctx, treeID)
	if err != nil {
		return nil, err
	}
	return snapshot.Thaw(frozen, m.kinds)
}
