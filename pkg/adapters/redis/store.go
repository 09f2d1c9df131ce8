// Package redis persists frozen widget trees in Redis, with optional TTL
// and a distributed lock for multi-instance deployments.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/snapshot"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.TreeStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored trees.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stored trees.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "arbor:tree:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(treeID string) string {
	return s.prefix + treeID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the frozen tree to Redis: JSON blob with TTL plus a ZSET
// index entry scored by expiry, keeping List ordered oldest-expiry first.
func (s *Store) Save(ctx context.Context, treeID string, root *snapshot.Node) error {
	data, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(treeID), data, s.ttl)

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01, effectively "never"
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: treeID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the frozen tree from Redis.
func (s *Store) Load(ctx context.Context, treeID string) (*snapshot.Node, error) {
	val, err := s.client.Get(ctx, s.key(treeID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrTreeNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var root snapshot.Node
	if err := json.Unmarshal([]byte(val), &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tree: %w", err)
	}
	return &root, nil
}

// Delete removes the tree and its index entry.
func (s *Store) Delete(ctx context.Context, treeID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(treeID))
	pipe.ZRem(ctx, s.indexKey(), treeID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns stored tree ids. Expiry happens server-side on the tree keys,
// so the index is reconciled against key existence: members whose tree key
// is gone are pruned before listing.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}
	if len(ids) == 0 {
		return ids, nil
	}

	pipe := s.client.Pipeline()
	checks := make([]*backend.IntCmd, len(ids))
	for i, id := range ids {
		checks[i] = pipe.Exists(ctx, s.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to check tree keys: %w", err)
	}

	live := make([]string, 0, len(ids))
	stale := make([]interface{}, 0)
	for i, id := range ids {
		if checks[i].Val() > 0 {
			live = append(live, id)
		} else {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired trees: %w", err)
		}
	}
	return live, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
