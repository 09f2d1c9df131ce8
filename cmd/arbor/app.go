package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/htmltpl"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/aretw0/arbor/pkg/treedef"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// app bundles everything the commands share: the engine, the parsed tree
// definition and the seeds for new sessions.
type app struct {
	engine *arbor.Engine
	def    *treedef.Definition
	seeds  map[string]session.SeedFunc
	closer func() error
}

// newApp bootstraps the engine from the shared flags. Server commands opt
// into the store flags via withStore.
func newApp(cmd *cobra.Command, withStore bool) (*app, error) {
	treeFile, _ := cmd.Flags().GetString("tree")
	viewsDir, _ := cmd.Flags().GetString("views")

	def, err := treedef.Load(treeFile)
	if err != nil {
		return nil, err
	}

	templater, err := htmltpl.NewFromGlob(filepath.Join(viewsDir, "*.html"))
	if err != nil {
		return nil, err
	}

	logger := logging.New(slog.LevelInfo)
	opts := []arbor.Option{arbor.WithLogger(logger)}
	closer := func() error { return nil }

	if withStore {
		storeKind, _ := cmd.Flags().GetString("store")
		switch storeKind {
		case "memory":
			// Engine default.
		case "redis":
			addr, _ := cmd.Flags().GetString("redis-addr")
			password, _ := cmd.Flags().GetString("redis-password")
			ttl, _ := cmd.Flags().GetDuration("session-ttl")

			client := backend.NewClient(&backend.Options{
				Addr:     addr,
				Password: password,
			})
			store := redis.NewFromClient(client, redis.WithTTL(ttl))
			opts = append(opts,
				arbor.WithStore(store),
				arbor.WithLocker(redis.NewLocker(client, "arbor:")),
			)
			closer = store.Close

			logger = logging.NewJSON(slog.LevelInfo)
			opts = append(opts, arbor.WithLogger(logger))
		default:
			return nil, fmt.Errorf("unknown store: %s (supported: memory, redis)", storeKind)
		}
	}

	eng, err := arbor.New(templater, opts...)
	if err != nil {
		closer()
		return nil, err
	}
	if err := def.Register(eng.Kinds()); err != nil {
		closer()
		return nil, err
	}

	seeds := map[string]session.SeedFunc{}
	if def.Tree != nil {
		seeds[def.Tree.Kind] = def.Seed(eng.Kinds())
	}

	return &app{engine: eng, def: def, seeds: seeds, closer: closer}, nil
}

func (a *app) close() {
	if err := a.closer(); err != nil {
		slog.Warn("Failed to close store", "error", err)
	}
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", "memory", "Tree store backend: 'memory' or 'redis'")
	cmd.Flags().String("redis-addr", "localhost:6379", "Redis address (store=redis)")
	cmd.Flags().String("redis-password", "", "Redis password (store=redis)")
	cmd.Flags().Duration("session-ttl", 24*time.Hour, "Tree expiration in Redis (0 = keep forever)")
}
