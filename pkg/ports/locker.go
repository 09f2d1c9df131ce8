package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a previously acquired distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes tree access across processes. A tree is
// mutated by one request at a time; in multi-instance deployments the
// in-process mutex is not enough.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// The lock auto-expires after ttl as a crash safety net.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
