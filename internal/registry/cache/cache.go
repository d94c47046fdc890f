// Package cache wraps a registry.SnapshotSource with a background
// TTL-based refresher, publishing new snapshots via an atomic pointer swap.
// Grounded on cached_registry.rs's ArcSwap pattern, but deliberately departs
// from it on refresh failure: the original unwraps (panics) the refresh
// result, where this implementation logs and keeps serving the previous
// snapshot, per spec §4.4's explicit refresh-failure policy.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/pkg/logger"
)

// Source is satisfied by any direct registry loader (file, sql, blob).
type Source interface {
	Snapshot(ctx context.Context) (*model.RegistrySnapshot, error)
}

// CachedSource holds an atomically-swapped registry snapshot, refreshed on
// a fixed interval by a background goroutine.
type CachedSource struct {
	inner  atomic.Pointer[model.RegistrySnapshot]
	source Source
	ttl    time.Duration
	log    logger.Logger

	stop chan struct{}
}

// NewCachedSource performs the initial load synchronously, then starts the
// background refresher when ttl is positive; with a zero ttl the first
// snapshot is served without refreshing. Returns an error only if the initial
// load fails; the caller cannot serve without a first snapshot.
func NewCachedSource(ctx context.Context, source Source, ttl time.Duration, log logger.Logger) (*CachedSource, error) {
	c := &CachedSource{source: source, ttl: ttl, log: log, stop: make(chan struct{})}
	snap, err := source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	c.inner.Store(snap)
	if ttl > 0 {
		go c.refreshLoop()
	}
	return c, nil
}

// Snapshot implements registry.SnapshotSource: it returns the currently
// published snapshot without blocking on a refresh, and warns if the
// snapshot is older than the configured TTL (the refresher is falling
// behind).
func (c *CachedSource) Snapshot(_ context.Context) (*model.RegistrySnapshot, error) {
	snap := c.inner.Load()
	if c.ttl > 0 && time.Since(snap.LoadedAt) > c.ttl {
		c.log.Warn("registry snapshot age exceeds refresh TTL",
			logger.Duration("age", time.Since(snap.LoadedAt)),
			logger.Duration("ttl", c.ttl))
	}
	return snap, nil
}

func (c *CachedSource) refreshLoop() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			snap, err := c.source.Snapshot(context.Background())
			if err != nil {
				c.log.Error("registry refresh failed, keeping previous snapshot", logger.Error(err))
				continue
			}
			c.inner.Store(snap)
		}
	}
}

// Close stops the background refresher.
func (c *CachedSource) Close() {
	close(c.stop)
}
