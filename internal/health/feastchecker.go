package health

import (
	"context"
	"fmt"
	"time"

	"github.com/feast-serving/engine/internal/model"
)

// RegistrySnapshotSource is satisfied by registry/cache.CachedSource and any
// other registry.SnapshotSource.
type RegistrySnapshotSource interface {
	Snapshot(ctx context.Context) (*model.RegistrySnapshot, error)
}

// NewRegistryLoadedCheck reports whether the registry has a snapshot
// loaded, and how stale it is.
func NewRegistryLoadedCheck(src RegistrySnapshotSource) CheckFunction {
	return func() Check {
		check := Check{Name: "registry-snapshot", Status: StatusDown, Details: make(map[string]string)}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		snap, err := src.Snapshot(ctx)
		if err != nil {
			check.Details["error"] = fmt.Sprintf("failed to load registry snapshot: %v", err)
			return check
		}

		check.Status = StatusUp
		check.Details["loaded_at"] = snap.LoadedAt.Format(time.RFC3339)
		check.Details["age"] = time.Since(snap.LoadedAt).String()
		return check
	}
}

// OnlineStorePinger is satisfied by any online store adapter capable of a
// cheap reachability check (a single round trip, no rows required).
type OnlineStorePinger interface {
	Ping(ctx context.Context) error
}

// NewOnlineStoreReachableCheck reports whether the online store backend
// answers a basic round trip.
func NewOnlineStoreReachableCheck(name string, store OnlineStorePinger) CheckFunction {
	return func() Check {
		check := Check{Name: fmt.Sprintf("online-store-%s", name), Status: StatusDown, Details: make(map[string]string)}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			check.Details["error"] = fmt.Sprintf("online store unreachable: %v", err)
			return check
		}

		check.Status = StatusUp
		check.Details["status"] = "reachable"
		return check
	}
}
