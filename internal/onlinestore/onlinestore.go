// Package onlinestore defines the adapter boundary between the feature
// store core and a concrete key-value backend, grounded on
// original_source/feast-server-core/src/onlinestore.rs's OnlineStore trait.
package onlinestore

import (
	"context"

	"github.com/feast-serving/engine/internal/model"
)

// EntityFeatureRequest is the set of features requested for one feature
// view, keyed by the entity keys whose values are needed.
type EntityFeatureRequest struct {
	EntityKeys []model.EntityKey
	Features   []string
}

// Store is the online-store adapter boundary. A single call batches lookups
// across every resolved feature view for one request.
type Store interface {
	// GetFeatureValues returns every matching row across all requested
	// views. requests is keyed by feature view name.
	GetFeatureValues(ctx context.Context, requests map[string]EntityFeatureRequest) ([]model.OnlineStoreRow, error)

	// Ping performs a cheap reachability check for health reporting.
	Ping(ctx context.Context) error
}
