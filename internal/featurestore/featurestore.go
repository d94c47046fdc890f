// Package featurestore wires the registry, planner, online store, and
// response builder into the single top-level operation, grounded on
// original_source/feast-server-core/src/feature_store/feature_store_impl.rs.
package featurestore

import (
	"context"
	"fmt"

	"github.com/feast-serving/engine/internal/metrics"
	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/internal/onlinestore"
	"github.com/feast-serving/engine/internal/planner"
	"github.com/feast-serving/engine/internal/registry"
	"github.com/feast-serving/engine/internal/responsebuilder"
)

// FeatureStore answers GetOnlineFeatures requests by resolving the catalog,
// planning per-view lookup keys, fanning out to the online store, and
// aligning rows back into a columnar response.
type FeatureStore struct {
	Catalog     registry.Catalog
	OnlineStore onlinestore.Store
	Metrics     metrics.Collector
}

// New builds a FeatureStore over the given catalog and online store. metrics
// may be nil, in which case a no-op collector is used.
func New(catalog registry.Catalog, store onlinestore.Store, collector metrics.Collector) *FeatureStore {
	if collector == nil {
		collector = &metrics.NoopCollector{}
	}
	return &FeatureStore{Catalog: catalog, OnlineStore: store, Metrics: collector}
}

// GetOnlineFeatures implements the core serving operation.
func (fs *FeatureStore) GetOnlineFeatures(ctx context.Context, req *model.GetOnlineFeatureRequest) (*model.GetOnlineFeatureResponse, error) {
	resolved, err := fs.Catalog.Resolve(ctx, req)
	if err != nil {
		fs.Metrics.RecordFeatureRequest("error")
		return nil, err
	}

	plans, err := planner.Plan(resolved, req.Entities)
	if err != nil {
		fs.Metrics.RecordFeatureRequest("error")
		return nil, err
	}

	byView := make(map[string]onlinestore.EntityFeatureRequest)
	viewsByName := make(map[string]*model.FeatureView)
	lookupMapping := make(map[responsebuilder.ViewColumn]string)
	featureSet := make(map[model.Feature]struct{}, len(plans))

	for _, p := range plans {
		viewsByName[p.View.Name] = p.View
		featureSet[p.Feature] = struct{}{}
		for col, requestName := range p.LookupByCol {
			lookupMapping[responsebuilder.ViewColumn{View: p.View.Name, Column: col}] = requestName
		}

		entry := byView[p.View.Name]
		if entry.EntityKeys == nil {
			entry.EntityKeys = p.Keys
		}
		entry.Features = appendUnique(entry.Features, p.Feature.Name)
		byView[p.View.Name] = entry
	}

	rows, err := fs.OnlineStore.GetFeatureValues(ctx, byView)
	if err != nil {
		fs.Metrics.RecordFeatureRequest("error")
		return nil, fmt.Errorf("featurestore: %w", err)
	}
	for view, entry := range byView {
		count := 0
		for _, r := range rows {
			if r.ViewName == view {
				count++
			}
		}
		fs.Metrics.RecordOnlineStoreRows(view, count)
		_ = entry
	}

	resp, err := responsebuilder.Build(req.EntityOrder, req.Entities, rows, viewsByName, lookupMapping, featureSet, req.FullFeatureNames)
	if err != nil {
		fs.Metrics.RecordFeatureRequest("error")
		return nil, err
	}

	fs.Metrics.RecordFeatureRequest("ok")
	return resp, nil
}

func appendUnique(list []string, item string) []string {
	for _, s := range list {
		if s == item {
			return list
		}
	}
	return append(list, item)
}
