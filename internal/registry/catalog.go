// Package registry resolves a request's requested feature set (by feature
// service or by explicit "<view>:<feature>" names) into the feature views
// that must be queried, against an in-memory snapshot of the catalog.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/feast-serving/engine/internal/errors"
	"github.com/feast-serving/engine/internal/model"
)

// Catalog resolves a request into the set of (feature, resolved view) pairs
// it references.
type Catalog interface {
	Resolve(ctx context.Context, req *model.GetOnlineFeatureRequest) (map[model.Feature]*model.FeatureView, error)
}

// SnapshotSource yields the current registry snapshot a Catalog resolves
// against.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*model.RegistrySnapshot, error)
}

// SnapshotCatalog is a Catalog backed by a SnapshotSource, grounded on
// file_registry.rs's FeatureRegistryProto resolution logic.
type SnapshotCatalog struct {
	Source SnapshotSource
}

// NewSnapshotCatalog builds a catalog over the given snapshot source.
func NewSnapshotCatalog(source SnapshotSource) *SnapshotCatalog {
	return &SnapshotCatalog{Source: source}
}

// Resolve implements Catalog.
func (c *SnapshotCatalog) Resolve(ctx context.Context, req *model.GetOnlineFeatureRequest) (map[model.Feature]*model.FeatureView, error) {
	snap, err := c.Source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if req.FeatureService != nil {
		return resolveByService(snap, *req.FeatureService)
	}
	return resolveByNames(snap, req.Features)
}

func resolveByService(snap *model.RegistrySnapshot, serviceName string) (map[model.Feature]*model.FeatureView, error) {
	service, ok := snap.FeatureServices[serviceName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrFeatureServiceNotFound, serviceName)
	}

	result := make(map[model.Feature]*model.FeatureView)
	for _, proj := range service.Projections {
		if _, isOnDemand := snap.OnDemandViews[proj.FeatureViewName]; isOnDemand {
			return nil, errors.ErrComputedViewUnsupported
		}
		baseView, ok := snap.FeatureViews[proj.FeatureViewName]
		if !ok {
			return nil, fmt.Errorf("%w: view=%s service=%s", errors.ErrFeatureViewNotFoundForService, proj.FeatureViewName, serviceName)
		}
		resolvedView := baseView.WithJoinKeyMap(proj.JoinKeyMap)

		features := proj.Features
		if len(features) == 0 {
			features = baseView.Features
		}
		for _, f := range features {
			key := model.Feature{ViewName: proj.FeatureViewName, Name: f.Name}
			result[key] = resolvedView
		}
	}
	return result, nil
}

func resolveByNames(snap *model.RegistrySnapshot, names []string) (map[model.Feature]*model.FeatureView, error) {
	parsed := make([]model.Feature, 0, len(names))
	var parseErrs []string
	for _, n := range names {
		f, err := model.ParseFeature(n)
		if err != nil {
			parseErrs = append(parseErrs, err.Error())
			continue
		}
		parsed = append(parsed, f)
	}
	if len(parseErrs) > 0 {
		sort.Strings(parseErrs)
		return nil, fmt.Errorf("%w: error while parsing requested features: [%s]", errors.ErrInvalidRequest, strings.Join(parseErrs, "\n"))
	}

	result := make(map[model.Feature]*model.FeatureView, len(parsed))
	for _, f := range parsed {
		if _, isOnDemand := snap.OnDemandViews[f.ViewName]; isOnDemand {
			return nil, errors.ErrComputedViewUnsupported
		}
		view, ok := snap.FeatureViews[f.ViewName]
		if !ok {
			return nil, fmt.Errorf("%w: %q", errors.ErrFeatureViewNotFound, f.ViewName)
		}
		result[f] = view
	}
	return result, nil
}
