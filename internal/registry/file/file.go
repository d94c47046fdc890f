// Package file loads a registry snapshot from a single protobuf-encoded
// Registry blob, grounded on file_registry.rs::from_path.
package file

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/internal/proto/feast/core"
	"github.com/feast-serving/engine/internal/proto/feast/types"
)

// Source loads a RegistrySnapshot from a local file path on every call;
// callers wanting TTL-based refresh should wrap it with
// internal/registry/cache.
type Source struct {
	Path string
}

// NewSource builds a direct, uncached file registry source.
func NewSource(path string) *Source {
	return &Source{Path: path}
}

// Snapshot implements registry.SnapshotSource.
func (s *Source) Snapshot(_ context.Context) (*model.RegistrySnapshot, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("file registry: read %s: %w", s.Path, err)
	}
	proto, err := core.DecodeRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("file registry: decode %s: %w", s.Path, err)
	}
	return FromProto(proto), nil
}

// FromProto converts a decoded Registry message to a RegistrySnapshot.
func FromProto(p *core.Registry) *model.RegistrySnapshot {
	snap := &model.RegistrySnapshot{
		Entities:        make(map[string]*model.Entity, len(p.Entities)),
		FeatureViews:    make(map[string]*model.FeatureView, len(p.FeatureViews)),
		OnDemandViews:   make(map[string]struct{}, len(p.OnDemandFeatureViews)),
		FeatureServices: make(map[string]*model.FeatureService, len(p.FeatureServices)),
		LoadedAt:        time.Now(),
	}

	for _, e := range p.Entities {
		snap.Entities[e.Name] = &model.Entity{
			Name:      e.Name,
			JoinKey:   e.JoinKey,
			ValueType: types.ValueType(e.ValueType),
		}
	}
	for _, v := range p.FeatureViews {
		snap.FeatureViews[v.Name] = convertFeatureView(v)
	}
	for _, v := range p.OnDemandFeatureViews {
		snap.OnDemandViews[v.Name] = struct{}{}
	}
	for _, svc := range p.FeatureServices {
		snap.FeatureServices[svc.Name] = convertFeatureService(svc)
	}
	return snap
}

func convertFeatureView(v *core.FeatureViewProto) *model.FeatureView {
	fv := &model.FeatureView{
		Name:        v.Name,
		EntityNames: append([]string(nil), v.EntityNames...),
		TTL:         time.Duration(v.TTLSeconds) * time.Second,
	}
	for _, f := range v.Features {
		fv.Features = append(fv.Features, model.Field{Name: f.Name, ValueType: types.ValueType(f.ValueType)})
	}
	for _, f := range v.EntityColumns {
		fv.EntityColumns = append(fv.EntityColumns, model.Field{Name: f.Name, ValueType: types.ValueType(f.ValueType)})
	}
	return fv
}

func convertFeatureService(s *core.FeatureServiceProto) *model.FeatureService {
	svc := &model.FeatureService{Name: s.Name, Project: s.Project}
	for _, p := range s.Projections {
		proj := model.FeatureProjection{
			FeatureViewName: p.FeatureViewName,
			NameAlias:       p.NameAlias,
			JoinKeyMap:      p.JoinKeyMap,
		}
		for _, f := range p.Features {
			proj.Features = append(proj.Features, model.Field{Name: f.Name, ValueType: types.ValueType(f.ValueType)})
		}
		svc.Projections = append(svc.Projections, proj)
	}
	return svc
}
