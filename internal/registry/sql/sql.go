// Package sql loads a registry snapshot from a relational catalog via GORM,
// grounded on
// original_source/feast-server-core/src/registry/sql_registry.rs.
package sql

import (
	"context"
	"fmt"
	"time"

	"github.com/feast-serving/engine/internal/database"
	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/internal/proto/feast/core"
	"github.com/feast-serving/engine/internal/registry/file"
	"gorm.io/gorm"
)

// Source loads a RegistrySnapshot on every call from four project-scoped
// catalog tables (entities, feature_views, feature_services,
// on_demand_feature_views), each storing the name alongside its raw
// protobuf-encoded message. MySQL is not implemented, matching
// sql_registry.rs's own gap.
type Source struct {
	db      *gorm.DB
	project string
}

// Open dials a relational registry source. Only the "postgres" driver is
// supported; MySQL is left unimplemented, as in the original.
func Open(driver, dsn, project string) (*Source, error) {
	if driver != "postgres" {
		return nil, fmt.Errorf("sql registry: unsupported driver %q (only postgres is implemented)", driver)
	}
	db, err := database.NewConnection(driver, dsn, database.DefaultPoolOptions())
	if err != nil {
		return nil, fmt.Errorf("sql registry: %w", err)
	}
	return &Source{db: db, project: project}, nil
}

// NewWithDB wraps an already-opened GORM handle, for tests.
func NewWithDB(db *gorm.DB, project string) *Source {
	return &Source{db: db, project: project}
}

type namedProtoRow struct {
	Name  string `gorm:"column:name"`
	Proto []byte `gorm:"column:proto"`
}

// Snapshot implements registry.SnapshotSource.
func (s *Source) Snapshot(ctx context.Context) (*model.RegistrySnapshot, error) {
	entities, err := s.queryTable(ctx, "entities", "entity_name", "entity_proto")
	if err != nil {
		return nil, fmt.Errorf("sql registry: entities: %w", err)
	}
	featureViews, err := s.queryTable(ctx, "feature_views", "feature_view_name", "feature_view_proto")
	if err != nil {
		return nil, fmt.Errorf("sql registry: feature_views: %w", err)
	}
	featureServices, err := s.queryTable(ctx, "feature_services", "feature_service_name", "feature_service_proto")
	if err != nil {
		return nil, fmt.Errorf("sql registry: feature_services: %w", err)
	}
	onDemandViews, err := s.queryTable(ctx, "on_demand_feature_views", "feature_view_name", "feature_view_proto")
	if err != nil {
		return nil, fmt.Errorf("sql registry: on_demand_feature_views: %w", err)
	}

	registry := &core.Registry{}
	for _, row := range entities {
		e, err := core.UnmarshalEntity(row.Proto)
		if err != nil {
			return nil, fmt.Errorf("sql registry: decoding entity %q: %w", row.Name, err)
		}
		registry.Entities = append(registry.Entities, e)
	}
	for _, row := range featureViews {
		v, err := core.UnmarshalFeatureView(row.Proto)
		if err != nil {
			return nil, fmt.Errorf("sql registry: decoding feature view %q: %w", row.Name, err)
		}
		registry.FeatureViews = append(registry.FeatureViews, v)
	}
	for _, row := range featureServices {
		svc, err := core.UnmarshalFeatureService(row.Proto)
		if err != nil {
			return nil, fmt.Errorf("sql registry: decoding feature service %q: %w", row.Name, err)
		}
		registry.FeatureServices = append(registry.FeatureServices, svc)
	}
	for _, row := range onDemandViews {
		v, err := core.UnmarshalFeatureView(row.Proto)
		if err != nil {
			return nil, fmt.Errorf("sql registry: decoding on-demand feature view %q: %w", row.Name, err)
		}
		registry.OnDemandFeatureViews = append(registry.OnDemandFeatureViews, v)
	}

	snap := file.FromProto(registry)
	snap.LoadedAt = time.Now()
	return snap, nil
}

func (s *Source) queryTable(ctx context.Context, table, nameColumn, protoColumn string) ([]namedProtoRow, error) {
	var rows []namedProtoRow
	query := fmt.Sprintf("SELECT %s AS name, %s AS proto FROM %s WHERE project_id = ?", nameColumn, protoColumn, table)
	err := s.db.WithContext(ctx).Raw(query, s.project).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
