// Package relational implements onlinestore.Store against a relational
// database via GORM, grounded on
// original_source/feast-server-core/src/onlinestore/sqlite_onlinestore.rs.
package relational

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/feast-serving/engine/internal/database"
	"github.com/feast-serving/engine/internal/keycodec"
	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/internal/onlinestore"
	"github.com/feast-serving/engine/internal/proto/feast/types"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// row mirrors the {project}_{view} table shape from spec §4.5.
type row struct {
	EntityKey   []byte    `gorm:"column:entity_key"`
	FeatureName string    `gorm:"column:feature_name"`
	Value       []byte    `gorm:"column:value"`
	EventTS     time.Time `gorm:"column:event_ts"`
	CreatedTS   time.Time `gorm:"column:created_ts"`
}

// Store implements onlinestore.Store against a relational backend, one
// table per feature view named "{project}_{view}".
type Store struct {
	db      *gorm.DB
	project string
}

// Open opens a relational online store for the given GORM driver and DSN.
func Open(driver, dsn, project string) (*Store, error) {
	db, err := database.NewConnection(driver, dsn, database.DefaultPoolOptions())
	if err != nil {
		return nil, fmt.Errorf("relational online store: %w", err)
	}
	return &Store{db: db, project: project}, nil
}

// NewWithDB wraps an already-opened GORM handle, for tests.
func NewWithDB(db *gorm.DB, project string) *Store {
	return &Store{db: db, project: project}
}

// Ping implements onlinestore.Store.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// GetFeatureValues implements onlinestore.Store, fanning out one goroutine
// per feature view and tolerating a missing per-view table as zero rows,
// matching sqlite_onlinestore.rs's "no such table" -> empty-rows rule.
func (s *Store) GetFeatureValues(ctx context.Context, requests map[string]onlinestore.EntityFeatureRequest) ([]model.OnlineStoreRow, error) {
	var (
		mu      sync.Mutex
		results [][]model.OnlineStoreRow
	)

	g, gctx := errgroup.WithContext(ctx)
	for view, req := range requests {
		view, req := view, req
		if len(req.EntityKeys) == 0 || len(req.Features) == 0 {
			continue
		}
		g.Go(func() error {
			rows, err := s.queryView(gctx, view, req)
			if err != nil {
				return fmt.Errorf("relational online store: view %s: %w", view, err)
			}
			mu.Lock()
			results = append(results, rows)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []model.OnlineStoreRow
	for _, r := range results {
		flat = append(flat, r...)
	}
	return flat, nil
}

func (s *Store) queryView(ctx context.Context, view string, req onlinestore.EntityFeatureRequest) ([]model.OnlineStoreRow, error) {
	tableName := fmt.Sprintf("%s_%s", s.project, view)

	serializedKeys := make([][]byte, 0, len(req.EntityKeys))
	for _, k := range req.EntityKeys {
		enc, err := keycodec.Encode(k, keycodec.V3)
		if err != nil {
			return nil, fmt.Errorf("encoding entity key: %w", err)
		}
		serializedKeys = append(serializedKeys, enc)
	}

	var rows []row
	err := s.db.WithContext(ctx).Table(tableName).
		Where("entity_key IN ? AND feature_name IN ?", serializedKeys, req.Features).
		Find(&rows).Error
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]model.OnlineStoreRow, 0, len(rows))
	for _, r := range rows {
		val, err := types.Unmarshal(r.Value)
		if err != nil {
			return nil, fmt.Errorf("decoding value for %s:%s: %w", view, r.FeatureName, err)
		}
		key, err := keycodec.Decode(r.EntityKey, keycodec.V3)
		if err != nil {
			return nil, fmt.Errorf("decoding entity key for %s: %w", view, err)
		}
		created := r.CreatedTS
		out = append(out, model.OnlineStoreRow{
			ViewName:    view,
			EntityKey:   key,
			FeatureName: r.FeatureName,
			Value:       val,
			EventTS:     r.EventTS,
			CreatedTS:   &created,
		})
	}
	return out, nil
}

// isMissingTable reports whether err indicates the per-view table does not
// exist, a non-failure condition per spec: the view just has no rows yet.
func isMissingTable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "does not exist") || strings.Contains(msg, "undefined table")
}
