package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/pkg/logger"
	"github.com/stretchr/testify/require"
)

type counterSource struct {
	n atomic.Int64
}

func (s *counterSource) Snapshot(_ context.Context) (*model.RegistrySnapshot, error) {
	gen := s.n.Add(1)
	return &model.RegistrySnapshot{
		Entities:        map[string]*model.Entity{"gen": {Name: "gen", JoinKey: "gen"}},
		FeatureViews:    map[string]*model.FeatureView{},
		OnDemandViews:   map[string]struct{}{},
		FeatureServices: map[string]*model.FeatureService{},
		LoadedAt:        time.Now(),
	}, nilIfNonZero(gen)
}

func nilIfNonZero(int64) error { return nil }

func TestCachedSourceConcurrentReadsSeeWholeSnapshots(t *testing.T) {
	src := &counterSource{}
	log := logger.NewNoop()
	c, err := NewCachedSource(context.Background(), src, 10*time.Millisecond, log)
	require.NoError(t, err)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snap, err := c.Snapshot(context.Background())
				require.NoError(t, err)
				require.NotNil(t, snap.Entities["gen"])
			}
		}()
	}
	wg.Wait()
}
