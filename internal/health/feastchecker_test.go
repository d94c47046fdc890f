package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/feast-serving/engine/internal/model"
	"github.com/stretchr/testify/assert"
)

type fakeSnapshotSource struct {
	snap *model.RegistrySnapshot
	err  error
}

func (f *fakeSnapshotSource) Snapshot(context.Context) (*model.RegistrySnapshot, error) {
	return f.snap, f.err
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

func TestRegistryLoadedCheck(t *testing.T) {
	up := NewRegistryLoadedCheck(&fakeSnapshotSource{snap: &model.RegistrySnapshot{LoadedAt: time.Now()}})
	assert.Equal(t, StatusUp, up().Status)

	down := NewRegistryLoadedCheck(&fakeSnapshotSource{err: errors.New("boom")})
	assert.Equal(t, StatusDown, down().Status)
}

func TestOnlineStoreReachableCheck(t *testing.T) {
	up := NewOnlineStoreReachableCheck("redis", &fakePinger{})
	assert.Equal(t, StatusUp, up().Status)

	down := NewOnlineStoreReachableCheck("redis", &fakePinger{err: errors.New("boom")})
	assert.Equal(t, StatusDown, down().Status)
}

func TestCheckerRunChecksAggregatesStatus(t *testing.T) {
	c := NewChecker("v0.1.0", "")
	c.AddCheck(NewOnlineStoreReachableCheck("redis", &fakePinger{}))
	c.AddCheck(NewRegistryLoadedCheck(&fakeSnapshotSource{err: errors.New("boom")}))

	result := c.RunChecks()
	assert.Equal(t, StatusDown, result.Status)
	assert.Len(t, result.Checks, 2)
}
