package featurestore

import (
	"context"
	"testing"

	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/internal/onlinestore"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	resolved map[model.Feature]*model.FeatureView
	err      error
}

func (f *fakeCatalog) Resolve(context.Context, *model.GetOnlineFeatureRequest) (map[model.Feature]*model.FeatureView, error) {
	return f.resolved, f.err
}

type fakeStore struct {
	rows []model.OnlineStoreRow
	err  error
}

func (f *fakeStore) GetFeatureValues(context.Context, map[string]onlinestore.EntityFeatureRequest) ([]model.OnlineStoreRow, error) {
	return f.rows, f.err
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func TestFeatureStore_GetOnlineFeatures(t *testing.T) {
	view := &model.FeatureView{
		Name:          "driver_hourly_stats",
		EntityColumns: []model.Field{{Name: "driver_id"}},
	}
	feature := model.Feature{ViewName: "driver_hourly_stats", Name: "conv_rate"}
	convRate := 0.5
	key := model.EntityKey{JoinKeys: []string{"driver_id"}, EntityValues: []*model.Value{{Int64Val: int64Ptr(1001)}}}

	catalog := &fakeCatalog{resolved: map[model.Feature]*model.FeatureView{feature: view}}
	store := &fakeStore{rows: []model.OnlineStoreRow{
		{ViewName: "driver_hourly_stats", EntityKey: key, FeatureName: "conv_rate", Value: &model.Value{DoubleVal: &convRate}},
	}}

	fs := New(catalog, store, nil)
	req := &model.GetOnlineFeatureRequest{
		Entities:    map[string][]model.EntityIdValue{"driver_id": {model.NewEntityIDInt(1001)}},
		EntityOrder: []string{"driver_id"},
		Features:    []string{"driver_hourly_stats:conv_rate"},
	}

	resp, err := fs.GetOnlineFeatures(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []string{"driver_id", "conv_rate"}, resp.Metadata.FeatureNames)
}

func int64Ptr(i int64) *int64 { return &i }
