package responsebuilder

import (
	"testing"
	"time"

	"github.com/feast-serving/engine/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_MissingValuesForSecondEntity(t *testing.T) {
	entityNames := []string{"driver_id"}
	entities := map[string][]model.EntityIdValue{
		"driver_id": {model.NewEntityIDInt(1001), model.NewEntityIDInt(1002)},
	}

	eventTS := time.Now().Truncate(time.Second)
	accRate := int64(42)
	key := model.EntityKey{
		JoinKeys:     []string{"driver_id"},
		EntityValues: []*model.Value{{Int64Val: int64Ptr(1001)}},
	}
	rows := []model.OnlineStoreRow{
		{
			ViewName:    "driver_hourly_stats",
			EntityKey:   key,
			FeatureName: "acc_rate",
			Value:       &model.Value{Int64Val: &accRate},
			EventTS:     eventTS,
		},
	}

	view := &model.FeatureView{
		Name:          "driver_hourly_stats",
		EntityNames:   []string{"driver_id"},
		EntityColumns: []model.Field{{Name: "driver_id"}},
		TTL:           time.Hour,
	}
	views := map[string]*model.FeatureView{"driver_hourly_stats": view}
	lookupMapping := map[ViewColumn]string{
		{View: "driver_hourly_stats", Column: "driver_id"}: "driver_id",
	}
	featureSet := map[model.Feature]struct{}{
		{ViewName: "driver_hourly_stats", Name: "acc_rate"}: {},
	}

	resp, err := Build(entityNames, entities, rows, views, lookupMapping, featureSet, false)
	require.NoError(t, err)

	require.Equal(t, []string{"driver_id", "acc_rate"}, resp.Metadata.FeatureNames)
	require.Len(t, resp.Results, 2)

	entityCol := resp.Results[0]
	require.Len(t, entityCol.Values, 2)
	assert.Equal(t, int64(1001), *entityCol.Values[0].Int64Val)
	assert.Equal(t, int64(1002), *entityCol.Values[1].Int64Val)
	assert.Equal(t, []model.FeatureStatus{model.FeatureStatusPresent, model.FeatureStatusPresent}, entityCol.Statuses)

	featureCol := resp.Results[1]
	require.Len(t, featureCol.Values, 2)
	assert.Equal(t, int64(42), *featureCol.Values[0].Int64Val)
	assert.True(t, model.IsNull(featureCol.Values[1]))
	assert.Equal(t, model.FeatureStatusPresent, featureCol.Statuses[0])
	assert.Equal(t, model.FeatureStatusNotFound, featureCol.Statuses[1])
}

func TestBuild_FullFeatureNamesAsymmetry(t *testing.T) {
	entityNames := []string{"driver_id"}
	entities := map[string][]model.EntityIdValue{
		"driver_id": {model.NewEntityIDInt(1001)},
	}
	view := &model.FeatureView{
		Name:          "driver_hourly_stats",
		EntityColumns: []model.Field{{Name: "driver_id"}},
	}
	views := map[string]*model.FeatureView{"driver_hourly_stats": view}
	lookupMapping := map[ViewColumn]string{
		{View: "driver_hourly_stats", Column: "driver_id"}: "driver_id",
	}
	featureSet := map[model.Feature]struct{}{
		{ViewName: "driver_hourly_stats", Name: "conv_rate"}: {},
	}

	resp, err := Build(entityNames, entities, nil, views, lookupMapping, featureSet, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"driver_id", "driver_hourly_stats__conv_rate"}, resp.Metadata.FeatureNames)
}

func TestBuild_EntityLessBroadcast(t *testing.T) {
	entityNames := []string{"driver_id"}
	entities := map[string][]model.EntityIdValue{
		"driver_id": {model.NewEntityIDInt(1001), model.NewEntityIDInt(1002)},
	}
	totalRequests := int64(7)
	rows := []model.OnlineStoreRow{
		{
			ViewName:    "global_stats",
			EntityKey:   model.EntityKey{JoinKeys: []string{"__dummy_id"}, EntityValues: []*model.Value{{StringVal: strPtr("")}}},
			FeatureName: "total_requests",
			Value:       &model.Value{Int64Val: &totalRequests},
		},
	}
	views := map[string]*model.FeatureView{
		"global_stats": {Name: "global_stats", EntityNames: []string{model.DummyEntityName}},
	}
	featureSet := map[model.Feature]struct{}{
		{ViewName: "global_stats", Name: "total_requests"}: {},
	}

	resp, err := Build(entityNames, entities, rows, views, nil, featureSet, false)
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	broadcastCol := resp.Results[1]
	require.Len(t, broadcastCol.Values, 2)
	assert.Equal(t, int64(7), *broadcastCol.Values[0].Int64Val)
	assert.Equal(t, int64(7), *broadcastCol.Values[1].Int64Val)
}

func int64Ptr(i int64) *int64 { return &i }
func strPtr(s string) *string { return &s }
