package planner

import (
	"testing"

	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/internal/proto/feast/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func driverView() *model.FeatureView {
	return &model.FeatureView{
		Name:          "driver_hourly_stats",
		EntityNames:   []string{"driver_id"},
		EntityColumns: []model.Field{{Name: "driver_id", ValueType: types.ValueTypeInt64}},
		Features:      []model.Field{{Name: "conv_rate", ValueType: types.ValueTypeDouble}},
	}
}

func entityLessView() *model.FeatureView {
	return &model.FeatureView{
		Name:        "global_stats",
		EntityNames: []string{model.DummyEntityName},
		Features:    []model.Field{{Name: "total_requests", ValueType: types.ValueTypeInt64}},
	}
}

func TestPlan_BasicView(t *testing.T) {
	view := driverView()
	resolved := map[model.Feature]*model.FeatureView{
		{ViewName: "driver_hourly_stats", Name: "conv_rate"}: view,
	}
	entities := map[string][]model.EntityIdValue{
		"driver_id": {model.NewEntityIDInt(1001), model.NewEntityIDInt(1002)},
	}

	plans, err := Plan(resolved, entities)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.False(t, plans[0].EntityLess)
	require.Len(t, plans[0].Keys, 2)
	assert.Equal(t, []string{"driver_id"}, plans[0].Keys[0].JoinKeys)
}

func TestPlan_EntityLess(t *testing.T) {
	view := entityLessView()
	resolved := map[model.Feature]*model.FeatureView{
		{ViewName: "global_stats", Name: "total_requests"}: view,
	}

	plans, err := Plan(resolved, map[string][]model.EntityIdValue{})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.True(t, plans[0].EntityLess)
	require.Len(t, plans[0].Keys, 1)
	assert.Equal(t, []string{"__dummy_id"}, plans[0].Keys[0].JoinKeys)
}

func TestPlan_MissingEntityValues(t *testing.T) {
	view := driverView()
	resolved := map[model.Feature]*model.FeatureView{
		{ViewName: "driver_hourly_stats", Name: "conv_rate"}: view,
	}
	_, err := Plan(resolved, map[string][]model.EntityIdValue{})
	assert.Error(t, err)
}

func TestPlan_RaggedEntityVectors(t *testing.T) {
	view := &model.FeatureView{
		Name: "multi_entity_view",
		EntityColumns: []model.Field{
			{Name: "driver_id", ValueType: types.ValueTypeInt64},
			{Name: "rider_id", ValueType: types.ValueTypeInt64},
		},
		Features: []model.Field{{Name: "trip_count", ValueType: types.ValueTypeInt64}},
	}
	resolved := map[model.Feature]*model.FeatureView{
		{ViewName: "multi_entity_view", Name: "trip_count"}: view,
	}
	entities := map[string][]model.EntityIdValue{
		"driver_id": {model.NewEntityIDInt(1)},
		"rider_id":  {model.NewEntityIDInt(1), model.NewEntityIDInt(2)},
	}
	_, err := Plan(resolved, entities)
	assert.Error(t, err)
}

func TestPlan_SharesKeyVectorAcrossViewsWithSameColumns(t *testing.T) {
	viewA := driverView()
	viewB := &model.FeatureView{
		Name:          "driver_daily_stats",
		EntityColumns: []model.Field{{Name: "driver_id", ValueType: types.ValueTypeInt64}},
		Features:      []model.Field{{Name: "trips_today", ValueType: types.ValueTypeInt64}},
	}
	resolved := map[model.Feature]*model.FeatureView{
		{ViewName: "driver_hourly_stats", Name: "conv_rate"}:    viewA,
		{ViewName: "driver_daily_stats", Name: "trips_today"}: viewB,
	}
	entities := map[string][]model.EntityIdValue{
		"driver_id": {model.NewEntityIDInt(1001)},
	}

	plans, err := Plan(resolved, entities)
	require.NoError(t, err)
	require.Len(t, plans, 2)

	var keysA, keysB []model.EntityKey
	for _, p := range plans {
		if p.Feature.ViewName == "driver_hourly_stats" {
			keysA = p.Keys
		} else {
			keysB = p.Keys
		}
	}
	assert.Same(t, &keysA[0], &keysB[0])
}
