package grpcapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/internal/proto/feast/serving"
	"github.com/feast-serving/engine/internal/proto/feast/types"
)

func TestRepeatedValueToEntityIDs_ConvertsStringsAndInts(t *testing.T) {
	driverID := int64(1001)
	name := "abc"
	values := &serving.RepeatedValue{
		Val: []*types.Value{
			{Int64Val: &driverID},
			{StringVal: &name},
		},
	}

	ids, err := repeatedValueToEntityIDs("driver_id", values)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, int64(1001), *ids[0].IntVal)
	assert.Equal(t, "abc", *ids[1].StringVal)
}

func TestRepeatedValueToEntityIDs_RejectsUnsupportedValue(t *testing.T) {
	values := &serving.RepeatedValue{Val: []*types.Value{{}}}

	_, err := repeatedValueToEntityIDs("driver_id", values)
	assert.Error(t, err)
}

func TestFromRequestProto_ConvertsEntitiesAndFeatures(t *testing.T) {
	driverID := int64(1001)
	req := &serving.GetOnlineFeaturesRequest{
		Entities: map[string]*serving.RepeatedValue{
			"driver_id": {Val: []*types.Value{{Int64Val: &driverID}}},
		},
		Features: []string{"driver_hourly_stats:conv_rate"},
	}

	modelReq, order, err := fromRequestProto(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"driver_id"}, order)
	require.Contains(t, modelReq.Entities, "driver_id")
	assert.Equal(t, int64(1001), *modelReq.Entities["driver_id"][0].IntVal)
	assert.Equal(t, []string{"driver_hourly_stats:conv_rate"}, modelReq.Features)
}

func TestFeatureResultToProto_ConvertsColumn(t *testing.T) {
	convRate := 0.5
	ts := time.Unix(1700000000, 123000000).UTC()
	col := model.FeatureResults{
		Values:          []*types.Value{{DoubleVal: &convRate}},
		Statuses:        []model.FeatureStatus{model.FeatureStatusPresent},
		EventTimestamps: []time.Time{ts},
	}

	vec := featureResultToProto(col)
	require.Len(t, vec.Values, 1)
	assert.Equal(t, convRate, *vec.Values[0].DoubleVal)
	assert.Equal(t, []int32{1}, vec.Statuses)
	require.Len(t, vec.EventTimestamps, 1)
	assert.Equal(t, int64(1700000000), vec.EventTimestamps[0].Seconds)
}

func TestMapStatusToProto_MatchesEnumAssignment(t *testing.T) {
	cases := []struct {
		in   model.FeatureStatus
		want int32
	}{
		{model.FeatureStatusInvalid, 0},
		{model.FeatureStatusPresent, 1},
		{model.FeatureStatusNullValue, 2},
		{model.FeatureStatusNotFound, 3},
		{model.FeatureStatusOutsideMaxAge, 4},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, mapStatusToProto(c.in))
	}
}

func TestToResponseProto_SetsStatusTrue(t *testing.T) {
	resp := &model.GetOnlineFeatureResponse{
		Metadata: model.ResponseMetadata{FeatureNames: []string{"driver_id"}},
		Results: []model.FeatureResults{
			{Values: []*types.Value{{Int64Val: func() *int64 { v := int64(1001); return &v }()}}},
		},
	}

	proto := toResponseProto(resp)
	assert.True(t, proto.Status)
	assert.Equal(t, []string{"driver_id"}, proto.FeatureNames)
	require.Len(t, proto.Results, 1)
}
