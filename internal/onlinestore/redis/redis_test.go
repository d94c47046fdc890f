package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/feast-serving/engine/internal/keycodec"
	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/internal/onlinestore"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func seedDriverRow(t *testing.T, mr *miniredis.Miniredis, project, view string, key model.EntityKey, feature string, value *model.Value, ts *timestamppb.Timestamp) {
	t.Helper()
	enc, err := keycodec.Encode(key, keycodec.V3)
	require.NoError(t, err)
	hashKey := string(enc) + project

	valBytes := value.Marshal()
	require.NoError(t, mr.HSet(hashKey, string(featureFieldKey(view, feature)), string(valBytes)))

	tsBytes, err := proto.Marshal(ts)
	require.NoError(t, err)
	require.NoError(t, mr.HSet(hashKey, string(timestampFieldKey(view)), string(tsBytes)))
}

func TestStore_GetFeatureValues_PresentAndMissing(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	driverID := int64(1005)
	convRate := 0.5
	key := model.EntityKey{
		JoinKeys:     []string{"driver_id"},
		EntityValues: []*model.Value{{Int64Val: &driverID}},
	}
	ts := timestamppb.Now()
	seedDriverRow(t, mr, "feast_project", "driver_hourly_stats", key, "conv_rate", &model.Value{DoubleVal: &convRate}, ts)

	store := NewWithClient(client, "feast_project")
	rows, err := store.GetFeatureValues(context.Background(), map[string]onlinestore.EntityFeatureRequest{
		"driver_hourly_stats": {
			EntityKeys: []model.EntityKey{key},
			Features:   []string{"conv_rate", "acc_rate"},
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byFeature := map[string]model.OnlineStoreRow{}
	for _, r := range rows {
		byFeature[r.FeatureName] = r
	}

	assert.NotNil(t, byFeature["conv_rate"].Value)
	assert.False(t, model.IsNull(byFeature["conv_rate"].Value))
	assert.True(t, model.IsNull(byFeature["acc_rate"].Value))
}

func TestStore_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewWithClient(client, "feast_project")
	assert.NoError(t, store.Ping(context.Background()))
}

func TestFeatureFieldKey_Deterministic(t *testing.T) {
	a := featureFieldKey("driver_hourly_stats", "conv_rate")
	b := featureFieldKey("driver_hourly_stats", "conv_rate")
	c := featureFieldKey("driver_hourly_stats", "acc_rate")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 4)
}
