package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feast-serving/engine/internal/errors"
	"github.com/feast-serving/engine/internal/featurestore"
	"github.com/feast-serving/engine/internal/health"
	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/internal/onlinestore"
	"github.com/feast-serving/engine/pkg/logger"
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
}

func (f *fakeStore) GetFeatureValues(context.Context, map[string]onlinestore.EntityFeatureRequest) ([]model.OnlineStoreRow, error) {
	return f.rows, nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T, store *featurestore.FeatureStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	checker := health.NewChecker("test", "")
	return SetupRouter(engine, logger.NewNoop(), DefaultRouterConfig(), store, checker)
}

func TestHandle_GetOnlineFeatures(t *testing.T) {
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
	fs := featurestore.New(catalog, store, nil)

	router := newTestRouter(t, fs)

	body := []byte(`{"entities":{"driver_id":[1001]},"features":["driver_hourly_stats:conv_rate"]}`)
	req := httptest.NewRequest(http.MethodPost, "/get-online-features", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "driver_id")
	assert.Contains(t, rec.Body.String(), "conv_rate")
}

func TestHandle_RejectsBothFeatureServiceAndFeatures(t *testing.T) {
	fs := featurestore.New(&fakeCatalog{}, &fakeStore{}, nil)
	router := newTestRouter(t, fs)

	svc := "driver_service"
	body := []byte(`{"entities":{"driver_id":[1001]},"feature_service":"` + svc + `","features":["a:b"]}`)
	req := httptest.NewRequest(http.MethodPost, "/get-online-features", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_NotFoundMapsTo404(t *testing.T) {
	catalog := &fakeCatalog{err: errors.ErrFeatureViewNotFound}
	fs := featurestore.New(catalog, &fakeStore{}, nil)
	router := newTestRouter(t, fs)

	body := []byte(`{"entities":{"driver_id":[1001]},"features":["driver_hourly_stats:conv_rate"]}`)
	req := httptest.NewRequest(http.MethodPost, "/get-online-features", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	fs := featurestore.New(&fakeCatalog{}, &fakeStore{}, nil)
	router := newTestRouter(t, fs)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func int64Ptr(i int64) *int64 { return &i }
