package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements Collector using client_golang.
type PrometheusMetrics struct {
	featureLookupDuration *prometheus.HistogramVec
	featureRequests       *prometheus.CounterVec
	registryRefreshes     *prometheus.CounterVec
	registrySnapshotAge   prometheus.Gauge
	onlineStoreRowsServed *prometheus.CounterVec
}

// NewPrometheusMetrics registers and returns the serving engine's metric set.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{}

	m.featureLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feature_lookup_duration_seconds",
			Help:    "Duration of a single feature-view online store lookup",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view", "store"},
	)

	m.featureRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feature_requests_total",
			Help: "Total number of GetOnlineFeatures requests",
		},
		[]string{"status"},
	)

	m.registryRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_refresh_total",
			Help: "Total number of registry background refresh attempts",
		},
		[]string{"result"},
	)

	m.registrySnapshotAge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "registry_snapshot_age_seconds",
			Help: "Age of the currently served registry snapshot",
		},
	)

	m.onlineStoreRowsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "online_store_rows_returned_total",
			Help: "Total number of online store rows returned, by feature view",
		},
		[]string{"view"},
	)

	return m
}

// RecordFeatureLookup records the duration of a single feature-view lookup.
func (m *PrometheusMetrics) RecordFeatureLookup(view, store string, duration time.Duration) {
	m.featureLookupDuration.With(prometheus.Labels{"view": view, "store": store}).Observe(duration.Seconds())
}

// RecordFeatureRequest records the terminal status of a GetOnlineFeatures request.
func (m *PrometheusMetrics) RecordFeatureRequest(status string) {
	m.featureRequests.With(prometheus.Labels{"status": status}).Inc()
}

// RecordRegistryRefresh records the outcome of a background registry refresh attempt.
func (m *PrometheusMetrics) RecordRegistryRefresh(result string) {
	m.registryRefreshes.With(prometheus.Labels{"result": result}).Inc()
}

// SetRegistrySnapshotAge sets the age of the currently served registry snapshot.
func (m *PrometheusMetrics) SetRegistrySnapshotAge(age time.Duration) {
	m.registrySnapshotAge.Set(age.Seconds())
}

// RecordOnlineStoreRows records the number of rows a view's online store lookup returned.
func (m *PrometheusMetrics) RecordOnlineStoreRows(view string, rows int) {
	m.onlineStoreRowsServed.With(prometheus.Labels{"view": view}).Add(float64(rows))
}
