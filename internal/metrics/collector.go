package metrics

import "time"

// Collector provides an interface for metrics collection, decoupling the
// feature store and adapters from a specific metrics backend.
type Collector interface {
	// RecordFeatureLookup records the duration of a single feature-view
	// online store lookup.
	RecordFeatureLookup(view, store string, duration time.Duration)

	// RecordFeatureRequest records the terminal status of a
	// GetOnlineFeatures request ("ok", "invalid", "not_found", "error").
	RecordFeatureRequest(status string)

	// RecordRegistryRefresh records the outcome of a background registry
	// refresh attempt ("ok" or "error").
	RecordRegistryRefresh(result string)

	// SetRegistrySnapshotAge sets the age of the currently served registry
	// snapshot.
	SetRegistrySnapshotAge(age time.Duration)

	// RecordOnlineStoreRows records how many rows a view's online store
	// lookup returned.
	RecordOnlineStoreRows(view string, rows int)
}

// NewCollector builds a Collector. impl selects the backend; unrecognized
// values fall back to a no-op collector so metrics can always be disabled
// cheaply.
func NewCollector(impl string) Collector {
	switch impl {
	case "prometheus":
		return NewPrometheusMetrics()
	default:
		return &NoopCollector{}
	}
}

// NoopCollector discards everything; used when --metrics is unset.
type NoopCollector struct{}

func (n *NoopCollector) RecordFeatureLookup(string, string, time.Duration) {}
func (n *NoopCollector) RecordFeatureRequest(string)                       {}
func (n *NoopCollector) RecordRegistryRefresh(string)                      {}
func (n *NoopCollector) SetRegistrySnapshotAge(time.Duration)              {}
func (n *NoopCollector) RecordOnlineStoreRows(string, int)                 {}
