package model

import (
	"errors"
	"time"
)

// ErrEmptyFeatureString is returned by ParseFeature for an empty request
// feature string.
var ErrEmptyFeatureString = errors.New("model: empty feature string")

// GetOnlineFeatureRequest is the core request shape: a batch of entity
// identifiers per entity name, plus a requested feature set expressed either
// as a feature service name or a list of "<view>:<feature>" strings.
type GetOnlineFeatureRequest struct {
	Entities         map[string][]EntityIdValue
	EntityOrder      []string // preserves the wire request's entity-column order; len == len(Entities)
	FeatureService   *string
	Features         []string
	FullFeatureNames bool
}

// FeatureStatus mirrors the per-cell freshness/presence status.
type FeatureStatus int

const (
	FeatureStatusInvalid FeatureStatus = iota
	FeatureStatusPresent
	FeatureStatusNullValue
	FeatureStatusNotFound
	FeatureStatusOutsideMaxAge
)

func (s FeatureStatus) String() string {
	switch s {
	case FeatureStatusPresent:
		return "PRESENT"
	case FeatureStatusNullValue:
		return "NULL_VALUE"
	case FeatureStatusNotFound:
		return "NOT_FOUND"
	case FeatureStatusOutsideMaxAge:
		return "OUTSIDE_MAX_AGE"
	default:
		return "INVALID"
	}
}

// OnlineStoreRow is one decoded row returned by an online-store adapter.
type OnlineStoreRow struct {
	ViewName    string
	EntityKey   EntityKey
	FeatureName string
	Value       *Value
	EventTS     time.Time
	CreatedTS   *time.Time
}

// FeatureResults is one output column: three positionally aligned arrays of
// equal length.
type FeatureResults struct {
	Values          []*Value
	Statuses        []FeatureStatus
	EventTimestamps []time.Time
}

// ResponseMetadata carries the aligned column name list.
type ResponseMetadata struct {
	FeatureNames []string
}

// GetOnlineFeatureResponse is the columnar result: metadata.FeatureNames and
// Results have the same length, entity columns first, then feature columns.
type GetOnlineFeatureResponse struct {
	Metadata ResponseMetadata
	Results  []FeatureResults
}
