// Package responsebuilder aligns online-store rows back to request
// positions and computes per-cell status, grounded on
// original_source/feast-server-core/src/feature_store/response_builder.rs.
package responsebuilder

import (
	"fmt"
	"time"

	"github.com/feast-serving/engine/internal/model"
)

// dummyEntityName is the lookup key an entity-less row's key is tagged
// with, matching planner.dummyEntityName.
const dummyEntityName = "__dummy_id"

var epoch = time.Unix(0, 0).UTC()

// ViewColumn identifies one entity column of one feature view, the key the
// lookup mapping is keyed by.
type ViewColumn struct {
	View   string
	Column string
}

type entityIDKey struct {
	name  string
	value string
}

type featureRow struct {
	feature model.Feature
	value   *model.Value
	status  model.FeatureStatus
	eventTS time.Time
}

// builder accumulates output columns, assigning each a stable index on
// first encounter, mirroring the original's feature_to_idx bookkeeping.
type builder struct {
	fullFeatureNames bool
	featureToIdx     map[model.Feature]int
	nextIdx          int
	names            []string
	results          []model.FeatureResults
}

func newBuilder(fullFeatureNames bool) *builder {
	return &builder{
		fullFeatureNames: fullFeatureNames,
		featureToIdx:     make(map[model.Feature]int),
	}
}

func (b *builder) appendColumn(name string, res model.FeatureResults) int {
	idx := b.nextIdx
	b.nextIdx++
	b.names = append(b.names, name)
	b.results = append(b.results, res)
	return idx
}

func (b *builder) appendEntityColumn(name string, values []*model.Value) {
	res := model.FeatureResults{
		Values:          values,
		Statuses:        make([]model.FeatureStatus, len(values)),
		EventTimestamps: make([]time.Time, len(values)),
	}
	for i := range values {
		res.Statuses[i] = model.FeatureStatusPresent
		res.EventTimestamps[i] = epoch
	}
	b.appendColumn(name, res)
}

// featureColumnIdx returns the column index for feature, creating it (empty)
// on first encounter.
func (b *builder) featureColumnIdx(feature model.Feature) int {
	if idx, ok := b.featureToIdx[feature]; ok {
		return idx
	}
	name := feature.Name
	if b.fullFeatureNames {
		name = fmt.Sprintf("%s.%s", feature.ViewName, feature.Name)
	}
	idx := b.appendColumn(name, model.FeatureResults{})
	b.featureToIdx[feature] = idx
	return idx
}

func (b *builder) padColumnTo(idx, length int) {
	for len(b.results[idx].Values) < length {
		b.results[idx].Values = append(b.results[idx].Values, model.NullValue())
		b.results[idx].Statuses = append(b.results[idx].Statuses, model.FeatureStatusNotFound)
		b.results[idx].EventTimestamps = append(b.results[idx].EventTimestamps, epoch)
	}
}

func (b *builder) appendFeatureValue(idx int, value *model.Value, status model.FeatureStatus, eventTS time.Time) {
	b.results[idx].Values = append(b.results[idx].Values, value)
	b.results[idx].Statuses = append(b.results[idx].Statuses, status)
	b.results[idx].EventTimestamps = append(b.results[idx].EventTimestamps, eventTS)
}

func (b *builder) addEntityLessFeature(feature model.Feature, value *model.Value, status model.FeatureStatus, eventTS time.Time, broadcastLen int) {
	name := feature.Name
	if b.fullFeatureNames {
		name = fmt.Sprintf("%s__%s", feature.ViewName, feature.Name)
	}
	res := model.FeatureResults{
		Values:          make([]*model.Value, broadcastLen),
		Statuses:        make([]model.FeatureStatus, broadcastLen),
		EventTimestamps: make([]time.Time, broadcastLen),
	}
	for i := 0; i < broadcastLen; i++ {
		res.Values[i] = value
		res.Statuses[i] = status
		res.EventTimestamps[i] = eventTS
	}
	b.appendColumn(name, res)
}

func (b *builder) addMissingFeature(feature model.Feature, length int) {
	name := feature.Name
	if b.fullFeatureNames {
		name = fmt.Sprintf("%s__%s", feature.ViewName, feature.Name)
	}
	res := model.FeatureResults{
		Values:          make([]*model.Value, length),
		Statuses:        make([]model.FeatureStatus, length),
		EventTimestamps: make([]time.Time, length),
	}
	for i := 0; i < length; i++ {
		res.Values[i] = model.NullValue()
		res.Statuses[i] = model.FeatureStatusNotFound
		res.EventTimestamps[i] = epoch
	}
	b.appendColumn(name, res)
}

func (b *builder) build() *model.GetOnlineFeatureResponse {
	return &model.GetOnlineFeatureResponse{
		Metadata: model.ResponseMetadata{FeatureNames: b.names},
		Results:  b.results,
	}
}

// Build aligns rows to the request's entity positions, grounded on
// response_builder.rs's try_from. entityNames gives the request's entity
// columns in their original order; lookupMapping resolves each
// (view, column) pair to the request entity name it was looked up under.
func Build(
	entityNames []string,
	entities map[string][]model.EntityIdValue,
	rows []model.OnlineStoreRow,
	views map[string]*model.FeatureView,
	lookupMapping map[ViewColumn]string,
	featureSet map[model.Feature]struct{},
	fullFeatureNames bool,
) (*model.GetOnlineFeatureResponse, error) {
	maxLen := 0
	for _, v := range entities {
		if len(v) > maxLen {
			maxLen = len(v)
		}
	}

	grouped := make(map[entityIDKey][]featureRow)
	var entityLessRows []featureRow

	now := time.Now()
	for _, row := range rows {
		if row.EntityKey.Len() != 1 {
			return nil, fmt.Errorf("responsebuilder: entity key with %d columns, expected 1", row.EntityKey.Len())
		}
		view := views[row.ViewName]
		status := featureStatus(row.Value, view, row.EventTS, now)
		fr := featureRow{
			feature: model.Feature{ViewName: row.ViewName, Name: row.FeatureName},
			value:   row.Value,
			status:  status,
			eventTS: row.EventTS,
		}

		columnName := row.EntityKey.JoinKeys[0]
		lookupKey, ok := lookupMapping[ViewColumn{View: row.ViewName, Column: columnName}]
		if !ok {
			lookupKey = columnName
		}
		if lookupKey == dummyEntityName {
			entityLessRows = append(entityLessRows, fr)
			continue
		}

		idKey, err := valueToEntityIDKey(lookupKey, row.EntityKey.EntityValues[0])
		if err != nil {
			return nil, err
		}
		grouped[idKey] = append(grouped[idKey], fr)
	}

	remaining := make(map[model.Feature]struct{}, len(featureSet))
	for f := range featureSet {
		remaining[f] = struct{}{}
	}

	b := newBuilder(fullFeatureNames)

	for _, entityName := range entityNames {
		values := entities[entityName]
		protoValues := make([]*model.Value, len(values))
		for i, v := range values {
			pv, err := entityIDToValue(v)
			if err != nil {
				return nil, err
			}
			protoValues[i] = pv
		}
		b.appendEntityColumn(entityName, protoValues)

		touchedThisEntity := make(map[model.Feature]struct{})
		for i, v := range values {
			idKey, err := idValueToEntityIDKey(entityName, v)
			if err != nil {
				return nil, err
			}
			featureRows := grouped[idKey]
			delete(grouped, idKey)
			for _, fr := range featureRows {
				delete(remaining, fr.feature)
				touchedThisEntity[fr.feature] = struct{}{}
				idx := b.featureColumnIdx(fr.feature)
				b.padColumnTo(idx, i)
				b.appendFeatureValue(idx, fr.value, fr.status, fr.eventTS)
			}
			for feature := range touchedThisEntity {
				b.padColumnTo(b.featureToIdx[feature], i+1)
			}
		}
	}

	for _, fr := range entityLessRows {
		delete(remaining, fr.feature)
		b.addEntityLessFeature(fr.feature, fr.value, fr.status, fr.eventTS, maxLen)
	}

	for feature := range remaining {
		view := views[feature.ViewName]
		length := missingFeatureLength(feature, view, entityNames, entities, lookupMapping, maxLen)
		b.addMissingFeature(feature, length)
	}

	return b.build(), nil
}

func missingFeatureLength(feature model.Feature, view *model.FeatureView, entityNames []string, entities map[string][]model.EntityIdValue, lookupMapping map[ViewColumn]string, fallback int) int {
	if view == nil || view.IsEntityLess() || len(view.EntityColumns) == 0 {
		return fallback
	}
	column := view.EntityColumns[0].Name
	requestName, ok := lookupMapping[ViewColumn{View: view.Name, Column: column}]
	if !ok {
		requestName = column
	}
	if values, ok := entities[requestName]; ok {
		return len(values)
	}
	return fallback
}

func featureStatus(value *model.Value, view *model.FeatureView, eventTS time.Time, now time.Time) model.FeatureStatus {
	if model.IsNull(value) {
		return model.FeatureStatusNullValue
	}
	if view != nil && view.TTL > 0 {
		if now.After(eventTS.Add(view.TTL)) {
			return model.FeatureStatusOutsideMaxAge
		}
	}
	return model.FeatureStatusPresent
}

func entityIDToValue(v model.EntityIdValue) (*model.Value, error) {
	switch {
	case v.StringVal != nil:
		s := *v.StringVal
		return &model.Value{StringVal: &s}, nil
	case v.IntVal != nil:
		i := *v.IntVal
		return &model.Value{Int64Val: &i}, nil
	default:
		return nil, fmt.Errorf("responsebuilder: empty entity id value")
	}
}

func idValueToEntityIDKey(name string, v model.EntityIdValue) (entityIDKey, error) {
	switch {
	case v.StringVal != nil:
		return entityIDKey{name: name, value: "s:" + *v.StringVal}, nil
	case v.IntVal != nil:
		return entityIDKey{name: name, value: fmt.Sprintf("i:%d", *v.IntVal)}, nil
	default:
		return entityIDKey{}, fmt.Errorf("responsebuilder: empty entity id value")
	}
}

// valueToEntityIDKey builds the same grouping key from a decoded
// *model.Value (an online-store row's key column) as idValueToEntityIDKey
// does from a request-side EntityIdValue, so the two compare equal.
func valueToEntityIDKey(name string, v *model.Value) (entityIDKey, error) {
	switch {
	case v == nil:
		return entityIDKey{}, fmt.Errorf("responsebuilder: nil entity key value")
	case v.StringVal != nil:
		return entityIDKey{name: name, value: "s:" + *v.StringVal}, nil
	case v.Int64Val != nil:
		return entityIDKey{name: name, value: fmt.Sprintf("i:%d", *v.Int64Val)}, nil
	case v.Int32Val != nil:
		return entityIDKey{name: name, value: fmt.Sprintf("i:%d", *v.Int32Val)}, nil
	default:
		return entityIDKey{}, fmt.Errorf("responsebuilder: unsupported entity key value type")
	}
}
