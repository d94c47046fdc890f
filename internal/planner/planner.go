// Package planner builds per-view entity-key vectors from a resolved
// feature set and a request's entity map, grounded on
// original_source/feast-server-core/src/feature_store/feature_store_impl.rs's
// feature_views_to_keys.
package planner

import (
	"fmt"

	"github.com/feast-serving/engine/internal/errors"
	"github.com/feast-serving/engine/internal/model"
)

// dummyEntityName is the lookup key an entity-less view's single synthetic
// key is built under.
const dummyEntityName = "__dummy_id"

// KeyPlan is one resolved feature's lookup plan: which feature-view/entity
// key vector to query, and whether it is an entity-less broadcast feature.
type KeyPlan struct {
	Feature      model.Feature
	View         *model.FeatureView
	EntityLess   bool
	Keys         []model.EntityKey
	LookupByCol  map[string]string // entity column name -> request entity name used
}

// Plan resolves lookup keys for every entry in resolved, sharing identical
// key vectors by pointer across views with the same ordered origin column
// list.
func Plan(resolved map[model.Feature]*model.FeatureView, entities map[string][]model.EntityIdValue) ([]KeyPlan, error) {
	viewKeys := make(map[string][]model.EntityKey) // cache key: joined column names
	plans := make([]KeyPlan, 0, len(resolved))

	for feature, view := range resolved {
		lookupByCol := lookupKeyMapping(view, entities)

		if view.IsEntityLess() {
			plans = append(plans, KeyPlan{
				Feature:    feature,
				View:       view,
				EntityLess: true,
				Keys: []model.EntityKey{{
					JoinKeys:     []string{dummyEntityName},
					EntityValues: []*model.Value{{StringVal: strPtr("")}},
				}},
				LookupByCol: lookupByCol,
			})
			continue
		}

		cacheKey := cacheKeyFor(view.EntityColumns, lookupByCol)
		keys, ok := viewKeys[cacheKey]
		if !ok {
			built, err := buildKeys(view, lookupByCol, entities)
			if err != nil {
				return nil, err
			}
			viewKeys[cacheKey] = built
			keys = built
		}

		plans = append(plans, KeyPlan{
			Feature:     feature,
			View:        view,
			EntityLess:  false,
			Keys:        keys,
			LookupByCol: lookupByCol,
		})
	}

	return plans, nil
}

// lookupKeyMapping computes, for each entity column of view, the request
// entity name its values must be read from: the view's join-key alias when
// present in the request, otherwise the column's own name.
func lookupKeyMapping(view *model.FeatureView, entities map[string][]model.EntityIdValue) map[string]string {
	mapping := make(map[string]string, len(view.EntityColumns))
	for _, col := range view.EntityColumns {
		name := col.Name
		if view.JoinKeyMap != nil {
			if alias, ok := view.JoinKeyMap[col.Name]; ok {
				if _, present := entities[alias]; present {
					name = alias
				}
			}
		}
		mapping[col.Name] = name
	}
	return mapping
}

func cacheKeyFor(columns []model.Field, lookupByCol map[string]string) string {
	key := ""
	for _, c := range columns {
		key += c.Name + "\x01" + lookupByCol[c.Name] + "\x00"
	}
	return key
}

func buildKeys(view *model.FeatureView, lookupByCol map[string]string, entities map[string][]model.EntityIdValue) ([]model.EntityKey, error) {
	if len(view.EntityColumns) == 0 {
		return nil, fmt.Errorf("%w: view %s has no entity columns", errors.ErrMissingEntityValues, view.Name)
	}

	columnValues := make([][]model.EntityIdValue, len(view.EntityColumns))
	n := -1
	for i, col := range view.EntityColumns {
		requestName := lookupByCol[col.Name]
		vals, ok := entities[requestName]
		if !ok {
			return nil, fmt.Errorf("%w: view=%s column=%s request_entity=%s", errors.ErrMissingEntityValues, view.Name, col.Name, requestName)
		}
		if n == -1 {
			n = len(vals)
		} else if len(vals) != n {
			return nil, fmt.Errorf("%w: view=%s", errors.ErrRaggedEntityVectors, view.Name)
		}
		columnValues[i] = vals
	}

	keys := make([]model.EntityKey, n)
	for row := 0; row < n; row++ {
		joinKeys := make([]string, len(view.EntityColumns))
		values := make([]*model.Value, len(view.EntityColumns))
		for col, field := range view.EntityColumns {
			joinKeys[col] = field.Name
			val, err := columnValues[col][row].ToProtoValue(field.ValueType)
			if err != nil {
				return nil, fmt.Errorf("%w: view=%s column=%s: %v", errors.ErrInvalidRequest, view.Name, field.Name, err)
			}
			values[col] = val
		}
		keys[row] = model.EntityKey{JoinKeys: joinKeys, EntityValues: values}
	}
	return keys, nil
}

func strPtr(s string) *string { return &s }
