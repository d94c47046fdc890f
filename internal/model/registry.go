package model

import (
	"strings"
	"time"

	"github.com/feast-serving/engine/internal/proto/feast/types"
)

// DummyEntityName is the sentinel entity name marking an entity-less view.
const DummyEntityName = "__dummy"

// Field is a (name, scalar type) pair.
type Field struct {
	Name      string
	ValueType types.ValueType
}

// FeatureView is identified by name and carries its features, entity
// columns, TTL, and an optional join-key alias map attached by a resolving
// projection.
type FeatureView struct {
	Name          string
	Features      []Field
	EntityNames   []string
	EntityColumns []Field
	TTL           time.Duration
	// JoinKeyMap rewrites an entity column's own name to the externally
	// visible alias it should be looked up under. Populated only on a view
	// that was resolved through a FeatureProjection.
	JoinKeyMap map[string]string
}

// IsEntityLess reports whether v has no real entity columns: the reserved
// sentinel is its only declared entity name.
func (v *FeatureView) IsEntityLess() bool {
	return len(v.EntityNames) == 1 && v.EntityNames[0] == DummyEntityName
}

// WithJoinKeyMap returns a shallow copy of v with its entity names rewritten
// through the projection's join-key map (unmapped names pass through
// unchanged) and the map attached for downstream lookup-key resolution. The
// base view object is never mutated.
func (v *FeatureView) WithJoinKeyMap(joinKeyMap map[string]string) *FeatureView {
	clone := *v
	clone.EntityNames = make([]string, len(v.EntityNames))
	for i, name := range v.EntityNames {
		if alias, ok := joinKeyMap[name]; ok {
			clone.EntityNames[i] = alias
		} else {
			clone.EntityNames[i] = name
		}
	}
	clone.JoinKeyMap = joinKeyMap
	return &clone
}

// FeatureProjection selects a sub-list of features from a target view,
// optionally under an alias, with a join-key map rewriting entity columns.
type FeatureProjection struct {
	FeatureViewName string
	NameAlias       string
	Features        []Field
	JoinKeyMap      map[string]string
}

// LoggingConfig carries the sampling rate feature logging was configured
// with on a feature service. Feature logging itself is out of scope; this
// is carried through only so registry round-trips don't lose the field.
type LoggingConfig struct {
	SampleRate float64
}

// FeatureService is a named, stable bundle of projections.
type FeatureService struct {
	Name          string
	Project       string
	Projections   []FeatureProjection
	LoggingConfig *LoggingConfig
}

// Entity is a declared real-world noun with an identifier type.
type Entity struct {
	Name      string
	JoinKey   string
	ValueType types.ValueType
}

// Feature is the canonical (feature-view-name, feature-name) key used
// throughout resolution. An empty ViewName marks an entity column rather
// than a real feature.
type Feature struct {
	ViewName string
	Name     string
}

// String renders the feature in "<view>:<feature>" form.
func (f Feature) String() string {
	return f.ViewName + ":" + f.Name
}

// ParseFeature parses a "<view>:<feature>" request string. A bare string
// with no colon yields an empty view name and the whole string as the
// feature name (an error downstream unless the context treats it as an
// entity column). An empty input is always an error.
func ParseFeature(s string) (Feature, error) {
	if s == "" {
		return Feature{}, ErrEmptyFeatureString
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		return Feature{ViewName: s[:idx], Name: s[idx+1:]}, nil
	}
	return Feature{ViewName: "", Name: s}, nil
}

// RegistrySnapshot is an immutable aggregate of the registry's catalog
// entries. Created once per load, never mutated, replaced atomically by the
// loader.
type RegistrySnapshot struct {
	Entities        map[string]*Entity
	FeatureViews    map[string]*FeatureView
	OnDemandViews   map[string]struct{}
	FeatureServices map[string]*FeatureService
	LoadedAt        time.Time
}
