package model

import (
	"fmt"
	"strconv"

	"github.com/feast-serving/engine/internal/proto/feast/types"
)

// Value is the typed, tagged value union shared by the registry, the online
// store, and the request/response adapters. It is the same wire shape the
// protobuf "Value" message uses, so no translation layer sits between the
// core pipeline and the adapters that decode/encode it.
type Value = types.Value

// NullValue returns the canonical representation of "value absent".
func NullValue() *Value {
	return &Value{IsNull: true}
}

// IsNull reports whether v represents the null marker.
func IsNull(v *Value) bool {
	return v == nil || v.IsNull
}

// EntityIdValue is the user-supplied entity identifier, restricted to
// {int64, string}.
type EntityIdValue struct {
	StringVal *string
	IntVal    *int64
}

// NewEntityIDString builds a string-typed entity identifier.
func NewEntityIDString(s string) EntityIdValue { return EntityIdValue{StringVal: &s} }

// NewEntityIDInt builds an int-typed entity identifier.
func NewEntityIDInt(i int64) EntityIdValue { return EntityIdValue{IntVal: &i} }

// ToProtoValue coerces the identifier to a typed Value according to the
// target column type. String -> string. Int + {int32, int64} -> width
// adjusted int. Int + string -> decimal string. Any other combination fails.
func (e EntityIdValue) ToProtoValue(target types.ValueType) (*Value, error) {
	switch {
	case e.StringVal != nil && target == types.ValueTypeString:
		s := *e.StringVal
		return &Value{StringVal: &s}, nil
	case e.IntVal != nil && target == types.ValueTypeInt32:
		i := int32(*e.IntVal)
		return &Value{Int32Val: &i}, nil
	case e.IntVal != nil && target == types.ValueTypeInt64:
		i := *e.IntVal
		return &Value{Int64Val: &i}, nil
	case e.IntVal != nil && target == types.ValueTypeString:
		s := strconv.FormatInt(*e.IntVal, 10)
		return &Value{StringVal: &s}, nil
	default:
		return nil, fmt.Errorf("%w: cannot coerce entity id to value type %d", ErrUnsupportedCoercion, target)
	}
}

// ErrUnsupportedCoercion is returned by ToProtoValue for unsupported
// (identifier-kind, target-type) combinations.
var ErrUnsupportedCoercion = fmt.Errorf("unsupported coercion")
