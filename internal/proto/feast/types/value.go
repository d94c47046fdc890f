// Package types holds the wire-level representation of the feature value
// union, mirroring the protobuf "Value" message used by Feast's registry and
// online-store payloads. Encoding/decoding is hand-rolled against
// google.golang.org/protobuf's low-level wire package rather than generated
// from a .proto file, since only this one message and its list variants are
// needed by the serving path.
package types

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the Value oneof, matching feast.types.Value.
const (
	fieldBytesVal             = 1
	fieldStringVal            = 2
	fieldInt32Val             = 3
	fieldInt64Val             = 4
	fieldDoubleVal            = 5
	fieldFloatVal             = 6
	fieldBoolVal              = 7
	fieldUnixTimestampVal     = 8
	fieldBytesListVal         = 11
	fieldStringListVal        = 12
	fieldInt32ListVal         = 13
	fieldInt64ListVal         = 14
	fieldDoubleListVal        = 15
	fieldFloatListVal         = 16
	fieldBoolListVal          = 17
	fieldUnixTimestampListVal = 18
	fieldNullVal              = 19
)

// Value is the tagged union wire type. Exactly one of the pointer/slice
// fields is populated, or none (representing a null value).
type Value struct {
	BytesVal             []byte
	StringVal             *string
	Int32Val              *int32
	Int64Val              *int64
	DoubleVal              *float64
	FloatVal               *float32
	BoolVal                *bool
	UnixTimestampVal       *int64
	BytesListVal           [][]byte
	StringListVal          []string
	Int32ListVal           []int32
	Int64ListVal           []int64
	DoubleListVal          []float64
	FloatListVal           []float32
	BoolListVal            []bool
	UnixTimestampListVal   []int64
	IsNull                 bool
}

// Marshal encodes the value in protobuf wire format.
func (v *Value) Marshal() []byte {
	var b []byte
	switch {
	case v == nil || (v.IsNull && v.empty()):
		b = protowire.AppendTag(b, fieldNullVal, protowire.VarintType)
		b = protowire.AppendVarint(b, 0)
	case v.BytesVal != nil:
		b = protowire.AppendTag(b, fieldBytesVal, protowire.BytesType)
		b = protowire.AppendBytes(b, v.BytesVal)
	case v.StringVal != nil:
		b = protowire.AppendTag(b, fieldStringVal, protowire.BytesType)
		b = protowire.AppendString(b, *v.StringVal)
	case v.Int32Val != nil:
		b = protowire.AppendTag(b, fieldInt32Val, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(*v.Int32Val)))
	case v.Int64Val != nil:
		b = protowire.AppendTag(b, fieldInt64Val, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*v.Int64Val))
	case v.DoubleVal != nil:
		b = protowire.AppendTag(b, fieldDoubleVal, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, mathFloat64bits(*v.DoubleVal))
	case v.FloatVal != nil:
		b = protowire.AppendTag(b, fieldFloatVal, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, mathFloat32bits(*v.FloatVal))
	case v.BoolVal != nil:
		b = protowire.AppendTag(b, fieldBoolVal, protowire.VarintType)
		b = protowire.AppendVarint(b, boolToVarint(*v.BoolVal))
	case v.UnixTimestampVal != nil:
		b = protowire.AppendTag(b, fieldUnixTimestampVal, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*v.UnixTimestampVal))
	case v.BytesListVal != nil:
		b = protowire.AppendTag(b, fieldBytesListVal, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalBytesList(v.BytesListVal))
	case v.StringListVal != nil:
		b = protowire.AppendTag(b, fieldStringListVal, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalStringList(v.StringListVal))
	case v.Int32ListVal != nil:
		b = protowire.AppendTag(b, fieldInt32ListVal, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalInt32List(v.Int32ListVal))
	case v.Int64ListVal != nil:
		b = protowire.AppendTag(b, fieldInt64ListVal, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalInt64List(v.Int64ListVal))
	case v.DoubleListVal != nil:
		b = protowire.AppendTag(b, fieldDoubleListVal, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalDoubleList(v.DoubleListVal))
	case v.FloatListVal != nil:
		b = protowire.AppendTag(b, fieldFloatListVal, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalFloatList(v.FloatListVal))
	case v.BoolListVal != nil:
		b = protowire.AppendTag(b, fieldBoolListVal, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalBoolList(v.BoolListVal))
	case v.UnixTimestampListVal != nil:
		b = protowire.AppendTag(b, fieldUnixTimestampListVal, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalInt64List(v.UnixTimestampListVal))
	default:
		b = protowire.AppendTag(b, fieldNullVal, protowire.VarintType)
		b = protowire.AppendVarint(b, 0)
	}
	return b
}

func (v *Value) empty() bool {
	return v.BytesVal == nil && v.StringVal == nil && v.Int32Val == nil && v.Int64Val == nil &&
		v.DoubleVal == nil && v.FloatVal == nil && v.BoolVal == nil && v.UnixTimestampVal == nil &&
		v.BytesListVal == nil && v.StringListVal == nil && v.Int32ListVal == nil && v.Int64ListVal == nil &&
		v.DoubleListVal == nil && v.FloatListVal == nil && v.BoolListVal == nil && v.UnixTimestampListVal == nil
}

// Unmarshal decodes a single-field Value message. Returns an error on
// malformed wire bytes; an empty byte slice decodes to a null value. Only the
// scalar and null fields are decoded: a list field (11-18) returns an
// "unsupported value field" error.
func Unmarshal(data []byte) (*Value, error) {
	v := &Value{}
	if len(data) == 0 {
		v.IsNull = true
		return v, nil
	}
	num, typ, n := protowire.ConsumeTag(data)
	if n < 0 {
		return nil, fmt.Errorf("types: invalid tag: %w", protowire.ParseError(n))
	}
	rest := data[n:]
	switch num {
	case fieldBytesVal:
		b, m := protowire.ConsumeBytes(rest)
		if m < 0 {
			return nil, fmt.Errorf("types: invalid bytes_val")
		}
		v.BytesVal = append([]byte(nil), b...)
	case fieldStringVal:
		b, m := protowire.ConsumeBytes(rest)
		if m < 0 {
			return nil, fmt.Errorf("types: invalid string_val")
		}
		s := string(b)
		v.StringVal = &s
	case fieldInt32Val:
		n64, m := protowire.ConsumeVarint(rest)
		if m < 0 {
			return nil, fmt.Errorf("types: invalid int32_val")
		}
		i := int32(n64)
		v.Int32Val = &i
	case fieldInt64Val:
		n64, m := protowire.ConsumeVarint(rest)
		if m < 0 {
			return nil, fmt.Errorf("types: invalid int64_val")
		}
		i := int64(n64)
		v.Int64Val = &i
	case fieldDoubleVal:
		bits, m := protowire.ConsumeFixed64(rest)
		if m < 0 {
			return nil, fmt.Errorf("types: invalid double_val")
		}
		d := mathFloat64frombits(bits)
		v.DoubleVal = &d
	case fieldFloatVal:
		bits, m := protowire.ConsumeFixed32(rest)
		if m < 0 {
			return nil, fmt.Errorf("types: invalid float_val")
		}
		f := mathFloat32frombits(bits)
		v.FloatVal = &f
	case fieldBoolVal:
		n64, m := protowire.ConsumeVarint(rest)
		if m < 0 {
			return nil, fmt.Errorf("types: invalid bool_val")
		}
		bv := n64 != 0
		v.BoolVal = &bv
	case fieldUnixTimestampVal:
		n64, m := protowire.ConsumeVarint(rest)
		if m < 0 {
			return nil, fmt.Errorf("types: invalid unix_timestamp_val")
		}
		i := int64(n64)
		v.UnixTimestampVal = &i
	case fieldNullVal:
		v.IsNull = true
	default:
		return nil, fmt.Errorf("types: unsupported value field %d", num)
	}
	if typ != protowire.VarintType && typ != protowire.BytesType && typ != protowire.Fixed64Type && typ != protowire.Fixed32Type {
		return nil, fmt.Errorf("types: unexpected wire type %d for field %d", typ, num)
	}
	return v, nil
}

func marshalBytesList(list [][]byte) []byte {
	var b []byte
	for _, e := range list {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, e)
	}
	return b
}

func marshalStringList(list []string) []byte {
	var b []byte
	for _, e := range list {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, e)
	}
	return b
}

func marshalInt32List(list []int32) []byte {
	var b []byte
	for _, e := range list {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(e)))
	}
	return b
}

func marshalInt64List(list []int64) []byte {
	var b []byte
	for _, e := range list {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(e))
	}
	return b
}

func marshalDoubleList(list []float64) []byte {
	var b []byte
	for _, e := range list {
		b = protowire.AppendTag(b, 1, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, mathFloat64bits(e))
	}
	return b
}

func marshalFloatList(list []float32) []byte {
	var b []byte
	for _, e := range list {
		b = protowire.AppendTag(b, 1, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, mathFloat32bits(e))
	}
	return b
}

func marshalBoolList(list []bool) []byte {
	var b []byte
	for _, e := range list {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, boolToVarint(e))
	}
	return b
}

func boolToVarint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
