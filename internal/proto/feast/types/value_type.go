package types

// ValueType enumerates the scalar/list type tags shared by the Value oneof
// field numbers and the entity-key codec's on-wire type tags.
type ValueType uint32

const (
	ValueTypeUnknown              ValueType = 0
	ValueTypeBytes                ValueType = 1
	ValueTypeString                ValueType = 2
	ValueTypeInt32                 ValueType = 3
	ValueTypeInt64                 ValueType = 4
	ValueTypeDouble                ValueType = 5
	ValueTypeFloat                 ValueType = 6
	ValueTypeBool                  ValueType = 7
	ValueTypeUnixTimestamp         ValueType = 8
	ValueTypeBytesList             ValueType = 11
	ValueTypeStringList            ValueType = 12
	ValueTypeInt32List             ValueType = 13
	ValueTypeInt64List             ValueType = 14
	ValueTypeDoubleList            ValueType = 15
	ValueTypeFloatList             ValueType = 16
	ValueTypeBoolList              ValueType = 17
	ValueTypeUnixTimestampList     ValueType = 18
	ValueTypeNull                  ValueType = 19
)
