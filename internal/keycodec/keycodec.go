// Package keycodec implements the deterministic binary entity-key codec
// (serialization version V3 only). The byte layout is little-endian
// throughout: a uint32 column count, N sorted (STRING_TYPE_TAG, len, name)
// triples, then N (value_type_tag, len, payload) triples in the same sorted
// order.
package keycodec

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/internal/proto/feast/types"
)

// Version identifies an entity-key serialization version. Only V3 is
// implemented; V1 and V2 are recognized only so they can be rejected.
type Version int

const (
	V1 Version = 1
	V2 Version = 2
	V3 Version = 3
)

var (
	// ErrUnsupportedKeyVersion is returned by Encode/Decode for any version
	// other than V3.
	ErrUnsupportedKeyVersion = fmt.Errorf("keycodec: unsupported version of key serializer")
	// ErrInvalidKeyFormat is returned by Decode on malformed bytes: length
	// mismatches, a non-string tag where a column name is expected, or a
	// truncated buffer.
	ErrInvalidKeyFormat = fmt.Errorf("keycodec: invalid key format")
	// ErrUnsupportedType is returned when a value's type has no defined
	// entity-key payload encoding.
	ErrUnsupportedType = fmt.Errorf("keycodec: unsupported type")
)

// Encode serializes a logical entity key into its canonical physical bytes.
// The key's (name, value) pairs are sorted by column name (ascending, UTF-8
// code-point order) before encoding, so two keys with the same multiset of
// pairs always produce byte-identical output regardless of input order.
func Encode(key model.EntityKey, version Version) ([]byte, error) {
	if version != V3 {
		return nil, ErrUnsupportedKeyVersion
	}
	if len(key.JoinKeys) != len(key.EntityValues) || len(key.JoinKeys) == 0 {
		return nil, fmt.Errorf("%w: join key / value length mismatch", ErrInvalidKeyFormat)
	}

	type pair struct {
		name  string
		value *model.Value
	}
	pairs := make([]pair, len(key.JoinKeys))
	for i := range key.JoinKeys {
		pairs[i] = pair{name: key.JoinKeys[i], value: key.EntityValues[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })

	payloads := make([][]byte, len(pairs))
	tags := make([]uint32, len(pairs))
	for i, p := range pairs {
		tag, payload, err := serializeValue(p.value)
		if err != nil {
			return nil, err
		}
		tags[i] = tag
		payloads[i] = payload
	}

	buf := make([]byte, 0, 4+len(pairs)*64)
	buf = appendUint32(buf, uint32(len(pairs)))
	for _, p := range pairs {
		buf = appendUint32(buf, uint32(types.ValueTypeString))
		buf = appendUint32(buf, uint32(len(p.name)))
		buf = append(buf, p.name...)
	}
	for i := range pairs {
		buf = appendUint32(buf, tags[i])
		buf = appendUint32(buf, uint32(len(payloads[i])))
		buf = append(buf, payloads[i]...)
	}
	return buf, nil
}

// Decode parses the canonical physical bytes into a logical entity key.
// join_keys/entity_values are returned in the codec's sorted order;
// callers must not rely on insertion order surviving a round trip.
func Decode(data []byte, version Version) (model.EntityKey, error) {
	if version != V3 {
		return model.EntityKey{}, ErrUnsupportedKeyVersion
	}
	r := &reader{buf: data}
	n, err := r.readUint32()
	if err != nil {
		return model.EntityKey{}, err
	}

	names := make([]string, n)
	for i := uint32(0); i < n; i++ {
		tag, err := r.readUint32()
		if err != nil {
			return model.EntityKey{}, err
		}
		if types.ValueType(tag) != types.ValueTypeString {
			return model.EntityKey{}, fmt.Errorf("%w: column name tag is not STRING", ErrInvalidKeyFormat)
		}
		name, err := r.readLenPrefixed()
		if err != nil {
			return model.EntityKey{}, err
		}
		names[i] = string(name)
	}

	values := make([]*model.Value, n)
	for i := uint32(0); i < n; i++ {
		tag, err := r.readUint32()
		if err != nil {
			return model.EntityKey{}, err
		}
		payload, err := r.readLenPrefixed()
		if err != nil {
			return model.EntityKey{}, err
		}
		v, err := deserializeValue(types.ValueType(tag), payload)
		if err != nil {
			return model.EntityKey{}, err
		}
		values[i] = v
	}

	if !r.atEnd() {
		return model.EntityKey{}, fmt.Errorf("%w: trailing bytes", ErrInvalidKeyFormat)
	}

	return model.EntityKey{JoinKeys: names, EntityValues: values}, nil
}

func serializeValue(v *model.Value) (uint32, []byte, error) {
	switch {
	case v == nil:
		return 0, nil, fmt.Errorf("%w: nil value", ErrUnsupportedType)
	case v.Int32Val != nil:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(*v.Int32Val))
		return uint32(types.ValueTypeInt32), b, nil
	case v.Int64Val != nil:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(*v.Int64Val))
		return uint32(types.ValueTypeInt64), b, nil
	case v.StringVal != nil:
		return uint32(types.ValueTypeString), []byte(*v.StringVal), nil
	case v.BytesVal != nil:
		return uint32(types.ValueTypeBytes), v.BytesVal, nil
	default:
		return 0, nil, ErrUnsupportedType
	}
}

func deserializeValue(tag types.ValueType, payload []byte) (*model.Value, error) {
	switch tag {
	case types.ValueTypeInt32:
		if len(payload) != 4 {
			return nil, fmt.Errorf("%w: int32 payload length %d", ErrInvalidKeyFormat, len(payload))
		}
		i := int32(binary.LittleEndian.Uint32(payload))
		return &model.Value{Int32Val: &i}, nil
	case types.ValueTypeInt64:
		if len(payload) != 8 {
			return nil, fmt.Errorf("%w: int64 payload length %d", ErrInvalidKeyFormat, len(payload))
		}
		i := int64(binary.LittleEndian.Uint64(payload))
		return &model.Value{Int64Val: &i}, nil
	case types.ValueTypeString:
		s := string(payload)
		return &model.Value{StringVal: &s}, nil
	case types.ValueTypeBytes:
		b := append([]byte(nil), payload...)
		return &model.Value{BytesVal: b}, nil
	default:
		return nil, fmt.Errorf("%w: value tag %d", ErrUnsupportedType, tag)
	}
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) atEnd() bool { return r.pos >= len(r.buf) }

func (r *reader) readUint32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, fmt.Errorf("%w: truncated uint32", ErrInvalidKeyFormat)
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *reader) readLenPrefixed() ([]byte, error) {
	l, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	if r.pos+int(l) > len(r.buf) {
		return nil, fmt.Errorf("%w: truncated payload", ErrInvalidKeyFormat)
	}
	b := r.buf[r.pos : r.pos+int(l)]
	r.pos += int(l)
	return b, nil
}
