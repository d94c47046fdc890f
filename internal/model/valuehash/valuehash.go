// Package valuehash implements the stable hashing rule for model.Value from
// spec §4.2: each variant hashes its tag byte first, then its payload; float
// variants hash the IEEE-754 bit pattern; list variants hash element-wise;
// the null marker hashes distinctly from any scalar and from an absent (nil)
// value.
package valuehash

import (
	"hash/fnv"
	"math"

	"github.com/feast-serving/engine/internal/model"
)

// Tag bytes, one per Value variant. Order is arbitrary but must stay fixed
// since it's part of the hash contract.
const (
	tagNull byte = iota
	tagBytes
	tagString
	tagInt32
	tagInt64
	tagDouble
	tagFloat
	tagBool
	tagUnixTimestamp
	tagBytesList
	tagStringList
	tagInt32List
	tagInt64List
	tagDoubleList
	tagFloatList
	tagBoolList
	tagUnixTimestampList
	tagAbsent
)

// Hash computes the stable hash of v. A nil pointer (absent value) hashes via
// tagAbsent, distinct from the explicit null marker's tagNull.
func Hash(v *model.Value) uint64 {
	h := fnv.New64a()
	writeValue(h, v)
	return h.Sum64()
}

func writeValue(h writer, v *model.Value) {
	switch {
	case v == nil:
		h.Write([]byte{tagAbsent})
	case v.IsNull:
		h.Write([]byte{tagNull})
	case v.BytesVal != nil:
		h.Write([]byte{tagBytes})
		h.Write(v.BytesVal)
	case v.StringVal != nil:
		h.Write([]byte{tagString})
		h.Write([]byte(*v.StringVal))
	case v.Int32Val != nil:
		h.Write([]byte{tagInt32})
		writeInt64(h, int64(*v.Int32Val))
	case v.Int64Val != nil:
		h.Write([]byte{tagInt64})
		writeInt64(h, *v.Int64Val)
	case v.DoubleVal != nil:
		h.Write([]byte{tagDouble})
		writeUint64(h, math.Float64bits(*v.DoubleVal))
	case v.FloatVal != nil:
		h.Write([]byte{tagFloat})
		writeUint64(h, uint64(math.Float32bits(*v.FloatVal)))
	case v.BoolVal != nil:
		h.Write([]byte{tagBool})
		writeBool(h, *v.BoolVal)
	case v.UnixTimestampVal != nil:
		h.Write([]byte{tagUnixTimestamp})
		writeInt64(h, *v.UnixTimestampVal)
	case v.BytesListVal != nil:
		h.Write([]byte{tagBytesList})
		for _, b := range v.BytesListVal {
			h.Write(b)
		}
	case v.StringListVal != nil:
		h.Write([]byte{tagStringList})
		for _, s := range v.StringListVal {
			h.Write([]byte(s))
		}
	case v.Int32ListVal != nil:
		h.Write([]byte{tagInt32List})
		for _, i := range v.Int32ListVal {
			writeInt64(h, int64(i))
		}
	case v.Int64ListVal != nil:
		h.Write([]byte{tagInt64List})
		for _, i := range v.Int64ListVal {
			writeInt64(h, i)
		}
	case v.DoubleListVal != nil:
		h.Write([]byte{tagDoubleList})
		for _, f := range v.DoubleListVal {
			writeUint64(h, math.Float64bits(f))
		}
	case v.FloatListVal != nil:
		h.Write([]byte{tagFloatList})
		for _, f := range v.FloatListVal {
			writeUint64(h, uint64(math.Float32bits(f)))
		}
	case v.BoolListVal != nil:
		h.Write([]byte{tagBoolList})
		for _, b := range v.BoolListVal {
			writeBool(h, b)
		}
	case v.UnixTimestampListVal != nil:
		h.Write([]byte{tagUnixTimestampList})
		for _, ts := range v.UnixTimestampListVal {
			writeInt64(h, ts)
		}
	default:
		h.Write([]byte{tagNull})
	}
}

// writer is the subset of hash.Hash64 this package needs, kept narrow so
// tests can hash into a plain byte buffer too.
type writer interface {
	Write(p []byte) (int, error)
}

func writeInt64(h writer, i int64) {
	writeUint64(h, uint64(i))
}

func writeUint64(h writer, u uint64) {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(u >> (8 * i))
	}
	h.Write(buf[:])
}

func writeBool(h writer, b bool) {
	if b {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
}

// Equal reports whether a and b hash identically, a convenience for callers
// that want value-equality-by-hash (e.g. planner key-vector sharing) without
// computing the hash themselves.
func Equal(a, b *model.Value) bool {
	return Hash(a) == Hash(b)
}
