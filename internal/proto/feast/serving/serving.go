// Package serving holds hand-rolled wire messages for the RPC surface,
// mirroring the shape of original_source/grpc-server/src/server.rs's
// GetOnlineFeaturesRequest/GetOnlineFeaturesResponse pair. As with
// feast/types and feast/core, messages are encoded/decoded against
// google.golang.org/protobuf's low-level wire package directly rather than
// generated from a .proto file (none shipped with the retrieval pack), so
// field numbers below are this engine's own wire schema, not copied from an
// upstream .proto.
package serving

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/feast-serving/engine/internal/proto/feast/types"
)

// GetFeastServingInfoRequest carries no fields.
type GetFeastServingInfoRequest struct{}

func (r *GetFeastServingInfoRequest) Marshal() []byte { return nil }

func (r *GetFeastServingInfoRequest) Unmarshal(data []byte) error {
	if len(data) > 0 {
		return fmt.Errorf("serving: GetFeastServingInfoRequest takes no fields")
	}
	return nil
}

// GetFeastServingInfoResponse reports the running server's version string.
type GetFeastServingInfoResponse struct {
	Version string
}

func (r *GetFeastServingInfoResponse) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, r.Version)
	return b
}

func (r *GetFeastServingInfoResponse) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("serving: bad serving info tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return fmt.Errorf("serving: bad version field")
			}
			r.Version = string(b)
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(0, typ, data)
			if m < 0 {
				return fmt.Errorf("serving: cannot skip field")
			}
			data = data[m:]
		}
	}
	return nil
}

// RepeatedValue is one entity column's list of raw identifier values, the
// wire analogue of feast.serving.ServingRequest's RepeatedValue.
type RepeatedValue struct {
	Val []*types.Value
}

func (r *RepeatedValue) marshal() []byte {
	var b []byte
	for _, v := range r.Val {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, v.Marshal())
	}
	return b
}

func unmarshalRepeatedValue(data []byte) (*RepeatedValue, error) {
	r := &RepeatedValue{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("serving: bad repeated value tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("serving: bad repeated value entry")
			}
			v, err := types.Unmarshal(b)
			if err != nil {
				return nil, err
			}
			r.Val = append(r.Val, v)
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(0, typ, data)
			if m < 0 {
				return nil, fmt.Errorf("serving: cannot skip field")
			}
			data = data[m:]
		}
	}
	return r, nil
}

// GetOnlineFeaturesRequest is the wire shape of the GetOnlineFeatures RPC.
// One of FeatureService/Features is set, matching the original's
// oneof Kind { string feature_service = N; FeatureList features = N; }.
type GetOnlineFeaturesRequest struct {
	Entities         map[string]*RepeatedValue
	FeatureService   *string
	Features         []string
	FullFeatureNames bool
}

func (r *GetOnlineFeaturesRequest) Marshal() []byte {
	var b []byte
	for name, values := range r.Entities {
		var entry []byte
		entry = protowire.AppendTag(entry, 1, protowire.BytesType)
		entry = protowire.AppendString(entry, name)
		entry = protowire.AppendTag(entry, 2, protowire.BytesType)
		entry = protowire.AppendBytes(entry, values.marshal())
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	if r.FeatureService != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, *r.FeatureService)
	}
	for _, f := range r.Features {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, f)
	}
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, boolToVarint(r.FullFeatureNames))
	return b
}

func (r *GetOnlineFeaturesRequest) Unmarshal(data []byte) error {
	r.Entities = make(map[string]*RepeatedValue)
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("serving: bad request tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return fmt.Errorf("serving: bad entities entry")
			}
			name, values, err := unmarshalEntitiesEntry(b)
			if err != nil {
				return err
			}
			r.Entities[name] = values
			data = data[m:]
		case 2:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return fmt.Errorf("serving: bad feature_service")
			}
			s := string(b)
			r.FeatureService = &s
			data = data[m:]
		case 3:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return fmt.Errorf("serving: bad features entry")
			}
			r.Features = append(r.Features, string(b))
			data = data[m:]
		case 4:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return fmt.Errorf("serving: bad full_feature_names")
			}
			r.FullFeatureNames = v != 0
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(0, typ, data)
			if m < 0 {
				return fmt.Errorf("serving: cannot skip field")
			}
			data = data[m:]
		}
	}
	return nil
}

func unmarshalEntitiesEntry(data []byte) (string, *RepeatedValue, error) {
	var name string
	var values *RepeatedValue
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return "", nil, fmt.Errorf("serving: bad entities entry tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return "", nil, fmt.Errorf("serving: bad entities entry key")
			}
			name = string(b)
			data = data[m:]
		case 2:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return "", nil, fmt.Errorf("serving: bad entities entry value")
			}
			v, err := unmarshalRepeatedValue(b)
			if err != nil {
				return "", nil, err
			}
			values = v
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(0, typ, data)
			if m < 0 {
				return "", nil, fmt.Errorf("serving: cannot skip field")
			}
			data = data[m:]
		}
	}
	if values == nil {
		values = &RepeatedValue{}
	}
	return name, values, nil
}

// Timestamp is a minimal google.protobuf.Timestamp, encoded field-for-field
// compatible with the real message (field 1 = seconds, field 2 = nanos).
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

func (t *Timestamp) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Seconds))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(t.Nanos)))
	return b
}

func unmarshalTimestamp(data []byte) (*Timestamp, error) {
	t := &Timestamp{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("serving: bad timestamp tag")
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return nil, fmt.Errorf("serving: bad timestamp seconds")
			}
			t.Seconds = int64(v)
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return nil, fmt.Errorf("serving: bad timestamp nanos")
			}
			t.Nanos = int32(uint32(v))
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(0, typ, data)
			if m < 0 {
				return nil, fmt.Errorf("serving: cannot skip field")
			}
			data = data[m:]
		}
	}
	return t, nil
}

// FeatureVector is one output column: parallel values/statuses/timestamps.
type FeatureVector struct {
	Values          []*types.Value
	Statuses        []int32
	EventTimestamps []*Timestamp
}

func (v *FeatureVector) marshal() []byte {
	var b []byte
	for _, val := range v.Values {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, val.Marshal())
	}
	for _, s := range v.Statuses {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(s)))
	}
	for _, ts := range v.EventTimestamps {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, ts.marshal())
	}
	return b
}

func unmarshalFeatureVector(data []byte) (*FeatureVector, error) {
	v := &FeatureVector{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("serving: bad feature vector tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("serving: bad feature vector value")
			}
			val, err := types.Unmarshal(b)
			if err != nil {
				return nil, err
			}
			v.Values = append(v.Values, val)
			data = data[m:]
		case 2:
			n64, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return nil, fmt.Errorf("serving: bad feature vector status")
			}
			v.Statuses = append(v.Statuses, int32(uint32(n64)))
			data = data[m:]
		case 3:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("serving: bad feature vector timestamp")
			}
			ts, err := unmarshalTimestamp(b)
			if err != nil {
				return nil, err
			}
			v.EventTimestamps = append(v.EventTimestamps, ts)
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(0, typ, data)
			if m < 0 {
				return nil, fmt.Errorf("serving: cannot skip field")
			}
			data = data[m:]
		}
	}
	return v, nil
}

// GetOnlineFeaturesResponse is the wire shape returned by the RPC.
type GetOnlineFeaturesResponse struct {
	FeatureNames []string
	Results      []*FeatureVector
	Status       bool
}

func (r *GetOnlineFeaturesResponse) Marshal() []byte {
	var b []byte
	for _, n := range r.FeatureNames {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, n)
	}
	for _, v := range r.Results {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, v.marshal())
	}
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, boolToVarint(r.Status))
	return b
}

func (r *GetOnlineFeaturesResponse) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("serving: bad response tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return fmt.Errorf("serving: bad feature name")
			}
			r.FeatureNames = append(r.FeatureNames, string(b))
			data = data[m:]
		case 2:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return fmt.Errorf("serving: bad result vector")
			}
			v, err := unmarshalFeatureVector(b)
			if err != nil {
				return err
			}
			r.Results = append(r.Results, v)
			data = data[m:]
		case 3:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return fmt.Errorf("serving: bad status")
			}
			r.Status = v != 0
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(0, typ, data)
			if m < 0 {
				return fmt.Errorf("serving: cannot skip field")
			}
			data = data[m:]
		}
	}
	return nil
}

func boolToVarint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
