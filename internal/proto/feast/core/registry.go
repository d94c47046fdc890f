// Package core holds hand-rolled wire messages for the subset of Feast's
// registry.proto this serving engine needs: entities, feature views, and
// feature services, each carrying just enough fields to drive resolution
// and online-store lookups. Messages are encoded/decoded against
// google.golang.org/protobuf's low-level wire package directly, the same
// approach used for feast/types.Value, rather than via a generated file.
package core

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// FieldProto is a (name, value_type) pair, used for both feature and entity
// column lists.
type FieldProto struct {
	Name      string
	ValueType uint32
}

func (f *FieldProto) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, f.Name)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.ValueType))
	return b
}

func unmarshalField(data []byte) (*FieldProto, error) {
	f := &FieldProto{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("core: bad field tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad field name")
			}
			f.Name = string(b)
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad field value_type")
			}
			f.ValueType = uint32(v)
			data = data[m:]
		default:
			m := skipField(data, typ)
			if m < 0 {
				return nil, fmt.Errorf("core: cannot skip field")
			}
			data = data[m:]
		}
	}
	return f, nil
}

// EntityProto mirrors feast.core.Entity's serving-relevant fields.
type EntityProto struct {
	Name      string
	JoinKey   string
	ValueType uint32
}

func (e *EntityProto) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, e.Name)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, e.JoinKey)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.ValueType))
	return b
}

func UnmarshalEntity(data []byte) (*EntityProto, error) {
	e := &EntityProto{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("core: bad entity tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad entity name")
			}
			e.Name = string(b)
			data = data[m:]
		case 2:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad entity join_key")
			}
			e.JoinKey = string(b)
			data = data[m:]
		case 3:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad entity value_type")
			}
			e.ValueType = uint32(v)
			data = data[m:]
		default:
			m := skipField(data, typ)
			if m < 0 {
				return nil, fmt.Errorf("core: cannot skip field")
			}
			data = data[m:]
		}
	}
	return e, nil
}

// FeatureViewProto mirrors feast.core.FeatureView's serving-relevant fields.
type FeatureViewProto struct {
	Name          string
	Features      []*FieldProto
	EntityNames   []string
	EntityColumns []*FieldProto
	TTLSeconds    int64
}

func (v *FeatureViewProto) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, v.Name)
	for _, f := range v.Features {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, f.marshal())
	}
	for _, n := range v.EntityNames {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, n)
	}
	for _, f := range v.EntityColumns {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, f.marshal())
	}
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(v.TTLSeconds))
	return b
}

func UnmarshalFeatureView(data []byte) (*FeatureViewProto, error) {
	v := &FeatureViewProto{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("core: bad feature view tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad feature view name")
			}
			v.Name = string(b)
			data = data[m:]
		case 2:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad feature")
			}
			f, err := unmarshalField(b)
			if err != nil {
				return nil, err
			}
			v.Features = append(v.Features, f)
			data = data[m:]
		case 3:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad entity name")
			}
			v.EntityNames = append(v.EntityNames, string(b))
			data = data[m:]
		case 4:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad entity column")
			}
			f, err := unmarshalField(b)
			if err != nil {
				return nil, err
			}
			v.EntityColumns = append(v.EntityColumns, f)
			data = data[m:]
		case 5:
			n64, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad ttl")
			}
			v.TTLSeconds = int64(n64)
			data = data[m:]
		default:
			m := skipField(data, typ)
			if m < 0 {
				return nil, fmt.Errorf("core: cannot skip field")
			}
			data = data[m:]
		}
	}
	return v, nil
}

// FeatureViewProjectionProto mirrors one projection entry in a feature
// service.
type FeatureViewProjectionProto struct {
	FeatureViewName string
	NameAlias       string
	Features        []*FieldProto
	JoinKeyMap      map[string]string
}

func (p *FeatureViewProjectionProto) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, p.FeatureViewName)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, p.NameAlias)
	for _, f := range p.Features {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, f.marshal())
	}
	for k, v := range p.JoinKeyMap {
		var entry []byte
		entry = protowire.AppendTag(entry, 1, protowire.BytesType)
		entry = protowire.AppendString(entry, k)
		entry = protowire.AppendTag(entry, 2, protowire.BytesType)
		entry = protowire.AppendString(entry, v)
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func unmarshalProjection(data []byte) (*FeatureViewProjectionProto, error) {
	p := &FeatureViewProjectionProto{JoinKeyMap: map[string]string{}}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("core: bad projection tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad projection view name")
			}
			p.FeatureViewName = string(b)
			data = data[m:]
		case 2:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad projection alias")
			}
			p.NameAlias = string(b)
			data = data[m:]
		case 3:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad projection feature")
			}
			f, err := unmarshalField(b)
			if err != nil {
				return nil, err
			}
			p.Features = append(p.Features, f)
			data = data[m:]
		case 4:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad projection join key entry")
			}
			k, v, err := unmarshalMapEntry(b)
			if err != nil {
				return nil, err
			}
			p.JoinKeyMap[k] = v
			data = data[m:]
		default:
			m := skipField(data, typ)
			if m < 0 {
				return nil, fmt.Errorf("core: cannot skip field")
			}
			data = data[m:]
		}
	}
	return p, nil
}

func unmarshalMapEntry(data []byte) (string, string, error) {
	var k, v string
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return "", "", fmt.Errorf("core: bad map entry tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return "", "", fmt.Errorf("core: bad map key")
			}
			k = string(b)
			data = data[m:]
		case 2:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return "", "", fmt.Errorf("core: bad map value")
			}
			v = string(b)
			data = data[m:]
		default:
			m := skipField(data, typ)
			if m < 0 {
				return "", "", fmt.Errorf("core: cannot skip field")
			}
			data = data[m:]
		}
	}
	return k, v, nil
}

// FeatureServiceProto mirrors feast.core.FeatureService's serving-relevant
// fields.
type FeatureServiceProto struct {
	Name        string
	Project     string
	Projections []*FeatureViewProjectionProto
}

func (s *FeatureServiceProto) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, s.Name)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, s.Project)
	for _, p := range s.Projections {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, p.marshal())
	}
	return b
}

func UnmarshalFeatureService(data []byte) (*FeatureServiceProto, error) {
	s := &FeatureServiceProto{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("core: bad feature service tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad feature service name")
			}
			s.Name = string(b)
			data = data[m:]
		case 2:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad feature service project")
			}
			s.Project = string(b)
			data = data[m:]
		case 3:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad feature service projection")
			}
			p, err := unmarshalProjection(b)
			if err != nil {
				return nil, err
			}
			s.Projections = append(s.Projections, p)
			data = data[m:]
		default:
			m := skipField(data, typ)
			if m < 0 {
				return nil, fmt.Errorf("core: cannot skip field")
			}
			data = data[m:]
		}
	}
	return s, nil
}

// Registry is the top-level message a file/blob registry source decodes:
// the full catalog inline.
type Registry struct {
	Entities             []*EntityProto
	FeatureViews         []*FeatureViewProto
	FeatureServices      []*FeatureServiceProto
	OnDemandFeatureViews []*FeatureViewProto
}

func (r *Registry) Marshal() []byte {
	var b []byte
	for _, e := range r.Entities {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, e.Marshal())
	}
	for _, v := range r.FeatureViews {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, v.Marshal())
	}
	for _, s := range r.FeatureServices {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, s.Marshal())
	}
	for _, v := range r.OnDemandFeatureViews {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, v.Marshal())
	}
	return b
}

func DecodeRegistry(data []byte) (*Registry, error) {
	r := &Registry{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("core: bad registry tag")
		}
		data = data[n:]
		switch num {
		case 1:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad registry entity")
			}
			e, err := UnmarshalEntity(b)
			if err != nil {
				return nil, err
			}
			r.Entities = append(r.Entities, e)
			data = data[m:]
		case 2:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad registry feature view")
			}
			v, err := UnmarshalFeatureView(b)
			if err != nil {
				return nil, err
			}
			r.FeatureViews = append(r.FeatureViews, v)
			data = data[m:]
		case 3:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad registry feature service")
			}
			s, err := UnmarshalFeatureService(b)
			if err != nil {
				return nil, err
			}
			r.FeatureServices = append(r.FeatureServices, s)
			data = data[m:]
		case 4:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("core: bad registry on-demand view")
			}
			v, err := UnmarshalFeatureView(b)
			if err != nil {
				return nil, err
			}
			r.OnDemandFeatureViews = append(r.OnDemandFeatureViews, v)
			data = data[m:]
		default:
			m := skipField(data, typ)
			if m < 0 {
				return nil, fmt.Errorf("core: cannot skip field")
			}
			data = data[m:]
		}
	}
	return r, nil
}

func skipField(data []byte, typ protowire.Type) int {
	n := protowire.ConsumeFieldValue(0, typ, data)
	return n
}
