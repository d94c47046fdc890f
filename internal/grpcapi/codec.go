package grpcapi

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// wireMessage is satisfied by every feast/serving message: a flat
// Marshal/Unmarshal pair against protowire, the same shape feast/types and
// feast/core messages use.
type wireMessage interface {
	Marshal() []byte
	Unmarshal([]byte) error
}

// codec overrides grpc's default "proto" codec so the server can carry
// these hand-rolled messages without a protoc-generated descriptor.
type codec struct{}

func (codec) Name() string { return "proto" }

func (codec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(wireMessage)
	if !ok {
		return nil, fmt.Errorf("grpcapi: %T does not implement wireMessage", v)
	}
	return m.Marshal(), nil
}

func (codec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(wireMessage)
	if !ok {
		return fmt.Errorf("grpcapi: %T does not implement wireMessage", v)
	}
	return m.Unmarshal(data)
}

func init() {
	encoding.RegisterCodec(codec{})
}
