package blob

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/feast-serving/engine/internal/proto/feast/core"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	body []byte
	err  error
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://feast-rust-feature-registry/registry.db")
	require.NoError(t, err)
	require.Equal(t, "feast-rust-feature-registry", bucket)
	require.Equal(t, "registry.db", key)

	_, _, err = parseS3URL("http://example.com/registry.db")
	require.Error(t, err)
}

func TestSource_Snapshot(t *testing.T) {
	registry := &core.Registry{
		Entities: []*core.EntityProto{{Name: "driver", JoinKey: "driver_id"}},
	}
	client := &fakeS3{body: registry.Marshal()}
	source := NewWithClient(client, "feast-rust-feature-registry", "registry.db")

	snap, err := source.Snapshot(context.Background())
	require.NoError(t, err)
	require.Contains(t, snap.Entities, "driver")
}
