// Package redis implements onlinestore.Store against a Redis-compatible
// backend, grounded on
// original_source/feast-server-core/src/onlinestore/redis.rs.
package redis

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/binary"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/feast-serving/engine/internal/config"
	"github.com/feast-serving/engine/internal/keycodec"
	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/internal/onlinestore"
	"github.com/feast-serving/engine/internal/proto/feast/types"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spaolacci/murmur3"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// cmdable is the subset of go-redis client methods a single-node, cluster,
// or sentinel client all satisfy.
type cmdable interface {
	Pipeline() goredis.Pipeliner
	Ping(ctx context.Context) *goredis.StatusCmd
}

// Store implements onlinestore.Store against Redis, fanning out a single
// pipelined HMGET per entity key.
type Store struct {
	client  cmdable
	project string
}

// Open builds a Redis-backed online store from configuration, dialing the
// topology named by cfg.RedisType.
func Open(cfg config.OnlineStoreConfig, project string) (*Store, error) {
	tlsConfig, err := buildTLSConfig(cfg.TLS)
	if err != nil {
		return nil, fmt.Errorf("redis online store: tls: %w", err)
	}

	var client cmdable
	switch cfg.RedisType {
	case config.RedisTypeSingleNode, "":
		client = goredis.NewClient(&goredis.Options{
			Addr:      cfg.ConnectionString,
			TLSConfig: tlsConfig,
		})
	case config.RedisTypeCluster:
		client = goredis.NewClusterClient(&goredis.ClusterOptions{
			Addrs:     []string{cfg.ConnectionString},
			TLSConfig: tlsConfig,
		})
	case config.RedisTypeSentinel:
		if cfg.SentinelMaster == "" {
			return nil, fmt.Errorf("redis online store: sentinel_master is required for sentinel topology")
		}
		client = goredis.NewFailoverClient(&goredis.FailoverOptions{
			MasterName:    cfg.SentinelMaster,
			SentinelAddrs: []string{cfg.ConnectionString},
			TLSConfig:     tlsConfig,
		})
	default:
		return nil, fmt.Errorf("redis online store: unsupported redis_type %q", cfg.RedisType)
	}

	return &Store{client: client, project: project}, nil
}

// NewWithClient wraps an already-constructed go-redis client, for tests
// (e.g. against miniredis).
func NewWithClient(client cmdable, project string) *Store {
	return &Store{client: client, project: project}
}

func buildTLSConfig(t config.TLSConfig) (*tls.Config, error) {
	if !t.Enabled {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading client cert/key: %w", err)
	}
	tlsCfg := &tls.Config{Certificates: []tls.Certificate{cert}}
	if t.CAFile != "" {
		caBytes, err := os.ReadFile(t.CAFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA file: %w", err)
		}
		block, _ := pem.Decode(caBytes)
		if block == nil {
			return nil, fmt.Errorf("decoding CA file %s: no PEM block found", t.CAFile)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caBytes) {
			return nil, fmt.Errorf("appending CA certs from %s", t.CAFile)
		}
		tlsCfg.RootCAs = pool
	}
	return tlsCfg, nil
}

// Ping implements onlinestore.Store.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// featureFieldKey computes the 4-byte little-endian MurmurHash3 (seed 0) of
// "{view}:{feature}", per spec §4.5.
func featureFieldKey(view, feature string) []byte {
	h := murmur3.Sum32WithSeed([]byte(view+":"+feature), 0)
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, h)
	return buf
}

func timestampFieldKey(view string) []byte {
	return []byte("_ts:" + view)
}

// hashKey returns encode(key) || project, the hashmap key for one entity.
func hashKey(key model.EntityKey, project string) ([]byte, error) {
	enc, err := keycodec.Encode(key, keycodec.V3)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(enc)
	buf.WriteString(project)
	return buf.Bytes(), nil
}

type fieldRequest struct {
	view      string
	key       model.EntityKey
	isTS      bool
	feature   string // empty when isTS
}

// GetFeatureValues implements onlinestore.Store: one pipelined HMGET per
// distinct entity key across all requested views, matching redis.rs's
// single-pipeline-per-request shape.
func (s *Store) GetFeatureValues(ctx context.Context, requests map[string]onlinestore.EntityFeatureRequest) ([]model.OnlineStoreRow, error) {
	type keyed struct {
		key    model.EntityKey
		fields [][]byte
		reqs   []fieldRequest
	}

	byKeyHash := map[string]*keyed{}
	order := make([]string, 0)

	for view, req := range requests {
		for _, key := range req.EntityKeys {
			hk, err := hashKey(key, s.project)
			if err != nil {
				return nil, fmt.Errorf("redis online store: %w", err)
			}
			hkStr := string(hk)
			k, ok := byKeyHash[hkStr]
			if !ok {
				k = &keyed{key: key}
				byKeyHash[hkStr] = k
				order = append(order, hkStr)
			}
			k.fields = append(k.fields, timestampFieldKey(view))
			k.reqs = append(k.reqs, fieldRequest{view: view, key: key, isTS: true})
			for _, feature := range req.Features {
				k.fields = append(k.fields, featureFieldKey(view, feature))
				k.reqs = append(k.reqs, fieldRequest{view: view, key: key, feature: feature})
			}
		}
	}

	if len(order) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*goredis.SliceCmd, 0, len(order))
	for _, hkStr := range order {
		k := byKeyHash[hkStr]
		cmds = append(cmds, pipe.HMGet(ctx, hkStr, bytesToStrings(k.fields)...))
	}
	_, err := pipe.Exec(ctx)
	if err != nil && err != goredis.Nil {
		return nil, fmt.Errorf("redis online store: pipeline exec: %w", err)
	}

	var rows []model.OnlineStoreRow
	for i, hkStr := range order {
		k := byKeyHash[hkStr]
		values, err := cmds[i].Result()
		if err != nil && err != goredis.Nil {
			return nil, fmt.Errorf("redis online store: hmget: %w", err)
		}

		timestamps := map[string]time.Time{}
		for idx, req := range k.reqs {
			if !req.isTS {
				continue
			}
			raw, _ := asBytes(values[idx])
			if raw == nil {
				continue
			}
			var ts timestamppb.Timestamp
			if err := proto.Unmarshal(raw, &ts); err != nil {
				return nil, fmt.Errorf("redis online store: decoding timestamp for view %s: %w", req.view, err)
			}
			timestamps[req.view] = ts.AsTime()
		}

		for idx, req := range k.reqs {
			if req.isTS {
				continue
			}
			raw, present := asBytes(values[idx])
			var val *model.Value
			if !present {
				val = model.NullValue()
			} else {
				decoded, err := types.Unmarshal(raw)
				if err != nil {
					return nil, fmt.Errorf("redis online store: decoding value for %s:%s: %w", req.view, req.feature, err)
				}
				val = decoded
			}
			rows = append(rows, model.OnlineStoreRow{
				ViewName:    req.view,
				EntityKey:   k.key,
				FeatureName: req.feature,
				Value:       val,
				EventTS:     timestamps[req.view],
			})
		}
	}

	return rows, nil
}

func bytesToStrings(fields [][]byte) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}

func asBytes(v interface{}) ([]byte, bool) {
	if v == nil {
		return nil, false
	}
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	return []byte(s), true
}
