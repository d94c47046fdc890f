package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full feature-store repo configuration, mirroring a
// Feast feature_store.yaml.
type Config struct {
	Project                       string          `yaml:"project" json:"project"`
	ProjectDescription            string          `yaml:"project_description" json:"projectDescription"`
	Provider                      Provider        `yaml:"provider" json:"provider"`
	Registry                      RegistryConfig  `yaml:"registry" json:"registry"`
	OnlineStore                   OnlineStoreConfig `yaml:"online_store" json:"onlineStore"`
	EntityKeySerializationVersion int             `yaml:"entity_key_serialization_version" json:"entityKeySerializationVersion"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

// Provider hints which registry/online-store backends a deployment expects.
// Unrecognized values round-trip as-is, mirroring the original's
// Provider::Unknown(String) variant rather than rejecting at parse time.
type Provider string

const (
	ProviderLocal   Provider = "local"
	ProviderAWS     Provider = "aws"
	ProviderGCP     Provider = "gcp"
	ProviderUnknown Provider = ""
)

// Known reports whether p is one of the provider values the loader
// recognizes by name.
func (p Provider) Known() bool {
	switch strings.ToLower(string(p)) {
	case "local", "aws", "gcp":
		return true
	default:
		return false
	}
}

// RegistryType selects the registry backend.
type RegistryType string

const (
	RegistryTypeFile RegistryType = "file"
	RegistryTypeSQL  RegistryType = "sql"
	RegistryTypeBlob RegistryType = "blob"
)

// RegistryConfig describes where the registry snapshot comes from. It
// accepts either a bare YAML scalar (a path string) or a mapping, matching
// original_source's untagged RegistryConfigDef enum.
type RegistryConfig struct {
	Path            string        `yaml:"path" json:"path"`
	CacheTTLSeconds uint64        `yaml:"cache_ttl_seconds" json:"cacheTtlSeconds"`
	RegistryType    RegistryType  `yaml:"registry_type" json:"registryType"`
	Account         string        `yaml:"account" json:"account,omitempty"`
	User            string        `yaml:"user" json:"user,omitempty"`
	Password        string        `yaml:"password" json:"password,omitempty"`
	Role            string        `yaml:"role" json:"role,omitempty"`
}

// UnmarshalYAML implements the path-string-or-mapping shape of
// RegistryConfigDef via a low-level yaml.Node inspection, the Go idiom for
// Rust's #[serde(untagged)] enum.
func (r *RegistryConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var path string
		if err := node.Decode(&path); err != nil {
			return fmt.Errorf("registry: decoding scalar path: %w", err)
		}
		*r = RegistryConfig{Path: path, RegistryType: RegistryTypeFile}
		return nil
	}

	type detailed struct {
		Path            string `yaml:"path"`
		CacheTTLSeconds uint64 `yaml:"cache_ttl_seconds"`
		RegistryType    string `yaml:"registry_type"`
		Account         string `yaml:"account"`
		User            string `yaml:"user"`
		Password        string `yaml:"password"`
		Role            string `yaml:"role"`
	}
	var d detailed
	if err := node.Decode(&d); err != nil {
		return fmt.Errorf("registry: decoding mapping: %w", err)
	}
	rt := RegistryType(d.RegistryType)
	if rt == "" {
		rt = RegistryTypeFile
	}
	*r = RegistryConfig{
		Path:            d.Path,
		CacheTTLSeconds: d.CacheTTLSeconds,
		RegistryType:    rt,
		Account:         d.Account,
		User:            d.User,
		Password:        d.Password,
		Role:            d.Role,
	}
	return nil
}

// RedisType selects the Redis deployment topology.
type RedisType string

const (
	RedisTypeSingleNode RedisType = "single_node"
	RedisTypeCluster    RedisType = "redis_cluster"
	RedisTypeSentinel   RedisType = "sentinel"
)

// OnlineStoreKind discriminates OnlineStoreConfig's tagged-union shape.
type OnlineStoreKind string

const (
	OnlineStoreSqlite OnlineStoreKind = "sqlite"
	OnlineStoreRedis  OnlineStoreKind = "redis"
)

// OnlineStoreConfig is a tagged union (by Type) over the online-store
// backends, mirroring original_source's #[serde(tag = "type")] enum.
type OnlineStoreConfig struct {
	Type OnlineStoreKind `yaml:"type" json:"type"`

	// sqlite
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// redis
	RedisType         RedisType `yaml:"redis_type,omitempty" json:"redisType,omitempty"`
	ConnectionString  string    `yaml:"connection_string,omitempty" json:"connectionString,omitempty"`
	SentinelMaster    string    `yaml:"sentinel_master,omitempty" json:"sentinelMaster,omitempty"`
	TLS               TLSConfig `yaml:"tls" json:"tls"`
}

// TLSConfig holds TLS material shared by the Redis online store and the
// gRPC/HTTP adapters.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	CertFile string `yaml:"certFile" json:"certFile"`
	KeyFile  string `yaml:"keyFile" json:"keyFile"`
	CAFile   string `yaml:"caFile" json:"caFile"`
}

// ServerConfig holds HTTP/gRPC adapter configuration.
type ServerConfig struct {
	Host    string    `yaml:"host" json:"host"`
	Port    int       `yaml:"port" json:"port"`
	Type    string    `yaml:"type" json:"type"` // http | grpc
	Metrics bool      `yaml:"metrics" json:"metrics"`
	TLS     TLSConfig `yaml:"tls" json:"tls"`
}

// LoggingConfig holds logging configuration, unchanged in shape from the
// teacher since pkg/logger/zap_logger.go consumes it directly.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	FilePath string `yaml:"filePath" json:"filePath"`
}
