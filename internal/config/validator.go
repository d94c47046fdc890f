package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

const localhostHost = "localhost"

// Common errors.
var (
	ErrEmptyValue     = errors.New("value cannot be empty")
	ErrInvalidPort    = errors.New("invalid port number")
	ErrInvalidFormat  = errors.New("invalid format")
	ErrUnknownSQLType = errors.New("unsupported registry_type")
)

// Validate checks if the configuration is valid.
func Validate(cfg *Config) error {
	if cfg.Project == "" {
		return fmt.Errorf("project: %w", ErrEmptyValue)
	}

	if err := ValidateRegistry(cfg.Registry); err != nil {
		return fmt.Errorf("registry config: %w", err)
	}

	if err := ValidateOnlineStore(cfg.OnlineStore); err != nil {
		return fmt.Errorf("online_store config: %w", err)
	}

	if cfg.EntityKeySerializationVersion != 3 {
		return fmt.Errorf("entity_key_serialization_version %d: only version 3 is implemented", cfg.EntityKeySerializationVersion)
	}

	if err := ValidateServer(cfg.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := ValidateLogging(cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ValidateRegistry validates the registry source configuration.
func ValidateRegistry(r RegistryConfig) error {
	if r.Path == "" {
		return fmt.Errorf("path: %w", ErrEmptyValue)
	}

	switch r.RegistryType {
	case RegistryTypeFile, RegistryTypeSQL, RegistryTypeBlob:
	default:
		return fmt.Errorf("registry_type %q: %w", r.RegistryType, ErrUnknownSQLType)
	}

	return nil
}

// ValidateOnlineStore validates the online store configuration's tagged union.
func ValidateOnlineStore(o OnlineStoreConfig) error {
	switch o.Type {
	case OnlineStoreSqlite:
		if o.Path == "" {
			return fmt.Errorf("sqlite path: %w", ErrEmptyValue)
		}
	case OnlineStoreRedis:
		if o.ConnectionString == "" {
			return fmt.Errorf("redis connection_string: %w", ErrEmptyValue)
		}
		switch o.RedisType {
		case RedisTypeSingleNode, RedisTypeCluster, RedisTypeSentinel:
		default:
			return fmt.Errorf("redis_type %q: %w", o.RedisType, ErrInvalidFormat)
		}
		if o.RedisType == RedisTypeSentinel && o.SentinelMaster == "" {
			return fmt.Errorf("sentinel_master: %w", ErrEmptyValue)
		}
		if o.TLS.Enabled {
			if o.TLS.CertFile == "" || o.TLS.KeyFile == "" {
				return fmt.Errorf("tls cert/key: %w", ErrEmptyValue)
			}
		}
	default:
		return fmt.Errorf("online_store type %q: %w", o.Type, ErrInvalidFormat)
	}

	return nil
}

// ValidateServer validates adapter server configuration.
func ValidateServer(server ServerConfig) error {
	if server.Host != "" {
		if ip := net.ParseIP(server.Host); ip == nil && server.Host != localhostHost {
			if _, err := net.LookupHost(server.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	if server.Port != 0 && (server.Port < 1 || server.Port > 65535) {
		return fmt.Errorf("port %d: %w", server.Port, ErrInvalidPort)
	}

	switch server.Type {
	case "", "http", "grpc":
	default:
		return fmt.Errorf("server type %q: %w", server.Type, ErrInvalidFormat)
	}

	if server.TLS.Enabled {
		if server.TLS.CertFile == "" {
			return fmt.Errorf("TLS cert file: %w", ErrEmptyValue)
		}
		if server.TLS.KeyFile == "" {
			return fmt.Errorf("TLS key file: %w", ErrEmptyValue)
		}
	}

	return nil
}

// ValidateLogging validates logging configuration.
func ValidateLogging(logging LoggingConfig) error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
		"dpanic": true, "panic": true, "fatal": true,
	}
	if !validLevels[strings.ToLower(logging.Level)] {
		return fmt.Errorf("log level %s: %w", logging.Level, ErrInvalidFormat)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[strings.ToLower(logging.Format)] {
		return fmt.Errorf("log format %s: %w", logging.Format, ErrInvalidFormat)
	}

	return nil
}
