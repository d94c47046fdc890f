package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLLoader_LoadFromFile_PathRegistry(t *testing.T) {
	tempDir := t.TempDir()

	configContent := `project: local_sqlite
project_description: a local feast deployment
provider: local
registry: data/registry.db
online_store:
  type: sqlite
  path: data/online_store.db
entity_key_serialization_version: 3
logging:
  level: info
  format: json
`

	configPath := filepath.Join(tempDir, "feature_store.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	loader := NewYAMLLoader(configPath)
	cfg := &Config{}
	require.NoError(t, loader.LoadFromFile(configPath, cfg))

	assert.Equal(t, "local_sqlite", cfg.Project)
	assert.Equal(t, ProviderLocal, cfg.Provider)
	assert.Equal(t, "data/registry.db", cfg.Registry.Path)
	assert.Equal(t, RegistryTypeFile, cfg.Registry.RegistryType)
	assert.Equal(t, OnlineStoreSqlite, cfg.OnlineStore.Type)
	assert.Equal(t, "data/online_store.db", cfg.OnlineStore.Path)
	assert.Equal(t, 3, cfg.EntityKeySerializationVersion)
}

func TestYAMLLoader_LoadFromFile_DetailedRegistryAndRedis(t *testing.T) {
	tempDir := t.TempDir()

	configContent := `project: local_redis
registry:
  path: data/redis_registry.db
  registry_type: sql
  cache_ttl_seconds: 60
  user: reguser
  password: regpass
online_store:
  type: redis
  redis_type: single_node
  connection_string: localhost:6379
`

	configPath := filepath.Join(tempDir, "feature_store.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	loader := NewYAMLLoader(configPath)
	cfg := &Config{}
	require.NoError(t, loader.LoadFromFile(configPath, cfg))

	assert.Equal(t, "local_redis", cfg.Project)
	assert.Equal(t, "data/redis_registry.db", cfg.Registry.Path)
	assert.Equal(t, RegistryTypeSQL, cfg.Registry.RegistryType)
	assert.Equal(t, uint64(60), cfg.Registry.CacheTTLSeconds)
	assert.Equal(t, "reguser", cfg.Registry.User)
	assert.Equal(t, OnlineStoreRedis, cfg.OnlineStore.Type)
	assert.Equal(t, RedisTypeSingleNode, cfg.OnlineStore.RedisType)
	assert.Equal(t, "localhost:6379", cfg.OnlineStore.ConnectionString)
}

func TestYAMLLoader_LoadFromFile_Error(t *testing.T) {
	loader := NewYAMLLoader("non-existent-file.yaml")
	cfg := &Config{}
	assert.Error(t, loader.LoadFromFile("non-existent-file.yaml", cfg))

	tempDir := t.TempDir()
	invalidYAMLPath := filepath.Join(tempDir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalidYAMLPath, []byte("invalid: yaml: content:"), 0644))
	assert.Error(t, loader.LoadFromFile(invalidYAMLPath, cfg))

	emptyPath := filepath.Join(tempDir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyPath, []byte("   \n"), 0644))
	assert.Error(t, loader.LoadFromFile(emptyPath, cfg))
}

func TestYAMLLoader_LoadWithOverrides(t *testing.T) {
	t.Setenv("FEAST_PROJECT", "overridden_project")
	t.Setenv("FEAST_SERVER_PORT", "9090")
	t.Setenv("FEAST_LOGGING_LEVEL", "debug")

	cfg := &Config{
		Project: "original_project",
		Server:  ServerConfig{Host: "localhost", Port: 8080},
		Logging: LoggingConfig{Level: "info"},
	}

	loader := NewYAMLLoader("")
	require.NoError(t, loader.LoadWithOverrides(cfg))

	assert.Equal(t, "overridden_project", cfg.Project)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestYAMLLoader_Load(t *testing.T) {
	tempDir := t.TempDir()

	configContent := `project: demo
registry: data/registry.db
online_store:
  type: sqlite
  path: data/online.db
`
	configPath := filepath.Join(tempDir, "feature_store.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	t.Setenv("FEAST_PROJECT", "overridden")

	loader := NewYAMLLoader(configPath)
	cfg := &Config{}
	require.NoError(t, loader.Load(cfg))

	assert.Equal(t, "overridden", cfg.Project)
	assert.Equal(t, 3, cfg.EntityKeySerializationVersion)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestYAMLLoader_Load_Error(t *testing.T) {
	loader := NewYAMLLoader("non-existent-file.yaml")
	cfg := &Config{}
	assert.Error(t, loader.Load(cfg))
}

func TestBuildEnvVarName(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		field    string
		expected string
	}{
		{"No prefix", "", "port", "PORT"},
		{"With prefix", "server", "port", "SERVER_PORT"},
		{"Nested prefix", "server_tls", "enabled", "SERVER_TLS_ENABLED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildEnvVarName(tt.prefix, tt.field))
		})
	}
}

func TestApplyEnvValueToField(t *testing.T) {
	type testStruct struct {
		String      string
		Int         int
		Bool        bool
		Float       float64
		Map         map[string]string
		StringSlice []string
		IntSlice    []int
	}

	tests := []struct {
		name      string
		field     string
		envValue  string
		expectErr bool
	}{
		{"String value", "String", "test-value", false},
		{"Int value", "Int", "42", false},
		{"Bool value true", "Bool", "true", false},
		{"Invalid bool value", "Bool", "not-a-bool", true},
		{"Float value", "Float", "3.14159", false},
		{"Invalid float value", "Float", "not-a-float", true},
		{"Map value", "Map", "key1:value1,key2:value2", false},
		{"Invalid map format", "Map", "invalid-format", true},
		{"String slice", "StringSlice", "value1,value2,value3", false},
		{"Int slice", "IntSlice", "1,2,3", false},
		{"Invalid int slice", "IntSlice", "1,not-an-int,3", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStruct{}
			field := reflect.ValueOf(&s).Elem().FieldByName(tt.field)
			err := applyEnvValueToField(field, tt.envValue)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
