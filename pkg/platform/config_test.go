package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "interview-platform", cfg.Server.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, StoreMemory, cfg.Store.Provider)
	assert.Equal(t, 24*time.Hour, cfg.Store.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Store.CleanupInterval)
	assert.Equal(t, "interview", cfg.Store.KeyPrefix)
	assert.Equal(t, 10, cfg.Interview.DefaultMaxQuestions)
	assert.Equal(t, 15, cfg.Interview.DefaultTimeLimitMinutes)
	assert.Equal(t, 13, cfg.Speech.Speaker)
	assert.Equal(t, "gemini-1.5-pro", cfg.Review.Model)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TEST_REDIS_PASSWORD", "s3cret")
	t.Setenv("TEST_GEMINI_KEY", "gm-key")

	content := `
server:
  name: mock-interviews
  address: ":9090"
  shutdown_timeout: 5s
log:
  level: debug
  format: text
store:
  provider: redis
  ttl: 2h
  key_prefix: mi
redis:
  addr: localhost:6379
  password: ${TEST_REDIS_PASSWORD}
  db: 2
interview:
  default_max_questions: 8
speech:
  enabled: true
  url: http://localhost:50021
review:
  enabled: true
  api_key: ${TEST_GEMINI_KEY}
auth:
  required: true
  api_keys:
    - key: abc
      name: frontend
metrics:
  enabled: true
mcp:
  enabled: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "mock-interviews", cfg.Server.Name)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, StoreRedis, cfg.Store.Provider)
	assert.Equal(t, 2*time.Hour, cfg.Store.TTL)
	assert.Equal(t, "mi", cfg.Store.KeyPrefix)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 8, cfg.Interview.DefaultMaxQuestions)
	assert.Equal(t, 15, cfg.Interview.DefaultTimeLimitMinutes)
	assert.Equal(t, "gm-key", cfg.Review.APIKey)
	assert.True(t, cfg.Auth.Required)
	require.Len(t, cfg.Auth.APIKeys, 1)
	assert.Equal(t, "frontend", cfg.Auth.APIKeys[0].Name)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.MCP.Enabled)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	_, err = ParseConfig([]byte("server: [unclosed"))
	assert.ErrorContains(t, err, "parsing config")
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_EXPAND_A", "alpha")

	assert.Equal(t, "x-alpha-y", expandEnvVars("x-${TEST_EXPAND_A}-y"))
	assert.Equal(t, "x--y", expandEnvVars("x-${TEST_EXPAND_UNSET_VAR}-y"))
	assert.Equal(t, "no vars", expandEnvVars("no vars"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown provider", func(c *Config) { c.Store.Provider = "etcd" }, `store.provider "etcd"`},
		{"redis without addr", func(c *Config) { c.Store.Provider = StoreRedis }, "redis.addr is required"},
		{"postgres without dsn", func(c *Config) { c.Store.Provider = StorePostgres }, "database.dsn is required"},
		{"negative ttl", func(c *Config) { c.Store.TTL = -time.Second }, "store.ttl"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"speech without url", func(c *Config) { c.Speech.Enabled = true }, "speech.url"},
		{"review without key", func(c *Config) { c.Review.Enabled = true }, "review.api_key"},
		{"api key with both forms", func(c *Config) {
			c.Auth.APIKeys = []APIKeyConfig{{Key: "a", KeyHash: "b"}}
		}, "exactly one of key or key_hash"},
		{"jwt without issuer", func(c *Config) {
			c.Auth.JWT = JWTConfig{Enabled: true, SigningKey: "k"}
		}, "auth.jwt.issuer"},
		{"required without authenticators", func(c *Config) { c.Auth.Required = true }, "auth.required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Speech.Enabled = true
	cfg.Review.Enabled = true

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "speech.url")
	assert.Contains(t, err.Error(), "review.api_key")
}
