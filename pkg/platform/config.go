package platform

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store providers.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds the platform configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	Database  DatabaseConfig  `yaml:"database"`
	Interview InterviewConfig `yaml:"interview"`
	Speech    SpeechConfig    `yaml:"speech"`
	Review    ReviewConfig    `yaml:"review"`
	Auth      AuthConfig      `yaml:"auth"`
	MCP       MCPConfig       `yaml:"mcp"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Name            string        `yaml:"name"`
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures the default logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig selects and tunes the session store.
type StoreConfig struct {
	Provider        string        `yaml:"provider"`
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	KeyPrefix       string        `yaml:"key_prefix"`
}

// RedisConfig configures the redis session store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`

	// Migrate applies pending schema migrations at startup.
	Migrate bool `yaml:"migrate"`
}

// InterviewConfig holds the limits used when a client does not choose them.
type InterviewConfig struct {
	DefaultMaxQuestions     int `yaml:"default_max_questions"`
	DefaultTimeLimitMinutes int `yaml:"default_time_limit_minutes"`
}

// SpeechConfig configures the VOICEVOX engine.
type SpeechConfig struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url"`
	Speaker int           `yaml:"speaker"`
	Timeout time.Duration `yaml:"timeout"`
}

// ReviewConfig configures transcript review.
type ReviewConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// AuthConfig configures API authentication.
type AuthConfig struct {
	// Required rejects callers without valid credentials. Otherwise they are
	// admitted anonymously and get no history.
	Required bool           `yaml:"required"`
	APIKeys  []APIKeyConfig `yaml:"api_keys"`
	JWT      JWTConfig      `yaml:"jwt"`
}

// APIKeyConfig is one configured API key. Set key or key_hash, not both.
type APIKeyConfig struct {
	Key     string `yaml:"key"`
	KeyHash string `yaml:"key_hash"`
	Name    string `yaml:"name"`
}

// JWTConfig configures bearer token validation.
type JWTConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Issuer     string `yaml:"issuer"`
	SigningKey string `yaml:"signing_key"`
}

// MCPConfig configures the MCP endpoint.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the configuration used when no file is given:
// an in-memory store, no speech, no review and anonymous access.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	// #nosec G304 -- path is from CLI args, controlled by admin
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration, expanding ${VAR} references from
// the environment and applying defaults.
func ParseConfig(data []byte) (*Config, error) {
	data = []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the value of VAR, or "" when unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Store.Provider == "" {
		cfg.Store.Provider = StoreMemory
	}
	if cfg.Store.TTL == 0 {
		cfg.Store.TTL = 24 * time.Hour
	}
	if cfg.Store.CleanupInterval == 0 {
		cfg.Store.CleanupInterval = 10 * time.Minute
	}
	if cfg.Store.KeyPrefix == "" {
		cfg.Store.KeyPrefix = "interview"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Interview.DefaultMaxQuestions == 0 {
		cfg.Interview.DefaultMaxQuestions = 10
	}
	if cfg.Interview.DefaultTimeLimitMinutes == 0 {
		cfg.Interview.DefaultTimeLimitMinutes = 15
	}
	if cfg.Speech.Speaker == 0 {
		cfg.Speech.Speaker = 13
	}
	if cfg.Speech.Timeout == 0 {
		cfg.Speech.Timeout = 30 * time.Second
	}
	if cfg.Review.Model == "" {
		cfg.Review.Model = "gemini-1.5-pro"
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Name == "" {
		s.Name = "interview-platform"
	}
	if s.Address == "" {
		s.Address = ":8080"
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 15 * time.Second
	}
	if s.WriteTimeout == 0 {
		// Audio replies wait on synthesis.
		s.WriteTimeout = 60 * time.Second
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = 10 * time.Second
	}
}

// Validate validates the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.Store.Provider {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, "redis.addr is required when store.provider is redis")
		}
	case StorePostgres:
		if c.Database.DSN == "" {
			errs = append(errs, "database.dsn is required when store.provider is postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.provider %q is not one of memory, redis, postgres", c.Store.Provider))
	}

	if c.Store.TTL < 0 {
		errs = append(errs, "store.ttl must not be negative")
	}
	if c.Interview.DefaultMaxQuestions < 0 || c.Interview.DefaultTimeLimitMinutes < 0 {
		errs = append(errs, "interview defaults must be positive")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q is not one of json, text", c.Log.Format))
	}

	if c.Speech.Enabled && c.Speech.URL == "" {
		errs = append(errs, "speech.url is required when speech is enabled")
	}
	if c.Review.Enabled && c.Review.APIKey == "" {
		errs = append(errs, "review.api_key is required when review is enabled")
	}

	errs = append(errs, c.Auth.validate()...)

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (a AuthConfig) validate() []string {
	var errs []string
	for i, k := range a.APIKeys {
		if (k.Key == "") == (k.KeyHash == "") {
			errs = append(errs, fmt.Sprintf("auth.api_keys[%d]: exactly one of key or key_hash is required", i))
		}
	}
	if a.JWT.Enabled {
		if a.JWT.Issuer == "" {
			errs = append(errs, "auth.jwt.issuer is required when JWT is enabled")
		}
		if a.JWT.SigningKey == "" {
			errs = append(errs, "auth.jwt.signing_key is required when JWT is enabled")
		}
	}
	if a.Required && len(a.APIKeys) == 0 && !a.JWT.Enabled {
		errs = append(errs, "auth.required needs at least one api key or jwt")
	}
	return errs
}
