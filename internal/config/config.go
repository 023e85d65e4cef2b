package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"shark-tank-api/internal/features"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Security  SecurityConfig  `json:"security"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Redis     RedisConfig     `json:"redis"`
	Tracing   TracingConfig   `json:"tracing"`
	Log       LogConfig       `json:"log"`
	Game      GameConfig      `json:"game"`
	Features  FeaturesConfig  `json:"features"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port     string `json:"port"`
	Host     string `json:"host"`
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `json:"trust_proxy"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Path string `json:"path"`
}

// SecurityConfig holds security-related configuration.
type SecurityConfig struct {
	// Max request body size in bytes (default: 1MB)
	MaxRequestBodySize int64 `json:"max_request_body_size"`
	// Allowed CORS origins (comma-separated)
	AllowedOrigins string `json:"allowed_origins"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool `json:"enabled"`
	Rate    int  `json:"rate"`
	Window  int  `json:"window"` // in seconds
}

// RedisConfig holds the decision cache backend. An empty Addr selects the
// in-process cache.
type RedisConfig struct {
	Addr      string `json:"addr"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"key_prefix"`
	TTL       int    `json:"ttl"` // in seconds
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	Endpoint    string `json:"endpoint"`
	ServiceName string `json:"service_name"`
	Environment string `json:"environment"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level       string `json:"level"`
	Encoding    string `json:"encoding"` // json or console
	Development bool   `json:"development"`
	Sampling    bool   `json:"sampling"`
}

// GameConfig holds engine and catalog settings.
type GameConfig struct {
	// CatalogPath points at a YAML investor catalog; empty uses the built-in panel.
	CatalogPath string `json:"catalog_path"`
	// PanelSize is how many investors sit when random_panel is on.
	PanelSize int `json:"panel_size"`
	// Seed fixes every draw when set; otherwise each request seeds from the clock.
	Seed *int64 `json:"seed"`
}

// FeaturesConfig holds the initial state of each feature flag.
type FeaturesConfig struct {
	CacheEnabled      bool `json:"cache_enabled"`
	EventHooksEnabled bool `json:"event_hooks_enabled"`
	RandomPanel       bool `json:"random_panel"`
	BusinessScore     bool `json:"business_score"`
}

// LoadConfig loads configuration from environment variables and/or config file.
// Environment variables take precedence over config file values.
func LoadConfig(configFile string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Database: DatabaseConfig{
			Path: "./shark_tank.db",
		},
		Security: SecurityConfig{
			MaxRequestBodySize: 1 << 20,
			AllowedOrigins:     "*",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Rate:    100,
			Window:  60,
		},
		Redis: RedisConfig{
			KeyPrefix: "shark-tank:",
			TTL:       3600,
		},
		Tracing: TracingConfig{
			ServiceName: "shark-tank-api",
			Environment: "development",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Game: GameConfig{
			PanelSize: 5,
		},
		Features: FeaturesConfig{
			CacheEnabled:      true,
			EventHooksEnabled: true,
		},
	}

	// Load from config file if provided
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables (they take precedence)
	overrideFromEnv(cfg)
	if err := seedFromEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads configuration from a JSON file.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, cfg)
}

// overrideFromEnv overrides configuration with environment variables.
func overrideFromEnv(cfg *Config) {
	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.CertFile = getEnv("SERVER_CERT_FILE", cfg.Server.CertFile)
	cfg.Server.KeyFile = getEnv("SERVER_KEY_FILE", cfg.Server.KeyFile)
	cfg.Server.TrustProxy = getEnvBool("SERVER_TRUST_PROXY", cfg.Server.TrustProxy)

	cfg.Database.Path = getEnv("DATABASE_PATH", cfg.Database.Path)

	cfg.Security.MaxRequestBodySize = getEnvInt64("MAX_REQUEST_BODY_SIZE", cfg.Security.MaxRequestBodySize)
	cfg.Security.AllowedOrigins = getEnv("ALLOWED_ORIGINS", cfg.Security.AllowedOrigins)

	cfg.RateLimit.Enabled = getEnvBool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.Rate = getEnvInt("RATE_LIMIT_RATE", cfg.RateLimit.Rate)
	cfg.RateLimit.Window = getEnvInt("RATE_LIMIT_WINDOW", cfg.RateLimit.Window)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", cfg.Redis.KeyPrefix)
	cfg.Redis.TTL = getEnvInt("REDIS_TTL", cfg.Redis.TTL)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Endpoint = getEnv("TRACING_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.ServiceName = getEnv("TRACING_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.Environment = getEnv("TRACING_ENVIRONMENT", cfg.Tracing.Environment)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Encoding = getEnv("LOG_ENCODING", cfg.Log.Encoding)
	cfg.Log.Development = getEnvBool("LOG_DEVELOPMENT", cfg.Log.Development)
	cfg.Log.Sampling = getEnvBool("LOG_SAMPLING", cfg.Log.Sampling)

	cfg.Game.CatalogPath = getEnv("CATALOG_PATH", cfg.Game.CatalogPath)
	cfg.Game.PanelSize = getEnvInt("PANEL_SIZE", cfg.Game.PanelSize)

	cfg.Features.CacheEnabled = getEnvBool("FEATURE_CACHE_ENABLED", cfg.Features.CacheEnabled)
	cfg.Features.EventHooksEnabled = getEnvBool("FEATURE_EVENT_HOOKS_ENABLED", cfg.Features.EventHooksEnabled)
	cfg.Features.RandomPanel = getEnvBool("FEATURE_RANDOM_PANEL", cfg.Features.RandomPanel)
	cfg.Features.BusinessScore = getEnvBool("FEATURE_BUSINESS_SCORE", cfg.Features.BusinessScore)
}

// seedFromEnv reads GAME_SEED. A malformed seed is an error rather than a
// silent fall back to clock seeding.
func seedFromEnv(cfg *Config) error {
	value := os.Getenv("GAME_SEED")
	if value == "" {
		return nil
	}
	seed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid GAME_SEED %q: %w", value, err)
	}
	cfg.Game.Seed = &seed
	return nil
}

// getEnv gets an environment variable or returns the default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns the default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvInt64 gets an int64 environment variable or returns the default value.
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

// FeatureStates maps the configured flags to their names.
func (c *Config) FeatureStates() map[string]bool {
	return map[string]bool{
		features.FeatureCacheEnabled:      c.Features.CacheEnabled,
		features.FeatureEventHooksEnabled: c.Features.EventHooksEnabled,
		features.FeatureRandomPanel:       c.Features.RandomPanel,
		features.FeatureBusinessScore:     c.Features.BusinessScore,
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if (c.Server.CertFile == "") != (c.Server.KeyFile == "") {
		return fmt.Errorf("cert file and key file must be set together")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Rate <= 0 {
			return fmt.Errorf("rate limit rate must be positive")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis ttl must be non-negative")
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}
	if c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		return fmt.Errorf("log encoding must be json or console")
	}
	if c.Game.PanelSize <= 0 {
		return fmt.Errorf("panel size must be positive")
	}
	return nil
}
