package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by the service.
const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
)

// Defaults applied when the config file omits a value.
const (
	DefaultPort = 8000
	DefaultDSN  = "sqlite://users.db"

	// Sliding-window defaults: 100 requests per minute for reads, 20 per
	// minute for writes.
	DefaultRateLimitWindow    = time.Minute
	DefaultMaxRequests        = 100
	DefaultStrictMaxRequests  = 20
	DefaultRateLimitRedisPref = "ratelimit"
)

// DefaultCORSOrigins lists the frontend dev-server origins allowed when the
// config file names none.
func DefaultCORSOrigins() []string {
	return []string{"http://localhost:3000", "http://127.0.0.1:3000"}
}

// Duration decodes YAML scalars like "30s" or "1m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if errDecode := value.Decode(&raw); errDecode != nil {
		return errDecode
	}
	parsed, errParse := time.ParseDuration(strings.TrimSpace(raw))
	if errParse != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, errParse)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// RedisConfig holds the optional Redis limiter backend settings.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// RateLimitConfig holds the sliding-window settings for both limiter tiers.
type RateLimitConfig struct {
	Window            Duration    `yaml:"window"`
	MaxRequests       int         `yaml:"max-requests"`
	StrictMaxRequests int         `yaml:"strict-max-requests"`
	Redis             RedisConfig `yaml:"redis"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors-origins"`
}

// Config holds the resolved application configuration.
type Config struct {
	ConfigPath string          `yaml:"-"`
	Server     ServerConfig    `yaml:"server"`
	DSN        string          `yaml:"database-dsn"`
	Database   struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	RateLimit RateLimitConfig `yaml:"rate-limit"`
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file and applies environment overrides and
// defaults. A missing file is not an error; the defaults describe a
// self-contained SQLite demo deployment.
func Load(configPath string) (Config, error) {
	cfg := Config{ConfigPath: ResolveConfigPath(configPath)}

	data, errRead := os.ReadFile(cfg.ConfigPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("read config file: %w", errRead)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

// DatabaseDSN resolves the DSN from env or the config file, falling back to
// the bundled SQLite database.
func (c Config) DatabaseDSN() string {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn
	}
	if dsn := strings.TrimSpace(c.DSN); dsn != "" {
		return dsn
	}
	if dsn := strings.TrimSpace(c.Database.DSN); dsn != "" {
		return dsn
	}
	return DefaultDSN
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		cfg.Server.Port = DefaultPort
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = DefaultCORSOrigins()
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = Duration(DefaultRateLimitWindow)
	}
	if cfg.RateLimit.MaxRequests <= 0 {
		cfg.RateLimit.MaxRequests = DefaultMaxRequests
	}
	if cfg.RateLimit.StrictMaxRequests <= 0 {
		cfg.RateLimit.StrictMaxRequests = DefaultStrictMaxRequests
	}
	if strings.TrimSpace(cfg.RateLimit.Redis.Prefix) == "" {
		cfg.RateLimit.Redis.Prefix = DefaultRateLimitRedisPref
	}
	if cfg.RateLimit.Redis.DB < 0 {
		cfg.RateLimit.Redis.DB = 0
	}
}
