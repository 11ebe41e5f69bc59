// Package config loads service configuration from an optional YAML file and SIGNUP_* env vars.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend modes.
const (
	BackendAuto     = "auto"
	BackendMemory   = "memory"
	BackendHosted   = "hosted"
	BackendPostgres = "postgres"
)

// Session store kinds.
const (
	SessionsMemory = "memory"
	SessionsRedis  = "redis"
)

// EnvPrefix prefixes every environment override, e.g. SIGNUP_BACKEND_URL.
const EnvPrefix = "SIGNUP"

type HTTPConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// BackendConfig selects where taxonomy, registrations, bulletins, permissions and
// credentials live.
type BackendConfig struct {
	Mode       string        `mapstructure:"mode"`
	URL        string        `mapstructure:"url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionsConfig struct {
	Store string        `mapstructure:"store"`
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisConfig   `mapstructure:"redis"`
}

type IdempotencyConfig struct {
	MaxAge time.Duration `mapstructure:"max_age"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SeedConfig struct {
	Path string `mapstructure:"path"`
}

type Config struct {
	HTTP        HTTPConfig        `mapstructure:"http"`
	Backend     BackendConfig     `mapstructure:"backend"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Sessions    SessionsConfig    `mapstructure:"sessions"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Seed        SeedConfig        `mapstructure:"seed"`
}

// ResolvedBackend turns "auto" into a concrete mode: hosted when both the backend URL and
// API key are set, memory otherwise. Other modes are returned unchanged.
func (c Config) ResolvedBackend() string {
	if c.Backend.Mode != BackendAuto {
		return c.Backend.Mode
	}
	if c.Backend.URL != "" && c.Backend.APIKey != "" {
		return BackendHosted
	}
	return BackendMemory
}

// Validate reports every violation at once.
func (c Config) Validate() error {
	var errs []string

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be 1-65535, got %d", c.HTTP.Port))
	}
	if c.HTTP.ReadHeaderTimeout < 0 || c.HTTP.ShutdownTimeout < 0 {
		errs = append(errs, "http timeouts must not be negative")
	}

	switch c.Backend.Mode {
	case BackendAuto, BackendMemory:
	case BackendHosted:
		if c.Backend.URL == "" {
			errs = append(errs, "backend.url must be set when backend.mode is hosted")
		} else if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("backend.url must be an absolute URL, got %q", c.Backend.URL))
		}
		if c.Backend.APIKey == "" {
			errs = append(errs, "backend.api_key must be set when backend.mode is hosted")
		}
	case BackendPostgres:
		if c.Database.URL == "" {
			errs = append(errs, "database.url must be set when backend.mode is postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("backend.mode must be one of [auto, memory, hosted, postgres], got %q", c.Backend.Mode))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, "backend.timeout must be positive")
	}
	if c.Backend.RetryCount < 0 {
		errs = append(errs, fmt.Sprintf("backend.retry_count must be >= 0, got %d", c.Backend.RetryCount))
	}

	if c.Database.MinConns < 0 || c.Database.MaxConns < 0 {
		errs = append(errs, "database connection counts must not be negative")
	}
	if c.Database.MaxConns > 0 && c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}

	switch c.Sessions.Store {
	case SessionsMemory:
	case SessionsRedis:
		if c.Sessions.Redis.Addr == "" {
			errs = append(errs, "sessions.redis.addr must be set when sessions.store is redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("sessions.store must be one of [memory, redis], got %q", c.Sessions.Store))
	}
	if c.Sessions.TTL <= 0 {
		errs = append(errs, "sessions.ttl must be positive")
	}
	if c.Idempotency.MaxAge <= 0 {
		errs = append(errs, "idempotency.max_age must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads path (when non-empty), applies SIGNUP_* env overrides and defaults, and validates.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// NewViper returns a viper instance with env binding and defaults applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper unmarshals and validates configuration from an existing viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_header_timeout", "5s")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("backend.mode", BackendAuto)
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("backend.retry_count", 2)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.migrate_on_start", false)

	v.SetDefault("sessions.store", SessionsMemory)
	v.SetDefault("sessions.ttl", "12h")
	v.SetDefault("sessions.redis.addr", "")
	v.SetDefault("sessions.redis.password", "")
	v.SetDefault("sessions.redis.db", 0)

	v.SetDefault("idempotency.max_age", "24h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("seed.path", "")
}
