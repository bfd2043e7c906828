package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret   = "change-me-jwt-secret"
	defaultDatabaseURL = "favorites.db"
)

type Config struct {
	AppEnv             string
	HTTPAddr           string
	DatabaseURL        string
	JWTSecret          string
	JWTAccessTTL       time.Duration
	RedisURL           string
	ListCacheTTL       time.Duration
	LockTimeout        time.Duration
	LockTTL            time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
	LogLevel           string
	PurgeRetention     time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", defaultDatabaseURL)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LIST_CACHE_TTL", "30s")
	v.SetDefault("LOCK_TIMEOUT", "3s")
	v.SetDefault("LOCK_TTL", "10s")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PURGE_RETENTION", "720h")
	return v
}

// FromViper builds and validates a Config from an already populated viper.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:         strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		HTTPAddr:       strings.TrimSpace(v.GetString("HTTP_ADDR")),
		DatabaseURL:    strings.TrimSpace(v.GetString("DATABASE_URL")),
		JWTSecret:      strings.TrimSpace(v.GetString("JWT_SECRET")),
		RedisURL:       strings.TrimSpace(v.GetString("REDIS_URL")),
		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		LogLevel:       strings.TrimSpace(v.GetString("LOG_LEVEL")),
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "dev"
	}

	for _, o := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"JWT_ACCESS_TTL", &cfg.JWTAccessTTL},
		{"LIST_CACHE_TTL", &cfg.ListCacheTTL},
		{"LOCK_TIMEOUT", &cfg.LockTimeout},
		{"LOCK_TTL", &cfg.LockTTL},
		{"PURGE_RETENTION", &cfg.PurgeRetention},
	}
	for _, d := range durations {
		value := strings.TrimSpace(v.GetString(d.name))
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", d.name, value, err)
		}
		*d.dst = parsed
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.ListCacheTTL <= 0 {
		return fmt.Errorf("LIST_CACHE_TTL must be > 0")
	}
	if cfg.LockTimeout <= 0 {
		return fmt.Errorf("LOCK_TIMEOUT must be > 0")
	}
	if cfg.LockTTL <= cfg.LockTimeout {
		return fmt.Errorf("LOCK_TTL must be greater than LOCK_TIMEOUT")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be > 0")
	}
	if cfg.PurgeRetention <= 0 {
		return fmt.Errorf("PURGE_RETENTION must be > 0")
	}

	if cfg.IsProdLike() {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if !cfg.UsesPostgres() {
			return fmt.Errorf("in prod/release DATABASE_URL must point to PostgreSQL")
		}
	}

	return nil
}

func (c *Config) IsProdLike() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production" || c.AppEnv == "release"
}

func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}
