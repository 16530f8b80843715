package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/7977Brahma/tailika-matrimony-platform/discovery"
)

const (
	configPathEnvVar = "CONFIG_PATH"
	devJWTSecret     = "your_secret_key_please_change_in_production"
	devDatabaseURL   = "user=admin password=password dbname=interlinkdb sslmode=disable"
)

// Config is the backend configuration.
type Config struct {
	// Env is "development" or "production". Development allows the
	// fallback database URL and JWT secret.
	Env         string           `koanf:"env"`
	Port        int              `koanf:"port"`
	DatabaseURL string           `koanf:"database_url"`
	JWTSecret   string           `koanf:"jwt_secret"`
	TokenTTL    time.Duration    `koanf:"token_ttl"`
	Log         LogConfig        `koanf:"log"`
	CORS        CORSConfig       `koanf:"cors"`
	RateLimit   RateLimitConfig  `koanf:"rate_limit"`
	Discovery   discovery.Config `koanf:"discovery"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// RateLimitConfig bounds discovery requests per client IP.
type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

func defaultConfig() Config {
	return Config{
		Env:      "development",
		Port:     8080,
		TokenTTL: 24 * time.Hour,
		Log:      LogConfig{Level: "info", Format: "json"},
		CORS: CORSConfig{AllowedOrigins: []string{
			"http://localhost:5173", "http://127.0.0.1:5173",
			"http://localhost:3001", "http://127.0.0.1:3001",
		}},
		RateLimit: RateLimitConfig{Requests: 60, Window: time.Minute},
		Discovery: discovery.DefaultConfig(),
	}
}

var envMappings = map[string]string{
	"go_env":               "env",
	"port":                 "port",
	"database_url":         "database_url",
	"jwt_secret":           "jwt_secret",
	"token_ttl":            "token_ttl",
	"log_level":            "log.level",
	"log_format":           "log.format",
	"cors_origins":         "cors.allowed_origins",
	"rate_limit_requests":  "rate_limit.requests",
	"rate_limit_window":    "rate_limit.window",
	"discovery_workers":    "discovery.workers",
	"discovery_min_score":  "discovery.min_score",
	"discovery_limit":      "discovery.limit",
	"discovery_cache_size": "discovery.cache_size",
}

// envTransform maps known environment variables to config paths and skips
// everything else.
func envTransform(key string) string {
	return envMappings[strings.ToLower(key)]
}

// loadConfig layers defaults, an optional YAML file named by CONFIG_PATH
// and environment variables, in increasing priority. A .env file in the
// working directory is loaded into the environment first.
func loadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path := os.Getenv(configPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if origins, ok := k.Get("cors.allowed_origins").(string); ok {
		if err := k.Set("cors.allowed_origins", splitList(origins)); err != nil {
			return nil, fmt.Errorf("parse cors origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) isDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

// finalize fills development fallbacks and rejects unusable settings.
func (c *Config) finalize() error {
	if c.DatabaseURL == "" {
		if !c.isDevelopment() {
			return errors.New("config: DATABASE_URL is required outside development")
		}
		c.DatabaseURL = devDatabaseURL
	}
	if c.JWTSecret == "" {
		if !c.isDevelopment() {
			return errors.New("config: JWT_SECRET is required outside development")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: invalid token ttl %s", c.TokenTTL)
	}
	if c.Discovery.MinScore < 0 || c.Discovery.MinScore > 100 {
		return fmt.Errorf("config: discovery min score %d outside 0..100", c.Discovery.MinScore)
	}
	if c.Discovery.Limit < 0 || c.Discovery.CacheSize < 0 {
		return errors.New("config: discovery limit and cache size must not be negative")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
