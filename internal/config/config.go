package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Storage drivers understood by the persistence layer.
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppHost           string
	AppPort           string
	LogLevel          zerolog.Level
	StorageDriver     string
	StorageDir        string
	StorageKey        string
	DatabaseURL       string
	RedisURL          string
	DashboardCacheTTL time.Duration
	JWTSecret         string
	JWTTTL            time.Duration
	LoginRateLimit    int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	port := strings.TrimPrefix(c.AppPort, ":")
	return net.JoinHostPort(c.AppHost, port)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SAMMS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SAMMS API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "127.0.0.1")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.driver", StorageFile)
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("storage.key", "SAMMS_DB_V1")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("jwt.ttl", "12h")
	v.SetDefault("login.rate_limit", 10)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cacheTTL, err := parseDuration(v, "dashboard.cache_ttl", "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	jwtTTL, err := parseDuration(v, "jwt.ttl", "12h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(v.GetString("log.level"))))
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppHost:           v.GetString("app.host"),
		AppPort:           v.GetString("app.port"),
		LogLevel:          level,
		StorageDriver:     strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		StorageDir:        v.GetString("storage.dir"),
		StorageKey:        v.GetString("storage.key"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		DashboardCacheTTL: cacheTTL,
		JWTSecret:         v.GetString("jwt.secret"),
		JWTTTL:            jwtTTL,
		LoginRateLimit:    v.GetInt("login.rate_limit"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.StorageDriver {
	case StorageFile:
		if cfg.StorageDir == "" {
			return Config{}, fmt.Errorf("storage dir must be provided for the file driver")
		}
	case StorageSQLite, StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("database url must be provided for the %s driver", cfg.StorageDriver)
		}
	case StorageRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("redis url must be provided for the redis driver")
		}
	default:
		return Config{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if cfg.StorageKey == "" {
		cfg.StorageKey = "SAMMS_DB_V1"
	}
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		raw = fallback
	}
	return time.ParseDuration(raw)
}
