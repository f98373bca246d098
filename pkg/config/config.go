// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Places        PlacesConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Env                string
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AuthConfig configures the admin gate. Mode selects the authenticator
// implementation: "real" verifies AdminEmail/AdminPasswordHash with bcrypt,
// "stub" accepts any credentials and is only meant for local development.
type AuthConfig struct {
	Mode              string
	JWTSecret         string
	SessionSecret     string
	SessionTTL        time.Duration
	AdminEmail        string
	AdminPasswordHash string
}

type PlacesConfig struct {
	APIKey         string
	RequestTimeout time.Duration
	CacheTTL       time.Duration
	DebounceDelay  time.Duration
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	LogLevel       string
}

// DSN returns the connection string for the configured database. A full
// DATABASE_URL wins over the individual parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Load reads configuration from the environment. Values with sane defaults
// fall back silently; secrets are validated by the components that need them.
func Load() (*Config, error) {
	// Missing .env is fine in deployed environments.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Env:                getEnv("APP_ENV", "dev"),
			Port:               getEnv("APP_PORT", "8080"),
			ReadTimeout:        getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:       getDuration("SERVER_WRITE_TIMEOUT", 20*time.Second),
			ShutdownTimeout:    getDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			RateLimitPerSecond: getInt("RATE_LIMIT_PER_SECOND", 50),
			RateLimitBurst:     getInt("RATE_LIMIT_BURST", 100),
			AllowedOrigins:     getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "chargedrops"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			Mode:              getEnv("AUTH_MODE", "real"),
			JWTSecret:         os.Getenv("JWT_SECRET"),
			SessionSecret:     os.Getenv("SESSION_SECRET"),
			SessionTTL:        getDuration("SESSION_TTL", 12*time.Hour),
			AdminEmail:        os.Getenv("ADMIN_EMAIL"),
			AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		},
		Places: PlacesConfig{
			APIKey:         os.Getenv("MAPS_API_KEY"),
			RequestTimeout: getDuration("PLACES_TIMEOUT", 5*time.Second),
			CacheTTL:       getDuration("PLACES_CACHE_TTL", 2*time.Minute),
			DebounceDelay:  getDuration("PLACES_DEBOUNCE", 500*time.Millisecond),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getBool("METRICS_ENABLED", true),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Auth.Mode != "real" && cfg.Auth.Mode != "stub" {
		return nil, fmt.Errorf("invalid AUTH_MODE %q: want real or stub", cfg.Auth.Mode)
	}
	if cfg.Auth.Mode == "stub" && cfg.Server.Env == "prod" {
		return nil, fmt.Errorf("AUTH_MODE=stub is not allowed when APP_ENV=prod")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
