package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Events   EventsConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	DisplayTimezone    string
}

type DatabaseConfig struct {
	Connection string
	LogLevel   string
}

type AuthConfig struct {
	JWTSecret string
	// TokenTTL of zero issues tokens that never expire.
	TokenTTL time.Duration
}

type CacheConfig struct {
	// RedisURL empty selects the in-process cache.
	RedisURL string
	TokenTTL time.Duration
}

type EventsConfig struct {
	// NatsURL empty disables event publishing.
	NatsURL string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// DisplayLocation is the zone formatted timestamps are rendered in. An
// unknown zone name falls back to UTC.
func (c *Config) DisplayLocation() *time.Location {
	loc, err := time.LoadLocation(c.App.DisplayTimezone)
	if err != nil {
		log.Printf("Warn: unknown DISPLAY_TIMEZONE %q, using UTC", c.App.DisplayTimezone)
		return time.UTC
	}
	return loc
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			DisplayTimezone:    getEnv("DISPLAY_TIMEZONE", "UTC"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			LogLevel:   getEnv("DB_LOG_LEVEL", "warn"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("AUTH_TOKEN_TTL", 30*24*time.Hour),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			TokenTTL: getEnvAsDuration("TOKEN_CACHE_TTL", 5*time.Minute),
		},
		Events: EventsConfig{
			NatsURL: getEnv("NATS_URL", ""),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "lumina-be"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(strings.TrimSpace(getEnv(key, ""))); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("12h") or a bare number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
