package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Cache          CacheConfig
	Recommendation RecommendationConfig
	RateLimit      RateLimitConfig
	OTEL           OTELConfig
	Log            LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration.
// Driver is either "postgres" or "sqlite3".
type DatabaseConfig struct {
	Driver         string
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	SSLMode        string
	SQLitePath     string
	MigrateOnStart bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds cache TTLs in seconds
type CacheConfig struct {
	ClinicTTL   int
	ResponseTTL int
}

// RecommendationConfig holds defaults applied when a request leaves a field unset
type RecommendationConfig struct {
	DefaultMaxDistanceKm float64
	DefaultTopN          int
	DefaultSimilarTopN   int
	MatchMode            string
	EmergencyPolicy      string
}

// RateLimitConfig holds per-client limits for write endpoints
type RateLimitConfig struct {
	ReviewsPerHour int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// LogConfig holds logger configuration
type LogConfig struct {
	Environment string
	Level       string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvAsInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", ""),
			Database:       getEnv("DB_NAME", "vet_clinic_discovery"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			SQLitePath:     getEnv("DB_SQLITE_PATH", "vet_platform.db"),
			MigrateOnStart: getEnvAsBool("DB_MIGRATE_ON_START", true),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			ClinicTTL:   getEnvAsInt("CACHE_CLINIC_TTL_SECONDS", 300),
			ResponseTTL: getEnvAsInt("CACHE_RESPONSE_TTL_SECONDS", 120),
		},
		Recommendation: RecommendationConfig{
			DefaultMaxDistanceKm: getEnvAsFloat("RECOMMEND_MAX_DISTANCE_KM", 50),
			DefaultTopN:          getEnvAsInt("RECOMMEND_TOP_N", 5),
			DefaultSimilarTopN:   getEnvAsInt("RECOMMEND_SIMILAR_TOP_N", 3),
			MatchMode:            strings.ToLower(getEnv("RECOMMEND_MATCH_MODE", "combined")),
			EmergencyPolicy:      strings.ToLower(getEnv("RECOMMEND_EMERGENCY_POLICY", "soft")),
		},
		RateLimit: RateLimitConfig{
			ReviewsPerHour: getEnvAsInt("RATE_LIMIT_REVIEWS_PER_HOUR", 5),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "vet-clinic-discovery"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Log: LogConfig{
			Environment: getEnv("APP_ENV", "development"),
			Level:       getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite3)", c.Database.Driver)
	}
	switch c.Recommendation.MatchMode {
	case "combined", "split":
	default:
		return fmt.Errorf("unsupported RECOMMEND_MATCH_MODE %q", c.Recommendation.MatchMode)
	}
	switch c.Recommendation.EmergencyPolicy {
	case "soft", "hard":
	default:
		return fmt.Errorf("unsupported RECOMMEND_EMERGENCY_POLICY %q", c.Recommendation.EmergencyPolicy)
	}
	if c.Recommendation.DefaultMaxDistanceKm <= 0 {
		return fmt.Errorf("RECOMMEND_MAX_DISTANCE_KM must be positive")
	}
	if c.Recommendation.DefaultTopN <= 0 || c.Recommendation.DefaultSimilarTopN <= 0 {
		return fmt.Errorf("recommendation top-n defaults must be positive")
	}
	return nil
}

// DatabaseDSN returns the connection string for the configured driver
func (c *DatabaseConfig) DatabaseDSN() string {
	if c.Driver == "sqlite3" {
		return fmt.Sprintf("file:%s?_foreign_keys=on", c.SQLitePath)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// MigrationURL returns the URL form golang-migrate expects for postgres
func (c *DatabaseConfig) MigrationURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
