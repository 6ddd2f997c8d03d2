package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Catalog       CatalogConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
	Jobs          JobsConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	BaseURL            string
	RateLimitPerSecond int
	RateLimitBurst     int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// CatalogConfig locates the reward catalog file the optimizer prices
// against.
type CatalogConfig struct {
	Path     string
	Version  string // defaults to a content hash when empty
	Currency string // display currency for API responses
}

type StorageConfig struct {
	LocalPath string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// JobsConfig holds cron schedules. Defaults recompute last month's results
// shortly after month close and refresh the catalog nightly.
type JobsConfig struct {
	RecomputeSchedule     string
	CatalogReloadSchedule string
}

// Load reads configuration from the environment, with .env honored when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 100),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 200),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "card-reward-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Catalog: CatalogConfig{
			Path:     getEnv("CATALOG_PATH", "./catalog/cards.csv"),
			Version:  getEnv("CATALOG_VERSION", ""),
			Currency: getEnv("REWARDS_CURRENCY", "INR"),
		},
		Storage: StorageConfig{
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		Jobs: JobsConfig{
			RecomputeSchedule:     getEnv("JOBS_RECOMPUTE_SCHEDULE", "0 3 1 * *"),
			CatalogReloadSchedule: getEnv("JOBS_CATALOG_RELOAD_SCHEDULE", "0 1 * * *"),
		},
	}

	if cfg.Catalog.Path == "" {
		return nil, errors.New("CATALOG_PATH is required")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
