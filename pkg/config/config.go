package config

import (
	"fmt"
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Import    ImportConfig
	Retention RetentionConfig
	Search    SearchConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ImportConfig bounds what the upload boundary hands to the pipeline.
type ImportConfig struct {
	MaxFileSizeBytes  int
	MaxContentLength  int
	MaxPerRowErrors   int
	StrictPhoneCheck  bool
	DefaultDuplicates string // skip | update | overwrite
}

type RetentionConfig struct {
	// ImportJobDays is how long finished import jobs are kept before the
	// nightly purge removes them.
	ImportJobDays int
	PurgeSchedule string
}

type SearchConfig struct {
	// IndexPath is where the bleve index lives; empty keeps it in memory.
	IndexPath string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "customer-directory-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Import: ImportConfig{
			MaxFileSizeBytes:  getEnvAsInt("IMPORT_MAX_FILE_SIZE_BYTES", 10*1024*1024),
			MaxContentLength:  getEnvAsInt("IMPORT_MAX_CONTENT_LENGTH", 5*1024*1024),
			MaxPerRowErrors:   getEnvAsInt("IMPORT_MAX_PER_ROW_ERRORS", 100),
			StrictPhoneCheck:  getEnvAsBool("IMPORT_STRICT_PHONE_CHECK", false),
			DefaultDuplicates: getEnv("IMPORT_DEFAULT_DUPLICATE_POLICY", "skip"),
		},
		Retention: RetentionConfig{
			ImportJobDays: getEnvAsInt("RETENTION_IMPORT_JOB_DAYS", 30),
			PurgeSchedule: getEnv("RETENTION_PURGE_SCHEDULE", "0 3 * * *"),
		},
		Search: SearchConfig{
			IndexPath: getEnv("SEARCH_INDEX_PATH", ""),
		},
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
