package config

import (
	"os"
	"strconv"
	"time"

	"goinfer/internal/apperr"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Engine   EngineConfig
	Paths    PathConfig
}

// DatabaseConfig holds database connection settings. URL is optional: when
// empty the binaries run against the in-memory ledger instead of Postgres.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// EngineConfig holds replicate generation defaults
type EngineConfig struct {
	DefaultReps int
	DefaultSeed int64
	Workers     int
	Parallel    bool
}

// PathConfig holds file system paths
type PathConfig struct {
	DataFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Engine:   loadEngineConfig(),
		Paths:    loadPathConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, apperr.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     getEnvOrDefault("DATABASE_URL", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		ReadTimeout:     getEnvDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultReps: getEnvIntOrDefault("ENGINE_REPS", 1),
		DefaultSeed: getEnvInt64OrDefault("ENGINE_SEED", 1),
		Workers:     getEnvIntOrDefault("ENGINE_WORKERS", 4),
		Parallel:    getEnvBoolOrDefault("ENGINE_PARALLEL", false),
	}
}

func loadPathConfig() PathConfig {
	return PathConfig{
		DataFile: getEnvOrDefault("DATA_FILE", ""),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return apperr.ConfigInvalid("server port is required")
	}
	if config.Engine.DefaultReps < 1 {
		return apperr.ConfigInvalid("ENGINE_REPS must be at least 1")
	}
	if config.Engine.Workers < 1 {
		return apperr.ConfigInvalid("ENGINE_WORKERS must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
