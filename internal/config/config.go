package config

import (
	"os"
	"strconv"
	"time"

	"fairdraw/adapters/prng"
	"fairdraw/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	PRNG      PRNGConfig
	Database  DatabaseConfig
	Batch     BatchConfig
	Validator ValidatorConfig
	LogLevel  string
}

// PRNGConfig selects the number stream construction
type PRNGConfig struct {
	Hash   prng.HashName
	Policy prng.Policy
}

// DatabaseConfig holds draw log connection settings. An empty URL disables the draw log.
type DatabaseConfig struct {
	URL            string
	ConnectTimeout time.Duration
}

// Enabled reports whether a draw log database is configured
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// BatchConfig holds tester batch settings
type BatchConfig struct {
	Workers       int
	ProgressEvery int
}

// ValidatorConfig holds distribution validator settings
type ValidatorConfig struct {
	SpreadThreshold float64
}

// Load reads an optional .env file, then configuration from environment variables
func Load() (*Config, error) {
	// a missing .env file is fine, the environment may carry everything
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables and validates it
func FromEnv() (*Config, error) {
	prngConfig, err := loadPRNGConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load PRNG configuration")
	}

	config := &Config{
		PRNG:      *prngConfig,
		Database:  *loadDatabaseConfig(),
		Batch:     *loadBatchConfig(),
		Validator: *loadValidatorConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadPRNGConfig() (*PRNGConfig, error) {
	hash, err := prng.ParseHashName(os.Getenv("PRNG_HASH"))
	if err != nil {
		return nil, errors.ConfigInvalid("PRNG_HASH: " + err.Error())
	}

	policy, err := prng.ParsePolicy(os.Getenv("PRNG_POLICY"))
	if err != nil {
		return nil, errors.ConfigInvalid("PRNG_POLICY: " + err.Error())
	}

	return &PRNGConfig{Hash: hash, Policy: policy}, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:            getEnvOrDefault("DATABASE_URL", ""),
		ConnectTimeout: getEnvDurationOrDefault("DB_CONNECT_TIMEOUT", 10*time.Second),
	}
}

func loadBatchConfig() *BatchConfig {
	return &BatchConfig{
		Workers:       getEnvIntOrDefault("BATCH_WORKERS", 8),
		ProgressEvery: getEnvIntOrDefault("BATCH_PROGRESS_EVERY", 100),
	}
}

func loadValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{
		SpreadThreshold: getEnvFloatOrDefault("VALIDATOR_SPREAD_THRESHOLD", 0.05),
	}
}

func validateConfig(config *Config) error {
	if config.Batch.Workers < 1 {
		return errors.ConfigInvalid("BATCH_WORKERS must be at least 1")
	}
	if config.Batch.ProgressEvery < 1 {
		return errors.ConfigInvalid("BATCH_PROGRESS_EVERY must be at least 1")
	}
	if config.Validator.SpreadThreshold <= 0 {
		return errors.ConfigInvalid("VALIDATOR_SPREAD_THRESHOLD must be positive")
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
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
