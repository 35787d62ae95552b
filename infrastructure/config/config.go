package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Wikipedia data source
	WikipediaRESTBaseURL   string
	WikipediaActionBaseURL string
	UserAgent              string
	ResolveTimeout         time.Duration
	ResolveRatePerSecond   float64
	ResolveBurst           int

	// AWS configuration
	AWSRegion      string
	SnapshotsTable string
	StatsTable     string

	// Snapshot lifecycle
	SnapshotTTL     time.Duration
	ViewExtension   time.Duration
	ReplayStepDelay time.Duration

	// Logging and features
	LogLevel      string
	EnableMetrics bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		WikipediaRESTBaseURL:   getEnv("WIKIPEDIA_REST_BASE_URL", "https://en.wikipedia.org/api/rest_v1"),
		WikipediaActionBaseURL: getEnv("WIKIPEDIA_ACTION_BASE_URL", "https://en.wikipedia.org/w/api.php"),
		UserAgent:              getEnv("WIKIPEDIA_USER_AGENT", "wikigraph-backend/1.0"),
		ResolveTimeout:         getEnvDuration("RESOLVE_TIMEOUT", 15*time.Second),
		ResolveRatePerSecond:   getEnvFloat("RESOLVE_RATE_PER_SECOND", 10),
		ResolveBurst:           getEnvInt("RESOLVE_BURST", 5),

		AWSRegion:      getEnv("AWS_REGION", "us-west-2"),
		SnapshotsTable: getEnv("SNAPSHOTS_TABLE", "wikigraph-snapshots"),
		StatsTable:     getEnv("STATS_TABLE", "wikigraph-stats"),

		SnapshotTTL:     getEnvDuration("SNAPSHOT_TTL", 30*24*time.Hour),
		ViewExtension:   getEnvDuration("VIEW_EXTENSION", 7*24*time.Hour),
		ReplayStepDelay: getEnvDuration("REPLAY_STEP_DELAY", 120*time.Millisecond),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.WikipediaRESTBaseURL == "" {
		return fmt.Errorf("WIKIPEDIA_REST_BASE_URL is required")
	}
	if c.Environment == "production" {
		if c.SnapshotsTable == "" {
			return fmt.Errorf("SNAPSHOTS_TABLE is required in production")
		}
		if c.StatsTable == "" {
			return fmt.Errorf("STATS_TABLE is required in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
