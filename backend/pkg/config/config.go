package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Neo4j driver tuning
	MaxConnectionPoolSize        int
	ConnectionAcquisitionTimeout time.Duration
	MaxTransactionRetryTime      time.Duration

	// Firestore (backfill only)
	FirestoreProjectID   string
	FirestoreAccessToken string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		Neo4jURI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:     getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword: os.Getenv("NEO4J_PASSWORD"), // no default on purpose

		MaxConnectionPoolSize:        getEnvInt("NEO4J_MAX_POOL_SIZE", 10),
		ConnectionAcquisitionTimeout: getEnvDuration("NEO4J_ACQUISITION_TIMEOUT", 30*time.Second),
		MaxTransactionRetryTime:      getEnvDuration("NEO4J_TXN_RETRY_TIME", 15*time.Second),

		FirestoreProjectID:   getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreAccessToken: getEnv("FIRESTORE_ACCESS_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
// A missing Neo4j password is a startup error: the service must crash
// before accepting any change events rather than fail every write later.
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	return nil
}

// ValidateBackfill checks the extra values the backfill utility needs
func (c *Config) ValidateBackfill() error {
	if c.FirestoreProjectID == "" {
		return fmt.Errorf("FIRESTORE_PROJECT_ID is required")
	}
	if c.FirestoreAccessToken == "" {
		return fmt.Errorf("FIRESTORE_ACCESS_TOKEN is required")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
