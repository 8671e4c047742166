package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort    int
	DatabasePath  string
	JWTSecret     string
	AllowedOrigin string // Frontend origin allowed by CORS
	StatsSchedule string // Cron expression for the stats broadcaster
}

// Load loads configuration from environment variables or sets defaults.
// JWT_SECRET has no default: refusing to start beats signing tokens with "".
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &Config{
		ServerPort:    port,
		DatabasePath:  getEnv("DATABASE_PATH", "./spotly.db"),
		JWTSecret:     secret,
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		StatsSchedule: getEnv("STATS_SCHEDULE", "@every 30s"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
