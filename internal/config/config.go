package config

import (
	"os"
	"strconv"

	"clusterperm/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
	// MaxConcurrentRuns caps how many permutation runs the API executes at once
	MaxConcurrentRuns int
}

// DatabaseConfig holds run-store connection settings. URL empty means
// persistence is disabled; runs are kept in memory only.
type DatabaseConfig struct {
	URL string
}

// EngineConfig holds permutation engine defaults, overridable per request
type EngineConfig struct {
	Permutations int
	Workers      int
	Alpha        float64
	Seed         int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnv("PORT", "8080"),
			MaxConcurrentRuns: getEnvInt("MAX_CONCURRENT_RUNS", 2),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Engine: EngineConfig{
			Permutations: getEnvInt("PERMUTATIONS", 1024),
			Workers:      getEnvInt("WORKERS", 0), // 0 = all CPUs
			Alpha:        getEnvFloat("ALPHA", 0.05),
			Seed:         int64(getEnvInt("SEED", 0)),
		},
	}

	if cfg.Engine.Permutations < 1 {
		return nil, errors.ConfigInvalid("PERMUTATIONS must be positive")
	}
	if cfg.Engine.Alpha <= 0 || cfg.Engine.Alpha >= 1 {
		return nil, errors.ConfigInvalid("ALPHA must be in (0, 1)")
	}
	if cfg.Server.MaxConcurrentRuns < 1 {
		return nil, errors.ConfigInvalid("MAX_CONCURRENT_RUNS must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
