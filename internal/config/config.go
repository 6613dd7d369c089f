package config

import (
	"os"
	"strconv"

	"gobest/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Sampler  SamplerConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection settings. An empty URL disables
// persistence.
type DatabaseConfig struct {
	URL string
}

// SamplerConfig holds the default sampling parameters
type SamplerConfig struct {
	Draws        int
	Tuning       int
	Chains       int
	TargetAccept float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Sampler: SamplerConfig{
			Draws:        getEnvInt("SAMPLER_DRAWS", 2000),
			Tuning:       getEnvInt("SAMPLER_TUNING", 1000),
			Chains:       getEnvInt("SAMPLER_CHAINS", 2),
			TargetAccept: getEnvFloat("SAMPLER_TARGET_ACCEPT", 0.9),
		},
	}

	if cfg.Sampler.Draws < 1 {
		return nil, errors.ConfigInvalid("SAMPLER_DRAWS must be positive")
	}
	if cfg.Sampler.Tuning < 0 {
		return nil, errors.ConfigInvalid("SAMPLER_TUNING must not be negative")
	}
	if cfg.Sampler.Chains < 1 {
		return nil, errors.ConfigInvalid("SAMPLER_CHAINS must be positive")
	}
	if cfg.Sampler.TargetAccept <= 0 || cfg.Sampler.TargetAccept >= 1 {
		return nil, errors.ConfigInvalid("SAMPLER_TARGET_ACCEPT must be in (0, 1)")
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
