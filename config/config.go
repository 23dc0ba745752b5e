package config

import (
	"os"
	"strconv"

	"github.com/RyanBlaney/sonido-scales/algorithms/tonal"
	"github.com/RyanBlaney/sonido-scales/logging"
)

// Config holds runtime configuration for the scalefinder command, loaded from
// environment variables
type Config struct {
	LogLevel logging.Level
	Finder   tonal.ScaleFinderParams

	// Values that failed to parse and were replaced by their default
	Invalid []string
}

// Load reads configuration from environment variables with sane defaults
func Load() Config {
	cfg := Config{
		LogLevel: logging.InfoLevel,
		Finder:   tonal.DefaultScaleFinderParams(),
	}

	if v := envStr("SCALEFINDER_LOG_LEVEL", ""); v != "" {
		if level, err := logging.ParseLevel(v); err == nil {
			cfg.LogLevel = level
		} else {
			cfg.Invalid = append(cfg.Invalid, "SCALEFINDER_LOG_LEVEL")
		}
	}

	if v := envStr("SCALEFINDER_METHOD", ""); v != "" {
		if method, err := tonal.ParseCorrelationMethod(v); err == nil {
			cfg.Finder.Method = method
		} else {
			cfg.Invalid = append(cfg.Invalid, "SCALEFINDER_METHOD")
		}
	}

	cfg.Finder.Tolerance = cfg.envFloat("SCALEFINDER_TOLERANCE", cfg.Finder.Tolerance)
	cfg.Finder.MaxCandidates = cfg.envInt("SCALEFINDER_MAX_CANDIDATES", cfg.Finder.MaxCandidates)
	cfg.Finder.PreferLongestHeldRoot = cfg.envBool("SCALEFINDER_PREFER_LONGEST_HELD", cfg.Finder.PreferLongestHeldRoot)

	return cfg
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *Config) envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		c.Invalid = append(c.Invalid, key)
		return fallback
	}
	return n
}

func (c *Config) envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		c.Invalid = append(c.Invalid, key)
		return fallback
	}
	return f
}

func (c *Config) envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.Invalid = append(c.Invalid, key)
		return fallback
	}
	return b
}
