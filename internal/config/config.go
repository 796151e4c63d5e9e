// Package config provides configuration management for the cache service.
// It handles loading configuration from environment variables with sensible
// defaults and validates the configuration to ensure the service starts safely.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//
// Redis Configuration:
//   - REDIS_ADDRESS: Redis server address (default: localhost:6379)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//
// Cache Configuration:
//   - CACHE_NAMESPACE: Default key namespace (default: default)
//   - CACHE_DEFAULT_TTL: Default entry time-to-live (default: 5m)
//   - LOCAL_CACHE_MAX_SIZE: In-process cache capacity in entries (default: 1000)
//
// All values are read once at construction and never revisited at runtime.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the cache service.
type Config struct {
	// Application settings
	Port     string // Server port number
	LogLevel string // Logging level (debug, info, warn, error)

	// Redis configuration for the remote cache backend
	RedisAddress  string // Redis server address (host:port)
	RedisPassword string // Redis authentication password
	RedisDB       string // Redis database number (0-15)
	RedisPoolSize string // Redis connection pool size

	// Cache behavior
	CacheNamespace    string        // Default namespace prefix for remote keys
	CacheDefaultTTL   time.Duration // Default entry TTL
	LocalCacheMaxSize int           // Capacity of the in-process fallback cache
}

// Load creates a new Config instance with values loaded from environment
// variables. If an environment variable is not set, the corresponding default
// value is used.
//
// This function does not validate the configuration - call Validate() on the
// returned Config before use.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		RedisPoolSize: getEnv("REDIS_POOL_SIZE", "10"),

		CacheNamespace:    getEnv("CACHE_NAMESPACE", "default"),
		CacheDefaultTTL:   getDurationEnv("CACHE_DEFAULT_TTL", 5*time.Minute),
		LocalCacheMaxSize: getIntEnv("LOCAL_CACHE_MAX_SIZE", 1000),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves an integer environment variable value or returns a
// default value when unset or unparseable.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv retrieves a duration environment variable value (e.g. "30s",
// "5m") or returns a default value when unset or unparseable.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks that all configuration values are usable. The service
// should call this after Load and before constructing any component.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
		return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
	}

	if poolSize, err := strconv.Atoi(c.RedisPoolSize); err != nil || poolSize < 1 {
		return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
	}

	if c.CacheNamespace == "" {
		return fmt.Errorf("CACHE_NAMESPACE must not be empty")
	}

	if c.CacheDefaultTTL <= 0 {
		return fmt.Errorf("CACHE_DEFAULT_TTL must be a positive duration")
	}

	if c.LocalCacheMaxSize < 1 {
		return fmt.Errorf("LOCAL_CACHE_MAX_SIZE must be a positive number")
	}

	return nil
}

// RedisDBInt returns the configured Redis database index as an int.
// Validate must have been called first.
func (c *Config) RedisDBInt() int {
	db, _ := strconv.Atoi(c.RedisDB)
	return db
}

// RedisPoolSizeInt returns the configured pool size as an int.
// Validate must have been called first.
func (c *Config) RedisPoolSizeInt() int {
	size, _ := strconv.Atoi(c.RedisPoolSize)
	return size
}
