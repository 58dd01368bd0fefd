// Package config provides configuration for the vcardtool command. Values
// are loaded from environment variables with sensible defaults; a .env
// file in the working directory is honored.
//
// Environment Variables:
//   - LOG_LEVEL: Logging level - debug, info, warn or error (default: info)
//   - EMBED_LOCAL_IMAGES: Embed photos referenced by local file URLs (default: true)
//   - EMBED_INTERNET_IMAGES: Embed photos referenced by remote URLs (default: false)
//   - IGNORE_COMMAS: Leave commas unescaped on write, for consumers that
//     mishandle escaped commas (default: false)
//   - PRODUCT_ID: PRODID value written to cards that do not carry their own
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration values for the vcardtool command.
type Config struct {
	LogLevel string // Logging level (debug, info, warn, error)

	// Writer options
	EmbedLocalImages    bool   // Embed photos with local file URLs
	EmbedInternetImages bool   // Embed photos with remote URLs
	IgnoreCommas        bool   // Use the reduced escape set without commas
	ProductID           string // Default PRODID for written cards
}

// Load creates a Config with values from the environment. It does not
// validate; call Validate on the result before use.
func Load() *Config {
	return &Config{
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		EmbedLocalImages:    getBoolEnv("EMBED_LOCAL_IMAGES", true),
		EmbedInternetImages: getBoolEnv("EMBED_INTERNET_IMAGES", false),
		IgnoreCommas:        getBoolEnv("IGNORE_COMMAS", false),
		ProductID:           getEnv("PRODUCT_ID", ""),
	}
}

// Validate checks the configuration for values that would make the tool
// misbehave at runtime.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q: must be debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// getEnv returns the value of an environment variable, or defaultValue
// when it is unset or empty.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv returns the boolean value of an environment variable, or
// defaultValue when it is unset or unparseable.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
