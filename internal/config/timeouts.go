package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the transport settings for DigitalOcean API calls.
// These values can be customized via environment variables.
type Timeouts struct {
	Request  time.Duration // Per HTTP request timeout
	PageSize int           // Items requested per catalog page
}

// LoadTimeouts loads transport configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - DIGITALOCEAN_TIMEOUT_REQUEST (default: 60s)
//   - DIGITALOCEAN_PAGE_SIZE (default: 200)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Request:  parseDuration("DIGITALOCEAN_TIMEOUT_REQUEST", 60*time.Second),
		PageSize: parseInt("DIGITALOCEAN_PAGE_SIZE", 200),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses a positive integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return defaultVal
	}

	return i
}
