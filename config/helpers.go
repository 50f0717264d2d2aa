package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv returns an integer environment variable or a default value
func getIntEnv(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid value for %s (%q), using default %d", key, value, defaultValue)
		return defaultValue
	}
	return result
}

// getBoolEnv returns a boolean environment variable or a default value
func getBoolEnv(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}

	result, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("invalid value for %s (%q), using default %t", key, value, defaultValue)
		return defaultValue
	}
	return result
}

// getDuration parses a second-valued environment variable into a duration
func getDuration(key string, defaultSeconds int) time.Duration {
	return time.Duration(getIntEnv(key, defaultSeconds)) * time.Second
}

// getDurationMinutes parses a minute-valued environment variable into a duration
func getDurationMinutes(key string, defaultMinutes int) time.Duration {
	return time.Duration(getIntEnv(key, defaultMinutes)) * time.Minute
}

// maskSensitive masks passwords and tokens for config display
func maskSensitive(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return value[:2] + strings.Repeat("*", len(value)-4) + value[len(value)-2:]
}
