// Package env consolidates all environment variable reading for the application.
// Command line flags take precedence over these values (see cmd/binwalk).
package env

import (
	"os"
	"strconv"
)

// Environment variable names (single source of truth)
const (
	LogLevel   = "LOG_LEVEL"
	ConfigPath = "BINWALK_CONFIG"
	MaxDepth   = "BINWALK_MAX_DEPTH"
	Workers    = "BINWALK_WORKERS"
)

// String returns the value of key, or fallback if it is unset or empty.
func String(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Int returns the integer value of key, or fallback if it is unset,
// empty, or not a valid integer.
func Int(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
