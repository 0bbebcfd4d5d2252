package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
)

// GetEnv returns the environment variable or the fallback when unset.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// GetEnvAsInt returns the environment variable parsed as an int, or the
// fallback when unset or unparseable.
func GetEnvAsInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// GetEnvAsBool returns the environment variable parsed as a bool, or the
// fallback when unset or unparseable.
func GetEnvAsBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

// GetEnvAsDuration returns the environment variable parsed as a duration
// ("30s", "5m"), or the fallback when unset or unparseable.
func GetEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// IsValidUUID reports whether s parses as a UUID.
func IsValidUUID(s string) bool {
	_, err := uuid.FromString(s)
	return err == nil
}
