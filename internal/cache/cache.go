// Package cache provides the read-side caching used in front of the task
// store: an in-process memory level, an optional redis level, and a
// multi-level composition with hit metrics and a circuit breaker guarding
// the remote level.
package cache

import (
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent from every level.
var ErrCacheMiss = errors.New("cache: miss")

// Cache is the interface the service decorator and handlers consume.
type Cache interface {
	Set(key string, value interface{}, ttl time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	DeletePattern(pattern string) error
	Exists(key string) (bool, error)
	Stats() map[string]interface{}
	Health() error
	Close() error
}

// matchPattern supports the exact and trailing-star forms used by
// DeletePattern; "*" matches everything.
func matchPattern(text, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if n := len(pattern); n > 0 && pattern[n-1] == '*' {
		prefix := pattern[:n-1]
		return len(text) >= len(prefix) && text[:len(prefix)] == prefix
	}
	return text == pattern
}
