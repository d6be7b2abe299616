package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores raw title documents keyed by their upstream URL
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a filesystem-safe cache key from a versioner URL.
// A dated title document never changes, so the URL alone identifies it.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "ecfr-v1-" + hex.EncodeToString(hash[:])
}
