package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching lookup and classification results
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a versioned cache key from an identity string,
// e.g. "yahoo:AAPL:price" or "classify:are they profitable"
func Key(identity string) string {
	hash := sha256.Sum256([]byte(identity))
	return "finfact:v1:" + hex.EncodeToString(hash[:])
}
