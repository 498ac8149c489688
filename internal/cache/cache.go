package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores scraped page bodies
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key for a page fetched with a given strategy
func Key(strategy, url string) string {
	hash := sha256.Sum256([]byte(strategy + "\x00" + url))
	return "tierscope:v1:" + strategy + ":" + hex.EncodeToString(hash[:])
}
