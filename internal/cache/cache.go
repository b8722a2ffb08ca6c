package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// LookupKey generates a cache key for a fact-store lookup. The period may be
// empty, meaning "latest available"; that variant caches under its own key so
// a later explicit-period lookup never collides with it.
func LookupKey(ticker, metric, period string) string {
	raw := strings.ToUpper(ticker) + "|" + metric + "|" + period
	hash := sha256.Sum256([]byte(raw))
	return "finvet:v1:" + hex.EncodeToString(hash[:])
}
