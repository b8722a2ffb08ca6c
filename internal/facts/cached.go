package facts

import (
	"encoding/json"
	"time"

	"github.com/ppiankov/finvet/internal/cache"
)

// CachedStore wraps a Store with a cache layer. Misses are cached too, so a
// batch run over answers full of unverifiable claims does not hammer the
// underlying store with the same absent keys.
type CachedStore struct {
	inner Store
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedStore wraps a store with the given cache
func NewCachedStore(inner Store, c cache.Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, cache: c, ttl: ttl}
}

type cachedLookup struct {
	Found bool  `json:"found"`
	Value Value `json:"value,omitempty"`
}

// Lookup reads through the cache into the underlying store
func (s *CachedStore) Lookup(ticker, metric, period string) (Value, bool) {
	key := cache.LookupKey(ticker, metric, period)

	if data, hit := s.cache.Get(key); hit {
		var entry cachedLookup
		if err := json.Unmarshal(data, &entry); err == nil {
			return entry.Value, entry.Found
		}
		// Corrupt entry falls through to the store
	}

	value, found := s.inner.Lookup(ticker, metric, period)

	if data, err := json.Marshal(cachedLookup{Found: found, Value: value}); err == nil {
		_ = s.cache.Set(key, data, s.ttl)
	}
	return value, found
}
