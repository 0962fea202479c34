package marketdata

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/karlseguin/ccache/v3"
)

// Cache is a time-bounded cache for market data lookups. Each entry
// carries its own TTL; a read against an absent or expired key is a miss.
// Entries are overwritten wholesale, so concurrent writers on the same key
// resolve as last-writer-wins.
type Cache struct {
	store *ccache.Cache[any]
}

func NewCache() *Cache {
	return &Cache{store: ccache.New(ccache.Configure[any]())}
}

// Key derives a compact deterministic cache key from an operation name and
// its query parameters: the sorted k:v pairs are joined canonically and
// hashed. Collisions are accepted as out of scope.
func (c *Cache) Key(op string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+":"+params[k])
	}

	h := fnv.New64a()
	h.Write([]byte(strings.Join(pairs, "_")))
	return fmt.Sprintf("%s_%x", op, h.Sum64())
}

// Get returns the cached value for key, or false when the key is absent
// or its entry has expired.
func (c *Cache) Get(key string) (any, bool) {
	item := c.store.Get(key)
	if item == nil || item.Expired() {
		return nil, false
	}
	return item.Value(), true
}

// Set stores value under key with the given TTL.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}
