package fetch

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"fontd/internal/metrics"
	"fontd/internal/variant"
)

// Defaults applied when corresponding BinaryCache arguments are unset.
const (
	DefaultBinaryTTL     = 24 * time.Hour
	DefaultBinaryEntries = 256
)

// BinaryKey identifies a cached payload.
type BinaryKey struct {
	Family string
	Weight int
	Style  variant.Style
}

// BinaryEntry is one cached outline payload.
type BinaryEntry struct {
	Data          []byte
	Variant       variant.Key
	URL           string
	FetchedAt     time.Time
	FetchDuration time.Duration
}

// BinaryCache holds payloads keyed by family/weight/style. Expiry is pull-based:
// an expired entry reads as absent and is overwritten by the refetch. The LRU
// bound only limits memory.
type BinaryCache struct {
	entries *lru.Cache[BinaryKey, BinaryEntry]
	ttl     time.Duration
	now     func() time.Time
}

// NewBinaryCache constructs a cache holding at most size entries.
func NewBinaryCache(size int, ttl time.Duration, now func() time.Time) *BinaryCache {
	if size <= 0 {
		size = DefaultBinaryEntries
	}
	if ttl <= 0 {
		ttl = DefaultBinaryTTL
	}
	if now == nil {
		now = time.Now
	}
	c, err := lru.New[BinaryKey, BinaryEntry](size)
	if err != nil {
		// only returned for size <= 0, excluded above
		panic(err)
	}
	return &BinaryCache{entries: c, ttl: ttl, now: now}
}

// Get returns a non-expired entry.
func (c *BinaryCache) Get(k BinaryKey) (BinaryEntry, bool) {
	e, ok := c.entries.Get(k)
	if !ok {
		metrics.BinaryCacheTotal.WithLabelValues("miss").Inc()
		return BinaryEntry{}, false
	}
	if c.now().Sub(e.FetchedAt) >= c.ttl {
		metrics.BinaryCacheTotal.WithLabelValues("expired").Inc()
		return BinaryEntry{}, false
	}
	metrics.BinaryCacheTotal.WithLabelValues("hit").Inc()
	return e, true
}

// Put stores e under k.
func (c *BinaryCache) Put(k BinaryKey, e BinaryEntry) { c.entries.Add(k, e) }

// Len returns the number of entries, expired ones included.
func (c *BinaryCache) Len() int { return c.entries.Len() }

// Purge drops every entry.
func (c *BinaryCache) Purge() { c.entries.Purge() }
