// Package catalog caches the remote font catalog (family -> variants -> file URLs).
//
// Reads are served from memory while the snapshot is younger than the TTL. Past half
// the TTL one background refresh is started while readers keep the stale copy. Past
// the TTL the next reader blocks on a fetch that every concurrent reader shares.
package catalog

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"fontd/internal/metrics"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultTTL          = 24 * time.Hour
	DefaultFetchTimeout = 30 * time.Second
)

const flightKey = "catalog"

// Config configures a Cache.
type Config struct {
	Source       Source
	TTL          time.Duration
	FetchTimeout time.Duration
	Now          func() time.Time
	Logger       zerolog.Logger
}

// Stats is a read-only snapshot of cache counters.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Shared      uint64
	Fetches     uint64
	FetchErrors uint64
	Refreshes   uint64
}

// Cache is the single owner of the cached catalog.
type Cache struct {
	src          Source
	ttl          time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	log          zerolog.Logger

	sf singleflight.Group

	mu         sync.Mutex
	cur        *Catalog
	gen        uint64
	refreshing bool

	requests    atomic.Uint64
	hits        atomic.Uint64
	misses      atomic.Uint64
	shared      atomic.Uint64
	fetches     atomic.Uint64
	fetchErrors atomic.Uint64
	refreshes   atomic.Uint64
}

// New constructs a Cache, applying defaults for unset fields.
func New(cfg Config) *Cache {
	c := &Cache{
		src:          cfg.Source,
		ttl:          cfg.TTL,
		fetchTimeout: cfg.FetchTimeout,
		now:          cfg.Now,
		log:          cfg.Logger,
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.fetchTimeout <= 0 {
		c.fetchTimeout = DefaultFetchTimeout
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Get returns the cached catalog, fetching it when absent or expired.
func (c *Cache) Get(ctx context.Context) (*Catalog, error) {
	c.mu.Lock()
	if cur := c.cur; cur != nil {
		age := cur.Age(c.now())
		if age < c.ttl {
			if age > c.ttl/2 && !c.refreshing {
				c.refreshing = true
				go c.refresh(c.gen)
			}
			c.mu.Unlock()
			c.hits.Add(1)
			metrics.CatalogLookupsTotal.WithLabelValues("hit").Inc()
			return cur, nil
		}
		c.log.Debug().Dur("age", age).Msg("catalog expired")
		c.cur = nil
	}
	gen := c.gen
	c.mu.Unlock()

	c.misses.Add(1)
	metrics.CatalogLookupsTotal.WithLabelValues("miss").Inc()
	return c.fetch(ctx, gen, "blocking")
}

// fetch joins or starts the single in-flight fetch. The fetch itself runs detached
// from ctx so one caller giving up does not fail the others.
func (c *Cache) fetch(ctx context.Context, gen uint64, mode string) (*Catalog, error) {
	ch := c.sf.DoChan(flightKey, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		c.fetches.Add(1)
		start := time.Now()
		entries, err := c.src.Fetch(fctx)
		if err != nil {
			c.fetchErrors.Add(1)
			metrics.CatalogFetchesTotal.WithLabelValues(mode, "error").Inc()
			c.log.Warn().Str("mode", mode).Err(err).Msg("catalog fetch failed")
			return nil, err
		}
		cat := newCatalog(entries, c.now(), c.requests.Add(1))
		c.mu.Lock()
		if c.gen == gen {
			c.cur = cat
		}
		c.mu.Unlock()
		metrics.CatalogFetchesTotal.WithLabelValues(mode, "ok").Inc()
		c.log.Info().Str("mode", mode).Int("families", len(entries)).
			Dur("dur", time.Since(start)).Uint64("request", cat.Request).Msg("catalog fetched")
		return cat, nil
	})
	select {
	case res := <-ch:
		if res.Shared {
			c.shared.Add(1)
			metrics.CatalogLookupsTotal.WithLabelValues("shared").Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Catalog), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) refresh(gen uint64) {
	c.refreshes.Add(1)
	metrics.CatalogLookupsTotal.WithLabelValues("stale").Inc()
	if _, err := c.fetch(context.Background(), gen, "background"); err != nil {
		c.log.Warn().Err(err).Msg("background catalog refresh failed; serving stale copy")
	}
	c.mu.Lock()
	if c.gen == gen {
		c.refreshing = false
	}
	c.mu.Unlock()
}

// FindFamily looks up a family by exact name. Blank names are absent without
// touching the network.
func (c *Cache) FindFamily(ctx context.Context, family string) (Entry, bool, error) {
	if strings.TrimSpace(family) == "" {
		return Entry{}, false, nil
	}
	cat, err := c.Get(ctx)
	if err != nil {
		return Entry{}, false, err
	}
	e, ok := cat.Find(family)
	return e, ok, nil
}

// Invalidate drops the cached catalog and any refresh state. An in-flight fetch
// keeps running but its result is not cached.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.cur = nil
	c.gen++
	c.refreshing = false
	c.mu.Unlock()
	c.sf.Forget(flightKey)
	c.log.Debug().Msg("catalog invalidated")
}

// Peek returns the cached catalog without fetching, or nil.
func (c *Cache) Peek() *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Shared:      c.shared.Load(),
		Fetches:     c.fetches.Load(),
		FetchErrors: c.fetchErrors.Load(),
		Refreshes:   c.refreshes.Load(),
	}
}
