// Package resources tracks injected presentation resources (style sheets) per
// family and garbage-collects the ones nobody uses any more.
//
// A tracker is evicted by the periodic sweep only when it is older than MaxAge,
// its family is not referenced by the live document, and its purpose is not
// protected (text-editing, static). Over the hard cap, eligible trackers are
// evicted oldest-first until the table fits again.
package resources

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fontd/internal/metrics"
	"fontd/internal/variant"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultMaxAge        = 30 * time.Minute
	DefaultCap           = 10
	DefaultSweepInterval = 5 * time.Minute
)

// Eviction reasons passed to OnEvict.
const (
	ReasonAge      = "age"
	ReasonCap      = "cap"
	ReasonExplicit = "explicit"
)

// Config configures a Table.
type Config struct {
	Remover       Remover
	Scanner       DocumentScanner
	MaxAge        time.Duration
	Cap           int
	SweepInterval time.Duration
	Now           func() time.Time
	// OnEvict is called after a family's resources were removed.
	OnEvict func(family, reason string)
	Logger  zerolog.Logger
}

// Table is the single owner of the tracker map.
type Table struct {
	remover  Remover
	scanner  DocumentScanner
	maxAge   time.Duration
	limit    int
	interval time.Duration
	now      func() time.Time
	onEvict  func(family, reason string)
	log      zerolog.Logger

	mu       sync.Mutex
	trackers map[string]*Tracker
}

// New constructs a Table, applying defaults for unset fields.
func New(cfg Config) *Table {
	t := &Table{
		remover:  cfg.Remover,
		scanner:  cfg.Scanner,
		maxAge:   cfg.MaxAge,
		limit:    cfg.Cap,
		interval: cfg.SweepInterval,
		now:      cfg.Now,
		onEvict:  cfg.OnEvict,
		log:      cfg.Logger,
		trackers: make(map[string]*Tracker),
	}
	if t.maxAge <= 0 {
		t.maxAge = DefaultMaxAge
	}
	if t.limit <= 0 {
		t.limit = DefaultCap
	}
	if t.interval <= 0 {
		t.interval = DefaultSweepInterval
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// SetOnEvict replaces the eviction callback.
func (t *Table) SetOnEvict(fn func(family, reason string)) {
	t.mu.Lock()
	t.onEvict = fn
	t.mu.Unlock()
}

// Track records a newly injected resource for family, creating the tracker on
// first use and otherwise extending it. The cap is enforced afterwards.
func (t *Table) Track(family string, h Handle, url string, purpose Purpose, keys []variant.Key) {
	now := t.now()
	t.mu.Lock()
	tr, ok := t.trackers[family]
	if !ok {
		tr = &Tracker{Family: family, Purpose: purpose, Variants: make(variant.Set), Created: now}
		t.trackers[family] = tr
	}
	if h != "" {
		tr.Handles = append(tr.Handles, h)
		tr.URLs = append(tr.URLs, url)
	}
	for _, k := range keys {
		tr.Variants[k] = struct{}{}
	}
	tr.Purpose = Upgrade(tr.Purpose, purpose)
	tr.LastUsed = now
	tr.Usage++
	n := len(t.trackers)
	t.mu.Unlock()
	metrics.ResourcesTracked.Set(float64(n))

	if n > t.limit {
		t.EnforceCap()
	}
}

// Replace swaps the family's injected resources for h, removing the superseded
// handles without firing the eviction callback.
func (t *Table) Replace(family string, h Handle, url string, purpose Purpose, keys []variant.Key) {
	t.mu.Lock()
	var stale []Handle
	if tr, ok := t.trackers[family]; ok {
		stale = tr.Handles
		tr.Handles, tr.URLs = nil, nil
		tr.Variants = make(variant.Set)
	}
	remover := t.remover
	t.mu.Unlock()
	if remover != nil {
		for _, old := range stale {
			remover.Remove(old)
		}
	}
	t.Track(family, h, url, purpose, keys)
}

// Touch marks family as used again and upgrades its purpose. It returns false
// when the family has no tracker.
func (t *Table) Touch(family string, purpose Purpose) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr, ok := t.trackers[family]
	if !ok {
		return false
	}
	tr.LastUsed = t.now()
	tr.Usage++
	tr.Purpose = Upgrade(tr.Purpose, purpose)
	return true
}

// Get returns a copy of the tracker for family.
func (t *Table) Get(family string) (Tracker, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr, ok := t.trackers[family]
	if !ok {
		return Tracker{}, false
	}
	return tr.clone(), true
}

// Variants returns a copy of the variant set already injected for family.
func (t *Table) Variants(family string) variant.Set {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(variant.Set)
	if tr, ok := t.trackers[family]; ok {
		for k := range tr.Variants {
			out[k] = struct{}{}
		}
	}
	return out
}

// Len returns the number of tracked families.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.trackers)
}

// Families returns the tracked family names, sorted.
func (t *Table) Families() []string {
	t.mu.Lock()
	out := make([]string, 0, len(t.trackers))
	for f := range t.trackers {
		out = append(out, f)
	}
	t.mu.Unlock()
	sort.Strings(out)
	return out
}

func (t *Table) referenced() map[string]bool {
	out := make(map[string]bool)
	if t.scanner == nil {
		return out
	}
	for _, f := range t.scanner.ReferencedFamilies() {
		out[f] = true
	}
	return out
}

// Sweep evicts stale, unreferenced, unprotected trackers and refreshes the
// referenced ones. It returns the evicted families.
func (t *Table) Sweep() []string {
	refs := t.referenced()
	now := t.now()
	var victims []*Tracker

	t.mu.Lock()
	for fam, tr := range t.trackers {
		if refs[fam] {
			tr.LastUsed = now
			continue
		}
		if tr.Purpose.Protected() {
			continue
		}
		if now.Sub(tr.LastUsed) > t.maxAge {
			victims = append(victims, tr)
			delete(t.trackers, fam)
		}
	}
	n := len(t.trackers)
	t.mu.Unlock()

	evicted := t.release(victims, ReasonAge)
	metrics.ResourcesTracked.Set(float64(n))
	if n > t.limit {
		evicted = append(evicted, t.EnforceCap()...)
	}
	if len(evicted) > 0 {
		t.log.Info().Strs("families", evicted).Int("remaining", t.Len()).Msg("resource sweep evicted")
	}
	return evicted
}

// EnforceCap evicts eligible trackers oldest-first until the table is back
// within the cap or nothing eligible remains.
func (t *Table) EnforceCap() []string {
	refs := t.referenced()
	var victims []*Tracker

	t.mu.Lock()
	over := len(t.trackers) - t.limit
	if over > 0 {
		candidates := make([]*Tracker, 0, len(t.trackers))
		for fam, tr := range t.trackers {
			if refs[fam] || tr.Purpose.Protected() {
				continue
			}
			candidates = append(candidates, tr)
		}
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].LastUsed.Before(candidates[j].LastUsed)
		})
		if over > len(candidates) {
			over = len(candidates)
		}
		victims = candidates[:over]
		for _, tr := range victims {
			delete(t.trackers, tr.Family)
		}
	}
	n := len(t.trackers)
	t.mu.Unlock()

	metrics.ResourcesTracked.Set(float64(n))
	return t.release(victims, ReasonCap)
}

// Remove evicts family unconditionally.
func (t *Table) Remove(family string) bool {
	t.mu.Lock()
	tr, ok := t.trackers[family]
	if ok {
		delete(t.trackers, family)
	}
	n := len(t.trackers)
	t.mu.Unlock()
	if !ok {
		return false
	}
	metrics.ResourcesTracked.Set(float64(n))
	t.release([]*Tracker{tr}, ReasonExplicit)
	return true
}

// release removes the injected resources of already-detached trackers.
func (t *Table) release(victims []*Tracker, reason string) []string {
	if len(victims) == 0 {
		return nil
	}
	t.mu.Lock()
	onEvict := t.onEvict
	t.mu.Unlock()
	out := make([]string, 0, len(victims))
	for _, tr := range victims {
		if t.remover != nil {
			for _, h := range tr.Handles {
				t.remover.Remove(h)
			}
		}
		metrics.ResourcesEvictedTotal.WithLabelValues(reason).Inc()
		t.log.Debug().Str("family", tr.Family).Str("reason", reason).Msg("resource evicted")
		if onEvict != nil {
			onEvict(tr.Family, reason)
		}
		out = append(out, tr.Family)
	}
	return out
}

// Run sweeps every SweepInterval until ctx is done.
func (t *Table) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sweep()
		}
	}
}
