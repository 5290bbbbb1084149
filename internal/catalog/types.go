package catalog

import (
	"sort"
	"time"
)

// Entry is one remote family's metadata. Entries are immutable once fetched; a
// refresh replaces the whole Catalog.
type Entry struct {
	Family       string            `json:"family"`
	Category     string            `json:"category,omitempty"`
	Variants     []string          `json:"variants"`
	Files        map[string]string `json:"files"`
	LastModified string            `json:"lastModified,omitempty"`
}

// response is the wire shape of the catalog endpoint.
type response struct {
	Kind  string  `json:"kind"`
	Items []Entry `json:"items"`
}

// Catalog is a fetched snapshot of the remote catalog.
type Catalog struct {
	Entries   []Entry
	FetchedAt time.Time
	// Request increases by one for every catalog the cache builds.
	Request uint64

	byName map[string]int
}

func newCatalog(entries []Entry, fetchedAt time.Time, request uint64) *Catalog {
	c := &Catalog{
		Entries:   entries,
		FetchedAt: fetchedAt,
		Request:   request,
		byName:    make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if _, dup := c.byName[e.Family]; !dup {
			c.byName[e.Family] = i
		}
	}
	return c
}

// Find looks up a family by exact, case-sensitive name.
func (c *Catalog) Find(family string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.byName[family]
	if !ok {
		return Entry{}, false
	}
	return c.Entries[i], true
}

// Families returns the sorted family names.
func (c *Catalog) Families() []string {
	out := make([]string, 0, len(c.byName))
	for name := range c.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Age reports how old the snapshot is at now.
func (c *Catalog) Age(now time.Time) time.Duration { return now.Sub(c.FetchedAt) }
