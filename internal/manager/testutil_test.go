package manager

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fontd/internal/backoff"
	"fontd/internal/catalog"
	"fontd/internal/fetch"
	"fontd/internal/registry"
	"fontd/internal/resources"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// gateInjector records injected URLs. While gate is open (non-nil and not
// closed) AwaitLoad blocks; families listed in failing fail every attempt.
type gateInjector struct {
	mu       sync.Mutex
	seq      int
	urls     []string
	removed  int
	inflight int
	peak     int
	gate     chan struct{}
	failing  map[string]bool
}

func newGateInjector() *gateInjector { return &gateInjector{failing: make(map[string]bool)} }

func (g *gateInjector) hold() {
	g.mu.Lock()
	g.gate = make(chan struct{})
	g.mu.Unlock()
}

func (g *gateInjector) release() {
	g.mu.Lock()
	if g.gate != nil {
		close(g.gate)
		g.gate = nil
	}
	g.mu.Unlock()
}

func (g *gateInjector) setFailing(family string, fail bool) {
	g.mu.Lock()
	g.failing[family] = fail
	g.mu.Unlock()
}

func (g *gateInjector) Inject(_ context.Context, url string) (resources.Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.urls = append(g.urls, url)
	return resources.Handle(url), nil
}

func (g *gateInjector) AwaitLoad(ctx context.Context, h resources.Handle, _ time.Duration) error {
	g.mu.Lock()
	gate := g.gate
	g.inflight++
	if g.inflight > g.peak {
		g.peak = g.inflight
	}
	var fail bool
	for fam, on := range g.failing {
		if on && strings.Contains(string(h), "family="+fam) {
			fail = true
		}
	}
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.inflight--
		g.mu.Unlock()
	}()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return errors.New("style sheet error event")
	}
	return nil
}

func (g *gateInjector) Remove(resources.Handle) {
	g.mu.Lock()
	g.removed++
	g.mu.Unlock()
}

func (g *gateInjector) URLs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.urls...)
}

func (g *gateInjector) Peak() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.peak
}

type recordingConsumer struct {
	mu    sync.Mutex
	names []string
}

func (c *recordingConsumer) OnFontAvailable(rec registry.Record) error {
	c.mu.Lock()
	c.names = append(c.names, rec.PostScriptName)
	c.mu.Unlock()
	return nil
}

func (c *recordingConsumer) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names...)
}

type harness struct {
	m        *Manager
	inj      *gateInjector
	pub      *MemoryPublisher
	consumer *recordingConsumer
	clock    *fakeClock
}

func fastPolicy() backoff.Policy {
	return backoff.Policy{Base: time.Millisecond, MaxAttempts: 3, JitterFunc: func(time.Duration) time.Duration { return 0 }}
}

func testEntries(base string) []catalog.Entry {
	entry := func(family string, tokens ...string) catalog.Entry {
		files := make(map[string]string, len(tokens))
		for _, tok := range tokens {
			files[tok] = base + "/" + strings.ReplaceAll(family, " ", "") + "/" + tok + ".ttf"
		}
		return catalog.Entry{Family: family, Category: "sans-serif", Variants: tokens, Files: files}
	}
	return []catalog.Entry{
		entry("Roboto", "regular", "italic", "700", "700italic"),
		entry("Lobster", "regular"),
		entry("Open Sans", "300", "regular", "italic"),
		entry("Inter", "regular", "700"),
		entry("Lato", "regular"),
		entry("Merriweather", "regular"),
		entry("Oswald", "regular"),
		entry("Flaky", "regular"),
	}
}

// newHarness builds a started manager over in-memory collaborators. tweak may
// adjust the config before construction.
func newHarness(t *testing.T, tweak func(*ManagerConfig)) *harness {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("FONT" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)

	clock := newFakeClock()
	entries := testEntries(srv.URL)
	cat := catalog.New(catalog.Config{Source: catalog.SourceFunc(func(context.Context) ([]catalog.Entry, error) {
		return entries, nil
	})})
	inj := newGateInjector()
	consumer := &recordingConsumer{}
	pub := NewMemoryPublisher()
	cfg := ManagerConfig{
		Catalog: cat,
		StyleSheets: fetch.NewStyleSheets(fetch.StyleSheetConfig{
			BaseURL: "http://sheets.test/css2", Injector: inj, LoadTimeout: time.Second, Retry: fastPolicy(),
		}),
		Binaries:  fetch.NewBinaries(fetch.BinaryConfig{Catalog: cat, Client: srv.Client(), Retry: fastPolicy()}),
		Resources: resources.New(resources.Config{Remover: inj, MaxAge: time.Minute, Now: clock.Now}),
		Registry:  registry.New(consumer, zerolog.Nop()),
		Retry:     backoff.Policy{Base: time.Second},
		Publisher: pub,
		Now:       clock.Now,
	}
	if tweak != nil {
		tweak(&cfg)
	}
	m := NewWithConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	t.Cleanup(func() {
		cancel()
		inj.release()
		_ = m.Close()
	})
	return &harness{m: m, inj: inj, pub: pub, consumer: consumer, clock: clock}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func (h *harness) waitState(t *testing.T, family string, want LoadState) {
	t.Helper()
	waitFor(t, family+" "+string(want), func() bool {
		fs, _ := h.m.FamilyState(family)
		return fs.State == string(want)
	})
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
