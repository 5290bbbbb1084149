package manager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"fontd/internal/backoff"
	"fontd/internal/catalog"
	"fontd/internal/fetch"
	"fontd/internal/registry"
	"fontd/internal/resources"
)

type Manager struct {
	cat    *catalog.Cache
	sheets *fetch.StyleSheets
	bins   *fetch.Binaries
	res    *resources.Table
	reg    *registry.Registry

	maxActive   int
	loadTimeout time.Duration
	binaryLimit int
	retry       backoff.Policy
	publisher   EventPublisher
	now         func() time.Time
	log         zerolog.Logger
	startTime   time.Time

	recentPath string
	maxRecent  int
	saveMu     sync.Mutex

	mu       sync.Mutex
	families map[string]*familyState
	queue    []queueEntry
	seq      uint64
	active   int
	online   bool
	slow     bool
	closed   bool
	started  bool
	recent   []string

	// slotFreed carries at most one pending "a load finished" signal.
	slotFreed chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	requests  atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
}

// SetEventPublisher replaces the event sink; nil restores the no-op publisher.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	m.mu.Lock()
	m.publisher = p
	m.mu.Unlock()
}

func (m *Manager) publish(e Event) {
	m.mu.Lock()
	p := m.publisher
	m.mu.Unlock()
	p.Publish(e)
}

// Start runs the queue pump and the resource sweeper until ctx is done or the
// manager is closed. It returns immediately.
func (m *Manager) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	if m.started || m.closed {
		m.mu.Unlock()
		cancel()
		return
	}
	m.started = true
	m.wg.Add(2)
	m.mu.Unlock()

	stop := context.AfterFunc(m.ctx, cancel)
	go func() {
		defer m.wg.Done()
		m.pump(runCtx)
	}()
	go func() {
		defer m.wg.Done()
		defer stop()
		defer cancel()
		m.res.Run(runCtx)
	}()
}

// Close stops background work, cancels running loads and waits for them.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()
	m.cancel()
	m.wg.Wait()
	return nil
}

// Registry exposes the registration registry.
func (m *Manager) Registry() *registry.Registry { return m.reg }

// Resources exposes the resource table.
func (m *Manager) Resources() *resources.Table { return m.res }

// Catalog exposes the catalog cache.
func (m *Manager) Catalog() *catalog.Cache { return m.cat }

// Ready reports whether the manager accepts loads.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed && m.cat != nil && m.sheets != nil
}
