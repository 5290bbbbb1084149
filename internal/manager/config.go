package manager

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"fontd/internal/backoff"
	"fontd/internal/catalog"
	"fontd/internal/fetch"
	"fontd/internal/registry"
	"fontd/internal/resources"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxActive   = 5
	defaultLoadTimeout = 2 * time.Minute
	defaultMaxRecent   = 5
	defaultBinaryLimit = 4
)

// ManagerConfig encapsulates all tunables and collaborators for Manager construction.
type ManagerConfig struct {
	Catalog     *catalog.Cache
	StyleSheets *fetch.StyleSheets
	Binaries    *fetch.Binaries
	Resources   *resources.Table
	Registry    *registry.Registry

	// MaxActive caps concurrently running loads.
	MaxActive int
	// LoadTimeout bounds one family load end to end.
	LoadTimeout time.Duration
	// BinaryConcurrency limits parallel variant downloads within one family.
	BinaryConcurrency int
	// Retry supplies the base delay for the failed-load eligibility check.
	Retry backoff.Policy

	// RecentPath, when set, persists recently loaded families as JSON.
	RecentPath string
	MaxRecent  int

	Publisher EventPublisher
	Now       func() time.Time
	Logger    zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig. Loads do not drain after
// completion until Start is called.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		cat:        cfg.Catalog,
		sheets:     cfg.StyleSheets,
		bins:       cfg.Binaries,
		res:        cfg.Resources,
		reg:        cfg.Registry,
		retry:      cfg.Retry,
		recentPath: cfg.RecentPath,
		publisher:  cfg.Publisher,
		now:        cfg.Now,
		log:        cfg.Logger,
		families:   make(map[string]*familyState),
		online:     true,
		slotFreed:  make(chan struct{}, 1),
	}
	if cfg.MaxActive <= 0 {
		m.maxActive = defaultMaxActive
	} else {
		m.maxActive = cfg.MaxActive
	}
	if cfg.LoadTimeout <= 0 {
		m.loadTimeout = defaultLoadTimeout
	} else {
		m.loadTimeout = cfg.LoadTimeout
	}
	if cfg.BinaryConcurrency <= 0 {
		m.binaryLimit = defaultBinaryLimit
	} else {
		m.binaryLimit = cfg.BinaryConcurrency
	}
	if cfg.MaxRecent <= 0 {
		m.maxRecent = defaultMaxRecent
	} else {
		m.maxRecent = cfg.MaxRecent
	}
	if m.retry.Base <= 0 {
		m.retry.Base = backoff.DefaultBase
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.reg == nil {
		m.reg = registry.New(nil, m.log)
	}
	if m.res == nil {
		m.res = resources.New(resources.Config{Logger: m.log})
	}
	if m.bins == nil {
		m.bins = fetch.NewBinaries(fetch.BinaryConfig{Catalog: m.cat, Logger: m.log})
	}
	m.res.SetOnEvict(m.onEvict)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.startTime = m.now()
	m.loadRecent()
	return m
}
