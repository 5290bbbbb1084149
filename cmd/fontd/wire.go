package main

import (
	"net/http"

	"github.com/rs/zerolog"

	"fontd/internal/catalog"
	"fontd/internal/common/httpclient"
	"fontd/internal/config"
	"fontd/internal/fetch"
	"fontd/internal/manager"
	"fontd/internal/registry"
	"fontd/internal/resources"
)

// components are the services one process runs.
type components struct {
	catalog  *catalog.Cache
	injector *fetch.HTTPInjector
	reg      *registry.Registry
	res      *resources.Table
	mgr      *manager.Manager
}

// build wires the catalog, fetchers, resource table, registry and manager from cfg.
// The registry is bound to consumer; nil leaves it unbound.
func build(cfg config.Config, consumer registry.Consumer, log zerolog.Logger) *components {
	var client *http.Client
	if d := cfg.FetchTimeout.Std(); d > 0 {
		client = httpclient.New(httpclient.WithTimeout(d))
	} else {
		client = httpclient.New()
	}

	src := catalog.NewHTTPSource(cfg.CatalogURL, cfg.APIKey, log.With().Str("component", "catalog").Logger())
	src.Client = client
	cat := catalog.New(catalog.Config{
		Source:       src,
		TTL:          cfg.CatalogTTL.Std(),
		FetchTimeout: cfg.FetchTimeout.Std(),
		Logger:       log.With().Str("component", "catalog").Logger(),
	})

	inj := fetch.NewHTTPInjector(client)
	sheets := fetch.NewStyleSheets(fetch.StyleSheetConfig{
		BaseURL:  cfg.StyleSheetURL,
		Injector: inj,
		Logger:   log.With().Str("component", "stylesheets").Logger(),
	})
	bins := fetch.NewBinaries(fetch.BinaryConfig{
		Catalog: cat,
		Client:  client,
		Cache:   fetch.NewBinaryCache(cfg.BinaryCacheEntries, cfg.BinaryCacheTTL.Std(), nil),
		Logger:  log.With().Str("component", "binaries").Logger(),
	})

	c := &components{catalog: cat, injector: inj}
	c.reg = registry.New(consumer, log.With().Str("component", "registry").Logger())
	c.res = resources.New(resources.Config{
		Remover:       inj,
		MaxAge:        cfg.ResourceMaxAge.Std(),
		Cap:           cfg.MaxResources,
		SweepInterval: cfg.SweepInterval.Std(),
		// recently used families stay referenced so the sweeper keeps them
		Scanner: resources.ScannerFunc(func() []string {
			if c.mgr == nil {
				return nil
			}
			return c.mgr.Recent()
		}),
		Logger: log.With().Str("component", "resources").Logger(),
	})
	c.mgr = manager.NewWithConfig(manager.ManagerConfig{
		Catalog:     cat,
		StyleSheets: sheets,
		Binaries:    bins,
		Resources:   c.res,
		Registry:    c.reg,
		MaxActive:   cfg.MaxActive,
		LoadTimeout: cfg.LoadTimeout.Std(),
		RecentPath:  cfg.RecentPath,
		MaxRecent:   cfg.MaxRecent,
		Publisher:   logPublisher(log.With().Str("component", "events").Logger()),
		Logger:      log.With().Str("component", "manager").Logger(),
	})
	return c
}

// logConsumer reports each newly available variant in the log. The daemon has
// no renderer of its own; clients pull payloads over HTTP.
func logConsumer(log zerolog.Logger) registry.Consumer {
	return registry.ConsumerFunc(func(rec registry.Record) error {
		log.Info().
			Str("family", rec.Family).
			Int("weight", rec.Weight).
			Str("style", string(rec.Style)).
			Str("postscript", rec.PostScriptName).
			Msg("font available")
		return nil
	})
}

// logPublisher writes lifecycle events at debug level.
func logPublisher(log zerolog.Logger) manager.EventPublisher {
	return manager.PublisherFunc(func(e manager.Event) {
		ev := log.Debug().Str("event", e.Name).Str("family", e.Family)
		for k, v := range e.Fields {
			ev = ev.Interface(k, v)
		}
		ev.Msg("load event")
	})
}
