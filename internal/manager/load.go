package manager

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"fontd/internal/catalog"
	"fontd/internal/fetch"
	"fontd/internal/fontmeta"
	"fontd/internal/registry"
	"fontd/internal/variant"
)

// load runs the pipeline for one family: catalog lookup, variant selection,
// style sheet injection for variants not yet present, and, for purposes that need
// every variant, binary download and registration.
func (m *Manager) load(ctx context.Context, req LoadRequest) error {
	entry, ok, err := m.cat.FindFamily(ctx, req.Family)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%q: %w", req.Family, fetch.ErrFamilyNotFound)
	}
	want, err := m.selectVariants(req, variant.Discover(entry.Variants))
	if err != nil {
		return err
	}

	have := m.res.Variants(req.Family)
	if req.ForceReload {
		have = nil
	}
	if missing := fetch.Missing(want, have); len(missing) > 0 {
		h, url, err := m.sheets.Load(ctx, req.Family, missing)
		if err != nil {
			return err
		}
		if req.ForceReload {
			m.res.Replace(req.Family, h, url, req.Purpose, missing)
		} else {
			m.res.Track(req.Family, h, url, req.Purpose, missing)
		}
	} else {
		m.res.Touch(req.Family, req.Purpose)
	}

	if !req.Purpose.AllVariants() {
		return nil
	}
	return m.registerVariants(ctx, entry, want)
}

// registerVariants downloads and registers every key not registered yet. The
// family counts as loaded when at least one variant succeeds; the rest are logged.
func (m *Manager) registerVariants(ctx context.Context, entry catalog.Entry, keys []variant.Key) error {
	todo := m.unregistered(entry.Family, keys)
	if len(todo) == 0 {
		return nil
	}
	var (
		g  errgroup.Group
		ok atomic.Int32
	)
	g.SetLimit(m.binaryLimit)
	for _, k := range todo {
		g.Go(func() error {
			be, err := m.bins.FetchVariant(ctx, entry, k)
			if err != nil {
				m.log.Warn().Str("family", entry.Family).Str("variant", k.String()).Err(err).Msg("variant binary unavailable")
				return err
			}
			rec := registry.Record{
				Family:         entry.Family,
				Weight:         k.Weight,
				Style:          k.Style,
				PostScriptName: fontmeta.PostScriptName(be.Data, entry.Family, k),
				Loader:         m.loaderFor(entry.Family, k),
			}
			if err := m.reg.Register(rec); err != nil {
				return err
			}
			m.markRegistered(entry.Family, k, rec.PostScriptName)
			ok.Add(1)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		return nil
	}
	if ok.Load() == 0 {
		return err
	}
	m.log.Warn().Str("family", entry.Family).Int32("registered", ok.Load()).Int("requested", len(todo)).Err(err).Msg("family partially registered")
	return nil
}
