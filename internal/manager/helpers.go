package manager

import (
	"context"
	"fmt"

	"fontd/internal/fetch"
	"fontd/internal/registry"
	"fontd/internal/variant"
)

// familyLocked returns the state for family, creating an idle one.
func (m *Manager) familyLocked(family string) *familyState {
	st, ok := m.families[family]
	if !ok {
		st = &familyState{state: StateIdle, registered: make(map[variant.Key]string)}
		m.families[family] = st
	}
	return st
}

// selectVariants picks every available key for all-variant purposes and the
// nearest key to the requested weight/style otherwise.
func (m *Manager) selectVariants(req LoadRequest, avail variant.Set) ([]variant.Key, error) {
	if len(avail) == 0 {
		return nil, fmt.Errorf("%q: %w", req.Family, fetch.ErrNoUsableVariant)
	}
	if req.Purpose.AllVariants() {
		return avail.Keys(), nil
	}
	match, ok := variant.FindBest(avail, req.Weight, req.Style)
	if !ok {
		return nil, fmt.Errorf("%q: %w", req.Family, fetch.ErrNoUsableVariant)
	}
	if match.Degraded {
		m.log.Warn().Str("family", req.Family).Str("style", string(req.Style)).Str("resolved", match.Key.String()).Msg("requested style unavailable; using opposite style")
	}
	return []variant.Key{match.Key}, nil
}

func (m *Manager) unregistered(family string, keys []variant.Key) []variant.Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.familyLocked(family)
	var out []variant.Key
	for _, k := range keys {
		if _, ok := st.registered[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

func (m *Manager) markRegistered(family string, k variant.Key, postscript string) {
	m.mu.Lock()
	m.familyLocked(family).registered[k] = postscript
	m.mu.Unlock()
}

// loaderFor returns a loader that serves the payload from the binary cache,
// refetching after expiry.
func (m *Manager) loaderFor(family string, k variant.Key) registry.BinaryLoader {
	return func(ctx context.Context) ([]byte, error) {
		e, err := m.bins.Fetch(ctx, family, k.Weight, k.Style)
		if err != nil {
			return nil, err
		}
		return e.Data, nil
	}
}
