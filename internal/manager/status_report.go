package manager

import (
	"sort"

	"fontd/internal/variant"
	"fontd/pkg/types"
)

// Snapshot returns a read-only view of admission state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := make([]string, 0, len(m.queue))
	for _, e := range m.queue {
		q = append(q, e.req.Family)
	}
	return Snapshot{Online: m.online, SlowLink: m.slow, Active: m.active, MaxActive: m.maxActive, Queued: q}
}

func variantDTOs(keys []variant.Key) []types.Variant {
	if len(keys) == 0 {
		return nil
	}
	out := make([]types.Variant, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.Variant{Weight: k.Weight, Style: string(k.Style)})
	}
	return out
}

// statusLocked builds the DTO for one family; m.mu must be held.
func (m *Manager) statusLocked(family string, st *familyState) types.FamilyStatus {
	fs := types.FamilyStatus{
		Family:   family,
		State:    string(st.state),
		Purpose:  string(st.purpose),
		Attempts: st.attempts,
	}
	if st.state == StateQueued || st.state == StateActive || fs.Purpose == "" {
		fs.Purpose = string(st.req.Purpose)
	}
	if st.lastErr != nil {
		fs.LastError = st.lastErr.Error()
	}
	if !st.lastAttempt.IsZero() {
		fs.LastAttemptUnix = st.lastAttempt.Unix()
	}
	for _, name := range st.registered {
		fs.Registered = append(fs.Registered, name)
	}
	sort.Strings(fs.Registered)
	return fs
}

// FamilyState reports the load state of family.
func (m *Manager) FamilyState(family string) (types.FamilyStatus, bool) {
	m.mu.Lock()
	st, ok := m.families[family]
	if !ok {
		m.mu.Unlock()
		return types.FamilyStatus{Family: family, State: string(StateIdle)}, false
	}
	fs := m.statusLocked(family, st)
	m.mu.Unlock()
	fs.Variants = variantDTOs(m.res.Variants(family).Keys())
	return fs, true
}

// Status builds the telemetry response for /status.
func (m *Manager) Status() types.StatusResponse {
	now := m.now()
	m.mu.Lock()
	resp := types.StatusResponse{
		Online:         m.online,
		SlowLink:       m.slow,
		ActiveLoads:    m.active,
		MaxActive:      m.maxActive,
		QueueDepth:     len(m.queue),
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
	names := make([]string, 0, len(m.families))
	for name := range m.families {
		names = append(names, name)
	}
	sort.Strings(names)
	resp.Families = make([]types.FamilyStatus, 0, len(names))
	for _, name := range names {
		resp.Families = append(resp.Families, m.statusLocked(name, m.families[name]))
	}
	m.mu.Unlock()

	for i := range resp.Families {
		resp.Families[i].Variants = variantDTOs(m.res.Variants(resp.Families[i].Family).Keys())
	}
	resp.RequestsTotal = m.requests.Load()
	resp.SucceededTotal = m.succeeded.Load()
	resp.FailedTotal = m.failed.Load()
	resp.BinaryCacheEntries = m.bins.Cache().Len()
	resp.Resources = m.res.Len()
	resp.Registered = m.reg.Len()
	resp.Catalog.AgeSeconds = -1
	if m.cat != nil {
		cs := m.cat.Stats()
		resp.Catalog.Hits = cs.Hits
		resp.Catalog.Misses = cs.Misses
		resp.Catalog.Fetches = cs.Fetches
		resp.Catalog.FetchErrors = cs.FetchErrors
		if c := m.cat.Peek(); c != nil {
			resp.Catalog.Families = len(c.Entries)
			resp.Catalog.AgeSeconds = int64(c.Age(now).Seconds())
		}
	}
	return resp
}
