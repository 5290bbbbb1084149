package manager

import (
	"encoding/json"
	"os"
	"slices"

	"fontd/internal/common/fsutil"
)

type recentRecord struct {
	Families  []string `json:"families"`
	SavedUnix int64    `json:"saved_unix"`
}

func (m *Manager) loadRecent() {
	if m.recentPath == "" {
		return
	}
	b, err := os.ReadFile(m.recentPath)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Warn().Str("path", m.recentPath).Err(err).Msg("read recent families")
		}
		return
	}
	var rec recentRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		m.log.Warn().Str("path", m.recentPath).Err(err).Msg("decode recent families")
		return
	}
	out := make([]string, 0, m.maxRecent)
	for _, f := range rec.Families {
		if f == "" || slices.Contains(out, f) {
			continue
		}
		out = append(out, f)
		if len(out) == m.maxRecent {
			break
		}
	}
	m.mu.Lock()
	m.recent = out
	m.mu.Unlock()
}

// pushRecentLocked moves family to the front of the recent list.
func (m *Manager) pushRecentLocked(family string) {
	if i := slices.Index(m.recent, family); i >= 0 {
		m.recent = slices.Delete(m.recent, i, i+1)
	}
	m.recent = slices.Insert(m.recent, 0, family)
	if len(m.recent) > m.maxRecent {
		m.recent = m.recent[:m.maxRecent]
	}
}

func (m *Manager) saveRecent() {
	if m.recentPath == "" {
		return
	}
	// saveMu orders writers so the last write carries the newest list.
	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	rec := recentRecord{Families: m.Recent(), SavedUnix: m.now().Unix()}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return
	}
	if err := fsutil.WriteFileAtomic(m.recentPath, b, 0o644); err != nil {
		m.log.Warn().Str("path", m.recentPath).Err(err).Msg("persist recent families")
	}
}

// Recent returns recently loaded families, most recent first.
func (m *Manager) Recent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.recent)
}

// Prewarm requests a low-priority preview of every recent family and returns the
// number admitted.
func (m *Manager) Prewarm() int {
	n := 0
	for _, f := range m.Recent() {
		if err := m.Request(LoadRequest{Family: f, Priority: PriorityLow}); err != nil {
			m.log.Debug().Str("family", f).Err(err).Msg("prewarm skipped")
			continue
		}
		n++
	}
	return n
}
