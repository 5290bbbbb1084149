package manager

// onEvict is installed as the resource table's eviction hook. A loaded family
// whose resources were removed goes back to idle; cached binaries and
// registrations are kept.
func (m *Manager) onEvict(family, reason string) {
	m.mu.Lock()
	if st, ok := m.families[family]; ok && st.state == StateLoaded {
		st.state = StateIdle
		st.purpose = ""
	}
	m.mu.Unlock()
	m.publish(Event{Name: EventEvicted, Family: family, Fields: map[string]any{"reason": reason}})
}

// Evict removes the family's presentation resources now, regardless of purpose.
func (m *Manager) Evict(family string) bool {
	return m.res.Remove(family)
}

// Sweep runs one resource sweep immediately and returns the evicted families.
func (m *Manager) Sweep() []string {
	return m.res.Sweep()
}
