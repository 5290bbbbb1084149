package manager

import (
	"context"
	"errors"

	"fontd/internal/backoff"
	"fontd/internal/fetch"
	"fontd/internal/resources"
	"fontd/internal/variant"
)

// LoadForPreview requests the regular variant of family at normal priority.
func (m *Manager) LoadForPreview(family string) error {
	return m.Request(LoadRequest{Family: family, Priority: PriorityNormal, Purpose: resources.PurposePreview})
}

// LoadForEditing requests every variant of family at high priority.
func (m *Manager) LoadForEditing(family string) error {
	return m.Request(LoadRequest{Family: family, Priority: PriorityHigh, Purpose: resources.PurposeTextEditing})
}

// LoadStatic requests each family with the static purpose at critical priority.
func (m *Manager) LoadStatic(families []string) error {
	var errs []error
	for _, f := range families {
		if err := m.Request(LoadRequest{Family: f, Priority: PriorityCritical, Purpose: resources.PurposeStatic}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ForceReload discards a loaded or failed state and requests family again.
func (m *Manager) ForceReload(req LoadRequest) error {
	req.ForceReload = true
	return m.Request(req)
}

// IsLoaded reports whether family finished loading and was not evicted since.
func (m *Manager) IsLoaded(family string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.families[family]
	return ok && st.state == StateLoaded
}

// IsLoading reports whether family is queued or running.
func (m *Manager) IsLoading(family string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.families[family]
	return ok && (st.state == StateQueued || st.state == StateActive)
}

// IsRegistered reports whether any variant of family was registered with the consumer.
func (m *Manager) IsRegistered(family string) bool {
	return m.reg.HasFamily(family)
}

// Binary returns the outline payload closest to (weight, style).
func (m *Manager) Binary(ctx context.Context, family string, weight int, style variant.Style) (fetch.BinaryEntry, error) {
	if family == "" {
		return fetch.BinaryEntry{}, invalidRequestError{msg: "family is required"}
	}
	return m.bins.Fetch(ctx, family, weight, style)
}

// Retry re-requests a failed family once the backoff delay for its attempt
// count has passed since the last attempt. Otherwise it does nothing and
// reports false.
func (m *Manager) Retry(family string) (bool, error) {
	m.mu.Lock()
	st, ok := m.families[family]
	if !ok || st.state != StateFailed {
		m.mu.Unlock()
		return false, nil
	}
	wait := backoff.MinWait(m.retry.Base, st.attempts)
	if m.now().Sub(st.lastAttempt) < wait {
		m.mu.Unlock()
		return false, nil
	}
	req := st.req
	req.ForceReload = false
	prevErr := st.lastErr
	// the attempt count is kept so successive retries back off further
	st.state = StateIdle
	st.lastErr = nil
	m.mu.Unlock()

	if err := m.Request(req); err != nil {
		m.mu.Lock()
		if st.state == StateIdle {
			st.state = StateFailed
			st.lastErr = prevErr
		}
		m.mu.Unlock()
		return false, err
	}
	return true, nil
}
