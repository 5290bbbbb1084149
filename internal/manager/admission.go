package manager

import (
	"context"
	"fmt"
	"slices"

	"fontd/internal/backoff"
	"fontd/internal/metrics"
	"fontd/internal/resources"
)

// Request admits req. It is a no-op when the family is already loaded for an
// equal or weaker purpose, is queued or running, or failed too recently for its
// backoff delay to have passed; otherwise the load starts
// when a slot is free and the host is online, and is queued when not.
func (m *Manager) Request(req LoadRequest) error {
	req = req.normalized()
	if req.Family == "" {
		return invalidRequestError{msg: "family is required"}
	}
	if _, ok := resources.ParsePurpose(string(req.Purpose)); !ok {
		return invalidRequestError{msg: fmt.Sprintf("unknown purpose %q", req.Purpose)}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	st := m.familyLocked(req.Family)
	if req.ForceReload && st.state != StateActive && st.state != StateQueued {
		st.state = StateIdle
		st.attempts = 0
		st.lastErr = nil
	}
	switch st.state {
	case StateLoaded:
		if st.purpose.Covers(req.Purpose) {
			m.mu.Unlock()
			m.res.Touch(req.Family, req.Purpose)
			return nil
		}
		req.Purpose = resources.Upgrade(st.purpose, req.Purpose)
	case StateActive:
		if !st.req.Purpose.Covers(req.Purpose) {
			st.pending = resources.Upgrade(st.pending, req.Purpose)
		}
		m.mu.Unlock()
		return nil
	case StateQueued:
		m.mergeQueuedLocked(req)
		m.mu.Unlock()
		return nil
	case StateFailed:
		if IsPermanent(st.lastErr) {
			err := &LoadError{Family: req.Family, Attempts: st.attempts, Err: st.lastErr}
			m.mu.Unlock()
			return err
		}
		if m.now().Sub(st.lastAttempt) < backoff.MinWait(m.retry.Base, st.attempts) {
			m.mu.Unlock()
			return nil
		}
	}
	if m.slow && req.Priority <= PriorityNormal {
		m.mu.Unlock()
		m.publish(Event{Name: EventSkipped, Family: req.Family, Fields: map[string]any{"priority": req.Priority.String()}})
		return slowLinkError{family: req.Family, priority: req.Priority}
	}
	m.requests.Add(1)
	st.req = req
	if m.online && m.active < m.maxActive {
		m.startLocked(st)
		m.mu.Unlock()
		return nil
	}
	m.enqueueLocked(st, req)
	depth := len(m.queue)
	m.mu.Unlock()
	m.publish(Event{Name: EventQueued, Family: req.Family, Fields: map[string]any{
		"priority": req.Priority.String(), "purpose": string(req.Purpose), "depth": depth,
	}})
	return nil
}

// queuedBefore orders the queue: higher priority first, then arrival order.
func queuedBefore(a, b queueEntry) bool {
	if a.req.Priority != b.req.Priority {
		return a.req.Priority > b.req.Priority
	}
	return a.seq < b.seq
}

func (m *Manager) insertLocked(e queueEntry) {
	i := slices.IndexFunc(m.queue, func(q queueEntry) bool { return queuedBefore(e, q) })
	if i < 0 {
		i = len(m.queue)
	}
	m.queue = slices.Insert(m.queue, i, e)
	metrics.QueueDepth.Set(float64(len(m.queue)))
}

func (m *Manager) enqueueLocked(st *familyState, req LoadRequest) {
	m.seq++
	st.state = StateQueued
	m.insertLocked(queueEntry{req: req, seq: m.seq})
}

// mergeQueuedLocked folds a duplicate request into the family's queue entry,
// keeping the stronger purpose and the higher priority.
func (m *Manager) mergeQueuedLocked(req LoadRequest) {
	i := slices.IndexFunc(m.queue, func(q queueEntry) bool { return q.req.Family == req.Family })
	if i < 0 {
		return
	}
	e := m.queue[i]
	e.req.Purpose = resources.Upgrade(e.req.Purpose, req.Purpose)
	e.req.ForceReload = e.req.ForceReload || req.ForceReload
	if req.Priority > e.req.Priority {
		e.req.Priority = req.Priority
	}
	m.queue = slices.Delete(m.queue, i, i+1)
	m.insertLocked(e)
	m.families[req.Family].req = e.req
}

func (m *Manager) startLocked(st *familyState) {
	st.state = StateActive
	st.lastAttempt = m.now()
	m.active++
	metrics.ActiveLoads.Set(float64(m.active))
	m.wg.Add(1)
	go m.run(st.req)
}

func (m *Manager) run(req LoadRequest) {
	defer m.wg.Done()
	m.publish(Event{Name: EventStart, Family: req.Family, Fields: map[string]any{
		"priority": req.Priority.String(), "purpose": string(req.Purpose),
	}})
	ctx, cancel := context.WithTimeout(m.ctx, m.loadTimeout)
	err := m.load(ctx, req)
	cancel()
	m.finish(req, err)
}

// finish records the outcome, releases the slot and signals the pump.
func (m *Manager) finish(req LoadRequest, err error) {
	m.mu.Lock()
	m.active--
	metrics.ActiveLoads.Set(float64(m.active))
	st := m.familyLocked(req.Family)
	var upgrade *LoadRequest
	if err == nil {
		st.state = StateLoaded
		st.purpose = resources.Upgrade(st.purpose, req.Purpose)
		st.attempts = 0
		st.lastErr = nil
		st.loadedAt = m.now()
		m.succeeded.Add(1)
		m.pushRecentLocked(req.Family)
		if st.pending != "" && !st.purpose.Covers(st.pending) {
			next := st.req
			next.Purpose = st.pending
			next.ForceReload = false
			upgrade = &next
		}
	} else {
		st.state = StateFailed
		st.attempts++
		st.lastErr = err
		st.lastAttempt = m.now()
		m.failed.Add(1)
	}
	st.pending = ""
	attempts := st.attempts
	m.mu.Unlock()

	select {
	case m.slotFreed <- struct{}{}:
	default:
	}

	if err != nil {
		metrics.LoadsTotal.WithLabelValues(string(req.Purpose), "failed").Inc()
		m.log.Warn().Str("family", req.Family).Int("attempts", attempts).Bool("permanent", IsPermanent(err)).Err(err).Msg("font load failed")
		m.publish(Event{Name: EventFailed, Family: req.Family, Fields: map[string]any{"attempts": attempts, "error": err.Error()}})
		return
	}
	metrics.LoadsTotal.WithLabelValues(string(req.Purpose), "loaded").Inc()
	m.log.Info().Str("family", req.Family).Str("purpose", string(req.Purpose)).Msg("font loaded")
	m.publish(Event{Name: EventDone, Family: req.Family, Fields: map[string]any{"purpose": string(req.Purpose)}})
	m.saveRecent()
	if upgrade != nil {
		if err := m.Request(*upgrade); err != nil {
			m.log.Debug().Str("family", req.Family).Err(err).Msg("deferred upgrade not admitted")
		}
	}
}

// pump drains the queue whenever a load finishes.
func (m *Manager) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.slotFreed:
			m.drain()
		}
	}
}

// drain admits queued loads while slots are free. Under the slow-link policy,
// queued low and normal priority loads are dropped instead.
func (m *Manager) drain() {
	var skipped []queueEntry
	m.mu.Lock()
	for m.online && !m.closed && m.active < m.maxActive && len(m.queue) > 0 {
		e := m.queue[0]
		m.queue = m.queue[1:]
		st, ok := m.families[e.req.Family]
		if !ok || st.state != StateQueued {
			continue
		}
		if m.slow && e.req.Priority <= PriorityNormal {
			st.state = StateIdle
			skipped = append(skipped, e)
			continue
		}
		st.req = e.req
		m.startLocked(st)
	}
	metrics.QueueDepth.Set(float64(len(m.queue)))
	m.mu.Unlock()
	for _, e := range skipped {
		m.publish(Event{Name: EventSkipped, Family: e.req.Family, Fields: map[string]any{"priority": e.req.Priority.String()}})
	}
}

// SetOnline records host connectivity. Going online drains the queue.
func (m *Manager) SetOnline(online bool) {
	m.mu.Lock()
	m.online = online
	m.mu.Unlock()
	m.log.Info().Bool("online", online).Msg("network state changed")
	if online {
		m.drain()
	}
}

// SetSlowLink toggles the slow-link policy.
func (m *Manager) SetSlowLink(slow bool) {
	m.mu.Lock()
	m.slow = slow
	m.mu.Unlock()
	m.log.Info().Bool("slow_link", slow).Msg("link quality changed")
}
