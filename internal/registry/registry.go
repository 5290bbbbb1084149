// Package registry records which concrete font variants have been handed to the
// outline/rendering pipeline. The pipeline is reached only through the Consumer
// interface, so this package has no compile-time dependency on it.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"fontd/internal/metrics"
	"fontd/internal/variant"
)

// BinaryLoader returns the outline payload of a registered variant on demand.
type BinaryLoader func(ctx context.Context) ([]byte, error)

// Record describes one registered variant. PostScriptName is the registry key.
type Record struct {
	Family         string
	Weight         int
	Style          variant.Style
	PostScriptName string
	Loader         BinaryLoader
}

// Consumer is told about every newly available variant exactly once.
type Consumer interface {
	OnFontAvailable(rec Record) error
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(rec Record) error

func (f ConsumerFunc) OnFontAvailable(rec Record) error { return f(rec) }

var (
	// ErrNoConsumer is returned by Register while the registry is unbound.
	ErrNoConsumer = errors.New("registry: no consumer bound")
	// ErrInvalidRecord is returned for records without a PostScript name.
	ErrInvalidRecord = errors.New("registry: record has no postscript name")
)

// ConsumerError wraps a failure (error or panic) raised by the consumer.
type ConsumerError struct {
	PostScriptName string
	Err            error
}

func (e *ConsumerError) Error() string {
	return fmt.Sprintf("registry: consumer rejected %s: %v", e.PostScriptName, e.Err)
}

func (e *ConsumerError) Unwrap() error { return e.Err }

// Registry is safe for concurrent use. Register calls are serialized so a
// PostScript name reaches the consumer at most once; consumers may read the
// registry from inside OnFontAvailable but must not call Register.
type Registry struct {
	regMu sync.Mutex

	mu       sync.RWMutex
	consumer Consumer
	records  map[string]Record
	log      zerolog.Logger
}

// New returns a registry bound to consumer, or unbound when consumer is nil.
func New(consumer Consumer, logger zerolog.Logger) *Registry {
	return &Registry{consumer: consumer, records: make(map[string]Record), log: logger}
}

// Bind attaches (or replaces) the consumer.
func (r *Registry) Bind(c Consumer) {
	r.mu.Lock()
	r.consumer = c
	r.mu.Unlock()
}

// Bound reports whether a consumer is attached.
func (r *Registry) Bound() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.consumer != nil
}

// Register hands rec to the consumer and records it. Registering a name that is
// already present is a successful no-op. A failing consumer leaves nothing
// recorded so a later attempt can succeed.
func (r *Registry) Register(rec Record) error {
	if rec.PostScriptName == "" {
		return ErrInvalidRecord
	}
	r.regMu.Lock()
	defer r.regMu.Unlock()

	r.mu.RLock()
	_, exists := r.records[rec.PostScriptName]
	consumer := r.consumer
	r.mu.RUnlock()
	if exists {
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return nil
	}
	if consumer == nil {
		metrics.RegistrationsTotal.WithLabelValues("unbound").Inc()
		return ErrNoConsumer
	}
	if err := notify(consumer, rec); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("failed").Inc()
		r.log.Warn().Str("postscript", rec.PostScriptName).Err(err).Msg("registration failed")
		return err
	}
	r.mu.Lock()
	r.records[rec.PostScriptName] = rec
	r.mu.Unlock()
	metrics.RegistrationsTotal.WithLabelValues("registered").Inc()
	r.log.Debug().Str("family", rec.Family).Str("postscript", rec.PostScriptName).Msg("font registered")
	return nil
}

func notify(c Consumer, rec Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &ConsumerError{PostScriptName: rec.PostScriptName, Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	if cerr := c.OnFontAvailable(rec); cerr != nil {
		return &ConsumerError{PostScriptName: rec.PostScriptName, Err: cerr}
	}
	return nil
}

// IsRegistered reports whether the PostScript name has been registered.
func (r *Registry) IsRegistered(postscriptName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.records[postscriptName]
	return ok
}

// Get returns the record for a PostScript name.
func (r *Registry) Get(postscriptName string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[postscriptName]
	return rec, ok
}

// HasFamily reports whether any variant of family is registered.
func (r *Registry) HasFamily(family string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.Family == family {
			return true
		}
	}
	return false
}

// Families returns the distinct families with at least one registered variant, sorted.
func (r *Registry) Families() []string {
	r.mu.RLock()
	seen := make(map[string]struct{})
	for _, rec := range r.records {
		seen[rec.Family] = struct{}{}
	}
	r.mu.RUnlock()
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// All returns a copy of every record, ordered by PostScript name.
func (r *Registry) All() []Record {
	r.mu.RLock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].PostScriptName < out[j].PostScriptName })
	return out
}

// Len returns the number of registered records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Clear drops every record and keeps the consumer binding.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.records = make(map[string]Record)
	r.mu.Unlock()
}
