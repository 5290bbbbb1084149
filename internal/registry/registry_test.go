package registry

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"fontd/internal/variant"
)

func rec(name string) Record {
	return Record{Family: "Roboto", Weight: 400, Style: variant.Normal, PostScriptName: name}
}

func TestRegisterIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	r := New(ConsumerFunc(func(Record) error { calls.Add(1); return nil }), zerolog.Nop())

	if err := r.Register(rec("Roboto-Regular")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(rec("Roboto-Regular")); err != nil {
		t.Fatalf("second register: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("consumer called %d times", calls.Load())
	}
	if !r.IsRegistered("Roboto-Regular") || !r.HasFamily("Roboto") {
		t.Fatalf("record not visible")
	}
}

func TestRegisterConcurrentSameName(t *testing.T) {
	var calls atomic.Int32
	r := New(ConsumerFunc(func(Record) error { calls.Add(1); return nil }), zerolog.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Register(rec("Roboto-Bold")); err != nil {
				t.Errorf("register: %v", err)
			}
		}()
	}
	wg.Wait()
	if calls.Load() != 1 {
		t.Fatalf("consumer called %d times", calls.Load())
	}
}

func TestRegisterUnbound(t *testing.T) {
	r := New(nil, zerolog.Nop())
	if err := r.Register(rec("Roboto-Regular")); !errors.Is(err, ErrNoConsumer) {
		t.Fatalf("expected ErrNoConsumer, got %v", err)
	}
	if r.IsRegistered("Roboto-Regular") {
		t.Fatalf("unbound registration must not be recorded")
	}
	r.Bind(ConsumerFunc(func(Record) error { return nil }))
	if err := r.Register(rec("Roboto-Regular")); err != nil {
		t.Fatalf("register after bind: %v", err)
	}
}

func TestRegisterConsumerFailureNotRecorded(t *testing.T) {
	fail := true
	r := New(ConsumerFunc(func(Record) error {
		if fail {
			return errors.New("pipeline busy")
		}
		return nil
	}), zerolog.Nop())

	err := r.Register(rec("Roboto-Regular"))
	var ce *ConsumerError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConsumerError, got %v", err)
	}
	if r.IsRegistered("Roboto-Regular") {
		t.Fatalf("failed registration must not be recorded")
	}
	fail = false
	if err := r.Register(rec("Roboto-Regular")); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestRegisterConsumerPanicRecovered(t *testing.T) {
	r := New(ConsumerFunc(func(Record) error { panic("boom") }), zerolog.Nop())
	err := r.Register(rec("Roboto-Regular"))
	var ce *ConsumerError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConsumerError, got %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("len=%d", r.Len())
	}
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := New(ConsumerFunc(func(Record) error { return nil }), zerolog.Nop())
	if err := r.Register(Record{Family: "X"}); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestAllReturnsCopyAndClearKeepsBinding(t *testing.T) {
	r := New(ConsumerFunc(func(Record) error { return nil }), zerolog.Nop())
	_ = r.Register(rec("B"))
	_ = r.Register(rec("A"))
	all := r.All()
	if len(all) != 2 || all[0].PostScriptName != "A" {
		t.Fatalf("all=%+v", all)
	}
	all[0].PostScriptName = "mutated"
	if _, ok := r.Get("A"); !ok {
		t.Fatalf("registry mutated via returned slice")
	}
	r.Clear()
	if r.Len() != 0 {
		t.Fatalf("clear left %d records", r.Len())
	}
	if !r.Bound() {
		t.Fatalf("clear must keep the consumer binding")
	}
	if err := r.Register(rec("A")); err != nil {
		t.Fatalf("register after clear: %v", err)
	}
}

func TestFamiliesDistinctSorted(t *testing.T) {
	r := New(ConsumerFunc(func(Record) error { return nil }), zerolog.Nop())
	_ = r.Register(rec("Roboto-Regular"))
	_ = r.Register(rec("Roboto-Bold"))
	_ = r.Register(Record{Family: "Inter", Weight: 400, Style: variant.Normal, PostScriptName: "Inter-Regular"})
	got := r.Families()
	if len(got) != 2 || got[0] != "Inter" || got[1] != "Roboto" {
		t.Fatalf("families=%v", got)
	}
}
