package manager

import (
	"reflect"
	"testing"
)

func TestEventPublisherEmitsLifecycle(t *testing.T) {
	h := newHarness(t, func(c *ManagerConfig) { c.MaxActive = 1 })
	h.inj.hold()
	_ = h.m.LoadForPreview("Roboto")
	_ = h.m.LoadForPreview("Lobster")
	h.inj.release()
	waitFor(t, "Lobster done", func() bool {
		return reflect.DeepEqual(h.pub.Names("Lobster"), []string{EventQueued, EventStart, EventDone})
	})
	waitFor(t, "Roboto done", func() bool {
		return reflect.DeepEqual(h.pub.Names("Roboto"), []string{EventStart, EventDone})
	})
}

func TestSetEventPublisherNilRestoresNoop(t *testing.T) {
	m := NewWithConfig(ManagerConfig{})
	m.SetEventPublisher(nil)
	m.publish(Event{Name: "x"})
}
