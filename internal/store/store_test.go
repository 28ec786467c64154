package store

import (
	"testing"
	"time"

	"github.com/joshp123/acwatch/internal/units"
)

func TestGetBeforeSetReturnsSentinel(t *testing.T) {
	s := New()
	if s.Get().IsLoaded() {
		t.Fatalf("expected not-loaded sentinel before first Set")
	}
	if s.Version() != 0 {
		t.Fatalf("expected version 0, got %d", s.Version())
	}
}

func TestSetReplacesWholeCollection(t *testing.T) {
	s := New()
	s.Set(units.Loaded([]units.Snapshot{{Name: "A"}, {Name: "B"}}))
	s.Set(units.Loaded([]units.Snapshot{{Name: "C"}}))

	got := s.Get()
	if !got.IsLoaded() || got.Len() != 1 || got.Units()[0].Name != "C" {
		t.Fatalf("unexpected collection: %+v", got.Units())
	}
	if s.Version() != 2 {
		t.Fatalf("expected version 2, got %d", s.Version())
	}
}

func TestGetIsReadOnlyView(t *testing.T) {
	s := New()
	s.Set(units.Loaded([]units.Snapshot{{
		Name:       "Living Room",
		Attributes: units.NewAttributes(units.Attribute{Key: "power_status", Value: units.String("ON")}),
	}}))

	snap := s.Get().Units()[0]
	snap.Attributes.Set("power_status", units.String("OFF"))

	v, _ := s.Get().Units()[0].Attributes.Get("power_status")
	if v.String() != "ON" {
		t.Fatalf("stored value changed through a reader: %q", v.String())
	}
}

func TestSetEmptyIsLoaded(t *testing.T) {
	s := New()
	s.Set(units.Loaded(nil))
	if !s.Get().IsLoaded() {
		t.Fatalf("empty fetch result must be distinguishable from the sentinel")
	}
}

func TestSubscribeReceivesCoalescedSignal(t *testing.T) {
	s := New()
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Set(units.Loaded(nil))
	s.Set(units.Loaded([]units.Snapshot{{Name: "A"}}))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("expected notification")
	}
	select {
	case <-ch:
		t.Fatalf("expected signals to coalesce")
	default:
	}
	if s.Get().Len() != 1 {
		t.Fatalf("reader should observe the latest collection")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := New()
	ch, cancel := s.Subscribe()
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	s.Set(units.Loaded(nil))
}
