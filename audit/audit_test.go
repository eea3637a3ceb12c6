package audit

import (
	"sync"
	"testing"
	"time"
)

func TestEventEmission(t *testing.T) {
	var mu sync.Mutex
	var events []Event

	trail := New(10, WithHandler(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}))

	trail.Record(Event{ActorID: "u1", Action: ActionLogin, Result: "success"})
	trail.Record(Event{ActorID: "u1", Action: ActionAccessCheck, Module: "orders", Result: "denied"})

	if err := trail.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Action != ActionLogin || events[1].Module != "orders" {
		t.Errorf("events mis-recorded: %+v", events)
	}
}

func TestTimestampDefaultsToNow(t *testing.T) {
	var mu sync.Mutex
	var got Event

	trail := New(1, WithHandler(func(e Event) {
		mu.Lock()
		got = e
		mu.Unlock()
	}))

	before := time.Now()
	trail.Record(Event{Action: ActionLogout, Result: "success"})
	_ = trail.Close()

	mu.Lock()
	defer mu.Unlock()
	if got.Timestamp.Before(before) {
		t.Errorf("expected timestamp to default to now, got %v", got.Timestamp)
	}
}

func TestExplicitTimestampKept(t *testing.T) {
	var mu sync.Mutex
	var got Event

	trail := New(1, WithHandler(func(e Event) {
		mu.Lock()
		got = e
		mu.Unlock()
	}))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	trail.Record(Event{Action: ActionLogout, Result: "success", Timestamp: at})
	_ = trail.Close()

	mu.Lock()
	defer mu.Unlock()
	if !got.Timestamp.Equal(at) {
		t.Errorf("expected %v, got %v", at, got.Timestamp)
	}
}

func TestNilTrailDropsEvents(t *testing.T) {
	var trail *Trail
	trail.Record(Event{Action: ActionLogin}) // must not panic
}

func TestRecordAfterCloseIsDropped(t *testing.T) {
	trail := New(1)
	_ = trail.Close()
	trail.Record(Event{Action: ActionLogin}) // must not block or panic
}
