package orchestrator

import (
	"context"
	"testing"

	"orchd/pkg/types"
)

func eventNames(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name
	}
	return out
}

func TestLoadPublishesStatusTransitions(t *testing.T) {
	pub := NewMemoryPublisher()
	o, _ := newTestOrch(t, 24, pub)
	mustLoad(t, o, "alpha")

	events := pub.Events()
	if len(events) != 2 {
		t.Fatalf("events = %v, want loading+loaded", eventNames(events))
	}
	if events[0].Name != EventModelStatus || events[0].ModelID != "alpha" {
		t.Fatalf("event 0 = %+v", events[0])
	}
	if got := events[0].Snapshot.Models["alpha"].Status; got != types.StatusLoading {
		t.Fatalf("event 0 snapshot status = %s, want loading", got)
	}
	if got := events[1].Snapshot.Models["alpha"].Status; got != types.StatusLoaded {
		t.Fatalf("event 1 snapshot status = %s, want loaded", got)
	}
	if got := events[1].Snapshot.System.UsedVRAMGB; got != 10 {
		t.Fatalf("event 1 used vram = %.1f, want 10", got)
	}
}

func TestRequestLifecyclePublishesCounts(t *testing.T) {
	pub := NewMemoryPublisher()
	o, _ := newTestOrch(t, 24, pub)
	mustLoad(t, o, "alpha")
	before := len(pub.Events())

	release, err := o.BeginRequest(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	release()

	events := pub.Events()[before:]
	if len(events) != 2 {
		t.Fatalf("events = %v, want begin+release", eventNames(events))
	}
	for _, e := range events {
		if e.Name != EventActiveRequests || e.ModelID != "alpha" {
			t.Fatalf("event = %+v", e)
		}
	}
	if got := events[0].Snapshot.Models["alpha"].ActiveRequests; got != 1 {
		t.Fatalf("begin snapshot active = %d, want 1", got)
	}
	if got := events[1].Snapshot.Models["alpha"].ActiveRequests; got != 0 {
		t.Fatalf("release snapshot active = %d, want 0", got)
	}
}

func TestModeSwitchPublishesModeFirst(t *testing.T) {
	pub := NewMemoryPublisher()
	o, _ := newTestOrch(t, 24, pub)
	if err := o.SwitchMode(context.Background(), types.ModeQuick); err != nil {
		t.Fatalf("switch: %v", err)
	}

	events := pub.Events()
	if len(events) == 0 || events[0].Name != EventMode {
		t.Fatalf("events = %v, want mode event first", eventNames(events))
	}
	if got := events[0].Snapshot.System.Mode; got != string(types.ModeQuick) {
		t.Fatalf("mode in snapshot = %s, want quick", got)
	}
}

// Each event's snapshot reflects the state at commit time, so a replayed
// stream reconstructs the exact state progression.
func TestEventSnapshotsAreMonotonic(t *testing.T) {
	pub := NewMemoryPublisher()
	o, _ := newTestOrch(t, 24, pub)
	mustLoad(t, o, "alpha")
	mustLoad(t, o, "bravo")
	mustLoad(t, o, "delta")
	if err := o.UnloadModel("delta"); err != nil {
		t.Fatalf("unload: %v", err)
	}

	for i, e := range pub.Events() {
		if used := e.Snapshot.System.UsedVRAMGB; used > 24 {
			t.Fatalf("event %d (%s): snapshot used %.1fGB exceeds budget", i, e.Name, used)
		}
	}
	events := pub.Events()
	last := events[len(events)-1]
	if got := last.Snapshot.Models["delta"].Status; got != types.StatusUnloaded {
		t.Fatalf("final snapshot delta = %s, want unloaded", got)
	}
}
