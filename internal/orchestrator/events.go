package orchestrator

import "orchd/pkg/types"

// Event names.
const (
	EventModelStatus    = "model_status"
	EventActiveRequests = "active_requests"
	EventMode           = "mode"
)

// Event is one committed state change. The snapshot reflects the state
// at commit time; events are published in commit order.
type Event struct {
	Name     string
	ModelID  string
	Snapshot types.StatusSnapshot
}

// EventPublisher receives events from the orchestrator. Publish is called
// while the orchestrator lock is held so ordering is total; it must be
// cheap, must never block, and must not call back into the orchestrator.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// publishLocked emits an event carrying the current snapshot.
// Caller holds o.mu.
func (o *Orchestrator) publishLocked(name, modelID string) {
	o.pub.Publish(Event{Name: name, ModelID: modelID, Snapshot: o.snapshotLocked()})
}
