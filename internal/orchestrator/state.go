package orchestrator

import (
	"time"

	"orchd/pkg/types"
)

// modelState is the mutable runtime state for one catalog entry. Entries
// are created once at construction and never destroyed; they cycle
// through status for the life of the process. Guarded by Orchestrator.mu.
type modelState struct {
	desc           types.ModelDescriptor
	status         types.ModelStatusValue
	activeRequests int
	// Advanced when a request starts; eviction tie-break (LRU).
	lastUsed time.Time
	// Until this instant the model sorts behind other eviction candidates.
	graceUntil time.Time
	errMsg     string
	// Non-nil while an adapter load is in flight for this model. Later
	// callers wait on it instead of issuing a duplicate load.
	loading *loadOp
}

// loadOp is the handle shared by every caller awaiting one adapter load.
// err is valid only after done is closed.
type loadOp struct {
	done chan struct{}
	err  error
}
