package orchestrator

import (
	"time"

	"github.com/rs/zerolog"

	"orchd/internal/backend"
	"orchd/internal/registry"
	"orchd/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultTotalVRAMGB = 24.0
	defaultGraceWindow = 3 * time.Minute
	defaultMode        = types.ModeBalanced
)

// Config encapsulates all tunables for Orchestrator construction.
type Config struct {
	Registry *registry.Registry
	Adapters map[types.BackendKind]backend.Adapter
	// Fixed VRAM budget in GB shared by every model.
	TotalVRAMGB float64
	// Mode in effect at startup.
	InitialMode types.Mode
	// Model used when a request does not name one.
	DefaultModel string
	// How long after its last request a model is deprioritized for
	// eviction. Affects eviction order only, never whether eviction occurs.
	GraceWindow time.Duration
	// Receives an event on every state change. Defaults to a no-op.
	Publisher EventPublisher
	Logger    zerolog.Logger
}
