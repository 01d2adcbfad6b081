package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"orchd/internal/backend"
	"orchd/internal/registry"
	"orchd/pkg/types"
)

// Orchestrator is the single authoritative owner of model runtime state
// and the VRAM budget. Construct one at process start and pass it to
// every handler that needs it; there is no re-initialization path.
type Orchestrator struct {
	mu sync.RWMutex

	reg          *registry.Registry
	adapters     map[types.BackendKind]backend.Adapter
	totalVRAMGB  float64
	defaultModel string
	graceWindow  time.Duration
	pub          EventPublisher
	log          zerolog.Logger

	mode      types.Mode
	models    map[string]*modelState
	startTime time.Time

	// now is a clock hook for deterministic eviction tests.
	now func() time.Time
}

// New constructs an Orchestrator from Config, applying defaults for
// unset fields. Every catalog entry starts UNLOADED: a restart never
// assumes externally-warm backends.
func New(cfg Config) *Orchestrator {
	if cfg.TotalVRAMGB <= 0 {
		cfg.TotalVRAMGB = defaultTotalVRAMGB
	}
	if cfg.InitialMode == "" {
		cfg.InitialMode = defaultMode
	}
	if cfg.GraceWindow <= 0 {
		cfg.GraceWindow = defaultGraceWindow
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	o := &Orchestrator{
		reg:          cfg.Registry,
		adapters:     cfg.Adapters,
		totalVRAMGB:  cfg.TotalVRAMGB,
		defaultModel: cfg.DefaultModel,
		graceWindow:  cfg.GraceWindow,
		pub:          cfg.Publisher,
		log:          cfg.Logger,
		mode:         cfg.InitialMode,
		models:       make(map[string]*modelState),
		startTime:    time.Now(),
		now:          time.Now,
	}
	for _, desc := range cfg.Registry.All() {
		o.models[desc.ID] = &modelState{desc: desc, status: types.StatusUnloaded}
	}
	return o
}

// Mode returns the current operational mode.
func (o *Orchestrator) Mode() types.Mode {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mode
}

// Models returns the static catalog.
func (o *Orchestrator) Models() []types.ModelDescriptor { return o.reg.All() }

// DefaultModel returns the model used when a request names none.
func (o *Orchestrator) DefaultModel() string { return o.defaultModel }

// Ready reports whether at least one generation model is loaded.
func (o *Orchestrator) Ready() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, st := range o.models {
		if st.desc.Role == types.RoleGeneration && st.status == types.StatusLoaded {
			return true
		}
	}
	return false
}

// adapterFor resolves the adapter serving a descriptor's backend kind.
func (o *Orchestrator) adapterFor(desc types.ModelDescriptor) backend.Adapter {
	return o.adapters[desc.Backend]
}

// usedVRAMLocked recomputes the bookkeeping total from the loaded set.
// LOADING models count so a concurrent admission cannot over-commit the
// budget while a backend load is in flight. Never stored independently.
func (o *Orchestrator) usedVRAMLocked() float64 {
	var used float64
	for _, st := range o.models {
		if st.status == types.StatusLoaded || st.status == types.StatusLoading {
			used += st.desc.VRAMGB
		}
	}
	return used
}

// backendUnload issues best-effort adapter unloads after the bookkeeping
// commit. Failures are logged, never propagated: the budget already
// reflects the eviction.
func (o *Orchestrator) backendUnload(victims []types.ModelDescriptor) {
	for _, desc := range victims {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := o.adapterFor(desc).Unload(ctx, desc); err != nil {
			o.log.Warn().Err(err).Str("model", desc.ID).Msg("backend unload failed")
		}
		cancel()
	}
}
