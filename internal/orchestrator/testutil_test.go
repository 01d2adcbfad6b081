package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"orchd/internal/backend"
	"orchd/internal/registry"
	"orchd/pkg/types"
)

// fakeAdapter counts calls and fails on demand.
type fakeAdapter struct {
	mu          sync.Mutex
	loadCalls   int
	unloadCalls int
	genCalls    int
	loadErr     error
	loadDelay   time.Duration
	genErr      error
	genText     string
}

func (f *fakeAdapter) Kind() types.BackendKind { return types.BackendLocalServe }

func (f *fakeAdapter) HealthCheck(ctx context.Context, desc types.ModelDescriptor) bool { return true }

func (f *fakeAdapter) Load(ctx context.Context, desc types.ModelDescriptor) error {
	f.mu.Lock()
	f.loadCalls++
	delay := f.loadDelay
	err := f.loadErr
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeAdapter) Unload(ctx context.Context, desc types.ModelDescriptor) error {
	f.mu.Lock()
	f.unloadCalls++
	f.mu.Unlock()
	return nil
}

func (f *fakeAdapter) SupportsExplicitUnload() bool { return true }

func (f *fakeAdapter) Generate(ctx context.Context, desc types.ModelDescriptor, msgs []types.ChatMessage, params types.GenParams) (string, error) {
	f.mu.Lock()
	f.genCalls++
	text, err := f.genText, f.genErr
	f.mu.Unlock()
	if text == "" {
		text = "ok"
	}
	return text, err
}

func (f *fakeAdapter) counts() (loads, unloads, gens int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadCalls, f.unloadCalls, f.genCalls
}

// testCatalog mirrors the shapes used throughout the scenarios: three
// 10GB generation models, one 20GB solo model, one 2GB embedding model.
func testCatalog() ([]types.ModelDescriptor, map[string][]string) {
	gen := func(id string, gb float64) types.ModelDescriptor {
		return types.ModelDescriptor{ID: id, DisplayName: id, Backend: types.BackendLocalServe, VRAMGB: gb, Role: types.RoleGeneration}
	}
	models := []types.ModelDescriptor{
		gen("alpha", 10), gen("bravo", 10), gen("charlie", 10), gen("delta", 20),
		{ID: "embed", DisplayName: "embed", Backend: types.BackendLocalServe, VRAMGB: 2, Role: types.RoleEmbedding},
	}
	modes := map[string][]string{
		"quick":         {"alpha"},
		"business_fast": {"bravo"},
		"development":   {"alpha", "bravo"},
		"business_deep": {"delta"},
		"balanced":      {"alpha", "bravo"},
		"solo":          {"delta"},
	}
	return models, modes
}

func newTestOrch(t *testing.T, budget float64, pub EventPublisher) (*Orchestrator, *fakeAdapter) {
	t.Helper()
	models, modes := testCatalog()
	reg, err := registry.New(models, modes)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	fa := &fakeAdapter{}
	o := New(Config{
		Registry: reg,
		Adapters: map[types.BackendKind]backend.Adapter{
			types.BackendLocalServe: fa,
			types.BackendContainer:  fa,
		},
		// keep the grace window out of the way unless a test sets one
		GraceWindow:  time.Nanosecond,
		TotalVRAMGB:  budget,
		DefaultModel: "alpha",
		Publisher:    pub,
	})
	return o, fa
}

// setLastUsed rewrites a model's LRU timestamp for deterministic
// eviction tests.
func setLastUsed(o *Orchestrator, id string, ts time.Time) {
	o.mu.Lock()
	o.models[id].lastUsed = ts
	o.mu.Unlock()
}

func mustLoad(t *testing.T, o *Orchestrator, id string) {
	t.Helper()
	if err := o.LoadModel(context.Background(), id); err != nil {
		t.Fatalf("load %s: %v", id, err)
	}
}

func statusOf(o *Orchestrator, id string) types.ModelStatusValue {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.models[id].status
}
