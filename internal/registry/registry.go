// Package registry holds the static model catalog and the mode table:
// which models exist, what they cost in VRAM, and which set each
// operational mode prefers resident. Pure lookups, no side effects.
package registry

import (
	"fmt"
	"sort"

	"orchd/pkg/types"
)

// Registry is the immutable catalog of known models plus the
// mode -> preferred-model-set table. Built once at startup.
type Registry struct {
	models []types.ModelDescriptor
	byID   map[string]types.ModelDescriptor
	modes  map[types.Mode][]string
}

// New validates the catalog and mode table and builds a Registry.
// Empty models/modes fall back to the built-in defaults.
func New(models []types.ModelDescriptor, modes map[string][]string) (*Registry, error) {
	if len(models) == 0 {
		models = DefaultCatalog()
	}
	if len(modes) == 0 {
		modes = DefaultModes()
	}
	r := &Registry{
		models: append([]types.ModelDescriptor(nil), models...),
		byID:   make(map[string]types.ModelDescriptor, len(models)),
		modes:  make(map[types.Mode][]string, len(modes)),
	}
	for _, m := range r.models {
		if m.ID == "" {
			return nil, fmt.Errorf("model with empty id")
		}
		if _, dup := r.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate model id: %s", m.ID)
		}
		if m.VRAMGB <= 0 {
			return nil, fmt.Errorf("model %s: vram_gb must be positive", m.ID)
		}
		switch m.Backend {
		case types.BackendLocalServe:
		case types.BackendContainer:
			if m.Container == "" {
				return nil, fmt.Errorf("model %s: container-backed model needs a container name", m.ID)
			}
			if m.Endpoint == "" {
				return nil, fmt.Errorf("model %s: container-backed model needs an endpoint", m.ID)
			}
		default:
			return nil, fmt.Errorf("model %s: unknown backend %q", m.ID, m.Backend)
		}
		switch m.Role {
		case types.RoleGeneration, types.RoleEmbedding:
		default:
			return nil, fmt.Errorf("model %s: unknown role %q", m.ID, m.Role)
		}
		r.byID[m.ID] = m
	}
	for name, ids := range modes {
		mode, err := types.ParseMode(name)
		if err != nil {
			return nil, err
		}
		gens := 0
		for _, id := range ids {
			m, ok := r.byID[id]
			if !ok {
				return nil, fmt.Errorf("mode %s references unknown model %q", mode, id)
			}
			if m.Role == types.RoleGeneration {
				gens++
			}
		}
		if mode == types.ModeSolo && gens != 1 {
			return nil, fmt.Errorf("mode solo must designate exactly one generation model, got %d", gens)
		}
		r.modes[mode] = append([]string(nil), ids...)
	}
	for _, mode := range types.Modes() {
		if _, ok := r.modes[mode]; !ok {
			return nil, fmt.Errorf("mode table missing entry for %s", mode)
		}
	}
	return r, nil
}

// Get looks up a model by id.
func (r *Registry) Get(id string) (types.ModelDescriptor, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// All returns the catalog in declaration order (shallow copy).
func (r *Registry) All() []types.ModelDescriptor {
	out := make([]types.ModelDescriptor, len(r.models))
	copy(out, r.models)
	return out
}

// PreferredModelsFor returns the ids that should be resident in the given
// mode. Embedding models are always part of the preferred set.
func (r *Registry) PreferredModelsFor(mode types.Mode) []string {
	ids := append([]string(nil), r.modes[mode]...)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, m := range r.models {
		if m.Role == types.RoleEmbedding && !seen[m.ID] {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// SoloModel returns the single generation model designated for SOLO mode.
func (r *Registry) SoloModel() string {
	for _, id := range r.modes[types.ModeSolo] {
		if m, ok := r.byID[id]; ok && m.Role == types.RoleGeneration {
			return id
		}
	}
	return ""
}

// IDs returns every model id in ascending order. Used where deterministic
// iteration matters (eviction tie-breaks, status output).
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m.ID)
	}
	sort.Strings(out)
	return out
}

// DefaultCatalog is the baked-in model set used when the config file does
// not provide one. VRAM figures are static estimates for a 24GB budget.
func DefaultCatalog() []types.ModelDescriptor {
	return []types.ModelDescriptor{
		{
			ID:          "llama3-8b",
			DisplayName: "Llama 3 8B Instruct",
			Backend:     types.BackendLocalServe,
			VRAMGB:      7.5,
			Role:        types.RoleGeneration,
			Defaults:    types.GenParams{MaxLength: 2048, Temperature: 0.7, TopP: 0.9, TopK: 40},
		},
		{
			ID:          "qwen2.5-14b",
			DisplayName: "Qwen 2.5 14B Instruct",
			Backend:     types.BackendLocalServe,
			VRAMGB:      11.0,
			Role:        types.RoleGeneration,
			Defaults:    types.GenParams{MaxLength: 4096, Temperature: 0.6, TopP: 0.9, TopK: 40},
		},
		{
			ID:          "nemotron-22b",
			DisplayName: "Nemotron 22B",
			Backend:     types.BackendContainer,
			VRAMGB:      18.0,
			Role:        types.RoleGeneration,
			Endpoint:    "http://127.0.0.1:8800",
			Container:   "orchd-nemotron",
			Defaults:    types.GenParams{MaxLength: 4096, Temperature: 0.5, TopP: 0.95, TopK: 50},
		},
		{
			ID:          "nomic-embed",
			DisplayName: "Nomic Embed Text",
			Backend:     types.BackendLocalServe,
			VRAMGB:      1.5,
			Role:        types.RoleEmbedding,
			Defaults:    types.GenParams{},
		},
	}
}

// DefaultModes is the baked-in mode table matching DefaultCatalog.
func DefaultModes() map[string][]string {
	return map[string][]string{
		string(types.ModeQuick):        {"llama3-8b"},
		string(types.ModeBusinessFast): {"qwen2.5-14b"},
		string(types.ModeDevelopment):  {"llama3-8b", "qwen2.5-14b"},
		string(types.ModeBusinessDeep): {"nemotron-22b"},
		string(types.ModeBalanced):     {"llama3-8b", "qwen2.5-14b"},
		string(types.ModeSolo):         {"nemotron-22b"},
	}
}
