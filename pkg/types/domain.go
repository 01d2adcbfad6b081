package types

import "fmt"

// BackendKind identifies which adapter serves a model.
type BackendKind string

const (
	// BackendLocalServe is the shared local model-serving daemon. It loads
	// models lazily on first use and has no explicit unload primitive.
	BackendLocalServe BackendKind = "local_serve"
	// BackendContainer is a per-model containerized inference server that
	// is started and stopped on demand.
	BackendContainer BackendKind = "container"
)

// Role separates generation models from embedding models. Embedding models
// are never evicted to make room for a generation model.
type Role string

const (
	RoleGeneration Role = "generation"
	RoleEmbedding  Role = "embedding"
)

// GenParams are generation defaults copied into requests unless overridden.
type GenParams struct {
	MaxLength   int     `json:"max_length" yaml:"max_length" toml:"max_length"`
	Temperature float64 `json:"temperature" yaml:"temperature" toml:"temperature"`
	TopP        float64 `json:"top_p" yaml:"top_p" toml:"top_p"`
	TopK        int     `json:"top_k" yaml:"top_k" toml:"top_k"`
}

// ModelDescriptor is the static catalog entry for a model. Immutable for
// the process lifetime; VRAMGB is a bookkeeping estimate, never measured.
type ModelDescriptor struct {
	// Stable identifier, e.g. "qwen2.5-14b".
	ID string `json:"id" yaml:"id" toml:"id"`
	// Human-friendly label.
	DisplayName string `json:"display_name" yaml:"display_name" toml:"display_name"`
	// Which adapter serves this model.
	Backend BackendKind `json:"backend" yaml:"backend" toml:"backend"`
	// Approximate VRAM footprint in GB, used for admission decisions only.
	VRAMGB float64 `json:"vram_gb" yaml:"vram_gb" toml:"vram_gb"`
	// generation or embedding.
	Role Role `json:"role" yaml:"role" toml:"role"`
	// Base URL of the backend serving this model. For local_serve models
	// this may be empty and falls back to the daemon base URL.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint" toml:"endpoint"`
	// Container name, required for container-backed models.
	Container string `json:"container,omitempty" yaml:"container" toml:"container"`
	// Generation defaults.
	Defaults GenParams `json:"defaults" yaml:"defaults" toml:"defaults"`
}

// Mode selects which model set should be resident.
type Mode string

const (
	ModeQuick        Mode = "quick"
	ModeBusinessFast Mode = "business_fast"
	ModeDevelopment  Mode = "development"
	ModeBusinessDeep Mode = "business_deep"
	ModeBalanced     Mode = "balanced"
	// ModeSolo keeps at most one generation model loaded.
	ModeSolo Mode = "solo"
)

// Modes lists every valid mode in a fixed order.
func Modes() []Mode {
	return []Mode{ModeQuick, ModeBusinessFast, ModeDevelopment, ModeBusinessDeep, ModeBalanced, ModeSolo}
}

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode: %q", s)
}

// ModelStatusValue is the lifecycle state of a model as tracked by the
// orchestrator. Transitions: unloaded -> loading -> {loaded, error};
// loaded -> unloaded; error -> {loading, unloaded}.
type ModelStatusValue string

const (
	StatusUnloaded ModelStatusValue = "unloaded"
	StatusLoading  ModelStatusValue = "loading"
	StatusLoaded   ModelStatusValue = "loaded"
	StatusError    ModelStatusValue = "error"
)
