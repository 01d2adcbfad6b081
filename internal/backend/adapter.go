// Package backend hides transport differences between the concrete
// inference backends: the shared local serving daemon and per-model
// containerized servers. Each adapter owns its own connection and
// timeout policy; none of them retry generation.
package backend

import (
	"context"

	"orchd/pkg/types"
)

// Adapter performs load/unload/health/generate against one backend kind.
type Adapter interface {
	// Kind reports which backend this adapter serves.
	Kind() types.BackendKind
	// HealthCheck probes the backend with a bounded timeout. It never
	// returns an error; any failure (refused, timeout, non-2xx) is false.
	HealthCheck(ctx context.Context, desc types.ModelDescriptor) bool
	// Load makes the model servable. Fails with a LoadRefused error when
	// the start call itself errors, LoadTimeout when the backend never
	// turns healthy within the adapter's retry budget.
	Load(ctx context.Context, desc types.ModelDescriptor) error
	// Unload is best-effort. When SupportsExplicitUnload is false it is a
	// logical no-op: bookkeeping only, no guarantee VRAM is freed.
	Unload(ctx context.Context, desc types.ModelDescriptor) error
	// SupportsExplicitUnload reports whether Unload actually releases the
	// backend's memory, as opposed to relying on its own idle eviction.
	SupportsExplicitUnload() bool
	// Generate sends the chat history and sampling parameters and returns
	// the completion text. No retries; failures surface immediately.
	Generate(ctx context.Context, desc types.ModelDescriptor, msgs []types.ChatMessage, params types.GenParams) (string, error)
}
