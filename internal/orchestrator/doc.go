// Package orchestrator owns the authoritative in-memory view of which
// models are resident in VRAM, their active-request counters, and the
// current operational mode. It is structured into small files by concern:
//
//   - orchestrator.go: core Orchestrator type, constructor, getters.
//   - config.go: Config and package defaults; New applies defaults.
//   - state.go: per-model runtime state and the in-flight load handle.
//   - errors.go: error types and helpers (IsNotFound, IsModelInUse, ...).
//   - load.go: LoadModel admission, in-flight dedupe, commit.
//   - evict.go: LRU eviction to fit within the VRAM budget.
//   - unload.go: UnloadModel and ResetModel.
//   - mode.go: SwitchMode, including the SOLO single-model invariant.
//   - requests.go: BeginRequest/MarkUsed request accounting.
//   - generate.go: end-to-end generation flow for the API layer.
//   - status.go: StatusSnapshot construction.
//   - events.go: EventPublisher seam; eventpub_memory.go for tests.
//   - metrics.go: prometheus counters and gauges.
//
// All mutations are serialized through a single mutex; the mutex is held
// around state transitions only, never across a backend network wait.
// VRAM accounting is bookkeeping over static per-model estimates — the
// real device is never queried.
package orchestrator
