package orchestrator

import (
	"orchd/pkg/types"
)

// UnloadModel releases a loaded model. Fails with ModelInUse while
// requests are in flight and with InvalidState during a load. Unloading
// an already-unloaded model is a no-op. Bookkeeping commits under the
// lock; the adapter unload runs after release, best-effort.
func (o *Orchestrator) UnloadModel(id string) error {
	st, ok := o.models[id]
	if !ok {
		return ErrNotFound(id)
	}
	o.mu.Lock()
	switch st.status {
	case types.StatusUnloaded:
		o.mu.Unlock()
		return nil
	case types.StatusLoading:
		o.mu.Unlock()
		return ErrInvalidState(id, types.StatusLoading, "unload")
	case types.StatusError:
		o.mu.Unlock()
		return ErrInvalidState(id, types.StatusError, "unload")
	}
	if st.activeRequests > 0 {
		o.mu.Unlock()
		return ErrModelInUse(id)
	}
	st.status = types.StatusUnloaded
	unloadsTotal.Inc()
	o.log.Info().Str("model", id).Msg("unloaded")
	o.publishLocked(EventModelStatus, id)
	o.updateVRAMGaugeLocked()
	desc := st.desc
	o.mu.Unlock()

	o.backendUnload([]types.ModelDescriptor{desc})
	return nil
}

// ResetModel clears an ERROR status back to UNLOADED so the next load is
// a clean attempt. No-op for an already-unloaded model.
func (o *Orchestrator) ResetModel(id string) error {
	st, ok := o.models[id]
	if !ok {
		return ErrNotFound(id)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	switch st.status {
	case types.StatusUnloaded:
		return nil
	case types.StatusError:
		st.status = types.StatusUnloaded
		st.errMsg = ""
		o.log.Info().Str("model", id).Msg("error state reset")
		o.publishLocked(EventModelStatus, id)
		return nil
	default:
		return ErrInvalidState(id, st.status, "reset")
	}
}
