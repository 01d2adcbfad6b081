package orchestrator

import (
	"context"

	"orchd/pkg/types"
)

// SwitchMode applies a new operational mode. The mode value is always
// updated; loading the mode's preferred models is best-effort, and every
// per-model failure is collected into a PartialModeSwitch error rather
// than dropped.
//
// SOLO additionally evicts every other loaded generation model before
// loading the designated one. A generation model with in-flight requests
// cannot be evicted (the pin invariant wins) and is reported as a
// failure. For as long as the mode stays SOLO, LoadModel keeps enforcing
// the single-generation rule on every admission.
func (o *Orchestrator) SwitchMode(ctx context.Context, mode types.Mode) error {
	if _, err := types.ParseMode(string(mode)); err != nil {
		return err
	}

	o.mu.Lock()
	o.mode = mode
	o.log.Info().Str("mode", string(mode)).Msg("mode switched")
	o.publishLocked(EventMode, "")
	o.mu.Unlock()

	failures := make(map[string]error)

	if mode == types.ModeSolo {
		solo := o.reg.SoloModel()
		o.mu.Lock()
		var victims []types.ModelDescriptor
		for _, id := range o.reg.IDs() {
			st := o.models[id]
			if id == solo || st.desc.Role != types.RoleGeneration {
				continue
			}
			switch st.status {
			case types.StatusLoaded:
				if st.activeRequests > 0 {
					failures[id] = ErrModelInUse(id)
					continue
				}
				st.status = types.StatusUnloaded
				evictionsTotal.Inc()
				o.log.Info().Str("model", id).Msg("evicted for solo mode")
				o.publishLocked(EventModelStatus, id)
				victims = append(victims, st.desc)
			case types.StatusLoading:
				failures[id] = ErrInvalidState(id, types.StatusLoading, "evict")
			}
		}
		o.updateVRAMGaugeLocked()
		o.mu.Unlock()
		o.backendUnload(victims)
	}

	for _, id := range o.reg.PreferredModelsFor(mode) {
		if err := o.LoadModel(ctx, id); err != nil {
			failures[id] = err
		}
	}

	if len(failures) > 0 {
		return ErrPartialModeSwitch(mode, failures)
	}
	return nil
}
