package orchestrator

import (
	"context"
	"time"

	"orchd/pkg/types"
)

// LoadModel makes a model resident. Idempotent: a model that is already
// LOADED returns success immediately, and a second caller during an
// in-flight load awaits that load's result rather than issuing a
// duplicate. The lock is held for the admission decision and the LOADING
// flip, released across the adapter call, and reacquired to commit.
func (o *Orchestrator) LoadModel(ctx context.Context, id string) error {
	st, ok := o.models[id]
	if !ok {
		return ErrNotFound(id)
	}

	o.mu.Lock()
	if st.status == types.StatusLoaded {
		o.mu.Unlock()
		return nil
	}
	if op := st.loading; op != nil {
		o.mu.Unlock()
		select {
		case <-op.done:
			return op.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// Admission. In SOLO mode at most one generation model may be
	// resident at any time, not just right after the switch, so the rule
	// applies on every load. Then evict under the budget if needed.
	var victims []types.ModelDescriptor
	if o.mode == types.ModeSolo && st.desc.Role == types.RoleGeneration {
		soloVictims, err := o.evictOtherGenerationLocked(st.desc)
		victims = append(victims, soloVictims...)
		if err != nil {
			o.updateVRAMGaugeLocked()
			o.mu.Unlock()
			o.backendUnload(victims)
			return err
		}
	}
	needed := st.desc.VRAMGB
	if o.usedVRAMLocked()+needed > o.totalVRAMGB {
		budgetVictims, err := o.evictUntilFitsLocked(st.desc)
		victims = append(victims, budgetVictims...)
		if err != nil {
			o.updateVRAMGaugeLocked()
			o.mu.Unlock()
			// Already-evicted models stay evicted; re-loading them is
			// cheaper than never evicting.
			o.backendUnload(victims)
			return err
		}
	}

	op := &loadOp{done: make(chan struct{})}
	st.loading = op
	st.status = types.StatusLoading
	st.errMsg = ""
	o.publishLocked(EventModelStatus, id)
	o.updateVRAMGaugeLocked()
	o.mu.Unlock()

	o.backendUnload(victims)

	start := time.Now()
	o.log.Info().Str("model", id).Str("backend", string(st.desc.Backend)).Msg("load start")
	err := o.adapterFor(st.desc).Load(ctx, st.desc)

	o.mu.Lock()
	if err != nil {
		st.status = types.StatusError
		st.errMsg = err.Error()
		loadFailuresTotal.Inc()
		o.log.Error().Err(err).Str("model", id).Dur("took", time.Since(start)).Msg("load failed")
	} else {
		st.status = types.StatusLoaded
		st.lastUsed = o.now()
		loadsTotal.Inc()
		o.log.Info().Str("model", id).Dur("took", time.Since(start)).Msg("load complete")
	}
	st.loading = nil
	op.err = err
	close(op.done)
	o.publishLocked(EventModelStatus, id)
	o.updateVRAMGaugeLocked()
	o.mu.Unlock()
	return err
}
