package orchestrator

import (
	"sort"

	"orchd/pkg/types"
)

// evictUntilFitsLocked frees budget for incoming until it fits, flipping
// victims to UNLOADED in bookkeeping. Caller holds o.mu and later calls
// backendUnload on the returned victims outside the lock.
//
// Candidate order is deterministic: models outside their grace window
// first, then least-recently-used, then ascending id. Models with active
// requests are never candidates; embedding models are exempt when the
// incoming model is a generation model. Returns InsufficientVRAM when
// the candidates run out — victims evicted up to that point stay evicted.
func (o *Orchestrator) evictUntilFitsLocked(incoming types.ModelDescriptor) ([]types.ModelDescriptor, error) {
	var victims []types.ModelDescriptor
	for o.usedVRAMLocked()+incoming.VRAMGB > o.totalVRAMGB {
		cand := o.pickVictimLocked(incoming)
		if cand == nil {
			free := o.totalVRAMGB - o.usedVRAMLocked()
			return victims, ErrInsufficientVRAM(incoming.ID, incoming.VRAMGB, free)
		}
		cand.status = types.StatusUnloaded
		evictionsTotal.Inc()
		o.log.Info().Str("model", cand.desc.ID).Str("for", incoming.ID).Msg("evicted")
		o.publishLocked(EventModelStatus, cand.desc.ID)
		victims = append(victims, cand.desc)
	}
	return victims, nil
}

// evictOtherGenerationLocked flips every loaded generation model other
// than incoming to UNLOADED, keeping the SOLO single-generation rule on
// the admission path. The pin invariant wins: a model with in-flight
// requests fails the load with ModelInUse instead of being evicted, and
// a concurrent load of another generation model fails with InvalidState.
// Caller holds o.mu and calls backendUnload on the victims after release.
func (o *Orchestrator) evictOtherGenerationLocked(incoming types.ModelDescriptor) ([]types.ModelDescriptor, error) {
	var victims []types.ModelDescriptor
	for _, id := range o.reg.IDs() {
		st := o.models[id]
		if id == incoming.ID || st.desc.Role != types.RoleGeneration {
			continue
		}
		switch st.status {
		case types.StatusLoaded:
			if st.activeRequests > 0 {
				return victims, ErrModelInUse(id)
			}
			st.status = types.StatusUnloaded
			evictionsTotal.Inc()
			o.log.Info().Str("model", id).Str("for", incoming.ID).Msg("evicted to keep a single generation model")
			o.publishLocked(EventModelStatus, id)
			victims = append(victims, st.desc)
		case types.StatusLoading:
			return victims, ErrInvalidState(id, types.StatusLoading, "evict")
		}
	}
	return victims, nil
}

// pickVictimLocked selects the next eviction candidate, or nil.
func (o *Orchestrator) pickVictimLocked(incoming types.ModelDescriptor) *modelState {
	now := o.now()
	var cands []*modelState
	for _, id := range o.reg.IDs() {
		st := o.models[id]
		if st.status != types.StatusLoaded || st.activeRequests > 0 {
			continue
		}
		if incoming.Role == types.RoleGeneration && st.desc.Role == types.RoleEmbedding {
			continue
		}
		cands = append(cands, st)
	}
	if len(cands) == 0 {
		return nil
	}
	sort.SliceStable(cands, func(i, j int) bool {
		gi := cands[i].graceUntil.After(now)
		gj := cands[j].graceUntil.After(now)
		if gi != gj {
			return !gi
		}
		if !cands[i].lastUsed.Equal(cands[j].lastUsed) {
			return cands[i].lastUsed.Before(cands[j].lastUsed)
		}
		return cands[i].desc.ID < cands[j].desc.ID
	})
	return cands[0]
}
