package orchestrator

import (
	"time"

	"orchd/pkg/types"
)

// Status returns a read-only snapshot. Safe to call concurrently from
// many readers; it never mutates state and never blocks mutating
// operations longer than the snapshot copy itself.
func (o *Orchestrator) Status() types.StatusSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.snapshotLocked()
}

// snapshotLocked builds a StatusSnapshot. Caller holds o.mu (read or
// write). used_vram_gb counts LOADED models only, matching the wire
// contract; LOADING models are accounted separately in admission.
func (o *Orchestrator) snapshotLocked() types.StatusSnapshot {
	now := time.Now()
	snap := types.StatusSnapshot{
		System: types.SystemStatus{
			Mode:           string(o.mode),
			TotalVRAMGB:    o.totalVRAMGB,
			UptimeSeconds:  int64(now.Sub(o.startTime).Seconds()),
			ServerTimeUnix: now.Unix(),
		},
		Models: make(map[string]types.ModelStatus, len(o.models)),
	}
	for id, st := range o.models {
		ms := types.ModelStatus{
			DisplayName:    st.desc.DisplayName,
			Backend:        string(st.desc.Backend),
			Status:         st.status,
			ActiveRequests: st.activeRequests,
		}
		if !st.lastUsed.IsZero() {
			ms.LastUsedUnix = st.lastUsed.Unix()
		}
		if st.status == types.StatusError && st.errMsg != "" {
			msg := st.errMsg
			ms.ErrorMessage = &msg
		}
		if st.status == types.StatusLoaded {
			snap.System.UsedVRAMGB += st.desc.VRAMGB
		}
		snap.System.TotalRequestsActive += st.activeRequests
		snap.Models[id] = ms
	}
	return snap
}
