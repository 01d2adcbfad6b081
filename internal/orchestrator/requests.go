package orchestrator

import (
	"context"
	"sync"

	"orchd/pkg/types"
)

// beginRetries bounds the load/increment race: a model can be evicted in
// the gap between LoadModel returning and the counter increment.
const beginRetries = 3

// BeginRequest loads the model if needed and increments its
// active-request counter, pinning it against eviction. The returned
// release func decrements the counter and must run on every exit path —
// defer it immediately. Release is idempotent and starts the grace
// window that deprioritizes the model for eviction.
func (o *Orchestrator) BeginRequest(ctx context.Context, id string) (func(), error) {
	st, ok := o.models[id]
	if !ok {
		return func() {}, ErrNotFound(id)
	}
	for attempt := 0; ; attempt++ {
		if err := o.LoadModel(ctx, id); err != nil {
			return func() {}, err
		}
		o.mu.Lock()
		if st.status == types.StatusLoaded {
			break
		}
		// Evicted between load and increment; reload.
		cur := st.status
		o.mu.Unlock()
		if attempt+1 >= beginRetries {
			return func() {}, ErrInvalidState(id, cur, "begin request")
		}
	}
	st.activeRequests++
	st.lastUsed = o.now()
	activeRequestsGauge.WithLabelValues(id).Set(float64(st.activeRequests))
	o.publishLocked(EventActiveRequests, id)
	o.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			o.mu.Lock()
			st.activeRequests--
			st.graceUntil = o.now().Add(o.graceWindow)
			activeRequestsGauge.WithLabelValues(id).Set(float64(st.activeRequests))
			o.publishLocked(EventActiveRequests, id)
			o.mu.Unlock()
		})
	}
	return release, nil
}

// MarkUsed advances the model's LRU timestamp and grace window. This is
// the only way lastUsed moves outside of a load or request start; it
// affects eviction order only.
func (o *Orchestrator) MarkUsed(id string) error {
	st, ok := o.models[id]
	if !ok {
		return ErrNotFound(id)
	}
	o.mu.Lock()
	st.lastUsed = o.now()
	st.graceUntil = o.now().Add(o.graceWindow)
	o.mu.Unlock()
	return nil
}
