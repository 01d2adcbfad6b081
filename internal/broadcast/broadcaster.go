// Package broadcast fans orchestrator events out to status subscribers.
//
// The orchestrator publishes while holding its state lock, so Publish
// must return quickly and must never call back into the orchestrator.
// Each subscriber gets its own backlog drained by a pump goroutine: a
// slow websocket client backs up only its own queue.
package broadcast

import (
	"sync"

	"github.com/rs/zerolog"

	"orchd/internal/orchestrator"
	"orchd/pkg/types"
)

// StatusSource supplies a fresh snapshot for subscribers that connect
// before the first event is published.
type StatusSource interface {
	Status() types.StatusSnapshot
}

// Broadcaster implements orchestrator.EventPublisher.
type Broadcaster struct {
	mu      sync.Mutex
	subs    map[*Subscriber]struct{}
	last    types.StatusSnapshot
	hasLast bool
	closed  bool

	log zerolog.Logger
}

// New returns a Broadcaster with no subscribers.
func New(log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		subs: make(map[*Subscriber]struct{}),
		log:  log,
	}
}

// Publish records the snapshot and queues it to every subscriber.
// Called with the orchestrator lock held; it only touches broadcaster
// state and per-subscriber queues, both of which are lock-cheap.
func (b *Broadcaster) Publish(e orchestrator.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.last = e.Snapshot
	b.hasLast = true
	for s := range b.subs {
		s.enqueue(e.Snapshot)
	}
}

// Subscribe registers a new subscriber. The first snapshot on its
// channel is the current state: the last published snapshot, or a fresh
// read from src when nothing has been published yet. src.Status() is
// called before the broadcaster lock is taken, because Publish runs
// under the orchestrator lock and src is typically the orchestrator.
func (b *Broadcaster) Subscribe(src StatusSource) *Subscriber {
	var fresh types.StatusSnapshot
	if src != nil {
		fresh = src.Status()
	}

	s := &Subscriber{
		out:    make(chan types.StatusSnapshot),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(s.out)
		close(s.done)
		return s
	}
	if b.hasLast {
		s.enqueue(b.last)
	} else if src != nil {
		s.enqueue(fresh)
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go s.pump()
	return s
}

// Unsubscribe detaches s and stops its pump. Safe to call twice.
func (b *Broadcaster) Unsubscribe(s *Subscriber) {
	b.mu.Lock()
	_, ok := b.subs[s]
	delete(b.subs, s)
	b.mu.Unlock()
	if ok {
		s.stop()
	}
}

// SubscriberCount reports the number of attached subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close detaches every subscriber. Publish and Subscribe become no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscriber, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.subs = make(map[*Subscriber]struct{})
	b.mu.Unlock()
	for _, s := range subs {
		s.stop()
	}
}

// Subscriber is one attached status stream.
type Subscriber struct {
	mu      sync.Mutex
	backlog []types.StatusSnapshot

	out    chan types.StatusSnapshot
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

// C yields snapshots in publish order. Closed on unsubscribe.
func (s *Subscriber) C() <-chan types.StatusSnapshot { return s.out }

func (s *Subscriber) enqueue(snap types.StatusSnapshot) {
	s.mu.Lock()
	s.backlog = append(s.backlog, snap)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// pump drains the backlog to out until stopped. Delivery blocks on the
// consumer; the backlog keeps absorbing publishes meanwhile.
func (s *Subscriber) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		var next types.StatusSnapshot
		have := len(s.backlog) > 0
		if have {
			next = s.backlog[0]
			s.backlog = s.backlog[1:]
		}
		s.mu.Unlock()

		if !have {
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		select {
		case s.out <- next:
		case <-s.done:
			return
		}
	}
}

func (s *Subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}
