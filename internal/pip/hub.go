// ABOUTME: Picture-in-picture mirror hub: fans engine snapshots out to companions.
// ABOUTME: Each subscriber holds at most one pending value; newer values replace it.
package pip

import "sync"

// Hub broadcasts values to subscribers with last-write-wins delivery.
// Slow subscribers never block Publish; they only see the newest value.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	latest T
	has    bool
}

// Subscription receives published values on C until closed.
type Subscription[T any] struct {
	C    <-chan T
	ch   chan T
	hub  *Hub[T]
	once sync.Once
}

// NewHub returns an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[*Subscription[T]]struct{})}
}

// Publish records v as the latest value and offers it to every subscriber.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = v
	h.has = true
	for s := range h.subs {
		offer(s.ch, v)
	}
}

// offer replaces any pending value in ch with v. Callers hold the hub lock,
// so no other sender races the drain.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// Latest returns the last published value and whether one exists.
func (h *Hub[T]) Latest() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.has
}

// Subscribe registers a new subscriber. When a value has already been
// published it is pending on C immediately.
func (h *Hub[T]) Subscribe() *Subscription[T] {
	ch := make(chan T, 1)
	s := &Subscription[T]{C: ch, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[s] = struct{}{}
	if h.has {
		ch <- h.latest
	}
	return s
}

// Len reports the number of active subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close unregisters the subscription and closes C. It is safe to call twice.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		close(s.ch)
		s.hub.mu.Unlock()
	})
}
