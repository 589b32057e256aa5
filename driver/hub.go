package driver

import (
	"context"
	"sync"
)

// Hub fans driver notifications out to channel subscribers. It implements
// Observer, so it plugs straight into a Driver's observer list.
//
// Delivery is non-blocking: a subscriber whose buffer is full misses the
// notification and is dropped from the hub, so a stalled consumer can never
// stall dispatch. All methods are safe for concurrent use.
type Hub[T comparable, E comparable] struct {
	mu          sync.RWMutex
	subscribers map[*Subscription[T, E]]struct{}
	bufferSize  int
	closed      bool
	cleanupWg   sync.WaitGroup
}

// NewHub creates a Hub whose subscribers buffer bufferSize notifications.
// A minimum of 1 is enforced, as an unbuffered channel would make every
// delivery a drop.
func NewHub[T comparable, E comparable](bufferSize int) *Hub[T, E] {
	return &Hub[T, E]{
		subscribers: make(map[*Subscription[T, E]]struct{}),
		bufferSize:  max(bufferSize, 1),
	}
}

// Subscribe registers a new subscriber. The subscription ends when ctx is
// cancelled, when the subscriber falls behind, or when the hub closes. A
// context without a Done channel, such as context.Background, registers no
// watcher; that subscription ends only through the hub. On a closed hub the
// returned subscription is already closed.
func (h *Hub[T, E]) Subscribe(ctx context.Context) *Subscription[T, E] {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription[T, E]{ch: make(chan Notification[T, E], h.bufferSize)}
	if h.closed {
		sub.close()
		return sub
	}
	h.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		h.cleanupWg.Add(1)
		go func() {
			defer h.cleanupWg.Done()
			<-ctx.Done()
			h.unsubscribe(sub)
		}()
	}
	return sub
}

// Notify implements Observer, broadcasting n to every live subscriber.
func (h *Hub[T, E]) Notify(_ context.Context, n Notification[T, E]) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for sub := range h.subscribers {
		if !sub.send(n) {
			// Evict asynchronously; unsubscribe needs the write lock.
			go h.unsubscribe(sub)
		}
	}
}

// Close shuts the hub down and closes every subscription. It waits for the
// watcher goroutines of context-bound subscriptions, so it must not be
// sequenced before those contexts can end. Safe to call more than once.
func (h *Hub[T, E]) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for sub := range h.subscribers {
		sub.close()
	}
	clear(h.subscribers)
	h.mu.Unlock()

	h.cleanupWg.Wait()
}

func (h *Hub[T, E]) unsubscribe(sub *Subscription[T, E]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, sub)
	sub.close()
}

// Subscription is one subscriber's view of a Hub.
type Subscription[T comparable, E comparable] struct {
	mu     sync.RWMutex
	ch     chan Notification[T, E]
	closed bool
}

// C returns the notification channel. It is closed when the subscription
// ends.
func (s *Subscription[T, E]) C() <-chan Notification[T, E] {
	return s.ch
}

func (s *Subscription[T, E]) send(n Notification[T, E]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- n:
		return true
	default:
		return false
	}
}

func (s *Subscription[T, E]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		close(s.ch)
		s.closed = true
	}
}
