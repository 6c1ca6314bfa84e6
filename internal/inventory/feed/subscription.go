package feed

import "sync"

// Subscription delivers snapshots until cancelled. The channel holds at most
// one value; a newer snapshot replaces an unread older one, so a slow reader
// only ever sees the latest state.
type Subscription[T any] struct {
	mu       sync.Mutex
	ch       chan T
	closed   bool
	onCancel func()
}

func newSubscription[T any]() *Subscription[T] {
	return &Subscription[T]{ch: make(chan T, 1)}
}

// C returns the snapshot channel. It is closed after Cancel or when the hub stops.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Cancel stops delivery and releases the subscription. Safe to call more than once.
func (s *Subscription[T]) Cancel() {
	if s.close() && s.onCancel != nil {
		s.onCancel()
	}
}

func (s *Subscription[T]) send(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- v
}

func (s *Subscription[T]) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	close(s.ch)
	return true
}
