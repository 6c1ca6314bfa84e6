package repository

import (
	"context"
	"sync"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// changeQueue is an unbounded FIFO between the committer and one watcher,
// so commits never block on a slow reader and order is kept.
type changeQueue struct {
	mu     sync.Mutex
	queue  []domain.Change
	signal chan struct{}
}

func newChangeQueue() *changeQueue {
	return &changeQueue{signal: make(chan struct{}, 1)}
}

func (q *changeQueue) push(c domain.Change) {
	q.mu.Lock()
	q.queue = append(q.queue, c)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *changeQueue) drain() []domain.Change {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.queue
	q.queue = nil
	return out
}

// Watch implements domain.ChangeWatcher
func (s *MemStore) Watch(ctx context.Context) (<-chan domain.Change, error) {
	q := newChangeQueue()

	s.watchMu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = q
	s.watchMu.Unlock()

	out := make(chan domain.Change)
	go func() {
		defer close(out)
		defer func() {
			s.watchMu.Lock()
			delete(s.watchers, id)
			s.watchMu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-q.signal:
			}
			for _, c := range q.drain() {
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// publish must be called with s.mu held so watchers see commit order
func (s *MemStore) publish(c domain.Change) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, q := range s.watchers {
		q.push(c)
	}
}
