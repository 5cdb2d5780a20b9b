package murmur

import (
	"github.com/casualjim/murmur/internal/cursors"
)

// Listener is a registration against a Queue. Every event pushed after the
// registration is observed exactly once, in emission order, across the
// listener's successive peeks. Events pushed before registration are never
// observed.
//
// A listener must be closed when its owner is done with it; until then its
// cursor pins every event it has not peeked past. Call sites typically pair
// Listen with a deferred Close.
type Listener[E any] struct {
	queue  *Queue[E]
	id     cursors.ID
	closed bool // guarded by queue.mu
}

// ID returns the listener's id, unique within its queue.
func (l *Listener[E]) ID() uint64 { return uint64(l.id) }

// Peek returns every event pushed since the last Peek (or since
// registration, for the first call) and marks them seen. The cursor advances
// eagerly at call time, not as the returned slice is consumed: abandoning
// the slice midway still loses those events. An empty result is not an
// error.
func (l *Listener[E]) Peek() ([]E, error) {
	q := l.queue
	q.mu.Lock()
	defer q.mu.Unlock()
	if l.closed {
		return nil, ErrListenerClosed
	}
	if q.closed {
		return nil, ErrQueueClosed
	}
	return q.peek(l.id), nil
}

// With invokes fn on the unseen suffix without copying it out, then marks
// those events seen. fn runs while the queue lock is held and must not call
// back into the same queue. fn is invoked exactly once, with an empty slice
// when nothing is pending.
func (l *Listener[E]) With(fn func([]E)) error {
	q := l.queue
	q.mu.Lock()
	defer q.mu.Unlock()
	if l.closed {
		return ErrListenerClosed
	}
	if q.closed {
		return ErrQueueClosed
	}
	q.with(l.id, fn)
	return nil
}

// Close removes the listener's cursor and runs a collection pass, releasing
// every event only this listener was pinning. Further use of the handle
// fails with ErrListenerClosed.
func (l *Listener[E]) Close() error {
	q := l.queue
	q.mu.Lock()
	defer q.mu.Unlock()
	if l.closed {
		return ErrListenerClosed
	}
	if q.closed {
		return ErrQueueClosed
	}
	l.closed = true
	q.cursors.Remove(l.id)
	q.collect()
	return nil
}
