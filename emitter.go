package murmur

// Emitter is a write capability into a Queue. It exists so producers can be
// handed something narrower than the queue itself: an emitter can push but
// cannot listen, close the queue, or inspect it.
//
// Multiple emitters on one queue are fine; the queue lock linearizes their
// pushes into a single total order that all listeners observe identically.
type Emitter[E any] struct {
	queue  *Queue[E]
	closed bool // guarded by queue.mu
}

// Push appends one event. The boolean reports delivery: false with a nil
// error means no listener was registered and the event was dropped.
func (e *Emitter[E]) Push(event E) (bool, error) {
	q := e.queue
	q.mu.Lock()
	defer q.mu.Unlock()
	if e.closed {
		return false, ErrEmitterClosed
	}
	return q.push(event)
}

// Extend appends a batch under one lock acquisition.
func (e *Emitter[E]) Extend(events ...E) (bool, error) {
	q := e.queue
	q.mu.Lock()
	defer q.mu.Unlock()
	if e.closed {
		return false, ErrEmitterClosed
	}
	return q.extend(events)
}

// Close invalidates this handle only; the queue and any other emitters are
// unaffected. A second Close returns ErrEmitterClosed.
func (e *Emitter[E]) Close() error {
	q := e.queue
	q.mu.Lock()
	defer q.mu.Unlock()
	if e.closed {
		return ErrEmitterClosed
	}
	e.closed = true
	return nil
}
