package notify

import (
	"context"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/casualjim/murmur"
	"github.com/fogfish/opts"
	"github.com/google/uuid"
)

// Queue wraps a murmur.Queue with per-listener signal channels so consumers
// can block for the next event instead of polling. Each push try-sends one
// token into every registered signal channel; the channels are buffered with
// capacity one, so an undelivered token simply coalesces into the pending
// one. Tokens are a hint, not a count: the buffer is the source of truth
// and WaitPeek always re-checks it before blocking.
type Queue[E any] struct {
	inner     *murmur.Queue[E]
	signals   *haxmap.Map[string, chan struct{}]
	done      chan struct{}
	closeOnce sync.Once
}

// New constructs a fresh queue wrapped with signaling. Options are the root
// package's (murmur.WithName, murmur.WithCapacity).
func New[E any](options ...opts.Option[murmur.Options]) *Queue[E] {
	return &Queue[E]{
		inner:   murmur.New[E](options...),
		signals: haxmap.New[string, chan struct{}](),
		done:    make(chan struct{}),
	}
}

// Push appends one event and wakes every waiting listener.
func (q *Queue[E]) Push(event E) (bool, error) {
	delivered, err := q.inner.Push(event)
	if err != nil {
		return delivered, err
	}
	q.signal()
	return delivered, nil
}

// Extend appends a batch and wakes every waiting listener once.
func (q *Queue[E]) Extend(events ...E) (bool, error) {
	delivered, err := q.inner.Extend(events...)
	if err != nil {
		return delivered, err
	}
	q.signal()
	return delivered, nil
}

func (q *Queue[E]) signal() {
	q.signals.ForEach(func(_ string, ch chan struct{}) bool {
		select {
		case ch <- struct{}{}:
		default: // a token is already pending, nothing to add
		}
		return true
	})
}

// Listen registers a listener with an attached signal channel.
func (q *Queue[E]) Listen() (*Listener[E], error) {
	inner, err := q.inner.Listen()
	if err != nil {
		return nil, err
	}
	id := uuid.Must(uuid.NewV7()).String()
	l := &Listener[E]{
		queue:  q,
		inner:  inner,
		id:     id,
		signal: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
	q.signals.Set(id, l.signal)
	return l, nil
}

// Stats snapshots the wrapped queue.
func (q *Queue[E]) Stats() murmur.Stats {
	return q.inner.Stats()
}

// Close tears down the wrapped queue and unblocks every in-flight wait with
// murmur.ErrQueueClosed. A second Close returns murmur.ErrQueueClosed.
func (q *Queue[E]) Close() error {
	err := murmur.ErrQueueClosed
	q.closeOnce.Do(func() {
		close(q.done)
		err = q.inner.Close()
	})
	return err
}

// Listener pairs a murmur.Listener with a signal channel. Peek and With are
// the plain level-triggered reads; Wait and WaitPeek add suspension.
type Listener[E any] struct {
	queue     *Queue[E]
	inner     *murmur.Listener[E]
	id        string
	signal    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// Peek returns and marks seen every unseen event, without blocking.
func (l *Listener[E]) Peek() ([]E, error) {
	return l.inner.Peek()
}

// With invokes fn on the unseen suffix without copying; see murmur.Listener.
func (l *Listener[E]) With(fn func([]E)) error {
	return l.inner.With(fn)
}

// Wait blocks until a push signals this listener, the queue or the listener
// closes, or ctx is done. A nil return means "probably something new";
// spurious wakeups are possible, missed ones are not.
func (l *Listener[E]) Wait(ctx context.Context) error {
	// closed states win over a leftover token
	select {
	case <-l.closed:
		return murmur.ErrListenerClosed
	case <-l.queue.done:
		return murmur.ErrQueueClosed
	default:
	}

	select {
	case <-l.signal:
		return nil
	case <-l.closed:
		return murmur.ErrListenerClosed
	case <-l.queue.done:
		return murmur.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitPeek blocks until at least one unseen event exists, then returns the
// unseen suffix like Peek. A push that landed before the call is returned
// immediately: the read is level-triggered against the buffer, the signal
// only breaks the idle wait. On teardown mid-wait it returns
// murmur.ErrQueueClosed (queue gone) or murmur.ErrListenerClosed (handle
// closed), never a hang; on cancellation it returns ctx.Err().
func (l *Listener[E]) WaitPeek(ctx context.Context) ([]E, error) {
	for {
		evs, err := l.Peek()
		if err != nil || len(evs) > 0 {
			return evs, err
		}
		if err := l.Wait(ctx); err != nil {
			return nil, err
		}
	}
}

// Close deregisters the signal channel, closes the inner listener (running
// its collection pass), and unblocks any in-flight wait. A second Close
// returns murmur.ErrListenerClosed.
func (l *Listener[E]) Close() error {
	err := murmur.ErrListenerClosed
	l.closeOnce.Do(func() {
		l.queue.signals.Del(l.id)
		close(l.closed)
		err = l.inner.Close()
	})
	return err
}
