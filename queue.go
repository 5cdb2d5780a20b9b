package murmur

import (
	"sync"
	"time"

	"github.com/casualjim/murmur/internal/cursors"
	"github.com/fogfish/opts"
)

// Options configures a Queue at construction time.
type Options struct {
	// Name shows up in Stats and log output. Optional.
	Name string
	// Capacity is the initial buffer capacity. Optional.
	Capacity int
}

var (
	// WithName sets the queue name used in Stats and log attribution.
	WithName = opts.ForName[Options, string]("Name")
	// WithCapacity pre-sizes the event buffer.
	WithCapacity = opts.ForName[Options, int]("Capacity")
)

// Queue is an append-only log of events read independently by any number of
// listeners. Events are retained only while a registered listener has not yet
// peeked past them; the prefix below the lowest cursor is reclaimed on every
// collection pass. A single mutex serializes every operation, peeks included,
// because a peek advances the caller's cursor.
type Queue[E any] struct {
	mu      sync.Mutex
	name    string
	created time.Time

	events  []E
	base    uint64
	cursors *cursors.Table
	closed  bool

	pushed    uint64
	dropped   uint64
	reclaimed uint64
}

// New constructs an empty queue. It panics when an option fails to apply,
// option misuse is a wiring bug, not a runtime condition.
func New[E any](options ...opts.Option[Options]) *Queue[E] {
	var o Options
	if err := opts.Apply(&o, options); err != nil {
		panic(err)
	}
	q := &Queue[E]{
		name:    o.Name,
		created: time.Now(),
		cursors: cursors.New(),
	}
	if o.Capacity > 0 {
		q.events = make([]E, 0, o.Capacity)
	}
	return q
}

// Name returns the queue name, which may be empty.
func (q *Queue[E]) Name() string { return q.name }

// Push appends one event. It reports true when at least one listener was
// registered at the time of the call; with no listeners the event is dropped
// on the spot and false is returned, nothing is retained for listeners that
// do not exist yet.
func (q *Queue[E]) Push(event E) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.push(event)
}

// Extend appends a batch of events under a single lock acquisition. The
// delivered result and error follow the same rules as Push, applied to the
// whole batch.
func (q *Queue[E]) Extend(events ...E) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.extend(events)
}

func (q *Queue[E]) push(event E) (bool, error) {
	if q.closed {
		return false, ErrQueueClosed
	}
	q.pushed++
	if q.cursors.Len() == 0 {
		q.dropped++
		return false, nil
	}
	q.events = append(q.events, event)
	return true, nil
}

func (q *Queue[E]) extend(events []E) (bool, error) {
	if q.closed {
		return false, ErrQueueClosed
	}
	q.pushed += uint64(len(events))
	if q.cursors.Len() == 0 {
		q.dropped += uint64(len(events))
		return false, nil
	}
	q.events = append(q.events, events...)
	return true, nil
}

// Listen registers a new listener. Its cursor starts at the current write
// head, so it observes only events pushed after this call.
func (q *Queue[E]) Listen() (*Listener[E], error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}
	id := q.cursors.Register(q.head())
	return &Listener[E]{queue: q, id: id}, nil
}

// Emitter returns a new write capability for this queue. Any number of
// emitters may coexist; their pushes are linearized by the queue lock into
// one total order.
func (q *Queue[E]) Emitter() (*Emitter[E], error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}
	return &Emitter[E]{queue: q}, nil
}

// Close drops the buffer and every registered cursor. Outstanding listener
// and emitter handles observe ErrQueueClosed from then on. A second Close
// returns ErrQueueClosed.
func (q *Queue[E]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.closed = true
	q.reclaimed += uint64(len(q.events))
	q.base += uint64(len(q.events))
	q.events = nil
	q.cursors = cursors.New()
	return nil
}

// Len returns the number of currently retained events.
func (q *Queue[E]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// BaseOffset returns the count of events reclaimed from the front of the
// buffer since the queue was created.
func (q *Queue[E]) BaseOffset() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.base
}

// Listeners returns the number of registered listeners.
func (q *Queue[E]) Listeners() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cursors.Len()
}

// head returns the absolute offset of the write position. Lock must be held.
func (q *Queue[E]) head() uint64 {
	return q.base + uint64(len(q.events))
}

// collect truncates every event below the lowest registered cursor. With no
// listeners left everything goes. Cursors are stored as absolute offsets, so
// survivors need no adjustment, only the base shifts; collection stays
// O(removed) regardless of listener count. Lock must be held.
func (q *Queue[E]) collect() {
	m, ok := q.cursors.Min()
	if !ok {
		m = q.head()
	}
	if m <= q.base {
		return
	}
	removed := int(m - q.base)
	rest := copy(q.events, q.events[removed:])
	var zero E
	for i := rest; i < len(q.events); i++ {
		q.events[i] = zero
	}
	q.events = q.events[:rest]
	q.base = m
	q.reclaimed += uint64(removed)
}

// peek returns a copy of the unseen suffix for id and advances its cursor to
// the write head. The advance happens here, at call time: a caller that
// abandons the returned slice has still seen those events as far as the
// queue is concerned. When the advanced cursor was the lowest one, a
// collection pass runs before returning. Lock must be held.
func (q *Queue[E]) peek(id cursors.ID) []E {
	cur, ok := q.cursors.Get(id)
	if !ok {
		return nil
	}
	head := q.head()
	if cur == head {
		return nil
	}
	unseen := q.events[cur-q.base:]
	out := make([]E, len(unseen))
	copy(out, unseen)
	q.advance(id, cur, head)
	return out
}

// with hands the unseen suffix for id to fn without copying, then advances
// the cursor exactly like peek. fn runs under the queue lock and must not
// call back into the queue. Lock must be held.
func (q *Queue[E]) with(id cursors.ID, fn func([]E)) {
	cur, ok := q.cursors.Get(id)
	if !ok {
		return
	}
	head := q.head()
	var unseen []E
	if cur < head {
		unseen = q.events[cur-q.base:]
	}
	fn(unseen)
	q.advance(id, cur, head)
}

// advance moves the cursor for id from cur to head and, when the moved
// cursor was the lowest one, runs a collection pass so the freshly drained
// prefix is reclaimed right away. Lock must be held.
func (q *Queue[E]) advance(id cursors.ID, cur, head uint64) {
	min, _ := q.cursors.Min()
	q.cursors.Advance(id, head)
	if cur == min {
		q.collect()
	}
}
