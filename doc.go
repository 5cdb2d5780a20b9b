/*
Package murmur implements a broadcast event-distribution primitive: one
append-only log of events, read independently by any number of long-lived
listeners at their own pace, with automatic reclamation of events no
listener will ever read again.

The producer never knows who is listening. A listener registered against a
queue observes every event pushed after its registration, exactly once, in
emission order; events pushed before it existed are invisible to it. Events
pushed while no listener is registered at all are dropped immediately.

# Basic Usage

	q := murmur.New[int](murmur.WithName("clicks"))
	defer q.Close()

	sub, _ := q.Listen()
	defer sub.Close()

	q.Push(1)
	q.Push(2)

	evs, _ := sub.Peek() // [1 2]
	evs, _ = sub.Peek()  // []

# Retention and collection

The queue keeps a per-listener cursor into the conceptual infinite stream.
The prefix of the buffer below the lowest cursor is unreachable by every
listener and is reclaimed whenever a collection pass runs: after a listener
closes, after a peek that advanced the lowest cursor, and on queue Close.
One consequence is deliberate and worth spelling out: a listener that never
peeks pins every event since its registration, without bound. Dispose of
listeners you stop reading.

# Handles

  - Listener: read side. Peek returns the unseen suffix and eagerly marks it
    seen at call time. With hands the suffix to a callback without copying.
  - Emitter: write capability that cannot read or close the queue. Pushes
    from any number of emitters are linearized into one total order.

Both handle types fail fast after their own Close (ErrListenerClosed,
ErrEmitterClosed) and after the queue's Close (ErrQueueClosed). Absence of
data is never an error; an empty peek is just an empty slice.

# Composition

Sibling packages build routing on top of this one without adding storage:

  - merge aggregates several listeners into one consumer-facing view.
  - cascade runs standing filtered forwarding rules from one queue into
    others, with optional CEL expression filters and a goroutine worker for
    cross-goroutine routing.
  - notify wraps a queue with per-listener signal channels so a consumer
    can block for the next event instead of polling.
  - bidir pairs two queues into a 1:1 request/response duplex.

# Thread Safety

A queue is safe for concurrent use from any number of goroutines. Every
operation, peeks included, serializes on one mutex per queue; a peek is a
mutation because it advances the caller's cursor. Nothing here blocks while
holding that lock, and only notify offers a suspending wait.
*/
package murmur
