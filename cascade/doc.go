/*
Package cascade routes events between murmur queues through standing
filtered forwarding rules.

A Cascade is an ordered chain of links. Each link binds a filter to a sink:
a predicate forwarding matching events unchanged (Push), a mapping function
translating them to another event type (PushMap), a compiled CEL expression
(PushExpr), or a terminal black hole (Discard). Every drained event walks
the chain in registration order and is consumed by the first link that
accepts it; events no link accepts fall off the end. Filtering never
reorders: source emission order is preserved through the chain.

# Driving a cascade

Polled, once per scheduling tick:

	c := cascade.New[Order]()
	cascade.Push(c, urgent, func(o Order) bool { return o.Priority > 8 })
	cascade.Discard[Order](c, nil)

	// in the tick loop
	c.Drain(listener)

Standing, across a goroutine boundary, from any blocking source (a
notify.Listener, or a raw channel via FromChannel):

	w := cascade.NewWorker()
	cascade.Spawn(w, sub, c)
	...
	w.Stop()
	w.Wait()

One goroutine per spawned cascade; the hand-off between producer and
cascade is the source's own channel discipline, never shared iteration
state.

# Disconnected sinks

A sink that reports undelivered or returns an error is treated as
disconnected. The matching event counts as consumed, and the link leaves
the chain, unless it was registered with KeepAfterDisconnect, in which case
it stays as a dropper that keeps consuming its matches. That mirrors the
two sensible recoveries: "pretend the filter never existed" versus "keep
shielding the links after me".

Fan-out takes separate listeners on one queue, one per cascade; fan-in
points several cascades at one sink queue. With fan-in, interleaving across
distinct sources is unspecified, only each source's own order survives.

Finalizers registered with Finalize run exactly once when the cascade
stops, whether by Close or by its worker exiting.
*/
package cascade
