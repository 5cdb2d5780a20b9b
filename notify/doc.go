/*
Package notify is the blocking adapter over a murmur queue: consumers
suspend for the next event instead of polling.

Every listener owns a signal channel buffered with capacity one. A push
appends to the wrapped queue and then try-sends a token to each channel; a
channel that already holds a token is skipped, because one pending token
already says everything a second one would. Waiting is therefore cheap under
bursts and never busy-polls.

Correctness does not rest on the tokens. WaitPeek checks the buffer before
ever blocking, so a push that happened before the wait began is observed
without any signal: the read is level-triggered against the buffer and the
token only interrupts idleness. Missed wakeups are impossible by
construction; spurious ones are allowed and harmless.

Waits are always abortable. Closing the listener, closing the queue, or
canceling the context unblocks an in-flight wait with
murmur.ErrListenerClosed, murmur.ErrQueueClosed, or ctx.Err() respectively.

	q := notify.New[string](murmur.WithName("jobs"))
	defer q.Close()

	sub, _ := q.Listen()
	defer sub.Close()

	go q.Push("hello")

	evs, err := sub.WaitPeek(ctx) // blocks until the push lands
*/
package notify
