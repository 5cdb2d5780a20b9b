package murmur

import "errors"

var (
	// ErrQueueClosed is returned when an operation touches a queue after
	// Close, including operations on listener and emitter handles whose
	// backing queue is gone.
	ErrQueueClosed = errors.New("murmur: queue closed")

	// ErrListenerClosed is returned when a listener handle is used after
	// its own Close.
	ErrListenerClosed = errors.New("murmur: listener closed")

	// ErrEmitterClosed is returned when an emitter handle is used after
	// its own Close.
	ErrEmitterClosed = errors.New("murmur: emitter closed")
)
