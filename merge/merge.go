// Package merge aggregates the peeks of several event sources into one
// consumer-facing sequence.
//
// A View concatenates each child's unseen suffix in fixed registration
// order. There is deliberately no cross-source ordering guarantee beyond
// that: the base queues carry no timestamps, so chronological interleaving
// across sources is not possible and is not pretended. Within one source,
// emission order is preserved as always.
package merge

import (
	"sync"
)

// Source yields the unseen suffix of an event stream. murmur.Listener,
// notify.Listener, and View itself all satisfy it.
type Source[E any] interface {
	Peek() ([]E, error)
}

// View reads several sources as one. It holds no state beyond its children.
type View[E any] struct {
	mu   sync.Mutex
	srcs []Source[E]
}

// Join builds a view over the given sources. Registration order is the
// concatenation order for every subsequent peek.
func Join[E any](srcs ...Source[E]) *View[E] {
	v := &View[E]{}
	v.srcs = append(v.srcs, srcs...)
	return v
}

// Add appends another source at the end of the registration order.
func (v *View[E]) Add(src Source[E]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.srcs = append(v.srcs, src)
}

// Len returns the number of registered sources.
func (v *View[E]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.srcs)
}

// Peek drains every child in registration order and concatenates the
// results. The first child error aborts the peek; children before it have
// already been drained at that point, the usual caveat of eager cursor
// advance.
func (v *View[E]) Peek() ([]E, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var out []E
	for _, src := range v.srcs {
		evs, err := src.Peek()
		if err != nil {
			return out, err
		}
		out = append(out, evs...)
	}
	return out, nil
}

// With invokes fn on the combined unseen suffix. fn runs once, with an
// empty slice when nothing is pending anywhere.
func (v *View[E]) With(fn func([]E)) error {
	evs, err := v.Peek()
	if err != nil {
		return err
	}
	fn(evs)
	return nil
}
