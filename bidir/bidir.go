// Package bidir pairs two directional buffers into a 1:1 bidirectional
// message pair. The primary endpoint pushes P and peeks S; the secondary
// mirrors it. There are no cursors here: each direction has exactly one
// consumer, and a peek drains everything buffered for that side.
//
// Closing either endpoint severs the pair. The surviving endpoint's Push
// reports undelivered from then on, while its Peek still drains whatever
// was buffered before the cut, then keeps returning empty results.
package bidir

import (
	"errors"
	"sync"
)

// ErrClosed is returned when an endpoint is used after its own Close.
var ErrClosed = errors.New("bidir: endpoint closed")

// core is the shared state of one pair. One mutex guards both directions.
type core[P, S any] struct {
	mu      sync.Mutex
	forward []P // primary -> secondary
	reverse []S // secondary -> primary
	priDown bool
	secDown bool
}

// New constructs a connected pair of endpoints.
func New[P, S any]() (*Primary[P, S], *Secondary[P, S]) {
	c := &core[P, S]{}
	return &Primary[P, S]{c: c}, &Secondary[P, S]{c: c}
}

// Primary is the initiating endpoint: it pushes P and receives S.
type Primary[P, S any] struct {
	c *core[P, S]
}

// Push sends one event toward the secondary. It reports false once the
// secondary has closed; the event then goes nowhere.
func (p *Primary[P, S]) Push(ev P) (bool, error) {
	c := p.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.priDown {
		return false, ErrClosed
	}
	if c.secDown {
		return false, nil
	}
	c.forward = append(c.forward, ev)
	return true, nil
}

// Peek drains every buffered reply, in emission order.
func (p *Primary[P, S]) Peek() ([]S, error) {
	c := p.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.priDown {
		return nil, ErrClosed
	}
	out := c.reverse
	c.reverse = nil
	return out, nil
}

// Bounce drains every buffered reply and pushes fn's mapped follow-up for
// each one; a false second return drops that reply without a follow-up.
// fn runs under the pair lock and must not call back into the pair.
func (p *Primary[P, S]) Bounce(fn func(S) (P, bool)) error {
	c := p.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.priDown {
		return ErrClosed
	}
	replies := c.reverse
	c.reverse = nil
	for _, ev := range replies {
		if out, ok := fn(ev); ok && !c.secDown {
			c.forward = append(c.forward, out)
		}
	}
	return nil
}

// Close severs the pair from this side. A second Close returns ErrClosed.
func (p *Primary[P, S]) Close() error {
	c := p.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.priDown {
		return ErrClosed
	}
	c.priDown = true
	// inbound replies have lost their only reader; outbound requests stay
	// drainable by the secondary
	c.reverse = nil
	if c.secDown {
		c.forward = nil
	}
	return nil
}

// Secondary is the answering endpoint: it receives P and pushes S.
type Secondary[P, S any] struct {
	c *core[P, S]
}

// Push sends one event toward the primary. It reports false once the
// primary has closed.
func (s *Secondary[P, S]) Push(ev S) (bool, error) {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.secDown {
		return false, ErrClosed
	}
	if c.priDown {
		return false, nil
	}
	c.reverse = append(c.reverse, ev)
	return true, nil
}

// Peek drains every buffered request, in emission order.
func (s *Secondary[P, S]) Peek() ([]P, error) {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.secDown {
		return nil, ErrClosed
	}
	out := c.forward
	c.forward = nil
	return out, nil
}

// Bounce drains every buffered request and pushes fn's mapped reply for
// each one; a false second return drops that request. fn runs under the
// pair lock and must not call back into the pair.
func (s *Secondary[P, S]) Bounce(fn func(P) (S, bool)) error {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.secDown {
		return ErrClosed
	}
	reqs := c.forward
	c.forward = nil
	for _, ev := range reqs {
		if out, ok := fn(ev); ok && !c.priDown {
			c.reverse = append(c.reverse, out)
		}
	}
	return nil
}

// Close severs the pair from this side. A second Close returns ErrClosed.
func (s *Secondary[P, S]) Close() error {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.secDown {
		return ErrClosed
	}
	c.secDown = true
	c.forward = nil
	if c.priDown {
		c.reverse = nil
	}
	return nil
}
