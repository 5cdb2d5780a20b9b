package cascade

import (
	"context"

	"github.com/casualjim/murmur"
)

// ChannelSource adapts a plain receive channel to the cascade source
// interfaces, so externally-owned producers can feed a cascade without a
// queue. Peek drains whatever is immediately available; WaitPeek blocks
// for the first event and then drains the rest without blocking. A closed
// channel reports murmur.ErrQueueClosed once drained, which stops a
// worker cleanly.
type ChannelSource[E any] struct {
	ch <-chan E
}

// FromChannel wraps ch as a source.
func FromChannel[E any](ch <-chan E) *ChannelSource[E] {
	return &ChannelSource[E]{ch: ch}
}

// Peek drains the channel without blocking.
func (s *ChannelSource[E]) Peek() ([]E, error) {
	var out []E
	for {
		select {
		case ev, ok := <-s.ch:
			if !ok {
				if len(out) == 0 {
					return nil, murmur.ErrQueueClosed
				}
				return out, nil
			}
			out = append(out, ev)
		default:
			return out, nil
		}
	}
}

// WaitPeek blocks until at least one event is available, then drains the
// rest of the channel's immediate backlog.
func (s *ChannelSource[E]) WaitPeek(ctx context.Context) ([]E, error) {
	if evs, err := s.Peek(); err != nil || len(evs) > 0 {
		return evs, err
	}
	select {
	case ev, ok := <-s.ch:
		if !ok {
			return nil, murmur.ErrQueueClosed
		}
		out := []E{ev}
		more, err := s.Peek()
		if err != nil {
			// channel closed right behind the last event; deliver what we have
			return out, nil
		}
		return append(out, more...), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
