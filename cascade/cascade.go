package cascade

import (
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/casualjim/murmur/pkg/slogx"
	"github.com/fogfish/opts"
	"github.com/google/uuid"
)

// ErrClosed is returned when a cascade is driven or closed after Close.
var ErrClosed = errors.New("cascade: closed")

// Source yields the unseen suffix of an event stream. murmur.Listener,
// notify.Listener, and merge.View all satisfy it.
type Source[E any] interface {
	Peek() ([]E, error)
}

// Sink accepts events. The boolean reports delivery; murmur.Queue and
// murmur.Emitter satisfy it directly.
type Sink[E any] interface {
	Push(E) (bool, error)
}

// SinkFunc adapts a bare function to Sink, the integration point for
// externally-owned event loops.
type SinkFunc[E any] func(E) (bool, error)

func (fn SinkFunc[E]) Push(ev E) (bool, error) { return fn(ev) }

// LinkOptions configures one link in a cascade chain.
type LinkOptions struct {
	// Keep retains a link whose sink disconnected; it then consumes its
	// matching events without forwarding them anywhere.
	Keep bool
}

// KeepAfterDisconnect keeps a link in the chain as a dropper once its sink
// stops accepting events. Without it the link is removed, which is
// equivalent to a filter matching nothing.
func KeepAfterDisconnect() opts.Option[LinkOptions] {
	return opts.Type[LinkOptions](func(o *LinkOptions) error {
		o.Keep = true
		return nil
	})
}

type link[E any] struct {
	// route tries to consume ev. matched reports whether this link consumed
	// the event; alive reports whether the sink still accepts events.
	route func(ev E) (matched, alive bool)
	// drop is the pure predicate used once the link is dead but kept.
	drop func(ev E) bool
	keep bool
	dead bool
}

// Cascade is a standing filtered forwarding rule: an ordered chain of
// links, each binding a filter to a sink. Each drained event walks the
// chain until the first link consumes it; links are tried in registration
// order and unmatched events fall off the end.
//
// A cascade holds no events of its own. Drive it by hand with Drain once
// per scheduling tick, or hand it to Spawn for a standing goroutine.
type Cascade[E any] struct {
	mu     sync.Mutex
	name   string
	links  []link[E]
	finals []func()
	closed bool
	log    *slog.Logger
}

// Options configures a Cascade at construction time.
type Options struct {
	// Name shows up in log output. Defaults to a fresh uuid.
	Name string
}

// WithName sets the cascade name used for log attribution.
var WithName = opts.ForName[Options, string]("Name")

// New constructs an empty cascade. It panics when an option fails to apply.
func New[E any](options ...opts.Option[Options]) *Cascade[E] {
	var o Options
	if err := opts.Apply(&o, options); err != nil {
		panic(err)
	}
	if o.Name == "" {
		o.Name = uuid.Must(uuid.NewV7()).String()
	}
	return &Cascade[E]{
		name: o.Name,
		log:  slog.With(slogx.LoggerName("cascade"), slog.String("cascade", o.Name)),
	}
}

// Name returns the cascade name.
func (c *Cascade[E]) Name() string { return c.name }

// Len returns the number of links currently in the chain, droppers
// included.
func (c *Cascade[E]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.links)
}

// Push appends a link forwarding events matching pred to sink, unchanged.
// A nil pred forwards everything that reaches the link.
func Push[E any](c *Cascade[E], sink Sink[E], pred func(E) bool, options ...opts.Option[LinkOptions]) {
	lo := linkOptions(options)
	c.add(link[E]{
		keep: lo.Keep,
		drop: alwaysWhenNil(pred),
		route: func(ev E) (bool, bool) {
			if pred != nil && !pred(ev) {
				return false, true
			}
			delivered, err := sink.Push(ev)
			return true, delivered && err == nil
		},
	})
}

// PushMap appends a link forwarding fn(ev) to sink whenever fn's second
// return is true; false leaves the event for the next link. This is the
// general transform between event types.
func PushMap[E, R any](c *Cascade[E], sink Sink[R], fn func(E) (R, bool), options ...opts.Option[LinkOptions]) {
	lo := linkOptions(options)
	c.add(link[E]{
		keep: lo.Keep,
		drop: func(ev E) bool {
			_, ok := fn(ev)
			return ok
		},
		route: func(ev E) (bool, bool) {
			out, ok := fn(ev)
			if !ok {
				return false, true
			}
			delivered, err := sink.Push(out)
			return true, delivered && err == nil
		},
	})
}

// Discard appends a terminal black-hole link: events matching pred are
// consumed and go nowhere. A nil pred swallows everything that reaches it.
func Discard[E any](c *Cascade[E], pred func(E) bool) {
	c.add(link[E]{
		drop: alwaysWhenNil(pred),
		route: func(ev E) (bool, bool) {
			return pred == nil || pred(ev), true
		},
	})
}

// Finalize registers fn to run exactly once when the cascade stops: on
// Close, or when a worker driving it exits. Registration order is the run
// order.
func (c *Cascade[E]) Finalize(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		fn()
		return
	}
	c.finals = append(c.finals, fn)
}

// Drain peeks src and walks every drained event through the chain. Links
// whose sink disconnected during the pass are removed afterwards unless
// registered with KeepAfterDisconnect. It returns the number of events
// drained (matched or not) and the first source error.
func (c *Cascade[E]) Drain(src Source[E]) (int, error) {
	evs, err := src.Peek()
	if err != nil {
		return 0, err
	}
	return c.apply(evs)
}

// Close empties the chain and runs the finalizers. A second Close returns
// ErrClosed.
func (c *Cascade[E]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.closed = true
	c.links = nil
	finals := c.finals
	c.finals = nil
	c.mu.Unlock()

	for _, fn := range finals {
		fn()
	}
	return nil
}

func (c *Cascade[E]) add(l link[E]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.links = append(c.links, l)
}

// apply routes each event through the chain under the cascade lock.
func (c *Cascade[E]) apply(evs []E) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}

	pruned := false
	for _, ev := range evs {
		for i := range c.links {
			l := &c.links[i]
			if l.dead {
				// a kept link consumes its matches; a pruned-pending one
				// is already out of the chain semantically
				if l.keep && l.drop(ev) {
					break
				}
				continue
			}
			matched, alive := l.route(ev)
			if !alive {
				l.dead = true
				pruned = pruned || !l.keep
				c.log.Debug("cascade sink disconnected",
					slog.Int("link", i), slog.Bool("keep", l.keep))
			}
			if matched {
				break
			}
		}
	}
	if pruned {
		c.links = slices.DeleteFunc(c.links, func(l link[E]) bool {
			return l.dead && !l.keep
		})
	}
	return len(evs), nil
}

func linkOptions(options []opts.Option[LinkOptions]) LinkOptions {
	var lo LinkOptions
	if err := opts.Apply(&lo, options); err != nil {
		panic(err)
	}
	return lo
}

func alwaysWhenNil[E any](pred func(E) bool) func(E) bool {
	if pred == nil {
		return func(E) bool { return true }
	}
	return pred
}
