package cascade

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/casualjim/murmur"
	"github.com/casualjim/murmur/pkg/slogx"
)

// WaitSource is a Source with a blocking variant; notify.Listener and
// ChannelSource satisfy it.
type WaitSource[E any] interface {
	Source[E]
	WaitPeek(ctx context.Context) ([]E, error)
}

// Worker supervises a set of standing cascades, one goroutine each. Stop
// cancels every spawned cascade's wait; Wait joins the goroutines. A
// stopped worker rejects nothing, Spawn on it just exits immediately.
type Worker struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker constructs a worker ready for Spawn.
func NewWorker() *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{ctx: ctx, cancel: cancel}
}

// Stop cancels every spawned cascade. It does not wait; see Wait.
func (w *Worker) Stop() { w.cancel() }

// Wait blocks until every spawned goroutine has exited.
func (w *Worker) Wait() { w.wg.Wait() }

// Spawn launches one goroutine that loops src.WaitPeek and routes the
// drained events through c, until the source closes, the worker stops, or
// the cascade is closed out from under it. The cascade is closed on exit,
// so its finalizers always run.
func Spawn[E any](w *Worker, src WaitSource[E], c *Cascade[E]) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { _ = c.Close() }()

		log := slog.With(slogx.LoggerName("cascade.worker"), slog.String("cascade", c.Name()))
		log.Debug("cascade worker started")
		for {
			evs, err := src.WaitPeek(w.ctx)
			switch {
			case err == nil:
				if _, err := c.apply(evs); err != nil {
					log.Debug("cascade closed, stopping")
					return
				}
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				log.Debug("worker stopped, stopping cascade")
				return
			case errors.Is(err, murmur.ErrQueueClosed), errors.Is(err, murmur.ErrListenerClosed):
				log.Debug("source closed, stopping cascade")
				return
			default:
				log.Warn("cascade source failed, stopping", slogx.Error(err))
				return
			}
		}
	}()
}
