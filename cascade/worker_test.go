package cascade_test

import (
	"context"
	"testing"
	"time"

	"github.com/casualjim/murmur"
	"github.com/casualjim/murmur/cascade"
	"github.com/casualjim/murmur/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnRoutesAcrossGoroutines(t *testing.T) {
	src := notify.New[int](murmur.WithName("src"))
	defer src.Close()
	dst := notify.New[int](murmur.WithName("dst"))
	defer dst.Close()

	in, err := src.Listen()
	require.NoError(t, err)
	out, err := dst.Listen()
	require.NoError(t, err)
	defer out.Close()

	c := cascade.New[int]()
	cascade.Push(c, dst, func(n int) bool { return n > 0 })

	w := cascade.NewWorker()
	cascade.Spawn[int](w, in, c)

	_, err = src.Extend(-1, 1, -2, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []int
	for len(got) < 2 {
		evs, err := out.WaitPeek(ctx)
		require.NoError(t, err)
		got = append(got, evs...)
	}
	assert.Equal(t, []int{1, 2}, got)

	w.Stop()
	w.Wait()
}

func TestWorkerStopRunsFinalizers(t *testing.T) {
	src := notify.New[int]()
	defer src.Close()

	in, err := src.Listen()
	require.NoError(t, err)

	c := cascade.New[int]()
	done := make(chan struct{})
	c.Finalize(func() { close(done) })

	w := cascade.NewWorker()
	cascade.Spawn[int](w, in, c)

	w.Stop()
	w.Wait()

	select {
	case <-done:
	default:
		t.Fatal("finalizer did not run on worker stop")
	}
}

func TestSourceCloseStopsWorker(t *testing.T) {
	src := notify.New[int]()

	in, err := src.Listen()
	require.NoError(t, err)

	c := cascade.New[int]()
	finalized := make(chan struct{})
	c.Finalize(func() { close(finalized) })

	w := cascade.NewWorker()
	cascade.Spawn[int](w, in, c)

	require.NoError(t, src.Close())
	w.Wait()

	select {
	case <-finalized:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not exit when its source closed")
	}
}

func TestFromChannelFeedsACascade(t *testing.T) {
	ch := make(chan int, 8)
	dst := murmur.New[int]()
	defer dst.Close()

	out, err := dst.Listen()
	require.NoError(t, err)
	defer out.Close()

	c := cascade.New[int]()
	cascade.Push[int](c, dst, nil)

	w := cascade.NewWorker()
	cascade.Spawn[int](w, cascade.FromChannel(ch), c)

	for i := 1; i <= 3; i++ {
		ch <- i
	}
	close(ch)
	w.Wait()

	evs, err := out.Peek()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, evs)
}

func TestChannelSourcePeek(t *testing.T) {
	ch := make(chan string, 4)
	src := cascade.FromChannel(ch)

	evs, err := src.Peek()
	require.NoError(t, err)
	assert.Empty(t, evs, "empty open channel drains to nothing")

	ch <- "a"
	ch <- "b"
	evs, err = src.Peek()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, evs)

	close(ch)
	_, err = src.Peek()
	assert.ErrorIs(t, err, murmur.ErrQueueClosed)
}

func TestChannelSourceWaitPeekCancel(t *testing.T) {
	ch := make(chan int)
	src := cascade.FromChannel(ch)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := src.WaitPeek(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
