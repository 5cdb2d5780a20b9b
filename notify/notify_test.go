package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/casualjim/murmur"
	"github.com/casualjim/murmur/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaiterUnblockedByPush(t *testing.T) {
	q := notify.New[int]()
	defer q.Close()

	sub, err := q.Listen()
	require.NoError(t, err)
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan []int, 1)
	go func() {
		evs, err := sub.WaitPeek(ctx)
		if err != nil {
			t.Error(err)
		}
		got <- evs
	}()

	// widen the window so the waiter is actually parked; correctness does
	// not depend on it
	time.Sleep(10 * time.Millisecond)

	_, err = q.Push(7)
	require.NoError(t, err)

	select {
	case evs := <-got:
		assert.Equal(t, []int{7}, evs)
	case <-ctx.Done():
		t.Fatal("waiter was not unblocked by the push")
	}
}

func TestPushBeforeWaitIsNotMissed(t *testing.T) {
	q := notify.New[int]()
	defer q.Close()

	sub, err := q.Listen()
	require.NoError(t, err)
	defer sub.Close()

	_, err = q.Push(1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	evs, err := sub.WaitPeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, evs, "level-triggered read must see the earlier push")
}

func TestCoalescedTokensLoseNoEvents(t *testing.T) {
	q := notify.New[int]()
	defer q.Close()

	sub, err := q.Listen()
	require.NoError(t, err)
	defer sub.Close()

	// several pushes while nobody waits collapse into one pending token
	for i := 0; i < 5; i++ {
		_, err := q.Push(i)
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	evs, err := sub.WaitPeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, evs)
}

func TestWaitPeekContextTimeout(t *testing.T) {
	q := notify.New[int]()
	defer q.Close()

	sub, err := q.Listen()
	require.NoError(t, err)
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = sub.WaitPeek(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueCloseUnblocksWaiter(t *testing.T) {
	q := notify.New[int]()

	sub, err := q.Listen()
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := sub.WaitPeek(context.Background())
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.Close())

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, murmur.ErrQueueClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("queue close left the waiter hanging")
	}
}

func TestListenerCloseUnblocksWaiter(t *testing.T) {
	q := notify.New[int]()
	defer q.Close()

	sub, err := q.Listen()
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := sub.WaitPeek(context.Background())
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, sub.Close())

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, murmur.ErrListenerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("listener close left the waiter hanging")
	}
}

func TestCloseSemantics(t *testing.T) {
	q := notify.New[int]()
	sub, err := q.Listen()
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	assert.ErrorIs(t, sub.Close(), murmur.ErrListenerClosed)
	assert.ErrorIs(t, sub.Wait(context.Background()), murmur.ErrListenerClosed)

	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Close(), murmur.ErrQueueClosed)
	_, err = q.Push(1)
	assert.ErrorIs(t, err, murmur.ErrQueueClosed)
	_, err = q.Listen()
	assert.ErrorIs(t, err, murmur.ErrQueueClosed)
}

func TestMultipleWaitersAllWake(t *testing.T) {
	q := notify.New[int]()
	defer q.Close()

	const waiters = 3
	results := make(chan []int, waiters)
	for i := 0; i < waiters; i++ {
		sub, err := q.Listen()
		require.NoError(t, err)
		defer sub.Close()
		go func(sub *notify.Listener[int]) {
			evs, err := sub.WaitPeek(context.Background())
			if err != nil {
				t.Error(err)
			}
			results <- evs
		}(sub)
	}

	time.Sleep(10 * time.Millisecond)
	_, err := q.Push(9)
	require.NoError(t, err)

	for i := 0; i < waiters; i++ {
		select {
		case evs := <-results:
			assert.Equal(t, []int{9}, evs)
		case <-time.After(5 * time.Second):
			t.Fatal("a waiter missed the broadcast")
		}
	}
}
