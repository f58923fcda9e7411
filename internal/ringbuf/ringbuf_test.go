package ringbuf

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain[T any](t *testing.T, rx *Receiver[T]) []T {
	t.Helper()
	var got []T
	for {
		v, err := rx.TryRecv()
		if err != nil {
			require.ErrorIs(t, err, ErrEmpty)
			return got
		}
		got = append(got, v)
	}
}

func TestSendRecv_FIFO(t *testing.T) {
	tx, rx := New[int](4)

	for i := range 3 {
		require.NoError(t, tx.Send(i))
	}

	assert.Equal(t, []int{0, 1, 2}, drain(t, rx))
	assert.Zero(t, tx.Dropped())
}

func TestSend_OverwritesOldestWhenFull(t *testing.T) {
	const capacity = 4
	tx, rx := New[int](capacity)

	for i := range capacity + 1 {
		require.NoError(t, tx.Send(i))
	}

	assert.Equal(t, []int{1, 2, 3, 4}, drain(t, rx))
	assert.Equal(t, uint64(1), rx.Dropped())
}

func TestSend_BurstKeepsNewestInOrder(t *testing.T) {
	tx, rx := New[int](128)

	for i := range 300 {
		require.NoError(t, tx.Send(i))
	}

	got := drain(t, rx)
	require.Len(t, got, 128)
	for i, v := range got {
		assert.Equal(t, 172+i, v)
	}
	assert.Equal(t, uint64(172), tx.Dropped())
}

func TestSend_InterleavedWithRecv(t *testing.T) {
	tx, rx := New[string](2)

	require.NoError(t, tx.Send("a"))
	require.NoError(t, tx.Send("b"))
	v, err := rx.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	require.NoError(t, tx.Send("c"))
	require.NoError(t, tx.Send("d")) // evicts "b"

	assert.Equal(t, []string{"c", "d"}, drain(t, rx))
}

func TestNew_MinimumCapacity(t *testing.T) {
	tx, rx := New[int](0)

	require.NoError(t, tx.Send(1))
	require.NoError(t, tx.Send(2))

	assert.Equal(t, []int{2}, drain(t, rx))
}

func TestTryRecv_Empty(t *testing.T) {
	_, rx := New[int](1)

	_, err := rx.TryRecv()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSenderClose_DrainsThenReportsClosed(t *testing.T) {
	tx, rx := New[int](4)
	require.NoError(t, tx.Send(7))
	tx.Close()

	v, err := rx.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = rx.TryRecv()
	require.ErrorIs(t, err, ErrClosed)

	assert.ErrorIs(t, tx.Send(8), ErrClosed)
}

func TestReceiverClose_RejectsSends(t *testing.T) {
	tx, rx := New[int](4)
	rx.Close()

	assert.ErrorIs(t, tx.Send(1), ErrClosed)
}

func TestRecv_WakesOnSend(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		tx, rx := New[int](4)

		go func() {
			time.Sleep(time.Second)
			_ = tx.Send(42)
		}()

		v, err := rx.Recv(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})
}

func TestRecv_WakesOnClose(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		tx, rx := New[int](4)

		go func() {
			time.Sleep(time.Second)
			tx.Close()
		}()

		_, err := rx.Recv(context.Background())
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestRecv_ContextCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		_, rx := New[int](4)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err := rx.Recv(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestLen(t *testing.T) {
	tx, rx := New[int](3)
	for i := range 5 {
		require.NoError(t, tx.Send(i))
	}
	assert.Equal(t, 3, rx.Len())
}
