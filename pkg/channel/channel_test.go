package channel_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrymomot/appcore/pkg/channel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel(t *testing.T) {
	t.Parallel()

	t.Run("preserves FIFO order", func(t *testing.T) {
		t.Parallel()

		tx, rx := channel.New[int]()
		for i := range 5 {
			require.True(t, tx.Send(i))
		}

		assert.Equal(t, 5, rx.Len())
		assert.Equal(t, []int{0, 1, 2, 3, 4}, rx.Drain())
		assert.Nil(t, rx.Drain())
	})

	t.Run("try receive pops one item at a time", func(t *testing.T) {
		t.Parallel()

		tx, rx := channel.New[string]()
		tx.Send("a")
		tx.Send("b")

		v, ok := rx.TryReceive()
		require.True(t, ok)
		assert.Equal(t, "a", v)

		v, ok = rx.TryReceive()
		require.True(t, ok)
		assert.Equal(t, "b", v)

		_, ok = rx.TryReceive()
		assert.False(t, ok)
	})

	t.Run("closed receiver rejects sends", func(t *testing.T) {
		t.Parallel()

		tx, rx := channel.New[int]()
		tx.Send(1)
		rx.Close()
		rx.Close()

		assert.True(t, rx.Closed())
		assert.True(t, tx.Closed())
		assert.False(t, tx.Send(2))
		assert.Zero(t, rx.Len())
	})

	t.Run("notify hook runs after each send", func(t *testing.T) {
		t.Parallel()

		tx, rx := channel.New[int]()
		var calls atomic.Int32
		rx.Notify(func() {
			// The hook must be able to read the queue without deadlocking.
			_ = rx.Len()
			calls.Add(1)
		})

		tx.Send(1)
		tx.Send(2)
		assert.Equal(t, int32(2), calls.Load())

		rx.Notify(nil)
		tx.Send(3)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("handles concurrent senders", func(t *testing.T) {
		t.Parallel()

		tx, rx := channel.New[int]()
		const senders = 10
		const perSender = 100

		var wg sync.WaitGroup
		wg.Add(senders)
		for i := range senders {
			go func(id int) {
				defer wg.Done()
				for j := range perSender {
					tx.Send(id*perSender + j)
				}
			}(i)
		}
		wg.Wait()

		assert.Len(t, rx.Drain(), senders*perSender)
	})
}
