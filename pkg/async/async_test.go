package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrymomot/appcore/pkg/async"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func double(_ context.Context, n int) (int, error) {
	return n * 2, nil
}

func TestAsync(t *testing.T) {
	t.Parallel()

	t.Run("returns the value", func(t *testing.T) {
		t.Parallel()

		v, err := async.Async(context.Background(), 21, double).Await()
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("propagates errors", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		_, err := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
			return 0, errBoom
		}).Await()
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("cancelled context skips the work", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := atomic.Bool{}
		_, err := async.Async(ctx, 1, func(context.Context, int) (int, error) {
			called.Store(true)
			return 1, nil
		}).Await()
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called.Load())
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		defer close(release)

		f := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
			<-release
			return 0, nil
		})
		_, err := f.AwaitWithTimeout(10 * time.Millisecond)
		assert.ErrorIs(t, err, async.ErrTimeout)
		assert.False(t, f.IsComplete())
	})
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	values, err := async.WaitAll(
		async.Async(ctx, 1, double),
		async.Async(ctx, 2, double),
		async.Async(ctx, 3, double),
	)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, values)
}

func TestWaitAny(t *testing.T) {
	t.Parallel()

	t.Run("first to finish wins", func(t *testing.T) {
		t.Parallel()

		block := make(chan struct{})
		defer close(block)

		ctx := context.Background()
		slow := async.Async(ctx, 1, func(ctx context.Context, n int) (int, error) {
			<-block
			return n, nil
		})
		fast := async.Async(ctx, 2, double)

		i, v, err := async.WaitAny(slow, fast)
		require.NoError(t, err)
		assert.Equal(t, 1, i)
		assert.Equal(t, 4, v)
	})

	t.Run("no futures", func(t *testing.T) {
		t.Parallel()

		_, _, err := async.WaitAny[int]()
		assert.ErrorIs(t, err, async.ErrNoFutures)
	})
}

func TestGroup(t *testing.T) {
	t.Parallel()

	t.Run("waits for nested work", func(t *testing.T) {
		t.Parallel()

		var (
			g     async.Group
			count atomic.Int32
		)
		ctx := context.Background()
		g.Go(ctx, func(ctx context.Context) error {
			count.Add(1)
			g.Go(ctx, func(context.Context) error {
				time.Sleep(5 * time.Millisecond)
				count.Add(1)
				return nil
			})
			return nil
		})

		require.NoError(t, g.Wait())
		assert.EqualValues(t, 2, count.Load())
		assert.Zero(t, g.Len())
	})

	t.Run("joins errors", func(t *testing.T) {
		t.Parallel()

		var g async.Group
		errA, errB := errors.New("a"), errors.New("b")
		g.Go(context.Background(), func(context.Context) error { return errA })
		g.Go(context.Background(), func(context.Context) error { return errB })

		err := g.Wait()
		assert.ErrorIs(t, err, errA)
		assert.ErrorIs(t, err, errB)
	})
	t.Run("finished work is released without Wait", func(t *testing.T) {
		t.Parallel()

		var g async.Group
		errBoom := errors.New("boom")
		ctx := context.Background()
		for i := range 1000 {
			g.Go(ctx, func(context.Context) error {
				if i == 500 {
					return errBoom
				}
				return nil
			})
		}

		assert.Eventually(t, func() bool { return g.Len() == 0 }, time.Second, time.Millisecond)
		assert.ErrorIs(t, g.Wait(), errBoom)
		assert.NoError(t, g.Wait())
	})

	t.Run("cancelled context still counts as finished", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var g async.Group
		g.Go(ctx, func(context.Context) error { return nil })
		assert.ErrorIs(t, g.Wait(), context.Canceled)
		assert.Zero(t, g.Len())
	})
}
