package async

import (
	"context"
	"fmt"
	"time"
)

// Future is the result of a computation running on its own goroutine.
type Future[U any] struct {
	value U
	err   error
	done  chan struct{}
}

// Async runs fn(ctx, param) on a new goroutine.
func Async[T, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	return start(ctx, param, fn, nil)
}

// start is Async with a hook called with the result after the future is done.
func start[T, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error), after func(error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer func() {
			close(f.done)
			if after != nil {
				after(f.err)
			}
		}()

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.value, f.err = fn(ctx, param)
	}()

	return f
}

// Await blocks until the computation has finished.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.value, f.err
}

// AwaitWithTimeout is Await with an upper bound on the wait. It returns
// ErrTimeout if the computation is still running after timeout.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.value, f.err
	case <-timer.C:
		var zero U
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has finished.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the computation has finished.
func (f *Future[U]) Done() <-chan struct{} {
	return f.done
}

// WaitAll waits for every future and returns their values in order. It returns
// the first error encountered, wrapped with the future's index.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	values := make([]U, len(futures))
	for i, f := range futures {
		v, err := f.Await()
		if err != nil {
			return nil, fmt.Errorf("future %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}

// WaitAny returns the index and result of the first future to finish.
func WaitAny[U any](futures ...*Future[U]) (int, U, error) {
	var zero U
	if len(futures) == 0 {
		return -1, zero, ErrNoFutures
	}

	first := make(chan int, len(futures))
	for i, f := range futures {
		go func() {
			<-f.done
			first <- i
		}()
	}

	i := <-first
	v, err := futures[i].Await()
	return i, v, err
}
