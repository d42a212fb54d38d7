package middleware

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

type slotKey struct{}

// slot is the share of Config.Concurrency held by one running handler.
type slot struct {
	sem *semaphore.Weighted

	mu   sync.Mutex
	held bool
}

func (s *slot) acquire(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	s.mu.Lock()
	s.held = true
	s.mu.Unlock()
	return nil
}

// release gives the slot back and reports whether it was held.
func (s *slot) release() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.held {
		return false
	}
	s.held = false
	s.sem.Release(1)
	return true
}

func slotFrom(ctx context.Context) *slot {
	s, _ := ctx.Value(slotKey{}).(*slot)
	return s
}

// Blocking runs wait, typically a wait on a clock, a channel or the network,
// without occupying one of the layer's Concurrency slots, and takes a slot
// back before returning. Handlers call it around waits of unbounded length so
// that pending timers or subscriptions never starve other effects.
//
// The error is non-nil only if ctx was cancelled before a slot was free
// again. Outside a HandleEffects layer, and inside a StreamHandler body, which
// holds no slot, Blocking just calls wait.
func Blocking(ctx context.Context, wait func()) error {
	s := slotFrom(ctx)
	if s == nil {
		wait()
		return nil
	}
	if !s.release() {
		wait()
		return nil
	}
	wait()
	return s.acquire(ctx)
}

// busy runs fn holding a slot of its own. Used for stream emissions, which
// may come from any goroutine of the stream handler.
func busy(ctx context.Context, fn func() error) error {
	s := slotFrom(ctx)
	if s == nil {
		return fn()
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)
	return fn()
}
