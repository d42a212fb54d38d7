package async

import (
	"context"
	"errors"
	"sync"
)

// Group tracks background work. The zero value is ready to use.
//
// Finished work is forgotten as soon as it returns; only its error is kept
// until the next Wait.
type Group struct {
	mu      sync.Mutex
	idle    *sync.Cond
	running int
	errs    []error
}

// Go runs fn on a new goroutine tracked by the group.
func (g *Group) Go(ctx context.Context, fn func(context.Context) error) *Future[struct{}] {
	g.mu.Lock()
	g.running++
	g.mu.Unlock()

	return start(ctx, fn, func(ctx context.Context, fn func(context.Context) error) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, g.finish)
}

func (g *Group) finish(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.running--
	if err != nil {
		g.errs = append(g.errs, err)
	}
	if g.running == 0 {
		g.cond().Broadcast()
	}
}

// cond must be called with g.mu held.
func (g *Group) cond() *sync.Cond {
	if g.idle == nil {
		g.idle = sync.NewCond(&g.mu)
	}
	return g.idle
}

// Wait blocks until no tracked work is running, including work started by
// other tracked work while Wait was blocked. It returns the errors of the work
// finished since the previous Wait, joined.
func (g *Group) Wait() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for g.running > 0 {
		g.cond().Wait()
	}
	errs := g.errs
	g.errs = nil
	return errors.Join(errs...)
}

// Len returns the number of tracked goroutines still running.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}
