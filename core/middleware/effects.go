package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/dmitrymomot/appcore/core/logger"
	"github.com/dmitrymomot/appcore/core/request"
	"github.com/dmitrymomot/appcore/pkg/async"
)

// Option configures HandleEffects.
type Option func(*handlerOptions)

type handlerOptions struct {
	cfg    Config
	logger *slog.Logger
}

// WithConfig overrides the default Config.
func WithConfig(cfg Config) Option {
	return func(o *handlerOptions) {
		if cfg.Concurrency > 0 {
			o.cfg = cfg
		}
	}
}

// WithLogger sets the logger for handler failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *handlerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// EffectLayer resolves the effects its handler claims on background goroutines
// and passes the rest through.
type EffectLayer[E request.Effect, Ev, VM any] struct {
	next    Layer[E, Ev, VM]
	handler EffectHandler

	sem    *semaphore.Weighted
	group  async.Group
	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool

	logger *slog.Logger
}

// HandleEffects wraps next so that effects claimed by h never reach the shell.
// Each claimed effect is handled on its own goroutine, at most
// Config.Concurrency at a time. Waits wrapped in Blocking and the body of a
// StreamHandler between emissions do not count against that bound. Once the handler resolves the request, the
// layer runs the tasks waiting on it and reports whatever they requested next
// through the callback of the call that produced the effect.
//
// A handler error leaves the request unresolved; the waiting task never
// resumes. The error is logged.
func HandleEffects[E request.Effect, Ev, VM any](next Layer[E, Ev, VM], h EffectHandler, opts ...Option) *EffectLayer[E, Ev, VM] {
	o := handlerOptions{cfg: DefaultConfig(), logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &EffectLayer[E, Ev, VM]{
		next:    next,
		handler: h,
		sem:     semaphore.NewWeighted(o.cfg.Concurrency),
		ctx:     ctx,
		cancel:  cancel,
		logger:  o.logger,
	}
}

// ProcessEvent implements Layer.
func (l *EffectLayer[E, Ev, VM]) ProcessEvent(ev Ev, cb EffectCallback[E]) []E {
	return l.intercept(l.next.ProcessEvent(ev, l.forward(cb)), cb)
}

// Resolve implements Layer.
func (l *EffectLayer[E, Ev, VM]) Resolve(r request.Resolver, out any, cb EffectCallback[E]) ([]E, error) {
	effects, err := l.next.Resolve(r, out, l.forward(cb))
	return l.intercept(effects, cb), err
}

// ResolveEncoded implements Layer.
func (l *EffectLayer[E, Ev, VM]) ResolveEncoded(r request.Resolver, decode func(dst any) error, cb EffectCallback[E]) ([]E, error) {
	effects, err := l.next.ResolveEncoded(r, decode, l.forward(cb))
	return l.intercept(effects, cb), err
}

// ProcessTasks implements Layer.
func (l *EffectLayer[E, Ev, VM]) ProcessTasks(cb EffectCallback[E]) []E {
	return l.intercept(l.next.ProcessTasks(l.forward(cb)), cb)
}

// View implements Layer.
func (l *EffectLayer[E, Ev, VM]) View() VM {
	return l.next.View()
}

// Wait blocks until no handler is running, including handlers started for
// follow-up effects while waiting. It returns the handler errors joined.
func (l *EffectLayer[E, Ev, VM]) Wait() error {
	return l.group.Wait()
}

// Close cancels running handlers, waits for them to return and closes the
// layer below. Effects claimed after Close are dropped.
func (l *EffectLayer[E, Ev, VM]) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	l.cancel()
	err := l.group.Wait()
	return errors.Join(err, l.next.Close())
}

func (l *EffectLayer[E, Ev, VM]) intercept(effects []E, cb EffectCallback[E]) []E {
	var rest []E
	for _, eff := range effects {
		if l.handler.Handles(eff.Operation()) {
			l.dispatch(eff, cb)
			continue
		}
		rest = append(rest, eff)
	}
	return rest
}

func (l *EffectLayer[E, Ev, VM]) forward(cb EffectCallback[E]) EffectCallback[E] {
	return func(effects []E) {
		rest := l.intercept(effects, cb)
		if len(rest) > 0 && cb != nil {
			cb(rest)
		}
	}
}

func (l *EffectLayer[E, Ev, VM]) drive(cb EffectCallback[E]) {
	follow := l.ProcessTasks(cb)
	if len(follow) > 0 && cb != nil {
		cb(follow)
	}
}

func (l *EffectLayer[E, Ev, VM]) dispatch(eff E, cb EffectCallback[E]) {
	op := eff.Operation()
	if l.closed.Load() {
		l.logger.Debug("effect dropped after close", logger.Operation(op))
		return
	}

	l.group.Go(l.ctx, func(ctx context.Context) error {
		s := &slot{sem: l.sem}
		if err := s.acquire(ctx); err != nil {
			l.logger.Debug("effect dropped while waiting for a handler slot", logger.Operation(op))
			return nil
		}
		defer s.release()
		ctx = context.WithValue(ctx, slotKey{}, s)

		err := l.handler.Handle(ctx, op, func(out any) error {
			if err := eff.ResolveValue(out); err != nil {
				return err
			}
			l.drive(cb)
			return nil
		})

		switch {
		case err == nil, errors.Is(err, request.ErrFinished):
			return nil
		case errors.Is(err, context.Canceled):
			l.logger.Debug("effect handler cancelled", logger.Operation(op))
			return nil
		default:
			l.logger.Warn("effect handler failed", logger.Operation(op), logger.Error(err))
			return fmt.Errorf("handle %s: %w", request.Describe(op), err)
		}
	})
}
